package quotes

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"insurance-advisor/internal/models"
)

func TestLoadRateBook_ShippedFile(t *testing.T) {
	specs, err := LoadRateBook("../../configs/ratebook.hcl")
	require.NoError(t, err)
	require.Len(t, specs, 5)

	byID := make(map[string]ProviderSpec)
	for _, s := range specs {
		byID[s.ID] = s
	}

	primecare := byID["primecare"]
	assert.Equal(t, "PrimeCare", primecare.Name)
	assert.Equal(t, 0.97, primecare.Reliability.ClaimsApprovalRate)
	assert.Equal(t, 2*time.Second, primecare.Timeout)
	assert.Equal(t, "conservative", primecare.RiskAppetite)
	assert.Equal(t, 1.1, primecare.StateFactors["NY"])
	assert.Equal(t, 20, primecare.Rates.ActivityLoadings["skydiving"])
	require.Len(t, primecare.Rates.AgeBands, 6)
	assert.Zero(t, primecare.Rates.AgeBands[5].Max)

	hg := byID["healthguard"]
	require.NotEmpty(t, hg.Products)
	basic := hg.Products[0]
	assert.Equal(t, models.ProductHealthBasic, basic.Type)
	assert.Equal(t, UnitFlat, basic.Unit)
	assert.Equal(t, 365, basic.WaitingPeriods["pre_existing"])
	assert.Equal(t, []string{"telehealth", "generic_drugs"}, basic.Features)
}

func TestParseRateBook(t *testing.T) {
	src := []byte(`
provider "tiny" {
  name = "Tiny Mutual"

  reliability {
    approval_rate   = 0.9
    processing_days = 14
    rating          = 4.0
  }

  product "tiny-term" {
    name      = "Tiny Term"
    type      = "LIFE_TERM"
    unit      = "per_thousand"
    base_rate = 0.1
  }
}
`)
	specs, err := ParseRateBook(src, "tiny.hcl")
	require.NoError(t, err)
	require.Len(t, specs, 1)

	s := specs[0]
	assert.Equal(t, "moderate", s.RiskAppetite)
	assert.Zero(t, s.Timeout)
	assert.Equal(t, UnitPerThousand, s.Products[0].Unit)
	assert.Equal(t, 14.0, s.Reliability.AvgProcessingDays)
}

func TestParseRateBook_Rejects(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"syntax", `provider "x" {`, "failed to parse"},
		{"no providers", ``, "defines no providers"},
		{"missing name", `provider "x" {
  product "p" {
    name = "P"
    type = "LIFE_TERM"
    base_rate = 1
  }
}`, "failed to decode"},
		{"duplicate", `provider "x" {
  name = "X"
  product "p" {
    name = "P"
    type = "LIFE_TERM"
    base_rate = 1
  }
}
provider "x" {
  name = "X again"
  product "p" {
    name = "P"
    type = "LIFE_TERM"
    base_rate = 1
  }
}`, "duplicate provider"},
		{"unknown product type", `provider "x" {
  name = "X"
  product "p" {
    name = "P"
    type = "PET_INSURANCE"
    base_rate = 1
  }
}`, "unknown type"},
		{"approval rate out of range", `provider "x" {
  name = "X"
  reliability {
    approval_rate   = 1.5
    processing_days = 5
    rating          = 4
  }
  product "p" {
    name = "P"
    type = "LIFE_TERM"
    base_rate = 1
  }
}`, "approval rate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRateBook([]byte(tt.src), "bad.hcl")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestDefaultProviders_Valid(t *testing.T) {
	specs := DefaultProviders()
	require.Len(t, specs, 5)
	for _, s := range specs {
		assert.NoError(t, s.Validate(), s.ID)
	}
}
