// cmd/tools/ratebook-check/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/goccy/go-json"

	"insurance-advisor/internal/common/logger"
	"insurance-advisor/internal/models"
	"insurance-advisor/internal/quotes"
	"insurance-advisor/internal/scoring"
)

var rateBookPath string

func main() {
	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)
	listCmd := flag.NewFlagSet("list", flag.ExitOnError)
	quoteCmd := flag.NewFlagSet("quote", flag.ExitOnError)

	for _, fs := range []*flag.FlagSet{validateCmd, listCmd, quoteCmd} {
		fs.StringVar(&rateBookPath, "path", "configs/ratebook.hcl", "Path to rate book (empty for built-in providers)")
	}

	// Quote command flags
	product := quoteCmd.String("product", "LIFE_TERM", "Product type")
	coverage := quoteCmd.Float64("coverage", 250000, "Coverage amount")
	age := quoteCmd.Int("age", 35, "Applicant age")
	state := quoteCmd.String("state", "CA", "Applicant state")
	smoker := quoteCmd.Bool("smoker", false, "Applicant smokes")
	income := quoteCmd.Float64("income", 0, "Annual income (0 for unknown)")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "validate":
		validateCmd.Parse(os.Args[2:])
		specs, err := load()
		if err != nil {
			fmt.Printf("Rate book validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Rate book validation passed: %d providers.\n", len(specs))

	case "list":
		listCmd.Parse(os.Args[2:])
		specs, err := load()
		if err != nil {
			fmt.Printf("Error loading rate book: %v\n", err)
			os.Exit(1)
		}
		list(specs)

	case "quote":
		quoteCmd.Parse(os.Args[2:])
		specs, err := load()
		if err != nil {
			fmt.Printf("Error loading rate book: %v\n", err)
			os.Exit(1)
		}
		p := &models.ApplicantProfile{
			SessionID:    "ratebook-check",
			Age:          *age,
			State:        strings.ToUpper(*state),
			Smoker:       *smoker,
			AnnualIncome: *income,
			IncomeSource: models.IncomeDeclared,
		}
		if *income <= 0 {
			p.IncomeSource = models.IncomeUnknown
		}
		if err := quote(specs, p, models.QuoteRequest{
			ProductType:    models.ProductType(strings.ToUpper(*product)),
			CoverageAmount: *coverage,
		}); err != nil {
			fmt.Printf("Error quoting: %v\n", err)
			os.Exit(1)
		}

	case "help":
		fallthrough
	default:
		help()
	}
}

func load() ([]quotes.ProviderSpec, error) {
	if rateBookPath == "" {
		return quotes.DefaultProviders(), nil
	}
	return quotes.LoadRateBook(rateBookPath)
}

func list(specs []quotes.ProviderSpec) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PROVIDER\tPRODUCT\tTYPE\tCOVERAGE\tAPPETITE")
	for _, s := range specs {
		for _, p := range s.Products {
			fmt.Fprintf(w, "%s\t%s\t%s\t%.0f-%.0f\t%s\n", s.ID, p.ID, p.Type, p.MinCoverage, p.MaxCoverage, s.RiskAppetite)
		}
	}
	w.Flush()
}

func quote(specs []quotes.ProviderSpec, p *models.ApplicantProfile, req models.QuoteRequest) error {
	if !req.ProductType.Valid() {
		return fmt.Errorf("unknown product type %q", req.ProductType)
	}

	log := logger.NewNoOpLogger()
	set := quotes.NewAggregator(quotes.NewProviders(specs), log).GetQuotes(context.Background(), p, req)
	scored := scoring.NewEngine(nil, log).ScoreSet(set, p)

	out, err := json.MarshalIndent(map[string]interface{}{
		"request":     set.Request,
		"plans":       scored,
		"unavailable": set.Unavailable,
	}, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func help() {
	fmt.Println("Usage: ratebook-check <command> [flags]")
	fmt.Println("Commands:")
	fmt.Println("  validate  Parse and validate the rate book")
	fmt.Println("  list      List providers and products")
	fmt.Println("  quote     Price and score a sample applicant")
	fmt.Println("  help      Show this help message")
}
