package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/goccy/go-json"
	hjson "github.com/hjson/hjson-go/v4"

	"github.com/nan702ya/skt-ai-adoption-plan/pkg/core/calc"
)

// CostData is the -data payload. Which fields are read depends on the mode.
// The payload is Hjson, so plain JSON works as well as
// {monthly_price: 29000, free_months: 6, term_months: 24}.
type CostData struct {
	MonthlyPrice   int64 `json:"monthly_price"`
	FreeMonths     int   `json:"free_months"`
	TermMonths     int   `json:"term_months"`
	ExtensionTotal int64 `json:"extension_total"`
	ExistingTotal  int64 `json:"existing_total"`
	ProposedTotal  int64 `json:"proposed_total"`
}

func main() {
	mode := flag.String("mode", "extension", "Mode: extension, compare or savings")
	dataStr := flag.String("data", "", "Hjson/JSON data payload")
	flag.Parse()

	if *dataStr == "" {
		fmt.Fprintln(os.Stderr, "Error: -data is required")
		os.Exit(2)
	}

	data, err := parseData(*dataStr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing data: %v\n", err)
		os.Exit(1)
	}

	out, err := run(*mode, data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing result: %v\n", err)
		os.Exit(1)
	}
}

func parseData(raw string) (CostData, error) {
	var data CostData
	if err := hjson.Unmarshal([]byte(raw), &data); err != nil {
		return CostData{}, err
	}
	return data, nil
}

func run(mode string, data CostData) (any, error) {
	switch mode {
	case "extension":
		return calc.CalculateExtensionCost(data.MonthlyPrice, data.FreeMonths, data.TermMonths), nil
	case "compare":
		return calc.CompareWithExisting(data.ExtensionTotal, data.ExistingTotal), nil
	case "savings":
		return calc.CalculateSavings(data.ExistingTotal, data.ProposedTotal), nil
	default:
		return nil, fmt.Errorf("unknown mode %q", mode)
	}
}
