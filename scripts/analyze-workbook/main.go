// analyze-workbook runs the full survey analysis pipeline against a local
// xlsx export without starting the HTTP server: ingest the workbook, select
// analyzable columns, run the batched narrative analysis per column, and
// print each column's report to stdout.
//
// Usage: go run ./scripts/analyze-workbook <workbook.xlsx>
//
// Requires: LLM_API_KEY environment variable (unless the endpoint is a
// local one that needs no key). Endpoint/model come from config.yaml or
// LLM_API_URL / LLM_MODEL_NAME.
package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/tallyline/survey-engine/pkg/config"
	"github.com/tallyline/survey-engine/pkg/ingest"
	"github.com/tallyline/survey-engine/pkg/llm"
	"github.com/tallyline/survey-engine/pkg/services"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: analyze-workbook <workbook.xlsx>")
		os.Exit(1)
	}
	path := os.Args[1]

	cfg, err := config.Load("dev")
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logConfig := zap.NewDevelopmentConfig()
	logConfig.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	logger, err := logConfig.Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	client, err := llm.NewClient(&llm.Config{
		Endpoint:    cfg.LLM.APIURL,
		Model:       cfg.LLM.ModelName,
		APIKey:      cfg.LLM.APIKey,
		Temperature: cfg.LLM.Temperature,
	}, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "create LLM client: %v\n", err)
		os.Exit(1)
	}

	f, err := os.Open(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open workbook: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = f.Close() }()

	table, err := ingest.NewWorkbookReader().Read(f)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	controller := services.NewController(cfg.Analysis, client, logger)
	summaries := controller.Ingest(table)
	if len(summaries) == 0 {
		fmt.Println("No analyzable columns found.")
		return
	}

	ctx := context.Background()
	for _, summary := range summaries {
		fmt.Printf("=== %s ===\n", summary.Name)
		if err := controller.RunAnalysis(ctx, summary.ID); err != nil {
			fmt.Printf("analysis failed: %v\n\n", err)
			continue
		}
		dataset, err := controller.Dataset(summary.ID)
		if err != nil {
			fmt.Printf("read results: %v\n\n", err)
			continue
		}
		fmt.Printf("%s\n\n", dataset.NarrativeSummary)
	}
}
