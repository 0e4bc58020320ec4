// Command fill runs the placeholder pipeline against a local document
// without the server: detect, optionally analyze, and fill from a JSON
// value map.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"docfill/internal/analyzer"
	"docfill/internal/config"
	"docfill/internal/oracle"
	"docfill/internal/oracle/claude"
	"docfill/internal/oracle/openrouter"
	"docfill/internal/port"
	"docfill/internal/service"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	var (
		inPath     = flag.String("in", "", "input .docx path")
		outPath    = flag.String("out", "filled.docx", "output .docx path")
		valuesPath = flag.String("values", "", "JSON file mapping field_id to value")
		detectOnly = flag.Bool("detect", false, "print detected fields and exit")
	)
	flag.Parse()

	if *inPath == "" {
		flag.Usage()
		return fmt.Errorf("missing -in")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	oracle.RegisterProvider("openrouter", func(pc *config.OracleProviderConfig) (port.SemanticOracle, error) {
		return openrouter.NewOracle(pc), nil
	})
	oracle.RegisterProvider("claude", func(pc *config.OracleProviderConfig) (port.SemanticOracle, error) {
		return claude.NewOracle(pc), nil
	})
	semanticOracle, err := oracle.BuildChain(&cfg.Oracle)
	if err != nil {
		return err
	}

	pipeline := service.NewPipelineService(analyzer.New(semanticOracle), cfg.Upload.MaxFileSizeMB)

	data, err := os.ReadFile(*inPath)
	if err != nil {
		return fmt.Errorf("reading %s: %w", *inPath, err)
	}
	name := filepath.Base(*inPath)
	ctx := context.Background()

	if *detectOnly {
		analysis, err := pipeline.Process(ctx, name, data)
		if err != nil {
			return err
		}
		out, err := json.MarshalIndent(analysis, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}

	values := map[string]string{}
	if *valuesPath != "" {
		raw, err := os.ReadFile(*valuesPath)
		if err != nil {
			return fmt.Errorf("reading %s: %w", *valuesPath, err)
		}
		if err := json.Unmarshal(raw, &values); err != nil {
			return fmt.Errorf("decoding %s: %w", *valuesPath, err)
		}
	}

	filled, report, err := pipeline.Fill(ctx, name, data, values)
	if err != nil {
		return err
	}
	if err := os.WriteFile(*outPath, filled, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", *outPath, err)
	}

	log.Printf("wrote %s (%d filled, %d skipped, %d orphaned keys)",
		*outPath, len(report.Filled), len(report.Skipped), len(report.Orphaned))
	for _, id := range report.Skipped {
		log.Printf("left unfilled: %s", id)
	}
	return nil
}
