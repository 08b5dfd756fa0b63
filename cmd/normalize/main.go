// Command normalize converts a single CAD export CSV into the canonical
// column layout, using the best stored template or an explicit one.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/ignite/cad-normalizer/internal/config"
	"github.com/ignite/cad-normalizer/internal/ingest"
	"github.com/ignite/cad-normalizer/internal/pkg/logger"
	"github.com/ignite/cad-normalizer/internal/storage"
	"github.com/ignite/cad-normalizer/internal/template"

	_ "github.com/lib/pq" // PostgreSQL driver
)

func main() {
	var (
		configPath = flag.String("config", "config/config.yaml", "path to config file")
		inputPath  = flag.String("input", "", "CAD export CSV to normalize (required)")
		outputPath = flag.String("output", "", "destination CSV (default: stdout)")
		templateID = flag.String("template-id", "", "apply this template instead of auto-matching")
		targetTool = flag.String("target-tool", "", "target tool to match templates for (default: from config)")
	)
	flag.Parse()

	if *inputPath == "" {
		fmt.Fprintln(os.Stderr, "Usage: normalize -input export.csv [-output out.csv] [-template-id ID]")
		flag.PrintDefaults()
		os.Exit(2)
	}

	cfg, err := config.LoadFromEnv(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.SetLevel(logger.ParseLevel(cfg.Logging.Level))

	tool := cfg.Ingest.TargetTool
	if *targetTool != "" {
		tool = *targetTool
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	store, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: failed to initialize storage: %v\n", err)
		os.Exit(1)
	}

	fingerprints := template.DefaultFingerprints()
	if cfg.Vendors.FingerprintFile != "" {
		fingerprints, err = template.LoadFingerprints(cfg.Vendors.FingerprintFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: failed to load vendor fingerprints: %v\n", err)
			os.Exit(1)
		}
	}

	processor := ingest.NewProcessor(
		template.NewVendorDetector(fingerprints),
		template.NewMatcher(store),
		template.NewApplier(store),
		tool,
	)

	in, err := os.Open(*inputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: failed to open input: %v\n", err)
		os.Exit(1)
	}
	defer in.Close()

	var result *ingest.Result
	if *templateID != "" {
		tmpl, err := store.Get(ctx, *templateID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: failed to load template %s: %v\n", *templateID, err)
			os.Exit(1)
		}
		result, err = processor.ProcessWithTemplate(ctx, in, tmpl)
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: normalization failed: %v\n", err)
			os.Exit(1)
		}
	} else {
		result, err = processor.Process(ctx, in)
		if errors.Is(err, ingest.ErrNoTemplate) {
			fmt.Fprintln(os.Stderr, "FATAL: no stored template matches this export")
			os.Exit(1)
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: normalization failed: %v\n", err)
			os.Exit(1)
		}
	}

	out := os.Stdout
	if *outputPath != "" {
		out, err = os.Create(*outputPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: failed to create output: %v\n", err)
			os.Exit(1)
		}
		defer out.Close()
	}

	if err := ingest.WriteRows(out, result.Rows); err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: failed to write output: %v\n", err)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stderr, "Normalized %d rows (vendor: %s", len(result.Rows), result.Vendor)
	if result.TemplateName != "" {
		fmt.Fprintf(os.Stderr, ", template: %s, score: %d", result.TemplateName, result.SimilarityScore)
	}
	fmt.Fprintln(os.Stderr, ")")
}
