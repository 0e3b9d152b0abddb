package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/eualt/trustscore/internal/catalog"
	"github.com/eualt/trustscore/internal/model"
	"github.com/eualt/trustscore/internal/pipeline"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
	noFooter     bool
	checkSources bool
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <catalog>",
	Short: "Score every entry of a catalog in parallel",
	Long: `Batch scores a whole catalog concurrently:
- Load entries from a JSON or YAML catalog
- Optionally restrict them to the ids listed in --ids
- Score entries in parallel, reusing cached results
- Optionally check evidence source links and narrate breakdowns with an LLM
- Write report.json and report.md to the output directory

Example:
  trustscore batch catalog.yaml
  trustscore batch catalog.json --concurrency 8 --output-dir ./reports
  trustscore batch catalog.yaml --ids ids.txt --check-sources
  trustscore batch catalog.yaml --llm --llm-provider ollama --llm-model llama3.1`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntVar(&concurrency, "concurrency", 0, "number of concurrent workers (default from concurrency.workers)")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./trustscore-report", "output directory for reports")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 10*time.Minute, "total timeout for batch processing")
	batchCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the result cache")
	batchCmd.Flags().BoolVar(&noFooter, "no-footer", false, "disable footer in Markdown reports")
	batchCmd.Flags().StringVar(&idsFile, "ids", "", "file listing entry ids to score, one per line")
	batchCmd.Flags().BoolVar(&checkSources, "check-sources", false, "check that evidence source URLs still resolve")
	addScoringFlags(batchCmd)

	batchCmd.Flags().BoolVar(&llmEnabled, "llm", false, "narrate ready breakdowns with an LLM")
	batchCmd.Flags().StringVar(&llmProvider, "llm-provider", "", "LLM provider (openai, anthropic, ollama)")
	batchCmd.Flags().StringVar(&llmModel, "llm-model", "", "LLM model name")
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]
	cfg := activeConfig

	ctx, cancel := context.WithTimeout(cmd.Context(), batchTimeout)
	defer cancel()

	if concurrency > 0 {
		cfg.Concurrency.Workers = concurrency
	}
	if noFooter {
		cfg.Output.IncludeFooter = false
	}

	ref, err := referenceDate(cfg, asOf, time.Now())
	if err != nil {
		return err
	}

	entries, err := loadCatalog(file, idsFile)
	if err != nil {
		return err
	}

	if llmEnabled {
		if err := applyLLMFlags(cfg); err != nil {
			return err
		}
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  trustscore Batch Scoring\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Catalog:      %s (%d entries)\n", file, len(entries))
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", cfg.Concurrency.Workers)
	fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", batchTimeout)
	fmt.Fprintf(os.Stderr, "  Cache:        %v\n", cfg.Cache.Enabled && !noCache)
	if !ref.IsZero() {
		fmt.Fprintf(os.Stderr, "  As of:        %s\n", ref.Format("2006-01-02"))
	}
	if llmEnabled {
		fmt.Fprintf(os.Stderr, "  LLM:          %s/%s\n", cfg.LLM.Provider, cfg.LLM.Model)
	}
	fmt.Fprintf(os.Stderr, "\n")

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	p, err := pipeline.NewPipeline(cfg, pipeline.Options{
		AsOf:              ref,
		EstimatePenalties: estimateEnabled(cmd, cfg),
		UseCache:          !noCache,
		CheckSources:      checkSources,
		Explain:           llmEnabled,
	}, logger)
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "⚙️  Scoring %d entries...\n", len(entries))
	report, err := p.Run(ctx, entries)
	if err != nil {
		return err
	}

	jsonPath := filepath.Join(outputDir, "report.json")
	mdPath := filepath.Join(outputDir, "report.md")
	if err := p.RenderReport(report, jsonPath, mdPath, cfg.Output.Verbose); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Output:    %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "\n")

	if len(report.Failures) > 0 {
		return &ExitError{
			Code: exitIncomplete,
			Err:  fmt.Errorf("%d entries failed: %s", len(report.Failures), pipeline.FailureSummary(report.Failures)),
		}
	}
	return nil
}

// loadCatalog loads a catalog and applies an optional id filter
func loadCatalog(path, idsPath string) ([]model.Entry, error) {
	entries, err := catalog.Load(path)
	if err != nil {
		return nil, &ExitError{Code: exitInput, Err: fmt.Errorf("load catalog: %w", err)}
	}

	if idsPath == "" {
		return entries, nil
	}

	ids, err := catalog.ReadIDs(idsPath)
	if err != nil {
		return nil, &ExitError{Code: exitInput, Err: fmt.Errorf("read ids: %w", err)}
	}

	kept, missing := catalog.Filter(entries, ids)
	if len(missing) > 0 {
		logger.Warn().Strs("ids", missing).Msg("ids not found in catalog")
	}
	return kept, nil
}
