package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/eualt/trustscore/internal/catalog"
	"github.com/eualt/trustscore/internal/model"
	"github.com/eualt/trustscore/internal/score"
)

var scoreBreakdown bool

// scoreCmd represents the score command
var scoreCmd = &cobra.Command{
	Use:   "score <entry-file>",
	Short: "Score a single catalog entry",
	Long: `Score reads one entry (JSON or YAML) with its reservations and signals
and prints its trust result as JSON.

Vetted entries carry their full breakdown. Pending entries do not, unless
--breakdown is given, which adds the internal heuristic breakdown for audit.

Example:
  trustscore score entry.json
  trustscore score entry.yaml --as-of 2026-01-01
  trustscore score newcomer.json --breakdown --estimate-penalties`,
	Args: cobra.ExactArgs(1),
	RunE: runScore,
}

func init() {
	rootCmd.AddCommand(scoreCmd)

	addScoringFlags(scoreCmd)
	scoreCmd.Flags().BoolVar(&scoreBreakdown, "breakdown", false, "include the internal breakdown of pending results")
}

type scoreOutput struct {
	ID string `json:"id"`
	model.TrustResult
	InternalBreakdown *model.TrustScoreBreakdown `json:"internalBreakdown,omitempty"`
}

func runScore(cmd *cobra.Command, args []string) error {
	cfg := activeConfig

	entry, err := catalog.LoadEntry(args[0])
	if err != nil {
		return &ExitError{Code: exitInput, Err: fmt.Errorf("load entry: %w", err)}
	}

	ref, err := referenceDate(cfg, asOf, time.Now())
	if err != nil {
		return err
	}

	engine, err := score.NewEngine(cfg.Scoring)
	if err != nil {
		return err
	}

	opts := scoreOptions(ref, estimateEnabled(cmd, cfg))
	result, err := engine.ComputeEntryTrustScore(entry, opts...)
	if err != nil {
		return err
	}

	out := scoreOutput{ID: entry.ID, TrustResult: result}
	if scoreBreakdown && result.TrustScoreBreakdown == nil {
		ev, err := entry.Evidence()
		if err != nil {
			return err
		}
		full, _, err := engine.ScoreEvidence(ev, opts...)
		if err != nil {
			return err
		}
		out.InternalBreakdown = &full.Breakdown
	}

	logger.Debug().
		Str("entry", entry.ID).
		Str("status", string(result.TrustScoreStatus)).
		Float64("score", result.TrustScore).
		Msg("scored entry")

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
