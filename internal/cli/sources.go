package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/eualt/trustscore/internal/model"
	"github.com/eualt/trustscore/internal/sources"
)

var (
	sourcesJSON    string
	sourcesTimeout time.Duration
	failOnDead     bool
)

// sourcesCmd represents the sources command
var sourcesCmd = &cobra.Command{
	Use:   "sources <catalog>",
	Short: "Check that evidence source URLs still resolve",
	Long: `Sources collects every reservation and signal source URL in a catalog,
checks each distinct URL once (honoring robots.txt and per-site rate limits)
and reports dead or unreachable links. It never changes scores.

Example:
  trustscore sources catalog.yaml
  trustscore sources catalog.yaml --ids ids.txt --json links.json
  trustscore sources catalog.yaml --fail-on-dead`,
	Args: cobra.ExactArgs(1),
	RunE: runSources,
}

func init() {
	rootCmd.AddCommand(sourcesCmd)

	sourcesCmd.Flags().StringVar(&idsFile, "ids", "", "file listing entry ids to check, one per line")
	sourcesCmd.Flags().StringVar(&sourcesJSON, "json", "", "write link statuses as JSON to this path (- for stdout)")
	sourcesCmd.Flags().DurationVar(&sourcesTimeout, "timeout", 5*time.Minute, "total timeout for link checks")
	sourcesCmd.Flags().BoolVar(&failOnDead, "fail-on-dead", false, "exit non-zero when a dead link is found")
}

func runSources(cmd *cobra.Command, args []string) error {
	cfg := activeConfig

	entries, err := loadCatalog(args[0], idsFile)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), sourcesTimeout)
	defer cancel()

	refs := sources.CollectRefs(entries)
	fmt.Fprintf(os.Stderr, "⚙️  Checking %d source URLs from %d entries...\n\n", len(refs), len(entries))

	statuses := sources.NewChecker(cfg, logger).Check(ctx, refs)

	out := cmd.OutOrStdout()
	if sourcesJSON == "-" {
		out = os.Stderr
	}

	dead, unreachable, disallowed := 0, 0, 0
	for _, s := range statuses {
		switch {
		case s.Disallowed:
			disallowed++
			fmt.Fprintf(out, "- robots  %s\n", s.URL)
		case s.IsDead:
			dead++
			fmt.Fprintf(out, "✗ %-6s  %s  (%v)\n", statusText(s), s.URL, s.ItemIDs)
		case !s.IsAccessible:
			unreachable++
			fmt.Fprintf(out, "? %-6s  %s  (%v)\n", statusText(s), s.URL, s.ItemIDs)
		default:
			line := fmt.Sprintf("✓ %-6s  %s", statusText(s), s.URL)
			if s.RedirectURL != "" {
				line += " → " + s.RedirectURL
			}
			fmt.Fprintln(out, line)
		}
	}

	fmt.Fprintf(os.Stderr, "\n✓ Checked %d URLs: %d dead, %d unreachable, %d disallowed by robots.txt\n",
		len(statuses), dead, unreachable, disallowed)

	if sourcesJSON != "" {
		if err := writeLinkStatuses(sourcesJSON, statuses); err != nil {
			return err
		}
	}

	if failOnDead && dead > 0 {
		return &ExitError{Code: exitIncomplete, Err: fmt.Errorf("%d dead source links", dead)}
	}
	return nil
}

func statusText(s model.LinkStatus) string {
	if s.StatusCode != 0 {
		return fmt.Sprintf("%d", s.StatusCode)
	}
	return "error"
}

func writeLinkStatuses(path string, statuses []model.LinkStatus) error {
	data, err := json.MarshalIndent(statuses, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal link statuses: %w", err)
	}
	data = append(data, '\n')

	if path == "-" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
