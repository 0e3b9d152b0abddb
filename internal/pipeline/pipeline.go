package pipeline

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/eualt/trustscore/internal/cache"
	"github.com/eualt/trustscore/internal/llm"
	"github.com/eualt/trustscore/internal/model"
	"github.com/eualt/trustscore/internal/render"
	"github.com/eualt/trustscore/internal/score"
	"github.com/eualt/trustscore/internal/sources"
	"github.com/eualt/trustscore/internal/worker"
)

// Options select the per-run behavior of a pipeline
type Options struct {
	AsOf              time.Time // Reference date for recency decay; zero disables it
	EstimatePenalties bool
	UseCache          bool
	CheckSources      bool
	Explain           bool
}

// Pipeline scores catalog entries and decorates them with optional diagnostics.
// It implements worker.Scorer.
type Pipeline struct {
	engine      *score.Engine
	scoreOpts   []score.Option
	fingerprint string // Scoring config only
	runKey      string // Fingerprint plus score-changing options, seeds cache keys
	results     *cache.ResultStore
	checker     *sources.Checker
	explainer   *llm.Explainer
	renderer    *render.Renderer
	config      *model.Config
	logger      zerolog.Logger
	now         func() time.Time
}

// NewPipeline creates a new pipeline with the given configuration
func NewPipeline(cfg *model.Config, opts Options, logger zerolog.Logger) (*Pipeline, error) {
	engine, err := score.NewEngine(cfg.Scoring)
	if err != nil {
		return nil, err
	}

	fingerprint, err := cache.Fingerprint(cfg.Scoring)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		engine:      engine,
		fingerprint: fingerprint,
		runKey:      runKey(fingerprint, opts),
		renderer:    render.NewRenderer(cfg.Output.IncludeFooter),
		config:      cfg,
		logger:      logger.With().Str("component", "pipeline").Logger(),
		now:         time.Now,
	}

	if !opts.AsOf.IsZero() {
		p.scoreOpts = append(p.scoreOpts, score.WithAsOf(opts.AsOf))
	}
	if opts.EstimatePenalties {
		p.scoreOpts = append(p.scoreOpts, score.WithEstimatedPenalties(true))
	}

	if opts.UseCache && cfg.Cache.Enabled {
		layers := cache.NewLayeredCache(cfg.Cache.MemoryTTL, cfg.Cache.Dir, cfg.Cache.DiskTTL)
		p.results = cache.NewResultStore(layers, 0)
	}

	if opts.CheckSources {
		p.checker = sources.NewChecker(cfg, logger)
	}

	if opts.Explain {
		explainer, err := llm.NewExplainer(llm.ConfigFromModel(cfg.LLM, cfg.HTTP), logger)
		if err != nil {
			// Narration is optional; a bad provider config never blocks scoring
			p.logger.Warn().Err(err).Msg("failed to initialize LLM provider")
		} else {
			p.explainer = explainer
		}
	}

	return p, nil
}

func runKey(fingerprint string, opts Options) string {
	key := fingerprint
	if !opts.AsOf.IsZero() {
		key += "|asof=" + opts.AsOf.UTC().Format("2006-01-02")
	}
	if opts.EstimatePenalties {
		key += "|estimate"
	}
	return key
}

// Fingerprint identifies the scoring configuration of this pipeline
func (p *Pipeline) Fingerprint() string {
	return p.fingerprint
}

// ScoreEntry scores one entry, consulting the result cache first.
// A configured explainer narrates ready results; its failures are logged, not returned.
func (p *Pipeline) ScoreEntry(ctx context.Context, entry model.Entry) (*model.ScoredEntry, error) {
	result, cached, err := p.score(entry)
	if err != nil {
		return nil, err
	}

	scored := &model.ScoredEntry{
		ID:     entry.ID,
		Name:   entry.Name,
		Result: result,
		Cached: cached,
	}

	if p.explainer.IsEnabled() {
		explanation, err := p.explainer.Explain(ctx, entry, result)
		if err != nil {
			p.logger.Warn().Err(err).Str("entry", entry.ID).Msg("explanation failed")
		} else {
			scored.Explanation = explanation
		}
	}

	return scored, nil
}

func (p *Pipeline) score(entry model.Entry) (model.TrustResult, bool, error) {
	if p.results == nil {
		res, err := p.engine.ComputeEntryTrustScore(entry, p.scoreOpts...)
		return res, false, err
	}

	key, err := cache.ResultKey(p.runKey, entry)
	if err != nil {
		return model.TrustResult{}, false, fmt.Errorf("entry %s: %w", entry.ID, err)
	}

	if res, found := p.results.Get(key); found {
		p.logger.Debug().Str("entry", entry.ID).Msg("cache hit")
		return res, true, nil
	}

	res, err := p.engine.ComputeEntryTrustScore(entry, p.scoreOpts...)
	if err != nil {
		return model.TrustResult{}, false, err
	}

	if err := p.results.Put(key, res); err != nil {
		p.logger.Warn().Err(err).Str("entry", entry.ID).Msg("failed to cache result")
	}
	return res, false, nil
}

// Run scores entries with the configured concurrency and assembles the report.
// Entries that fail are listed in Report.Failures; the run itself only fails on cancellation.
func (p *Pipeline) Run(ctx context.Context, entries []model.Entry) (*model.Report, error) {
	if p.explainer.IsEnabled() && !p.explainer.Available(ctx) {
		fmt.Fprintf(os.Stderr, "Warning: LLM provider %s unavailable, continuing without explanations\n", p.explainer.ProviderName())
		p.explainer = nil
	}

	batch := worker.NewBatchScorer(p, p.config.Concurrency.Workers)
	results := batch.ScoreEntries(ctx, entries)

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("scoring interrupted: %w", err)
	}

	report := &model.Report{
		GeneratedAt:       p.now().UTC(),
		ConfigFingerprint: p.fingerprint,
		Entries:           make([]model.ScoredEntry, 0, len(results)),
	}

	var scoredEntries []model.Entry
	for i, r := range results {
		if r.Error != nil {
			report.Failures = append(report.Failures, model.Failure{ID: r.ID, Error: r.Error.Error()})
			continue
		}
		report.Entries = append(report.Entries, *r.Scored)
		scoredEntries = append(scoredEntries, entries[i])
	}

	if p.checker != nil {
		p.attachLinks(ctx, report, scoredEntries)
	}

	return report, nil
}

// attachLinks checks every distinct source URL once and hands each entry its own statuses
func (p *Pipeline) attachLinks(ctx context.Context, report *model.Report, entries []model.Entry) {
	statuses := p.checker.Check(ctx, sources.CollectRefs(entries))

	byURL := make(map[string]model.LinkStatus, len(statuses))
	for _, s := range statuses {
		byURL[s.URL] = s
	}

	for i, entry := range entries {
		for _, u := range sources.EntryURLs(entry) {
			if s, ok := byURL[u]; ok {
				report.Entries[i].Links = append(report.Entries[i].Links, s)
			}
		}
	}
}

// RenderReport renders the report to the specified outputs
func (p *Pipeline) RenderReport(report *model.Report, jsonPath string, mdPath string, verbose bool) error {
	if jsonPath != "" {
		if err := p.renderer.RenderJSON(report, jsonPath); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		if verbose && jsonPath != "-" {
			fmt.Fprintf(os.Stderr, "✓ Wrote JSON: %s\n", jsonPath)
		}
	}

	if mdPath != "" {
		if err := p.renderer.RenderMarkdown(report, mdPath); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		if verbose && mdPath != "-" {
			fmt.Fprintf(os.Stderr, "✓ Wrote Markdown: %s\n", mdPath)
		}
	}

	render.RenderSummary(os.Stderr, report)
	return nil
}

// FailureSummary joins failure ids for a one-line error message
func FailureSummary(failures []model.Failure) string {
	ids := make([]string, len(failures))
	for i, f := range failures {
		ids[i] = f.ID
	}
	return strings.Join(ids, ", ")
}
