package worker

import (
	"context"
	"fmt"

	"github.com/eualt/trustscore/internal/model"
)

// Scorer scores a single catalog entry
type Scorer interface {
	ScoreEntry(ctx context.Context, entry model.Entry) (*model.ScoredEntry, error)
}

// ScoreJob scores the entry at Index of a batch
type ScoreJob struct {
	Index  int
	Entry  model.Entry
	Scorer Scorer
}

// Execute executes the score job
func (j *ScoreJob) Execute(ctx context.Context) Result {
	if err := ctx.Err(); err != nil {
		return &EntryResult{Index: j.Index, ID: j.Entry.ID, Error: err}
	}

	scored, err := j.Scorer.ScoreEntry(ctx, j.Entry)
	return &EntryResult{
		Index:  j.Index,
		ID:     j.Entry.ID,
		Scored: scored,
		Error:  err,
	}
}

// EntryResult is the outcome of one score job
type EntryResult struct {
	Index  int
	ID     string
	Scored *model.ScoredEntry
	Error  error
}

// GetError returns the error from the score result
func (r *EntryResult) GetError() error {
	return r.Error
}

// BatchScorer scores many entries concurrently
type BatchScorer struct {
	scorer      Scorer
	concurrency int
}

// NewBatchScorer creates a new batch scorer
func NewBatchScorer(scorer Scorer, concurrency int) *BatchScorer {
	return &BatchScorer{
		scorer:      scorer,
		concurrency: concurrency,
	}
}

// ScoreEntries scores entries and returns one result per entry, in input order.
// Entries left unscored by a cancelled context carry the context error.
func (b *BatchScorer) ScoreEntries(ctx context.Context, entries []model.Entry) []*EntryResult {
	if len(entries) == 0 {
		return []*EntryResult{}
	}

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	jobs := make([]Job, len(entries))
	for i, entry := range entries {
		jobs[i] = &ScoreJob{
			Index:  i,
			Entry:  entry,
			Scorer: b.scorer,
		}
	}

	ordered := make([]*EntryResult, len(entries))
	for _, result := range pool.Run(jobs) {
		r := result.(*EntryResult)
		ordered[r.Index] = r
	}

	for i, r := range ordered {
		if r != nil {
			continue
		}
		err := ctx.Err()
		if err == nil {
			err = fmt.Errorf("entry %s was not scored", entries[i].ID)
		}
		ordered[i] = &EntryResult{Index: i, ID: entries[i].ID, Error: err}
	}

	return ordered
}
