package runner

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/abhisek/qadigest/internal/digest"
	"github.com/abhisek/qadigest/internal/qa"
	"github.com/abhisek/qadigest/internal/questionset"
	"github.com/abhisek/qadigest/internal/spacedrep"
)

// Preview is what the next run would deliver for a set.
type Preview struct {
	Set       string
	Algorithm spacedrep.Algorithm
	Fallback  bool
	Requested string // algorithm name asked for, from the caller or the set
	Entries   []qa.Entry
	Digest    digest.Digest
}

// Preview selects and assembles without delivering or committing. A zero
// count or empty algorithm uses the set's configuration.
func (d *Driver) Preview(ctx context.Context, set questionset.Set, count int, algorithm string) (*Preview, error) {
	if set.Err != nil {
		return nil, set.Err
	}
	cfg := set.Config
	if count <= 0 {
		count = cfg.NumQuestions
	}
	if algorithm == "" {
		algorithm = cfg.QuestionAlgorithm
	}

	p := &Preview{Set: set.Name(), Requested: algorithm}
	p.Algorithm, p.Fallback = d.algorithm(d.logger.With(zap.String("set", p.Set)), algorithm)

	pool, err := qa.Load(set.PoolPath())
	if err != nil {
		return nil, fmt.Errorf("load pool: %w", err)
	}
	hist := d.history.Load(ctx, cfg.InternalName)

	for _, id := range d.selector.Select(p.Algorithm, pool, hist, count) {
		e, _ := pool.Get(id)
		p.Entries = append(p.Entries, e)
	}

	p.Digest, err = d.assembler.Assemble(cfg.SubjectTitle, cfg.KeysAreQuestion, p.Entries)
	if err != nil {
		return nil, fmt.Errorf("assemble digest: %w", err)
	}
	return p, nil
}
