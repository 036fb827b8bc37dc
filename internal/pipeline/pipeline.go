// Package pipeline runs records through the assembly stages in sequence:
// fetch, journal, article. Records fail independently; one bad citation never
// stops the batch.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/openlitdb/litbridge/internal/assemble"
	"github.com/openlitdb/litbridge/internal/mapstore"
	"github.com/openlitdb/litbridge/internal/model"
	"github.com/openlitdb/litbridge/internal/pubmed"
)

// Pipeline wires the literature client to the assembler and keeps the batch
// bookkeeping.
type Pipeline struct {
	Source    pubmed.Client
	Assembler *assemble.Assembler
	Log       *zap.Logger
}

// Result is the outcome tally of one batch.
type Result struct {
	Processed int
	Skipped   int
	Deferred  int
	Failed    int
}

func (p *Pipeline) log() *zap.Logger {
	if p.Log != nil {
		return p.Log
	}
	return zap.NewNop()
}

// Run fetches and assembles every id in the batch. Ids whose article is
// already mapped are skipped without a fetch. A deferred resolution parks the
// record; any other error marks it failed and the batch continues.
func (p *Pipeline) Run(ctx context.Context, ids []string) (*Result, error) {
	res := &Result{}
	store := p.Assembler.Deps.Resolver.Store

	var fetch []string
	for _, id := range ids {
		if _, ok := store.Identifier(mapstore.ClassArticle, id); ok {
			p.log().Debug("already mapped", zap.String("pmid", id))
			res.Skipped++
			continue
		}
		fetch = append(fetch, id)
	}
	if len(fetch) == 0 {
		p.log().Info("batch done", zap.Int("skipped", res.Skipped))
		return res, nil
	}

	records, err := p.Source.FetchRecords(ctx, fetch)
	if err != nil {
		return res, fmt.Errorf("fetch records: %w", err)
	}

	for _, citation := range records {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		pmid := citation.Text("PMID")
		if err := p.processRecord(ctx, citation); err != nil {
			if errors.Is(err, model.ErrDeferred) {
				p.log().Info("record deferred", zap.String("pmid", pmid))
				res.Deferred++
				continue
			}
			p.log().Error("record failed",
				zap.String("pmid", pmid), zap.Error(err))
			res.Failed++
			continue
		}
		res.Processed++
	}

	p.log().Info("batch done",
		zap.Int("processed", res.Processed),
		zap.Int("skipped", res.Skipped),
		zap.Int("deferred", res.Deferred),
		zap.Int("failed", res.Failed))
	return res, nil
}

func (p *Pipeline) processRecord(ctx context.Context, citation *model.Record) error {
	journalID, err := p.Assembler.Journal(ctx, citation)
	if err != nil {
		return fmt.Errorf("journal: %w", err)
	}
	articleID, err := p.Assembler.Article(ctx, citation, journalID)
	if err != nil {
		return fmt.Errorf("article: %w", err)
	}
	p.log().Info("record assembled",
		zap.String("pmid", citation.Text("PMID")),
		zap.String("journal", journalID),
		zap.String("article", articleID))
	return nil
}
