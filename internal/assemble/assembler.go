// Package assemble builds whole target items out of one source record:
// the journal item first, then the article item that references it. Both
// assemblers are idempotent against the mapping tables; a record whose
// identifier is already mapped returns the existing item without a write.
package assemble

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/openlitdb/litbridge/internal/mapstore"
	"github.com/openlitdb/litbridge/internal/model"
	"github.com/openlitdb/litbridge/internal/resolve"
	"github.com/openlitdb/litbridge/internal/serialize"
	"github.com/openlitdb/litbridge/internal/transform"
	"github.com/openlitdb/litbridge/internal/wikibase"
)

// Assembler drives record assembly: transformers produce claims, the
// serializer renders them, the client writes them, and every confirmed
// identifier is committed to the mapping tables before the assembler returns.
type Assembler struct {
	Deps       *transform.Deps
	Client     wikibase.Client
	Serializer *serialize.Serializer
	Log        *zap.Logger
}

func (a *Assembler) store() *mapstore.Store {
	return a.Deps.Resolver.Store
}

func (a *Assembler) log() *zap.Logger {
	if a.Log != nil {
		return a.Log
	}
	return zap.NewNop()
}

// matchExisting asks whether the target already holds an item for this
// record, searching by its display title and putting each hit to the decider.
// An empty return means no match: the caller creates a new item.
func (a *Assembler) matchExisting(ctx context.Context, class mapstore.Class, title, hint string) (string, error) {
	candidates, err := a.Client.SearchEntities(ctx, title)
	if err != nil {
		a.log().Warn("entity search failed",
			zap.String("class", string(class)),
			zap.String("title", title),
			zap.Error(err))
		candidates = nil
	}
	for _, cand := range candidates {
		ok, err := a.Deps.Resolver.Decider.Confirm(ctx, resolve.Question{
			Class:     class,
			Mention:   title,
			Context:   hint,
			Candidate: cand,
		})
		if err != nil {
			return "", err
		}
		if ok {
			return cand.ID, nil
		}
	}
	return a.Deps.Resolver.Decider.Provide(ctx, resolve.Question{
		Class:   class,
		Mention: title,
		Context: hint,
	})
}

// write serializes the graph and either updates the matched item or creates
// a new one, returning the item's identifier.
func (a *Assembler) write(ctx context.Context, graph *model.ClaimGraph, matchID string) (string, error) {
	entity, err := a.Serializer.Entity(graph)
	if err != nil {
		return "", err
	}
	if matchID != "" {
		entity.ID = matchID
		if err := a.Client.WriteItem(ctx, entity); err != nil {
			return "", err
		}
		return matchID, nil
	}
	return a.Client.NewItem(ctx, entity)
}

// ensureAuthor creates the item for an author the resolver could not match.
// The mention key is committed once the item exists, so a later record naming
// the same author resolves from the table.
func (a *Assembler) ensureAuthor(ctx context.Context, author *transform.Author) error {
	if author.ID != "" {
		return nil
	}
	entity, err := a.Serializer.Entity(author.Graph)
	if err != nil {
		return err
	}
	entity.Labels = map[string]string{"en": author.FullName}
	id, err := a.Client.NewItem(ctx, entity)
	if err != nil {
		return fmt.Errorf("create author item %q: %w", author.FullName, err)
	}
	if err := a.store().Commit(mapstore.ClassAuthor, author.MentionKey, id); err != nil {
		return err
	}
	author.ID = id
	a.log().Info("author item created",
		zap.String("name", author.FullName), zap.String("id", id))
	return nil
}

// ensureGrant creates the item for a grant the resolver could not match.
func (a *Assembler) ensureGrant(ctx context.Context, grant *transform.Grant) error {
	if grant.ID != "" {
		return nil
	}
	entity, err := a.Serializer.Entity(grant.Graph)
	if err != nil {
		return err
	}
	entity.Labels = map[string]string{"en": grant.MentionKey}
	id, err := a.Client.NewItem(ctx, entity)
	if err != nil {
		return fmt.Errorf("create grant item %q: %w", grant.MentionKey, err)
	}
	if err := a.store().Commit(mapstore.ClassGrant, grant.MentionKey, id); err != nil {
		return err
	}
	grant.ID = id
	a.log().Info("grant item created",
		zap.String("key", grant.MentionKey), zap.String("id", id))
	return nil
}
