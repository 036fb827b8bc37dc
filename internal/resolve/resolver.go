// Package resolve turns free-text mentions into target-item identifiers.
// Every resolution follows the same ladder: literal mapping-table hit, then
// entity search with per-candidate confirmation, then a manual override, and
// only then failure. Confirmed mappings are committed before the identifier
// is returned, so the table can only ever grow ahead of the statements that
// depend on it.
package resolve

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/openlitdb/litbridge/internal/mapstore"
	"github.com/openlitdb/litbridge/internal/model"
	"github.com/openlitdb/litbridge/internal/wikibase"
)

// Question is one resolution decision put to a Decider.
type Question struct {
	Class     mapstore.Class
	Mention   string
	Context   string // source-record context shown alongside the mention
	Namespace string // set when asking for an auxiliary value, not an item
	Candidate wikibase.Candidate
}

// Decider answers resolution questions. Confirm judges one search candidate;
// Provide asks for a free-text identifier after every candidate was rejected
// ("" means none). Implementations may park the question and return
// model.ErrDeferred instead of answering.
type Decider interface {
	Confirm(ctx context.Context, q Question) (bool, error)
	Provide(ctx context.Context, q Question) (string, error)
}

// Searcher is the slice of the knowledge-base client resolution needs.
type Searcher interface {
	SearchEntities(ctx context.Context, query string) ([]wikibase.Candidate, error)
}

// Resolver coordinates the mapping store, entity search and the decider.
type Resolver struct {
	Store    *mapstore.Store
	Searcher Searcher
	Decider  Decider
	Log      *zap.Logger
}

// Resolve maps a mention of the given class to a single target identifier.
func (r *Resolver) Resolve(ctx context.Context, class mapstore.Class, mention, hint string) (string, error) {
	ids, err := r.ResolveAll(ctx, class, mention, hint)
	if err != nil {
		return "", err
	}
	return ids[0], nil
}

// ResolveAll maps a mention to its target identifier list. Most mentions
// resolve to one identifier; compound mentions (an affiliation string naming
// several institutions) resolve to several.
func (r *Resolver) ResolveAll(ctx context.Context, class mapstore.Class, mention, hint string) ([]string, error) {
	if ids, ok := r.Store.Identifiers(class, mention); ok && len(ids) > 0 {
		return ids, nil
	}

	if r.Searcher != nil {
		candidates, err := r.Searcher.SearchEntities(ctx, mention)
		if err != nil {
			// Search is best effort; the manual override below still runs.
			r.log().Warn("entity search failed",
				zap.String("class", string(class)),
				zap.String("mention", mention),
				zap.Error(err))
			candidates = nil
		}
		for _, cand := range candidates {
			ok, err := r.Decider.Confirm(ctx, Question{
				Class:     class,
				Mention:   mention,
				Context:   hint,
				Candidate: cand,
			})
			if err != nil {
				return nil, err
			}
			if ok {
				if err := r.Store.Commit(class, mention, cand.ID); err != nil {
					return nil, err
				}
				r.log().Info("mapping confirmed",
					zap.String("class", string(class)),
					zap.String("mention", mention),
					zap.String("id", cand.ID))
				return []string{cand.ID}, nil
			}
		}
	}

	manual, err := r.Decider.Provide(ctx, Question{Class: class, Mention: mention, Context: hint})
	if err != nil {
		return nil, err
	}
	// A separator-only or whitespace-only answer is no override.
	if ids := splitList(manual); len(ids) > 0 {
		return r.commitManual(class, mention, ids)
	}

	if err := r.Store.Placeholder(class, mention); err != nil {
		return nil, err
	}
	return nil, &model.MissingMappingError{Class: string(class), Mention: mention}
}

// commitManual records manually provided identifiers (never empty). A
// multi-element list against a semicolon-separated compound mention commits
// each element pair individually as well as the compound key.
func (r *Resolver) commitManual(class mapstore.Class, mention string, ids []string) ([]string, error) {
	if len(ids) > 1 {
		parts := splitList(mention)
		if len(parts) == len(ids) {
			for i, part := range parts {
				if err := r.Store.Commit(class, part, ids[i]); err != nil {
					return nil, err
				}
			}
		}
		if err := r.Store.CommitList(class, mention, ids); err != nil {
			return nil, err
		}
		return ids, nil
	}
	if err := r.Store.Commit(class, mention, ids[0]); err != nil {
		return nil, err
	}
	return ids, nil
}

// ResolvePair resolves a mention that needs both a target identifier and an
// auxiliary namespace value (a publication type and its instance-of item, a
// MeSH heading and its descriptor UI). If the auxiliary half is missing the
// decider is asked for it directly, so a half-filled entry gets completed
// instead of silently passing.
func (r *Resolver) ResolvePair(ctx context.Context, class mapstore.Class, mention, hint, auxNamespace string) (string, string, error) {
	id, err := r.Resolve(ctx, class, mention, hint)
	if err != nil {
		return "", "", err
	}
	aux, err := r.ResolveAux(ctx, class, mention, hint, auxNamespace)
	if err != nil {
		return "", "", err
	}
	return id, aux, nil
}

// ResolveAux resolves a single auxiliary namespace value for a mention,
// asking the decider directly on a table miss. No entity search is involved;
// auxiliary values are codes, not items.
func (r *Resolver) ResolveAux(ctx context.Context, class mapstore.Class, mention, hint, namespace string) (string, error) {
	if aux, ok := r.Store.Aux(class, mention, namespace); ok {
		return aux, nil
	}
	aux, err := r.Decider.Provide(ctx, Question{
		Class:     class,
		Mention:   mention,
		Context:   hint,
		Namespace: namespace,
	})
	if err != nil {
		return "", err
	}
	if aux == "" {
		if err := r.Store.Placeholder(class, mention); err != nil {
			return "", err
		}
		return "", &model.MissingMappingError{
			Class:   fmt.Sprintf("%s/%s", class, namespace),
			Mention: mention,
		}
	}
	if err := r.Store.CommitAux(class, mention, namespace, aux); err != nil {
		return "", err
	}
	return aux, nil
}

func (r *Resolver) log() *zap.Logger {
	if r.Log != nil {
		return r.Log
	}
	return zap.NewNop()
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ";") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
