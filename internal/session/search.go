// ABOUTME: Live search that runs a query once typing pauses.
// ABOUTME: Only the latest query is evaluated; results go to a callback.

package session

import (
	"context"

	"github.com/harper/stickies/internal/debounce"
	"github.com/harper/stickies/internal/models"
	"github.com/harper/stickies/internal/store"
	"go.uber.org/zap"
)

// ResultsFunc receives the notes matching query, or the error of the search.
type ResultsFunc func(query string, notes []*models.Note, err error)

type Search struct {
	latest *debounce.Latest[string]
}

func NewSearch(st *store.Store, onResults ResultsFunc, opts ...Option) *Search {
	o := buildOptions(DefaultSearchDelay, opts)
	return &Search{
		latest: debounce.NewLatest(o.delay, func(query string) {
			notes, err := st.Search(context.Background(), query)
			if err != nil {
				o.logger.Warn("search failed", zap.String("query", query), zap.Error(err))
			}
			onResults(query, notes, err)
		}),
	}
}

// SetQuery replaces the query and restarts the wait.
func (s *Search) SetQuery(query string) { s.latest.Set(query) }

// Flush runs the current query now.
func (s *Search) Flush() { s.latest.Flush() }

// Pending reports whether a query is waiting to run.
func (s *Search) Pending() bool { return s.latest.Pending() }

// Stop discards any pending query and ignores later ones.
func (s *Search) Stop() { s.latest.Stop() }
