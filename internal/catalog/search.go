package catalog

import (
	"context"
	"fmt"

	chromem "github.com/philippgille/chromem-go"
)

const collectionName = "clauses"

// SearchResult pairs a clause with its similarity to the query.
type SearchResult struct {
	Clause     Clause  `json:"clause"`
	Similarity float32 `json:"similarity"`
}

// Search provides semantic lookup over the clause catalogue, used by
// the intake UI's "find a clause" box. It holds an in-memory
// chromem-go collection keyed by clause id.
type Search struct {
	db         *chromem.DB
	collection *chromem.Collection
	byID       map[string]Clause
}

// NewSearch indexes the catalog's clauses with the given embedding
// function (an OpenAI-backed one in production, a local one in tests).
func NewSearch(ctx context.Context, cat *Catalog, embed chromem.EmbeddingFunc) (*Search, error) {
	db := chromem.NewDB()
	col, err := db.GetOrCreateCollection(collectionName, nil, embed)
	if err != nil {
		return nil, fmt.Errorf("create collection: %w", err)
	}

	s := &Search{db: db, collection: col, byID: make(map[string]Clause)}

	clauses := cat.Clauses()
	docs := make([]chromem.Document, 0, len(clauses))
	for _, cl := range clauses {
		s.byID[cl.ClauseID] = cl
		docs = append(docs, chromem.Document{
			ID:      cl.ClauseID,
			Content: cl.Title + ". " + cl.Summary,
			Metadata: map[string]string{
				"category": cl.Category,
			},
		})
	}
	if len(docs) > 0 {
		if err := col.AddDocuments(ctx, docs, 1); err != nil {
			return nil, fmt.Errorf("indexing clauses: %w", err)
		}
	}
	return s, nil
}

// Query returns up to limit clauses ranked by similarity.
func (s *Search) Query(ctx context.Context, query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 5
	}

	// chromem-go requires nResults <= collection size.
	count := s.collection.Count()
	if count == 0 {
		return nil, nil
	}
	if limit > count {
		limit = count
	}

	results, err := s.collection.Query(ctx, query, limit, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("chromem query: %w", err)
	}

	out := make([]SearchResult, 0, len(results))
	for _, r := range results {
		cl, ok := s.byID[r.ID]
		if !ok {
			continue
		}
		out = append(out, SearchResult{Clause: cl, Similarity: r.Similarity})
	}
	return out, nil
}
