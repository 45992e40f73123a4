package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/litdb/litdb/internal/core/domain"
	"github.com/litdb/litdb/internal/core/ports/driven"
	"github.com/litdb/litdb/internal/core/ports/driving"
	"github.com/litdb/litdb/internal/logger"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

// SearchService provides vector, full-text, hybrid and iterative search.
type SearchService struct {
	docs     driven.DocumentStore
	engine   driven.SearchEngine
	vectors  driven.VectorIndex
	embedder *Embedder
	reranker driven.Reranker
	ingest   driving.IngestService
	confirm  driven.ConfirmPolicy
}

// NewSearchService creates a new search service.
// The reranker is optional (can be nil).
func NewSearchService(
	docs driven.DocumentStore,
	engine driven.SearchEngine,
	vectors driven.VectorIndex,
	embedder *Embedder,
	reranker driven.Reranker,
) *SearchService {
	return &SearchService{
		docs:     docs,
		engine:   engine,
		vectors:  vectors,
		embedder: embedder,
		reranker: reranker,
	}
}

// SetIngestService sets the service iterative search expands through.
func (s *SearchService) SetIngestService(ingest driving.IngestService) {
	s.ingest = ingest
}

// SetConfirmPolicy sets the policy asked before each iterative round when
// no step limit is given.
func (s *SearchService) SetConfirmPolicy(p driven.ConfirmPolicy) {
	s.confirm = p
}

// VectorSearch returns the n documents closest to the query embedding.
// Score is the cosine distance, or the cross-encoder score when rerank is set.
func (s *SearchService) VectorSearch(
	ctx context.Context, query string, n int, rerank bool,
) ([]domain.SearchResult, error) {
	logger.Section("Vector Search")
	logger.Debug("Query: %q, n: %d, rerank: %t", query, n, rerank)

	query = strings.TrimSpace(query)
	if query == "" || n <= 0 {
		return []domain.SearchResult{}, nil
	}
	if rerank && s.reranker == nil {
		return nil, domain.ErrRerankUnavailable
	}

	hits, err := s.vectorHits(ctx, query, n)
	if err != nil {
		return nil, err
	}

	scores := make(map[string]float64, len(hits))
	ids := make([]string, len(hits))
	for i, h := range hits {
		ids[i] = h.SourceID
		scores[h.SourceID] = h.Distance
	}
	results, err := s.hydrate(ctx, ids, scores, nil)
	if err != nil {
		return nil, err
	}

	if rerank {
		return s.rerank(ctx, query, results)
	}
	return results, nil
}

// FulltextSearch runs an FTS5 query. Score is -bm25, higher is better.
func (s *SearchService) FulltextSearch(ctx context.Context, query string, n int) ([]domain.SearchResult, error) {
	logger.Section("Full-text Search")
	logger.Debug("Query: %q, n: %d", query, n)

	if strings.TrimSpace(query) == "" || n <= 0 {
		return []domain.SearchResult{}, nil
	}

	hits, err := s.engine.Search(ctx, query, n)
	if err != nil {
		return nil, fmt.Errorf("full-text search: %w", err)
	}

	ids := make([]string, len(hits))
	scores := make(map[string]float64, len(hits))
	snippets := make(map[string]string, len(hits))
	for i, h := range hits {
		ids[i] = h.SourceID
		scores[h.SourceID] = -h.BM25
		snippets[h.SourceID] = h.Snippet
	}
	return s.hydrate(ctx, ids, scores, snippets)
}

// Similar returns the n nearest neighbours of a stored document, excluding
// the document itself.
func (s *SearchService) Similar(ctx context.Context, sourceID string, n int) ([]domain.SearchResult, error) {
	logger.Section("Similar")
	logger.Debug("Source: %s, n: %d", sourceID, n)

	doc, err := s.docs.GetDocument(ctx, sourceID)
	if err != nil {
		return nil, fmt.Errorf("similar to %s: %w", sourceID, err)
	}
	if len(doc.Embedding) == 0 {
		return nil, fmt.Errorf("%s has no embedding: %w", sourceID, domain.ErrNotFound)
	}
	if n <= 0 {
		return []domain.SearchResult{}, nil
	}

	hits, err := s.vectors.Search(ctx, doc.Embedding, n+1)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	ids := make([]string, 0, n)
	scores := make(map[string]float64, len(hits))
	for _, h := range hits {
		if h.SourceID == sourceID {
			continue
		}
		ids = append(ids, h.SourceID)
		scores[h.SourceID] = h.Distance
	}
	if len(ids) > n {
		ids = ids[:n]
	}
	return s.hydrate(ctx, ids, scores, nil)
}

// HybridSearch fuses a vector search and a full-text search, run
// concurrently, into one ranking. Each leg fetches n hits, so up to 2n
// results are returned.
func (s *SearchService) HybridSearch(
	ctx context.Context, vectorQuery, textQuery string, n int,
) ([]domain.SearchResult, error) {
	logger.Section("Hybrid Search")
	logger.Debug("Vector query: %q, text query: %q, n: %d", vectorQuery, textQuery, n)

	if n <= 0 {
		return []domain.SearchResult{}, nil
	}
	if strings.TrimSpace(vectorQuery) == "" || strings.TrimSpace(textQuery) == "" {
		return nil, fmt.Errorf("hybrid search needs both queries: %w", domain.ErrInvalidInput)
	}

	var (
		vhits []driven.VectorHit
		thits []driven.SearchHit
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		vhits, err = s.vectorHits(gctx, vectorQuery, n)
		return err
	})
	g.Go(func() error {
		var err error
		thits, err = s.engine.Search(gctx, textQuery, n)
		if err != nil {
			return fmt.Errorf("full-text search: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	logger.Debug("Vector hits: %d, text hits: %d", len(vhits), len(thits))

	fused := fuse(vhits, thits)
	ids := make([]string, len(fused))
	scores := make(map[string]float64, len(fused))
	for i, f := range fused {
		ids[i] = f.sourceID
		scores[f.sourceID] = f.score
	}
	snippets := make(map[string]string, len(thits))
	for _, h := range thits {
		snippets[h.SourceID] = h.Snippet
	}
	return s.hydrate(ctx, ids, scores, snippets)
}

// IterativeSearch repeats a vector search, expanding every result through
// its references, citing and related works between rounds, until the result
// set stops changing, maxSteps rounds have run, or the confirm policy
// declines another round (consulted only when maxSteps <= 0).
func (s *SearchService) IterativeSearch(
	ctx context.Context, query string, n, maxSteps int,
) (*domain.IterativeResult, error) {
	logger.Section("Iterative Search")
	if s.ingest == nil {
		return nil, fmt.Errorf("iterative search without ingestion: %w", domain.ErrInvalidInput)
	}

	results, err := s.VectorSearch(ctx, query, n, false)
	if err != nil {
		return nil, err
	}
	out := &domain.IterativeResult{Results: results, Rounds: 1}

	for {
		if maxSteps > 0 && out.Rounds >= maxSteps {
			logger.Debug("Stopping after %d rounds", out.Rounds)
			return out, nil
		}
		if maxSteps <= 0 {
			decision := domain.Decision{Verdict: domain.Deny}
			if s.confirm != nil {
				decision = s.confirm.Confirm(ctx, domain.ConfirmRequest{
					Kind:      domain.ConfirmIterate,
					Subject:   query,
					Count:     len(out.Results),
					Completed: out.Rounds,
				})
			}
			if decision.Verdict == domain.Deny {
				logger.Debug("Round %d declined", out.Rounds+1)
				return out, nil
			}
		}

		for _, r := range out.Results {
			if err := ctx.Err(); err != nil {
				return out, err
			}
			workID, ok := r.Document.Metadata["id"].(string)
			if !ok || workID == "" {
				continue
			}
			if err := s.ingest.AddWork(ctx, workID, driving.AllExpansions()); err != nil {
				logger.Warn("Expanding %s failed: %v", workID, err)
			}
		}

		next, err := s.VectorSearch(ctx, query, n, false)
		if err != nil {
			return out, err
		}
		out.Rounds++
		converged := domain.SameSourceSet(next, out.Results)
		out.Results = next
		if converged {
			out.Converged = true
			logger.Info("Converged after %d rounds", out.Rounds)
			return out, nil
		}
	}
}

// vectorHits embeds query and searches the vector index.
func (s *SearchService) vectorHits(ctx context.Context, query string, n int) ([]driven.VectorHit, error) {
	if s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}
	embedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}
	hits, err := s.vectors.Search(ctx, embedding, n)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}
	return hits, nil
}

// rerank scores results with the cross-encoder and sorts them by
// descending score, ties by source id.
func (s *SearchService) rerank(
	ctx context.Context, query string, results []domain.SearchResult,
) ([]domain.SearchResult, error) {
	if len(results) == 0 {
		return results, nil
	}
	texts := make([]string, len(results))
	for i, r := range results {
		texts[i] = r.Document.Text
	}
	scores, err := s.reranker.Rerank(ctx, query, texts)
	if err != nil {
		return nil, fmt.Errorf("rerank: %w", err)
	}
	if len(scores) != len(results) {
		return nil, fmt.Errorf("rerank returned %d scores for %d results: %w",
			len(scores), len(results), domain.ErrRerankUnavailable)
	}
	for i := range results {
		results[i].Score = scores[i]
	}
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Document.SourceID < results[j].Document.SourceID
	})
	return results, nil
}

// hydrate loads documents for ids, keeping their order.
func (s *SearchService) hydrate(
	ctx context.Context, ids []string, scores map[string]float64, snippets map[string]string,
) ([]domain.SearchResult, error) {
	docs, err := s.docs.GetDocuments(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("loading results: %w", err)
	}
	if len(docs) < len(ids) {
		logger.Debug("%d results vanished before hydration", len(ids)-len(docs))
	}

	results := make([]domain.SearchResult, 0, len(docs))
	for _, doc := range docs {
		doc.Embedding = nil
		results = append(results, domain.SearchResult{
			Document: doc,
			Score:    scores[doc.SourceID],
			Snippet:  snippets[doc.SourceID],
		})
	}
	return results, nil
}
