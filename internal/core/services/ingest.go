package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/litdb/litdb/internal/core/domain"
	"github.com/litdb/litdb/internal/core/ports/driven"
	"github.com/litdb/litdb/internal/core/ports/driving"
	"github.com/litdb/litdb/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// IngestService writes documents into the store: plain sources, OpenAlex
// works with optional one-hop expansion, and all works of an author.
type IngestService struct {
	docs     driven.DocumentStore
	embedder *Embedder
	client   driven.MetadataClient
	confirm  driven.ConfirmPolicy
	trigger  int
}

// IngestOption configures an IngestService.
type IngestOption func(*IngestService)

// WithConfirmPolicy sets the policy consulted before large citing sweeps.
func WithConfirmPolicy(p driven.ConfirmPolicy) IngestOption {
	return func(s *IngestService) {
		s.confirm = p
	}
}

// WithCitationCountTrigger sets the citing-set size above which the
// confirmation policy is consulted.
func WithCitationCountTrigger(n int) IngestOption {
	return func(s *IngestService) {
		if n > 0 {
			s.trigger = n
		}
	}
}

// NewIngestService creates an ingestion service. client may be nil, in
// which case only AddSource works.
func NewIngestService(
	docs driven.DocumentStore,
	embedder *Embedder,
	client driven.MetadataClient,
	opts ...IngestOption,
) *IngestService {
	s := &IngestService{
		docs:     docs,
		embedder: embedder,
		client:   client,
		trigger:  domain.DefaultCitationCountTrigger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddSource embeds and stores a document unless its id is already present.
func (s *IngestService) AddSource(
	ctx context.Context, sourceID, text string, metadata map[string]any,
) (bool, error) {
	if sourceID == "" {
		return false, fmt.Errorf("empty source id: %w", domain.ErrInvalidInput)
	}

	exists, err := s.docs.Exists(ctx, sourceID)
	if err != nil {
		return false, err
	}
	if exists {
		logger.Debug("%s already in store", sourceID)
		return false, nil
	}

	if err := s.embedder.Declare(ctx); err != nil {
		return false, err
	}
	embedding, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return false, fmt.Errorf("embedding %s: %w", sourceID, err)
	}

	added, err := s.docs.AddDocument(ctx, &domain.Document{
		SourceID:  sourceID,
		Text:      text,
		Metadata:  metadata,
		Embedding: embedding,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		return false, fmt.Errorf("storing %s: %w", sourceID, err)
	}
	if added {
		logger.Info("Added %s", sourceID)
	}
	return added, nil
}

// AddWork resolves a work and ingests it together with the requested
// frontiers. A work that cannot be resolved is logged and skipped.
func (s *IngestService) AddWork(ctx context.Context, id string, opts driving.WorkOptions) error {
	_, err := s.addWork(ctx, id, opts)
	return err
}

// addWork is AddWork returning the source id the work is stored under,
// or "" when it could not be resolved.
func (s *IngestService) addWork(ctx context.Context, id string, opts driving.WorkOptions) (string, error) {
	if s.client == nil {
		return "", fmt.Errorf("no metadata client: %w", domain.ErrResolveFailed)
	}
	id = domain.NormaliseWorkID(id)
	expand := opts.References || opts.Citing || opts.Related

	if !expand {
		exists, err := s.docs.Exists(ctx, id)
		if err != nil {
			return "", err
		}
		if exists {
			logger.Debug("%s already in store", id)
			return id, nil
		}
	}

	raw, err := s.client.Work(ctx, id)
	if err != nil {
		logger.Warn("Could not resolve %s: %v", id, err)
		return "", nil
	}
	work, err := s.ingestWork(ctx, raw)
	if err != nil {
		return "", err
	}

	if opts.References {
		if err := s.addFrontier(ctx, "references", work.ReferencedWorks, opts.MaxReferences); err != nil {
			return work.Key(), err
		}
	}
	if opts.Related {
		if err := s.addFrontier(ctx, "related", work.RelatedWorks, opts.MaxRelated); err != nil {
			return work.Key(), err
		}
	}
	if opts.Citing {
		if err := s.addCiting(ctx, work, opts); err != nil {
			return work.Key(), err
		}
	}
	return work.Key(), nil
}

// AddWorks adds each id in turn; one failure does not stop the batch. It
// returns the source ids of the works now in the store.
func (s *IngestService) AddWorks(ctx context.Context, ids []string, opts driving.WorkOptions) ([]string, error) {
	var (
		stored []string
		errs   []error
	)
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return stored, err
		}
		key, err := s.addWork(ctx, id, opts)
		if key != "" {
			stored = append(stored, key)
		}
		if err != nil {
			logger.Warn("Adding %s failed: %v", id, err)
			errs = append(errs, fmt.Errorf("%s: %w", id, err))
		}
	}
	return stored, errors.Join(errs...)
}

// AddAuthor ingests every work of an author, without expansion.
func (s *IngestService) AddAuthor(ctx context.Context, id string) error {
	if s.client == nil {
		return fmt.Errorf("no metadata client: %w", domain.ErrResolveFailed)
	}
	author, err := s.client.Author(ctx, id)
	if err != nil {
		logger.Warn("Could not resolve author %s: %v", id, err)
		return err
	}
	logger.Info("Adding works of %s", author.DisplayName)

	var itemErr error
	sweepErr := s.client.WorksAt(ctx, author.WorksAPIURL, func(p driven.Page) bool {
		for _, raw := range p.Results {
			var ref struct {
				ID string `json:"id"`
			}
			if err := json.Unmarshal(raw, &ref); err != nil || ref.ID == "" {
				logger.Warn("Skipping author work without id")
				continue
			}
			if err := s.AddWork(ctx, ref.ID, driving.WorkOptions{}); err != nil {
				itemErr = err
				return false
			}
		}
		return true
	})
	if itemErr != nil {
		return itemErr
	}
	if sweepErr != nil {
		logger.Warn("Works of %s incomplete: %v", author.DisplayName, sweepErr)
	}
	return nil
}

// Get returns a stored document.
func (s *IngestService) Get(ctx context.Context, sourceID string) (*domain.Document, error) {
	doc, err := s.docs.GetDocument(ctx, sourceID)
	if errors.Is(err, domain.ErrNotFound) {
		if normalised := domain.NormaliseWorkID(sourceID); normalised != sourceID {
			return s.docs.GetDocument(ctx, normalised)
		}
	}
	return doc, err
}

// Remove deletes documents. Unknown ids are skipped.
func (s *IngestService) Remove(ctx context.Context, sourceIDs []string) error {
	for _, id := range sourceIDs {
		err := s.docs.DeleteDocument(ctx, id)
		switch {
		case errors.Is(err, domain.ErrNotFound):
			logger.Warn("%s is not in the store", id)
		case err != nil:
			return fmt.Errorf("removing %s: %w", id, err)
		default:
			logger.Info("Removed %s", id)
		}
	}
	return nil
}

// Reembed rebuilds every stored vector with the configured model.
func (s *IngestService) Reembed(ctx context.Context) (int, error) {
	docs, err := s.docs.ListDocuments(ctx)
	if err != nil {
		return 0, err
	}
	if err := s.embedder.Redeclare(ctx); err != nil {
		return 0, err
	}

	vectors := s.embedder.vectors
	for i, doc := range docs {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		embedding, err := s.embedder.Embed(ctx, doc.Text)
		if err != nil {
			return i, fmt.Errorf("embedding %s: %w", doc.SourceID, err)
		}
		if err := vectors.Update(ctx, doc.SourceID, embedding); err != nil {
			return i, err
		}
		logger.Debug("Re-embedded %s", doc.SourceID)
	}
	return len(docs), nil
}

// ingestWork stores a raw OpenAlex work keyed by DOI or OpenAlex id.
func (s *IngestService) ingestWork(ctx context.Context, raw json.RawMessage) (domain.Work, error) {
	work, meta, err := domain.ParseWork(raw)
	if err != nil {
		return domain.Work{}, err
	}
	meta["citation"] = work.Citation()
	_, err = s.AddSource(ctx, work.Key(), work.Text(), meta)
	return work, err
}

// addFrontier resolves and ingests a list of work ids, skipping stored ones
// without a network call.
func (s *IngestService) addFrontier(ctx context.Context, name string, ids []string, limit int) error {
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}
	logger.Debug("Adding %d %s", len(ids), name)

	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return err
		}
		exists, err := s.docs.Exists(ctx, id, domain.NormaliseWorkID(id))
		if err != nil {
			return err
		}
		if exists {
			continue
		}
		raw, err := s.client.Work(ctx, id)
		if err != nil {
			logger.Warn("Something failed for %s, continuing: %v", id, err)
			continue
		}
		if _, err := s.ingestWork(ctx, raw); err != nil {
			if errors.Is(err, domain.ErrResolveFailed) {
				logger.Warn("Skipping %s: %v", id, err)
				continue
			}
			return err
		}
	}
	return nil
}

// addCiting pages through works citing work. With MaxCiting unset and the
// citing set above the trigger, Bypass or the confirm policy decides.
func (s *IngestService) addCiting(ctx context.Context, work domain.Work, opts driving.WorkOptions) error {
	limit := opts.MaxCiting
	if limit < 0 {
		limit = 0
	}
	askFirst := opts.MaxCiting == 0 && !opts.Bypass

	var (
		downloaded int
		itemErr    error
		first      = true
	)
	sweepErr := s.client.Works(ctx, domain.CitesFilter(work.ID), func(p driven.Page) bool {
		if first {
			first = false
			if askFirst && p.Count > s.trigger {
				decision := s.decide(ctx, domain.ConfirmRequest{
					Kind:    domain.ConfirmCiting,
					Subject: work.ID,
					Count:   p.Count,
				})
				switch decision.Verdict {
				case domain.Allow:
				case domain.Cap:
					if decision.Limit > 0 {
						limit = decision.Limit
						break
					}
					logger.Warn("Cap of %d citing works for %s, skipping", decision.Limit, work.ID)
					return false
				default:
					logger.Warn("Found %d citing works for %s, skipping", p.Count, work.ID)
					return false
				}
			}
		}

		for _, raw := range p.Results {
			if limit > 0 && downloaded >= limit {
				logger.Info("Reached limit of %d citing works", limit)
				return false
			}
			downloaded++
			if _, err := s.ingestWork(ctx, raw); err != nil {
				if errors.Is(err, domain.ErrResolveFailed) {
					logger.Warn("Skipping citing work: %v", err)
					continue
				}
				itemErr = err
				return false
			}
		}
		return true
	})
	if itemErr != nil {
		return itemErr
	}
	if sweepErr != nil {
		logger.Warn("Citing works of %s incomplete: %v", work.ID, sweepErr)
	}
	return nil
}

// decide consults the confirm policy; a nil policy denies.
func (s *IngestService) decide(ctx context.Context, req domain.ConfirmRequest) domain.Decision {
	if s.confirm == nil {
		return domain.Decision{Verdict: domain.Deny}
	}
	return s.confirm.Confirm(ctx, req)
}
