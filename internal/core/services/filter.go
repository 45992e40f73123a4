package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/litdb/litdb/internal/core/domain"
	"github.com/litdb/litdb/internal/core/ports/driven"
	"github.com/litdb/litdb/internal/core/ports/driving"
	"github.com/litdb/litdb/internal/logger"
)

// Ensure FilterService implements the interface.
var _ driving.FilterService = (*FilterService)(nil)

// FilterService manages saved OpenAlex filters and replays them from their
// watermark date.
type FilterService struct {
	filters driven.FilterStore
	ingest  driving.IngestService
	client  driven.MetadataClient
	now     func() time.Time
}

// NewFilterService creates a filter service.
func NewFilterService(
	filters driven.FilterStore,
	ingest driving.IngestService,
	client driven.MetadataClient,
) *FilterService {
	return &FilterService{
		filters: filters,
		ingest:  ingest,
		client:  client,
		now:     time.Now,
	}
}

func (s *FilterService) today() string {
	return s.now().Format(domain.DateLayout)
}

// UpdateFilter fetches works matching expr created since lastUpdated (a
// year back when empty) and ingests them. The stored watermark moves to
// today only when every page and every write succeeded.
func (s *FilterService) UpdateFilter(ctx context.Context, expr, lastUpdated string) ([]domain.Document, error) {
	since := domain.Filter{Expr: expr, LastUpdated: lastUpdated}.Since(s.now())
	query := domain.WithCreatedSince(expr, since)
	logger.Section("Update Filter")
	logger.Debug("Filter: %s", query)

	var (
		added  []domain.Document
		failed int
	)
	sweepErr := s.client.Works(ctx, query, func(p driven.Page) bool {
		for _, raw := range p.Results {
			work, meta, err := domain.ParseWork(raw)
			if err != nil {
				logger.Warn("Skipping result of %s: %v", expr, err)
				failed++
				continue
			}
			meta["citation"] = work.Citation()
			ok, err := s.ingest.AddSource(ctx, work.Key(), work.Text(), meta)
			if err != nil {
				logger.Warn("Adding %s failed: %v", work.Key(), err)
				failed++
				continue
			}
			if ok {
				added = append(added, domain.Document{SourceID: work.Key(), Text: work.Text(), Metadata: meta})
			}
		}
		return ctx.Err() == nil
	})

	if sweepErr == nil {
		sweepErr = ctx.Err()
	}
	if sweepErr != nil {
		return added, fmt.Errorf("filter %s: %v: %w", expr, sweepErr, domain.ErrIncompleteSweep)
	}
	if failed > 0 {
		return added, fmt.Errorf("filter %s: %d results not stored: %w", expr, failed, domain.ErrIncompleteSweep)
	}

	err := s.filters.SetLastUpdated(ctx, expr, s.today())
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return added, err
	}
	logger.Info("%s: %d new works", expr, len(added))
	return added, nil
}

// UpdateFilters replays every stored filter. Failures are logged and
// joined; the remaining filters still run.
func (s *FilterService) UpdateFilters(ctx context.Context) ([]domain.Document, error) {
	filters, err := s.filters.ListFilters(ctx)
	if err != nil {
		return nil, err
	}

	var (
		all  []domain.Document
		errs []error
	)
	for _, f := range filters {
		if err := ctx.Err(); err != nil {
			return all, err
		}
		docs, err := s.UpdateFilter(ctx, f.Expr, f.LastUpdated)
		all = append(all, docs...)
		if err != nil {
			logger.Warn("Updating %s failed: %v", f.Expr, err)
			errs = append(errs, err)
		}
	}
	return all, errors.Join(errs...)
}

// AddFilter saves a filter without running it. An existing filter keeps
// its watermark.
func (s *FilterService) AddFilter(ctx context.Context, expr, description string) error {
	return s.saveFilter(ctx, domain.Filter{Expr: strings.TrimSpace(expr), Description: description})
}

// RemoveFilter deletes a saved filter.
func (s *FilterService) RemoveFilter(ctx context.Context, expr string) error {
	return s.filters.DeleteFilter(ctx, expr)
}

// ListFilters returns every saved filter.
func (s *FilterService) ListFilters(ctx context.Context) ([]domain.Filter, error) {
	return s.filters.ListFilters(ctx)
}

// Watch saves expr after checking that OpenAlex returns results for it.
func (s *FilterService) Watch(ctx context.Context, expr, description string) error {
	expr = strings.TrimSpace(expr)
	count := 0
	err := s.client.Works(ctx, expr, func(p driven.Page) bool {
		count = max(p.Count, len(p.Results))
		return false
	})
	if err != nil {
		return fmt.Errorf("checking %s: %w", expr, err)
	}
	if count == 0 {
		return fmt.Errorf("%s does not seem valid: %w", expr, domain.ErrNoResults)
	}
	logger.Info("Watching %s", expr)
	return s.saveFilter(ctx, domain.Filter{Expr: expr, Description: description})
}

// Follow ingests an author's works and saves a filter for new ones,
// watermarked today.
func (s *FilterService) Follow(ctx context.Context, orcid string) error {
	orcid = strings.TrimSpace(orcid)
	if orcid == "" {
		return fmt.Errorf("empty orcid: %w", domain.ErrInvalidInput)
	}
	if !strings.HasPrefix(orcid, "http") {
		orcid = "https://orcid.org/" + orcid
	}

	if err := s.ingest.AddAuthor(ctx, orcid); err != nil {
		return err
	}
	author, err := s.client.Author(ctx, orcid)
	if err != nil {
		return err
	}

	f := domain.Filter{Expr: domain.OrcidFilter(orcid), Description: author.DisplayName, LastUpdated: s.today()}
	if _, err := s.filters.GetFilter(ctx, f.Expr); err == nil {
		return nil
	}
	logger.Info("Following %s: %s", author.DisplayName, orcid)
	return s.filters.SaveFilter(ctx, f)
}

// WatchCiting saves a filter for works citing id.
func (s *FilterService) WatchCiting(ctx context.Context, id string) error {
	wid, err := s.resolveWorkID(ctx, id)
	if err != nil {
		return err
	}
	return s.saveFilter(ctx, domain.Filter{
		Expr:        domain.CitesFilter(wid),
		Description: "Citing papers for " + id,
	})
}

// WatchRelated saves a filter for works related to id.
func (s *FilterService) WatchRelated(ctx context.Context, id string) error {
	wid, err := s.resolveWorkID(ctx, id)
	if err != nil {
		return err
	}
	return s.saveFilter(ctx, domain.Filter{
		Expr:        domain.RelatedFilter(wid),
		Description: "Related papers for " + id,
	})
}

// resolveWorkID returns the OpenAlex id of a DOI or work id.
func (s *FilterService) resolveWorkID(ctx context.Context, id string) (string, error) {
	raw, err := s.client.Work(ctx, id)
	if err != nil {
		return "", err
	}
	work, _, err := domain.ParseWork(raw)
	if err != nil {
		return "", err
	}
	return work.ID, nil
}

// saveFilter inserts f unless a filter with the same expression exists.
func (s *FilterService) saveFilter(ctx context.Context, f domain.Filter) error {
	existing, err := s.filters.GetFilter(ctx, f.Expr)
	switch {
	case err == nil:
		if f.Description == "" {
			f.Description = existing.Description
		}
		f.LastUpdated = existing.LastUpdated
	case !errors.Is(err, domain.ErrNotFound):
		return err
	}
	return s.filters.SaveFilter(ctx, f)
}
