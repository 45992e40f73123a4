package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/litdb/litdb/internal/core/domain"
	"github.com/litdb/litdb/internal/core/ports/driven"
	"github.com/litdb/litdb/internal/core/ports/driving"
	"github.com/litdb/litdb/internal/logger"
)

// Ensure TagService implements the interface.
var _ driving.TagService = (*TagService)(nil)

// TagService manages the tag vocabulary.
type TagService struct {
	tags driven.TagStore
}

// NewTagService creates a tag service.
func NewTagService(tags driven.TagStore) *TagService {
	return &TagService{tags: tags}
}

// AddTags attaches every tag to every source.
func (s *TagService) AddTags(ctx context.Context, sourceIDs, tags []string) error {
	tags = cleanTags(tags)
	if len(tags) == 0 {
		return fmt.Errorf("no tags given: %w", domain.ErrInvalidInput)
	}
	for _, id := range sourceIDs {
		if err := s.tags.AddTags(ctx, id, tags); err != nil {
			return fmt.Errorf("tagging %s: %w", id, err)
		}
		logger.Debug("Tagged %s with %v", id, tags)
	}
	return nil
}

// RemoveTags detaches every tag from every source.
func (s *TagService) RemoveTags(ctx context.Context, sourceIDs, tags []string) error {
	tags = cleanTags(tags)
	for _, id := range sourceIDs {
		if err := s.tags.RemoveTags(ctx, id, tags); err != nil {
			return fmt.Errorf("untagging %s: %w", id, err)
		}
	}
	return nil
}

// DeleteTags removes tags from the vocabulary and from every source.
func (s *TagService) DeleteTags(ctx context.Context, tags []string) error {
	for _, tag := range cleanTags(tags) {
		if err := s.tags.DeleteTag(ctx, tag); err != nil {
			return fmt.Errorf("deleting tag %s: %w", tag, err)
		}
		logger.Info("Deleted tag %s", tag)
	}
	return nil
}

// ListTags returns every tag with its document count.
func (s *TagService) ListTags(ctx context.Context) ([]domain.Tag, error) {
	return s.tags.ListTags(ctx)
}

// Tagged returns the documents carrying tag.
func (s *TagService) Tagged(ctx context.Context, tag string) ([]domain.Document, error) {
	return s.tags.Tagged(ctx, strings.TrimSpace(tag))
}

// cleanTags trims whitespace and drops empty tags.
func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}
