// Package memory keeps links and clicks in process memory. It backs the
// "memory" storage backend for local runs and doubles as the store in
// transport-level tests.
package memory

import (
	"context"
	"sync"

	"github.com/IgorGrieder/shortlink/internal/processing/links"
)

type Store struct {
	mu     sync.RWMutex
	bySlug map[string]*links.Link
	byID   map[string]*links.Link
	clicks map[string][]links.ClickLog
}

func NewStore() *Store {
	return &Store{
		bySlug: make(map[string]*links.Link),
		byID:   make(map[string]*links.Link),
		clicks: make(map[string][]links.ClickLog),
	}
}

func (s *Store) Insert(_ context.Context, link *links.Link) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.bySlug[link.Slug]; exists {
		return links.ErrSlugTaken
	}

	stored := *link
	s.bySlug[stored.Slug] = &stored
	s.byID[stored.ID] = &stored
	return nil
}

// FindBySlug returns a copy so callers cannot bypass RecordClick.
func (s *Store) FindBySlug(_ context.Context, slug string) (*links.Link, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	link, ok := s.bySlug[slug]
	if !ok {
		return nil, links.ErrNotFound
	}
	out := *link
	return &out, nil
}

func (s *Store) ExistsBySlug(_ context.Context, slug string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.bySlug[slug]
	return ok, nil
}

func (s *Store) RecordClick(_ context.Context, click *links.ClickLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	link, ok := s.byID[click.LinkID]
	if !ok {
		return links.ErrNotFound
	}

	s.clicks[link.ID] = append(s.clicks[link.ID], *click)
	link.TotalClicks++
	return nil
}

// ClickLogs returns the click rows stored for a link.
func (s *Store) ClickLogs(linkID string) []links.ClickLog {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]links.ClickLog(nil), s.clicks[linkID]...)
}

// Len is the number of stored links.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.bySlug)
}
