// Package store provides an in-memory store implementation.
package store

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore is a thread-safe in-memory implementation of Store.
// Used for local mode and tests.
type MemoryStore struct {
	mu   sync.RWMutex
	jobs map[string]map[int]BuildRecord // job_key -> number -> record
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		jobs: make(map[string]map[int]BuildRecord),
	}
}

// SaveBuild upserts a build record.
func (s *MemoryStore) SaveBuild(ctx context.Context, rec *BuildRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	builds, ok := s.jobs[rec.JobKey]
	if !ok {
		builds = make(map[int]BuildRecord)
		s.jobs[rec.JobKey] = builds
	}
	builds[rec.Number] = *rec
	return nil
}

// GetBuild returns the record for a specific build.
func (s *MemoryStore) GetBuild(ctx context.Context, jobKey string, number int) (*BuildRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.jobs[jobKey][number]
	if !ok {
		return nil, ErrNotFound{JobKey: jobKey, Number: number}
	}
	recCopy := rec
	return &recCopy, nil
}

// PreviousBuild returns the newest record numbered strictly below number.
func (s *MemoryStore) PreviousBuild(ctx context.Context, jobKey string, number int) (*BuildRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	best := -1
	for n := range s.jobs[jobKey] {
		if n < number && n > best {
			best = n
		}
	}
	if best < 0 {
		return nil, ErrNotFound{JobKey: jobKey}
	}
	rec := s.jobs[jobKey][best]
	return &rec, nil
}

// ListRecent returns up to limit records for a job, newest first.
func (s *MemoryStore) ListRecent(ctx context.Context, jobKey string, limit int) ([]BuildRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	builds, ok := s.jobs[jobKey]
	if !ok {
		return nil, ErrNotFound{JobKey: jobKey}
	}

	recs := make([]BuildRecord, 0, len(builds))
	for _, rec := range builds {
		recs = append(recs, rec)
	}
	sort.Slice(recs, func(i, j int) bool { return recs[i].Number > recs[j].Number })

	if limit > 0 && len(recs) > limit {
		recs = recs[:limit]
	}
	return recs, nil
}

// ListJobs returns the keys of all jobs with recorded builds, sorted.
func (s *MemoryStore) ListJobs(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make([]string, 0, len(s.jobs))
	for key := range s.jobs {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error {
	return nil
}
