package pipeline

import (
	"sync"
	"time"
)

// JobStore keeps jobs in memory until they have been idle for longer than
// its TTL.
type JobStore struct {
	ttl time.Duration

	mu   sync.RWMutex
	byID map[string]*Job
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{ttl: ttl, byID: make(map[string]*Job)}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	s.byID[job.ID] = job
	s.mu.Unlock()
}

func (s *JobStore) Get(id string) *Job {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.byID[id]
}

func (s *JobStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

// Cleanup evicts idle jobs and returns how many it removed.
func (s *JobStore) Cleanup() int {
	cutoff := time.Now().Add(-s.ttl)
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, job := range s.byID {
		if job.lastUpdate().Before(cutoff) {
			delete(s.byID, id)
			removed++
		}
	}
	return removed
}
