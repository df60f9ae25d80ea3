package server

import (
	"sync"
	"time"
)

// JobStatus tracks a plot job through its lifetime.
type JobStatus string

const (
	StatusPending JobStatus = "pending"
	StatusRunning JobStatus = "running"
	StatusDone    JobStatus = "done"
	StatusFailed  JobStatus = "failed"
)

// BoardSpec describes the board a plot request targets.
type BoardSpec struct {
	Name         string `json:"name"`
	CopperLayers int    `json:"copper_layers"`
	Title        string `json:"title,omitempty"`
	Revision     string `json:"revision,omitempty"`
	Company      string `json:"company,omitempty"`
}

// PlotRequest is the body of a plot submission.
type PlotRequest struct {
	Board            BoardSpec `json:"board"`
	Format           string    `json:"format,omitempty"`
	Layers           []string  `json:"layers,omitempty"`
	ProtelExtensions bool      `json:"protel_extensions,omitempty"`
	X1Compatibility  bool      `json:"x1_compat,omitempty"`
	CreateJobFile    bool      `json:"create_job_file,omitempty"`
}

// PlotFile records one produced plot file.
type PlotFile struct {
	Layer string `json:"layer"`
	Path  string `json:"path"`
}

// Job is one asynchronous plot run.
type Job struct {
	ID        string      `json:"id"`
	Status    JobStatus   `json:"status"`
	Request   PlotRequest `json:"request"`
	Files     []PlotFile  `json:"files,omitempty"`
	JobFile   string      `json:"job_file,omitempty"`
	Error     string      `json:"error,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
	ExpiresAt time.Time   `json:"expires_at"`
}

// MemoryStore keeps jobs in memory. Expired jobs read as absent and are
// reclaimed by Cleanup.
type MemoryStore struct {
	mu   sync.RWMutex
	jobs map[string]*Job
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{jobs: make(map[string]*Job)}
}

// Get returns a copy of the job, or nil when the job is missing or
// expired.
func (s *MemoryStore) Get(id string) *Job {
	s.mu.RLock()
	defer s.mu.RUnlock()

	job, ok := s.jobs[id]
	if !ok || time.Now().After(job.ExpiresAt) {
		return nil
	}
	cp := *job
	cp.Files = append([]PlotFile(nil), job.Files...)
	return &cp
}

// Set stores a copy of the job keyed by its ID.
func (s *MemoryStore) Set(job *Job) {
	cp := *job
	cp.Files = append([]PlotFile(nil), job.Files...)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = &cp
}

// Cleanup drops expired jobs and returns their IDs.
func (s *MemoryStore) Cleanup() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	var expired []string
	for id, job := range s.jobs {
		if now.After(job.ExpiresAt) {
			expired = append(expired, id)
			delete(s.jobs, id)
		}
	}
	return expired
}

// Stats counts live jobs by status.
func (s *MemoryStore) Stats() map[JobStatus]int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := time.Now()
	counts := make(map[JobStatus]int)
	for _, job := range s.jobs {
		if now.After(job.ExpiresAt) {
			continue
		}
		counts[job.Status]++
	}
	return counts
}
