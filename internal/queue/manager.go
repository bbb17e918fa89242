package queue

import (
	"sync"
	"time"
)

// Manager serializes access to the pending FIFO and the single current-job
// slot. Pro Tools supports one active session at a time, so execution is
// strictly serial: at most one job is ever current.
//
// One mutex guards both the pending slice and the current reference, so no
// caller can observe one updated without the other.
type Manager struct {
	mu      sync.Mutex
	pending []*Job
	current *Job
}

// NewManager returns an empty queue.
func NewManager() *Manager {
	return &Manager{}
}

// Add appends a job to the tail of the pending queue.
func (m *Manager) Add(job *Job) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = append(m.pending, job)
}

// GetNext pops the head of the pending queue and installs it as the
// current job. Returns nil when the queue is empty.
func (m *Manager) GetNext() *Job {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.pending) == 0 {
		return nil
	}
	job := m.pending[0]
	m.pending[0] = nil
	m.pending = m.pending[1:]
	m.current = job
	return job
}

// GetCurrent returns the currently executing job, or nil.
func (m *Manager) GetCurrent() *Job {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Remove deletes a pending job by id. It reports false when the id matches
// the current job (an executing job cannot be removed) or no pending job
// matches.
func (m *Manager) Remove(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current != nil && m.current.ID == id {
		return false
	}
	for i, job := range m.pending {
		if job.ID == id {
			m.pending = append(m.pending[:i], m.pending[i+1:]...)
			return true
		}
	}
	return false
}

// Clear empties the pending queue, leaving the current job untouched, and
// returns the number of jobs removed.
func (m *Manager) Clear() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := len(m.pending)
	m.pending = nil
	return count
}

// CompleteCurrent marks the current job completed and vacates the slot.
// No-op when nothing is current.
func (m *Manager) CompleteCurrent() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return
	}
	m.current.Status = StatusCompleted
	if m.current.CompletedAt.IsZero() {
		m.current.CompletedAt = time.Now().UTC()
	}
	m.current = nil
}

// FailCurrent marks the current job failed with the given message and
// vacates the slot. No-op when nothing is current.
func (m *Manager) FailCurrent(message string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.current == nil {
		return
	}
	m.current.Status = StatusFailed
	m.current.ErrorMessage = message
	if m.current.CompletedAt.IsZero() {
		m.current.CompletedAt = time.Now().UTC()
	}
	m.current = nil
}

// AllJobs returns a point-in-time snapshot: the current job (if any)
// followed by pending jobs in FIFO order.
func (m *Manager) AllJobs() []*Job {
	m.mu.Lock()
	defer m.mu.Unlock()
	jobs := make([]*Job, 0, len(m.pending)+1)
	if m.current != nil {
		jobs = append(jobs, m.current)
	}
	jobs = append(jobs, m.pending...)
	return jobs
}

// Size counts pending jobs. The current job is deliberately excluded: a
// queue whose only job is running reports empty.
func (m *Manager) Size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}

// IsEmpty reports whether no jobs are pending.
func (m *Manager) IsEmpty() bool {
	return m.Size() == 0
}

// HasRunningJob reports whether a job currently occupies the current slot.
func (m *Manager) HasRunningJob() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current != nil
}
