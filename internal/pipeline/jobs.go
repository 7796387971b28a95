package pipeline

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/dgallion1/docsift/internal/rank"
)

// JobStatus represents the state of an analysis job.
type JobStatus string

const (
	StatusQueued    JobStatus = "queued"
	StatusParsing   JobStatus = "parsing"
	StatusChunking  JobStatus = "chunking"
	StatusRanking   JobStatus = "ranking"
	StatusCompleted JobStatus = "completed"
	StatusFailed    JobStatus = "failed"
)

// Done reports whether the status is terminal.
func (s JobStatus) Done() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Job tracks one asynchronous analysis run.
type Job struct {
	mu sync.Mutex

	ID          string    `json:"job_id"`
	Persona     string    `json:"persona"`
	JobToBeDone string    `json:"job_to_be_done"`
	Status      JobStatus `json:"status"`
	Phase       string    `json:"phase"`

	Documents []DocumentInfo `json:"documents"`
	Progress  Progress       `json:"progress"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Internal: not serialized.
	inputs []Input
	result *rank.RunResult
	errors []string
}

// DocumentInfo identifies one uploaded document.
type DocumentInfo struct {
	Name        string `json:"name"`
	Bytes       int    `json:"bytes"`
	ContentHash string `json:"content_hash"`
}

// Progress tracks processing progress.
type Progress struct {
	Documents       int      `json:"documents"`
	DocumentsFailed int      `json:"documents_failed"`
	Chunks          int      `json:"chunks"`
	Sections        int      `json:"sections"`
	Errors          []string `json:"errors"`
}

// NewJob creates a queued job holding the uploaded documents.
func NewJob(persona, jobToBeDone string, inputs []Input) *Job {
	now := time.Now()
	docs := make([]DocumentInfo, len(inputs))
	for i, in := range inputs {
		docs[i] = DocumentInfo{Name: in.Name, Bytes: len(in.Data), ContentHash: ContentHashHex(in.Data)}
	}
	return &Job{
		ID:          generateULID(),
		Persona:     persona,
		JobToBeDone: jobToBeDone,
		Status:      StatusQueued,
		Phase:       "queued",
		Documents:   docs,
		CreatedAt:   now,
		UpdatedAt:   now,
		inputs:      inputs,
	}
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Cleanup removes expired jobs.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		job.mu.Lock()
		expired := now.Sub(job.UpdatedAt) > s.ttl
		job.mu.Unlock()
		if expired {
			delete(s.jobs, id)
		}
	}
}

// Len reports how many jobs are held.
func (s *JobStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.UpdatedAt = time.Now()
}

func (j *Job) SetDocuments(total int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.Documents = total
	j.UpdatedAt = time.Now()
}

func (j *Job) IncrDocumentsFailed() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.DocumentsFailed++
	j.UpdatedAt = time.Now()
}

func (j *Job) SetChunks(n int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.Chunks = n
	j.UpdatedAt = time.Now()
}

func (j *Job) SetSections(n int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.Sections = n
	j.UpdatedAt = time.Now()
}

// Complete stores the result, drops the uploaded bytes and marks the job
// completed.
func (j *Job) Complete(res rank.RunResult) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.result = &res
	j.inputs = nil
	j.Status = StatusCompleted
	j.Phase = "done"
	j.UpdatedAt = time.Now()
}

// Fail records err, drops the uploaded bytes and marks the job failed in
// the given phase.
func (j *Job) Fail(phase string, err error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err.Error())
	j.Progress.Errors = j.errors
	j.inputs = nil
	j.Status = StatusFailed
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// Inputs returns the uploaded documents.
func (j *Job) Inputs() []Input {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.inputs
}

// Result returns the run result once the job has completed.
func (j *Job) Result() (*rank.RunResult, JobStatus) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.result, j.Status
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID          string         `json:"job_id"`
	Persona     string         `json:"persona"`
	JobToBeDone string         `json:"job_to_be_done"`
	Status      JobStatus      `json:"status"`
	Phase       string         `json:"phase"`
	Documents   []DocumentInfo `json:"documents"`
	Progress    Progress       `json:"progress"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := append([]string{}, j.Progress.Errors...)
	docs := append([]DocumentInfo{}, j.Documents...)
	p := j.Progress
	p.Errors = errs
	return JobSnapshot{
		ID:          j.ID,
		Persona:     j.Persona,
		JobToBeDone: j.JobToBeDone,
		Status:      j.Status,
		Phase:       j.Phase,
		Documents:   docs,
		Progress:    p,
		CreatedAt:   j.CreatedAt,
		UpdatedAt:   j.UpdatedAt,
	}
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
