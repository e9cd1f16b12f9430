package pipeline

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"github.com/dgallion1/gridlock/internal/merge"
	"github.com/google/uuid"
)

// JobStatus is where a merge job is in its lifecycle.
type JobStatus string

const (
	StatusQueued      JobStatus = "queued"
	StatusLoading     JobStatus = "loading"
	StatusRecognizing JobStatus = "recognizing"
	StatusMerging     JobStatus = "merging"
	StatusCompleted   JobStatus = "completed"
	StatusFailed      JobStatus = "failed"
	StatusMismatch    JobStatus = "mismatch"
)

// Input is one uploaded file.
type Input struct {
	Filename string
	Data     []byte
}

// Progress counts merged rows.
type Progress struct {
	Rows       int        `json:"rows"`
	RowsMerged int        `json:"rows_merged"`
	Strategy   merge.Kind `json:"strategy,omitempty"`
	Errors     []string   `json:"errors"`
}

// Job tracks the merge of one page: a template plus either its text or an
// image to recognize. The exported fields are fixed at creation; everything
// else is read through Snapshot.
type Job struct {
	ID        string
	Key       string
	Options   merge.Options
	CreatedAt time.Time

	mu          sync.Mutex
	status      JobStatus
	phase       string
	progress    Progress
	contentHash string
	updatedAt   time.Time
	template    *Input
	text        *Input
	image       *Input
	result      *merge.Result
}

// NewJob returns a queued job with a fresh time-ordered ID.
func NewJob(key string, opts merge.Options) *Job {
	now := time.Now()
	return &Job{
		ID:        newJobID(),
		Key:       key,
		Options:   opts,
		CreatedAt: now,
		status:    StatusQueued,
		phase:     "queued",
		updatedAt: now,
	}
}

func newJobID() string {
	if id, err := uuid.NewV7(); err == nil {
		return id.String()
	}
	return uuid.NewString()
}

// update runs fn under the job lock and stamps the change.
func (j *Job) update(fn func()) {
	j.mu.Lock()
	defer j.mu.Unlock()
	fn()
	j.updatedAt = time.Now()
}

// SetStatus moves the job to status, with phase as a finer label.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.update(func() { j.status, j.phase = status, phase })
}

// AddError appends a message to the job's error list.
func (j *Job) AddError(msg string) {
	j.update(func() { j.progress.Errors = append(j.progress.Errors, msg) })
}

// SetInputs attaches the uploaded files. text or image may be nil, and the
// content hash covers whatever is present.
func (j *Job) SetInputs(template, text, image *Input) {
	h := sha256.New()
	for _, in := range []*Input{template, text, image} {
		if in != nil {
			h.Write(in.Data)
		}
	}
	sum := hex.EncodeToString(h.Sum(nil))
	j.update(func() {
		j.template, j.text, j.image = template, text, image
		j.contentHash = sum
	})
}

func (j *Job) inputs() (template, text, image *Input) {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.template, j.text, j.image
}

// SetResult records the merge outcome and its line counts.
func (j *Job) SetResult(res merge.Result) {
	j.update(func() {
		j.result = &res
		j.progress.Rows = len(res.Lines)
		j.progress.RowsMerged = len(res.Lines) - res.Failed()
		j.progress.Strategy = res.Strategy
	})
}

// Result returns the merge outcome, or nil before the merge has run.
func (j *Job) Result() *merge.Result {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.result
}

func (j *Job) lastUpdate() time.Time {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.updatedAt
}

// JobSnapshot is the JSON view of a job at one instant.
type JobSnapshot struct {
	ID          string          `json:"job_id"`
	Key         string          `json:"key"`
	Status      JobStatus       `json:"status"`
	Phase       string          `json:"phase"`
	ContentHash string          `json:"content_hash,omitempty"`
	Progress    Progress        `json:"progress"`
	Report      []string        `json:"report,omitempty"`
	Mismatch    *merge.Mismatch `json:"mismatch,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Snapshot copies the job state. Progress.Errors is never nil.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	progress := j.progress
	progress.Errors = append([]string{}, j.progress.Errors...)
	snap := JobSnapshot{
		ID:          j.ID,
		Key:         j.Key,
		Status:      j.status,
		Phase:       j.phase,
		ContentHash: j.contentHash,
		Progress:    progress,
		CreatedAt:   j.CreatedAt,
		UpdatedAt:   j.updatedAt,
	}
	if j.result != nil {
		snap.Report = append([]string(nil), j.result.Report...)
		snap.Mismatch = j.result.Mismatch
	}
	return snap
}
