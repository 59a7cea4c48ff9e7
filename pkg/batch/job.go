package batch

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/menta2k/image-cropper/pkg/types"
)

// DefaultPrefix names batch artifacts batch_<index>_<name>
const DefaultPrefix = "batch"

// State of a batch job
type State int

const (
	StateIdle State = iota
	StateRunning
	StateDone
	StateCancelled
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateDone:
		return "done"
	case StateCancelled:
		return "cancelled"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Terminal reports whether no more items will be processed
func (s State) Terminal() bool {
	return s == StateDone || s == StateCancelled
}

// ItemError records why one item was skipped
type ItemError struct {
	Index int // 1-based position in the job
	Name  string
	Err   error
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("item %d (%s): %v", e.Index, e.Name, e.Err)
}

func (e *ItemError) Unwrap() error {
	return e.Err
}

// Report summarizes a job
type Report struct {
	JobID     string       `json:"job_id"`
	State     State        `json:"-"`
	Attempted int          `json:"attempted"`
	Succeeded int          `json:"succeeded"`
	Skipped   int          `json:"skipped"`
	Artifacts []string     `json:"artifacts"`
	Errors    []*ItemError `json:"-"`
}

// Job is one batch export: an ordered item list, a target snapshot and a cursor
type Job struct {
	ID     string
	Prefix string
	Items  []types.SourceImage
	Target types.TargetDimension

	cursor int
	state  State
	report Report
}

// NewJob snapshots items and target. Later changes to either do not affect the job.
func NewJob(items []types.SourceImage, target types.TargetDimension, prefix string) (*Job, error) {
	if err := target.Validate(); err != nil {
		return nil, err
	}
	if prefix == "" {
		prefix = DefaultPrefix
	}
	snapshot := make([]types.SourceImage, len(items))
	copy(snapshot, items)

	id := uuid.New().String()
	return &Job{
		ID:     id,
		Prefix: prefix,
		Items:  snapshot,
		Target: target,
		report: Report{JobID: id},
	}, nil
}

// State returns the current state
func (j *Job) State() State {
	return j.state
}

// Cursor returns the 0-based index of the next item to process
func (j *Job) Cursor() int {
	return j.cursor
}

// Report returns a copy of the job's report so far
func (j *Job) Report() Report {
	r := j.report
	r.State = j.state
	r.Artifacts = append([]string(nil), j.report.Artifacts...)
	r.Errors = append([]*ItemError(nil), j.report.Errors...)
	return r
}

// ArtifactName returns <prefix>_<index>_<name>. index is the item's original
// 1-based position, so numbering is stable across skipped items.
func ArtifactName(prefix string, index int, name string) string {
	return fmt.Sprintf("%s_%d_%s", prefix, index, name)
}
