// Package job tracks long-running conversion/upload jobs so the web UI can
// poll their progress and fetch results.
package job

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Level classifies a status event.
type Level string

const (
	Info  Level = "info"
	Error Level = "error"
)

// Event is one progress entry of a job, in append order.
type Event struct {
	Time  time.Time `json:"time"`
	Level Level     `json:"level"`
	Text  string    `json:"text"`
}

// Job is the status of one conversion/upload job. All methods are safe for
// concurrent use; the worker goroutine appends while handlers snapshot.
type Job struct {
	mu         sync.Mutex
	id         string
	name       string
	created    time.Time
	events     []Event
	done       bool
	result     []byte
	resultName string
}

func newJob(name string) *Job {
	return &Job{id: uuid.NewString(), name: name, created: time.Now()}
}

// ID returns the job's identifier, used in polling and result URLs.
func (j *Job) ID() string { return j.id }

// Name returns the display name (usually the uploaded filename).
func (j *Job) Name() string { return j.name }

// Infof appends a progress event.
func (j *Job) Infof(format string, args ...any) { j.append(Info, format, args...) }

// Errorf appends an error event. The job keeps running; whether an error
// aborts the batch is the worker's decision.
func (j *Job) Errorf(format string, args ...any) { j.append(Error, format, args...) }

// SetResult attaches a downloadable file to the job.
func (j *Job) SetResult(name string, data []byte) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.resultName = name
	j.result = append([]byte(nil), data...)
}

// Finish marks the job done. Further events are still recorded but clients
// stop polling after seeing done.
func (j *Job) Finish() {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.done = true
}

// Result returns the downloadable file, if any.
func (j *Job) Result() (name string, data []byte, ok bool) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.result == nil {
		return "", nil, false
	}
	return j.resultName, append([]byte(nil), j.result...), true
}

// Snapshot is the poll response for a job.
type Snapshot struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Events    []Event `json:"events"`
	Done      bool    `json:"done"`
	HasResult bool    `json:"hasResult"`
}

// Snapshot returns a copy of the job's current state.
func (j *Job) Snapshot() Snapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	return Snapshot{
		ID:        j.id,
		Name:      j.name,
		Events:    append([]Event(nil), j.events...),
		Done:      j.done,
		HasResult: j.result != nil,
	}
}

func (j *Job) append(level Level, format string, args ...any) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.events = append(j.events, Event{Time: time.Now(), Level: level, Text: fmt.Sprintf(format, args...)})
}
