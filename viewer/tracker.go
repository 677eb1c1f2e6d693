package viewer

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/anothercodingguy/vidhived/model"
)

// JobState is the lifecycle stage of one document's analysis request
type JobState string

const (
	StateIdle       JobState = "idle"
	StateUploading  JobState = "uploading"
	StateProcessing JobState = "processing"
	StateCompleted  JobState = "completed"
	StateFailed     JobState = "failed"
)

// DefaultPollInterval is how often the tracker asks the backend for status
const DefaultPollInterval = 3 * time.Second

// API is the backend surface the tracker needs
type API interface {
	// Upload submits a PDF and returns the assigned document ID
	Upload(ctx context.Context, filename string, body io.Reader) (string, error)
	// Document fetches the current analysis status for a document
	Document(ctx context.Context, documentID string) (*DocumentStatus, error)
}

// DocumentStatus is the poll response
type DocumentStatus struct {
	DocumentID string         `json:"documentId"`
	Status     string         `json:"status"` // processing, completed, failed
	Analysis   []model.Clause `json:"analysis,omitempty"`
	Error      string         `json:"error,omitempty"`
}

// JobTracker owns the analysis lifecycle of a single document: submission,
// status polling and exactly-once delivery of the terminal outcome.
//
// Transitions are monotonic: idle -> uploading -> processing -> completed or
// failed, plus failed -> idle via Reset. Every transition checks the current
// state under the mutex, so a stale poll response arriving after a terminal
// state is a no-op.
type JobTracker struct {
	mu       sync.Mutex
	api      API
	interval time.Duration

	state      JobState
	documentID string
	result     []model.Clause
	failure    error
	stop       chan struct{}

	// terminal callbacks, each invoked at most once per submission
	onCompleted func([]model.Clause)
	onFailed    func(error)
}

// Option configures a JobTracker
type Option func(*JobTracker)

// WithPollInterval overrides the default poll interval
func WithPollInterval(d time.Duration) Option {
	return func(t *JobTracker) {
		if d > 0 {
			t.interval = d
		}
	}
}

// WithOnCompleted registers the terminal result consumer
func WithOnCompleted(fn func([]model.Clause)) Option {
	return func(t *JobTracker) { t.onCompleted = fn }
}

// WithOnFailed registers the terminal failure consumer
func WithOnFailed(fn func(error)) Option {
	return func(t *JobTracker) { t.onFailed = fn }
}

func NewJobTracker(api API, opts ...Option) *JobTracker {
	t := &JobTracker{
		api:      api,
		interval: DefaultPollInterval,
		state:    StateIdle,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// State returns the current job state
func (t *JobTracker) State() JobState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// DocumentID returns the handle assigned at upload acceptance, or "" before it
func (t *JobTracker) DocumentID() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.documentID
}

// Result returns the stored analysis result once the state is completed
func (t *JobTracker) Result() []model.Clause {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.result
}

// Err returns the terminal failure once the state is failed
func (t *JobTracker) Err() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.failure
}

// Submit uploads a PDF and, on acceptance, starts the polling loop.
// The content type is checked before any network call; a non-PDF submission
// returns ErrInvalidInput and causes no state transition. Submission is only
// allowed from idle.
func (t *JobTracker) Submit(ctx context.Context, filename, contentType string, body io.Reader) error {
	if contentType != "application/pdf" {
		return ErrInvalidInput
	}

	t.mu.Lock()
	if t.state != StateIdle {
		t.mu.Unlock()
		return fmt.Errorf("%w: submit from %s", ErrBadState, t.state)
	}
	t.state = StateUploading
	t.mu.Unlock()

	documentID, err := t.api.Upload(ctx, filename, body)
	if err != nil {
		wrapped := fmt.Errorf("%w: upload: %v", ErrTransport, err)
		t.fail(wrapped)
		return wrapped
	}

	t.mu.Lock()
	if t.state != StateUploading {
		// torn down while the upload was in flight
		t.mu.Unlock()
		return fmt.Errorf("%w: upload finished in %s", ErrBadState, t.state)
	}
	t.documentID = documentID
	t.state = StateProcessing
	stop := make(chan struct{})
	t.stop = stop
	t.mu.Unlock()

	go t.pollLoop(documentID, stop)
	return nil
}

// pollLoop asks the backend for status at a fixed interval until a terminal
// response arrives. Only completed/failed responses (or a transport error)
// terminate it, and termination is idempotent: a late terminal response after
// the loop has stopped is ignored by the state checks in complete and fail.
func (t *JobTracker) pollLoop(documentID string, stop chan struct{}) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}

		status, err := t.api.Document(context.Background(), documentID)
		if err != nil {
			// Network failure during polling is terminal; recovery is an
			// explicit user-initiated reset and resubmit
			t.fail(fmt.Errorf("%w: poll: %v", ErrTransport, err))
			return
		}

		switch status.Status {
		case model.StatusCompleted:
			t.complete(status.Analysis)
			return
		case model.StatusFailed:
			msg := status.Error
			if msg == "" {
				msg = "pipeline reported failure"
			}
			t.fail(fmt.Errorf("%w: %s", ErrAnalysisFailed, msg))
			return
		default:
			// still processing, keep polling
		}
	}
}

// complete records the terminal result. First terminal transition wins; a
// second completion (late duplicate poll response) is a no-op.
func (t *JobTracker) complete(result []model.Clause) {
	t.mu.Lock()
	if t.state != StateProcessing {
		t.mu.Unlock()
		return
	}
	t.state = StateCompleted
	t.result = result
	t.stopLocked()
	deliver := t.onCompleted
	t.mu.Unlock()

	if deliver != nil {
		deliver(result)
	}
}

// fail records the terminal failure, from uploading or processing
func (t *JobTracker) fail(err error) {
	t.mu.Lock()
	if t.state != StateUploading && t.state != StateProcessing {
		t.mu.Unlock()
		return
	}
	t.state = StateFailed
	t.failure = err
	t.result = nil
	t.stopLocked()
	deliver := t.onFailed
	t.mu.Unlock()

	if deliver != nil {
		deliver(err)
	}
}

// Reset discards the document handle, result and polling state. It is only
// available from failed or idle.
func (t *JobTracker) Reset() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != StateFailed && t.state != StateIdle {
		return fmt.Errorf("%w: reset from %s", ErrBadState, t.state)
	}
	t.stopLocked()
	t.state = StateIdle
	t.documentID = ""
	t.result = nil
	t.failure = nil
	return nil
}

// Close tears down the polling loop when the owning session ends, so no
// orphaned timer keeps firing against a discarded document handle.
func (t *JobTracker) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopLocked()
	if t.state == StateUploading || t.state == StateProcessing {
		t.state = StateFailed
		t.failure = fmt.Errorf("%w: session closed", ErrBadState)
	}
}

// stopLocked closes the poll loop's stop channel exactly once.
// Caller must hold the mutex.
func (t *JobTracker) stopLocked() {
	if t.stop != nil {
		close(t.stop)
		t.stop = nil
	}
}
