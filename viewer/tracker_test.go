package viewer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/anothercodingguy/vidhived/model"
)

// fakeAPI scripts the backend: a fixed document ID and a sequence of poll
// responses returned in order, the last one repeating.
type fakeAPI struct {
	mu         sync.Mutex
	uploadErr  error
	documentID string
	responses  []pollResponse
	uploads    int
	polls      int
}

type pollResponse struct {
	status *DocumentStatus
	err    error
}

func (f *fakeAPI) Upload(ctx context.Context, filename string, body io.Reader) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads++
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	return f.documentID, nil
}

func (f *fakeAPI) Document(ctx context.Context, documentID string) (*DocumentStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	idx := f.polls
	f.polls++
	if idx >= len(f.responses) {
		idx = len(f.responses) - 1
	}
	r := f.responses[idx]
	return r.status, r.err
}

func (f *fakeAPI) pollCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.polls
}

func processing(id string) pollResponse {
	return pollResponse{status: &DocumentStatus{DocumentID: id, Status: model.StatusProcessing}}
}

func completed(id string, clauses []model.Clause) pollResponse {
	return pollResponse{status: &DocumentStatus{DocumentID: id, Status: model.StatusCompleted, Analysis: clauses}}
}

func failed(id, msg string) pollResponse {
	return pollResponse{status: &DocumentStatus{DocumentID: id, Status: model.StatusFailed, Error: msg}}
}

func submitPDF(t *testing.T, tracker *JobTracker) {
	t.Helper()
	err := tracker.Submit(context.Background(), "contract.pdf", "application/pdf", strings.NewReader("%PDF-1.4"))
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
}

func TestJobTrackerCompletesAfterPolling(t *testing.T) {
	clauses := []model.Clause{
		{ID: "clause-1", Category: model.CategoryHigh, Location: model.Location{Page: 1}},
		{ID: "clause-2", Category: model.CategoryMedium, Location: model.Location{Page: 2}},
	}
	api := &fakeAPI{
		documentID: "doc-123",
		responses: []pollResponse{
			processing("doc-123"),
			processing("doc-123"),
			completed("doc-123", clauses),
		},
	}

	done := make(chan []model.Clause, 1)
	tracker := NewJobTracker(api,
		WithPollInterval(time.Millisecond),
		WithOnCompleted(func(result []model.Clause) { done <- result }),
	)

	submitPDF(t, tracker)

	if tracker.DocumentID() != "doc-123" {
		t.Errorf("Expected document ID doc-123, got %q", tracker.DocumentID())
	}

	select {
	case result := <-done:
		if len(result) != 2 {
			t.Errorf("Expected 2 clauses, got %d", len(result))
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for completion")
	}

	if tracker.State() != StateCompleted {
		t.Errorf("Expected state completed, got %s", tracker.State())
	}
	if got := api.pollCount(); got != 3 {
		t.Errorf("Expected exactly 3 polls, got %d", got)
	}
	if len(tracker.Result()) != 2 {
		t.Errorf("Expected stored result with 2 clauses, got %d", len(tracker.Result()))
	}

	// Completion must be delivered exactly once
	select {
	case <-done:
		t.Error("Completion callback fired more than once")
	case <-time.After(20 * time.Millisecond):
	}
}

func TestJobTrackerRejectsNonPDFBeforeUpload(t *testing.T) {
	api := &fakeAPI{documentID: "doc-1"}
	tracker := NewJobTracker(api)

	err := tracker.Submit(context.Background(), "contract.docx", "application/msword", strings.NewReader("data"))
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("Expected ErrInvalidInput, got %v", err)
	}
	if tracker.State() != StateIdle {
		t.Errorf("Expected state to remain idle, got %s", tracker.State())
	}
	if api.uploads != 0 {
		t.Errorf("Expected no upload attempt, got %d", api.uploads)
	}
}

func TestJobTrackerRejectsSecondSubmit(t *testing.T) {
	api := &fakeAPI{
		documentID: "doc-1",
		responses:  []pollResponse{processing("doc-1")},
	}
	tracker := NewJobTracker(api, WithPollInterval(time.Hour))
	defer tracker.Close()

	submitPDF(t, tracker)

	err := tracker.Submit(context.Background(), "other.pdf", "application/pdf", strings.NewReader("%PDF-1.4"))
	if !errors.Is(err, ErrBadState) {
		t.Errorf("Expected ErrBadState, got %v", err)
	}
}

func TestJobTrackerUploadFailure(t *testing.T) {
	api := &fakeAPI{uploadErr: fmt.Errorf("connection refused")}

	var failure error
	tracker := NewJobTracker(api, WithOnFailed(func(err error) { failure = err }))

	err := tracker.Submit(context.Background(), "contract.pdf", "application/pdf", strings.NewReader("%PDF-1.4"))
	if !errors.Is(err, ErrTransport) {
		t.Fatalf("Expected ErrTransport, got %v", err)
	}
	if tracker.State() != StateFailed {
		t.Errorf("Expected state failed, got %s", tracker.State())
	}
	if !errors.Is(failure, ErrTransport) {
		t.Errorf("Expected failure callback with ErrTransport, got %v", failure)
	}
}

func TestJobTrackerPollTransportFailure(t *testing.T) {
	api := &fakeAPI{
		documentID: "doc-1",
		responses:  []pollResponse{{err: fmt.Errorf("network down")}},
	}

	done := make(chan error, 1)
	tracker := NewJobTracker(api,
		WithPollInterval(time.Millisecond),
		WithOnFailed(func(err error) { done <- err }),
	)

	submitPDF(t, tracker)

	select {
	case err := <-done:
		if !errors.Is(err, ErrTransport) {
			t.Errorf("Expected ErrTransport, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for failure")
	}

	if tracker.State() != StateFailed {
		t.Errorf("Expected state failed, got %s", tracker.State())
	}
}

func TestJobTrackerPipelineFailure(t *testing.T) {
	api := &fakeAPI{
		documentID: "doc-1",
		responses: []pollResponse{
			processing("doc-1"),
			failed("doc-1", "OCR task failed"),
		},
	}

	done := make(chan error, 1)
	tracker := NewJobTracker(api,
		WithPollInterval(time.Millisecond),
		WithOnFailed(func(err error) { done <- err }),
	)

	submitPDF(t, tracker)

	select {
	case err := <-done:
		if !errors.Is(err, ErrAnalysisFailed) {
			t.Errorf("Expected ErrAnalysisFailed, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for failure")
	}
	if tracker.Result() != nil {
		t.Error("Expected no result after a failed analysis")
	}
}

func TestJobTrackerFirstTerminalWins(t *testing.T) {
	var completions, failures int
	tracker := NewJobTracker(nil,
		WithOnCompleted(func([]model.Clause) { completions++ }),
		WithOnFailed(func(error) { failures++ }),
	)
	tracker.state = StateProcessing

	tracker.complete([]model.Clause{{ID: "clause-1"}})

	// A late duplicate poll response after the terminal state is a no-op
	tracker.complete([]model.Clause{{ID: "clause-9"}})
	tracker.fail(fmt.Errorf("late failure"))

	if completions != 1 {
		t.Errorf("Expected exactly 1 completion, got %d", completions)
	}
	if failures != 0 {
		t.Errorf("Expected no failure delivery, got %d", failures)
	}
	if tracker.State() != StateCompleted {
		t.Errorf("Expected state completed, got %s", tracker.State())
	}
	if len(tracker.Result()) != 1 || tracker.Result()[0].ID != "clause-1" {
		t.Errorf("Expected the first result to stick, got %+v", tracker.Result())
	}
}

func TestJobTrackerFailureThenLateCompletion(t *testing.T) {
	tracker := NewJobTracker(nil)
	tracker.state = StateProcessing

	tracker.fail(ErrAnalysisFailed)
	tracker.complete([]model.Clause{{ID: "clause-1"}})

	if tracker.State() != StateFailed {
		t.Errorf("Expected the failure to stick, got %s", tracker.State())
	}
	if tracker.Result() != nil {
		t.Error("Expected no result after a terminal failure")
	}
}

func TestJobTrackerReset(t *testing.T) {
	api := &fakeAPI{uploadErr: fmt.Errorf("boom")}
	tracker := NewJobTracker(api)

	tracker.Submit(context.Background(), "contract.pdf", "application/pdf", strings.NewReader("%PDF-1.4"))
	if tracker.State() != StateFailed {
		t.Fatalf("Expected state failed, got %s", tracker.State())
	}

	if err := tracker.Reset(); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	if tracker.State() != StateIdle {
		t.Errorf("Expected state idle after reset, got %s", tracker.State())
	}
	if tracker.DocumentID() != "" || tracker.Err() != nil {
		t.Error("Expected reset to clear the document handle and failure")
	}

	// Resubmission after reset goes through
	api.mu.Lock()
	api.uploadErr = nil
	api.documentID = "doc-2"
	api.responses = []pollResponse{processing("doc-2")}
	api.mu.Unlock()

	submitPDF(t, tracker)
	defer tracker.Close()
	if tracker.DocumentID() != "doc-2" {
		t.Errorf("Expected new document ID, got %q", tracker.DocumentID())
	}
}

func TestJobTrackerResetWhileProcessing(t *testing.T) {
	api := &fakeAPI{
		documentID: "doc-1",
		responses:  []pollResponse{processing("doc-1")},
	}
	tracker := NewJobTracker(api, WithPollInterval(time.Hour))
	defer tracker.Close()

	submitPDF(t, tracker)

	if err := tracker.Reset(); !errors.Is(err, ErrBadState) {
		t.Errorf("Expected ErrBadState, got %v", err)
	}
}

func TestJobTrackerClose(t *testing.T) {
	api := &fakeAPI{
		documentID: "doc-1",
		responses:  []pollResponse{processing("doc-1")},
	}
	tracker := NewJobTracker(api, WithPollInterval(time.Hour))

	submitPDF(t, tracker)
	tracker.Close()

	if tracker.State() != StateFailed {
		t.Errorf("Expected an in-flight job to fail on close, got %s", tracker.State())
	}
}
