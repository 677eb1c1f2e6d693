package viewer

import "errors"

var (
	// ErrInvalidInput means the submitted file is not a PDF. It is reported
	// before any network call and causes no state transition.
	ErrInvalidInput = errors.New("invalid input: not a PDF file")

	// ErrTransport means a network or HTTP failure during upload, poll or chat
	ErrTransport = errors.New("transport failure")

	// ErrAnalysisFailed means the pipeline explicitly reported a failed analysis
	ErrAnalysisFailed = errors.New("analysis failed")

	// ErrBadState means the operation is not allowed in the current job state
	ErrBadState = errors.New("operation not allowed in current state")
)
