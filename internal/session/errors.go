package session

import "errors"

var (
	// ErrNotFound is returned for an unknown document ID
	ErrNotFound = errors.New("document not found")
	// ErrSuperseded is returned to a capture whose result arrived after a
	// newer capture started; the result is discarded
	ErrSuperseded = errors.New("capture superseded by a newer capture")
)

// CaptureError reports an invalid or unreadable capture. The pipeline never
// starts for these.
type CaptureError struct {
	Err error
}

func (e *CaptureError) Error() string { return "invalid capture: " + e.Err.Error() }
func (e *CaptureError) Unwrap() error { return e.Err }

// EncodingError reports a failed conversion of the capture to transport form
type EncodingError struct {
	Err error
}

func (e *EncodingError) Error() string { return "encoding capture: " + e.Err.Error() }
func (e *EncodingError) Unwrap() error { return e.Err }

// ExtractionError reports a failed or unusable OCR call
type ExtractionError struct {
	Err error
}

func (e *ExtractionError) Error() string { return "extracting text: " + e.Err.Error() }
func (e *ExtractionError) Unwrap() error { return e.Err }

// AnalysisError reports a failed analysis call. The document stays usable.
type AnalysisError struct {
	Err error
}

func (e *AnalysisError) Error() string { return "analyzing document: " + e.Err.Error() }
func (e *AnalysisError) Unwrap() error { return e.Err }

// PersistenceError reports a failed write of the document history
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string { return "persisting documents: " + e.Err.Error() }
func (e *PersistenceError) Unwrap() error { return e.Err }
