package session

import "github.com/zombor/documind/internal/document"

// Status is the stage of the capture pipeline
type Status string

const (
	StatusIdle       Status = "idle"
	StatusCapturing  Status = "capturing"
	StatusExtracting Status = "extracting"
	StatusDone       Status = "done"
	StatusFailed     Status = "failed"
)

// Messages shown alongside each status
const (
	CapturingMessage  = "Reading file..."
	ExtractingMessage = "Extracting text..."
	FailureMessage    = "Failed to process document. Please try again."
	AnalyzingMessage  = "Analyzing document..."
	AnalysisFailure   = "Analysis failed. Please check your API key quota."
)

// ProcessingState describes the capture pipeline. It is always replaced as a
// whole, never edited in place.
type ProcessingState struct {
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`
}

// AnalysisStatus is the stage of the analysis sub-flow for the current document
type AnalysisStatus string

const (
	AnalysisNone      AnalysisStatus = "none"
	AnalysisAnalyzing AnalysisStatus = "analyzing"
	AnalysisAnalyzed  AnalysisStatus = "analyzed"
	AnalysisFailed    AnalysisStatus = "failed"
)

// AnalysisState describes the analysis sub-flow
type AnalysisState struct {
	Status  AnalysisStatus `json:"status"`
	Message string         `json:"message,omitempty"`
}

// RawCapture holds the transport payload of the most recent capture so an
// analysis can include the original document
type RawCapture struct {
	DocumentID string
	Data       string
	MIMEType   string
}

// Snapshot is a read-only copy of the session for presentation
type Snapshot struct {
	Processing    ProcessingState           `json:"processing"`
	Analysis      AnalysisState             `json:"analysis"`
	Current       *document.ScannedDocument `json:"current"`
	HasRawCapture bool                      `json:"hasRawCapture"`
	Generation    uint64                    `json:"generation"`
}

func analysisStateFor(doc document.ScannedDocument) AnalysisState {
	if doc.HasAnalysis() {
		return AnalysisState{Status: AnalysisAnalyzed}
	}
	return AnalysisState{Status: AnalysisNone}
}
