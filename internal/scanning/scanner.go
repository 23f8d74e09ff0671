package scanning

import (
	"context"
	"log/slog"
)

// NoTextExtracted is returned as the transcript when the model answered
// without any text
const NoTextExtracted = "No text could be extracted."

// Client defines the remote document intelligence operations
type Client interface {
	// ExtractText transcribes a base64 encoded image or PDF
	ExtractText(ctx context.Context, base64Data string, mimeType string) (string, error)
	// Analyze summarizes previously extracted text. base64Data and mimeType
	// are optional and give the model the original document for context.
	Analyze(ctx context.Context, text string, base64Data string, mimeType string) (string, error)
	// Close closes the client and releases resources
	Close() error
}

// ModelConfig selects the models used for each operation
type ModelConfig struct {
	OCRModel      string
	AnalysisModel string
	// ThinkingBudget is passed through to backends that support a
	// reasoning budget for analysis
	ThinkingBudget int32
}

const (
	DefaultOCRModel       = "gemini-2.5-flash"
	DefaultAnalysisModel  = "gemini-3-pro-preview"
	DefaultThinkingBudget = 32768
)

// withDefaults fills in unset model names
func (c ModelConfig) withDefaults() ModelConfig {
	if c.OCRModel == "" {
		c.OCRModel = DefaultOCRModel
	}
	if c.AnalysisModel == "" {
		c.AnalysisModel = DefaultAnalysisModel
	}
	return c
}

// warnUnsupportedThinking logs at warn level when a thinking budget is
// configured for a backend whose SDK cannot apply it. It reports whether a
// warning was logged.
func warnUnsupportedThinking(logger *slog.Logger, backend string, budget int32) bool {
	if budget <= 0 {
		return false
	}
	logger.Warn("Thinking budget is not supported by this backend; the model default applies",
		"backend", backend,
		"budget", budget,
	)
	return true
}
