package scanning

import "fmt"

// extractPrompt asks for a verbatim transcript with no conversational wrapper
const extractPrompt = "Transcribe the text from this document exactly as it appears. Maintain the structure (lists, headers) using Markdown. Do not include any intro or outro text."

// analyzePromptFormat wraps previously extracted text in the analysis request
const analyzePromptFormat = `Analyze this document content:

%s

Provide a structured summary including:
1. Document Type
2. Key Dates
3. Main Entities (People/Companies)
4. Action Items or Summary`

// Part is one element of a multi-part model request
type Part interface {
	isPart()
}

// TextPart is a plain text prompt part
type TextPart string

// InlineDataPart carries a base64 encoded file inline with the request
type InlineDataPart struct {
	MIMEType string
	Data     string
}

func (TextPart) isPart()       {}
func (InlineDataPart) isPart() {}

// ExtractParts builds the OCR request: the document followed by the prompt
func ExtractParts(base64Data, mimeType string) []Part {
	return []Part{
		InlineDataPart{MIMEType: mimeType, Data: base64Data},
		TextPart(extractPrompt),
	}
}

// AnalyzeParts builds the analysis request. The original document is put in
// front of the prompt only when both its data and media type are known.
func AnalyzeParts(text, base64Data, mimeType string) []Part {
	parts := make([]Part, 0, 2)
	if base64Data != "" && mimeType != "" {
		parts = append(parts, InlineDataPart{MIMEType: mimeType, Data: base64Data})
	}
	return append(parts, TextPart(fmt.Sprintf(analyzePromptFormat, text)))
}
