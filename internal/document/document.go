package document

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Kind is the kind of file a document was scanned from
type Kind string

const (
	KindImage Kind = "image"
	KindPDF   Kind = "pdf"
)

// Tab selects which body of a document an action applies to
type Tab string

const (
	TabText     Tab = "text"
	TabAnalysis Tab = "analysis"
)

// ScannedDocument represents a scanned document with its OCR transcript
type ScannedDocument struct {
	ID            string    `json:"id"`
	CreatedAt     time.Time `json:"createdAt"`
	Title         string    `json:"title"`
	ExtractedText string    `json:"extractedText"`
	Kind          Kind      `json:"kind"`
	Analysis      string    `json:"analysis,omitempty"` // Empty until the first successful analysis
}

// KindFromMediaType derives the document kind from a capture's media type
func KindFromMediaType(mediaType string) Kind {
	if strings.Contains(strings.ToLower(mediaType), "pdf") {
		return KindPDF
	}
	return KindImage
}

// TitleFor builds the display title for a document captured at t
func TitleFor(t time.Time) string {
	return "Scan " + t.Format("1/2/2006 03:04 PM")
}

// HasAnalysis reports whether an analysis has been attached
func (d ScannedDocument) HasAnalysis() bool {
	return d.Analysis != ""
}

// TabText returns the body shown on the given tab
func (d ScannedDocument) TabText(tab Tab) string {
	if tab == TabAnalysis {
		return d.Analysis
	}
	return d.ExtractedText
}

// Validate checks that a document carries every required field
func (d ScannedDocument) Validate() error {
	if d.ID == "" {
		return errors.New("missing id")
	}
	if d.CreatedAt.IsZero() {
		return fmt.Errorf("document %s: missing createdAt", d.ID)
	}
	if d.ExtractedText == "" {
		return fmt.Errorf("document %s: missing extractedText", d.ID)
	}
	if d.Kind != KindImage && d.Kind != KindPDF {
		return fmt.Errorf("document %s: invalid kind %q", d.ID, d.Kind)
	}
	return nil
}

var (
	unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9\s\-_]`)
	filenameSpaces      = regexp.MustCompile(`\s+`)
)

// DownloadFilename builds the plain-text download name for a document title
func DownloadFilename(title string) string {
	base := unsafeFilenameChars.ReplaceAllString(title, "")
	base = strings.TrimSpace(base)
	base = filenameSpaces.ReplaceAllString(base, "-")

	// Truncate to reasonable length
	maxLen := 50
	if len(base) > maxLen {
		base = strings.TrimRight(base[:maxLen], "-")
	}

	if base == "" {
		base = "scan"
	}

	return "documind-" + base + ".txt"
}
