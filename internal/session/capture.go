package session

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/zombor/documind/internal/document"
)

const mediaTypePDF = "application/pdf"

var disablePDFConfigDir sync.Once

// Capture is a raw file produced by the camera or file picker
type Capture struct {
	Filename string
	MIMEType string
	Data     []byte
}

// Validate normalizes the media type and checks that the capture is an
// image or a readable PDF
func (c *Capture) Validate() (document.Kind, error) {
	if len(c.Data) == 0 {
		return "", &CaptureError{Err: errors.New("file is empty")}
	}

	c.MIMEType = c.mediaType()
	switch {
	case c.MIMEType == mediaTypePDF:
		if err := checkPDF(c.Data); err != nil {
			return "", &CaptureError{Err: err}
		}
	case strings.HasPrefix(c.MIMEType, "image/"):
	default:
		return "", &CaptureError{Err: fmt.Errorf("unsupported media type %q: only images and PDFs can be scanned", c.MIMEType)}
	}

	return document.KindFromMediaType(c.MIMEType), nil
}

// mediaType returns the normalized media type, guessing from the filename
// and then the content when none was supplied
func (c *Capture) mediaType() string {
	mimeType, _, _ := strings.Cut(c.MIMEType, ";")
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	if mimeType != "" && mimeType != "application/octet-stream" {
		return mimeType
	}

	switch strings.ToLower(filepath.Ext(c.Filename)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".png":
		return "image/png"
	case ".pdf":
		return mediaTypePDF
	case ".heic":
		return "image/heic"
	case ".heif":
		return "image/heif"
	}

	sniffed, _, _ := strings.Cut(http.DetectContentType(c.Data), ";")
	return sniffed
}

// checkPDF makes sure the PDF parses and has at least one page
func checkPDF(data []byte) error {
	disablePDFConfigDir.Do(api.DisableConfigDir)

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	pages, err := api.PageCount(bytes.NewReader(data), conf)
	if err != nil {
		return fmt.Errorf("reading PDF: %w", err)
	}
	if pages < 1 {
		return errors.New("PDF has no pages")
	}
	return nil
}
