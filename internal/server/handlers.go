package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/zombor/documind/internal/document"
	"github.com/zombor/documind/internal/scanning"
	"github.com/zombor/documind/internal/session"
)

// maxUploadSize bounds captures; high-resolution phone photos and scanned
// PDFs fit comfortably
const maxUploadSize = int64(50 << 20)

const tooLargeMessage = "File is too large. Maximum size is 50MB. Please compress or resize your image."

// setCORSHeaders sets CORS headers on a response
func setCORSHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
	w.Header().Set("Access-Control-Max-Age", "3600")
}

// writeJSON encodes v with the given status code
func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Error encoding response", "error", err)
	}
}

// writeJSONError writes {"error": message} with CORS headers set
func writeJSONError(w http.ResponseWriter, code int, message string) {
	setCORSHeaders(w)
	writeJSON(w, code, map[string]string{
		"error": message,
	})
}

// handleIndex serves the HTML interface
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" && r.URL.Path != "/index.html" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(indexHTML)
}

// handleStaticCSS serves the CSS file
func (s *Server) handleStaticCSS(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/css")
	w.Write(appCSS)
}

// handleStaticJS serves the JavaScript entry module
func (s *Server) handleStaticJS(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/javascript")
	w.Write(appJS)
}

// handleControllers serves controller JavaScript modules with correct MIME type
func (s *Server) handleControllers(w http.ResponseWriter, r *http.Request) {
	fileServer := http.FileServer(http.FS(getControllersFS()))

	if strings.HasSuffix(r.URL.Path, ".js") {
		w.Header().Set("Content-Type", "application/javascript")
	}
	// Strip the /static/controllers/ prefix to get just the filename
	r.URL.Path = "/" + strings.TrimPrefix(r.URL.Path, "/static/controllers/")
	fileServer.ServeHTTP(w, r)
}

// handleSession returns the current session snapshot
func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.session.Snapshot())
}

// captureRequest is the JSON form of an upload. Data is base64 or a data URL.
type captureRequest struct {
	Filename string `json:"filename"`
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"`
}

// readCapture reads a capture from a multipart form or a JSON body
func readCapture(w http.ResponseWriter, r *http.Request) (session.Capture, string) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)

	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var req captureRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				return session.Capture{}, tooLargeMessage
			}
			return session.Capture{}, "Invalid request body"
		}
		if mimeType, _, ok := scanning.ParseDataURL(req.Data); ok && req.MIMEType == "" {
			req.MIMEType = mimeType
		}
		data, err := scanning.DecodeBase64(req.Data)
		if err != nil {
			return session.Capture{}, "Could not read file. Please try again."
		}
		return session.Capture{Filename: req.Filename, MIMEType: req.MIMEType, Data: data}, ""
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		slog.Error("Error parsing multipart form", "error", err)
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return session.Capture{}, tooLargeMessage
		}
		return session.Capture{}, "Error parsing form"
	}

	f, header, err := r.FormFile("file")
	if err != nil {
		slog.Error("Error getting file from form", "error", err)
		if errors.Is(err, http.ErrMissingFile) {
			return session.Capture{}, "No file was selected. Please choose a file to upload."
		}
		return session.Capture{}, "No file provided"
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		slog.Error("Error reading file data", "error", err, "filename", header.Filename)
		return session.Capture{}, "Could not read file. Please try again."
	}

	return session.Capture{
		Filename: header.Filename,
		MIMEType: header.Header.Get("Content-Type"),
		Data:     data,
	}, ""
}

// handleCapture runs the capture pipeline on an uploaded file
func (s *Server) handleCapture(w http.ResponseWriter, r *http.Request) {
	capture, problem := readCapture(w, r)
	if problem != "" {
		writeJSONError(w, http.StatusBadRequest, problem)
		return
	}

	doc, err := s.session.BeginCapture(r.Context(), capture)
	if err != nil {
		var captureErr *session.CaptureError
		switch {
		case errors.As(err, &captureErr):
			writeJSONError(w, http.StatusBadRequest, captureErr.Error())
		case errors.Is(err, session.ErrSuperseded):
			writeJSONError(w, http.StatusConflict, "A newer scan replaced this one.")
		case errors.Is(err, scanning.ErrTooLarge):
			writeJSONError(w, http.StatusRequestEntityTooLarge, "File is too large to scan. Maximum size is 20MB.")
		default:
			writeJSONError(w, http.StatusBadGateway, session.FailureMessage)
		}
		return
	}

	writeJSON(w, http.StatusCreated, doc)
}

// handleListDocuments returns the scan history
func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.session.Documents())
}

// handleGetDocument returns a single document
func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := s.session.Document(r.PathValue("id"))
	if err != nil {
		writeJSONError(w, http.StatusNotFound, "Document not found")
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// handleSelectDocument reopens a document from history
func (s *Server) handleSelectDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := s.session.SelectDocument(r.PathValue("id"))
	if err != nil {
		writeJSONError(w, http.StatusNotFound, "Document not found")
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// handleAnalyzeDocument attaches an analysis to a document
func (s *Server) handleAnalyzeDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := s.session.RequestAnalysis(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			writeJSONError(w, http.StatusNotFound, "Document not found")
			return
		}
		writeJSONError(w, http.StatusBadGateway, session.AnalysisFailure)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

// handleDownloadDocument returns the transcript as a plain-text attachment
func (s *Server) handleDownloadDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := s.session.Document(r.PathValue("id"))
	if err != nil {
		writeJSONError(w, http.StatusNotFound, "Document not found")
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, document.DownloadFilename(doc.Title)))
	io.WriteString(w, doc.ExtractedText)
}

// handlePreviewDocument renders a tab's markdown as an HTML fragment
func (s *Server) handlePreviewDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := s.session.Document(r.PathValue("id"))
	if err != nil {
		writeJSONError(w, http.StatusNotFound, "Document not found")
		return
	}

	tab := document.Tab(r.URL.Query().Get("tab"))
	if tab == "" {
		tab = document.TabText
	}
	if tab != document.TabText && tab != document.TabAnalysis {
		writeJSONError(w, http.StatusBadRequest, "Unknown tab")
		return
	}

	html, err := renderMarkdown(doc.TabText(tab))
	if err != nil {
		slog.Error("Error rendering preview", "id", doc.ID, "tab", tab, "error", err)
		writeJSONError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(html)
}
