package scanning

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Ollama implements the Client interface using a local Ollama server
type Ollama struct {
	baseURL string
	config  ModelConfig
	client  *http.Client
}

// NewOllama creates a new Ollama client instance. Both operations need a
// vision model (llava, qwen2-vl, ...) when documents are attached.
func NewOllama(baseURL string, config ModelConfig) (*Ollama, error) {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if config.OCRModel == "" {
		config.OCRModel = "llava"
	}
	if config.AnalysisModel == "" {
		config.AnalysisModel = config.OCRModel
	}

	return &Ollama{
		baseURL: strings.TrimRight(baseURL, "/"),
		config:  config,
		client: &http.Client{
			Timeout: 300 * time.Second, // Vision models on local hardware are slow
		},
	}, nil
}

// ollamaChatRequest represents the request body for Ollama's chat API
type ollamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Think    bool            `json:"think,omitempty"`
}

type ollamaMessage struct {
	Role    string   `json:"role"`
	Content string   `json:"content"`
	Images  []string `json:"images,omitempty"`
}

// ollamaChatResponse represents the response from Ollama's chat API
type ollamaChatResponse struct {
	Message ollamaMessage `json:"message"`
	Done    bool          `json:"done"`
}

// ExtractText transcribes a document
func (o *Ollama) ExtractText(ctx context.Context, base64Data string, mimeType string) (string, error) {
	text, err := o.chat(ctx, o.config.OCRModel, false, ExtractParts(base64Data, mimeType))
	if err != nil {
		return "", fmt.Errorf("extracting text: %w", err)
	}
	return transcriptOrDefault(text), nil
}

// Analyze summarizes extracted text
func (o *Ollama) Analyze(ctx context.Context, text string, base64Data string, mimeType string) (string, error) {
	reply, err := o.chat(ctx, o.config.AnalysisModel, o.config.ThinkingBudget > 0, AnalyzeParts(text, base64Data, mimeType))
	if err != nil {
		return "", fmt.Errorf("analyzing document: %w", err)
	}
	return analysisOrError(reply)
}

// userMessage folds request parts into a single user message. Text parts
// become the content, inline documents become PNG images.
func userMessage(parts []Part) (ollamaMessage, error) {
	msg := ollamaMessage{Role: "user"}
	var content []string
	for _, p := range parts {
		switch p := p.(type) {
		case TextPart:
			content = append(content, string(p))
		case InlineDataPart:
			img, err := pngPayload(p.Data, p.MIMEType)
			if err != nil {
				return ollamaMessage{}, err
			}
			msg.Images = append(msg.Images, img)
		default:
			return ollamaMessage{}, fmt.Errorf("unsupported part type %T", p)
		}
	}
	msg.Content = strings.Join(content, "\n\n")
	return msg, nil
}

func (o *Ollama) chat(ctx context.Context, model string, think bool, parts []Part) (string, error) {
	msg, err := userMessage(parts)
	if err != nil {
		return "", err
	}

	reqBody := ollamaChatRequest{
		Model:  model,
		Stream: false,
		Think:  think,
		Messages: []ollamaMessage{
			{
				Role:    "system",
				Content: "You are an expert at reading documents. You carefully read all text in images and never add commentary of your own.",
			},
			msg,
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	url := fmt.Sprintf("%s/api/chat", o.baseURL)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling ollama API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("ollama API error (status %d): %s", resp.StatusCode, string(body))
	}

	var chatResp ollamaChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}
	if !chatResp.Done {
		return "", errNoResponse
	}

	return chatResp.Message.Content, nil
}

// Close closes the Ollama client (no-op for HTTP client)
func (o *Ollama) Close() error {
	return nil
}
