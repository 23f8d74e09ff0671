package scanning

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const (
	ocrTimeout      = 60 * time.Second
	analysisTimeout = 180 * time.Second
)

// Gemini implements the Client interface using the Gemini API
type Gemini struct {
	client        *genai.Client
	ocrModel      *genai.GenerativeModel
	analysisModel *genai.GenerativeModel
}

// NewGemini creates a new Gemini client instance
func NewGemini(apiKey string, config ModelConfig) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	config = config.withDefaults()

	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	warnUnsupportedThinking(slog.Default(), "gemini", config.ThinkingBudget)

	return &Gemini{
		client:        client,
		ocrModel:      client.GenerativeModel(config.OCRModel),
		analysisModel: client.GenerativeModel(config.AnalysisModel),
	}, nil
}

// ExtractText transcribes a document
func (g *Gemini) ExtractText(ctx context.Context, base64Data string, mimeType string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, ocrTimeout)
	defer cancel()

	text, err := g.generate(ctx, g.ocrModel, ExtractParts(base64Data, mimeType))
	if err != nil {
		return "", fmt.Errorf("extracting text: %w", err)
	}
	return transcriptOrDefault(text), nil
}

// Analyze summarizes extracted text
func (g *Gemini) Analyze(ctx context.Context, text string, base64Data string, mimeType string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, analysisTimeout)
	defer cancel()

	reply, err := g.generate(ctx, g.analysisModel, AnalyzeParts(text, base64Data, mimeType))
	if err != nil {
		return "", fmt.Errorf("analyzing document: %w", err)
	}
	return analysisOrError(reply)
}

func (g *Gemini) generate(ctx context.Context, model *genai.GenerativeModel, parts []Part) (string, error) {
	genaiParts, err := toGenaiParts(parts)
	if err != nil {
		return "", err
	}

	resp, err := model.GenerateContent(ctx, genaiParts...)
	if err != nil {
		return "", fmt.Errorf("generating content: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errNoResponse
	}

	var responseText strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			responseText.WriteString(string(text))
		}
	}
	return responseText.String(), nil
}

// toGenaiParts converts request parts to the SDK's part types
func toGenaiParts(parts []Part) ([]genai.Part, error) {
	out := make([]genai.Part, 0, len(parts))
	for _, p := range parts {
		switch p := p.(type) {
		case TextPart:
			out = append(out, genai.Text(string(p)))
		case InlineDataPart:
			data, err := DecodeBase64(p.Data)
			if err != nil {
				return nil, err
			}
			out = append(out, genai.Blob{MIMEType: p.MIMEType, Data: data})
		default:
			return nil, fmt.Errorf("unsupported part type %T", p)
		}
	}
	return out, nil
}

// Close closes the Gemini client
func (g *Gemini) Close() error {
	return g.client.Close()
}
