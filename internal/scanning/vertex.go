package scanning

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"cloud.google.com/go/vertexai/genai"
)

// Vertex implements the Client interface using Gemini models on Vertex AI.
// Credentials come from the environment (Application Default Credentials).
type Vertex struct {
	client        *genai.Client
	ocrModel      *genai.GenerativeModel
	analysisModel *genai.GenerativeModel
}

// NewVertex creates a new Vertex client instance
func NewVertex(ctx context.Context, projectID, region string, config ModelConfig) (*Vertex, error) {
	if projectID == "" || region == "" {
		return nil, fmt.Errorf("vertex project and region are required")
	}
	config = config.withDefaults()
	warnUnsupportedThinking(slog.Default(), "vertex", config.ThinkingBudget)

	client, err := genai.NewClient(ctx, projectID, region)
	if err != nil {
		return nil, fmt.Errorf("creating vertex client: %w", err)
	}

	ocrModel := client.GenerativeModel(config.OCRModel)
	// Transcripts should be reproducible
	ocrModel.GenerationConfig = genai.GenerationConfig{
		Temperature: genai.Ptr[float32](0.0),
	}

	return &Vertex{
		client:        client,
		ocrModel:      ocrModel,
		analysisModel: client.GenerativeModel(config.AnalysisModel),
	}, nil
}

// ExtractText transcribes a document
func (v *Vertex) ExtractText(ctx context.Context, base64Data string, mimeType string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, ocrTimeout)
	defer cancel()

	text, err := v.generate(ctx, v.ocrModel, ExtractParts(base64Data, mimeType))
	if err != nil {
		return "", fmt.Errorf("extracting text: %w", err)
	}
	return transcriptOrDefault(text), nil
}

// Analyze summarizes extracted text
func (v *Vertex) Analyze(ctx context.Context, text string, base64Data string, mimeType string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, analysisTimeout)
	defer cancel()

	reply, err := v.generate(ctx, v.analysisModel, AnalyzeParts(text, base64Data, mimeType))
	if err != nil {
		return "", fmt.Errorf("analyzing document: %w", err)
	}
	return analysisOrError(reply)
}

func (v *Vertex) generate(ctx context.Context, model *genai.GenerativeModel, parts []Part) (string, error) {
	vertexParts := make([]genai.Part, 0, len(parts))
	for _, p := range parts {
		switch p := p.(type) {
		case TextPart:
			vertexParts = append(vertexParts, genai.Text(string(p)))
		case InlineDataPart:
			data, err := DecodeBase64(p.Data)
			if err != nil {
				return "", err
			}
			vertexParts = append(vertexParts, genai.Blob{MIMEType: p.MIMEType, Data: data})
		default:
			return "", fmt.Errorf("unsupported part type %T", p)
		}
	}

	resp, err := model.GenerateContent(ctx, vertexParts...)
	if err != nil {
		return "", fmt.Errorf("generating content: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errNoResponse
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return sb.String(), nil
}

// Close closes the Vertex client
func (v *Vertex) Close() error {
	return v.client.Close()
}
