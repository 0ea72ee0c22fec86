package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/docuprep/docverify/internal/application/port"
	"github.com/docuprep/docverify/internal/domain/entity"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

const systemPrompt = `You are a document quality reviewer for immigration case filings.
Given the text of a document, identify concrete problems that would weaken the
filing: missing required fields, expired dates, illegible or truncated content,
inconsistent names, missing signatures or stamps.

Respond with JSON only, in this exact shape:
{
  "summary": "<one sentence overall assessment>",
  "findings": [
    {"message": "<what is wrong and where>", "severity": "critical|important|minor"}
  ]
}

Severity guide: critical = filing would likely be rejected; important = likely
to trigger a request for evidence; minor = cosmetic or best-practice issue.
Return an empty findings array when nothing is wrong.`

// Analyzer implements port.DocumentAnalyzer using the OpenAI chat API
type Analyzer struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// NewAnalyzer creates an analyzer backed by the OpenAI API
func NewAnalyzer(apiKey, baseURL, model string, logger *zap.Logger) *Analyzer {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if model == "" {
		model = openai.GPT4oMini
	}

	return &Analyzer{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
		logger: logger,
	}
}

type analysisResponse struct {
	Summary  string `json:"summary"`
	Findings []struct {
		Message  string `json:"message"`
		Severity string `json:"severity"`
	} `json:"findings"`
}

// Analyze sends document text for review and parses the findings
func (a *Analyzer) Analyze(ctx context.Context, documentType, text string) (*port.AnalysisResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("empty document text")
	}

	userPrompt := fmt.Sprintf("Document type: %s\n\nDocument text:\n%s", documentType, text)

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
		Temperature: 0.1,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		a.logger.Error("Chat completion failed",
			zap.String("document_type", documentType),
			zap.Error(err))
		return nil, fmt.Errorf("analysis request failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("analysis returned no choices")
	}

	raw := extractJSON(resp.Choices[0].Message.Content)

	var parsed analysisResponse
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		a.logger.Error("Failed to parse analysis response",
			zap.String("content", resp.Choices[0].Message.Content),
			zap.Error(err))
		return nil, fmt.Errorf("failed to parse analysis response: %w", err)
	}

	result := &port.AnalysisResult{
		Summary: parsed.Summary,
		RawJSON: raw,
	}
	for _, f := range parsed.Findings {
		severity := strings.ToLower(strings.TrimSpace(f.Severity))
		if !entity.IsValidSeverity(severity) {
			a.logger.Warn("Dropping finding with unknown severity",
				zap.String("severity", f.Severity),
				zap.String("message", f.Message))
			continue
		}
		result.Findings = append(result.Findings, port.SuggestionFinding{
			Message:  f.Message,
			Severity: severity,
		})
	}

	a.logger.Info("Document analyzed",
		zap.String("document_type", documentType),
		zap.Int("findings", len(result.Findings)))

	return result, nil
}

// extractJSON strips markdown code fences that models sometimes wrap around
// JSON output despite the response format hint
func extractJSON(content string) string {
	content = strings.TrimSpace(content)

	if strings.HasPrefix(content, "```") {
		if idx := strings.Index(content, "\n"); idx != -1 {
			content = content[idx+1:]
		}
		content = strings.TrimSuffix(strings.TrimSpace(content), "```")
	}

	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start != -1 && end > start {
		return content[start : end+1]
	}

	return strings.TrimSpace(content)
}

// Verify interface compliance
var _ port.DocumentAnalyzer = (*Analyzer)(nil)
