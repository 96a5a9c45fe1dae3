// internal/assist/gemini.go
package assist

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/SAIKIRANREDDY98/JH/api/schemas"
	"github.com/SAIKIRANREDDY98/JH/internal/config"
)

// GeminiAssist is a second-opinion classifier for elements whose heuristic
// score landed in the gray zone between admission and acceptance. It must
// only ever confirm one of the offered candidates, never invent a type.
type GeminiAssist struct {
	client *genai.Client
	model  string
	logger *zap.Logger
}

var _ schemas.FieldAssist = (*GeminiAssist)(nil)

func NewGeminiAssist(ctx context.Context, cfg config.AssistConfig, logger *zap.Logger) (*GeminiAssist, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create assist client: %w", err)
	}
	return &GeminiAssist{
		client: client,
		model:  cfg.Model,
		logger: logger.Named("assist"),
	}, nil
}

// SuggestType asks the model to pick one of the candidate types for the
// element's attributes. Any answer outside the candidate set is discarded.
func (g *GeminiAssist) SuggestType(ctx context.Context, attrs schemas.RawAttributes, candidates []schemas.FieldType) (schemas.FieldType, error) {
	if len(candidates) == 0 {
		return schemas.FieldUnknown, fmt.Errorf("no candidate types offered")
	}

	callCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	prompt := buildPrompt(attrs, candidates)
	resp, err := g.client.Models.GenerateContent(callCtx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature: genai.Ptr[float32](0),
	})
	if err != nil {
		return schemas.FieldUnknown, fmt.Errorf("assist call failed: %w", err)
	}

	answer := strings.ToLower(strings.TrimSpace(resp.Text()))
	for _, c := range candidates {
		if answer == string(c) {
			g.logger.Debug("Assist confirmed candidate.",
				zap.String("type", string(c)), zap.String("name", attrs.Name))
			return c, nil
		}
	}
	if answer == "none" {
		return schemas.FieldUnknown, nil
	}
	g.logger.Debug("Assist answered outside the candidate set; discarding.",
		zap.String("answer", answer))
	return schemas.FieldUnknown, nil
}

func buildPrompt(attrs schemas.RawAttributes, candidates []schemas.FieldType) string {
	var names []string
	for _, c := range candidates {
		names = append(names, string(c))
	}

	var b strings.Builder
	b.WriteString("You classify a single HTML form control on a job application page.\n")
	b.WriteString("Answer with exactly one of these identifiers, or the word none:\n")
	b.WriteString(strings.Join(names, ", "))
	b.WriteString("\n\nControl attributes:\n")
	writeAttr(&b, "tag", attrs.Tag)
	writeAttr(&b, "type", attrs.InputType)
	writeAttr(&b, "name", attrs.Name)
	writeAttr(&b, "id", attrs.ID)
	writeAttr(&b, "placeholder", attrs.Placeholder)
	writeAttr(&b, "aria-label", attrs.AriaLabel)
	writeAttr(&b, "autocomplete", attrs.Autocomplete)
	writeAttr(&b, "label", attrs.LabelText)
	writeAttr(&b, "context", attrs.ContextText)
	b.WriteString("\nAnswer with the identifier only.")
	return b.String()
}

func writeAttr(b *strings.Builder, key, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(b, "  %s: %s\n", key, value)
}
