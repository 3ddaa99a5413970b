// Package gemini implements AI-assisted selector inference using Google
// Gemini.
package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	scrapsae "github.com/oscarfg78/ScrapSAE-sub000"
	"google.golang.org/genai"
)

const model = "gemini-2.5-flash"

// maxPromptHTML bounds the markup sent to the model.
const maxPromptHTML = 100_000

// Ensure Inference implements scrapsae.Inference at compile time.
var _ scrapsae.Inference = (*Inference)(nil)

// Inference suggests replacement CSS selectors from captured page
// evidence using Google Gemini.
type Inference struct {
	client *genai.Client
}

// NewInference creates a new Inference.
func NewInference(client *genai.Client) *Inference {
	return &Inference{client: client}
}

// SuggestSelectors asks the model for replacement selectors for the
// failing field, grounded in the captured HTML and screenshot.
func (i *Inference) SuggestSelectors(ctx context.Context, req scrapsae.InferenceRequest) (*scrapsae.InferenceResult, error) {
	if req.Field == "" {
		return nil, scrapsae.Errorf(scrapsae.EINVALID, "field required")
	}
	if req.HTML == "" {
		return nil, scrapsae.Errorf(scrapsae.EINVALID, "page HTML required")
	}

	parts := []*genai.Part{{Text: BuildUserPrompt(req)}}
	if len(req.Screenshot) > 0 {
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{MIMEType: "image/png", Data: req.Screenshot},
		})
	}

	result, err := i.client.Models.GenerateContent(ctx, model,
		[]*genai.Content{{Parts: parts}},
		BuildConfig(),
	)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, scrapsae.Errorf(scrapsae.EINTERNAL, "gemini returned nil result")
	}

	return ParseResult(result.Text())
}

// BuildConfig returns the GenerateContentConfig for selector inference:
// structured JSON output with a fixed schema.
func BuildConfig() *genai.GenerateContentConfig {
	temp := float32(0.2)
	return &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{
				Text: "You are an expert in CSS selectors and e-commerce page markup. Given the HTML of a page and a field whose selector stopped matching, propose robust replacement selectors. Prefer stable attributes (itemprop, data-*, ids) over volatile utility classes. Order candidates from most to least likely.",
			}},
		},
		Temperature:      &temp,
		ResponseMIMEType: "application/json",
		ResponseSchema: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"selectors": {
					Type:  genai.TypeArray,
					Items: &genai.Schema{Type: genai.TypeString},
				},
				"confidence": {Type: genai.TypeNumber},
				"rationale":  {Type: genai.TypeString},
			},
			Required: []string{"selectors", "confidence"},
		},
	}
}

// BuildUserPrompt builds the user prompt with the failing context and
// bounded page markup.
func BuildUserPrompt(req scrapsae.InferenceRequest) string {
	html := req.HTML
	if len(html) > maxPromptHTML {
		html = html[:maxPromptHTML]
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Field: %s\n", req.Field)
	if req.FailingSelector != "" {
		fmt.Fprintf(&sb, "Failing selector: %s\n", req.FailingSelector)
	}
	sb.WriteString("\n<html>\n")
	sb.WriteString(html)
	sb.WriteString("\n</html>\n\n")
	fmt.Fprintf(&sb, "Propose CSS selectors that extract the %s field from this page.", req.Field)
	return sb.String()
}

// ParseResult decodes the model's JSON answer. Markdown code fences are
// tolerated; confidence is clamped to [0, 1].
func ParseResult(text string) (*scrapsae.InferenceResult, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	var payload struct {
		Selectors  []string `json:"selectors"`
		Confidence float64  `json:"confidence"`
		Rationale  string   `json:"rationale"`
	}
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		return nil, scrapsae.Errorf(scrapsae.EINTERNAL, "unparseable inference response: %v", err)
	}
	if len(payload.Selectors) == 0 {
		return nil, scrapsae.Errorf(scrapsae.EINTERNAL, "inference returned no selectors")
	}

	confidence := payload.Confidence
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}

	return &scrapsae.InferenceResult{
		Selectors:  payload.Selectors,
		Confidence: confidence,
		Rationale:  payload.Rationale,
	}, nil
}
