package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const anthropicAPI = "https://api.anthropic.com/v1/messages"

// Suggestion is the label picked for a content title
type Suggestion struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// Classifier suggests labels for new content via the Anthropic API
type Classifier struct {
	apiKey   string
	model    string
	endpoint string
	http     *http.Client
}

// New creates a new Classifier
func New(apiKey, model string) (*Classifier, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("ANTHROPIC_API_KEY is not set")
	}

	return &Classifier{
		apiKey:   apiKey,
		model:    model,
		endpoint: anthropicAPI,
		http:     http.DefaultClient,
	}, nil
}

// SuggestLabel picks the existing label that best fits a content title.
// The returned label is always one of labels.
func (c *Classifier) SuggestLabel(ctx context.Context, title string, labels []string) (*Suggestion, error) {
	if len(labels) == 0 {
		return nil, fmt.Errorf("no labels to choose from")
	}

	resp, err := c.callAPI(ctx, buildPrompt(title, labels))
	if err != nil {
		return nil, fmt.Errorf("api call: %w", err)
	}

	suggestion, err := parseResponse(resp)
	if err != nil {
		return nil, err
	}
	for _, l := range labels {
		if strings.EqualFold(l, suggestion.Label) {
			suggestion.Label = l
			return suggestion, nil
		}
	}
	return nil, fmt.Errorf("suggested label %q is not one of the existing labels", suggestion.Label)
}

func buildPrompt(title string, labels []string) string {
	var sb strings.Builder

	sb.WriteString("Pick the label that best fits this study topic. Return JSON only.\n\n")
	sb.WriteString("Topic:\n")
	sb.WriteString(title)
	sb.WriteString("\n\n")

	sb.WriteString("Labels (choose exactly one of these):\n")
	for _, l := range labels {
		sb.WriteString("- ")
		sb.WriteString(l)
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	sb.WriteString(`Return a JSON object with this structure:
{"label": "one-of-the-labels", "confidence": 0.9}

Rules:
- "label" must be copied exactly from the list above
- Confidence is 0.0-1.0 based on how certain the choice is

Return ONLY the JSON, no other text.`)

	return sb.String()
}

type apiRequest struct {
	Model     string       `json:"model"`
	MaxTokens int          `json:"max_tokens"`
	Messages  []apiMessage `json:"messages"`
}

type apiMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type apiResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (c *Classifier) callAPI(ctx context.Context, prompt string) (string, error) {
	reqBody := apiRequest{
		Model:     c.model,
		MaxTokens: 256,
		Messages: []apiMessage{
			{Role: "user", Content: prompt},
		},
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("api error (status %d): %s", resp.StatusCode, string(body))
	}

	var apiResp apiResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}

	if apiResp.Error != nil {
		return "", fmt.Errorf("api error: %s", apiResp.Error.Message)
	}

	if len(apiResp.Content) == 0 {
		return "", fmt.Errorf("empty response")
	}

	return apiResp.Content[0].Text, nil
}

func parseResponse(resp string) (*Suggestion, error) {
	// Clean up response - remove markdown code blocks if present
	resp = strings.TrimSpace(resp)
	resp = strings.TrimPrefix(resp, "```json")
	resp = strings.TrimPrefix(resp, "```")
	resp = strings.TrimSuffix(resp, "```")
	resp = strings.TrimSpace(resp)

	var result Suggestion
	if err := json.Unmarshal([]byte(resp), &result); err != nil {
		return nil, fmt.Errorf("parse json: %w (response: %s)", err, resp)
	}

	return &result, nil
}
