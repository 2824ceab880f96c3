package infrastructure

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"mindcare/internal/config"
	"mindcare/internal/entities"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

var geminiRequestTemplate = []byte(`{"contents":[{"parts":[{"text":""}]}]}`)

// GeminiClient calls the Gemini generateContent endpoint. It is the primary vendor.
type GeminiClient struct {
	apiKey  string
	baseURL string
	model   string
	http    *http.Client
}

// NewGeminiClient builds a client from cfg. A nil httpClient uses NewHTTPClient.
func NewGeminiClient(cfg config.GeminiConfig, httpClient *http.Client) *GeminiClient {
	if httpClient == nil {
		httpClient = NewHTTPClient()
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = config.DefaultGeminiBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = config.DefaultGeminiModel
	}
	return &GeminiClient{
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		model:   model,
		http:    httpClient,
	}
}

func (g *GeminiClient) Name() entities.Service { return entities.ServiceGemini }

func (g *GeminiClient) Configured() bool { return g.apiKey != "" }

// Complete sends the message embedded in the fixed prompt and returns the first candidate's text.
func (g *GeminiClient) Complete(ctx context.Context, message string) entities.VendorResult {
	body, err := sjson.SetBytes(geminiRequestTemplate, "contents.0.parts.0.text", GeminiPromptPrefix+message)
	if err != nil {
		return entities.Failed(entities.FailureTransport, 0, fmt.Sprintf("build payload: %v", err))
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent", g.baseURL, url.PathEscape(g.model))
	payload, res := postJSON(ctx, g.http, endpoint, map[string]string{"x-goog-api-key": g.apiKey}, body)
	if !res.OK() {
		return res
	}
	return extractText(payload, "candidates.0.content.parts.0.text")
}

// extractText reads a string completion at path from a JSON payload.
func extractText(payload []byte, path string) entities.VendorResult {
	if !gjson.ValidBytes(payload) {
		return entities.Failed(entities.FailureDecode, http.StatusOK, "response is not valid JSON")
	}
	text := gjson.GetBytes(payload, path)
	if !text.Exists() || text.Type != gjson.String {
		return entities.Failed(entities.FailureEmpty, http.StatusOK, "missing "+path)
	}
	if strings.TrimSpace(text.String()) == "" {
		return entities.Failed(entities.FailureEmpty, http.StatusOK, "blank "+path)
	}
	return entities.Succeeded(text.String())
}
