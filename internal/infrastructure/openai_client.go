package infrastructure

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"mindcare/internal/config"
	"mindcare/internal/entities"

	"github.com/tidwall/sjson"
)

var openAIRequestTemplate = []byte(`{"model":"","messages":[{"role":"system","content":""},{"role":"user","content":""}],"max_tokens":0,"temperature":0}`)

// OpenAIClient calls an OpenAI chat-completions endpoint. It is the secondary vendor.
type OpenAIClient struct {
	apiKey      string
	baseURL     string
	model       string
	maxTokens   int
	temperature float64
	http        *http.Client
}

// NewOpenAIClient builds a client from cfg. A nil httpClient uses NewHTTPClient.
func NewOpenAIClient(cfg config.OpenAIConfig, httpClient *http.Client) *OpenAIClient {
	if httpClient == nil {
		httpClient = NewHTTPClient()
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = config.DefaultOpenAIBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = config.DefaultOpenAIModel
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 300
	}
	return &OpenAIClient{
		apiKey:      cfg.APIKey,
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		model:       model,
		maxTokens:   maxTokens,
		temperature: cfg.Temperature,
		http:        httpClient,
	}
}

func (o *OpenAIClient) Name() entities.Service { return entities.ServiceOpenAI }

func (o *OpenAIClient) Configured() bool { return o.apiKey != "" }

// Complete sends the persona as the system message and the user's text as the user message.
func (o *OpenAIClient) Complete(ctx context.Context, message string) entities.VendorResult {
	body, err := o.buildPayload(message)
	if err != nil {
		return entities.Failed(entities.FailureTransport, 0, fmt.Sprintf("build payload: %v", err))
	}

	headers := map[string]string{"Authorization": "Bearer " + o.apiKey}
	payload, res := postJSON(ctx, o.http, o.baseURL+"/chat/completions", headers, body)
	if !res.OK() {
		return res
	}
	return extractText(payload, "choices.0.message.content")
}

func (o *OpenAIClient) buildPayload(message string) ([]byte, error) {
	body, err := sjson.SetBytes(openAIRequestTemplate, "model", o.model)
	if err != nil {
		return nil, err
	}
	if body, err = sjson.SetBytes(body, "messages.0.content", SystemPrompt); err != nil {
		return nil, err
	}
	if body, err = sjson.SetBytes(body, "messages.1.content", message); err != nil {
		return nil, err
	}
	if body, err = sjson.SetBytes(body, "max_tokens", o.maxTokens); err != nil {
		return nil, err
	}
	return sjson.SetBytes(body, "temperature", o.temperature)
}
