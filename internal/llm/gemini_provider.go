package llm

import (
	"context"
	"net/http"
	"strings"
	"time"

	"geminibot/internal/config"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// GeminiProvider implements the LLMProvider interface on top of the genai SDK
type GeminiProvider struct {
	config config.LLMConfig
	logger *zap.Logger
	client *genai.Client
}

// NewGeminiProvider creates a GeminiProvider. A non-empty BaseURL redirects
// every request, which is how a proxy or a test server is plugged in.
func NewGeminiProvider(ctx context.Context, cfg config.LLMConfig, logger *zap.Logger) (*GeminiProvider, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, NewConfigurationError("api_key", "API key is required", "GOOGLE_TOKEN must be set")
	}
	if cfg.DefaultModel != "" && !IsAllowed(cfg.DefaultModel) {
		return nil, NewConfigurationError("default_model", "model is not on the allow-list", cfg.DefaultModel)
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.Timeout > 0 {
		clientConfig.HTTPClient = &http.Client{Timeout: time.Duration(cfg.Timeout) * time.Second}
	}
	if cfg.BaseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, NewConfigurationError("client", "failed to create genai client", err.Error())
	}

	return &GeminiProvider{
		config: cfg,
		logger: logger,
		client: client,
	}, nil
}

// Generate implements the LLMProvider interface
func (p *GeminiProvider) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	model := DisplayName(req.Model)
	if model == "" {
		model = p.defaultModel()
	}

	contents := make([]*genai.Content, 0, len(req.History)+1)
	for _, m := range req.History {
		contents = append(contents, genai.NewContentFromText(m.Text, genai.Role(m.Role)))
	}
	contents = append(contents, genai.NewContentFromText(req.Prompt, genai.RoleUser))

	p.logger.Debug("Generating answer",
		zap.String("model", model),
		zap.Int("history_turns", len(req.History)),
		zap.Int("prompt_length", len(req.Prompt)))

	start := time.Now()
	resp, err := p.client.Models.GenerateContent(ctx, model, contents, p.generationConfig())
	if err != nil {
		wrapped := WrapGenAIError(err)
		p.logger.Warn("Model request failed",
			zap.String("model", model),
			zap.String("code", ErrorCode(wrapped)),
			zap.Error(err))
		return nil, wrapped
	}

	result := &GenerateResponse{
		Text:  resp.Text(),
		Model: model,
	}
	if len(resp.Candidates) > 0 && resp.Candidates[0] != nil {
		result.FinishReason = string(resp.Candidates[0].FinishReason)
	}
	if resp.UsageMetadata != nil {
		result.TotalTokens = int(resp.UsageMetadata.TotalTokenCount)
	}

	if strings.TrimSpace(result.Text) == "" {
		emptyErr := EmptyResponseError{Model: model, FinishReason: result.FinishReason}
		if resp.PromptFeedback != nil {
			emptyErr.BlockReason = string(resp.PromptFeedback.BlockReason)
		}
		return nil, emptyErr
	}

	p.logger.Debug("Answer generated",
		zap.String("model", model),
		zap.Int("answer_length", len(result.Text)),
		zap.Int("total_tokens", result.TotalTokens),
		zap.Duration("duration", time.Since(start)))

	return result, nil
}

func (p *GeminiProvider) defaultModel() string {
	if p.config.DefaultModel != "" {
		return DisplayName(p.config.DefaultModel)
	}
	return DefaultModel()
}

func (p *GeminiProvider) generationConfig() *genai.GenerateContentConfig {
	gc := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(p.config.Temperature),
		TopP:            genai.Ptr(p.config.TopP),
		MaxOutputTokens: p.config.MaxOutputTokens,
	}
	if p.config.TopK > 0 {
		gc.TopK = genai.Ptr(p.config.TopK)
	}
	if p.config.SystemPrompt != "" {
		gc.SystemInstruction = genai.NewContentFromText(p.config.SystemPrompt, genai.RoleUser)
	}
	return gc
}
