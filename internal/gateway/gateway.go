package gateway

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"

	"github.com/scrummate/scrummate/config"
	"github.com/scrummate/scrummate/pkg/local"
	"github.com/scrummate/scrummate/pkg/tokens"
)

var apologyText = local.NewSet(
	"Lo siento, hubo un problema al generar la respuesta. Por favor, intenta nuevamente.",
	local.NewTrans(local.Eng, "Sorry, there was a problem generating the response. Please try again."),
)

type completionClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Gateway issues one single-turn completion per call. It is a fail-soft
// boundary: transport and provider failures become the apology string, so
// callers always receive displayable text and never an error.
type Gateway struct {
	cfg      config.OpenAI
	client   completionClient
	language local.Language
	logger   zerolog.Logger
}

func New(cfg config.OpenAI, language local.Language, logger zerolog.Logger) *Gateway {
	clientConfig := openai.DefaultConfig(cfg.OpenAIAPIKey)
	if cfg.OpenAIBaseURL != "" {
		clientConfig.BaseURL = cfg.OpenAIBaseURL
	}
	return &Gateway{
		cfg:      cfg,
		client:   openai.NewClientWithConfig(clientConfig),
		language: language,
		logger:   logger.With().Str("component", "gateway").Logger(),
	}
}

// Response generates the persona's answer to input. Only the latest user
// text is sent; conversation history is not replayed to the provider.
func (g *Gateway) Response(ctx context.Context, persona Persona, input string) string {
	p, ok := personas[persona]
	if !ok {
		g.logger.Error().Str("persona", string(persona)).Msg("unknown persona")
		return apologyText.Text(g.language)
	}

	input = g.capInput(input)

	req := openai.ChatCompletionRequest{
		Model:       g.cfg.OpenAIModel,
		Temperature: p.temperature,
		TopP:        p.topP,
		MaxTokens:   p.maxTokens,
		N:           1,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: p.instruction,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: input,
			},
		},
	}

	resp, err := g.client.CreateChatCompletion(ctx, req)
	if err != nil {
		g.logger.Error().Err(err).Str("persona", string(persona)).Msg("completion request failed")
		return apologyText.Text(g.language)
	}
	if len(resp.Choices) == 0 {
		g.logger.Error().Str("persona", string(persona)).Msg("completion returned no choices")
		return apologyText.Text(g.language)
	}
	answer := resp.Choices[0].Message.Content
	if strings.TrimSpace(answer) == "" {
		return apologyText.Text(g.language)
	}
	return answer
}

// capInput keeps the user text within the prompt token budget. Counting
// failures are logged and the text passes through untouched; the budget is
// a guard, not a gate.
func (g *Gateway) capInput(input string) string {
	if g.cfg.PromptTokenLimit <= 0 {
		return input
	}
	capped, err := tokens.Truncate(input, g.cfg.OpenAIModel, g.cfg.PromptTokenLimit)
	if err != nil {
		g.logger.Warn().Err(err).Msg("failed to count prompt tokens")
		return input
	}
	if capped != input {
		g.logger.Warn().Int("limit", g.cfg.PromptTokenLimit).Msg("user input trimmed to prompt token budget")
	}
	return capped
}
