// Package planner asks a hosted chat model for an execution plan.
package planner

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/rs/zerolog/log"
	contractx "github.com/tanpawarit/tool-enhanced-reasoning/agent/contract"
	llmx "github.com/tanpawarit/tool-enhanced-reasoning/agent/llm"
	openrouterx "github.com/tanpawarit/tool-enhanced-reasoning/pkg/openrouter"
)

var _ contractx.Planner = (*Completer)(nil)

// Completer sends the whole prompt as a single user message and returns the
// text of the first choice.
type Completer struct {
	client      *openaisdk.Client
	model       string
	temperature float64
	maxTokens   int64
	extra       []option.RequestOption
}

func New(cfg llmx.Config) (*Completer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	routerCfg := cfg.OpenRouter()
	client := openrouterx.NewClient(routerCfg)
	if client == nil {
		return nil, fmt.Errorf("%w: failed to initialize planner client", contractx.ErrValidation)
	}

	c := &Completer{
		client:      client,
		model:       routerCfg.Model,
		temperature: float64(routerCfg.Temperature),
		maxTokens:   int64(routerCfg.MaxCompletionToken),
	}
	if openrouterx.ReasoningBlacklist[routerCfg.Model] {
		c.extra = append(c.extra, option.WithJSONSet("reasoning", map[string]any{
			"exclude": true,
			"effort":  "none",
		}))
	}
	return c, nil
}

func (c *Completer) Complete(ctx context.Context, prompt string) (string, error) {
	params := openaisdk.ChatCompletionNewParams{
		Model: openaisdk.ChatModel(c.model),
		Messages: []openaisdk.ChatCompletionMessageParamUnion{
			openaisdk.UserMessage(prompt),
		},
		Temperature: openaisdk.Float(c.temperature),
	}
	if c.maxTokens > 0 {
		params.MaxCompletionTokens = openaisdk.Int(c.maxTokens)
	}

	resp, err := c.client.Chat.Completions.New(ctx, params, c.extra...)
	if err != nil {
		return "", fmt.Errorf("%w: %v", contractx.ErrPlannerCall, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: response has no choices", contractx.ErrPlannerCall)
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("%w: %w", contractx.ErrPlannerCall, errEmptyCompletion)
	}

	log.Debug().Str("model", c.model).Int("chars", len(text)).Msg("planner responded")
	return text, nil
}

var errEmptyCompletion = errors.New("planner returned an empty completion")
