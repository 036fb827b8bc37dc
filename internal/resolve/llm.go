package resolve

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// LLMDecider asks a chat model to judge candidates. It only ever answers
// Confirm; it never invents identifiers, so Provide always declines. Any API
// failure is treated as a rejection rather than aborting the record.
type LLMDecider struct {
	client *openai.Client
	model  string
	log    *zap.Logger
}

// NewLLMDecider builds a decider from an API key and model name. Model ""
// falls back to gpt-4o-mini.
func NewLLMDecider(apiKey, model string, log *zap.Logger) (*LLMDecider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("llm decider: API key is required")
	}
	if model == "" {
		model = openai.GPT4oMini
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &LLMDecider{
		client: openai.NewClient(apiKey),
		model:  model,
		log:    log,
	}, nil
}

// Confirm asks for a strict yes/no judgment on whether the candidate denotes
// the mentioned entity.
func (d *LLMDecider) Confirm(ctx context.Context, q Question) (bool, error) {
	prompt := fmt.Sprintf(
		"A bibliographic record mentions the %s %q.%s\n"+
			"Candidate entity: %s, described as %q.\n"+
			"Does the candidate denote the same entity as the mention? "+
			"Answer with exactly one word: yes or no.",
		q.Class, q.Mention, contextLine(q.Context),
		q.Candidate.Label, q.Candidate.Description)

	resp, err := d.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: d.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You judge entity-resolution candidates for a bibliographic knowledge base. Answer only yes or no. When unsure, answer no.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		MaxTokens:   4,
		Temperature: 0,
	})
	if err != nil {
		d.log.Warn("llm judgment failed, rejecting candidate",
			zap.String("mention", q.Mention),
			zap.String("candidate", q.Candidate.ID),
			zap.Error(err))
		return false, nil
	}
	if len(resp.Choices) == 0 {
		return false, nil
	}
	answer := strings.ToLower(strings.TrimSpace(resp.Choices[0].Message.Content))
	return strings.HasPrefix(answer, "yes"), nil
}

// Provide never supplies identifiers.
func (d *LLMDecider) Provide(ctx context.Context, q Question) (string, error) {
	return "", nil
}

func contextLine(hint string) string {
	if hint == "" {
		return ""
	}
	return fmt.Sprintf(" Record context: %s.", hint)
}
