package classify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"

	"spendlens/internal/models"
	apperrors "spendlens/pkg/errors"
	"spendlens/pkg/logger"
)

// DefaultTimeout bounds a single classification call. The pipeline treats a
// timeout like any other classifier failure and falls back.
const DefaultTimeout = 30 * time.Second

// OpenAIClassifier labels transaction batches with a chat-completion model
type OpenAIClassifier struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	logger  logger.Logger
}

// NewOpenAIClassifier creates a classifier using the given API key and model.
// An empty model selects GPT-4o mini.
func NewOpenAIClassifier(apiKey, model string) *OpenAIClassifier {
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAIClassifier{
		client:  openai.NewClient(apiKey),
		model:   model,
		timeout: DefaultTimeout,
		logger:  logger.GetGlobalLogger().WithComponent("openai_classifier"),
	}
}

// ClassifyBatch sends one request covering the whole batch and returns the
// model's labels in input order. The response must be a JSON array of exactly
// len(items) strings.
func (c *OpenAIClassifier) ClassifyBatch(ctx context.Context, items []Item) ([]string, error) {
	if len(items) == 0 {
		return []string{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	prompt := buildPrompt(items)

	c.logger.WithFields(logger.Fields{
		"batch_size": len(items),
		"model":      c.model,
	}).Debug("Sending classification batch")

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		Temperature: 0,
	})
	if err != nil {
		return nil, apperrors.ClassificationError(apperrors.CodeClassifierUnavailable, "chat completion", err)
	}

	if len(resp.Choices) != 1 {
		return nil, apperrors.ClassificationError(apperrors.CodeInvalidResponse,
			fmt.Sprintf("unexpected number of choices: %d", len(resp.Choices)), nil)
	}

	labels, err := parseLabels(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}

	if len(labels) != len(items) {
		return nil, apperrors.ClassificationError(apperrors.CodeResponseMismatch,
			fmt.Sprintf("sent %d transactions, got %d labels", len(items), len(labels)), nil)
	}

	return labels, nil
}

const systemPrompt = `You are a bank transaction categorizer. You will receive a numbered list of transactions and must assign each one a category from a fixed list. Respond with a JSON array of category strings, one per transaction, in the same order. Respond only with JSON, nothing else.`

func buildPrompt(items []Item) string {
	var b strings.Builder

	b.WriteString("Categories (use these exact labels):\n")
	for _, category := range models.Categories() {
		b.WriteString("- ")
		b.WriteString(category.String())
		b.WriteString("\n")
	}

	b.WriteString("\nRules:\n")
	b.WriteString("- Credit card payments and descriptions containing \"payment thank you\" are Payment, not Income.\n")
	b.WriteString("- Venmo, Zelle and similar person-to-person transfers are Transfer.\n")
	b.WriteString("- Restaurants, cafes and bars are Food & Dining; supermarkets are Groceries.\n")
	b.WriteString("- Gas stations, parking, tolls and rideshare are Transportation.\n")
	b.WriteString("- Streaming and gaming services are Entertainment; utilities, insurance and phone/internet are Bills & Utilities.\n")
	b.WriteString("- Positive amounts that are salary, refunds or interest earned are Income.\n")

	b.WriteString("\nTransactions:\n")
	for i, item := range items {
		fmt.Fprintf(&b, "%d. %s (%s)\n", i+1, item.Description, item.Amount.StringFixed(2))
	}

	b.WriteString("\nRespond with a JSON array of ")
	fmt.Fprintf(&b, "%d category strings.", len(items))

	return b.String()
}

// parseLabels extracts the JSON array of labels, tolerating code-fence
// wrapping that some models add around JSON output
func parseLabels(content string) ([]string, error) {
	content = strings.TrimSpace(content)
	if strings.Contains(content, "```") {
		content = strings.TrimPrefix(content, "```json")
		content = strings.TrimPrefix(content, "```")
		content = strings.TrimSuffix(content, "```")
		content = strings.TrimSpace(content)
	}

	var labels []string
	if err := json.Unmarshal([]byte(content), &labels); err != nil {
		return nil, apperrors.ClassificationError(apperrors.CodeInvalidResponse, "response is not a JSON string array", err)
	}

	return labels, nil
}
