package ai

import (
	"context"
	"encoding/json"
	"os"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
	"github.com/pkg/errors"

	"github.com/pitchperfect/pitchperfect/internal/domain"
	debuglog "github.com/pitchperfect/pitchperfect/internal/log"
)

const defaultOpenAIModel = "gpt-4o-mini"

// OpenAIClient is the alternate completion vendor.
type OpenAIClient struct {
	client openai.Client
}

func NewOpenAIClient() (*OpenAIClient, error) {
	key := os.Getenv("OPENAI_API_KEY")
	if key == "" {
		return nil, errors.New("OPENAI_API_KEY is not set")
	}
	return &OpenAIClient{client: openai.NewClient(option.WithAPIKey(key))}, nil
}

func (c *OpenAIClient) Name() string { return "openai" }

func (c *OpenAIClient) Complete(ctx context.Context, prompt string, opts *domain.CompletionOptions) (string, error) {
	params := c.buildChatCompletionParams(prompt, opts)

	debuglog.Debug(debuglog.Detailed, "openai: model=%s prompt=%d chars\n", params.Model, len(prompt))

	resp, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", errors.Wrap(err, "openai chat completion")
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", errors.New("openai response has no content")
	}
	return resp.Choices[0].Message.Content, nil
}

func (c *OpenAIClient) buildChatCompletionParams(prompt string, opts *domain.CompletionOptions) openai.ChatCompletionNewParams {
	model := opts.Model
	if model == "" {
		model = defaultOpenAIModel
	}

	params := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Temperature: openai.Float(opts.Temperature),
	}
	if opts.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(opts.MaxTokens))
	}

	if opts.SchemaContent != "" {
		var schema map[string]any
		if err := json.Unmarshal([]byte(opts.SchemaContent), &schema); err == nil {
			params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
				OfJSONSchema: &shared.ResponseFormatJSONSchemaParam{
					JSONSchema: shared.ResponseFormatJSONSchemaJSONSchemaParam{
						Name:   "json_output",
						Strict: openai.Bool(true),
						Schema: schema,
					},
				},
			}
		} else {
			debuglog.Debug(debuglog.Basic, "openai: invalid schema content ignored: %v\n", err)
		}
	}

	return params
}
