package ai

import (
	"context"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	bedrockTypes "github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/pkg/errors"

	"github.com/pitchperfect/pitchperfect/internal/domain"
	debuglog "github.com/pitchperfect/pitchperfect/internal/log"
)

const defaultBedrockModel = "anthropic.claude-3-5-sonnet-20241022-v2:0"

// BedrockClient invokes Anthropic models through the Bedrock Converse API.
type BedrockClient struct {
	client *bedrockruntime.Client
}

// NewBedrockClient builds the client from the ambient AWS configuration.
func NewBedrockClient(ctx context.Context) (*BedrockClient, error) {
	region := os.Getenv("AWS_REGION")
	if region == "" {
		region = "us-east-1"
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, errors.Wrap(err, "loading aws config")
	}

	return &BedrockClient{client: bedrockruntime.NewFromConfig(cfg)}, nil
}

func (c *BedrockClient) Name() string { return "bedrock" }

// Complete sends a single-turn Converse request and joins the text blocks of
// the reply.
func (c *BedrockClient) Complete(ctx context.Context, prompt string, opts *domain.CompletionOptions) (string, error) {
	model := opts.Model
	if model == "" {
		model = defaultBedrockModel
	}

	input := &bedrockruntime.ConverseInput{
		ModelId: aws.String(model),
		Messages: []bedrockTypes.Message{
			{
				Role: bedrockTypes.ConversationRoleUser,
				Content: []bedrockTypes.ContentBlock{
					&bedrockTypes.ContentBlockMemberText{Value: prompt},
				},
			},
		},
		InferenceConfig: &bedrockTypes.InferenceConfiguration{
			MaxTokens:   aws.Int32(int32(opts.MaxTokens)),
			Temperature: aws.Float32(float32(opts.Temperature)),
		},
	}
	if opts.SchemaContent != "" {
		// Bedrock's Converse API has no response_format; steer the model
		// with an instruction instead and let the caller parse.
		input.System = []bedrockTypes.SystemContentBlock{
			&bedrockTypes.SystemContentBlockMemberText{
				Value: "Réponds uniquement avec un objet JSON valide conforme à ce schéma, sans texte autour:\n" + opts.SchemaContent,
			},
		}
	}

	debuglog.Debug(debuglog.Detailed, "bedrock: model=%s prompt=%d chars\n", model, len(prompt))

	out, err := c.client.Converse(ctx, input)
	if err != nil {
		return "", errors.Wrap(err, "bedrock converse")
	}

	message, ok := out.Output.(*bedrockTypes.ConverseOutputMemberMessage)
	if !ok {
		return "", errors.New("bedrock response has no message output")
	}

	var parts []string
	for _, block := range message.Value.Content {
		if text, ok := block.(*bedrockTypes.ContentBlockMemberText); ok && text.Value != "" {
			parts = append(parts, text.Value)
		}
	}
	if len(parts) == 0 {
		return "", errors.New("bedrock response has no text blocks")
	}
	return strings.Join(parts, ""), nil
}
