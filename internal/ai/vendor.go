// Package ai provides the text-completion capability used by feedback
// synthesis, with interchangeable vendor implementations.
package ai

import (
	"context"
	"fmt"
	"os"

	"github.com/pitchperfect/pitchperfect/internal/domain"
)

// Vendor is a single request/response text-completion provider.
type Vendor interface {
	Name() string
	Complete(ctx context.Context, prompt string, opts *domain.CompletionOptions) (string, error)
}

// NewVendorFromEnv selects the completion vendor. Bedrock is the default;
// COMPLETION_VENDOR=openai switches to the OpenAI client.
func NewVendorFromEnv(ctx context.Context) (Vendor, error) {
	switch name := os.Getenv("COMPLETION_VENDOR"); name {
	case "", "bedrock":
		return NewBedrockClient(ctx)
	case "openai":
		return NewOpenAIClient()
	case "dryrun":
		return NewDryRun(""), nil
	default:
		return nil, fmt.Errorf("unknown completion vendor %q", name)
	}
}
