package ai

import (
	"context"

	"github.com/pitchperfect/pitchperfect/internal/domain"
)

// DryRun is a canned completion vendor for tests and offline runs. It records
// the last prompt so tests can assert on prompt construction.
type DryRun struct {
	Response string
	Err      error

	LastPrompt string
	LastOpts   *domain.CompletionOptions
	Calls      int
}

func NewDryRun(response string) *DryRun {
	return &DryRun{Response: response}
}

func (d *DryRun) Name() string { return "dryrun" }

func (d *DryRun) Complete(ctx context.Context, prompt string, opts *domain.CompletionOptions) (string, error) {
	_ = ctx
	d.Calls++
	d.LastPrompt = prompt
	d.LastOpts = opts
	if d.Err != nil {
		return "", d.Err
	}
	return d.Response, nil
}
