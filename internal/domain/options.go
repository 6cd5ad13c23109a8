package domain

// CompletionOptions are the sampling parameters for a text-completion call.
type CompletionOptions struct {
	Model       string
	Temperature float64
	MaxTokens   int
	// SchemaContent, when set, asks the vendor for strict JSON output
	// conforming to the given JSON schema.
	SchemaContent string
}
