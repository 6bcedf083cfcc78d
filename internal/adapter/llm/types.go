// Package llm holds types shared by the generative-service adapters.
package llm

// Usage reports token accounting for one synchronous generation call, as
// returned by the provider. Cached tokens are the subset of prompt tokens
// served from the provider's prompt cache; logging them per call is what lets
// us monitor cache effectiveness across the Draft and Review stages.
type Usage struct {
	PromptTokens     int
	CachedTokens     int
	CompletionTokens int
}
