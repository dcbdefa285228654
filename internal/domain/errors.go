package domain

import "errors"

var (
	// ErrRetrievalUnavailable signals that the embedding service or vector
	// index is down. Never silently swallowed: generating without context
	// risks unsafe, hallucinated content.
	ErrRetrievalUnavailable = errors.New("retrieval unavailable")
	// ErrGenerationFailed signals exhausted parse/validation retries.
	ErrGenerationFailed = errors.New("generation failed")
	// ErrSafetyRejected signals fail-closed safety rejection. Callers must
	// treat this as a hard stop, never a warning.
	ErrSafetyRejected = errors.New("safety rejected")
	// ErrRateLimited signals a rate limit hit.
	ErrRateLimited = errors.New("rate limited")
	// ErrMemoryUnavailable signals that the session store is down.
	ErrMemoryUnavailable = errors.New("session memory unavailable")
	// ErrInvalidConfig signals an invalid component configuration.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrUnknownTool signals a tool name not present in the registry.
	ErrUnknownTool = errors.New("unknown tool")
	// ErrInvalidArguments signals tool arguments that fail schema validation.
	ErrInvalidArguments = errors.New("invalid tool arguments")
	// ErrInvalidLesson signals generated output violating the lesson contract.
	ErrInvalidLesson = errors.New("invalid lesson")
	// ErrCompletionProviderError signals an LLM completion provider failure.
	ErrCompletionProviderError = errors.New("completion provider error")
	// ErrModerationProviderError signals a moderation provider failure.
	ErrModerationProviderError = errors.New("moderation provider error")
)
