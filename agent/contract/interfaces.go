package contract

import "context"

// Strategy is one way of extracting slot values from a turn. Implementations
// never return an error: failures are reported through Outcome.Status so the
// caller can pick the next strategy deterministically.
type Strategy interface {
	Name() string
	Extract(ctx context.Context, req ExtractionRequest) Outcome
}

type SubmissionSink interface {
	Submit(ctx context.Context, sub Submission) error
}
