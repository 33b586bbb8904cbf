package types

// OutcomeKind classifies the result of processing a webhook event.
type OutcomeKind int

const (
	// OutcomeSuccess means the event was fully processed (or was an
	// explicitly unhandled kind; those ack cleanly).
	OutcomeSuccess OutcomeKind = iota

	// OutcomeSoftFailure means processing stopped or degraded but the
	// provider should not redeliver: the failure is recorded as text on
	// the event row and the response is still an acknowledgement.
	OutcomeSoftFailure

	// OutcomeHardFailure means processing failed in a way that must be
	// surfaced to the provider as an error response.
	OutcomeHardFailure
)

// Outcome is the single result type consumed by both the event-store
// updater and the HTTP response mapper. It replaces the mixed
// "sometimes record a string, sometimes throw" control flow with one
// explicit tagged value.
type Outcome struct {
	Kind    OutcomeKind
	Message string // soft-failure text recorded on the event row
	Err     error  // hard-failure cause
}

// Succeed returns a successful outcome.
func Succeed() Outcome {
	return Outcome{Kind: OutcomeSuccess}
}

// SoftFail returns an outcome whose message is persisted on the event row
// while the provider still receives an acknowledgement.
func SoftFail(message string) Outcome {
	return Outcome{Kind: OutcomeSoftFailure, Message: message}
}

// HardFail returns an outcome that surfaces as an error response.
func HardFail(err error) Outcome {
	return Outcome{Kind: OutcomeHardFailure, Err: err}
}

// ProcessingError returns the text to record on the event row: empty on
// success, the message on soft failure, the error string on hard failure.
func (o Outcome) ProcessingError() string {
	switch o.Kind {
	case OutcomeSoftFailure:
		return o.Message
	case OutcomeHardFailure:
		if o.Err != nil {
			return o.Err.Error()
		}
		return "processing failed"
	default:
		return ""
	}
}
