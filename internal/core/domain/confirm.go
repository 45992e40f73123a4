package domain

// ConfirmKind names the operation asking for confirmation.
type ConfirmKind string

const (
	// ConfirmCiting asks before ingesting a large citing set.
	ConfirmCiting ConfirmKind = "citing"

	// ConfirmIterate asks before another round of iterative search.
	ConfirmIterate ConfirmKind = "iterate"
)

// ConfirmRequest describes what is about to happen.
type ConfirmRequest struct {
	Kind ConfirmKind

	// Subject is the work id or query the request concerns.
	Subject string

	// Count is the number of items involved (citing works, or results).
	Count int

	// Completed is the number of iterative search rounds already run.
	Completed int
}

// Verdict is the answer to a confirmation request.
type Verdict int

const (
	// Deny stops the operation.
	Deny Verdict = iota

	// Allow proceeds without limit.
	Allow

	// Cap proceeds up to Decision.Limit items. A Limit below 1 denies.
	Cap
)

// Decision is a Verdict with an optional limit.
type Decision struct {
	Verdict Verdict
	Limit   int
}
