package constants

// DecisionStatus is the canonical status of a claim decision.
type DecisionStatus string

// Stable values (these exact strings appear in API responses).
const (
	DecisionPending  DecisionStatus = "pending"  // sentinel until validation runs
	DecisionApproved DecisionStatus = "approved" // claim accepted
	DecisionRejected DecisionStatus = "rejected" // claim denied or validation failed
)
