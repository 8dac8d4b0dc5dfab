package utils

import (
	"github.com/ballotchain/vote-submission-service/internal/types"
)

// QualifiedStatesToProcessing returns the qualified existing states to transition to "processing"
// Only a queued submission can start an attempt; anything else means the attempt was cancelled
// or already picked up.
func QualifiedStatesToProcessing() []types.SubmissionStatus {
	return []types.SubmissionStatus{types.Pending}
}

// QualifiedStatesToPending returns the qualified existing states to transition back to "pending"
// i.e. an attempt failed with a retryable error and a new attempt is scheduled.
func QualifiedStatesToPending() []types.SubmissionStatus {
	return []types.SubmissionStatus{types.Processing}
}

// QualifiedStatesToConfirmed returns the qualified existing states to transition to "confirmed"
func QualifiedStatesToConfirmed() []types.SubmissionStatus {
	return []types.SubmissionStatus{types.Processing}
}

// QualifiedStatesToFailed returns the qualified existing states to transition to "failed"
// Pending is included for validation failures and for a coordinator shutdown while queued.
func QualifiedStatesToFailed() []types.SubmissionStatus {
	return []types.SubmissionStatus{types.Pending, types.Processing}
}

// QualifiedStatesToRejected returns the qualified existing states to transition to "rejected"
// Cancellation cannot abort an attempt that is already mid-flight.
func QualifiedStatesToRejected() []types.SubmissionStatus {
	return []types.SubmissionStatus{types.Pending}
}

// QualifiedStatesTo returns the qualified existing states for the given target state
func QualifiedStatesTo(target types.SubmissionStatus) []types.SubmissionStatus {
	switch target {
	case types.Processing:
		return QualifiedStatesToProcessing()
	case types.Pending:
		return QualifiedStatesToPending()
	case types.Confirmed:
		return QualifiedStatesToConfirmed()
	case types.Failed:
		return QualifiedStatesToFailed()
	case types.Rejected:
		return QualifiedStatesToRejected()
	default:
		return nil
	}
}

// CanTransition checks whether from -> to is a legal submission transition
func CanTransition(from, to types.SubmissionStatus) bool {
	return Contains(QualifiedStatesTo(to), from)
}
