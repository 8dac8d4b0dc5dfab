package types

import (
	"errors"
	"fmt"
	"net/http"
)

type FailureCode string

func (c FailureCode) String() string {
	return string(c)
}

const (
	// Validation, never retried
	MissingField         FailureCode = "MISSING_FIELD"
	InvalidCandidate     FailureCode = "INVALID_CANDIDATE"
	ClaimSubjectMismatch FailureCode = "CLAIM_SUBJECT_MISMATCH"
	ClaimInvalid         FailureCode = "CLAIM_INVALID"
	ClaimExpired         FailureCode = "CLAIM_EXPIRED"
	ClaimReplayed        FailureCode = "CLAIM_REPLAYED"
	RequestExpired       FailureCode = "REQUEST_EXPIRED"
	DuplicateInFlight    FailureCode = "DUPLICATE_IN_FLIGHT"

	// Biometric gate
	BiometricUnavailable FailureCode = "BIOMETRIC_UNAVAILABLE"
	NotEnrolled          FailureCode = "NOT_ENROLLED"
	AuthenticationFailed FailureCode = "AUTHENTICATION_FAILED"
	UserCancelled        FailureCode = "USER_CANCELLED"

	// Ledger commit
	ElectionUnavailable          FailureCode = "ELECTION_UNAVAILABLE"
	ElectionNotFound             FailureCode = "ELECTION_NOT_FOUND"
	ElectionClosed               FailureCode = "ELECTION_CLOSED"
	IdentityUnavailable          FailureCode = "IDENTITY_UNAVAILABLE"
	LedgerUnavailable            FailureCode = "LEDGER_UNAVAILABLE"
	AlreadyVoted                 FailureCode = "ALREADY_VOTED"
	AlreadyRegisteredCheckFailed FailureCode = "ALREADY_REGISTERED_CHECK_FAILED"
	RegistrationFailed           FailureCode = "REGISTRATION_FAILED"
	RegistrationRejected         FailureCode = "REGISTRATION_REJECTED"
	LedgerCongested              FailureCode = "LEDGER_CONGESTED"
	CommitRejected               FailureCode = "COMMIT_REJECTED"

	// Backend confirmation
	BackendUnavailable FailureCode = "BACKEND_UNAVAILABLE"
	RejectedByBackend  FailureCode = "REJECTED_BY_BACKEND"

	// Ledger holds the vote but the backend never recorded it
	LedgerBackendDivergence FailureCode = "LEDGER_BACKEND_DIVERGENCE"

	// Coordinator queries
	SubmissionNotFound FailureCode = "NOT_FOUND"
	NotCancellable     FailureCode = "NOT_CANCELLABLE"
	CoordinatorStopped FailureCode = "COORDINATOR_STOPPED"
)

// SubmissionError is the structured failure returned across every agent boundary.
// Retryable drives the coordinator's retry-or-terminal decision.
type SubmissionError struct {
	Code      FailureCode
	Retryable bool
	Err       error
}

func (e *SubmissionError) Error() string {
	if e.Err == nil {
		return e.Code.String()
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Err.Error())
}

func (e *SubmissionError) Unwrap() error {
	return e.Err
}

// Message is the human readable reason without the code prefix.
func (e *SubmissionError) Message() string {
	if e.Err == nil {
		return e.Code.String()
	}
	return e.Err.Error()
}

func NewPermanentError(code FailureCode, err error) *SubmissionError {
	return &SubmissionError{Code: code, Retryable: false, Err: err}
}

func NewPermanentErrorWithMsg(code FailureCode, msg string) *SubmissionError {
	return NewPermanentError(code, errors.New(msg))
}

func NewRetryableError(code FailureCode, err error) *SubmissionError {
	return &SubmissionError{Code: code, Retryable: true, Err: err}
}

func NewRetryableErrorWithMsg(code FailureCode, msg string) *SubmissionError {
	return NewRetryableError(code, errors.New(msg))
}

// AsSubmissionError extracts a *SubmissionError from err's chain.
func AsSubmissionError(err error) (*SubmissionError, bool) {
	var subErr *SubmissionError
	if errors.As(err, &subErr) {
		return subErr, true
	}
	return nil, false
}

// ToHTTPError maps a failure onto the API error shape.
func (e *SubmissionError) ToHTTPError() *Error {
	switch e.Code {
	case MissingField, InvalidCandidate, ClaimSubjectMismatch, ClaimExpired, RequestExpired:
		return NewError(http.StatusBadRequest, ValidationError, errors.New(e.Message()))
	case ClaimInvalid:
		return NewError(http.StatusForbidden, ErrorCode(e.Code), errors.New(e.Message()))
	case ClaimReplayed, AlreadyVoted, DuplicateInFlight, NotCancellable:
		return NewError(http.StatusConflict, ErrorCode(e.Code), errors.New(e.Message()))
	case SubmissionNotFound, ElectionNotFound:
		return NewError(http.StatusNotFound, NotFound, errors.New(e.Message()))
	case BiometricUnavailable, NotEnrolled, AuthenticationFailed, UserCancelled:
		return NewError(http.StatusForbidden, ErrorCode(e.Code), errors.New(e.Message()))
	case ElectionClosed, IdentityUnavailable, RejectedByBackend, RegistrationRejected, CommitRejected:
		return NewError(http.StatusUnprocessableEntity, ErrorCode(e.Code), errors.New(e.Message()))
	}
	if e.Retryable {
		return NewError(http.StatusServiceUnavailable, ServiceUnavailable, errors.New(e.Message()))
	}
	return NewInternalServiceError(e)
}
