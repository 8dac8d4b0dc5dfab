package types

import (
	"fmt"
	"time"
)

// VerificationClaim is a time-bounded proof that a biometric authentication succeeded
// on a given device for a given subject.
type VerificationClaim struct {
	SubjectID  string    `json:"subjectId"`
	DeviceID   string    `json:"deviceId"`
	CapturedAt time.Time `json:"capturedAt"`
	ClaimHash  string    `json:"claimHash"`
	Confidence *float64  `json:"confidence,omitempty"`
}

// IsFreshAt reports whether the claim can be used at now. A claim captured
// more than skew ahead of now is not fresh either.
func (c VerificationClaim) IsFreshAt(now time.Time, validity, skew time.Duration) bool {
	if c.CapturedAt.IsZero() {
		return false
	}
	age := now.Sub(c.CapturedAt)
	return age >= -skew && age <= validity
}

type SubmissionRequest struct {
	ElectionID        string            `json:"electionId"`
	CandidateID       string            `json:"candidateId"`
	VoterID           string            `json:"voterId"`
	VerificationClaim VerificationClaim `json:"verificationClaim"`
	// Never logged nor serialized
	WalletSecret string    `json:"-"`
	Timestamp    time.Time `json:"timestamp"`
}

// Key identifies the single vote a voter may cast in an election.
func (r SubmissionRequest) Key() SubmissionKey {
	return SubmissionKey{ElectionID: r.ElectionID, VoterID: r.VoterID}
}

// String redacts the wallet secret so the request is safe to print.
func (r SubmissionRequest) String() string {
	return fmt.Sprintf(
		"SubmissionRequest{electionId=%s candidateId=%s voterId=%s walletSecret=[REDACTED]}",
		r.ElectionID, r.CandidateID, r.VoterID,
	)
}

type SubmissionKey struct {
	ElectionID string
	VoterID    string
}

func (k SubmissionKey) String() string {
	return k.ElectionID + "/" + k.VoterID
}

type SubmissionRecord struct {
	SubmissionID   string            `json:"submissionId"`
	Request        SubmissionRequest `json:"request"`
	Status         SubmissionStatus  `json:"status"`
	TxHash         string            `json:"txHash,omitempty"`
	BlockNumber    uint64            `json:"blockNumber,omitempty"`
	ConfirmationID string            `json:"confirmationId,omitempty"`
	Error          *SubmissionError  `json:"-"`
	Divergent      bool              `json:"divergent,omitempty"`
	SubmittedAt    time.Time         `json:"submittedAt"`
	ConfirmedAt    *time.Time        `json:"confirmedAt,omitempty"`
	UpdatedAt      time.Time         `json:"updatedAt"`
	RetryCount     int               `json:"retryCount"`
}

// IsCommitted reports whether the ledger transaction for this record has been mined.
func (r *SubmissionRecord) IsCommitted() bool {
	return r.TxHash != "" && r.BlockNumber > 0
}
