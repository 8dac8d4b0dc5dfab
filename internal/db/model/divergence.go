package model

import (
	"time"

	"github.com/ballotchain/vote-submission-service/internal/types"
)

const DivergenceCollection = "vote_divergences"

// DivergenceDocument holds a vote that is on the ledger but was never recorded
// by the backend. It carries everything needed to replay the confirmation.
type DivergenceDocument struct {
	SubmissionID string    `bson:"_id"` // Primary key
	ElectionID   string    `bson:"election_id"`
	CandidateID  string    `bson:"candidate_id"`
	VoterID      string    `bson:"voter_id"`
	TxHash       string    `bson:"tx_hash"`
	BlockNumber  uint64    `bson:"block_number"`
	RequestedAt  time.Time `bson:"requested_at"`
	ErrorCode    string    `bson:"error_code"`
	ErrorMessage string    `bson:"error_message"`
	DetectedAt   time.Time `bson:"detected_at"`
}

func NewDivergenceDocument(record *types.SubmissionRecord, cause *types.SubmissionError, detectedAt time.Time) *DivergenceDocument {
	doc := &DivergenceDocument{
		SubmissionID: record.SubmissionID,
		ElectionID:   record.Request.ElectionID,
		CandidateID:  record.Request.CandidateID,
		VoterID:      record.Request.VoterID,
		TxHash:       record.TxHash,
		BlockNumber:  record.BlockNumber,
		RequestedAt:  record.Request.Timestamp,
		DetectedAt:   detectedAt,
	}
	if cause != nil {
		doc.ErrorCode = cause.Code.String()
		doc.ErrorMessage = cause.Message()
	}
	return doc
}

// ToRequest rebuilds the parts of the original request the backend needs.
func (d *DivergenceDocument) ToRequest() types.SubmissionRequest {
	return types.SubmissionRequest{
		ElectionID:  d.ElectionID,
		CandidateID: d.CandidateID,
		VoterID:     d.VoterID,
		Timestamp:   d.RequestedAt,
	}
}
