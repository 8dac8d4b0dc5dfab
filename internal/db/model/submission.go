package model

import (
	"time"

	"github.com/ballotchain/vote-submission-service/internal/types"
)

const SubmissionCollection = "vote_submissions"

// SubmissionDocument is the durable copy of a SubmissionRecord.
// The wallet secret and the claim are never persisted.
type SubmissionDocument struct {
	SubmissionID   string     `bson:"_id"` // Primary key
	ElectionID     string     `bson:"election_id"`
	CandidateID    string     `bson:"candidate_id"`
	VoterID        string     `bson:"voter_id"`
	Status         string     `bson:"status"`
	TxHash         string     `bson:"tx_hash,omitempty"`
	BlockNumber    uint64     `bson:"block_number,omitempty"`
	ConfirmationID string     `bson:"confirmation_id,omitempty"`
	ErrorCode      string     `bson:"error_code,omitempty"`
	ErrorMessage   string     `bson:"error_message,omitempty"`
	Divergent      bool       `bson:"divergent"`
	RetryCount     int        `bson:"retry_count"`
	RequestedAt    time.Time  `bson:"requested_at"`
	SubmittedAt    time.Time  `bson:"submitted_at"`
	ConfirmedAt    *time.Time `bson:"confirmed_at,omitempty"`
	UpdatedAt      time.Time  `bson:"updated_at"`
}

func NewSubmissionDocument(record *types.SubmissionRecord) *SubmissionDocument {
	doc := &SubmissionDocument{
		SubmissionID:   record.SubmissionID,
		ElectionID:     record.Request.ElectionID,
		CandidateID:    record.Request.CandidateID,
		VoterID:        record.Request.VoterID,
		Status:         record.Status.ToString(),
		TxHash:         record.TxHash,
		BlockNumber:    record.BlockNumber,
		ConfirmationID: record.ConfirmationID,
		Divergent:      record.Divergent,
		RetryCount:     record.RetryCount,
		RequestedAt:    record.Request.Timestamp,
		SubmittedAt:    record.SubmittedAt,
		ConfirmedAt:    record.ConfirmedAt,
		UpdatedAt:      record.UpdatedAt,
	}
	if record.Error != nil {
		doc.ErrorCode = record.Error.Code.String()
		doc.ErrorMessage = record.Error.Message()
	}
	return doc
}

// ToRecord rebuilds a record for status queries. The claim and the wallet
// secret are not part of the document and stay empty.
func (d *SubmissionDocument) ToRecord() (*types.SubmissionRecord, error) {
	status, err := types.FromStringToSubmissionStatus(d.Status)
	if err != nil {
		return nil, err
	}
	record := &types.SubmissionRecord{
		SubmissionID: d.SubmissionID,
		Request: types.SubmissionRequest{
			ElectionID:  d.ElectionID,
			CandidateID: d.CandidateID,
			VoterID:     d.VoterID,
			Timestamp:   d.RequestedAt,
		},
		Status:         status,
		TxHash:         d.TxHash,
		BlockNumber:    d.BlockNumber,
		ConfirmationID: d.ConfirmationID,
		Divergent:      d.Divergent,
		SubmittedAt:    d.SubmittedAt,
		ConfirmedAt:    d.ConfirmedAt,
		UpdatedAt:      d.UpdatedAt,
		RetryCount:     d.RetryCount,
	}
	if d.ErrorCode != "" {
		record.Error = &types.SubmissionError{
			Code:      types.FailureCode(d.ErrorCode),
			Retryable: false,
		}
		if d.ErrorMessage != "" && d.ErrorMessage != d.ErrorCode {
			record.Error = types.NewPermanentErrorWithMsg(types.FailureCode(d.ErrorCode), d.ErrorMessage)
		}
	}
	return record, nil
}
