package client

import "time"

const (
	VoteConfirmedQueueName  string = "vote_confirmed_queue"
	VoteFailedQueueName     string = "vote_failed_queue"
	VoteDivergenceQueueName string = "vote_divergence_queue"
)

const (
	VoteConfirmedEventType  EventType = 1
	VoteFailedEventType     EventType = 2
	VoteDivergenceEventType EventType = 3
)

type EventType int

type VoteConfirmedEvent struct {
	EventType      EventType `json:"event_type"` // always 1
	SubmissionID   string    `json:"submission_id"`
	ElectionID     string    `json:"election_id"`
	VoterID        string    `json:"voter_id"`
	TxHash         string    `json:"tx_hash"`
	BlockNumber    uint64    `json:"block_number"`
	ConfirmationID string    `json:"confirmation_id"`
	ConfirmedAt    time.Time `json:"confirmed_at"`
}

type VoteFailedEvent struct {
	EventType    EventType `json:"event_type"` // always 2
	SubmissionID string    `json:"submission_id"`
	ElectionID   string    `json:"election_id"`
	VoterID      string    `json:"voter_id"`
	Status       string    `json:"status"`
	ErrorCode    string    `json:"error_code"`
	RetryCount   int       `json:"retry_count"`
}

// VoteDivergenceEvent reports a vote on the ledger that the backend never recorded
type VoteDivergenceEvent struct {
	EventType    EventType `json:"event_type"` // always 3
	SubmissionID string    `json:"submission_id"`
	ElectionID   string    `json:"election_id"`
	CandidateID  string    `json:"candidate_id"`
	VoterID      string    `json:"voter_id"`
	TxHash       string    `json:"tx_hash"`
	BlockNumber  uint64    `json:"block_number"`
	ErrorCode    string    `json:"error_code"`
}
