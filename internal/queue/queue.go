package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ballotchain/vote-submission-service/internal/config"
	"github.com/ballotchain/vote-submission-service/internal/queue/client"
	"github.com/ballotchain/vote-submission-service/internal/types"
	"github.com/rs/zerolog/log"
)

// EventPublisher fans terminal submission outcomes out to downstream consumers.
type EventPublisher interface {
	PublishSubmissionEvent(ctx context.Context, record *types.SubmissionRecord) error
}

type Queues struct {
	VoteConfirmedQueueClient  client.QueueClient
	VoteFailedQueueClient     client.QueueClient
	VoteDivergenceQueueClient client.QueueClient
	publishTimeout            time.Duration
}

func New(cfg config.QueueConfig) (*Queues, error) {
	confirmed, err := client.NewQueueClient(cfg.Url, cfg.QueueUser, cfg.QueuePassword, client.VoteConfirmedQueueName)
	if err != nil {
		return nil, err
	}
	failed, err := client.NewQueueClient(cfg.Url, cfg.QueueUser, cfg.QueuePassword, client.VoteFailedQueueName)
	if err != nil {
		return nil, err
	}
	divergence, err := client.NewQueueClient(cfg.Url, cfg.QueueUser, cfg.QueuePassword, client.VoteDivergenceQueueName)
	if err != nil {
		return nil, err
	}
	return NewWithClients(confirmed, failed, divergence, time.Duration(cfg.QueuePublishTimeout)*time.Second), nil
}

func NewWithClients(confirmed, failed, divergence client.QueueClient, publishTimeout time.Duration) *Queues {
	return &Queues{
		VoteConfirmedQueueClient:  confirmed,
		VoteFailedQueueClient:     failed,
		VoteDivergenceQueueClient: divergence,
		publishTimeout:            publishTimeout,
	}
}

// PublishSubmissionEvent routes a terminal record to its queue. A divergent
// record goes to the divergence queue in addition to the failed queue.
func (q *Queues) PublishSubmissionEvent(ctx context.Context, record *types.SubmissionRecord) error {
	switch record.Status {
	case types.Confirmed:
		confirmedAt := record.UpdatedAt
		if record.ConfirmedAt != nil {
			confirmedAt = *record.ConfirmedAt
		}
		return q.send(ctx, q.VoteConfirmedQueueClient, client.VoteConfirmedEvent{
			EventType:      client.VoteConfirmedEventType,
			SubmissionID:   record.SubmissionID,
			ElectionID:     record.Request.ElectionID,
			VoterID:        record.Request.VoterID,
			TxHash:         record.TxHash,
			BlockNumber:    record.BlockNumber,
			ConfirmationID: record.ConfirmationID,
			ConfirmedAt:    confirmedAt,
		})
	case types.Failed, types.Rejected:
		errorCode := ""
		if record.Error != nil {
			errorCode = record.Error.Code.String()
		}
		err := q.send(ctx, q.VoteFailedQueueClient, client.VoteFailedEvent{
			EventType:    client.VoteFailedEventType,
			SubmissionID: record.SubmissionID,
			ElectionID:   record.Request.ElectionID,
			VoterID:      record.Request.VoterID,
			Status:       record.Status.ToString(),
			ErrorCode:    errorCode,
			RetryCount:   record.RetryCount,
		})
		if !record.Divergent {
			return err
		}
		divErr := q.send(ctx, q.VoteDivergenceQueueClient, client.VoteDivergenceEvent{
			EventType:    client.VoteDivergenceEventType,
			SubmissionID: record.SubmissionID,
			ElectionID:   record.Request.ElectionID,
			CandidateID:  record.Request.CandidateID,
			VoterID:      record.Request.VoterID,
			TxHash:       record.TxHash,
			BlockNumber:  record.BlockNumber,
			ErrorCode:    errorCode,
		})
		return errors.Join(err, divErr)
	}
	return fmt.Errorf("cannot publish non-terminal submission %s in status %s", record.SubmissionID, record.Status)
}

func (q *Queues) send(ctx context.Context, queueClient client.QueueClient, event interface{}) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, q.publishTimeout)
	defer cancel()

	if err := queueClient.SendMessage(ctx, string(body)); err != nil {
		log.Ctx(ctx).Error().Err(err).Str("queueName", queueClient.GetQueueName()).
			Msg("error while publishing message to queue")
		return err
	}
	return nil
}

func (q *Queues) IsConnectionHealthy() error {
	var errs []error
	for _, queueClient := range q.clients() {
		if err := queueClient.Ping(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (q *Queues) Stop() {
	for _, queueClient := range q.clients() {
		if err := queueClient.Stop(); err != nil {
			log.Error().Err(err).Str("queueName", queueClient.GetQueueName()).Msg("error while stopping queue client")
		}
	}
}

func (q *Queues) clients() []client.QueueClient {
	return []client.QueueClient{q.VoteConfirmedQueueClient, q.VoteFailedQueueClient, q.VoteDivergenceQueueClient}
}
