package services

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/ballotchain/vote-submission-service/internal/clients"
	"github.com/ballotchain/vote-submission-service/internal/config"
	"github.com/ballotchain/vote-submission-service/internal/db"
	"github.com/ballotchain/vote-submission-service/internal/queue"
	"github.com/ballotchain/vote-submission-service/internal/scheduler"
	"github.com/ballotchain/vote-submission-service/internal/services/biometric"
	"github.com/ballotchain/vote-submission-service/internal/services/confirmation"
	"github.com/ballotchain/vote-submission-service/internal/services/ledger"
	"github.com/ballotchain/vote-submission-service/internal/services/submission"
	"github.com/ballotchain/vote-submission-service/internal/services/wallet"
)

// Service layer contains the business logic and is used to interact with
// the database and other external clients (if any).
type Services struct {
	DbClient     db.DBClient
	Publisher    queue.EventPublisher
	Clients      *clients.Clients
	Gate         *biometric.Gate
	CommitAgent  *ledger.CommitAgent
	ConfirmAgent *confirmation.ConfirmAgent
	Coordinator  *submission.Coordinator
	Wallet       *wallet.Resolver
	cfg          *config.Config
	now          func() time.Time
}

// New wires the pipeline. sched may be nil, in which case retries run on real timers.
func New(
	ctx context.Context,
	cfg *config.Config,
	c *clients.Clients,
	dbClient db.DBClient,
	publisher queue.EventPublisher,
	sched scheduler.Scheduler,
) (*Services, error) {
	if sched == nil {
		sched = scheduler.NewTimerScheduler()
	}

	gate := biometric.NewGate(c.Biometric, &cfg.Biometric, sched.Now)
	commitAgent := ledger.NewCommitAgent(c.Backend, c.Ledger)
	confirmAgent := confirmation.NewConfirmAgent(c.Backend)
	coordinator := submission.NewCoordinator(cfg.Submission, commitAgent, confirmAgent, submission.Options{
		Claims:    gate,
		Store:     dbClient,
		Publisher: publisher,
		History:   c.Backend,
		Scheduler: sched,
	})

	log.Ctx(ctx).Info().Int("maxRetries", cfg.Submission.MaxRetries).
		Dur("baseRetryDelay", cfg.Submission.BaseRetryDelay).Msg("submission pipeline initialised")

	return &Services{
		DbClient:     dbClient,
		Publisher:    publisher,
		Clients:      c,
		Gate:         gate,
		CommitAgent:  commitAgent,
		ConfirmAgent: confirmAgent,
		Coordinator:  coordinator,
		Wallet:       wallet.NewResolver(c.Backend, nil),
		cfg:          cfg,
		now:          sched.Now,
	}, nil
}

// DoHealthCheck checks the health of the services by pinging the database and the chain node.
func (s *Services) DoHealthCheck(ctx context.Context) error {
	if s.DbClient != nil {
		if err := s.DbClient.Ping(ctx); err != nil {
			return err
		}
	}
	return s.Clients.Ledger.Ping(ctx)
}

// PruneStatusCache is run periodically next to the health check. Issued claims
// too old to pass the freshness check are dropped as well.
func (s *Services) PruneStatusCache() int {
	s.Gate.ForgetClaimsBefore(s.now().Add(-s.cfg.Submission.ClaimValidity))
	return s.Coordinator.PruneStatusCache()
}

// Stop cancels scheduled retries and waits for running attempts.
func (s *Services) Stop() {
	s.Coordinator.Stop()
}
