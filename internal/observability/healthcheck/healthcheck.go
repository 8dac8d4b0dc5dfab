package healthcheck

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const checkTimeout = 10 * time.Second

var logger zerolog.Logger = log.Logger

// terminate is swapped in tests
var terminate = terminateService

func SetLogger(customLogger zerolog.Logger) {
	logger = customLogger
}

// ServiceChecker is the part of the service layer run by the cron.
type ServiceChecker interface {
	DoHealthCheck(ctx context.Context) error
	PruneStatusCache() int
}

type QueueChecker interface {
	IsConnectionHealthy() error
}

func StartHealthCheckCron(ctx context.Context, service ServiceChecker, queues QueueChecker, cronTime int) error {
	c := cron.New()
	logger.Info().Msg("Initiated Health Check Cron")

	if cronTime == 0 {
		cronTime = 60
	}

	cronSpec := fmt.Sprintf("@every %ds", cronTime)

	_, err := c.AddFunc(cronSpec, func() {
		runChecks(ctx, service, queues)
	})

	if err != nil {
		return err
	}

	c.Start()

	go func() {
		<-ctx.Done()
		logger.Info().Msg("Stopping Health Check Cron")
		c.Stop()
	}()

	return nil
}

func runChecks(ctx context.Context, service ServiceChecker, queues QueueChecker) {
	if queues != nil {
		queueHealthCheck(queues)
	}

	checkCtx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()
	// The device may be offline for a while, retries cover that
	if err := service.DoHealthCheck(checkCtx); err != nil {
		logger.Warn().Err(err).Msg("database or ledger node is not reachable")
	}

	if pruned := service.PruneStatusCache(); pruned > 0 {
		logger.Debug().Int("pruned", pruned).Msg("pruned submission status cache")
	}
}

func queueHealthCheck(queues QueueChecker) {
	if err := queues.IsConnectionHealthy(); err != nil {
		logger.Error().Err(err).Msg("One or more queue connections are not healthy.")
		terminate()
	}
}

func terminateService() {
	logger.Fatal().Msg("Terminating service due to health check failure.")
	os.Exit(1)
}
