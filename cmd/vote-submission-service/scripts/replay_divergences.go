package scripts

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"
)

type DivergenceReplayer interface {
	ReplayDivergences(ctx context.Context) (int, error)
}

func ReplayDivergences(ctx context.Context, replayer DivergenceReplayer) error {
	resolved, err := replayer.ReplayDivergences(ctx)
	if err != nil {
		return fmt.Errorf("failed to replay divergences: %w", err)
	}

	fmt.Printf("Resolved %d divergent submissions.\n", resolved)
	if resolved == 0 {
		return errors.New("no divergence could be resolved")
	}

	log.Info().Msg("Replay of divergent submissions completed.")
	return nil
}
