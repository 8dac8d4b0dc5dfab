package biometric

import (
	"context"

	"github.com/ballotchain/vote-submission-service/internal/types"
)

// Sensor is the device biometric gateway. Template matching happens on the
// device, this side only sees the outcome.
type Sensor interface {
	CheckAvailability(ctx context.Context) (*Availability, *types.Error)
	// Authenticate prompts the user once and blocks until they respond
	Authenticate(ctx context.Context, promptText string) (*AuthenticationResult, *types.Error)
}
