package biometric

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"sync"
	"time"

	biometricclient "github.com/ballotchain/vote-submission-service/internal/clients/biometric"
	"github.com/ballotchain/vote-submission-service/internal/config"
	"github.com/ballotchain/vote-submission-service/internal/observability/metrics"
	"github.com/ballotchain/vote-submission-service/internal/types"
	"github.com/rs/zerolog/log"
)

const nonceSize = 16

// Gate turns a device biometric prompt into a VerificationClaim. It is also
// the only authority on which claims it issued.
type Gate struct {
	sensor     biometricclient.Sensor
	deviceID   string
	promptText string
	now        func() time.Time

	mu               sync.RWMutex
	lastVerification map[string]time.Time
	issued           map[string]issuedClaim
}

type issuedClaim struct {
	subjectID  string
	electionID string
	deviceID   string
	capturedAt time.Time
}

func NewGate(sensor biometricclient.Sensor, cfg *config.BiometricConfig, now func() time.Time) *Gate {
	if now == nil {
		now = time.Now
	}
	return &Gate{
		sensor:           sensor,
		deviceID:         cfg.DeviceID,
		promptText:       cfg.GetPromptText(),
		now:              now,
		lastVerification: make(map[string]time.Time),
		issued:           make(map[string]issuedClaim),
	}
}

// VerifyForVoting prompts the voter exactly once. Every failure is final for
// this call, the caller decides whether to prompt again.
func (g *Gate) VerifyForVoting(
	ctx context.Context, subjectID, electionID string,
) (*types.VerificationClaim, *types.SubmissionError) {
	if subjectID == "" || electionID == "" {
		return nil, types.NewPermanentErrorWithMsg(types.MissingField, "voterId and electionId are required")
	}
	timer := metrics.StartAgentTimer("biometric")

	claim, err := g.verify(ctx, subjectID, electionID)
	if err != nil {
		timer(metrics.Error)
		log.Ctx(ctx).Info().Str("code", err.Code.String()).Str("voterId", subjectID).
			Msg("biometric verification did not succeed")
		return nil, err
	}
	timer(metrics.Success)
	return claim, nil
}

func (g *Gate) verify(
	ctx context.Context, subjectID, electionID string,
) (*types.VerificationClaim, *types.SubmissionError) {
	availability, err := g.sensor.CheckAvailability(ctx)
	if err != nil {
		return nil, types.NewPermanentError(types.BiometricUnavailable, err)
	}
	if !availability.HasHardware {
		return nil, types.NewPermanentErrorWithMsg(types.BiometricUnavailable, "no biometric hardware on this device")
	}
	if !availability.IsEnrolled {
		return nil, types.NewPermanentErrorWithMsg(types.NotEnrolled, "no biometric enrolled on this device")
	}

	result, err := g.sensor.Authenticate(ctx, g.promptText)
	if err != nil {
		return nil, types.NewPermanentError(types.BiometricUnavailable, err)
	}
	if !result.Success {
		return nil, authenticationFailure(result.Error)
	}

	capturedAt := g.now().UTC()
	claimHash, hashErr := newClaimHash(subjectID, g.deviceID, electionID, capturedAt)
	if hashErr != nil {
		return nil, types.NewPermanentError(types.BiometricUnavailable, hashErr)
	}

	g.mu.Lock()
	g.lastVerification[subjectID] = capturedAt
	g.issued[claimHash] = issuedClaim{
		subjectID:  subjectID,
		electionID: electionID,
		deviceID:   g.deviceID,
		capturedAt: capturedAt,
	}
	g.mu.Unlock()

	return &types.VerificationClaim{
		SubjectID:  subjectID,
		DeviceID:   g.deviceID,
		CapturedAt: capturedAt,
		ClaimHash:  claimHash,
		Confidence: result.Confidence,
	}, nil
}

// LastVerification is for display only. It never stands in for a fresh prompt.
func (g *Gate) LastVerification(subjectID string) (time.Time, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	at, ok := g.lastVerification[subjectID]
	return at, ok
}

// VerifyClaim checks that the claim was issued by this gate for this election
// and that none of its fields were altered. Freshness and single use are left
// to the caller.
func (g *Gate) VerifyClaim(claim types.VerificationClaim, electionID string) *types.SubmissionError {
	g.mu.RLock()
	issued, ok := g.issued[claim.ClaimHash]
	g.mu.RUnlock()

	switch {
	case !ok:
		return types.NewPermanentErrorWithMsg(types.ClaimInvalid, "verification claim was not issued on this device")
	case issued.electionID != electionID:
		return types.NewPermanentErrorWithMsg(types.ClaimInvalid, "verification claim was issued for another election")
	case issued.subjectID != claim.SubjectID,
		issued.deviceID != claim.DeviceID,
		!issued.capturedAt.Equal(claim.CapturedAt):
		return types.NewPermanentErrorWithMsg(types.ClaimInvalid, "verification claim does not match the issued claim")
	}
	return nil
}

// ForgetClaimsBefore drops issued claims captured before cutoff. Those can no
// longer pass a freshness check anyway.
func (g *Gate) ForgetClaimsBefore(cutoff time.Time) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	removed := 0
	for claimHash, issued := range g.issued {
		if issued.capturedAt.Before(cutoff) {
			delete(g.issued, claimHash)
			removed++
		}
	}
	return removed
}

func authenticationFailure(reason string) *types.SubmissionError {
	switch reason {
	case biometricclient.ErrUserCancel, biometricclient.ErrSystemCancel:
		return types.NewPermanentErrorWithMsg(types.UserCancelled, "biometric prompt was cancelled")
	case biometricclient.ErrNotEnrolled:
		return types.NewPermanentErrorWithMsg(types.NotEnrolled, "no biometric enrolled on this device")
	case biometricclient.ErrNotAvailable:
		return types.NewPermanentErrorWithMsg(types.BiometricUnavailable, "biometric sensor is not available")
	}
	if reason == "" {
		reason = "biometric authentication failed"
	}
	return types.NewPermanentError(types.AuthenticationFailed, errors.New(reason))
}

func newClaimHash(subjectID, deviceID, electionID string, capturedAt time.Time) (string, error) {
	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return "", err
	}
	payload := strings.Join([]string{
		subjectID, deviceID, electionID, capturedAt.Format(time.RFC3339Nano), hex.EncodeToString(nonce),
	}, "|")
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:]), nil
}
