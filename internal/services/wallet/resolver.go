package wallet

import (
	"context"
	"errors"
	"net/http"

	"github.com/ballotchain/vote-submission-service/internal/clients/backend"
	"github.com/ballotchain/vote-submission-service/internal/types"
	"github.com/rs/zerolog/log"
)

// SecretDecrypter unwraps the wallet material stored by the backend.
type SecretDecrypter interface {
	Decrypt(ctx context.Context, encrypted string) (string, error)
}

// PassthroughDecrypter is used when the backend already returns the key in the clear.
type PassthroughDecrypter struct{}

func (PassthroughDecrypter) Decrypt(_ context.Context, encrypted string) (string, error) {
	return encrypted, nil
}

type ProfileSource interface {
	GetUserProfile(ctx context.Context, authToken string) (*backend.UserProfileResponse, *types.Error)
}

type Resolver struct {
	profiles  ProfileSource
	decrypter SecretDecrypter
}

func NewResolver(profiles ProfileSource, decrypter SecretDecrypter) *Resolver {
	if decrypter == nil {
		decrypter = PassthroughDecrypter{}
	}
	return &Resolver{profiles: profiles, decrypter: decrypter}
}

// ResolveSecret fetches the wallet secret of the user owning authToken. The
// profile must belong to voterID.
func (r *Resolver) ResolveSecret(ctx context.Context, authToken, voterID string) (string, *types.Error) {
	if authToken == "" {
		return "", types.NewErrorWithMsg(http.StatusForbidden, types.Forbidden, "missing bearer token")
	}

	profile, err := r.profiles.GetUserProfile(ctx, authToken)
	if err != nil {
		if err.IsTransient() {
			return "", types.NewError(http.StatusServiceUnavailable, types.ServiceUnavailable, err)
		}
		return "", types.NewErrorWithMsg(http.StatusForbidden, types.Forbidden, "unable to load voter profile")
	}
	// A profile without an id cannot be tied to the voter
	if profile.ID == "" || profile.ID != voterID {
		log.Ctx(ctx).Warn().Str("voterId", voterID).Msg("bearer token does not belong to the voter")
		return "", types.NewErrorWithMsg(http.StatusForbidden, types.Forbidden, "token does not belong to voter")
	}
	if profile.EncryptedPrivateKey == "" {
		return "", types.NewErrorWithMsg(http.StatusForbidden, types.Forbidden, "voter has no wallet")
	}

	secret, decryptErr := r.decrypter.Decrypt(ctx, profile.EncryptedPrivateKey)
	if decryptErr != nil || secret == "" {
		if decryptErr == nil {
			decryptErr = errors.New("empty wallet secret")
		}
		log.Ctx(ctx).Error().Err(decryptErr).Str("voterId", voterID).Msg("failed to decrypt wallet secret")
		return "", types.NewInternalServiceError(errors.New("failed to decrypt wallet secret"))
	}
	return secret, nil
}
