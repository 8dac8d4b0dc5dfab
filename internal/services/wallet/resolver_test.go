package wallet

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/ballotchain/vote-submission-service/internal/clients/backend"
	"github.com/ballotchain/vote-submission-service/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticProfiles struct {
	profile *backend.UserProfileResponse
	err     *types.Error
	tokens  []string
}

func (s *staticProfiles) GetUserProfile(_ context.Context, token string) (*backend.UserProfileResponse, *types.Error) {
	s.tokens = append(s.tokens, token)
	return s.profile, s.err
}

type failingDecrypter struct{}

func (failingDecrypter) Decrypt(context.Context, string) (string, error) {
	return "", errors.New("bad ciphertext")
}

func TestResolveSecret(t *testing.T) {
	profiles := &staticProfiles{profile: &backend.UserProfileResponse{ID: "voter-1", EncryptedPrivateKey: "0xkey"}}

	secret, err := NewResolver(profiles, nil).ResolveSecret(context.Background(), "token-1", "voter-1")
	require.Nil(t, err)
	assert.Equal(t, "0xkey", secret)
	assert.Equal(t, []string{"token-1"}, profiles.tokens)
}

func TestResolveSecretFailures(t *testing.T) {
	tests := []struct {
		name       string
		profiles   *staticProfiles
		decrypter  SecretDecrypter
		token      string
		statusCode int
	}{
		{"missing token", &staticProfiles{}, nil, "", http.StatusForbidden},
		{"other voter", &staticProfiles{profile: &backend.UserProfileResponse{ID: "voter-2", EncryptedPrivateKey: "k"}}, nil, "t", http.StatusForbidden},
		{"profile without id", &staticProfiles{profile: &backend.UserProfileResponse{EncryptedPrivateKey: "k"}}, nil, "t", http.StatusForbidden},
		{"no wallet", &staticProfiles{profile: &backend.UserProfileResponse{ID: "voter-1"}}, nil, "t", http.StatusForbidden},
		{"backend down", &staticProfiles{err: types.NewErrorWithMsg(http.StatusBadGateway, types.InternalServiceError, "down")}, nil, "t", http.StatusServiceUnavailable},
		{"unauthorized", &staticProfiles{err: types.NewErrorWithMsg(http.StatusUnauthorized, types.BadRequest, "no")}, nil, "t", http.StatusForbidden},
		{"decrypt failure", &staticProfiles{profile: &backend.UserProfileResponse{ID: "voter-1", EncryptedPrivateKey: "k"}}, failingDecrypter{}, "t", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			secret, err := NewResolver(tt.profiles, tt.decrypter).ResolveSecret(context.Background(), tt.token, "voter-1")
			assert.Empty(t, secret)
			require.NotNil(t, err)
			assert.Equal(t, tt.statusCode, err.StatusCode)
		})
	}
}
