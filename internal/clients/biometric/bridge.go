package biometric

import (
	"context"
	"net/http"

	baseclient "github.com/ballotchain/vote-submission-service/internal/clients/base"
	"github.com/ballotchain/vote-submission-service/internal/config"
	"github.com/ballotchain/vote-submission-service/internal/types"
)

// Error values reported by the device bridge when Success is false
const (
	ErrUserCancel   = "user_cancel"
	ErrSystemCancel = "system_cancel"
	ErrNotEnrolled  = "not_enrolled"
	ErrNotAvailable = "not_available"
	ErrLockout      = "lockout"
)

type Availability struct {
	HasHardware bool `json:"hasHardware"`
	IsEnrolled  bool `json:"isEnrolled"`
}

type AuthenticateRequest struct {
	PromptText string `json:"promptText"`
}

type AuthenticationResult struct {
	Success    bool     `json:"success"`
	Error      string   `json:"error,omitempty"`
	Confidence *float64 `json:"confidence,omitempty"`
}

type BridgeClient struct {
	config        *config.BiometricConfig
	httpClient    *http.Client
	defaultHeader map[string]string
}

func NewBridgeClient(cfg *config.BiometricConfig) *BridgeClient {
	return &BridgeClient{
		config:     cfg,
		httpClient: &http.Client{},
		defaultHeader: map[string]string{
			"Accept": "application/json",
		},
	}
}

// Necessary for the BaseClient interface
func (c *BridgeClient) GetBaseURL() string {
	return c.config.BridgeURL
}

func (c *BridgeClient) GetDefaultRequestTimeout() int {
	return c.config.Timeout
}

func (c *BridgeClient) GetHttpClient() *http.Client {
	return c.httpClient
}

func (c *BridgeClient) CheckAvailability(ctx context.Context) (*Availability, *types.Error) {
	opts := &baseclient.BaseClientOptions{
		Path:      "/biometric/availability",
		Headers:   c.defaultHeader,
		Operation: "bridge_check_availability",
	}
	return baseclient.SendRequest[any, Availability](ctx, c, http.MethodGet, opts, nil)
}

func (c *BridgeClient) Authenticate(
	ctx context.Context, promptText string,
) (*AuthenticationResult, *types.Error) {
	opts := &baseclient.BaseClientOptions{
		Path:      "/biometric/authenticate",
		Headers:   c.defaultHeader,
		Operation: "bridge_authenticate",
	}
	return baseclient.SendRequest[AuthenticateRequest, AuthenticationResult](
		ctx, c, http.MethodPost, opts, &AuthenticateRequest{PromptText: promptText},
	)
}
