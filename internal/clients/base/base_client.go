package baseclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ballotchain/vote-submission-service/internal/observability/metrics"
	"github.com/ballotchain/vote-submission-service/internal/types"
	"github.com/ballotchain/vote-submission-service/internal/utils"
	"github.com/rs/zerolog/log"
)

var ALLOWED_METHODS = []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"}

type BaseClient interface {
	GetBaseURL() string
	GetDefaultRequestTimeout() int
	GetHttpClient() *http.Client
}

// FailoverClient is implemented by clients backed by more than one endpoint.
// Transport errors and 5xx responses are reported so the next call can move on.
type FailoverClient interface {
	ReportEndpointFailure(baseURL string)
}

type BaseClientOptions struct {
	Timeout int
	Path    string
	Headers map[string]string
	// Label used for the outbound request metrics
	Operation string
}

func SendRequest[I any, R any](
	ctx context.Context, client BaseClient, method string, opts *BaseClientOptions, input *I,
) (*R, *types.Error) {
	if !utils.Contains(ALLOWED_METHODS, method) {
		return nil, types.NewInternalServiceError(fmt.Errorf("method %s is not allowed", method))
	}
	baseURL := client.GetBaseURL()
	url := fmt.Sprintf("%s%s", baseURL, opts.Path)
	timeout := client.GetDefaultRequestTimeout()
	// If timeout is set, use it instead of the default
	if opts.Timeout != 0 {
		timeout = opts.Timeout
	}
	ctxWithTimeout, cancel := context.WithTimeout(ctx, time.Duration(timeout)*time.Millisecond)
	defer cancel()

	var req *http.Request
	var requestError error
	if input != nil && (method == http.MethodPost || method == http.MethodPut) {
		body, err := json.Marshal(input)
		if err != nil {
			return nil, types.NewErrorWithMsg(
				http.StatusInternalServerError,
				types.InternalServiceError,
				"failed to marshal request body",
			)
		}
		req, requestError = http.NewRequestWithContext(ctxWithTimeout, method, url, bytes.NewBuffer(body))
		if requestError == nil {
			req.Header.Set("Content-Type", "application/json")
		}
	} else {
		req, requestError = http.NewRequestWithContext(ctxWithTimeout, method, url, nil)
	}
	if requestError != nil {
		return nil, types.NewErrorWithMsg(
			http.StatusInternalServerError, types.InternalServiceError, requestError.Error(),
		)
	}
	for key, value := range opts.Headers {
		req.Header.Set(key, value)
	}

	timer := metrics.StartOutboundRequestTimer(opts.Operation)
	resp, err := client.GetHttpClient().Do(req)
	if err != nil {
		timer(0)
		reportFailure(client, baseURL)
		if errors.Is(ctxWithTimeout.Err(), context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, types.NewErrorWithMsg(
				http.StatusRequestTimeout,
				types.RequestTimeout,
				fmt.Sprintf("request timeout after %d ms at %s", timeout, url),
			)
		}
		log.Ctx(ctx).Error().Err(err).Msgf(
			"failed to send request to %s", url,
		)
		return nil, types.NewErrorWithMsg(
			http.StatusServiceUnavailable,
			types.ServiceUnavailable,
			fmt.Sprintf("failed to send request to %s", url),
		)
	}
	defer resp.Body.Close()
	timer(resp.StatusCode)

	if resp.StatusCode >= http.StatusInternalServerError {
		reportFailure(client, baseURL)
		return nil, types.NewErrorWithMsg(
			resp.StatusCode,
			types.InternalServiceError,
			fmt.Sprintf("internal server error when calling %s", url),
		)
	} else if resp.StatusCode >= http.StatusBadRequest {
		errorCode := types.BadRequest
		switch resp.StatusCode {
		case http.StatusNotFound:
			errorCode = types.NotFound
		case http.StatusConflict:
			errorCode = types.Conflict
		case http.StatusRequestTimeout:
			errorCode = types.RequestTimeout
		case http.StatusTooManyRequests:
			errorCode = types.TooManyRequests
		}
		return nil, types.NewErrorWithMsg(
			resp.StatusCode,
			errorCode,
			fmt.Sprintf("client error when calling %s", url),
		)
	}

	var output R
	if err := json.NewDecoder(resp.Body).Decode(&output); err != nil {
		return nil, types.NewErrorWithMsg(
			http.StatusInternalServerError,
			types.InternalServiceError,
			fmt.Sprintf("failed to decode response from %s", url),
		)
	}

	return &output, nil
}

func reportFailure(client BaseClient, baseURL string) {
	if fc, ok := client.(FailoverClient); ok {
		fc.ReportEndpointFailure(baseURL)
	}
}
