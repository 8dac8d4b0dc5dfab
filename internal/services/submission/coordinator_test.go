package submission

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/ballotchain/vote-submission-service/internal/clients/backend"
	biometricclient "github.com/ballotchain/vote-submission-service/internal/clients/biometric"
	"github.com/ballotchain/vote-submission-service/internal/config"
	"github.com/ballotchain/vote-submission-service/internal/db"
	"github.com/ballotchain/vote-submission-service/internal/db/model"
	"github.com/ballotchain/vote-submission-service/internal/mocks"
	"github.com/ballotchain/vote-submission-service/internal/scheduler"
	"github.com/ballotchain/vote-submission-service/internal/services/biometric"
	"github.com/ballotchain/vote-submission-service/internal/services/confirmation"
	"github.com/ballotchain/vote-submission-service/internal/services/ledger"
	"github.com/ballotchain/vote-submission-service/internal/types"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	secretA      = "4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"
	secretB      = "0101010101010101010101010101010101010101010101010101010101010101"
	testContract = "0x5FbDB2315678afecb367f032d93F642f64180aa3"
)

// fakeBackend serves elections, vote history and an idempotent confirmation
// endpoint. confirmFailures answers 503 that many times first.
type fakeBackend struct {
	mu              sync.Mutex
	hasVoted        bool
	confirmFailures int
	confirmed       []backend.ConfirmVoteRequest
	confirmations   map[string]string
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{confirmations: make(map[string]string)}
}

func (f *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/elections/e-1":
		_ = json.NewEncoder(w).Encode(backend.ElectionResponse{ID: "e-1", Title: "Board", ContractAddress: testContract})
	case r.Method == http.MethodGet && r.URL.Path == "/votes/history":
		_ = json.NewEncoder(w).Encode(backend.VoteHistoryResponse{HasVoted: f.hasVoted})
	case r.Method == http.MethodPost && r.URL.Path == "/votes/confirm":
		var req backend.ConfirmVoteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		f.confirmed = append(f.confirmed, req)
		if f.confirmFailures > 0 {
			f.confirmFailures--
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		key := req.ElectionID + "/" + req.VoterID + "/" + req.TxHash
		id, ok := f.confirmations[key]
		if !ok {
			id = fmt.Sprintf("conf-%d", len(f.confirmations)+1)
			f.confirmations[key] = id
		}
		_ = json.NewEncoder(w).Encode(backend.ConfirmVoteResponse{ConfirmationID: id})
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (f *fakeBackend) confirmCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.confirmed)
}

func (f *fakeBackend) confirmedRequests() []backend.ConfirmVoteRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]backend.ConfirmVoteRequest(nil), f.confirmed...)
}

func (f *fakeBackend) bookings() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.confirmations)
}

// approvingSensor accepts every prompt.
type approvingSensor struct{}

func (approvingSensor) CheckAvailability(context.Context) (*biometricclient.Availability, *types.Error) {
	return &biometricclient.Availability{HasHardware: true, IsEnrolled: true}, nil
}

func (approvingSensor) Authenticate(context.Context, string) (*biometricclient.AuthenticationResult, *types.Error) {
	return &biometricclient.AuthenticationResult{Success: true}, nil
}

type harness struct {
	t           *testing.T
	coordinator *Coordinator
	gate        *biometric.Gate
	ledger      *mocks.FakeLedger
	backend     *fakeBackend
	sched       *scheduler.ManualScheduler
	// How far the device clock that stamps claims runs ahead
	deviceClockAhead time.Duration
}

func newHarness(t *testing.T, opts Options) *harness {
	fake := newFakeBackend()
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	client := backend.NewBackendClient(&config.BackendConfig{Endpoints: []string{server.URL}, Timeout: 1000}, nil)
	fakeLedger := mocks.NewFakeLedger()
	sched := scheduler.NewManualScheduler(time.Now())
	h := &harness{t: t, ledger: fakeLedger, backend: fake, sched: sched}
	h.gate = biometric.NewGate(
		approvingSensor{},
		&config.BiometricConfig{BridgeURL: "http://localhost:8765", Timeout: 1000, DeviceID: "device-1"},
		func() time.Time { return sched.Now().Add(h.deviceClockAhead) },
	)
	opts.Scheduler = sched
	if opts.History == nil {
		opts.History = client
	}
	if opts.Claims == nil {
		opts.Claims = h.gate
	}

	coordinator := NewCoordinator(
		config.DefaultSubmissionConfig(),
		ledger.NewCommitAgent(client, fakeLedger),
		confirmation.NewConfirmAgent(client),
		opts,
	)
	t.Cleanup(coordinator.Stop)
	h.coordinator = coordinator
	return h
}

// request carries a claim freshly minted by the gate for election e-1.
func (h *harness) request(voterID, secret string) types.SubmissionRequest {
	claim, err := h.gate.VerifyForVoting(context.Background(), voterID, "e-1")
	require.Nil(h.t, err)
	return types.SubmissionRequest{
		ElectionID:        "e-1",
		CandidateID:       "2",
		VoterID:           voterID,
		VerificationClaim: *claim,
		WalletSecret:      secret,
		Timestamp:         h.sched.Now(),
	}
}

func (h *harness) submit(t *testing.T, req types.SubmissionRequest) *types.SubmissionRecord {
	record, err := h.coordinator.Submit(context.Background(), req)
	require.Nil(t, err)
	require.NotNil(t, record)
	return record
}

func (h *harness) wait(t *testing.T, submissionID string) *types.SubmissionRecord {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	record, err := h.coordinator.Wait(ctx, submissionID)
	require.NoError(t, err)
	return record
}

// waitForRetry blocks until the submission is queued with exactly one retry scheduled.
func (h *harness) waitForRetry(t *testing.T, submissionID string) *scheduler.Task {
	require.Eventually(t, func() bool {
		record, err := h.coordinator.Status(submissionID)
		return err == nil && record.Status == types.Pending && len(h.sched.Pending()) == 1
	}, 5*time.Second, 5*time.Millisecond)
	return h.sched.Pending()[0]
}

func addressOf(t *testing.T, secret string) common.Address {
	key, err := crypto.HexToECDSA(secret)
	require.NoError(t, err)
	return crypto.PubkeyToAddress(key.PublicKey)
}

func indexOf(trace []string, call string) int {
	for i, c := range trace {
		if c == call {
			return i
		}
	}
	return -1
}

func lastIndexOf(trace []string, call string) int {
	for i := len(trace) - 1; i >= 0; i-- {
		if trace[i] == call {
			return i
		}
	}
	return -1
}

func TestSubmitConfirmsVote(t *testing.T) {
	h := newHarness(t, Options{})

	record := h.submit(t, h.request("voter-1", secretA))
	assert.Equal(t, types.Processing, record.Status)
	assert.Empty(t, record.Request.WalletSecret)
	assert.NotEmpty(t, record.SubmissionID)

	final := h.wait(t, record.SubmissionID)
	assert.Equal(t, types.Confirmed, final.Status)
	assert.True(t, final.IsCommitted())
	assert.Equal(t, "conf-1", final.ConfirmationID)
	require.NotNil(t, final.ConfirmedAt)
	assert.Nil(t, final.Error)
	assert.Zero(t, final.RetryCount)
	assert.False(t, final.Divergent)
	assert.Empty(t, final.Request.WalletSecret)

	assert.Equal(t, 2, h.ledger.TxCount())
	assert.Equal(t, int64(2), h.ledger.Votes[addressOf(t, secretA)].Int64())
	confirmed := h.backend.confirmedRequests()
	require.Len(t, confirmed, 1)
	assert.Equal(t, final.TxHash, confirmed[0].TxHash)
	assert.Equal(t, "2", confirmed[0].CandidateID)

	trace := h.ledger.CallTrace()
	assert.Less(t, indexOf(trace, mocks.CallHasCommitted), indexOf(trace, mocks.CallRegister))
	assert.Less(t, indexOf(trace, mocks.CallRegister), indexOf(trace, mocks.CallCommitVote))
}

func TestSubmitFailsWhenLedgerAlreadyHoldsVote(t *testing.T) {
	h := newHarness(t, Options{})
	address := addressOf(t, secretA)
	h.ledger.Registered[address] = true
	h.ledger.Committed[address] = true

	record := h.submit(t, h.request("voter-1", secretA))
	final := h.wait(t, record.SubmissionID)

	assert.Equal(t, types.Failed, final.Status)
	require.NotNil(t, final.Error)
	assert.Equal(t, types.AlreadyVoted, final.Error.Code)
	assert.Zero(t, final.RetryCount)
	assert.Zero(t, h.ledger.TxCount())
	assert.Zero(t, h.backend.confirmCalls())
}

func TestBackendTimeoutsAreRetriedWithoutRecommitting(t *testing.T) {
	h := newHarness(t, Options{})
	h.backend.confirmFailures = 2

	record := h.submit(t, h.request("voter-1", secretA))
	task := h.waitForRetry(t, record.SubmissionID)
	assert.Equal(t, 5*time.Second, task.Delay)
	assert.Equal(t, 2, task.Attempt)

	pending, err := h.coordinator.Status(record.SubmissionID)
	require.Nil(t, err)
	assert.True(t, pending.IsCommitted())
	assert.Equal(t, types.BackendUnavailable, pending.Error.Code)

	h.sched.Advance(5 * time.Second)
	tasks := h.sched.Pending()
	require.Len(t, tasks, 1)
	assert.Equal(t, 10*time.Second, tasks[0].Delay)

	h.sched.Advance(10 * time.Second)
	final := h.wait(t, record.SubmissionID)

	assert.Equal(t, types.Confirmed, final.Status)
	assert.Equal(t, 2, final.RetryCount)
	assert.Equal(t, pending.TxHash, final.TxHash)
	assert.Equal(t, 1, h.ledger.CountCalls(mocks.CallCommitVote))
	assert.Equal(t, 3, h.backend.confirmCalls())
	assert.Equal(t, 1, h.backend.bookings())
	assert.Empty(t, h.sched.Pending())
}

func TestBackendOutageEndsInDivergence(t *testing.T) {
	store := mocks.NewDBClient(t)
	publisher := mocks.NewEventPublisher(t)
	h := newHarness(t, Options{Store: store, Publisher: publisher})
	h.backend.confirmFailures = 100

	store.On("FindConfirmedSubmission", mock.Anything, "e-1", "voter-1").
		Return(nil, &db.NotFoundError{Message: "not found"}).Once()
	store.On("SaveSubmission", mock.Anything, mock.MatchedBy(func(r *types.SubmissionRecord) bool {
		return r.Request.WalletSecret == ""
	})).Return(nil)
	store.On("SaveDivergence", mock.Anything, mock.MatchedBy(func(d *model.DivergenceDocument) bool {
		return d.TxHash != "" && d.BlockNumber > 0 && d.ErrorCode == types.BackendUnavailable.String()
	})).Return(nil).Once()
	publisher.On("PublishSubmissionEvent", mock.Anything, mock.MatchedBy(func(r *types.SubmissionRecord) bool {
		return r.Status == types.Failed && r.Divergent
	})).Return(nil).Once()

	record := h.submit(t, h.request("voter-1", secretA))
	h.waitForRetry(t, record.SubmissionID)
	h.sched.Advance(5 * time.Second)
	h.sched.Advance(10 * time.Second)
	h.sched.Advance(15 * time.Second)
	final := h.wait(t, record.SubmissionID)

	assert.Equal(t, types.Failed, final.Status)
	assert.True(t, final.Divergent)
	assert.True(t, final.IsCommitted())
	assert.Equal(t, 3, final.RetryCount)
	require.NotNil(t, final.Error)
	assert.Equal(t, types.LedgerBackendDivergence, final.Error.Code)
	cause, ok := types.AsSubmissionError(final.Error.Err)
	require.True(t, ok)
	assert.Equal(t, types.BackendUnavailable, cause.Code)

	assert.Equal(t, 1, h.ledger.CountCalls(mocks.CallCommitVote))
	assert.Equal(t, 4, h.backend.confirmCalls())
	assert.Empty(t, h.sched.Pending())
}

func TestRetryableLedgerFailuresAreBounded(t *testing.T) {
	h := newHarness(t, Options{})
	h.ledger.CommitFailures = 10

	record := h.submit(t, h.request("voter-1", secretA))
	task := h.waitForRetry(t, record.SubmissionID)
	delays := []time.Duration{task.Delay}
	for i := 0; i < 3; i++ {
		h.sched.Advance(delays[len(delays)-1])
		if tasks := h.sched.Pending(); len(tasks) == 1 {
			delays = append(delays, tasks[0].Delay)
		}
	}
	final := h.wait(t, record.SubmissionID)

	assert.Equal(t, []time.Duration{5 * time.Second, 10 * time.Second, 15 * time.Second}, delays)
	assert.Equal(t, types.Failed, final.Status)
	assert.Equal(t, types.LedgerCongested, final.Error.Code)
	assert.Equal(t, 3, final.RetryCount)
	assert.False(t, final.Divergent)
	assert.Empty(t, final.TxHash)
	assert.Equal(t, 4, h.ledger.CountCalls(mocks.CallCommitVote))
	assert.Zero(t, h.backend.confirmCalls())
}

func TestUnobservedCommitIsNotResent(t *testing.T) {
	h := newHarness(t, Options{})
	h.ledger.CommitUnobserved = 1

	record := h.submit(t, h.request("voter-1", secretA))
	h.waitForRetry(t, record.SubmissionID)

	_, err := h.coordinator.Cancel(context.Background(), record.SubmissionID)
	require.NotNil(t, err)
	assert.Equal(t, types.NotCancellable, err.Code)

	h.sched.Advance(5 * time.Second)
	final := h.wait(t, record.SubmissionID)

	assert.Equal(t, types.Confirmed, final.Status)
	assert.True(t, final.IsCommitted())
	assert.Equal(t, 1, h.ledger.CountCalls(mocks.CallCommitVote))
	assert.Equal(t, 1, h.ledger.CountCalls(mocks.CallGetReceipt))
	assert.Equal(t, 2, h.ledger.TxCount())
}

func TestVoteIsNeverSentBeforeRegistration(t *testing.T) {
	h := newHarness(t, Options{})
	h.ledger.RegisterFailures = 1

	record := h.submit(t, h.request("voter-1", secretA))
	h.waitForRetry(t, record.SubmissionID)
	assert.Equal(t, -1, indexOf(h.ledger.CallTrace(), mocks.CallCommitVote))

	h.sched.Advance(5 * time.Second)
	final := h.wait(t, record.SubmissionID)

	assert.Equal(t, types.Confirmed, final.Status)
	assert.Equal(t, 1, final.RetryCount)
	trace := h.ledger.CallTrace()
	assert.Greater(t, indexOf(trace, mocks.CallCommitVote), lastIndexOf(trace, mocks.CallRegister))
	assert.Equal(t, 1, h.ledger.CountCalls(mocks.CallCommitVote))
}

func TestSubmitValidation(t *testing.T) {
	tests := []struct {
		name             string
		deviceClockAhead time.Duration
		// Applied after the claim is minted
		advance time.Duration
		mutate  func(req *types.SubmissionRequest, now time.Time)
		code    types.FailureCode
	}{
		{
			name:   "missing election",
			mutate: func(req *types.SubmissionRequest, _ time.Time) { req.ElectionID = "" },
			code:   types.MissingField,
		},
		{
			name:   "missing wallet secret",
			mutate: func(req *types.SubmissionRequest, _ time.Time) { req.WalletSecret = "" },
			code:   types.MissingField,
		},
		{
			name:   "missing claim hash",
			mutate: func(req *types.SubmissionRequest, _ time.Time) { req.VerificationClaim.ClaimHash = "" },
			code:   types.MissingField,
		},
		{
			name:   "non numeric candidate",
			mutate: func(req *types.SubmissionRequest, _ time.Time) { req.CandidateID = "abc" },
			code:   types.InvalidCandidate,
		},
		{
			name:   "claim for another voter",
			mutate: func(req *types.SubmissionRequest, _ time.Time) { req.VerificationClaim.SubjectID = "voter-2" },
			code:   types.ClaimSubjectMismatch,
		},
		{
			name:   "claim not issued by the gate",
			mutate: func(req *types.SubmissionRequest, _ time.Time) { req.VerificationClaim.ClaimHash = "totally-made-up" },
			code:   types.ClaimInvalid,
		},
		{
			name:   "claim issued for another election",
			mutate: func(req *types.SubmissionRequest, _ time.Time) { req.ElectionID = "e-2" },
			code:   types.ClaimInvalid,
		},
		{
			name: "claim with altered capture time",
			mutate: func(req *types.SubmissionRequest, now time.Time) {
				req.VerificationClaim.CapturedAt = now.Add(time.Minute)
			},
			code: types.ClaimInvalid,
		},
		{
			name:    "claim older than five minutes",
			advance: 6 * time.Minute,
			mutate:  func(req *types.SubmissionRequest, now time.Time) { req.Timestamp = now },
			code:    types.ClaimExpired,
		},
		{
			name:             "claim captured in the future",
			deviceClockAhead: 365 * 24 * time.Hour,
			mutate:           func(*types.SubmissionRequest, time.Time) {},
			code:             types.ClaimExpired,
		},
		{
			name:   "stale request",
			mutate: func(req *types.SubmissionRequest, now time.Time) { req.Timestamp = now.Add(-6 * time.Minute) },
			code:   types.RequestExpired,
		},
		{
			name:   "request timestamp in the future",
			mutate: func(req *types.SubmissionRequest, now time.Time) { req.Timestamp = now.AddDate(1, 0, 0) },
			code:   types.RequestExpired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, Options{})
			h.deviceClockAhead = tt.deviceClockAhead
			req := h.request("voter-1", secretA)
			h.sched.Advance(tt.advance)
			tt.mutate(&req, h.sched.Now())

			record, err := h.coordinator.Submit(context.Background(), req)
			require.NotNil(t, err)
			assert.Equal(t, tt.code, err.Code)
			assert.False(t, err.Retryable)
			require.NotNil(t, record)
			assert.Equal(t, types.Failed, record.Status)
			assert.Equal(t, tt.code, record.Error.Code)
			assert.Empty(t, h.ledger.CallTrace())

			stored, statusErr := h.coordinator.Status(record.SubmissionID)
			require.Nil(t, statusErr)
			assert.Equal(t, types.Failed, stored.Status)
		})
	}
}

func TestClaimsWithinClockSkewAreAccepted(t *testing.T) {
	h := newHarness(t, Options{})
	h.deviceClockAhead = 20 * time.Second
	req := h.request("voter-1", secretA)
	req.Timestamp = h.sched.Now().Add(20 * time.Second)

	record := h.submit(t, req)
	assert.Equal(t, types.Confirmed, h.wait(t, record.SubmissionID).Status)
}

func TestSubmitWithoutClaimVerifierRefusesClaims(t *testing.T) {
	h := newHarness(t, Options{})
	unverified := NewCoordinator(
		config.DefaultSubmissionConfig(),
		ledger.NewCommitAgent(nil, h.ledger),
		nil,
		Options{Scheduler: h.sched},
	)
	t.Cleanup(unverified.Stop)

	_, err := unverified.Submit(context.Background(), h.request("voter-1", secretA))
	require.NotNil(t, err)
	assert.Equal(t, types.ClaimInvalid, err.Code)
	assert.Empty(t, h.ledger.CallTrace())
}

func TestClaimCannotBeReused(t *testing.T) {
	h := newHarness(t, Options{})
	req := h.request("voter-1", secretA)

	record := h.submit(t, req)
	h.wait(t, record.SubmissionID)

	_, err := h.coordinator.Submit(context.Background(), req)
	require.NotNil(t, err)
	assert.Equal(t, types.ClaimReplayed, err.Code)
}

func TestSubmitAfterConfirmationIsAlreadyVoted(t *testing.T) {
	h := newHarness(t, Options{})
	record := h.submit(t, h.request("voter-1", secretA))
	h.wait(t, record.SubmissionID)
	calls := len(h.ledger.CallTrace())

	second, err := h.coordinator.Submit(context.Background(), h.request("voter-1", secretA))
	require.NotNil(t, err)
	assert.Equal(t, types.AlreadyVoted, err.Code)
	assert.Equal(t, types.Failed, second.Status)
	assert.Len(t, h.ledger.CallTrace(), calls)
}

func TestDuplicateInFlightIsRejected(t *testing.T) {
	h := newHarness(t, Options{})
	h.ledger.CommitFailures = 1

	first := h.submit(t, h.request("voter-1", secretA))
	h.waitForRetry(t, first.SubmissionID)

	second, err := h.coordinator.Submit(context.Background(), h.request("voter-1", secretA))
	require.NotNil(t, err)
	assert.Equal(t, types.DuplicateInFlight, err.Code)
	assert.Equal(t, types.Failed, second.Status)

	h.sched.Advance(5 * time.Second)
	final := h.wait(t, first.SubmissionID)
	assert.Equal(t, types.Confirmed, final.Status)
}

func TestDistinctVotersRunConcurrently(t *testing.T) {
	h := newHarness(t, Options{})

	first := h.submit(t, h.request("voter-1", secretA))
	second := h.submit(t, h.request("voter-2", secretB))

	assert.Equal(t, types.Confirmed, h.wait(t, first.SubmissionID).Status)
	assert.Equal(t, types.Confirmed, h.wait(t, second.SubmissionID).Status)
	assert.Equal(t, 4, h.ledger.TxCount())
	assert.Equal(t, 2, h.backend.bookings())
}

func TestBackendHistoryShortCircuits(t *testing.T) {
	h := newHarness(t, Options{})
	h.backend.hasVoted = true

	record, err := h.coordinator.Submit(context.Background(), h.request("voter-1", secretA))
	require.NotNil(t, err)
	assert.Equal(t, types.AlreadyVoted, err.Code)
	assert.Equal(t, types.Failed, record.Status)
	assert.Empty(t, h.ledger.CallTrace())
}

func TestStoredConfirmationShortCircuits(t *testing.T) {
	store := mocks.NewDBClient(t)
	h := newHarness(t, Options{Store: store})
	store.On("FindConfirmedSubmission", mock.Anything, "e-1", "voter-1").
		Return(&model.SubmissionDocument{SubmissionID: "earlier", Status: types.Confirmed.ToString()}, nil).Once()
	store.On("SaveSubmission", mock.Anything, mock.Anything).Return(nil).Once()

	_, err := h.coordinator.Submit(context.Background(), h.request("voter-1", secretA))
	require.NotNil(t, err)
	assert.Equal(t, types.AlreadyVoted, err.Code)
	assert.Empty(t, h.ledger.CallTrace())
}

func TestStoreErrorsDoNotBlockSubmission(t *testing.T) {
	store := mocks.NewDBClient(t)
	h := newHarness(t, Options{Store: store})
	store.On("FindConfirmedSubmission", mock.Anything, "e-1", "voter-1").
		Return(nil, errors.New("connection refused")).Once()
	store.On("SaveSubmission", mock.Anything, mock.Anything).Return(errors.New("connection refused"))

	record := h.submit(t, h.request("voter-1", secretA))
	assert.Equal(t, types.Confirmed, h.wait(t, record.SubmissionID).Status)
}

func TestCancelQueuedSubmission(t *testing.T) {
	h := newHarness(t, Options{})
	h.ledger.CommitFailures = 1

	record := h.submit(t, h.request("voter-1", secretA))
	h.waitForRetry(t, record.SubmissionID)

	cancelled, err := h.coordinator.Cancel(context.Background(), record.SubmissionID)
	require.Nil(t, err)
	assert.Equal(t, types.Rejected, cancelled.Status)
	assert.Equal(t, types.UserCancelled, cancelled.Error.Code)
	assert.Empty(t, h.sched.Pending())

	h.sched.Advance(time.Minute)
	assert.Equal(t, 1, h.ledger.CountCalls(mocks.CallCommitVote))
	assert.Equal(t, types.Rejected, h.wait(t, record.SubmissionID).Status)

	_, err = h.coordinator.Cancel(context.Background(), record.SubmissionID)
	require.NotNil(t, err)
	assert.Equal(t, types.NotCancellable, err.Code)

	_, err = h.coordinator.Cancel(context.Background(), "unknown")
	require.NotNil(t, err)
	assert.Equal(t, types.SubmissionNotFound, err.Code)
}

func TestStatusExpiresAfterRetention(t *testing.T) {
	h := newHarness(t, Options{})
	record := h.submit(t, h.request("voter-1", secretA))
	h.wait(t, record.SubmissionID)

	h.sched.Advance(25 * time.Hour)
	_, err := h.coordinator.Status(record.SubmissionID)
	require.NotNil(t, err)
	assert.Equal(t, types.SubmissionNotFound, err.Code)
	assert.Equal(t, 1, h.coordinator.PruneStatusCache())

	// The confirmed key outlives the status cache
	_, err = h.coordinator.Submit(context.Background(), h.request("voter-1", secretA))
	require.NotNil(t, err)
	assert.Equal(t, types.AlreadyVoted, err.Code)
}

func TestStopCancelsScheduledRetries(t *testing.T) {
	h := newHarness(t, Options{})
	h.ledger.CommitFailures = 1

	record := h.submit(t, h.request("voter-1", secretA))
	h.waitForRetry(t, record.SubmissionID)

	h.coordinator.Stop()
	assert.Empty(t, h.sched.Pending())

	status, err := h.coordinator.Status(record.SubmissionID)
	require.Nil(t, err)
	assert.Equal(t, types.Pending, status.Status)

	_, err = h.coordinator.Submit(context.Background(), h.request("voter-2", secretB))
	require.NotNil(t, err)
	assert.Equal(t, types.CoordinatorStopped, err.Code)
}

func TestLostBroadcastReplyIsResumedNotReportedAsAlreadyVoted(t *testing.T) {
	h := newHarness(t, Options{})
	h.ledger.CommitReplyLost = 1

	record := h.submit(t, h.request("voter-1", secretA))
	h.waitForRetry(t, record.SubmissionID)
	pending, err := h.coordinator.Status(record.SubmissionID)
	require.Nil(t, err)
	assert.Equal(t, types.LedgerCongested, pending.Error.Code)

	h.sched.Advance(5 * time.Second)
	final := h.wait(t, record.SubmissionID)

	assert.Equal(t, types.Confirmed, final.Status)
	assert.Nil(t, final.Error)
	assert.Equal(t, 1, h.ledger.CountCalls(mocks.CallCommitVote))
	assert.Equal(t, 1, h.ledger.CountCalls(mocks.CallGetReceipt))
	// The retry resumed from the receipt before asking whether the voter already voted
	assert.Equal(t, 1, h.ledger.CountCalls(mocks.CallHasCommitted))
	assert.Equal(t, 1, h.backend.bookings())
	assert.Equal(t, final.TxHash, h.backend.confirmedRequests()[0].TxHash)
}

// blockingHistory holds the vote history lookup until released.
type blockingHistory struct {
	entered chan struct{}
	release chan struct{}
}

func (b *blockingHistory) GetVoteHistory(context.Context, string, string) (*backend.VoteHistoryResponse, *types.Error) {
	close(b.entered)
	<-b.release
	return &backend.VoteHistoryResponse{}, nil
}

func TestStopDuringHistoryCheckDoesNotStartAttempt(t *testing.T) {
	history := &blockingHistory{entered: make(chan struct{}), release: make(chan struct{})}
	h := newHarness(t, Options{History: history})
	req := h.request("voter-1", secretA)

	type submitResult struct {
		record *types.SubmissionRecord
		err    *types.SubmissionError
	}
	results := make(chan submitResult, 1)
	go func() {
		record, err := h.coordinator.Submit(context.Background(), req)
		results <- submitResult{record, err}
	}()

	<-history.entered
	h.coordinator.Stop()
	close(history.release)

	result := <-results
	require.NotNil(t, result.err)
	assert.Equal(t, types.CoordinatorStopped, result.err.Code)
	assert.Equal(t, types.Pending, result.record.Status)
	assert.Empty(t, h.ledger.CallTrace())
}
