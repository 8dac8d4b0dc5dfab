// Package testutil wires the full service layer against in-process fakes of the
// backend, the device biometric bridge and the ledger.
package testutil

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ballotchain/vote-submission-service/internal/api"
	"github.com/ballotchain/vote-submission-service/internal/clients"
	"github.com/ballotchain/vote-submission-service/internal/clients/backend"
	"github.com/ballotchain/vote-submission-service/internal/clients/biometric"
	"github.com/ballotchain/vote-submission-service/internal/config"
	"github.com/ballotchain/vote-submission-service/internal/db"
	"github.com/ballotchain/vote-submission-service/internal/mocks"
	"github.com/ballotchain/vote-submission-service/internal/queue"
	"github.com/ballotchain/vote-submission-service/internal/scheduler"
	"github.com/ballotchain/vote-submission-service/internal/services"
)

const (
	VoterID      = "voter-1"
	ElectionID   = "e-1"
	AuthToken    = "token-voter-1"
	WalletSecret = "4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"
	Contract     = "0x5FbDB2315678afecb367f032d93F642f64180aa3"
)

// FakeBackend is the backend record service. It books each
// (electionId, voterId, txHash) once.
type FakeBackend struct {
	mu              sync.Mutex
	Profiles        map[string]backend.UserProfileResponse
	Elections       map[string]backend.ElectionResponse
	HasVoted        bool
	ConfirmFailures int
	confirmations   map[string]string
}

func (f *FakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/users/profile":
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		profile, ok := f.Profiles[token]
		if !ok {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		writeJSON(w, profile)
	case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/elections/"):
		election, ok := f.Elections[strings.TrimPrefix(r.URL.Path, "/elections/")]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		writeJSON(w, election)
	case r.Method == http.MethodGet && r.URL.Path == "/votes/history":
		writeJSON(w, backend.VoteHistoryResponse{HasVoted: f.HasVoted})
	case r.Method == http.MethodPost && r.URL.Path == "/votes/confirm":
		var req backend.ConfirmVoteRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if f.ConfirmFailures > 0 {
			f.ConfirmFailures--
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		key := req.ElectionID + "/" + req.VoterID + "/" + req.TxHash
		id, ok := f.confirmations[key]
		if !ok {
			id = fmt.Sprintf("conf-%d", len(f.confirmations)+1)
			f.confirmations[key] = id
		}
		writeJSON(w, backend.ConfirmVoteResponse{ConfirmationID: id})
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (f *FakeBackend) Bookings() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.confirmations)
}

// Update runs fn while holding the fake's lock.
func (f *FakeBackend) Update(fn func(f *FakeBackend)) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn(f)
}

// FakeBridge is the device biometric bridge.
type FakeBridge struct {
	mu           sync.Mutex
	Availability biometric.Availability
	Result       biometric.AuthenticationResult
	Prompts      int
}

func (f *FakeBridge) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch r.URL.Path {
	case "/biometric/availability":
		writeJSON(w, f.Availability)
	case "/biometric/authenticate":
		f.Prompts++
		writeJSON(w, f.Result)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func writeJSON(w http.ResponseWriter, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(body)
}

type Dependencies struct {
	// Nil keeps the service free of durable storage
	MockDbClient db.DBClient
	Publisher    queue.EventPublisher
}

type Fixture struct {
	Config    *config.Config
	Services  *services.Services
	Backend   *FakeBackend
	Bridge    *FakeBridge
	Ledger    *mocks.FakeLedger
	Scheduler *scheduler.ManualScheduler
}

func SetupServices(t *testing.T, dep *Dependencies) *Fixture {
	if dep == nil {
		dep = &Dependencies{}
	}

	fakeBackend := &FakeBackend{
		Profiles: map[string]backend.UserProfileResponse{
			AuthToken: {ID: VoterID, EncryptedPrivateKey: WalletSecret},
		},
		Elections: map[string]backend.ElectionResponse{
			ElectionID: {ID: ElectionID, Title: "Board election", ContractAddress: Contract},
		},
		confirmations: make(map[string]string),
	}
	backendServer := httptest.NewServer(fakeBackend)
	t.Cleanup(backendServer.Close)

	bridge := &FakeBridge{
		Availability: biometric.Availability{HasHardware: true, IsEnrolled: true},
		Result:       biometric.AuthenticationResult{Success: true},
	}
	bridgeServer := httptest.NewServer(bridge)
	t.Cleanup(bridgeServer.Close)

	cfg := &config.Config{
		Server: config.ServerConfig{
			Host:                "127.0.0.1",
			AllowedOrigins:      []string{"*"},
			LogLevel:            "error",
			MaxContentLength:    4096,
			HealthCheckInterval: 60,
		},
		Backend: config.BackendConfig{Endpoints: []string{backendServer.URL}, Timeout: 1000},
		Biometric: config.BiometricConfig{
			BridgeURL: bridgeServer.URL,
			Timeout:   1000,
			DeviceID:  "device-test",
		},
		Submission: config.DefaultSubmissionConfig(),
	}

	fakeLedger := mocks.NewFakeLedger()
	sched := scheduler.NewManualScheduler(time.Now())
	c := &clients.Clients{
		Backend:   backend.NewBackendClient(&cfg.Backend, nil),
		Biometric: biometric.NewBridgeClient(&cfg.Biometric),
		Ledger:    fakeLedger,
	}

	svc, err := services.New(context.Background(), cfg, c, dep.MockDbClient, dep.Publisher, sched)
	if err != nil {
		t.Fatalf("Failed to initialize services: %v", err)
	}
	t.Cleanup(svc.Stop)

	return &Fixture{
		Config:    cfg,
		Services:  svc,
		Backend:   fakeBackend,
		Bridge:    bridge,
		Ledger:    fakeLedger,
		Scheduler: sched,
	}
}

// SetupTestServer serves the API of a fresh fixture.
func SetupTestServer(t *testing.T, dep *Dependencies) (*httptest.Server, *Fixture) {
	fixture := SetupServices(t, dep)

	apiServer, err := api.New(context.Background(), fixture.Config, fixture.Services)
	if err != nil {
		t.Fatalf("Failed to initialize API server: %v", err)
	}

	server := httptest.NewServer(apiServer.Handler())
	t.Cleanup(server.Close)
	return server, fixture
}
