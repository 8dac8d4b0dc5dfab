package submission

import (
	"context"
	"sync"
	"time"

	"github.com/ballotchain/vote-submission-service/internal/clients/backend"
	"github.com/ballotchain/vote-submission-service/internal/config"
	"github.com/ballotchain/vote-submission-service/internal/db"
	"github.com/ballotchain/vote-submission-service/internal/db/model"
	"github.com/ballotchain/vote-submission-service/internal/observability/metrics"
	"github.com/ballotchain/vote-submission-service/internal/observability/tracing"
	"github.com/ballotchain/vote-submission-service/internal/queue"
	"github.com/ballotchain/vote-submission-service/internal/scheduler"
	"github.com/ballotchain/vote-submission-service/internal/services/ledger"
	"github.com/ballotchain/vote-submission-service/internal/types"
	"github.com/ballotchain/vote-submission-service/internal/utils"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const sideEffectTimeout = 10 * time.Second

type LedgerCommitter interface {
	Commit(ctx context.Context, req types.SubmissionRequest, priorTxHash string) (*ledger.CommitResult, *types.SubmissionError)
}

type BackendConfirmer interface {
	Confirm(ctx context.Context, req types.SubmissionRequest, txHash string) (string, *types.SubmissionError)
}

// VoteHistory is the backend's view of past votes. It only serves as a fast
// path, the ledger duplicate check stays authoritative.
type VoteHistory interface {
	GetVoteHistory(ctx context.Context, electionID, voterID string) (*backend.VoteHistoryResponse, *types.Error)
}

// ClaimVerifier vouches that a verification claim was minted by the biometric
// gate for the given election.
type ClaimVerifier interface {
	VerifyClaim(claim types.VerificationClaim, electionID string) *types.SubmissionError
}

// Options carries the collaborators. Nil Store, Publisher and History are
// skipped. Without Claims every claim is refused.
type Options struct {
	Claims    ClaimVerifier
	Store     db.DBClient
	Publisher queue.EventPublisher
	History   VoteHistory
	Scheduler scheduler.Scheduler
	NewID     func() string
}

type entry struct {
	record *types.SubmissionRecord
	task   *scheduler.Task
	// Vote tx broadcast by an earlier attempt whose inclusion was not observed
	priorTxHash string
	done        chan struct{}
}

type cachedRecord struct {
	record   *types.SubmissionRecord
	storedAt time.Time
}

// Coordinator owns every SubmissionRecord and is the only writer to them.
// At most one submission per (electionId, voterId) is active at a time.
type Coordinator struct {
	cfg       config.SubmissionConfig
	committer LedgerCommitter
	confirmer BackendConfirmer
	claims    ClaimVerifier
	history   VoteHistory
	store     db.DBClient
	publisher queue.EventPublisher
	scheduler scheduler.Scheduler
	newID     func() string

	mu            sync.RWMutex
	active        map[string]*entry
	activeKeys    map[types.SubmissionKey]string
	confirmedKeys map[types.SubmissionKey]string
	usedClaims    map[string]time.Time
	cache         map[string]*cachedRecord
	stopped       bool
	inFlight      sync.WaitGroup
}

func NewCoordinator(
	cfg config.SubmissionConfig, committer LedgerCommitter, confirmer BackendConfirmer, opts Options,
) *Coordinator {
	if opts.Scheduler == nil {
		opts.Scheduler = scheduler.NewTimerScheduler()
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	return &Coordinator{
		cfg:           cfg,
		committer:     committer,
		confirmer:     confirmer,
		claims:        opts.Claims,
		history:       opts.History,
		store:         opts.Store,
		publisher:     opts.Publisher,
		scheduler:     opts.Scheduler,
		newID:         opts.NewID,
		active:        make(map[string]*entry),
		activeKeys:    make(map[types.SubmissionKey]string),
		confirmedKeys: make(map[types.SubmissionKey]string),
		usedClaims:    make(map[string]time.Time),
		cache:         make(map[string]*cachedRecord),
	}
}

// Submit validates the request and starts processing it in the background.
// A request failing validation ends in a terminal failed record straight away;
// the record is returned together with the error.
func (c *Coordinator) Submit(
	ctx context.Context, req types.SubmissionRequest,
) (*types.SubmissionRecord, *types.SubmissionError) {
	now := c.scheduler.Now()
	e := &entry{
		record: &types.SubmissionRecord{
			SubmissionID: c.newID(),
			Request:      req,
			Status:       types.Pending,
			SubmittedAt:  now,
			UpdatedAt:    now,
		},
		done: make(chan struct{}),
	}
	id := e.record.SubmissionID
	ctx = withSubmissionLogger(ctx, e.record)

	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return nil, types.NewPermanentErrorWithMsg(types.CoordinatorStopped, "coordinator is stopped")
	}
	c.pruneLocked(now)
	if err := c.validateLocked(req, now); err != nil {
		snapshot := c.finalizeLocked(e, types.Failed, err)
		c.mu.Unlock()
		log.Ctx(ctx).Info().Str("code", err.Code.String()).Msg("submission rejected at validation")
		c.afterTerminal(ctx, snapshot)
		return snapshot, err
	}
	c.usedClaims[req.VerificationClaim.ClaimHash] = req.VerificationClaim.CapturedAt
	c.active[id] = e
	c.activeKeys[req.Key()] = id
	c.mu.Unlock()

	alreadyVoted := c.checkVoteHistory(ctx, req)

	c.mu.Lock()
	if c.active[id] != e || e.record.Status != types.Pending {
		// Cancelled while the history was being checked
		snapshot := snapshotOf(e.record)
		c.mu.Unlock()
		return snapshot, snapshot.Error
	}
	if c.stopped {
		// Stopped while the history was being checked, the record stays queued
		snapshot := snapshotOf(e.record)
		c.mu.Unlock()
		return snapshot, types.NewPermanentErrorWithMsg(types.CoordinatorStopped, "coordinator is stopped")
	}
	if alreadyVoted != nil {
		snapshot := c.finalizeLocked(e, types.Failed, alreadyVoted)
		c.mu.Unlock()
		c.afterTerminal(ctx, snapshot)
		close(e.done)
		return snapshot, alreadyVoted
	}
	c.transitionLocked(e.record, types.Processing)
	snapshot := snapshotOf(e.record)
	c.inFlight.Add(1)
	c.mu.Unlock()

	log.Ctx(ctx).Info().Msg("submission accepted")
	go func() {
		defer c.inFlight.Done()
		c.process(id)
	}()
	return snapshot, nil
}

// Status returns a point-in-time snapshot. Snapshots never carry the wallet secret.
func (c *Coordinator) Status(submissionID string) (*types.SubmissionRecord, *types.SubmissionError) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if e, ok := c.active[submissionID]; ok {
		return snapshotOf(e.record), nil
	}
	if cached, ok := c.cache[submissionID]; ok && !c.expiredLocked(cached, c.scheduler.Now()) {
		return snapshotOf(cached.record), nil
	}
	return nil, types.NewPermanentErrorWithMsg(types.SubmissionNotFound, "submission not found")
}

// Wait blocks until the submission reaches a terminal status or ctx is done.
func (c *Coordinator) Wait(ctx context.Context, submissionID string) (*types.SubmissionRecord, error) {
	c.mu.RLock()
	e, ok := c.active[submissionID]
	c.mu.RUnlock()
	if ok {
		select {
		case <-e.done:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	record, err := c.Status(submissionID)
	if err != nil {
		return nil, err
	}
	return record, nil
}

// Cancel rejects a submission that is queued awaiting its next attempt. An
// attempt already running, or a vote already broadcast to the ledger, cannot
// be cancelled.
func (c *Coordinator) Cancel(ctx context.Context, submissionID string) (*types.SubmissionRecord, *types.SubmissionError) {
	c.mu.Lock()
	e, ok := c.active[submissionID]
	if !ok {
		_, cached := c.cache[submissionID]
		c.mu.Unlock()
		if cached {
			return nil, types.NewPermanentErrorWithMsg(types.NotCancellable, "submission already reached a terminal status")
		}
		return nil, types.NewPermanentErrorWithMsg(types.SubmissionNotFound, "submission not found")
	}
	if e.record.Status != types.Pending {
		c.mu.Unlock()
		return nil, types.NewPermanentErrorWithMsg(types.NotCancellable, "submission is being processed")
	}
	if e.record.IsCommitted() || e.priorTxHash != "" {
		c.mu.Unlock()
		return nil, types.NewPermanentErrorWithMsg(types.NotCancellable, "vote was already sent to the ledger")
	}
	if e.task != nil && !e.task.Cancel() {
		c.mu.Unlock()
		return nil, types.NewPermanentErrorWithMsg(types.NotCancellable, "submission attempt is starting")
	}
	snapshot := c.finalizeLocked(e, types.Rejected, types.NewPermanentErrorWithMsg(
		types.UserCancelled, "submission cancelled by user",
	))
	c.mu.Unlock()

	ctx = withSubmissionLogger(ctx, snapshot)
	log.Ctx(ctx).Info().Msg("submission cancelled")
	c.afterTerminal(ctx, snapshot)
	close(e.done)
	return snapshot, nil
}

// Stop cancels every scheduled retry and waits for running attempts to finish.
// Queued submissions stay pending.
func (c *Coordinator) Stop() {
	c.mu.Lock()
	if c.stopped {
		c.mu.Unlock()
		return
	}
	c.stopped = true
	for _, e := range c.active {
		if e.task != nil {
			e.task.Cancel()
			e.task = nil
		}
	}
	c.mu.Unlock()

	c.inFlight.Wait()
}

// PruneStatusCache drops terminal snapshots older than the retention period and
// claims that can no longer pass the freshness check anyway.
func (c *Coordinator) PruneStatusCache() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pruneLocked(c.scheduler.Now())
}

func (c *Coordinator) validateLocked(req types.SubmissionRequest, now time.Time) *types.SubmissionError {
	claim := req.VerificationClaim
	switch {
	case req.ElectionID == "":
		return types.NewPermanentErrorWithMsg(types.MissingField, "electionId is required")
	case req.CandidateID == "":
		return types.NewPermanentErrorWithMsg(types.MissingField, "candidateId is required")
	case req.VoterID == "":
		return types.NewPermanentErrorWithMsg(types.MissingField, "voterId is required")
	case req.WalletSecret == "":
		return types.NewPermanentErrorWithMsg(types.MissingField, "walletSecret is required")
	case req.Timestamp.IsZero():
		return types.NewPermanentErrorWithMsg(types.MissingField, "timestamp is required")
	case claim.SubjectID == "" || claim.ClaimHash == "" || claim.CapturedAt.IsZero():
		return types.NewPermanentErrorWithMsg(types.MissingField, "verificationClaim is incomplete")
	}

	if !utils.IsValidCandidateID(req.CandidateID) {
		return types.NewPermanentErrorWithMsg(types.InvalidCandidate, "candidateId must be an unsigned integer")
	}
	if claim.SubjectID != req.VoterID {
		return types.NewPermanentErrorWithMsg(types.ClaimSubjectMismatch, "verification claim belongs to another voter")
	}
	if err := c.verifyClaim(claim, req.ElectionID); err != nil {
		return err
	}
	if !claim.IsFreshAt(now, c.cfg.ClaimValidity, c.cfg.ClockSkew) {
		return types.NewPermanentErrorWithMsg(types.ClaimExpired, "verification claim has expired")
	}
	if _, used := c.usedClaims[claim.ClaimHash]; used {
		return types.NewPermanentErrorWithMsg(types.ClaimReplayed, "verification claim was already used")
	}
	if !utils.IsFresh(req.Timestamp, now, c.cfg.RequestValidity, c.cfg.ClockSkew) {
		return types.NewPermanentErrorWithMsg(types.RequestExpired, "request has expired")
	}
	if _, confirmed := c.confirmedKeys[req.Key()]; confirmed {
		return types.NewPermanentErrorWithMsg(types.AlreadyVoted, "a vote is already confirmed for this election")
	}
	if _, inFlight := c.activeKeys[req.Key()]; inFlight {
		return types.NewPermanentErrorWithMsg(types.DuplicateInFlight, "a vote for this election is already in flight")
	}
	return nil
}

func (c *Coordinator) verifyClaim(claim types.VerificationClaim, electionID string) *types.SubmissionError {
	if c.claims == nil {
		return types.NewPermanentErrorWithMsg(types.ClaimInvalid, "no claim verifier configured")
	}
	return c.claims.VerifyClaim(claim, electionID)
}

// checkVoteHistory consults the durable store and the backend. Errors are
// logged and ignored.
func (c *Coordinator) checkVoteHistory(ctx context.Context, req types.SubmissionRequest) *types.SubmissionError {
	if c.store != nil {
		doc, err := c.store.FindConfirmedSubmission(ctx, req.ElectionID, req.VoterID)
		switch {
		case err == nil && doc != nil:
			return types.NewPermanentErrorWithMsg(types.AlreadyVoted, "a vote is already confirmed for this election")
		case err != nil && !db.IsNotFoundError(err):
			log.Ctx(ctx).Warn().Err(err).Msg("skipping stored vote history check")
		}
	}
	if c.history != nil {
		history, err := c.history.GetVoteHistory(ctx, req.ElectionID, req.VoterID)
		switch {
		case err != nil:
			log.Ctx(ctx).Warn().Err(err).Msg("skipping backend vote history check")
		case history.HasVoted:
			return types.NewPermanentErrorWithMsg(types.AlreadyVoted, "the backend already recorded a vote for this election")
		}
	}
	return nil
}

func (c *Coordinator) resume(id string) {
	c.mu.Lock()
	e, ok := c.active[id]
	if !ok || c.stopped || e.record.Status != types.Pending {
		c.mu.Unlock()
		return
	}
	e.task = nil
	c.transitionLocked(e.record, types.Processing)
	c.inFlight.Add(1)
	c.mu.Unlock()

	defer c.inFlight.Done()
	c.process(id)
}

// process runs one attempt: ledger commit unless a mined tx is already held,
// then the backend confirmation.
func (c *Coordinator) process(id string) {
	c.mu.RLock()
	e, ok := c.active[id]
	if !ok || e.record.Status != types.Processing {
		c.mu.RUnlock()
		return
	}
	req := e.record.Request
	priorTxHash := e.priorTxHash
	committed := e.record.IsCommitted()
	txHash := e.record.TxHash
	snapshot := snapshotOf(e.record)
	c.mu.RUnlock()

	ctx, cancel := context.WithTimeout(context.Background(), c.cfg.AttemptTimeout)
	defer cancel()
	ctx, _ = tracing.AttachTracingIntoContext(ctx, id)
	ctx = withSubmissionLogger(ctx, snapshot)
	log.Ctx(ctx).Debug().Int("attempt", snapshot.RetryCount+1).Msg("starting submission attempt")
	c.persist(ctx, snapshot)

	if !committed {
		var commitErr *types.SubmissionError
		result, _ := tracing.WrapWithSpan(ctx, "LedgerCommit", func() (*ledger.CommitResult, error) {
			var r *ledger.CommitResult
			r, commitErr = c.committer.Commit(ctx, req, priorTxHash)
			return r, nil
		})
		if commitErr != nil {
			c.handleFailure(ctx, id, result, commitErr)
			return
		}
		c.recordCommit(ctx, id, result)
		txHash = result.TxHash
	}

	var confirmErr *types.SubmissionError
	confirmationID, _ := tracing.WrapWithSpan(ctx, "BackendConfirm", func() (string, error) {
		var confirmationID string
		confirmationID, confirmErr = c.confirmer.Confirm(ctx, req, txHash)
		return confirmationID, nil
	})
	if confirmErr != nil {
		c.handleFailure(ctx, id, nil, confirmErr)
		return
	}
	c.complete(ctx, id, confirmationID)
}

func (c *Coordinator) recordCommit(ctx context.Context, id string, result *ledger.CommitResult) {
	c.mu.Lock()
	e, ok := c.active[id]
	if !ok {
		c.mu.Unlock()
		return
	}
	e.record.TxHash = result.TxHash
	e.record.BlockNumber = result.BlockNumber
	e.record.UpdatedAt = c.scheduler.Now()
	e.priorTxHash = ""
	snapshot := snapshotOf(e.record)
	c.mu.Unlock()

	c.persist(ctx, snapshot)
}

func (c *Coordinator) complete(ctx context.Context, id, confirmationID string) {
	c.mu.Lock()
	e, ok := c.active[id]
	if !ok {
		c.mu.Unlock()
		return
	}
	e.record.ConfirmationID = confirmationID
	snapshot := c.finalizeLocked(e, types.Confirmed, nil)
	c.mu.Unlock()

	log.Ctx(ctx).Info().Str("txHash", snapshot.TxHash).Str("confirmationId", confirmationID).
		Int("retryCount", snapshot.RetryCount).Msg("vote confirmed")
	c.afterTerminal(ctx, snapshot)
	close(e.done)
}

// handleFailure either schedules the next attempt or settles the submission as failed.
func (c *Coordinator) handleFailure(
	ctx context.Context, id string, partial *ledger.CommitResult, err *types.SubmissionError,
) {
	c.mu.Lock()
	e, ok := c.active[id]
	if !ok {
		c.mu.Unlock()
		return
	}
	if partial != nil && partial.TxHash != "" && !partial.Committed() {
		e.priorTxHash = partial.TxHash
	}
	record := e.record

	if err.Retryable && record.RetryCount < c.cfg.MaxRetries {
		c.transitionLocked(record, types.Pending)
		record.Error = err
		if c.stopped {
			snapshot := snapshotOf(record)
			c.mu.Unlock()
			log.Ctx(ctx).Warn().Err(err).Msg("coordinator stopped, submission left pending")
			c.persist(ctx, snapshot)
			return
		}
		delay := c.cfg.RetryDelay(record.RetryCount)
		record.RetryCount++
		e.task = c.scheduler.Schedule(delay, record.RetryCount+1, func() { c.resume(id) })
		snapshot := snapshotOf(record)
		c.mu.Unlock()

		metrics.RecordSubmissionRetry(err.Code.String())
		log.Ctx(ctx).Info().Err(err).Int("retryCount", snapshot.RetryCount).Dur("delay", delay).
			Msg("submission attempt failed, retry scheduled")
		c.persist(ctx, snapshot)
		return
	}

	final := err
	if record.IsCommitted() {
		record.Divergent = true
		final = types.NewPermanentError(types.LedgerBackendDivergence, err)
	} else if e.priorTxHash != "" {
		// The ledger outcome is unknown, keep the hash for reconciliation
		record.TxHash = e.priorTxHash
		log.Ctx(ctx).Warn().Str("txHash", e.priorTxHash).Msg("submission failed with a vote broadcast of unknown outcome")
	}
	snapshot := c.finalizeLocked(e, types.Failed, final)
	c.mu.Unlock()

	if snapshot.Divergent {
		c.reportDivergence(ctx, snapshot, err)
	} else {
		log.Ctx(ctx).Error().Err(err).Int("retryCount", snapshot.RetryCount).Msg("submission failed")
	}
	c.afterTerminal(ctx, snapshot)
	close(e.done)
}

func (c *Coordinator) transitionLocked(record *types.SubmissionRecord, to types.SubmissionStatus) {
	if !utils.CanTransition(record.Status, to) {
		log.Warn().Str("submissionId", record.SubmissionID).Str("from", record.Status.ToString()).
			Str("to", to.ToString()).Msg("unexpected submission transition")
	}
	record.Status = to
	record.UpdatedAt = c.scheduler.Now()
}

// finalizeLocked moves the record to a terminal status, releases its key and
// caches the snapshot. The caller closes e.done once side effects are done.
func (c *Coordinator) finalizeLocked(
	e *entry, status types.SubmissionStatus, err *types.SubmissionError,
) *types.SubmissionRecord {
	record := e.record
	c.transitionLocked(record, status)
	record.Error = err
	key := record.Request.Key()

	if status == types.Confirmed {
		confirmedAt := record.UpdatedAt
		record.ConfirmedAt = &confirmedAt
		c.confirmedKeys[key] = record.SubmissionID
	}
	if c.active[record.SubmissionID] == e {
		delete(c.active, record.SubmissionID)
	}
	if c.activeKeys[key] == record.SubmissionID {
		delete(c.activeKeys, key)
	}
	if e.task != nil {
		e.task.Cancel()
		e.task = nil
	}

	snapshot := snapshotOf(record)
	c.cache[record.SubmissionID] = &cachedRecord{record: snapshot, storedAt: record.UpdatedAt}

	code := ""
	if err != nil {
		code = err.Code.String()
	}
	metrics.RecordSubmissionOutcome(status.ToString(), code)
	return snapshot
}

func (c *Coordinator) pruneLocked(now time.Time) int {
	pruned := 0
	for id, cached := range c.cache {
		if c.expiredLocked(cached, now) {
			delete(c.cache, id)
			pruned++
		}
	}
	for claimHash, capturedAt := range c.usedClaims {
		if now.Sub(capturedAt) > c.cfg.ClaimValidity {
			delete(c.usedClaims, claimHash)
		}
	}
	return pruned
}

func (c *Coordinator) expiredLocked(cached *cachedRecord, now time.Time) bool {
	return now.Sub(cached.storedAt) > c.cfg.StatusRetention
}

func (c *Coordinator) reportDivergence(ctx context.Context, snapshot *types.SubmissionRecord, cause *types.SubmissionError) {
	metrics.RecordDivergence()
	log.Ctx(ctx).Warn().Str("txHash", snapshot.TxHash).Uint64("blockNumber", snapshot.BlockNumber).
		Str("cause", cause.Code.String()).
		Msg("vote is on the ledger but the backend never recorded it")

	if c.store == nil {
		return
	}
	storeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sideEffectTimeout)
	defer cancel()
	divergence := model.NewDivergenceDocument(snapshot, cause, c.scheduler.Now())
	if err := c.store.SaveDivergence(storeCtx, divergence); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to store divergence")
	}
}

func (c *Coordinator) afterTerminal(ctx context.Context, snapshot *types.SubmissionRecord) {
	c.persist(ctx, snapshot)
	if c.publisher == nil {
		return
	}
	publishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sideEffectTimeout)
	defer cancel()
	if err := c.publisher.PublishSubmissionEvent(publishCtx, snapshot); err != nil {
		log.Ctx(ctx).Error().Err(err).Msg("failed to publish submission event")
	}
}

func (c *Coordinator) persist(ctx context.Context, snapshot *types.SubmissionRecord) {
	if c.store == nil {
		return
	}
	storeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sideEffectTimeout)
	defer cancel()
	if err := c.store.SaveSubmission(storeCtx, snapshot); err != nil {
		if db.IsDuplicateKeyError(err) {
			log.Ctx(ctx).Error().Err(err).Msg("store already holds a confirmed vote for this voter")
			return
		}
		log.Ctx(ctx).Warn().Err(err).Msg("failed to persist submission")
	}
}

func snapshotOf(record *types.SubmissionRecord) *types.SubmissionRecord {
	snapshot := *record
	snapshot.Request.WalletSecret = ""
	if record.ConfirmedAt != nil {
		confirmedAt := *record.ConfirmedAt
		snapshot.ConfirmedAt = &confirmedAt
	}
	return &snapshot
}

func withSubmissionLogger(ctx context.Context, record *types.SubmissionRecord) context.Context {
	base := zerolog.Ctx(ctx)
	if base.GetLevel() == zerolog.Disabled {
		base = &log.Logger
	}
	logger := base.With().
		Str("submissionId", record.SubmissionID).
		Str("electionId", record.Request.ElectionID).
		Str("voterId", record.Request.VoterID).
		Logger()
	return logger.WithContext(ctx)
}
