// Package broadcast signs and submits prepared transactions, recovering from stale
// account sequences and recognising duplicate submissions.
package broadcast

import (
	"context"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/quantumauth-io/quantum-go-utils/log"

	"github.com/quantumauth-io/thor-tx-client/internal/thor-tx-client/constants"
	"github.com/quantumauth-io/thor-tx-client/internal/thor-tx-client/networks"
	"github.com/quantumauth-io/thor-tx-client/internal/thor-tx-client/signer"
	"github.com/quantumauth-io/thor-tx-client/internal/thor-tx-client/thornode"
	"github.com/quantumauth-io/thor-tx-client/internal/thor-tx-client/txbuilder"
	"github.com/quantumauth-io/thor-tx-client/internal/thor-tx-client/txerr"
)

// BuildFunc prepares the transaction on cfg's network once the signer's address is known.
type BuildFunc func(ctx context.Context, cfg *networks.Config, from string) (*txbuilder.Prepared, error)

type ChainIDSource interface {
	ChainID(ctx context.Context, cfg *networks.Config) (string, error)
}

// AccountSource reads the node's view of an account, used to cross-check the signer.
type AccountSource interface {
	Account(ctx context.Context, cfg *networks.Config, addr string) (thornode.Account, error)
}

// Recorder counts broadcast attempts by outcome.
type Recorder interface {
	BroadcastAttempt(outcome string)
}

type nopRecorder struct{}

func (nopRecorder) BroadcastAttempt(string) {}

type SleepFunc func(ctx context.Context, d time.Duration) error

// Result is the node's answer to the attempt that settled the broadcast. Every attempt
// yields its own hash; the one here is the hash to track.
type Result struct {
	Code      uint32                `json:"code"`
	Codespace string                `json:"codespace,omitempty"`
	TxHash    string                `json:"txhash"`
	RawLog    string                `json:"raw_log,omitempty"`
	Events    []signer.Event        `json:"events,omitempty"`
	Attempts  int                   `json:"attempts"`
	Network   networks.Mode         `json:"network"`
	Kind      txbuilder.MessageKind `json:"kind"`
}

type Broadcaster struct {
	coord      *networks.Coordinator
	chainIDs   ChainIDSource
	accounts   AccountSource
	retryDelay time.Duration
	sleep      SleepFunc
	rec        Recorder
}

type Option func(*Broadcaster)

func WithRetryDelay(d time.Duration) Option {
	return func(b *Broadcaster) {
		if d >= 0 {
			b.retryDelay = d
		}
	}
}

func WithSleep(fn SleepFunc) Option {
	return func(b *Broadcaster) {
		if fn != nil {
			b.sleep = fn
		}
	}
}

// WithAccountCheck compares the signer's sequence with the node's before every signature.
func WithAccountCheck(src AccountSource) Option {
	return func(b *Broadcaster) {
		b.accounts = src
	}
}

func WithRecorder(rec Recorder) Option {
	return func(b *Broadcaster) {
		if rec != nil {
			b.rec = rec
		}
	}
}

func NewBroadcaster(coord *networks.Coordinator, chainIDs ChainIDSource, opts ...Option) *Broadcaster {
	b := &Broadcaster{
		coord:      coord,
		chainIDs:   chainIDs,
		retryDelay: constants.SequenceRetryDelay,
		sleep:      sleepCtx,
		rec:        nopRecorder{},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// attemptError tells the retry loop whether another attempt is allowed.
type attemptError struct {
	err       error
	retryable bool
	rawLog    string
}

// Broadcast signs and submits the transaction built by build. Each attempt opens its own
// signer session so the sequence is always read fresh. A sequence mismatch, or a failure
// before anything was signed, is retried once after the retry delay. All attempts use the
// network that was active when Broadcast was called, even if it changes in between.
func (b *Broadcaster) Broadcast(ctx context.Context, conn signer.Connector, build BuildFunc) (*Result, error) {
	var (
		cfg      = b.coord.Active()
		prepared *txbuilder.Prepared
		last     *attemptError
	)

	for attempt := 1; attempt <= constants.MaxSubmitAttempts; attempt++ {
		if attempt > 1 {
			log.Warn("retrying broadcast", "attempt", attempt, "delay", b.retryDelay, "error", last.err)
			if err := b.sleep(ctx, b.retryDelay); err != nil {
				return nil, errors.Wrap(err, "broadcast retry cancelled")
			}
		}

		res, aerr := b.attempt(ctx, conn, cfg, build, &prepared, attempt)
		if aerr == nil {
			return res, nil
		}
		if !aerr.retryable {
			return nil, aerr.err
		}
		last = aerr
	}

	if errors.Is(last.err, txerr.ErrSequenceConflict) {
		return nil, &txerr.SequenceConflictError{RawLog: last.rawLog, Attempts: constants.MaxSubmitAttempts}
	}
	return nil, errors.Wrapf(last.err, "after %d attempts", constants.MaxSubmitAttempts)
}

func (b *Broadcaster) attempt(ctx context.Context, conn signer.Connector, cfg *networks.Config, build BuildFunc, prepared **txbuilder.Prepared, attempt int) (*Result, *attemptError) {
	sess, err := b.connect(ctx, conn, cfg)
	if err != nil {
		b.rec.BroadcastAttempt("connect_error")
		return nil, &attemptError{err: err, retryable: !errors.Is(err, txerr.ErrSignerNotConfigured)}
	}
	defer func() {
		if err := sess.Close(); err != nil {
			log.Warn("signer session close failed", "error", err)
		}
	}()

	if *prepared == nil {
		p, err := build(ctx, cfg, sess.Address())
		if err != nil {
			return nil, &attemptError{err: err}
		}
		*prepared = p
	} else if (*prepared).From() != sess.Address() {
		return nil, &attemptError{err: errors.Newf("signer address changed between attempts: %s != %s", sess.Address(), (*prepared).From())}
	}
	p := *prepared

	acc, err := sess.Account(ctx, p.From())
	if err != nil {
		b.rec.BroadcastAttempt("account_error")
		return nil, &attemptError{err: errors.Wrap(err, "read account sequence"), retryable: true}
	}
	log.Info("broadcasting transaction",
		"attempt", attempt,
		"network", p.Network(),
		"kind", p.Kind(),
		"from", p.From(),
		"accountNumber", acc.AccountNumber,
		"sequence", acc.Sequence)
	b.checkSequence(ctx, cfg, p.From(), acc.Sequence)

	// once signed the node may accept it at any moment, so the caller cannot abort
	submitCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), constants.SubmitTimeout)
	defer cancel()

	resp, err := sess.SignAndBroadcast(submitCtx, p.Messages(), p.Fee(), p.Memo())
	if err != nil {
		return nil, b.submitFailed(err, attempt)
	}

	kind := txerr.Classify(resp.Codespace, resp.Code, resp.RawLog)
	b.rec.BroadcastAttempt(kind.String())
	log.Info("broadcast result",
		"attempt", attempt,
		"outcome", kind.String(),
		"code", resp.Code,
		"txhash", resp.TxHash)

	switch kind {
	case txerr.KindNone:
		return &Result{
			Code:      resp.Code,
			Codespace: resp.Codespace,
			TxHash:    resp.TxHash,
			RawLog:    resp.RawLog,
			Events:    resp.Events,
			Attempts:  attempt,
			Network:   p.Network(),
			Kind:      p.Kind(),
		}, nil
	case txerr.KindDuplicate:
		return nil, &attemptError{err: &txerr.AlreadySubmittedError{RawLog: resp.RawLog, Attempts: attempt}}
	case txerr.KindSequenceMismatch:
		return nil, &attemptError{
			err:       errors.Wrap(txerr.ErrSequenceConflict, resp.RawLog),
			retryable: true,
			rawLog:    resp.RawLog,
		}
	default:
		return nil, &attemptError{err: &txerr.BroadcastRejectedError{
			Code:      resp.Code,
			Codespace: resp.Codespace,
			RawLog:    resp.RawLog,
			Attempts:  attempt,
		}}
	}
}

// submitFailed handles an error with no structured response. Only recognisable text is
// acted on; anything else is not retried since the transaction may have landed.
func (b *Broadcaster) submitFailed(err error, attempt int) *attemptError {
	kind := txerr.ClassifyError(err)
	b.rec.BroadcastAttempt(kind.String())
	log.Error("broadcast submission failed", "attempt", attempt, "outcome", kind.String(), "error", err)

	switch kind {
	case txerr.KindDuplicate:
		return &attemptError{err: &txerr.AlreadySubmittedError{RawLog: err.Error(), Attempts: attempt}}
	case txerr.KindSequenceMismatch:
		return &attemptError{
			err:       errors.Wrap(txerr.ErrSequenceConflict, err.Error()),
			retryable: true,
			rawLog:    err.Error(),
		}
	case txerr.KindInsufficientFunds:
		return &attemptError{err: &txerr.BroadcastRejectedError{Code: 5, RawLog: err.Error(), Attempts: attempt}}
	}
	return &attemptError{err: errors.Mark(
		errors.Wrapf(err, "submission outcome unknown after attempt %d, check your history", attempt),
		txerr.ErrOutcomeUnknown)}
}

// checkSequence only logs: the signer signs with its own view and a disagreement usually
// means a transaction from this account is still in the mempool.
func (b *Broadcaster) checkSequence(ctx context.Context, cfg *networks.Config, addr string, signerSeq uint64) {
	if b.accounts == nil {
		return
	}
	acc, err := b.accounts.Account(ctx, cfg, addr)
	if err != nil {
		log.Warn("node account lookup failed", "network", cfg.Mode, "address", addr, "error", err)
		return
	}
	if acc.Sequence != signerSeq {
		log.Warn("signer and node disagree on sequence",
			"network", cfg.Mode,
			"address", addr,
			"signerSequence", signerSeq,
			"nodeSequence", acc.Sequence)
	}
}

func (b *Broadcaster) connect(ctx context.Context, conn signer.Connector, cfg *networks.Config) (signer.Session, error) {
	if conn == nil {
		return nil, txerr.ErrSignerNotConfigured
	}
	chainID, err := b.chainIDs.ChainID(ctx, cfg)
	if err != nil {
		return nil, errors.Wrap(err, "resolve chain id")
	}
	sess, err := conn.Connect(ctx, signer.SessionParams{
		Network:       cfg.Mode,
		ChainID:       chainID,
		RPCURL:        cfg.RPCURL,
		AddressPrefix: cfg.AddressPrefix,
	})
	if err != nil {
		return nil, errors.Wrap(err, "connect signer")
	}
	return sess, nil
}

// EstimateGas simulates the transaction and adds a 10% margin. Estimation is advisory:
// any failure falls back to the network's default gas.
func (b *Broadcaster) EstimateGas(ctx context.Context, conn signer.Connector, build BuildFunc) string {
	cfg := b.coord.Active()
	fallback := cfg.DefaultGas

	sess, err := b.connect(ctx, conn, cfg)
	if err != nil {
		log.Warn("gas estimate falling back to default", "stage", "connect", "error", err)
		return fallback
	}
	defer func() { _ = sess.Close() }()

	p, err := build(ctx, cfg, sess.Address())
	if err != nil {
		log.Warn("gas estimate falling back to default", "stage", "build", "error", err)
		return fallback
	}

	gas, err := sess.Simulate(ctx, p.Messages(), p.Memo())
	if err != nil || gas == 0 {
		log.Warn("gas estimate falling back to default", "stage", "simulate", "error", err)
		return p.Fee().Gas
	}
	gas += gas / constants.GasMarginDivisor
	return strconv.FormatUint(gas, 10)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
