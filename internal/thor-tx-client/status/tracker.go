// Package status assembles a transaction's settlement pipeline from node and indexer
// state and polls it to a terminal outcome.
package status

import (
	"context"
	"encoding/hex"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/quantumauth-io/quantum-go-utils/log"
	"golang.org/x/sync/errgroup"

	"github.com/quantumauth-io/thor-tx-client/internal/thor-tx-client/constants"
	"github.com/quantumauth-io/thor-tx-client/internal/thor-tx-client/midgard"
	"github.com/quantumauth-io/thor-tx-client/internal/thor-tx-client/networks"
	"github.com/quantumauth-io/thor-tx-client/internal/thor-tx-client/thornode"
	"github.com/quantumauth-io/thor-tx-client/internal/thor-tx-client/txerr"
)

// NetworkSource hands out the active network snapshot.
type NetworkSource interface {
	Active() *networks.Config
}

type NodeSource interface {
	Tx(ctx context.Context, cfg *networks.Config, hash string) (*thornode.TxResponse, error)
	TxStages(ctx context.Context, cfg *networks.Config, hash string) (*thornode.TxStatus, error)
}

type IndexerSource interface {
	Action(ctx context.Context, cfg *networks.Config, txid string) (*midgard.Action, error)
}

// Recorder counts status computations by resulting status.
type Recorder interface {
	StatusPoll(status string)
}

type nopRecorder struct{}

func (nopRecorder) StatusPoll(string) {}

type SleepFunc func(ctx context.Context, d time.Duration) error

type Tracker struct {
	nets     NetworkSource
	node     NodeSource
	indexer  IndexerSource
	attempts int
	interval time.Duration
	sleep    SleepFunc
	rec      Recorder
}

type Option func(*Tracker)

// WithPolling sets the defaults Poll uses when called with non-positive arguments.
func WithPolling(attempts int, interval time.Duration) Option {
	return func(t *Tracker) {
		if attempts > 0 {
			t.attempts = attempts
		}
		if interval > 0 {
			t.interval = interval
		}
	}
}

func WithSleep(fn SleepFunc) Option {
	return func(t *Tracker) {
		if fn != nil {
			t.sleep = fn
		}
	}
}

func WithRecorder(rec Recorder) Option {
	return func(t *Tracker) {
		if rec != nil {
			t.rec = rec
		}
	}
}

func NewTracker(nets NetworkSource, node NodeSource, indexer IndexerSource, opts ...Option) *Tracker {
	t := &Tracker{
		nets:     nets,
		node:     node,
		indexer:  indexer,
		attempts: constants.DefaultPollAttempts,
		interval: constants.DefaultPollInterval,
		sleep:    sleepCtx,
		rec:      nopRecorder{},
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// NormalizeHash accepts 64 hex characters with an optional 0x prefix and returns the
// uppercase form the node indexes by.
func NormalizeHash(hash string) (string, error) {
	h := strings.TrimSpace(hash)
	h = strings.TrimPrefix(strings.TrimPrefix(h, "0x"), "0X")
	if len(h) != 64 {
		return "", errors.Wrapf(txerr.ErrInvalidHash, "%q", hash)
	}
	if _, err := hex.DecodeString(h); err != nil {
		return "", errors.Wrapf(txerr.ErrInvalidHash, "%q", hash)
	}
	return strings.ToUpper(h), nil
}

// GetTx returns the node's basic fields for hash, or nil when the node has not indexed it.
func (t *Tracker) GetTx(ctx context.Context, hash string) (*BasicInfo, error) {
	h, err := NormalizeHash(hash)
	if err != nil {
		return nil, err
	}
	tx, err := t.node.Tx(ctx, t.nets.Active(), h)
	switch {
	case errors.Is(err, txerr.ErrLookupIncomplete):
		return nil, nil
	case err != nil:
		return nil, err
	}
	return basicInfo(tx), nil
}

// Summary computes the pipeline once. A hash nobody has seen yet is a pending summary, not
// an error; an error is returned only for a malformed hash or when every endpoint failed.
func (t *Tracker) Summary(ctx context.Context, hash string) (*Summary, error) {
	h, err := NormalizeHash(hash)
	if err != nil {
		return nil, err
	}

	// every source reads the same network even if it is switched mid-flight
	cfg := t.nets.Active()

	var (
		g                          errgroup.Group
		tx                         *thornode.TxResponse
		stages                     *thornode.TxStatus
		action                     *midgard.Action
		txErr, stagesErr, indexErr error
	)
	g.Go(func() error {
		tx, txErr = t.node.Tx(ctx, cfg, h)
		return nil
	})
	g.Go(func() error {
		stages, stagesErr = t.node.TxStages(ctx, cfg, h)
		return nil
	})
	useIndexer := t.indexer != nil && cfg.IndexerURL != ""
	if useIndexer {
		g.Go(func() error {
			action, indexErr = t.indexer.Action(ctx, cfg, h)
			return nil
		})
	}
	_ = g.Wait()

	var failures []string
	attempted := 2
	if useIndexer {
		attempted++
	}
	for _, err := range []*error{&txErr, &stagesErr, &indexErr} {
		if *err == nil {
			continue
		}
		if errors.Is(*err, txerr.ErrLookupIncomplete) {
			*err = nil
			continue
		}
		failures = append(failures, (*err).Error())
	}
	if len(failures) == attempted {
		return nil, errors.Mark(
			errors.Newf("status for %s: %s", h, strings.Join(failures, "; ")),
			txerr.ErrEndpointUnavailable)
	}

	s := &Summary{Hash: h, Action: action, Error: strings.Join(failures, "; ")}
	if tx != nil {
		s.BasicInfo = basicInfo(tx)
	}

	switch {
	case tx != nil && tx.TxResult.Code == 0 && isPlainSend(tx):
		s.Stages = transferCommitted(tx.TxResult.Height)
	case observed(stages):
		s.Stages = nodeStages(stages.Stages)
	default:
		s.Stages = notObserved()
	}

	switch {
	case tx != nil && tx.TxResult.Code != 0:
		s.Status = StatusFailed
	case allCompleted(s.Stages) && (!useIndexer || indexErr != nil || !action.Pending()):
		s.Status = StatusDone
	default:
		s.Status = StatusPending
	}
	return s, nil
}

// Poll recomputes the summary up to attempts times, sleeping interval between tries, and
// returns as soon as the status is terminal. Non-positive arguments use the defaults.
func (t *Tracker) Poll(ctx context.Context, hash string, attempts int, interval time.Duration) (*Summary, error) {
	if attempts <= 0 {
		attempts = t.attempts
	}
	if interval <= 0 {
		interval = t.interval
	}

	var (
		last    *Summary
		lastErr error
	)
	for i := 1; i <= attempts; i++ {
		if i > 1 {
			if err := t.sleep(ctx, interval); err != nil {
				lastErr = err
				break
			}
		}

		s, err := t.Summary(ctx, hash)
		if err != nil {
			t.rec.StatusPoll("error")
			if errors.Is(err, txerr.ErrInvalidHash) {
				return nil, err
			}
			log.Warn("status poll failed", "hash", hash, "attempt", i, "error", err)
			lastErr = err
			continue
		}
		t.rec.StatusPoll(s.Status)
		last, lastErr = s, nil

		if s.Terminal() {
			log.Info("transaction reached terminal status", "hash", s.Hash, "status", s.Status, "attempts", i)
			return s, nil
		}
	}

	if last == nil {
		return nil, lastErr
	}
	if lastErr != nil && last.Error == "" {
		last.Error = lastErr.Error()
	}
	log.Info("status polling exhausted", "hash", last.Hash, "status", last.Status, "attempts", attempts)
	return last, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
