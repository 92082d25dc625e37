// Package txerr holds the error taxonomy shared by the builder, broadcaster and status tracker.
package txerr

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

var (
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrMissingAsset       = errors.New("missing asset")
	ErrMissingDestination = errors.New("missing destination address")
	ErrInvalidDestination = errors.New("invalid destination address")
	ErrMissingMemo        = errors.New("missing memo")

	ErrUnresolvedModuleAddress = errors.New("unresolved module address")

	ErrBroadcastRejected = errors.New("broadcast rejected")
	ErrAlreadySubmitted  = errors.New("transaction already submitted")
	ErrSequenceConflict  = errors.New("account sequence conflict")
	// ErrOutcomeUnknown marks a submission that failed in transit after signing.
	ErrOutcomeUnknown = errors.New("submission outcome unknown")

	// ErrLookupIncomplete marks a remote that has not indexed a transaction yet.
	// The status tracker turns it into non-terminal stages and never returns it.
	ErrLookupIncomplete = errors.New("transaction not indexed yet")

	ErrInvalidHash          = errors.New("invalid transaction hash")
	ErrEndpointUnavailable  = errors.New("endpoint unavailable")
	ErrUnknownNetwork       = errors.New("unknown network mode")
	ErrSignerNotConfigured  = errors.New("signer not configured")
	ErrNetworkNotConfigured = errors.New("network not configured")
)

// BroadcastRejectedError is a remote-side rejection with a diagnosable reason.
type BroadcastRejectedError struct {
	Code      uint32
	Codespace string
	RawLog    string
	Attempts  int
}

func (e *BroadcastRejectedError) Error() string {
	return fmt.Sprintf("broadcast rejected (code %d, attempts %d): %s", e.Code, e.Attempts, e.RawLog)
}

func (e *BroadcastRejectedError) Is(target error) bool { return target == ErrBroadcastRejected }

// AlreadySubmittedError means the exact signed bytes were already accepted by the node.
// The original hash is not recoverable from this path; callers re-resolve status out of band.
type AlreadySubmittedError struct {
	RawLog   string
	Attempts int
}

func (e *AlreadySubmittedError) Error() string {
	return fmt.Sprintf("transaction already submitted (attempts %d), check your history: %s", e.Attempts, e.RawLog)
}

func (e *AlreadySubmittedError) Is(target error) bool { return target == ErrAlreadySubmitted }

// SequenceConflictError is surfaced once the single automatic retry also hit a stale sequence.
type SequenceConflictError struct {
	RawLog   string
	Attempts int
}

func (e *SequenceConflictError) Error() string {
	return fmt.Sprintf("account sequence conflict after %d attempts, check your history: %s", e.Attempts, e.RawLog)
}

func (e *SequenceConflictError) Is(target error) bool { return target == ErrSequenceConflict }

// IsValidation reports whether err is a caller defect that must never be retried.
func IsValidation(err error) bool {
	return errors.IsAny(err,
		ErrInvalidAmount,
		ErrMissingAsset,
		ErrMissingDestination,
		ErrInvalidDestination,
		ErrMissingMemo,
		ErrInvalidHash,
		ErrUnknownNetwork,
	)
}

// IsWarning reports outcomes where the transaction may in fact have landed.
func IsWarning(err error) bool {
	return errors.IsAny(err, ErrAlreadySubmitted, ErrSequenceConflict, ErrOutcomeUnknown)
}
