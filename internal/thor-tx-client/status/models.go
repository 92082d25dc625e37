package status

import (
	"github.com/quantumauth-io/thor-tx-client/internal/thor-tx-client/midgard"
)

const (
	StatusPending = "pending"
	StatusDone    = "done"
	StatusFailed  = "failed"
)

const (
	StageInboundObserved            = "inbound_observed"
	StageInboundConfirmationCounted = "inbound_confirmation_counted"
	StageInboundFinalised           = "inbound_finalised"
	StageSwapStatus                 = "swap_status"
	StageSwapFinalised              = "swap_finalised"
	StageOutboundDelay              = "outbound_delay"
	StageOutboundSigned             = "outbound_signed"
	StageTransferCommitted          = "transfer_committed"
)

type Stage struct {
	Name      string         `json:"name"`
	Completed bool           `json:"completed"`
	Details   map[string]any `json:"details,omitempty"`
}

// BasicInfo is what the node reports for a committed transaction.
type BasicInfo struct {
	FromAddress string `json:"from_address"`
	ToAddress   string `json:"to_address,omitempty"`
	Memo        string `json:"memo,omitempty"`
	Status      string `json:"status"`
	Height      string `json:"height,omitempty"`
	Code        uint32 `json:"code"`
	RawLog      string `json:"raw_log,omitempty"`
}

// Summary is computed fresh on every call and never cached.
type Summary struct {
	Hash      string          `json:"hash"`
	Status    string          `json:"status"`
	Stages    []Stage         `json:"stages"`
	BasicInfo *BasicInfo      `json:"basic_info"`
	Action    *midgard.Action `json:"action,omitempty"`
	Error     string          `json:"error,omitempty"`
}

// Terminal reports whether polling can stop.
func (s *Summary) Terminal() bool {
	return s != nil && (s.Status == StatusDone || s.Status == StatusFailed)
}
