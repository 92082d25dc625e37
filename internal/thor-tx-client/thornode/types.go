package thornode

import "encoding/json"

// Account is the subset of an auth account the broadcaster checks before signing.
type Account struct {
	Address       string `json:"address"`
	AccountNumber uint64 `json:"account_number,string"`
	Sequence      uint64 `json:"sequence,string"`
}

type accountResponse struct {
	Account Account `json:"account"`
}

type moduleAccountResponse struct {
	Account struct {
		Name        string `json:"name"`
		BaseAccount struct {
			Address string `json:"address"`
		} `json:"base_account"`
	} `json:"account"`
}

type Coin struct {
	Denom  string `json:"denom,omitempty"`
	Asset  string `json:"asset,omitempty"`
	Amount string `json:"amount"`
}

// TxMessage is a decoded cosmos message; only the fields the tracker reads are kept.
type TxMessage struct {
	Type        string `json:"@type"`
	FromAddress string `json:"from_address,omitempty"`
	ToAddress   string `json:"to_address,omitempty"`
	Signer      string `json:"signer,omitempty"`
	Memo        string `json:"memo,omitempty"`
	Amount      []Coin `json:"amount,omitempty"`
	Coins       []Coin `json:"coins,omitempty"`
}

// TxResponse is GET /cosmos/tx/v1beta1/txs/{hash}.
type TxResponse struct {
	Tx struct {
		Body struct {
			Messages []TxMessage `json:"messages"`
			Memo     string      `json:"memo"`
		} `json:"body"`
	} `json:"tx"`
	TxResult struct {
		Height    string `json:"height"`
		TxHash    string `json:"txhash"`
		Code      uint32 `json:"code"`
		Codespace string `json:"codespace"`
		RawLog    string `json:"raw_log"`
	} `json:"tx_response"`
}

// ObservedTx is the inbound as THORNode observed it.
type ObservedTx struct {
	ID          string `json:"id"`
	Chain       string `json:"chain"`
	FromAddress string `json:"from_address"`
	ToAddress   string `json:"to_address"`
	Coins       []Coin `json:"coins"`
	Memo        string `json:"memo"`
}

type InboundObservedStage struct {
	Started              *bool  `json:"started,omitempty"`
	PreConfirmationCount *int64 `json:"pre_confirmation_count,omitempty"`
	FinalCount           int64  `json:"final_count"`
	Completed            bool   `json:"completed"`
}

type InboundConfirmationCountedStage struct {
	CountingStartHeight             int64  `json:"counting_start_height,omitempty"`
	Chain                           string `json:"chain,omitempty"`
	ExternalObservedHeight          int64  `json:"external_observed_height,omitempty"`
	ExternalConfirmationDelayHeight int64  `json:"external_confirmation_delay_height,omitempty"`
	RemainingConfirmationSeconds    *int64 `json:"remaining_confirmation_seconds,omitempty"`
	Completed                       bool   `json:"completed"`
}

type CompletedStage struct {
	Completed bool `json:"completed"`
}

type SwapStatusStage struct {
	Pending   bool            `json:"pending"`
	Streaming json.RawMessage `json:"streaming,omitempty"`
}

type OutboundDelayStage struct {
	RemainingDelayBlocks  *int64 `json:"remaining_delay_blocks,omitempty"`
	RemainingDelaySeconds *int64 `json:"remaining_delay_seconds,omitempty"`
	Completed             bool   `json:"completed"`
}

type OutboundSignedStage struct {
	ScheduledOutboundHeight *int64 `json:"scheduled_outbound_height,omitempty"`
	BlocksSinceScheduled    *int64 `json:"blocks_since_scheduled,omitempty"`
	Completed               bool   `json:"completed"`
}

// Stages is the settlement pipeline as THORNode reports it. Absent stages do not apply.
type Stages struct {
	InboundObserved            InboundObservedStage             `json:"inbound_observed"`
	InboundConfirmationCounted *InboundConfirmationCountedStage `json:"inbound_confirmation_counted,omitempty"`
	InboundFinalised           *CompletedStage                  `json:"inbound_finalised,omitempty"`
	SwapStatus                 *SwapStatusStage                 `json:"swap_status,omitempty"`
	SwapFinalised              *CompletedStage                  `json:"swap_finalised,omitempty"`
	OutboundDelay              *OutboundDelayStage              `json:"outbound_delay,omitempty"`
	OutboundSigned             *OutboundSignedStage             `json:"outbound_signed,omitempty"`
}

// TxStatus is GET /thorchain/tx/status/{hash}.
type TxStatus struct {
	Tx            *ObservedTx       `json:"tx,omitempty"`
	PlannedOutTxs []json.RawMessage `json:"planned_out_txs,omitempty"`
	OutTxs        []json.RawMessage `json:"out_txs,omitempty"`
	Stages        Stages            `json:"stages"`
}

type nodeStatusResponse struct {
	Result struct {
		NodeInfo struct {
			Network string `json:"network"`
		} `json:"node_info"`
	} `json:"result"`
}
