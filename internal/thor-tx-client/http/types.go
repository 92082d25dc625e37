package http

import (
	"github.com/quantumauth-io/thor-tx-client/internal/thor-tx-client/txbuilder"
	"github.com/quantumauth-io/thor-tx-client/internal/thor-tx-client/units"
)

// -------- DTOs for the local API --------

type errorRes struct {
	Error   string `json:"error"`
	Kind    string `json:"kind,omitempty"`
	Warning string `json:"warning,omitempty"`
	Code    uint32 `json:"code,omitempty"`
	RawLog  string `json:"raw_log,omitempty"`
}

type normalizeReq struct {
	Asset string `json:"asset" binding:"required"`
}

type convertReq struct {
	Amount string `json:"amount" binding:"required"`
}

type convertRes struct {
	Wire    units.WireAmount    `json:"wire"`
	Display units.DisplayAmount `json:"display"`
	// Dust is set on to-wire when the amount is below one wire unit.
	Dust bool `json:"dust,omitempty"`
}

type networkReq struct {
	Mode string `json:"mode" binding:"required"`
}

type networkRes struct {
	Mode          string `json:"mode"`
	RestURL       string `json:"rest_url"`
	RPCURL        string `json:"rpc_url"`
	IndexerURL    string `json:"indexer_url,omitempty"`
	AddressPrefix string `json:"address_prefix"`
	ChainID       string `json:"chain_id,omitempty"`
	FeeWire       string `json:"fee_wire"`
	DefaultGas    string `json:"default_gas"`
}

type prepareReq struct {
	From string `json:"from" binding:"required"`
	txbuilder.Intent
}

type intentReq struct {
	txbuilder.Intent
}

type gasRes struct {
	Gas string `json:"gas"`
}

type statusQuery struct {
	Poll       bool `form:"poll"`
	Attempts   int  `form:"attempts"    binding:"min=0,max=600"`
	IntervalMs int  `form:"interval_ms" binding:"min=0,max=600000"`
}
