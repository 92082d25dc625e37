// Package signer defines the opaque signing capability the engine consumes. Key material
// never enters this process: a Session only exposes an address and the ability to sign.
package signer

import (
	"context"
	"encoding/json"

	"github.com/quantumauth-io/thor-tx-client/internal/thor-tx-client/constants"
	"github.com/quantumauth-io/thor-tx-client/internal/thor-tx-client/networks"
)

type Coin struct {
	Denom  string `json:"denom"`
	Amount string `json:"amount"`
}

// Msg is a message ready to be packed into a transaction body.
type Msg interface {
	TypeURL() string
}

// MsgSend is a peer-to-peer transfer.
type MsgSend struct {
	FromAddress string `json:"from_address"`
	ToAddress   string `json:"to_address"`
	Amount      []Coin `json:"amount"`
}

func (MsgSend) TypeURL() string { return constants.MsgSendTypeURL }

func (m MsgSend) MarshalJSON() ([]byte, error) {
	type plain MsgSend
	return json.Marshal(struct {
		Type string `json:"@type"`
		plain
	}{m.TypeURL(), plain(m)})
}

// MsgDeposit routes coins plus a memo to the protocol module account.
type MsgDeposit struct {
	Signer        string `json:"signer"`
	ModuleAddress string `json:"module_address,omitempty"`
	Coins         []Coin `json:"coins"`
	Memo          string `json:"memo"`
}

func (MsgDeposit) TypeURL() string { return constants.MsgDepositTypeURL }

func (m MsgDeposit) MarshalJSON() ([]byte, error) {
	type plain MsgDeposit
	return json.Marshal(struct {
		Type string `json:"@type"`
		plain
	}{m.TypeURL(), plain(m)})
}

type Fee struct {
	Amount []Coin `json:"amount"`
	Gas    string `json:"gas"`
}

type Account struct {
	Address       string `json:"address"`
	AccountNumber uint64 `json:"account_number"`
	Sequence      uint64 `json:"sequence"`
}

type EventAttribute struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type Event struct {
	Type       string           `json:"type"`
	Attributes []EventAttribute `json:"attributes"`
}

// BroadcastResponse is the node's answer to one submission. Code 0 means accepted.
type BroadcastResponse struct {
	Code      uint32  `json:"code"`
	Codespace string  `json:"codespace,omitempty"`
	TxHash    string  `json:"txhash"`
	RawLog    string  `json:"raw_log,omitempty"`
	Events    []Event `json:"events,omitempty"`
}

// Session is a short-lived signing client bound to one network. It must not be reused
// across submissions.
type Session interface {
	Address() string
	Account(ctx context.Context, address string) (Account, error)
	Simulate(ctx context.Context, msgs []Msg, memo string) (uint64, error)
	SignAndBroadcast(ctx context.Context, msgs []Msg, fee Fee, memo string) (*BroadcastResponse, error)
	Close() error
}

type SessionParams struct {
	Network       networks.Mode
	ChainID       string
	RPCURL        string
	AddressPrefix string
}

// Connector opens sessions. Every call yields a new session with no cached account state.
type Connector interface {
	Connect(ctx context.Context, params SessionParams) (Session, error)
}
