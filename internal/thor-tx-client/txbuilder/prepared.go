package txbuilder

import (
	"encoding/json"

	"github.com/quantumauth-io/thor-tx-client/internal/thor-tx-client/assets"
	"github.com/quantumauth-io/thor-tx-client/internal/thor-tx-client/networks"
	"github.com/quantumauth-io/thor-tx-client/internal/thor-tx-client/signer"
	"github.com/quantumauth-io/thor-tx-client/internal/thor-tx-client/units"
)

type MessageKind string

const (
	KindSend    MessageKind = "send"
	KindDeposit MessageKind = "deposit"
)

// Intent is what the user asked for, amounts in display units.
type Intent struct {
	Asset       string              `json:"asset"`
	Amount      units.DisplayAmount `json:"amount"`
	Memo        string              `json:"memo,omitempty"`
	Destination string              `json:"destination,omitempty"`
	Deposit     bool                `json:"deposit"`
}

// Prepared is a built transaction. It has no setters; the broadcaster only reads it.
type Prepared struct {
	kind    MessageKind
	from    string
	msg     signer.Msg
	coin    signer.Coin
	asset   assets.Asset
	memo    string
	fee     signer.Fee
	network *networks.Config
}

func (p *Prepared) Kind() MessageKind      { return p.kind }
func (p *Prepared) From() string           { return p.from }
func (p *Prepared) Payload() signer.Msg    { return p.msg }
func (p *Prepared) Coin() signer.Coin      { return p.coin }
func (p *Prepared) Asset() assets.Asset    { return p.asset }
func (p *Prepared) Memo() string           { return p.memo }
func (p *Prepared) Fee() signer.Fee        { return p.fee }
func (p *Prepared) Network() networks.Mode { return p.network.Mode }

// Config is the network snapshot the transaction was built against.

func (p *Prepared) Messages() []signer.Msg { return []signer.Msg{p.msg} }

// WireAmount is the coin amount in wire units.
func (p *Prepared) WireAmount() units.WireAmount { return units.WireAmount(p.coin.Amount) }

type preparedJSON struct {
	Kind    MessageKind   `json:"kind"`
	Network networks.Mode `json:"network"`
	From    string        `json:"from"`
	Asset   assets.Asset  `json:"asset"`
	Coin    signer.Coin   `json:"coin"`
	Memo    string        `json:"memo,omitempty"`
	Fee     signer.Fee    `json:"fee"`
	Payload signer.Msg    `json:"payload"`
}

func (p *Prepared) MarshalJSON() ([]byte, error) {
	return json.Marshal(preparedJSON{
		Kind:    p.kind,
		Network: p.network.Mode,
		From:    p.from,
		Asset:   p.asset,
		Coin:    p.coin,
		Memo:    p.memo,
		Fee:     p.fee,
		Payload: p.msg,
	})
}
