package constants

import "time"

const (
	AppName = "thor-tx-client"

	// HomeChain is the chain a bare, unqualified asset name resolves to.
	HomeChain  = "THOR"
	HomeSymbol = "RUNE"
	HomeDenom  = "rune"

	// WireDecimals is the fixed-point scale of every on-chain amount, regardless of asset.
	WireDecimals = 8

	// BareAssetMaxLen bounds the length of an unqualified asset token.
	BareAssetMaxLen = 10

	UnknownPart = "UNKNOWN"

	// ModuleName is the module account deposits are routed to.
	ModuleName = "thorchain"

	// DefaultFeeWire is the published flat network fee (0.02 RUNE).
	DefaultFeeWire = "2000000"
	DefaultGasWire = "600000000"

	// GasMarginDivisor adds 1/10 on top of a simulated gas figure.
	GasMarginDivisor = 10

	SequenceRetryDelay = 2 * time.Second
	MaxSubmitAttempts  = 2

	DefaultPollAttempts = 60
	DefaultPollInterval = 5 * time.Second

	HTTPTimeout   = 10 * time.Second
	LookupTimeout = 15 * time.Second
	SubmitTimeout = 30 * time.Second

	MsgSendTypeURL     = "/types.MsgSend"
	BankMsgSendTypeURL = "/cosmos.bank.v1beta1.MsgSend"
	MsgDepositTypeURL  = "/types.MsgDeposit"
)
