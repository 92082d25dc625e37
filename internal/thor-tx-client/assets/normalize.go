package assets

import (
	"strings"

	"github.com/quantumauth-io/thor-tx-client/internal/thor-tx-client/constants"
)

// Normalize parses a chain-qualified asset string in native (CHAIN.SYMBOL), secured
// (CHAIN-SYMBOL) or trade (CHAIN~SYMBOL) notation. Any SYMBOL may carry a trailing
// -CONTRACT suffix. Malformed input degrades to UNKNOWN parts and never fails.
func Normalize(raw string) Asset {
	in := strings.TrimSpace(raw)
	kind, ok := classify(in)
	if !ok {
		if in != "" && len(in) <= constants.BareAssetMaxLen {
			return build(raw, KindNative, constants.HomeChain, in, "")
		}
		return unknown(raw, KindNative)
	}

	chain, rest, found := strings.Cut(in, kind.Separator())
	if !found || chain == "" || rest == "" {
		return unknown(raw, kind)
	}

	symbol, contract, _ := strings.Cut(rest, securedSeparator)
	if symbol == "" {
		return unknown(raw, kind)
	}
	return build(raw, kind, chain, symbol, contract)
}

// classify picks the notation. A "." ahead of the first "-" marks a native asset whose
// "-" belongs to the contract suffix rather than a secured separator.
func classify(in string) (Kind, bool) {
	if strings.Contains(in, tradeSeparator) {
		return KindTrade, true
	}
	dash := strings.Index(in, securedSeparator)
	dot := strings.Index(in, nativeSeparator)
	switch {
	case dash >= 0 && (dot < 0 || dash < dot):
		return KindSecured, true
	case dot >= 0:
		return KindNative, true
	}
	return "", false
}

func build(raw string, kind Kind, chain, symbol, contract string) Asset {
	chain = strings.ToUpper(chain)
	symbol = strings.ToUpper(symbol)

	id := chain + kind.Separator() + symbol
	if contract != "" {
		id += securedSeparator + contract
	}

	return Asset{
		CanonicalID:     id,
		Chain:           chain,
		Symbol:          symbol,
		ContractAddress: contract,
		RawInput:        raw,
		Kind:            kind,
	}
}

func unknown(raw string, kind Kind) Asset {
	return build(raw, kind, constants.UnknownPart, constants.UnknownPart, "")
}

// IsUnknown reports a display-only fallback produced from malformed input.
func (a Asset) IsUnknown() bool {
	return a.Chain == constants.UnknownPart && a.Symbol == constants.UnknownPart
}

// IsHomeNative reports the home chain's own gas asset.
func (a Asset) IsHomeNative() bool {
	return a.Kind == KindNative && a.Chain == constants.HomeChain && a.Symbol == constants.HomeSymbol
}

// Denom resolves the on-chain denomination used in coin amounts.
func (a Asset) Denom() string {
	switch {
	case a.IsHomeNative():
		return constants.HomeDenom
	case a.Kind == KindNative:
		return strings.ToLower(strings.Replace(a.CanonicalID, nativeSeparator, "/", 1))
	default:
		return a.CanonicalID
	}
}
