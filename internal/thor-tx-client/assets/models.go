package assets

// Kind is the backing representation of an asset, told apart by its separator.
type Kind string

const (
	KindNative  Kind = "native"
	KindSecured Kind = "secured"
	KindTrade   Kind = "trade"
)

const (
	nativeSeparator  = "."
	securedSeparator = "-"
	tradeSeparator   = "~"
)

// Separator returns the chain/symbol separator of the notation.
func (k Kind) Separator() string {
	switch k {
	case KindSecured:
		return securedSeparator
	case KindTrade:
		return tradeSeparator
	default:
		return nativeSeparator
	}
}

// Asset is a chain-qualified asset identifier in canonical form.
type Asset struct {
	CanonicalID     string `json:"canonicalId"`
	Chain           string `json:"chain"`
	Symbol          string `json:"symbol"`
	ContractAddress string `json:"contractAddress,omitempty"`
	RawInput        string `json:"rawInput"`
	Kind            Kind   `json:"kind"`
}

// Same compares two assets ignoring the raw input they were parsed from.
func (a Asset) Same(b Asset) bool {
	return a.CanonicalID == b.CanonicalID &&
		a.Chain == b.Chain &&
		a.Symbol == b.Symbol &&
		a.ContractAddress == b.ContractAddress &&
		a.Kind == b.Kind
}
