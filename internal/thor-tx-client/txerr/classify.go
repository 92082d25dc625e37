package txerr

import "strings"

// Kind is the closed set of remote broadcast outcomes the broadcaster branches on.
type Kind int

const (
	KindNone Kind = iota
	KindDuplicate
	KindSequenceMismatch
	KindInsufficientFunds
	KindUnknown
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "accepted"
	case KindDuplicate:
		return "duplicate"
	case KindSequenceMismatch:
		return "sequence_mismatch"
	case KindInsufficientFunds:
		return "insufficient_funds"
	default:
		return "rejected"
	}
}

// Cosmos SDK root codespace ABCI codes.
const (
	sdkCodespace          = "sdk"
	codeInsufficientFunds = 5
	codeTxInMempoolCache  = 19
	codeWrongSequence     = 32
)

var (
	duplicatePatterns = []string{
		"tx already exists in cache",
		"tx already in mempool",
		"already exists in cache",
	}
	sequencePatterns = []string{
		"account sequence mismatch",
		"incorrect account sequence",
	}
	fundsPatterns = []string{
		"insufficient funds",
	}
)

// Classify maps a broadcast response to a Kind. Structured codes win; text is the fallback.
func Classify(codespace string, code uint32, rawLog string) Kind {
	if code == 0 {
		return KindNone
	}
	if codespace == "" || codespace == sdkCodespace {
		switch code {
		case codeTxInMempoolCache:
			return KindDuplicate
		case codeWrongSequence:
			return KindSequenceMismatch
		case codeInsufficientFunds:
			return KindInsufficientFunds
		}
	}
	if k := classifyText(rawLog); k != KindNone {
		return k
	}
	return KindUnknown
}

// ClassifyError maps a transport-level error (no structured code) by its text.
func ClassifyError(err error) Kind {
	if err == nil {
		return KindNone
	}
	if k := classifyText(err.Error()); k != KindNone {
		return k
	}
	return KindUnknown
}

func classifyText(text string) Kind {
	lower := strings.ToLower(text)
	switch {
	case containsAny(lower, duplicatePatterns):
		return KindDuplicate
	case containsAny(lower, sequencePatterns):
		return KindSequenceMismatch
	case containsAny(lower, fundsPatterns):
		return KindInsufficientFunds
	}
	return KindNone
}

func containsAny(s string, patterns []string) bool {
	for _, p := range patterns {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}
