package status

import (
	"github.com/quantumauth-io/thor-tx-client/internal/thor-tx-client/constants"
	"github.com/quantumauth-io/thor-tx-client/internal/thor-tx-client/thornode"
)

// nodeStages lists the pipeline in order. Optional stages the node omits do not apply to
// this transaction and are left out.
func nodeStages(st thornode.Stages) []Stage {
	obs := st.InboundObserved
	stages := []Stage{{
		Name:      StageInboundObserved,
		Completed: obs.Completed,
		Details:   details("final_count", nonZero(obs.FinalCount), "pre_confirmation_count", obs.PreConfirmationCount),
	}}

	if c := st.InboundConfirmationCounted; c != nil {
		stages = append(stages, Stage{
			Name:      StageInboundConfirmationCounted,
			Completed: c.Completed,
			Details: details(
				"chain", nonEmpty(c.Chain),
				"remaining_confirmation_seconds", c.RemainingConfirmationSeconds,
				"external_observed_height", nonZero(c.ExternalObservedHeight),
				"external_confirmation_delay_height", nonZero(c.ExternalConfirmationDelayHeight),
			),
		})
	}
	if f := st.InboundFinalised; f != nil {
		stages = append(stages, Stage{Name: StageInboundFinalised, Completed: f.Completed})
	}
	if s := st.SwapStatus; s != nil {
		state := StatusDone
		if s.Pending {
			state = StatusPending
		}
		var streaming any
		if len(s.Streaming) > 0 {
			streaming = s.Streaming
		}
		stages = append(stages, Stage{
			Name:      StageSwapStatus,
			Completed: !s.Pending,
			Details:   details("state", state, "streaming", streaming),
		})
	}
	if f := st.SwapFinalised; f != nil {
		stages = append(stages, Stage{Name: StageSwapFinalised, Completed: f.Completed})
	}
	if d := st.OutboundDelay; d != nil {
		stages = append(stages, Stage{
			Name:      StageOutboundDelay,
			Completed: d.Completed,
			Details:   details("remaining_delay_blocks", d.RemainingDelayBlocks, "remaining_delay_seconds", d.RemainingDelaySeconds),
		})
	}
	if s := st.OutboundSigned; s != nil {
		stages = append(stages, Stage{
			Name:      StageOutboundSigned,
			Completed: s.Completed,
			Details:   details("scheduled_outbound_height", s.ScheduledOutboundHeight, "blocks_since_scheduled", s.BlocksSinceScheduled),
		})
	}
	return stages
}

func notObserved() []Stage {
	return []Stage{{Name: StageInboundObserved, Completed: false}}
}

func transferCommitted(height string) []Stage {
	return []Stage{{
		Name:      StageTransferCommitted,
		Completed: true,
		Details:   details("height", nonEmpty(height)),
	}}
}

func allCompleted(stages []Stage) bool {
	if len(stages) == 0 {
		return false
	}
	for _, s := range stages {
		if !s.Completed {
			return false
		}
	}
	return true
}

// observed reports whether the node knows anything about the inbound.
func observed(st *thornode.TxStatus) bool {
	if st == nil {
		return false
	}
	obs := st.Stages.InboundObserved
	return st.Tx != nil || obs.Completed || (obs.Started != nil && *obs.Started)
}

func isPlainSend(tx *thornode.TxResponse) bool {
	msgs := tx.Tx.Body.Messages
	if len(msgs) == 0 {
		return false
	}
	for _, m := range msgs {
		if m.Type != constants.MsgSendTypeURL && m.Type != constants.BankMsgSendTypeURL {
			return false
		}
	}
	return true
}

func basicInfo(tx *thornode.TxResponse) *BasicInfo {
	info := &BasicInfo{
		Memo:   tx.Tx.Body.Memo,
		Height: tx.TxResult.Height,
		Code:   tx.TxResult.Code,
		RawLog: tx.TxResult.RawLog,
		Status: "success",
	}
	if tx.TxResult.Code != 0 {
		info.Status = StatusFailed
	}
	if msgs := tx.Tx.Body.Messages; len(msgs) > 0 {
		m := msgs[0]
		info.FromAddress = m.FromAddress
		if info.FromAddress == "" {
			info.FromAddress = m.Signer
		}
		info.ToAddress = m.ToAddress
		if info.Memo == "" {
			info.Memo = m.Memo
		}
	}
	return info
}

// details builds a map from key/value pairs, skipping nil values.
func details(kv ...any) map[string]any {
	var out map[string]any
	for i := 0; i+1 < len(kv); i += 2 {
		v := kv[i+1]
		if isNil(v) {
			continue
		}
		if out == nil {
			out = make(map[string]any)
		}
		out[kv[i].(string)] = deref(v)
	}
	return out
}

func isNil(v any) bool {
	switch p := v.(type) {
	case nil:
		return true
	case *int64:
		return p == nil
	case *bool:
		return p == nil
	}
	return false
}

func deref(v any) any {
	switch p := v.(type) {
	case *int64:
		return *p
	case *bool:
		return *p
	}
	return v
}

func nonZero(v int64) any {
	if v == 0 {
		return nil
	}
	return v
}

func nonEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
