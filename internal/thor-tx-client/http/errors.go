package http

import (
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
	"github.com/quantumauth-io/quantum-go-utils/log"

	"github.com/quantumauth-io/thor-tx-client/internal/thor-tx-client/txerr"
)

const warningText = "the transaction may have been accepted, check your history before retrying"

// writeError maps the error taxonomy onto status codes. Duplicate, sequence and unknown
// submission outcomes are warnings, not failures.
func writeError(c *gin.Context, err error) {
	var rejected *txerr.BroadcastRejectedError

	switch {
	case txerr.IsValidation(err), errors.Is(err, txerr.ErrNetworkNotConfigured):
		c.JSON(http.StatusBadRequest, errorRes{Error: err.Error(), Kind: "validation"})
	case txerr.IsWarning(err):
		c.JSON(http.StatusConflict, errorRes{Error: err.Error(), Kind: warningKind(err), Warning: warningText})
	case errors.As(err, &rejected):
		c.JSON(http.StatusUnprocessableEntity, errorRes{
			Error:  err.Error(),
			Kind:   "rejected",
			Code:   rejected.Code,
			RawLog: rejected.RawLog,
		})
	case errors.Is(err, txerr.ErrSignerNotConfigured):
		c.JSON(http.StatusServiceUnavailable, errorRes{Error: err.Error(), Kind: "signer"})
	case errors.IsAny(err, txerr.ErrEndpointUnavailable, txerr.ErrUnresolvedModuleAddress):
		c.JSON(http.StatusBadGateway, errorRes{Error: err.Error(), Kind: "unavailable"})
	default:
		log.Error("request failed", "path", c.FullPath(), "request_id", c.GetString("request_id"), "error", err)
		c.JSON(http.StatusInternalServerError, errorRes{Error: err.Error()})
	}
}

func warningKind(err error) string {
	switch {
	case errors.Is(err, txerr.ErrAlreadySubmitted):
		return "already_submitted"
	case errors.Is(err, txerr.ErrOutcomeUnknown):
		return "outcome_unknown"
	}
	return "sequence_conflict"
}
