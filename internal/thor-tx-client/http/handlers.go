package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/quantumauth-io/thor-tx-client/internal/thor-tx-client/engine"
	"github.com/quantumauth-io/thor-tx-client/internal/thor-tx-client/networks"
	"github.com/quantumauth-io/thor-tx-client/internal/thor-tx-client/signer"
	"github.com/quantumauth-io/thor-tx-client/internal/thor-tx-client/units"
)

type Handler struct {
	engine *engine.Engine
	signer signer.Connector
}

func NewHandler(e *engine.Engine, conn signer.Connector) *Handler {
	return &Handler{engine: e, signer: conn}
}

func (h *Handler) Health(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

// POST /api/normalize
func (h *Handler) Normalize(c *gin.Context) {
	var req normalizeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorRes{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, h.engine.NormalizeAsset(req.Asset))
}

// POST /api/convert/to-wire
func (h *Handler) ToWire(c *gin.Context) {
	var req convertReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorRes{Error: err.Error()})
		return
	}
	w, err := h.engine.ToWire(units.DisplayAmount(req.Amount))
	if err != nil {
		writeError(c, err)
		return
	}
	d, err := h.engine.ToDisplay(w)
	if err != nil {
		writeError(c, err)
		return
	}
	dust, err := h.engine.IsDust(units.DisplayAmount(req.Amount))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, convertRes{Wire: w, Display: d, Dust: dust})
}

// POST /api/convert/to-display
func (h *Handler) ToDisplay(c *gin.Context) {
	var req convertReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorRes{Error: err.Error()})
		return
	}
	w := units.WireAmount(req.Amount)
	d, err := h.engine.ToDisplay(w)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, convertRes{Wire: w, Display: d})
}

// GET /api/network
func (h *Handler) GetNetwork(c *gin.Context) {
	c.JSON(http.StatusOK, toNetworkRes(h.engine.Network()))
}

// POST /api/network
func (h *Handler) SetNetwork(c *gin.Context) {
	var req networkReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorRes{Error: err.Error()})
		return
	}
	mode, err := networks.ParseMode(req.Mode)
	if err != nil {
		writeError(c, err)
		return
	}
	if err := h.engine.SetNetwork(mode); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toNetworkRes(h.engine.Network()))
}

// POST /api/tx/prepare
func (h *Handler) Prepare(c *gin.Context) {
	var req prepareReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorRes{Error: err.Error()})
		return
	}
	p, err := h.engine.Prepare(c.Request.Context(), req.From, req.Intent)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// POST /api/tx/estimate-gas
func (h *Handler) EstimateGas(c *gin.Context) {
	var req intentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorRes{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, gasRes{Gas: h.engine.EstimateGas(c.Request.Context(), h.signer, req.Intent)})
}

// POST /api/tx/broadcast
func (h *Handler) Broadcast(c *gin.Context) {
	var req intentReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorRes{Error: err.Error()})
		return
	}
	res, err := h.engine.BroadcastTransaction(c.Request.Context(), h.signer, req.Intent)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /api/tx/:hash
func (h *Handler) GetTx(c *gin.Context) {
	info, err := h.engine.GetTx(c.Request.Context(), c.Param("hash"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"basic_info": info})
}

// GET /api/tx/:hash/status
func (h *Handler) Status(c *gin.Context) {
	var q statusQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, errorRes{Error: err.Error()})
		return
	}

	ctx := c.Request.Context()
	hash := c.Param("hash")

	if !q.Poll {
		s, err := h.engine.GetTransactionSummary(ctx, hash)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, s)
		return
	}

	s, err := h.engine.PollTransactionStatus(ctx, hash, q.Attempts, time.Duration(q.IntervalMs)*time.Millisecond)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}

func toNetworkRes(cfg *networks.Config) networkRes {
	return networkRes{
		Mode:          string(cfg.Mode),
		RestURL:       cfg.RestURL,
		RPCURL:        cfg.RPCURL,
		IndexerURL:    cfg.IndexerURL,
		AddressPrefix: cfg.AddressPrefix,
		ChainID:       cfg.ChainID,
		FeeWire:       cfg.FeeWire,
		DefaultGas:    cfg.DefaultGas,
	}
}
