package http

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

func NewRouter(h *Handler, allowedOrigins []string) *gin.Engine {
	r := gin.Default()

	if len(allowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins: allowedOrigins,
			AllowMethods: []string{"GET", "POST", "OPTIONS"},
			AllowHeaders: []string{"Origin", "Content-Type", requestIDHeader},
		}))
	}
	r.Use(requestID())

	r.GET("/healthz", h.Health)
	r.GET("/metrics", gin.WrapH(h.engine.Metrics().Handler()))

	api := r.Group("/api")
	{
		api.POST("/normalize", h.Normalize)
		api.POST("/convert/to-wire", h.ToWire)
		api.POST("/convert/to-display", h.ToDisplay)

		api.GET("/network", h.GetNetwork)
		api.POST("/network", h.SetNetwork)

		api.POST("/tx/prepare", h.Prepare)
		api.POST("/tx/estimate-gas", h.EstimateGas)
		api.POST("/tx/broadcast", h.Broadcast)
		api.GET("/tx/:hash", h.GetTx)
		api.GET("/tx/:hash/status", h.Status)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, errorRes{Error: "not found"})
	})

	return r
}

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}
