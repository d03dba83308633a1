// Package status serves the daemon's local HTTP surface: health, a snapshot
// summary and Prometheus metrics. It is the bridge's own endpoint, not the
// backend API.
package status

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"smsbridge/internal/metrics"
	"smsbridge/internal/state"
)

type Deps struct {
	State    *state.Manager
	Realtime interface{ Connected() bool }
	Registry *prometheus.Registry
}

func NewRouter(deps Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"ok": true})
	})

	r.GET("/state", func(c *gin.Context) {
		connected := false
		if deps.Realtime != nil {
			connected = deps.Realtime.Connected()
		}
		c.JSON(200, gin.H{
			"realtimeConnected": connected,
			"devices":           deps.State.Devices.Count(),
			"apiKeys":           deps.State.Keys.Count(),
			"messages":          deps.State.Messages.Count(),
			"stats":             deps.State.Stats.Current(),
		})
	})

	r.GET("/metrics", gin.WrapH(metrics.Handler(deps.Registry)))

	return r
}

// Run blocks serving the router on the given port.
func Run(port int, handler http.Handler) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return srv.ListenAndServe()
}
