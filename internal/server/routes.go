package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) registerRoutes() {
	s.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"uptime":  time.Since(s.startedAt).String(),
			"service": "lobbysniff",
			"version": "0.1.0",
		})
	})

	s.router.GET("/lobby", func(c *gin.Context) {
		c.JSON(http.StatusOK, s.tracker.Snapshot())
	})

	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}
