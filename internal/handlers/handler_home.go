package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Version is reported by the status route. Overridden at build time with -ldflags.
var Version = "dev"

func getStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"service": "erp-ledger", "version": Version, "status": "ok"})
}

func registerStatusRoutes(group *gin.RouterGroup) {
	group.GET("/status", getStatus)
}
