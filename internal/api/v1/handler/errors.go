package handler

import (
	"github.com/gin-gonic/gin"

	"superset-embed/internal/common"
)

// respondError writes the error envelope for err; raw error text never reaches the client
func respondError(c *gin.Context, err error) {
	status := common.HTTPStatus(err)
	kind := common.KindOf(err)

	logger := common.LoggerFromContext(c.Request.Context())
	if status >= 500 {
		logger.Error("request failed", "kind", kind, "error", err)
	} else {
		logger.Warn("request rejected", "kind", kind, "error", err)
	}

	c.AbortWithStatusJSON(status, gin.H{
		"ok":      false,
		"kind":    kind,
		"message": common.PublicMessage(err),
	})
}
