package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/Shi-Shi-Kokoro-Ventures/pillar-ctg-sub001/internal/middleware"
	"github.com/Shi-Shi-Kokoro-Ventures/pillar-ctg-sub001/internal/models"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	value, exists := c.Get(middleware.ContextUserKey)
	if !exists {
		return nil
	}
	claims, ok := value.(*models.JWTClaims)
	if !ok {
		return nil
	}
	return claims
}

func requestMeta(c *gin.Context) models.RequestMeta {
	return models.RequestMeta{IP: c.ClientIP(), UserAgent: c.GetHeader("User-Agent")}
}
