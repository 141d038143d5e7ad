package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lcgate/rulekeeper/internal/core/auth"
)

// NewRouter builds the gin engine: an unauthenticated liveness probe
// plus the authenticated /v1 API group.
func NewRouter(service *Service, authenticator *auth.Authenticator) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/v1")
	v1.Use(authenticator.Middleware())
	{
		rules := v1.Group("/rules")
		{
			rules.GET("", service.ListRules)
			rules.POST("/sync", service.SyncRules)
			rules.PATCH("/:ruleId", service.UpdateRule)
		}

		rulesetGroup := v1.Group("/rulesets")
		{
			rulesetGroup.GET("", service.ListRulesets)
			rulesetGroup.POST("", service.UploadRuleset)
			rulesetGroup.GET("/:id", service.GetRuleset)
			rulesetGroup.POST("/:id/publish", service.PublishRuleset)
			rulesetGroup.POST("/:id/rollback", service.RollbackRuleset)
			rulesetGroup.POST("/:id/archive", service.ArchiveRuleset)
			rulesetGroup.DELETE("/:id", service.DeleteRuleset)
			rulesetGroup.GET("/:id/audit", service.GetRulesetAudit)
		}
	}

	return router
}
