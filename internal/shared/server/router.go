package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"casedesk/internal/cases"
	"casedesk/internal/drafts"
	"casedesk/internal/shared/config"
	"casedesk/internal/shared/server/middleware"
	"casedesk/internal/shared/server/respond"
)

// RouterDeps carries the handlers the router mounts.
type RouterDeps struct {
	Config       config.Config
	CaseHandler  *cases.Handler
	DraftHandler *drafts.Handler
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.Identity(deps.Config.DefaultTenantID, deps.Config.DefaultUserID),
	)

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})
	if deps.CaseHandler != nil {
		deps.CaseHandler.RegisterRoutes(api)
	}
	if deps.DraftHandler != nil {
		deps.DraftHandler.RegisterRoutes(api)
	}

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
