package v1

import (
	"github.com/gin-gonic/gin"

	"vidvault/internal/domain/asset"
	"vidvault/internal/infrastructure/auth"
	"vidvault/internal/interfaces/httpserver/handlers"
)

// Routes encapsulates versioned route registration.
type Routes struct {
	handlers *handlers.Provider
}

func NewRoutes(provider *handlers.Provider) *Routes {
	return &Routes{handlers: provider}
}

// Register attaches all v1 routes under the /v1 prefix. The router is
// expected to already run the authentication middleware; mutation
// routes additionally require an uploader role.
func (r *Routes) Register(router gin.IRouter) {
	group := router.Group("/v1")

	mutate := auth.RequireRoles(asset.RoleAdmin, asset.RoleEditor)

	group.POST("/videos", mutate, r.handlers.Video.Upload)
	group.GET("/videos", r.handlers.Video.List)
	group.GET("/videos/:id", r.handlers.Video.Get)
	group.DELETE("/videos/:id", mutate, r.handlers.Video.Delete)
	group.GET("/videos/:id/stream", r.handlers.Stream.Stream)
	group.GET("/videos/:id/thumbnail", r.handlers.Video.Thumbnail)

	group.GET("/events/ws", r.handlers.Events.Subscribe)
}
