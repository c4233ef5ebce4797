package filestorage

import "github.com/gin-gonic/gin"

// RegisterRoutes registers the draft routes under the protected group.
func RegisterRoutes(protected *gin.RouterGroup, h *Handler) {
	drafts := protected.Group("/drafts")
	{
		drafts.GET("/unused", h.UnusedDraft)
		drafts.GET("/:itemId/files", h.ListDraft)
		drafts.DELETE("/:itemId/files/*file", h.RemoveDraftFile)
	}
}

// RegisterPublicRoutes registers file serving. Draft files still require
// the owner, which optional auth middleware puts in the context.
func RegisterPublicRoutes(r gin.IRouter, h *Handler) {
	r.GET(PluginFilePrefix+"/:contextId/:component/:area/:itemId/*file", h.PluginFile)
}
