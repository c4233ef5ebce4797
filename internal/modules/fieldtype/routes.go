package fieldtype

import "github.com/gin-gonic/gin"

// RegisterRoutes registers the record editing routes under the protected group.
func RegisterRoutes(protected *gin.RouterGroup, h *Handler) {
	protected.POST("/databases/:dataId/records", h.CreateRecord)

	fields := protected.Group("/fields/:fieldId")
	{
		fields.GET("/records/:recordId/form", h.Form)
		fields.POST("/records/:recordId", h.Submit)
		fields.POST("/contents/:contentId/import", h.Import)
		fields.POST("/drafts/:itemId/files", h.UploadDraft)
		fields.POST("/drafts/:itemId/links", h.LinkDraft)
	}
}

// RegisterPublicRoutes registers the browse view.
func RegisterPublicRoutes(r gin.IRouter, h *Handler) {
	r.GET("/fields/:fieldId/records/:recordId", h.Browse)
}
