package filestorage

import (
	"errors"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"

	"videofield/internal/pkg/httpx"
	"videofield/internal/pkg/response"
)

// Handler serves stored files and the user's draft areas.
type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// UnusedDraft allocates a draft item id for a fresh upload widget.
func (h *Handler) UnusedDraft(c *gin.Context) {
	if httpx.MustUserID(c) == 0 {
		return
	}
	id, err := h.service.UnusedDraftItemID(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "DRAFT_ALLOCATION_FAILED", "could not allocate draft")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"item_id": id})
}

// ListDraft lists the files the current user holds in a draft.
func (h *Handler) ListDraft(c *gin.Context) {
	userID := httpx.MustUserID(c)
	if userID == 0 {
		return
	}
	itemID, ok := httpx.ParseIDParam(c, "itemId")
	if !ok {
		return
	}

	files, err := h.service.ListDraftFiles(c.Request.Context(), userID, itemID)
	if err != nil {
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to list draft files")
		return
	}

	items := make([]gin.H, 0, len(files))
	for _, f := range files {
		items = append(items, FileJSON(f))
	}
	response.Success(c, http.StatusOK, items)
}

// RemoveDraftFile deletes one file from the current user's draft.
func (h *Handler) RemoveDraftFile(c *gin.Context) {
	userID := httpx.MustUserID(c)
	if userID == 0 {
		return
	}
	itemID, ok := httpx.ParseIDParam(c, "itemId")
	if !ok {
		return
	}
	filePath, fileName := SplitFilePath(c.Param("file"))

	err := h.service.RemoveDraftFile(c.Request.Context(), userID, itemID, filePath, fileName)
	if errors.Is(err, ErrFileNotFound) {
		response.Error(c, http.StatusNotFound, "FILE_NOT_FOUND", "file not found")
		return
	}
	if err != nil {
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to delete draft file")
		return
	}
	c.Status(http.StatusNoContent)
}

// PluginFile serves /pluginfile/:contextId/:component/:area/:itemId/*file.
// Local files are streamed with range support, Google Drive links redirect
// to the Drive viewer.
func (h *Handler) PluginFile(c *gin.Context) {
	contextID, err := strconv.ParseInt(c.Param("contextId"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "invalid context id")
		return
	}
	itemID, err := strconv.ParseInt(c.Param("itemId"), 10, 64)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "invalid item id")
		return
	}
	filePath, fileName := SplitFilePath(c.Param("file"))

	key := FileKey{
		AreaKey:  AreaKey{ContextID: contextID, Component: c.Param("component"), FileArea: c.Param("area"), ItemID: itemID},
		FilePath: filePath,
		FileName: fileName,
	}
	// draft files are only visible to their owner
	if key.Component == DraftComponent && key.ContextID != c.GetInt64("user_id") {
		response.Error(c, http.StatusNotFound, "FILE_NOT_FOUND", "file not found")
		return
	}

	f, err := h.service.GetFile(c.Request.Context(), key)
	if err != nil {
		if errors.Is(err, ErrFileNotFound) {
			response.Error(c, http.StatusNotFound, "FILE_NOT_FOUND", "file not found")
			return
		}
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to load file")
		return
	}

	if f.IsExternal() {
		if target := ExternalViewURL(f); target != "" {
			c.Redirect(http.StatusFound, target)
			return
		}
		response.Error(c, http.StatusNotFound, "FILE_NOT_FOUND", "external file cannot be served")
		return
	}

	rc, err := h.service.Open(c.Request.Context(), f)
	if err != nil {
		if errors.Is(err, ErrBlobNotFound) {
			response.Error(c, http.StatusNotFound, "FILE_NOT_FOUND", "file content missing")
			return
		}
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "failed to open file")
		return
	}
	defer rc.Close()

	c.Header("Content-Type", f.MimeType)
	c.Header("Content-Disposition", mime.FormatMediaType("inline", map[string]string{"filename": f.FileName}))
	if rs, ok := rc.(io.ReadSeeker); ok {
		http.ServeContent(c.Writer, c.Request, f.FileName, f.UpdatedAt, rs)
		return
	}
	c.DataFromReader(http.StatusOK, f.FileSize, f.MimeType, rc, nil)
}

// ExternalViewURL is where an external file can be viewed, or "" when the
// repository type is not known.
func ExternalViewURL(f *StoredFile) string {
	if f.RepositoryType != RepositoryGoogleDocs {
		return ""
	}
	ref, err := ParseReference(f.Reference)
	if err != nil || ref.ID == "" {
		return ""
	}
	return "https://drive.google.com/file/d/" + url.PathEscape(ref.ID) + "/view"
}

// FileJSON is the API representation of a stored file.
func FileJSON(f *StoredFile) gin.H {
	return gin.H{
		"id":              f.ID,
		"item_id":         f.ItemID,
		"file_path":       f.FilePath,
		"file_name":       f.FileName,
		"mime_type":       f.MimeType,
		"file_size":       f.FileSize,
		"repository_type": f.RepositoryType,
		"created_at":      f.CreatedAt,
	}
}
