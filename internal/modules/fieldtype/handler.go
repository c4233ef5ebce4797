package fieldtype

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"videofield/internal/domain/filestorage"
	"videofield/internal/pkg/httpx"
	"videofield/internal/pkg/response"
	"videofield/internal/pkg/validator"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// CreateRecord handles POST /databases/:dataId/records
func (h *Handler) CreateRecord(c *gin.Context) {
	userID := httpx.MustUserID(c)
	if userID == 0 {
		return
	}
	dataID, ok := httpx.ParseIDParam(c, "dataId")
	if !ok {
		return
	}

	rec, err := h.service.CreateRecord(c.Request.Context(), dataID, userID)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, CreateRecordResponse{ID: rec.ID, DataID: rec.DataID, UserID: rec.UserID})
}

// Form handles GET /fields/:fieldId/records/:recordId/form. Record 0 is a
// new entry; a query carrying the field's draft input is a redisplay.
func (h *Handler) Form(c *gin.Context) {
	userID := httpx.MustUserID(c)
	if userID == 0 {
		return
	}
	fieldID, ok := httpx.ParseIDParam(c, "fieldId")
	if !ok {
		return
	}
	recordID, ok := parseRecordID(c)
	if !ok {
		return
	}

	query := c.Request.URL.Query()
	if _, ok := query["field_"+strconv.FormatInt(fieldID, 10)+"_file"]; !ok {
		query = nil
	}

	html, err := h.service.Form(c.Request.Context(), fieldID, userID, recordID, query)
	if err != nil {
		handleError(c, err)
		return
	}
	response.HTML(c, html)
}

// Browse handles GET /fields/:fieldId/records/:recordId?preview=1
func (h *Handler) Browse(c *gin.Context) {
	fieldID, ok := httpx.ParseIDParam(c, "fieldId")
	if !ok {
		return
	}
	recordID, ok := httpx.ParseIDParam(c, "recordId")
	if !ok {
		return
	}
	preview, _ := strconv.ParseBool(c.DefaultQuery("preview", "0"))

	html, err := h.service.Browse(c.Request.Context(), fieldID, recordID, preview)
	if err != nil {
		handleError(c, err)
		return
	}
	response.HTML(c, html)
}

// Submit handles POST /fields/:fieldId/records/:recordId with the form
// fields field_{id}_file and an optional field_{id}_name.
func (h *Handler) Submit(c *gin.Context) {
	userID := httpx.MustUserID(c)
	if userID == 0 {
		return
	}
	fieldID, ok := httpx.ParseIDParam(c, "fieldId")
	if !ok {
		return
	}
	recordID, ok := httpx.ParseIDParam(c, "recordId")
	if !ok {
		return
	}

	prefix := "field_" + strconv.FormatInt(fieldID, 10)
	values := make(map[string]SubmittedValue)
	if v, ok := c.GetPostForm(prefix + "_file"); ok {
		values["file"] = SubmittedValue{FieldID: fieldID, Value: v}
	}

	content, msg, err := h.service.Submit(c.Request.Context(), fieldID, userID, recordID, values, c.PostForm(prefix+"_name"))
	if err != nil {
		handleError(c, err)
		return
	}
	if msg != "" {
		response.Error(c, http.StatusUnprocessableEntity, "VALIDATION_FAILED", msg)
		return
	}
	response.Success(c, http.StatusOK, content)
}

// Import handles POST /fields/:fieldId/contents/:contentId/import with a
// multipart "file".
func (h *Handler) Import(c *gin.Context) {
	fieldID, ok := httpx.ParseIDParam(c, "fieldId")
	if !ok {
		return
	}
	contentID, ok := httpx.ParseIDParam(c, "contentId")
	if !ok {
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "FILE_REQUIRED", "multipart field \"file\" is required")
		return
	}
	src, err := fh.Open()
	if err != nil {
		handleError(c, err)
		return
	}
	defer src.Close()

	if err := h.service.Import(c.Request.Context(), fieldID, contentID, src, fh.Filename); err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"content_id": contentID, "file_name": filestorage.NormalizeFileName(fh.Filename)})
}

// UploadDraft handles POST /fields/:fieldId/drafts/:itemId/files
func (h *Handler) UploadDraft(c *gin.Context) {
	userID := httpx.MustUserID(c)
	if userID == 0 {
		return
	}
	fieldID, ok := httpx.ParseIDParam(c, "fieldId")
	if !ok {
		return
	}
	itemID, ok := httpx.ParseIDParam(c, "itemId")
	if !ok {
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "FILE_REQUIRED", "multipart field \"file\" is required")
		return
	}
	src, err := fh.Open()
	if err != nil {
		handleError(c, err)
		return
	}
	defer src.Close()

	f, err := h.service.UploadDraftFile(c.Request.Context(), fieldID, userID, itemID, fh.Filename, src)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, filestorage.FileJSON(f))
}

// LinkDraft handles POST /fields/:fieldId/drafts/:itemId/links
func (h *Handler) LinkDraft(c *gin.Context) {
	userID := httpx.MustUserID(c)
	if userID == 0 {
		return
	}
	fieldID, ok := httpx.ParseIDParam(c, "fieldId")
	if !ok {
		return
	}
	itemID, ok := httpx.ParseIDParam(c, "itemId")
	if !ok {
		return
	}

	var req LinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	if errs := validator.Validate(req); errs != nil {
		response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid link request", errs)
		return
	}

	f, err := h.service.LinkDraftFile(c.Request.Context(), fieldID, userID, itemID, req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, filestorage.FileJSON(f))
}

func parseRecordID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("recordId"), 10, 64)
	if err != nil || id < 0 {
		response.Error(c, http.StatusBadRequest, "INVALID_ID", "invalid recordId")
		return 0, false
	}
	return id, true
}

func handleError(c *gin.Context, err error) {
	switch {
	case IsNotFound(err):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, ErrUnsupportedFieldType):
		response.Error(c, http.StatusNotImplemented, "UNSUPPORTED_FIELD_TYPE", err.Error())
	case errors.Is(err, ErrRecordMismatch), errors.Is(err, ErrContentMismatch):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", err.Error())
	case errors.Is(err, ErrImportUnsupported):
		response.Error(c, http.StatusBadRequest, "IMPORT_UNSUPPORTED", err.Error())
	case errors.Is(err, filestorage.ErrFileTooLarge):
		response.Error(c, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", err.Error())
	case errors.Is(err, filestorage.ErrInvalidFileType):
		response.Error(c, http.StatusUnsupportedMediaType, "INVALID_FILE_TYPE", err.Error())
	case errors.Is(err, filestorage.ErrTooManyFiles), errors.Is(err, filestorage.ErrFileExists):
		response.Error(c, http.StatusConflict, "FILE_CONFLICT", err.Error())
	case errors.Is(err, filestorage.ErrEmptyFile),
		errors.Is(err, filestorage.ErrInvalidFileName),
		errors.Is(err, filestorage.ErrUnknownRepository),
		errors.Is(err, filestorage.ErrInvalidReference):
		response.Error(c, http.StatusBadRequest, "INVALID_FILE", err.Error())
	default:
		_ = c.Error(err)
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}
