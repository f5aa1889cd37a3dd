package handler

import (
	"net/http"

	"visadesk_backend/internal/documents/service"
	"visadesk_backend/internal/documents/transport"
	"visadesk_backend/platform/httpkit"
	"visadesk_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

type Handler struct {
	svc *service.Service
	val *validator.Validator
}

func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{svc: svc, val: val}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.ListByCase)
	rg.POST("", h.Upload)
	rg.GET("/:id/download", h.DownloadURL)
	rg.DELETE("/:id", h.Delete)
}

// Upload accepts multipart form data: caseId, type, and the file itself.
func (h *Handler) Upload(c *gin.Context) {
	caseID, err := uuid.Parse(c.PostForm("caseId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "caseId is required", nil)
		return
	}
	docType := c.PostForm("type")
	if docType == "" {
		httpkit.Error(c, http.StatusBadRequest, "type is required", nil)
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "file is required", nil)
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	defer file.Close()

	identity := httpkit.MustGetIdentity(c)
	resp, err := h.svc.Upload(c.Request.Context(), service.UploadInput{
		CaseID:      caseID,
		Type:        docType,
		FileName:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		SizeBytes:   fileHeader.Size,
		Reader:      file,
		UploadedBy:  identity.UserID(),
	})
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.Created(c, resp)
}

func (h *Handler) ListByCase(c *gin.Context) {
	var req transport.ListDocumentsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	caseID, err := uuid.Parse(req.CaseID)
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	docs, err := h.svc.ListByCase(c.Request.Context(), caseID)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, docs)
}

func (h *Handler) DownloadURL(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	resp, err := h.svc.DownloadURL(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, resp)
}

func (h *Handler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	if err := h.svc.Delete(c.Request.Context(), id); httpkit.HandleError(c, err) {
		return
	}

	c.Status(http.StatusNoContent)
}
