package documents

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"docquery-backend/internal/extract"
	"docquery-backend/internal/llm"
	"docquery-backend/internal/shared/server/middleware"
	"docquery-backend/internal/shared/server/respond"
	"docquery-backend/internal/shared/util"
)

// maxUploadBytes bounds the request body on document uploads.
const maxUploadBytes = 10 << 20

// Handler exposes the document HTTP surface.
type Handler struct {
	Svc *Service
}

// RegisterRoutes mounts document routes on an authenticated group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/documents", h.list)
	rg.GET("/dashboard", h.dashboard)
	rg.POST("/documents/upload", h.upload)
	rg.GET("/documents/:id", h.get)
	rg.DELETE("/documents/:id", h.delete)
	rg.POST("/documents/:id/query", h.query)
}

func (h *Handler) list(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	docs, err := h.Svc.List(c.Request.Context(), userID, "")
	if err != nil {
		h.fail(c, err)
		return
	}
	respond.OK(c, toResponses(docs))
}

func (h *Handler) dashboard(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	docs, err := h.Svc.List(c.Request.Context(), userID, c.Query("subject"))
	if err != nil {
		h.fail(c, err)
		return
	}
	respond.OK(c, toResponses(docs))
}

func (h *Handler) upload(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_input", "A PDF file is required", nil)
		return
	}

	fileName, err := util.SanitizeFileName(fileHeader.Filename)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_input", "Invalid file name", nil)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_input", "Could not read the uploaded file", nil)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_input", "Could not read the uploaded file", nil)
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")
	doc, err := h.Svc.Ingest(c.Request.Context(), userID, fileName, contentType, data)
	if err != nil {
		h.fail(c, err)
		return
	}

	c.Set(middleware.DocumentIDKey, strconv.FormatInt(doc.ID, 10))
	respond.JSON(c, http.StatusCreated, toResponse(doc))
}

func (h *Handler) get(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	docID, err := parseDocumentID(c)
	if err != nil {
		respond.Error(c, http.StatusNotFound, "not_found", "Document not found", nil)
		return
	}
	c.Set(middleware.DocumentIDKey, c.Param("id"))

	doc, err := h.Svc.Get(c.Request.Context(), userID, docID)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond.OK(c, toResponse(doc))
}

func (h *Handler) delete(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	docID, err := parseDocumentID(c)
	if err != nil {
		respond.Error(c, http.StatusNotFound, "not_found", "Document not found", nil)
		return
	}
	c.Set(middleware.DocumentIDKey, c.Param("id"))

	if err := h.Svc.Delete(c.Request.Context(), userID, docID); err != nil {
		h.fail(c, err)
		return
	}
	respond.OK(c, gin.H{"message": "Document deleted successfully"})
}

type queryRequest struct {
	Question string `json:"question"`
}

func (h *Handler) query(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	docID, err := parseDocumentID(c)
	if err != nil {
		respond.Error(c, http.StatusNotFound, "not_found", "Document not found", nil)
		return
	}
	c.Set(middleware.DocumentIDKey, c.Param("id"))

	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_input", "A question is required", nil)
		return
	}

	q, err := h.Svc.Ask(c.Request.Context(), userID, docID, req.Question)
	if err != nil {
		h.fail(c, err)
		return
	}
	respond.OK(c, gin.H{
		"question":  q.Question,
		"answer":    q.Answer,
		"timestamp": q.Timestamp.Format(time.RFC3339),
	})
}

// fail maps pipeline errors onto HTTP statuses. Gateway failures surface as
// 5xx so callers can distinguish their own mistakes from backend trouble.
func (h *Handler) fail(c *gin.Context, err error) {
	var backendErr *llm.BackendError
	switch {
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "invalid_input", err.Error(), nil)
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "Document not found", nil)
	case errors.Is(err, extract.ErrInvalidDocument):
		respond.Error(c, http.StatusInternalServerError, "extraction_failed", "Could not extract text from the document", nil)
	case errors.Is(err, ErrMetadata):
		respond.Error(c, http.StatusInternalServerError, "metadata_failed", "Could not extract document metadata", nil)
	case errors.Is(err, ErrPersistence):
		respond.Error(c, http.StatusInternalServerError, "persistence_failed", "Could not record the result", nil)
	case errors.Is(err, llm.ErrNotConfigured):
		respond.Error(c, http.StatusInternalServerError, "llm_not_configured", "Language model backend is not configured", nil)
	case errors.Is(err, llm.ErrTimeout):
		respond.Error(c, http.StatusGatewayTimeout, "llm_timeout", "Language model backend timed out", nil)
	case errors.Is(err, llm.ErrUnavailable):
		respond.Error(c, http.StatusServiceUnavailable, "llm_unavailable", "Language model backend is unavailable", nil)
	case errors.As(err, &backendErr), errors.Is(err, llm.ErrMalformedResponse):
		respond.Error(c, http.StatusBadGateway, "llm_error", "Language model backend returned an unexpected response", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal", "Something went wrong", nil)
	}
}

func parseDocumentID(c *gin.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}

type documentResponse struct {
	ID           int64           `json:"id"`
	Title        string          `json:"title"`
	Subject      string          `json:"subject"`
	Content      string          `json:"content"`
	Summary      string          `json:"summary"`
	UploadedDate string          `json:"uploadedDate"`
	LastViewed   *string         `json:"lastViewed"`
	Queries      []queryResponse `json:"queries"`
}

type queryResponse struct {
	Question  string `json:"question"`
	Answer    string `json:"answer"`
	Timestamp string `json:"timestamp"`
}

func toResponse(doc Document) documentResponse {
	resp := documentResponse{
		ID:           doc.ID,
		Title:        doc.Title,
		Subject:      doc.Subject,
		Content:      doc.Content,
		Summary:      doc.Summary,
		UploadedDate: doc.UploadedAt.Format(time.RFC3339),
		Queries:      make([]queryResponse, 0, len(doc.Queries)),
	}
	if doc.LastViewed != nil {
		formatted := doc.LastViewed.Format(time.RFC3339)
		resp.LastViewed = &formatted
	}
	for _, q := range doc.Queries {
		resp.Queries = append(resp.Queries, queryResponse{
			Question:  q.Question,
			Answer:    q.Answer,
			Timestamp: q.Timestamp.Format(time.RFC3339),
		})
	}
	return resp
}

func toResponses(docs []Document) []documentResponse {
	out := make([]documentResponse, 0, len(docs))
	for _, doc := range docs {
		out = append(out, toResponse(doc))
	}
	return out
}
