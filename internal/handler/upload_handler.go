package handler

import (
	"errors"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/kylewspence/FinSight/internal/service"
	"github.com/kylewspence/FinSight/pkg/apperror"
	"github.com/kylewspence/FinSight/pkg/response"
)

const (
	csvFormField = "csvFile"
	// room for multipart headers and the other form fields
	multipartOverhead = 1 << 20
)

// UploadHandler handles brokerage CSV uploads
type UploadHandler struct {
	uploadService *service.UploadService
	maxBytes      int64
}

// NewUploadHandler creates a new UploadHandler
func NewUploadHandler(uploadService *service.UploadService, maxBytes int64) *UploadHandler {
	return &UploadHandler{
		uploadService: uploadService,
		maxBytes:      maxBytes,
	}
}

// UploadCSV ingests a holdings or activity export
// POST /api/uploads/csv
func (h *UploadHandler) UploadCSV(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes+multipartOverhead)

	file, header, err := c.Request.FormFile(csvFormField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			_ = c.Error(h.tooLarge())
		case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
			_ = c.Error(apperror.New(apperror.BadRequest, "No CSV file provided"))
		default:
			_ = c.Error(apperror.Wrap(apperror.BadRequest, "Could not read upload", err))
		}
		return
	}
	defer file.Close()

	if header.Size > h.maxBytes {
		_ = c.Error(h.tooLarge())
		return
	}
	if !isCSV(header.Filename, header.Header.Get("Content-Type")) {
		_ = c.Error(apperror.New(apperror.BadRequest, "Only CSV files are allowed"))
		return
	}

	summary, err := h.uploadService.IngestCSV(c.Request.Context(), id, c.PostForm("accountName"), header.Filename, file)
	if err != nil {
		_ = c.Error(err)
		return
	}

	response.Success(c, summary)
}

// ListHoldings returns the caller's imported holdings
// GET /api/investments/holdings
func (h *UploadHandler) ListHoldings(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}

	holdings, err := h.uploadService.ListHoldings(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}

	response.Success(c, holdings)
}

// ListInvestmentTransactions returns the caller's imported activity
// GET /api/investments/transactions
func (h *UploadHandler) ListInvestmentTransactions(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}

	txs, err := h.uploadService.ListTransactions(c.Request.Context(), id)
	if err != nil {
		_ = c.Error(err)
		return
	}

	response.Success(c, txs)
}

func (h *UploadHandler) tooLarge() error {
	return apperror.BadRequestf("File exceeds the %d MB limit", h.maxBytes>>20)
}

func isCSV(fileName, contentType string) bool {
	if strings.EqualFold(filepath.Ext(fileName), ".csv") {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	return err == nil && mediaType == "text/csv"
}

// RegisterRoutes registers upload and investment routes
func (h *UploadHandler) RegisterRoutes(rg *gin.RouterGroup, authMiddleware gin.HandlerFunc) {
	uploads := rg.Group("/uploads")
	uploads.Use(authMiddleware)
	{
		uploads.POST("/csv", h.UploadCSV)
	}

	investments := rg.Group("/investments")
	investments.Use(authMiddleware)
	{
		investments.GET("/holdings", h.ListHoldings)
		investments.GET("/transactions", h.ListInvestmentTransactions)
	}
}

