// Package api wires the service layer to gin routes: POST /metadata
// (synchronous collection) and GET /metadata (read-or-schedule), both
// mounted under the caller's route group (/api/v1 in production).
package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/akshayg147/metadata-inventory-service/internal/canonical"
	"github.com/akshayg147/metadata-inventory-service/internal/fetcher"
	"github.com/akshayg147/metadata-inventory-service/internal/platform/apierr"
	"github.com/akshayg147/metadata-inventory-service/internal/platform/logger"
	"github.com/akshayg147/metadata-inventory-service/internal/service"
)

// Handler exposes the metadata endpoints bound to one Service.
type Handler struct {
	svc *service.Service
	log logger.Logger
}

// NewHandler builds a Handler.
func NewHandler(svc *service.Service, log logger.Logger) *Handler {
	return &Handler{svc: svc, log: log}
}

// Register mounts the metadata routes onto router.
func (h *Handler) Register(router gin.IRouter) {
	router.POST("/metadata", h.createMetadata)
	router.GET("/metadata", h.getMetadata)
}

type createRequest struct {
	URL string `json:"url" binding:"required"`
}

type pendingResponse struct {
	URL     string `json:"url"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// createMetadata handles POST /metadata: collects rawURL synchronously
// and returns the stored record with 201. A canonicalization failure maps
// to 400; a fetch or store failure maps to 500.
func (h *Handler) createMetadata(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierr.RespondBadRequest(c, "url is required")
		return
	}

	record, err := h.svc.CreateMetadata(c.Request.Context(), req.URL)
	if err != nil {
		h.respondCreateError(c, err)
		return
	}

	c.JSON(http.StatusCreated, record)
}

func (h *Handler) respondCreateError(c *gin.Context, err error) {
	if errors.Is(err, canonical.ErrInvalidURL) {
		apierr.RespondBadRequest(c, "invalid url")
		return
	}

	var collErr *fetcher.CollectionError
	if errors.As(err, &collErr) {
		h.log.Warn("create metadata fetch failed", logger.String("reason", collErr.Reason), logger.Error(err))
		apierr.RespondInternal(c, "failed to collect url")
		return
	}

	h.log.Error("create metadata failed", logger.Error(err))
	apierr.RespondInternal(c, "internal server error")
}

// getMetadata handles GET /metadata?url=...: returns the completed record
// with 200, or schedules collection and returns 202 with {"status":
// "pending"} if it isn't available yet. A missing or invalid url query
// parameter is a 400; an internal failure is a 500.
func (h *Handler) getMetadata(c *gin.Context) {
	rawURL := strings.TrimSpace(c.Query("url"))
	if rawURL == "" {
		apierr.RespondBadRequest(c, "url query parameter is required")
		return
	}

	record, found, err := h.svc.GetMetadata(c.Request.Context(), rawURL)
	if err != nil {
		if errors.Is(err, canonical.ErrInvalidURL) {
			apierr.RespondBadRequest(c, "invalid url")
			return
		}
		h.log.Error("get metadata failed", logger.Error(err))
		apierr.RespondInternal(c, "internal server error")
		return
	}

	if found {
		c.JSON(http.StatusOK, record)
		return
	}

	canonicalURL, _ := canonical.Canonicalize(rawURL)
	c.JSON(http.StatusAccepted, pendingResponse{
		URL:     canonicalURL,
		Status:  "pending",
		Message: "collection scheduled; retry shortly",
	})
}
