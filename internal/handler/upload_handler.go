package handler

import (
	"net/http"

	"ballotbox/internal/services"
	"ballotbox/internal/transport/httpdto"
	ballot_errors "ballotbox/pkg/errors"

	"github.com/gin-gonic/gin"
)

type UploadHandler struct {
	service *services.UploadService
}

func NewUploadHandler(service *services.UploadService) *UploadHandler {
	return &UploadHandler{service: service}
}

// PresignCandidateImage handles POST /v1/uploads/candidate-image.
func (h *UploadHandler) PresignCandidateImage(c *gin.Context) {
	var req httpdto.PresignUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httpdto.NewErrorResponse("invalid request", "INVALID_REQUEST"))
		return
	}

	userID, ok := services.UserIDFromContext(c.Request.Context())
	if !ok {
		respondError(c, ballot_errors.ErrUnauthenticated)
		return
	}

	upload, err := h.service.PresignCandidateImage(c.Request.Context(), userID, req.ContentType, req.SizeBytes)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(upload))
}
