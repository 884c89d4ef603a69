package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"credential-service/internal/usecase/provision"
	apperrors "credential-service/pkg/errors"
)

// ProvisionUsecase is the provisioning contract the handler drives.
type ProvisionUsecase interface {
	Provision(ctx context.Context, in provision.Request) (*provision.Response, error)
}

// ProvisionHandler handles HTTP requests for credential provisioning
type ProvisionHandler struct {
	uc  ProvisionUsecase
	log *zap.Logger
}

// NewProvisionHandler creates a new ProvisionHandler instance
func NewProvisionHandler(uc ProvisionUsecase, log *zap.Logger) *ProvisionHandler {
	return &ProvisionHandler{
		uc:  uc,
		log: log,
	}
}

// SendEmailRequest represents the HTTP request body for provisioning.
// Presence is validated downstream so the endpoint keeps its established
// error message for any missing field.
type SendEmailRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// MessageResponse represents a success response
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// SendEmail handles POST /api/send-email
func (h *ProvisionHandler) SendEmail(c *gin.Context) {
	var req SendEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		// An unreadable body and a missing field are the same failure to
		// the caller
		h.log.Warn("invalid send-email request body", zap.Error(err))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: provision.MsgMissingFields})
		return
	}

	h.log.Info("send-email request", zap.String("email", req.Email))

	resp, err := h.uc.Provision(c.Request.Context(), provision.Request{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: resp.Message})
}

// MethodNotAllowed handles any non-POST method on registered routes
func (h *ProvisionHandler) MethodNotAllowed(c *gin.Context) {
	c.JSON(http.StatusMethodNotAllowed, ErrorResponse{Error: provision.MsgMethodNotAllowed})
}

// handleError converts usecase errors to the endpoint's response contract
func (h *ProvisionHandler) handleError(c *gin.Context, err error) {
	switch e := err.(type) {
	case *apperrors.ValidationError:
		h.log.Warn("send-email rejected", zap.String("reason", e.Message))
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: e.Message})
	case *apperrors.UnavailableError:
		h.log.Error("send-email failed", zap.Error(err))
		c.JSON(e.HTTPStatus(), ErrorResponse{Error: e.Message})
	case *apperrors.InternalError:
		h.log.Error("send-email failed", zap.Error(err))
		c.JSON(e.HTTPStatus(), ErrorResponse{Error: e.Message})
	default:
		h.log.Error("send-email failed with unclassified error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: provision.MsgProcessingFailed})
	}
}
