package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/DolphinLong/dersdagitimprogrami-sub001/internal/dto"
	"github.com/DolphinLong/dersdagitimprogrami-sub001/internal/service"
	appErrors "github.com/DolphinLong/dersdagitimprogrami-sub001/pkg/errors"
	"github.com/DolphinLong/dersdagitimprogrami-sub001/pkg/response"
)

type authenticator interface {
	Login(ctx context.Context, req dto.LoginRequest) (*dto.LoginResponse, error)
}

// AuthHandler exposes the login endpoint.
type AuthHandler struct {
	service authenticator
}

// NewAuthHandler constructs the handler.
func NewAuthHandler(svc *service.AuthService) *AuthHandler {
	return &AuthHandler{service: svc}
}

// Login authenticates an operator and returns an access token.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid login payload"))
		return
	}
	resp, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, resp, nil)
}
