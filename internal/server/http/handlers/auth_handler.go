package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/qrloyalty/internal/domain/errors"
	"github.com/polkiloo/qrloyalty/internal/domain/model"
	pkgAuth "github.com/polkiloo/qrloyalty/internal/pkg/auth"
	"github.com/polkiloo/qrloyalty/internal/server/http/dto"
	"github.com/polkiloo/qrloyalty/internal/server/http/middleware"
)

// AuthHandler processes operator registration, login and account lookup.
type AuthHandler struct {
	facade AuthFacade
}

// NewAuthHandler creates AuthHandler instance.
func NewAuthHandler(facade AuthFacade) *AuthHandler {
	return &AuthHandler{facade: facade}
}

// Register handles POST /api/operator/register.
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.AuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	op, token, err := h.facade.Register(c.Request.Context(), req.Login, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, domainErrors.ErrInvalidCredentials):
			c.Status(http.StatusBadRequest)
		case errors.Is(err, domainErrors.ErrAlreadyExists):
			c.Status(http.StatusConflict)
		default:
			c.Status(http.StatusInternalServerError)
		}
		return
	}

	middleware.SetAuthCookie(c, token)
	c.JSON(http.StatusOK, toOperatorResponse(*op))
}

// Login handles POST /api/operator/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.AuthRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	op, token, err := h.facade.Authenticate(c.Request.Context(), req.Login, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, domainErrors.ErrInvalidCredentials):
			c.Status(http.StatusUnauthorized)
		default:
			c.Status(http.StatusInternalServerError)
		}
		return
	}

	middleware.SetAuthCookie(c, token)
	c.JSON(http.StatusOK, toOperatorResponse(*op))
}

// Me handles GET /api/operator/me.
func (h *AuthHandler) Me(c *gin.Context) {
	op, err := h.facade.Operator(c.Request.Context(), CurrentOperatorID(c))
	if err != nil {
		switch {
		case errors.Is(err, pkgAuth.ErrInvalidToken):
			c.Status(http.StatusUnauthorized)
		default:
			c.Status(http.StatusInternalServerError)
		}
		return
	}
	c.JSON(http.StatusOK, toOperatorResponse(*op))
}

func toOperatorResponse(op model.Operator) dto.OperatorResponse {
	resp := dto.OperatorResponse{ID: op.ID, Login: op.Login, Channel: op.Channel().String()}
	if !op.CreatedAt.IsZero() {
		created := op.CreatedAt
		resp.CreatedAt = &created
	}
	return resp
}
