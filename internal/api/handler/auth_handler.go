package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/SaluSL/planimbly/internal/service"
	"github.com/SaluSL/planimbly/pkg/response"
)

// AuthHandler 会话模块 HTTP 处理器
type AuthHandler struct {
	authSvc service.AuthService
}

// NewAuthHandler 创建 AuthHandler
func NewAuthHandler(authSvc service.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

// Me 当前会话信息
// GET /api/v1/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	result, err := h.authSvc.Me(c.Request.Context(), caller, GetClaims(c))
	if err != nil {
		h.handleAuthError(c, err)
		return
	}

	response.OK(c, result)
}

// Logout 注销当前 Token
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	if _, ok := MustGetCaller(c); !ok {
		return
	}

	if err := h.authSvc.Logout(c.Request.Context(), GetClaims(c)); err != nil {
		h.handleAuthError(c, err)
		return
	}

	response.OK(c, nil)
}

func (h *AuthHandler) handleAuthError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSessionStoreUnavailable):
		response.ServiceUnavailable(c, "会话存储不可用，无法注销")
	default:
		if !handleCommonError(c, err) {
			response.InternalError(c)
		}
	}
}
