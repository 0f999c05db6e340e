package handler

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/SaluSL/planimbly/internal/api/middleware"
	"github.com/SaluSL/planimbly/internal/roster"
	"github.com/SaluSL/planimbly/internal/service"
	pkgerrors "github.com/SaluSL/planimbly/pkg/errors"
	"github.com/SaluSL/planimbly/pkg/jwt"
	"github.com/SaluSL/planimbly/pkg/response"
)

// MustGetCaller 从 Gin 上下文中提取调用者身份。
// 如果 JWT 中间件未正确注入，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetCaller(c *gin.Context) (service.Caller, bool) {
	userID := c.GetString(middleware.ContextUserID)
	role := c.GetString(middleware.ContextRole)
	orgID := c.GetString(middleware.ContextOrganizationID)
	if userID == "" || role == "" || orgID == "" {
		response.Unauthorized(c, 10002, "未认证")
		return service.Caller{}, false
	}
	return service.Caller{EmployeeID: userID, OrganizationID: orgID, Role: role}, true
}

// GetClaims 从 Gin 上下文中取出完整的 Token 声明，未注入时返回 nil
func GetClaims(c *gin.Context) *jwt.Claims {
	v, exists := c.Get(middleware.ContextClaims)
	if !exists {
		return nil
	}
	claims, _ := v.(*jwt.Claims)
	return claims
}

// handleCommonError 处理各模块共有的错误，已写入响应时返回 true
func handleCommonError(c *gin.Context, err error) bool {
	switch {
	case errors.Is(err, service.ErrForbidden):
		response.Forbidden(c, 10003, "无权操作该员工的数据")
	case errors.Is(err, service.ErrInvalidDate):
		response.BadRequest(c, 10006, "日期格式无效，应为 YYYY-MM-DD")
	case errors.Is(err, service.ErrEmployeeNotFound):
		response.NotFound(c, 13001, "员工不存在")
	case errors.Is(err, service.ErrWorkplaceNotFound):
		response.NotFound(c, 12001, "工作场所不存在")
	case errors.Is(err, service.ErrShiftTypeNotFound):
		response.NotFound(c, 14001, "班次不存在")
	case errors.Is(err, pkgerrors.ErrLockTimeout):
		response.ServiceUnavailable(c, "资源繁忙，请稍后重试")
	default:
		return false
	}
	return true
}

// rejection 业务拒绝：409，details 为机器可读原因
func rejection(c *gin.Context, code int, err error) bool {
	reason := roster.ReasonOf(err)
	if reason == "" {
		return false
	}
	response.Conflict(c, code, err.Error(), string(reason))
	return true
}

// attachment 文件下载响应
func attachment(c *gin.Context, filename, contentType string, data []byte) {
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(filename))
	c.Data(http.StatusOK, contentType, data)
}
