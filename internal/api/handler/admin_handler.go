package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/ahmednour/giving/internal/dto"
	"github.com/ahmednour/giving/internal/service"
	"github.com/ahmednour/giving/pkg/response"
)

// AdminHandler 管理端 HTTP 处理器
// 路由层已用 RoleAuth(admin) 把关，此处不再重复角色判断
type AdminHandler struct {
	userSvc    service.UserService
	requestSvc service.RequestService
	statsSvc   service.StatsService
}

// NewAdminHandler 创建 AdminHandler
func NewAdminHandler(userSvc service.UserService, requestSvc service.RequestService, statsSvc service.StatsService) *AdminHandler {
	return &AdminHandler{
		userSvc:    userSvc,
		requestSvc: requestSvc,
		statsSvc:   statsSvc,
	}
}

// ListUsers 用户列表
// GET /api/v1/admin/users
func (h *AdminHandler) ListUsers(c *gin.Context) {
	var req dto.UserListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	users, total, err := h.userSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	page, pageSize, _ := req.Normalize()
	response.OKPage(c, users, total, page, pageSize)
}

// GetUser 用户详情（含捐赠/申请统计）
// GET /api/v1/admin/users/:id
func (h *AdminHandler) GetUser(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "用户ID不能为空")
		return
	}

	detail, err := h.userSvc.GetDetail(c.Request.Context(), id)
	if err != nil {
		h.handleAdminError(c, err)
		return
	}

	response.OK(c, detail)
}

// SetUserActive 启用/停用账号
// PUT /api/v1/admin/users/:id/active
func (h *AdminHandler) SetUserActive(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "用户ID不能为空")
		return
	}

	var req struct {
		Active *bool `json:"active" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.userSvc.SetActive(c.Request.Context(), id, *req.Active, callerID); err != nil {
		h.handleAdminError(c, err)
		return
	}

	response.OK(c, nil)
}

// ListAllRequests 全量申请列表
// GET /api/v1/admin/requests
func (h *AdminHandler) ListAllRequests(c *gin.Context) {
	var req dto.RequestListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	requests, total, err := h.requestSvc.List(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	page, pageSize, _ := req.Normalize()
	response.OKPage(c, requests, total, page, pageSize)
}

// ListPendingRequests 审核队列（最早创建的排前面）
// GET /api/v1/admin/requests/pending
func (h *AdminHandler) ListPendingRequests(c *gin.Context) {
	var req dto.RequestListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	requests, total, err := h.requestSvc.ListPending(c.Request.Context(), &req)
	if err != nil {
		response.InternalError(c)
		return
	}

	page, pageSize, _ := req.Normalize()
	response.OKPage(c, requests, total, page, pageSize)
}

// GetRequestStats 申请统计
// GET /api/v1/admin/requests/stats
func (h *AdminHandler) GetRequestStats(c *gin.Context) {
	stats, err := h.requestSvc.Stats(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, stats)
}

// GetPlatformStats 平台总览统计
// GET /api/v1/admin/stats
func (h *AdminHandler) GetPlatformStats(c *gin.Context) {
	stats, err := h.statsSvc.Platform(c.Request.Context())
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, stats)
}

// handleAdminError 统一处理管理端业务错误
func (h *AdminHandler) handleAdminError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 11005, "用户不存在")
	case errors.Is(err, service.ErrUserSelfDeactivate):
		response.BadRequest(c, 11006, "不能停用自己的账号")
	default:
		response.InternalError(c)
	}
}
