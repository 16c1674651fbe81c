package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/ahmednour/giving/internal/dto"
	"github.com/ahmednour/giving/internal/model"
	"github.com/ahmednour/giving/internal/service"
	pkgerrors "github.com/ahmednour/giving/pkg/errors"
	"github.com/ahmednour/giving/pkg/response"
)

// RequestHandler 申请模块 HTTP 处理器
type RequestHandler struct {
	requestSvc service.RequestService
}

// NewRequestHandler 创建 RequestHandler
func NewRequestHandler(requestSvc service.RequestService) *RequestHandler {
	return &RequestHandler{requestSvc: requestSvc}
}

// CreateRequest 发起申请（受赠者）
// POST /api/v1/requests
func (h *RequestHandler) CreateRequest(c *gin.Context) {
	var req dto.CreateRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	request, err := h.requestSvc.Create(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleRequestError(c, err)
		return
	}

	response.Created(c, request)
}

// GetRequest 申请详情（登录即可查看）
// GET /api/v1/requests/:id
func (h *RequestHandler) GetRequest(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "申请ID不能为空")
		return
	}

	request, err := h.requestSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleRequestError(c, err)
		return
	}

	response.OK(c, request)
}

// ListMyRequests 我发起的申请（受赠者）
// GET /api/v1/requests/mine
func (h *RequestHandler) ListMyRequests(c *gin.Context) {
	var req dto.RequestListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	requests, total, err := h.requestSvc.ListByReceiver(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleRequestError(c, err)
		return
	}

	page, pageSize, _ := req.Normalize()
	response.OKPage(c, requests, total, page, pageSize)
}

// ListIncomingRequests 我的捐赠收到的申请（捐赠者）
// GET /api/v1/requests/incoming
func (h *RequestHandler) ListIncomingRequests(c *gin.Context) {
	var req dto.RequestListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	requests, total, err := h.requestSvc.ListByDonor(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleRequestError(c, err)
		return
	}

	page, pageSize, _ := req.Normalize()
	response.OKPage(c, requests, total, page, pageSize)
}

// UpdateRequestStatus 流转申请状态（管理员或归属捐赠者）
// PUT /api/v1/requests/:id/status
func (h *RequestHandler) UpdateRequestStatus(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "申请ID不能为空")
		return
	}

	var req dto.UpdateRequestStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	role, ok := MustGetRole(c)
	if !ok {
		return
	}

	request, err := h.requestSvc.UpdateStatus(c.Request.Context(), id, &req, userID, role)
	if err != nil {
		h.handleRequestError(c, err)
		return
	}

	response.OK(c, request)
}

// DeleteRequest 删除申请（归属受赠者或管理员）
// DELETE /api/v1/requests/:id
func (h *RequestHandler) DeleteRequest(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "申请ID不能为空")
		return
	}

	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	role, ok := MustGetRole(c)
	if !ok {
		return
	}

	var receiverID *string
	if role != model.RoleAdmin {
		receiverID = &userID
	}

	if err := h.requestSvc.Delete(c.Request.Context(), id, receiverID); err != nil {
		h.handleRequestError(c, err)
		return
	}

	response.OK(c, nil)
}

// handleRequestError 统一处理申请模块业务错误
func (h *RequestHandler) handleRequestError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrRequestNotFound):
		response.NotFound(c, 13001, "申请不存在")
	case errors.Is(err, service.ErrRequestForbidden):
		response.NotFound(c, 13002, "申请不存在或无权操作")
	case errors.Is(err, service.ErrRequestInvalidStatus):
		response.BadRequest(c, 13003, "无效的申请状态")
	case errors.Is(err, service.ErrDonationUnavailable):
		response.Conflict(c, 13004, "该捐赠当前不可申请")
	case errors.Is(err, service.ErrDuplicateRequest):
		response.Conflict(c, 13005, "已存在针对该捐赠的进行中申请")
	case errors.Is(err, service.ErrTransitionDenied):
		response.Forbidden(c, 13006, "无权变更该申请的状态")
	case errors.Is(err, service.ErrDonationNotFound):
		response.NotFound(c, 12001, "捐赠不存在")
	case errors.Is(err, pkgerrors.ErrStateConflict):
		response.Conflict(c, 13007, "数据状态已变化，请刷新后重试")
	default:
		response.InternalError(c)
	}
}
