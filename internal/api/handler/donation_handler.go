package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/ahmednour/giving/internal/dto"
	"github.com/ahmednour/giving/internal/service"
	"github.com/ahmednour/giving/pkg/response"
)

// DonationHandler 捐赠模块 HTTP 处理器
type DonationHandler struct {
	donationSvc service.DonationService
}

// NewDonationHandler 创建 DonationHandler
func NewDonationHandler(donationSvc service.DonationService) *DonationHandler {
	return &DonationHandler{donationSvc: donationSvc}
}

// CreateDonation 发布捐赠
// POST /api/v1/donations
func (h *DonationHandler) CreateDonation(c *gin.Context) {
	var req dto.CreateDonationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	donation, err := h.donationSvc.Create(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleDonationError(c, err)
		return
	}

	response.Created(c, donation)
}

// ListDonations 捐赠列表（公开）
// GET /api/v1/donations
func (h *DonationHandler) ListDonations(c *gin.Context) {
	var req dto.DonationListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	donations, total, err := h.donationSvc.List(c.Request.Context(), &req)
	if err != nil {
		h.handleDonationError(c, err)
		return
	}

	page, pageSize, _ := req.Normalize()
	response.OKPage(c, donations, total, page, pageSize)
}

// GetDonation 捐赠详情（公开）
// GET /api/v1/donations/:id
func (h *DonationHandler) GetDonation(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "捐赠ID不能为空")
		return
	}

	donation, err := h.donationSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleDonationError(c, err)
		return
	}

	response.OK(c, donation)
}

// UpdateDonation 更新捐赠（归属捐赠者或管理员）
// PUT /api/v1/donations/:id
func (h *DonationHandler) UpdateDonation(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "捐赠ID不能为空")
		return
	}

	var req dto.UpdateDonationRequest
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

	donation, err := h.donationSvc.Update(c.Request.Context(), id, &req, ownershipScope(userID, role))
	if err != nil {
		h.handleDonationError(c, err)
		return
	}

	response.OK(c, donation)
}

// DeleteDonation 删除捐赠（归属捐赠者或管理员）
// DELETE /api/v1/donations/:id
func (h *DonationHandler) DeleteDonation(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "捐赠ID不能为空")
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

	if err := h.donationSvc.Delete(c.Request.Context(), id, ownershipScope(userID, role)); err != nil {
		h.handleDonationError(c, err)
		return
	}

	response.OK(c, nil)
}

// ListMyDonations 我发布的捐赠
// GET /api/v1/donations/mine
func (h *DonationHandler) ListMyDonations(c *gin.Context) {
	var req dto.DonationListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	donations, total, err := h.donationSvc.ListByDonor(c.Request.Context(), userID, &req)
	if err != nil {
		h.handleDonationError(c, err)
		return
	}

	page, pageSize, _ := req.Normalize()
	response.OKPage(c, donations, total, page, pageSize)
}

// ListPendingOverview 我的捐赠中仍有待处理申请的部分
// GET /api/v1/donations/pending-requests
func (h *DonationHandler) ListPendingOverview(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	role, ok := MustGetRole(c)
	if !ok {
		return
	}

	donations, err := h.donationSvc.WithPendingRequests(c.Request.Context(), ownershipScope(userID, role))
	if err != nil {
		h.handleDonationError(c, err)
		return
	}

	response.OK(c, gin.H{"list": donations})
}

// GetDonationStats 捐赠统计（公开）
// GET /api/v1/donations/stats
func (h *DonationHandler) GetDonationStats(c *gin.Context) {
	stats, err := h.donationSvc.Stats(c.Request.Context())
	if err != nil {
		h.handleDonationError(c, err)
		return
	}

	response.OK(c, stats)
}

// handleDonationError 统一处理捐赠模块业务错误
func (h *DonationHandler) handleDonationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrDonationNotFound):
		response.NotFound(c, 12001, "捐赠不存在")
	case errors.Is(err, service.ErrDonationForbidden):
		response.NotFound(c, 12002, "捐赠不存在或无权操作")
	case errors.Is(err, service.ErrDonationNoFields):
		response.BadRequest(c, 12003, "没有需要更新的字段")
	default:
		response.InternalError(c)
	}
}
