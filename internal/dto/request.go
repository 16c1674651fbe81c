package dto

// CreateRequestRequest 创建申请请求
type CreateRequestRequest struct {
	DonationID string `json:"donation_id" binding:"required,uuid"`
	Message    string `json:"message" binding:"omitempty,max=500"`
}

// UpdateRequestStatusRequest 申请状态流转请求
type UpdateRequestStatusRequest struct {
	Status     string `json:"status" binding:"required"`
	AdminNotes string `json:"admin_notes" binding:"omitempty,max=500"`
}

// RequestListRequest 申请列表查询
type RequestListRequest struct {
	PageQuery
	Status string `form:"status" binding:"omitempty,oneof=pending approved rejected completed"`
}

// RequestDonationInfo 申请中内嵌的捐赠展示信息
type RequestDonationInfo struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	ImageURL    string `json:"image_url,omitempty"`
	Category    string `json:"category"`
	DonorID     string `json:"donor_id"`
	DonorName   string `json:"donor_name,omitempty"`
}

// RequestDetailResponse 申请详情（含捐赠与申请人展示信息）
type RequestDetailResponse struct {
	ID         string               `json:"id"`
	Status     string               `json:"status"`
	Message    string               `json:"message,omitempty"`
	AdminNotes string               `json:"admin_notes,omitempty"`
	Donation   *RequestDonationInfo `json:"donation,omitempty"`
	Receiver   *UserBrief           `json:"receiver,omitempty"`
	CreatedAt  string               `json:"created_at"`
	UpdatedAt  string               `json:"updated_at"`
}

// RequestStatsResponse 申请统计响应
type RequestStatsResponse struct {
	TotalRequests     int64 `json:"total_requests"`
	PendingRequests   int64 `json:"pending_requests"`
	ApprovedRequests  int64 `json:"approved_requests"`
	RejectedRequests  int64 `json:"rejected_requests"`
	CompletedRequests int64 `json:"completed_requests"`
	TotalReceivers    int64 `json:"total_receivers"`
}
