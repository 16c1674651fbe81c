package dto

// CreateDonationRequest 创建捐赠请求
type CreateDonationRequest struct {
	Title       string `json:"title" binding:"required,max=200"`
	Description string `json:"description" binding:"required"`
	ImageURL    string `json:"image_url" binding:"omitempty,max=500"`
	Category    string `json:"category" binding:"omitempty,max=50"`
}

// UpdateDonationRequest 更新捐赠请求；仅更新出现的字段
type UpdateDonationRequest struct {
	Title       *string `json:"title" binding:"omitempty,max=200"`
	Description *string `json:"description"`
	ImageURL    *string `json:"image_url" binding:"omitempty,max=500"`
	Category    *string `json:"category" binding:"omitempty,max=50"`
	Status      *string `json:"status" binding:"omitempty,oneof=available requested donated"`
}

// DonationListRequest 捐赠列表查询
type DonationListRequest struct {
	PageQuery
	Status   string `form:"status" binding:"omitempty,oneof=available requested donated"`
	Category string `form:"category"`
	Search   string `form:"search"`
}

// DonationResponse 捐赠展示信息
type DonationResponse struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	ImageURL    string     `json:"image_url,omitempty"`
	Category    string     `json:"category"`
	Status      string     `json:"status"`
	Donor       *UserBrief `json:"donor,omitempty"`
	CreatedAt   string     `json:"created_at"`
	UpdatedAt   string     `json:"updated_at"`
}

// DonationWithPendingResponse 带待处理申请数的捐赠
type DonationWithPendingResponse struct {
	DonationResponse
	PendingRequestsCount int64 `json:"pending_requests_count"`
}

// DonationOverview 捐赠总览统计
type DonationOverview struct {
	TotalDonations     int64 `json:"total_donations"`
	AvailableDonations int64 `json:"available_donations"`
	RequestedDonations int64 `json:"requested_donations"`
	CompletedDonations int64 `json:"completed_donations"`
	TotalDonors        int64 `json:"total_donors"`
}

// CategoryCountItem 按分类统计项
type CategoryCountItem struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
}

// DonationStatsResponse 捐赠统计响应
type DonationStatsResponse struct {
	Overview   DonationOverview    `json:"overview"`
	Categories []CategoryCountItem `json:"categories"`
}
