package dto

// UserResponse 用户展示信息
type UserResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	IsActive  bool   `json:"is_active"`
	CreatedAt string `json:"created_at"`
}

// UpdateProfileRequest 更新个人资料请求
type UpdateProfileRequest struct {
	Name  *string `json:"name" binding:"omitempty,max=100"`
	Email *string `json:"email" binding:"omitempty,email,max=255"`
}

// UserListRequest 用户列表查询（管理员）
type UserListRequest struct {
	PageQuery
}

// UserStatsResponse 单用户统计
type UserStatsResponse struct {
	TotalDonations int64 `json:"total_donations"`
	TotalRequests  int64 `json:"total_requests"`
}

// UserDetailResponse 用户详情（管理员视角，含统计）
type UserDetailResponse struct {
	User  UserResponse      `json:"user"`
	Stats UserStatsResponse `json:"stats"`
}
