package dto

// UserRoleStats 按角色的用户统计
type UserRoleStats struct {
	Total     int64 `json:"total"`
	Donors    int64 `json:"donors"`
	Receivers int64 `json:"receivers"`
	Admins    int64 `json:"admins"`
}

// PlatformMetrics 平台衍生指标（两位小数；分母为零时为 0）
type PlatformMetrics struct {
	SuccessRate            float64 `json:"success_rate"`
	AvgDonationsPerDonor   float64 `json:"average_donations_per_donor"`
	AvgRequestsPerReceiver float64 `json:"average_requests_per_receiver"`
}

// PlatformStatsResponse 平台统计响应（管理员）
type PlatformStatsResponse struct {
	Users      UserRoleStats        `json:"users"`
	Donations  DonationOverview     `json:"donations"`
	Requests   RequestStatsResponse `json:"requests"`
	Categories []CategoryCountItem  `json:"categories"`
	Metrics    PlatformMetrics      `json:"metrics"`
}
