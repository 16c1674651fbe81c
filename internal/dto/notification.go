package dto

// NotificationResponse 通知展示信息
type NotificationResponse struct {
	ID        string `json:"id"`
	Message   string `json:"message"`
	IsRead    bool   `json:"is_read"`
	CreatedAt string `json:"created_at"`
}

// MarkAllReadResponse 批量已读响应
type MarkAllReadResponse struct {
	Updated int64 `json:"updated"`
}
