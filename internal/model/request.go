package model

// 申请状态机：pending → {approved, rejected}; approved → {completed, rejected}
// 参考实现不禁止从 rejected/completed 再次流转，此处保持一致
const (
	RequestStatusPending   = "pending"
	RequestStatusApproved  = "approved"
	RequestStatusRejected  = "rejected"
	RequestStatusCompleted = "completed"
)

// IsValidRequestStatus 校验申请状态取值
func IsValidRequestStatus(s string) bool {
	switch s {
	case RequestStatusPending, RequestStatusApproved, RequestStatusRejected, RequestStatusCompleted:
		return true
	}
	return false
}

// IsActiveRequestStatus 活跃申请：pending 或 approved
// 同一 (donation, receiver) 至多存在一条活跃申请
func IsActiveRequestStatus(s string) bool {
	return s == RequestStatusPending || s == RequestStatusApproved
}

// Request 受赠申请表 — 对应 requests
// donation_id 与 receiver_id 创建后不可变更
type Request struct {
	RequestID  string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"request_id"`
	DonationID string `gorm:"type:uuid;not null;index"                       json:"donation_id"`
	ReceiverID string `gorm:"type:uuid;not null;index"                       json:"receiver_id"`
	Message    string `gorm:"type:varchar(500)"                              json:"message,omitempty"`
	Status     string `gorm:"type:varchar(20);not null;default:'pending'"    json:"status"`
	AdminNotes string `gorm:"type:varchar(500)"                              json:"admin_notes,omitempty"`
	BaseModel

	// 关联
	Donation *Donation `gorm:"foreignKey:DonationID;references:DonationID" json:"donation,omitempty"`
	Receiver *User     `gorm:"foreignKey:ReceiverID;references:UserID"     json:"receiver,omitempty"`
}

// TableName 指定表名
func (Request) TableName() string { return "requests" }
