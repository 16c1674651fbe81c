package model

// 捐赠状态
// 捐赠的 status 是其关联申请聚合状态的派生投影（donated > requested > available），
// 只能由申请生命周期重算写入，不允许脱离申请单独漂移
const (
	DonationStatusAvailable = "available" // 可申请
	DonationStatusRequested = "requested" // 存在活跃申请
	DonationStatusDonated   = "donated"   // 已完成捐赠
)

// Donation 捐赠物品表 — 对应 donations
type Donation struct {
	DonationID  string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"donation_id"`
	Title       string `gorm:"type:varchar(200);not null"                     json:"title"`
	Description string `gorm:"type:text;not null"                             json:"description"`
	ImageURL    string `gorm:"type:varchar(500)"                              json:"image_url,omitempty"`
	Category    string `gorm:"type:varchar(50);not null;default:'other'"      json:"category"`
	DonorID     string `gorm:"type:uuid;not null;index"                       json:"donor_id"`
	Status      string `gorm:"type:varchar(20);not null;default:'available'"  json:"status"`
	BaseModel

	// 关联
	Donor *User `gorm:"foreignKey:DonorID;references:UserID" json:"donor,omitempty"`
}

// TableName 指定表名
func (Donation) TableName() string { return "donations" }
