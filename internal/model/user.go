package model

// 用户角色
const (
	RoleDonor    = "donor"    // 捐赠者：发布捐赠物品
	RoleReceiver = "receiver" // 受赠者：对捐赠物品发起申请
	RoleAdmin    = "admin"    // 管理员：平台审核与管理
)

// User 用户表 — 对应 users
// 角色在注册后不可变更
type User struct {
	UserID       string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"user_id"`
	Name         string `gorm:"type:varchar(100);not null"                     json:"name"`
	Email        string `gorm:"type:varchar(255);not null;uniqueIndex"         json:"email"`
	PasswordHash string `gorm:"type:varchar(255);not null"                     json:"-"`
	Role         string `gorm:"type:varchar(20);not null;default:'receiver'"   json:"role"`
	IsActive     bool   `gorm:"not null;default:true"                          json:"is_active"`
	BaseModel
}

// TableName 指定表名
func (User) TableName() string { return "users" }
