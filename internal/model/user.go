package model

import (
	"time"

	"gorm.io/datatypes"
)

// Role 全站角色
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleMember Role = "member"
)

// PushKeys 浏览器订阅中的加密密钥
type PushKeys struct {
	P256dh string `json:"p256dh" binding:"required"`
	Auth   string `json:"auth" binding:"required"`
}

// PushSubscription 浏览器推送订阅描述（以 endpoint 唯一标识）
type PushSubscription struct {
	Endpoint string   `json:"endpoint" binding:"required,url"`
	Keys     PushKeys `json:"keys" binding:"required"`
}

// User 用户
type User struct {
	ID                 string                                `gorm:"primaryKey;type:varchar(36)" json:"id"`
	Username           string                                `gorm:"type:varchar(64);uniqueIndex;not null" json:"username"`
	Role               Role                                  `gorm:"type:varchar(16);not null;default:'member'" json:"role"`
	Email              string                                `gorm:"type:varchar(255)" json:"email,omitempty"`
	EmailVerified      bool                                  `gorm:"not null;default:false" json:"email_verified"`
	EmailNotifications bool                                  `gorm:"not null;default:false" json:"email_notifications"`
	PushSubscriptions  datatypes.JSONSlice[PushSubscription] `json:"-"`
	CreatedAt          time.Time                             `json:"created_at"`
	UpdatedAt          time.Time                             `json:"updated_at"`
}

func (User) TableName() string { return "users" }

func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

// WantsEmail 邮件通道：已验证邮箱且用户开启了邮件通知
func (u *User) WantsEmail() bool {
	return u.Email != "" && u.EmailVerified && u.EmailNotifications
}
