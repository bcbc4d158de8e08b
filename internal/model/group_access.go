package model

import "time"

// GroupRole 组内角色，目前只使用 member
type GroupRole string

const GroupRoleMember GroupRole = "member"

// GroupAccess 用户可见分组（显式成员关系）
// admin 隐式拥有所有分组，不写入本表
type GroupAccess struct {
    ID      string    `gorm:"primaryKey;type:varchar(36)"`
    UserID  string    `gorm:"type:varchar(36);index:idx_group_access_user;uniqueIndex:ux_group_access_pair;not null"`
    GroupID string    `gorm:"type:varchar(36);index:idx_group_access_group;uniqueIndex:ux_group_access_pair;not null"`
    // 复合唯一键，避免重复授权
    // ux_group_access_pair = (user_id, group_id)
    Role      GroupRole `gorm:"type:varchar(16);not null;default:'member'"`
    CreatedAt time.Time
    UpdatedAt time.Time
}

func (GroupAccess) TableName() string { return "group_access" }
