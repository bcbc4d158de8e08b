package model

import (
    "time"

    "gorm.io/datatypes"
)

// ResponseKind 回复类型
type ResponseKind string

const (
    ResponsePoll ResponseKind = "poll"
    ResponseForm ResponseKind = "form"
)

// PollAnswer poll 类型回复的载荷
type PollAnswer struct {
    OptionIndices []int `json:"option_indices"`
}

// FormAnswer form 类型回复的载荷：字段标签 -> 值
type FormAnswer map[string]string

// PostResponse 投票/表单回复
// 每个 (post, user, kind) 至多一行：再次提交即覆盖（重新投票）
type PostResponse struct {
    ID        string         `gorm:"primaryKey;type:varchar(36)"`
    PostID    string         `gorm:"type:varchar(36);uniqueIndex:ux_response_post_user_kind;not null"`
    UserID    string         `gorm:"type:varchar(36);uniqueIndex:ux_response_post_user_kind;not null"`
    Kind      ResponseKind   `gorm:"type:varchar(8);uniqueIndex:ux_response_post_user_kind;not null"`
    Data      datatypes.JSON `gorm:"not null"`
    CreatedAt time.Time
    UpdatedAt time.Time

    User User `gorm:"foreignKey:UserID"`
}

func (PostResponse) TableName() string { return "post_responses" }
