package model

import (
    "time"

    "gorm.io/datatypes"
)

// Attachment 已由上传组件落地的附件描述
type Attachment struct {
    Path         string `json:"path"`
    OriginalName string `json:"original_name"`
    MimeType     string `json:"mime_type"`
}

// Poll 投票
type Poll struct {
    Question      string   `json:"question"`
    Options       []string `json:"options"`
    AllowMultiple bool     `json:"allow_multiple"`
}

// FormField 自由填写表单中的一个字段
type FormField struct {
    Label    string   `json:"label" validate:"required,max=200"`
    Type     string   `json:"type" validate:"required,oneof=text textarea number select checkbox date"`
    Required bool     `json:"required"`
    Options  []string `json:"options,omitempty" validate:"required_if=Type select,dive,required"`
}

// Post 动态。GroupID 为空表示全站动态。
// Content 可为空：只带投票、表单或附件的动态
type Post struct {
    ID          string                          `gorm:"primaryKey;type:varchar(36)" json:"id"`
    AuthorID    string                          `gorm:"type:varchar(36);index:idx_post_author;not null" json:"author_id"`
    GroupID     *string                         `gorm:"type:varchar(36);index:idx_post_group_created" json:"group_id"`
    Content     *string                         `gorm:"type:text" json:"content"`
    Attachments datatypes.JSONSlice[Attachment] `gorm:"not null" json:"attachments"`
    Poll        datatypes.JSONType[*Poll]       `gorm:"not null" json:"poll"`
    Form        datatypes.JSONSlice[FormField]  `gorm:"not null" json:"form"`
    CreatedAt   time.Time                       `gorm:"index:idx_post_group_created" json:"created_at"`
    UpdatedAt   time.Time                       `json:"updated_at"`

    Author User `gorm:"foreignKey:AuthorID" json:"-"`
}

func (Post) TableName() string { return "posts" }

// PollData 解包投票，未设置时返回 nil
func (p *Post) PollData() *Poll { return p.Poll.Data() }
