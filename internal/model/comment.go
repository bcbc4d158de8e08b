package model

import "time"

// Comment 评论。ParentID 为空为顶层评论，否则为对顶层评论的回复（只有两层）
type Comment struct {
    ID        string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
    PostID    string    `gorm:"type:varchar(36);index:idx_comment_post;not null" json:"post_id"`
    AuthorID  string    `gorm:"type:varchar(36);not null" json:"author_id"`
    ParentID  *string   `gorm:"type:varchar(36);index:idx_comment_parent" json:"parent_id"`
    Content   string    `gorm:"type:text;not null" json:"content"`
    CreatedAt time.Time `json:"created_at"`
    UpdatedAt time.Time `json:"updated_at"`

    Author User `gorm:"foreignKey:AuthorID" json:"-"`
}

func (Comment) TableName() string { return "comments" }

func (c *Comment) IsReply() bool { return c.ParentID != nil }
