package model

import "time"

// Like 点赞，(post_id, user_id) 唯一：存在即已赞
type Like struct {
    ID        string `gorm:"primaryKey;type:varchar(36)"`
    PostID    string `gorm:"type:varchar(36);uniqueIndex:ux_like_post_user;not null"`
    UserID    string `gorm:"type:varchar(36);uniqueIndex:ux_like_post_user;not null"`
    CreatedAt time.Time

    User User `gorm:"foreignKey:UserID"`
}

func (Like) TableName() string { return "likes" }
