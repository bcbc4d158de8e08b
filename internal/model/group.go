package model

import "time"

// Group 内部动态的受众分组（如 "2025 leiding"）
type Group struct {
    ID          string    `gorm:"primaryKey;type:varchar(36)" json:"id"`
    Name        string    `gorm:"type:varchar(128);not null" json:"name"`
    Slug        string    `gorm:"type:varchar(128);uniqueIndex;not null" json:"slug"`
    Year        string    `gorm:"type:varchar(16);index" json:"year,omitempty"`
    Description string    `gorm:"type:text" json:"description,omitempty"`
    CreatedAt   time.Time `json:"created_at"`
    UpdatedAt   time.Time `json:"updated_at"`
}

func (Group) TableName() string { return "groups" }
