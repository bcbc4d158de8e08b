package repository

import (
    "errors"
    "strings"

    "gorm.io/gorm"
)

// ErrDuplicate 违反唯一约束
var ErrDuplicate = errors.New("duplicate record")

func isDuplicate(err error) bool {
    if err == nil {
        return false
    }
    if errors.Is(err, gorm.ErrDuplicatedKey) {
        return true
    }
    msg := err.Error()
    return strings.Contains(msg, "UNIQUE constraint failed") ||
        strings.Contains(msg, "duplicate key value") ||
        strings.Contains(msg, "SQLSTATE 23505")
}

// IsNotFound 是否为记录不存在
func IsNotFound(err error) bool { return errors.Is(err, gorm.ErrRecordNotFound) }
