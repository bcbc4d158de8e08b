package repository

import (
    "context"

    "github.com/google/uuid"
    "gorm.io/gorm"

    "github.com/d60-Lab/groupfeed/internal/model"
)

type GroupAccessRepository interface {
    // Create 授权；重复授权返回 ErrDuplicate，不会产生第二行
    Create(ctx context.Context, userID, groupID string) error
    Delete(ctx context.Context, userID, groupID string) error
    Exists(ctx context.Context, userID, groupID string) (bool, error)
    ListGroupIDs(ctx context.Context, userID string) ([]string, error)
    ListMemberIDs(ctx context.Context, groupID string) ([]string, error)
}

type groupAccessRepository struct {
    db *gorm.DB
}

func NewGroupAccessRepository(db *gorm.DB) GroupAccessRepository { return &groupAccessRepository{db: db} }

func (r *groupAccessRepository) Create(ctx context.Context, userID, groupID string) error {
    a := &model.GroupAccess{ID: uuid.New().String(), UserID: userID, GroupID: groupID, Role: model.GroupRoleMember}
    err := r.db.WithContext(ctx).Create(a).Error
    if isDuplicate(err) {
        return ErrDuplicate
    }
    return err
}

func (r *groupAccessRepository) Delete(ctx context.Context, userID, groupID string) error {
    res := r.db.WithContext(ctx).
        Where("user_id = ? AND group_id = ?", userID, groupID).
        Delete(&model.GroupAccess{})
    if res.Error != nil {
        return res.Error
    }
    if res.RowsAffected == 0 {
        return gorm.ErrRecordNotFound
    }
    return nil
}

func (r *groupAccessRepository) Exists(ctx context.Context, userID, groupID string) (bool, error) {
    var cnt int64
    if err := r.db.WithContext(ctx).
        Model(&model.GroupAccess{}).
        Where("user_id = ? AND group_id = ?", userID, groupID).
        Count(&cnt).Error; err != nil {
        return false, err
    }
    return cnt > 0, nil
}

func (r *groupAccessRepository) ListGroupIDs(ctx context.Context, userID string) ([]string, error) {
    ids := []string{}
    err := r.db.WithContext(ctx).Model(&model.GroupAccess{}).Where("user_id = ?", userID).Pluck("group_id", &ids).Error
    return ids, err
}

func (r *groupAccessRepository) ListMemberIDs(ctx context.Context, groupID string) ([]string, error) {
    ids := []string{}
    err := r.db.WithContext(ctx).Model(&model.GroupAccess{}).Where("group_id = ?", groupID).Pluck("user_id", &ids).Error
    return ids, err
}
