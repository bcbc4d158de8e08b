package repository

import (
    "context"
    "errors"

    "github.com/google/uuid"
    "gorm.io/datatypes"
    "gorm.io/gorm"

    "github.com/d60-Lab/groupfeed/internal/model"
)

type ResponseRepository interface {
    // ReplacePoll 删除该用户此前的投票；data 非空时写入新投票
    ReplacePoll(ctx context.Context, postID, userID string, data datatypes.JSON) error
    // UpsertForm 已有表单回复则覆盖，否则新增
    UpsertForm(ctx context.Context, postID, userID string, data datatypes.JSON) error
    ListByPosts(ctx context.Context, postIDs []string) ([]*model.PostResponse, error)
}

type responseRepository struct{ db *gorm.DB }

func NewResponseRepository(db *gorm.DB) ResponseRepository { return &responseRepository{db: db} }

func (r *responseRepository) ReplacePoll(ctx context.Context, postID, userID string, data datatypes.JSON) error {
    return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
        if err := tx.Where("post_id = ? AND user_id = ? AND kind = ?", postID, userID, model.ResponsePoll).
            Delete(&model.PostResponse{}).Error; err != nil {
            return err
        }
        if len(data) == 0 {
            return nil
        }
        return tx.Omit("User").Create(&model.PostResponse{
            ID: uuid.New().String(), PostID: postID, UserID: userID, Kind: model.ResponsePoll, Data: data,
        }).Error
    })
}

func (r *responseRepository) UpsertForm(ctx context.Context, postID, userID string, data datatypes.JSON) error {
    return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
        var existing model.PostResponse
        err := tx.Where("post_id = ? AND user_id = ? AND kind = ?", postID, userID, model.ResponseForm).First(&existing).Error
        switch {
        case err == nil:
            return tx.Model(&model.PostResponse{}).Where("id = ?", existing.ID).Update("data", data).Error
        case errors.Is(err, gorm.ErrRecordNotFound):
            return tx.Omit("User").Create(&model.PostResponse{
                ID: uuid.New().String(), PostID: postID, UserID: userID, Kind: model.ResponseForm, Data: data,
            }).Error
        default:
            return err
        }
    })
}

func (r *responseRepository) ListByPosts(ctx context.Context, postIDs []string) ([]*model.PostResponse, error) {
    var res []*model.PostResponse
    if len(postIDs) == 0 {
        return res, nil
    }
    err := r.db.WithContext(ctx).Preload("User").
        Where("post_id IN ?", postIDs).
        Order("created_at ASC").
        Find(&res).Error
    return res, err
}
