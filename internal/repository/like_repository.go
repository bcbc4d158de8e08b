package repository

import (
    "context"
    "errors"

    "github.com/google/uuid"
    "gorm.io/gorm"

    "github.com/d60-Lab/groupfeed/internal/model"
)

type LikeRepository interface {
    // Toggle 已赞则取消，否则点赞；返回操作后的状态
    Toggle(ctx context.Context, postID, userID string) (bool, error)
    Count(ctx context.Context, postID string) (int64, error)
    // Likers 点赞用户名，按点赞时间正序
    Likers(ctx context.Context, postID string) ([]string, error)
    ListByPosts(ctx context.Context, postIDs []string) ([]*model.Like, error)
}

type likeRepository struct{ db *gorm.DB }

func NewLikeRepository(db *gorm.DB) LikeRepository { return &likeRepository{db: db} }

func (r *likeRepository) Toggle(ctx context.Context, postID, userID string) (bool, error) {
    liked := false
    err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
        var existing model.Like
        err := tx.Where("post_id = ? AND user_id = ?", postID, userID).First(&existing).Error
        switch {
        case err == nil:
            return tx.Where("id = ?", existing.ID).Delete(&model.Like{}).Error
        case errors.Is(err, gorm.ErrRecordNotFound):
            liked = true
            return tx.Omit("User").Create(&model.Like{ID: uuid.New().String(), PostID: postID, UserID: userID}).Error
        default:
            return err
        }
    })
    return liked, err
}

func (r *likeRepository) Count(ctx context.Context, postID string) (int64, error) {
    var cnt int64
    err := r.db.WithContext(ctx).Model(&model.Like{}).Where("post_id = ?", postID).Count(&cnt).Error
    return cnt, err
}

func (r *likeRepository) Likers(ctx context.Context, postID string) ([]string, error) {
    names := []string{}
    err := r.db.WithContext(ctx).
        Table("likes").
        Select("users.username").
        Joins("JOIN users ON likes.user_id = users.id").
        Where("likes.post_id = ?", postID).
        Order("likes.created_at ASC").
        Scan(&names).Error
    return names, err
}

func (r *likeRepository) ListByPosts(ctx context.Context, postIDs []string) ([]*model.Like, error) {
    var res []*model.Like
    if len(postIDs) == 0 {
        return res, nil
    }
    err := r.db.WithContext(ctx).Preload("User").
        Where("post_id IN ?", postIDs).
        Order("created_at ASC").
        Find(&res).Error
    return res, err
}
