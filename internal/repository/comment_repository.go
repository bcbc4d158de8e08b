package repository

import (
    "context"

    "github.com/google/uuid"
    "gorm.io/gorm"

    "github.com/d60-Lab/groupfeed/internal/model"
)

type CommentRepository interface {
    Create(ctx context.Context, c *model.Comment) error
    Get(ctx context.Context, id string) (*model.Comment, error)
    UpdateContent(ctx context.Context, id, content string) error
    // Delete 删除评论及其回复
    Delete(ctx context.Context, id string) error
    // ListByPosts 按创建时间正序
    ListByPosts(ctx context.Context, postIDs []string) ([]*model.Comment, error)
}

type commentRepository struct{ db *gorm.DB }

func NewCommentRepository(db *gorm.DB) CommentRepository { return &commentRepository{db: db} }

func (r *commentRepository) Create(ctx context.Context, c *model.Comment) error {
    if c.ID == "" {
        c.ID = uuid.New().String()
    }
    return r.db.WithContext(ctx).Omit("Author").Create(c).Error
}

func (r *commentRepository) Get(ctx context.Context, id string) (*model.Comment, error) {
    var c model.Comment
    if err := r.db.WithContext(ctx).Preload("Author").Where("id = ?", id).First(&c).Error; err != nil {
        return nil, err
    }
    return &c, nil
}

func (r *commentRepository) UpdateContent(ctx context.Context, id, content string) error {
    res := r.db.WithContext(ctx).Model(&model.Comment{}).Where("id = ?", id).Update("content", content)
    if res.Error != nil {
        return res.Error
    }
    if res.RowsAffected == 0 {
        return gorm.ErrRecordNotFound
    }
    return nil
}

func (r *commentRepository) Delete(ctx context.Context, id string) error {
    res := r.db.WithContext(ctx).Where("id = ? OR parent_id = ?", id, id).Delete(&model.Comment{})
    if res.Error != nil {
        return res.Error
    }
    if res.RowsAffected == 0 {
        return gorm.ErrRecordNotFound
    }
    return nil
}

func (r *commentRepository) ListByPosts(ctx context.Context, postIDs []string) ([]*model.Comment, error) {
    var res []*model.Comment
    if len(postIDs) == 0 {
        return res, nil
    }
    err := r.db.WithContext(ctx).Preload("Author").
        Where("post_id IN ?", postIDs).
        Order("created_at ASC").Order("id ASC").
        Find(&res).Error
    return res, err
}
