package repository

import (
    "context"

    "github.com/google/uuid"
    "gorm.io/gorm"

    "github.com/d60-Lab/groupfeed/internal/model"
)

type PostRepository interface {
    Create(ctx context.Context, p *model.Post) error
    Get(ctx context.Context, id string) (*model.Post, error)
    UpdateContent(ctx context.Context, id string, content *string) error
    // Delete 在一个事务内删除动态及其评论、点赞、回复
    Delete(ctx context.Context, id string) error
    // List groupID 为 nil 时为全站动态；按创建时间倒序
    List(ctx context.Context, groupID *string, offset, limit int) ([]*model.Post, error)
}

type postRepository struct{ db *gorm.DB }

func NewPostRepository(db *gorm.DB) PostRepository { return &postRepository{db: db} }

func (r *postRepository) Create(ctx context.Context, p *model.Post) error {
    if p.ID == "" {
        p.ID = uuid.New().String()
    }
    if p.Attachments == nil {
        p.Attachments = []model.Attachment{}
    }
    if p.Form == nil {
        p.Form = []model.FormField{}
    }
    return r.db.WithContext(ctx).Omit("Author").Create(p).Error
}

func (r *postRepository) Get(ctx context.Context, id string) (*model.Post, error) {
    var p model.Post
    if err := r.db.WithContext(ctx).Preload("Author").Where("id = ?", id).First(&p).Error; err != nil {
        return nil, err
    }
    return &p, nil
}

func (r *postRepository) UpdateContent(ctx context.Context, id string, content *string) error {
    res := r.db.WithContext(ctx).Model(&model.Post{}).Where("id = ?", id).Update("content", content)
    if res.Error != nil {
        return res.Error
    }
    if res.RowsAffected == 0 {
        return gorm.ErrRecordNotFound
    }
    return nil
}

func (r *postRepository) Delete(ctx context.Context, id string) error {
    return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
        var cnt int64
        if err := tx.Model(&model.Post{}).Where("id = ?", id).Count(&cnt).Error; err != nil {
            return err
        }
        if cnt == 0 {
            return gorm.ErrRecordNotFound
        }
        return deletePostsTx(tx, []string{id})
    })
}

func (r *postRepository) List(ctx context.Context, groupID *string, offset, limit int) ([]*model.Post, error) {
    var res []*model.Post
    q := r.db.WithContext(ctx).Preload("Author")
    if groupID == nil {
        q = q.Where("group_id IS NULL")
    } else {
        q = q.Where("group_id = ?", *groupID)
    }
    err := q.Order("created_at DESC").Order("id DESC").Offset(offset).Limit(limit).Find(&res).Error
    return res, err
}

// deletePostsTx 子记录先删，保证不留孤儿行
func deletePostsTx(tx *gorm.DB, postIDs []string) error {
    if len(postIDs) == 0 {
        return nil
    }
    if err := tx.Where("post_id IN ?", postIDs).Delete(&model.Like{}).Error; err != nil {
        return err
    }
    if err := tx.Where("post_id IN ?", postIDs).Delete(&model.PostResponse{}).Error; err != nil {
        return err
    }
    if err := tx.Where("post_id IN ?", postIDs).Delete(&model.Comment{}).Error; err != nil {
        return err
    }
    return tx.Where("id IN ?", postIDs).Delete(&model.Post{}).Error
}
