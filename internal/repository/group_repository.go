package repository

import (
    "context"

    "github.com/google/uuid"
    "gorm.io/gorm"

    "github.com/d60-Lab/groupfeed/internal/model"
)

type GroupRepository interface {
    Create(ctx context.Context, g *model.Group) error
    Update(ctx context.Context, g *model.Group) error
    // Delete 删除分组及其成员关系、组内全部动态（含评论/点赞/回复）
    Delete(ctx context.Context, id string) error
    Get(ctx context.Context, id string) (*model.Group, error)
    // ListAll 按 year 倒序、name 正序
    ListAll(ctx context.Context) ([]*model.Group, error)
    ListByIDs(ctx context.Context, ids []string) ([]*model.Group, error)
}

type groupRepository struct{ db *gorm.DB }

func NewGroupRepository(db *gorm.DB) GroupRepository { return &groupRepository{db: db} }

func (r *groupRepository) Create(ctx context.Context, g *model.Group) error {
    if g.ID == "" {
        g.ID = uuid.New().String()
    }
    err := r.db.WithContext(ctx).Create(g).Error
    if isDuplicate(err) {
        return ErrDuplicate
    }
    return err
}

func (r *groupRepository) Update(ctx context.Context, g *model.Group) error {
    res := r.db.WithContext(ctx).Model(&model.Group{}).Where("id = ?", g.ID).
        Updates(map[string]any{"name": g.Name, "slug": g.Slug, "year": g.Year, "description": g.Description})
    if isDuplicate(res.Error) {
        return ErrDuplicate
    }
    if res.Error != nil {
        return res.Error
    }
    if res.RowsAffected == 0 {
        return gorm.ErrRecordNotFound
    }
    return nil
}

func (r *groupRepository) Delete(ctx context.Context, id string) error {
    return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
        res := tx.Where("id = ?", id).Delete(&model.Group{})
        if res.Error != nil {
            return res.Error
        }
        if res.RowsAffected == 0 {
            return gorm.ErrRecordNotFound
        }
        if err := tx.Where("group_id = ?", id).Delete(&model.GroupAccess{}).Error; err != nil {
            return err
        }
        var postIDs []string
        if err := tx.Model(&model.Post{}).Where("group_id = ?", id).Pluck("id", &postIDs).Error; err != nil {
            return err
        }
        return deletePostsTx(tx, postIDs)
    })
}

func (r *groupRepository) Get(ctx context.Context, id string) (*model.Group, error) {
    var g model.Group
    if err := r.db.WithContext(ctx).Where("id = ?", id).First(&g).Error; err != nil {
        return nil, err
    }
    return &g, nil
}

func (r *groupRepository) ListAll(ctx context.Context) ([]*model.Group, error) {
    var res []*model.Group
    err := r.db.WithContext(ctx).Order("year DESC").Order("name ASC").Find(&res).Error
    return res, err
}

func (r *groupRepository) ListByIDs(ctx context.Context, ids []string) ([]*model.Group, error) {
    res := []*model.Group{}
    if len(ids) == 0 {
        return res, nil
    }
    err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("year DESC").Order("name ASC").Find(&res).Error
    return res, err
}
