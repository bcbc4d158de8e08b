package repository

import (
    "context"
    "strings"

    "github.com/google/uuid"
    "gorm.io/datatypes"
    "gorm.io/gorm"
    "gorm.io/gorm/clause"

    "github.com/d60-Lab/groupfeed/internal/model"
)

type UserRepository interface {
    Create(ctx context.Context, u *model.User) error
    Get(ctx context.Context, id string) (*model.User, error)
    ListByIDs(ctx context.Context, ids []string) ([]*model.User, error)
    ListAll(ctx context.Context) ([]*model.User, error)
    // FindByUsernames 忽略大小写匹配用户名
    FindByUsernames(ctx context.Context, names []string) ([]*model.User, error)
    SearchByPrefix(ctx context.Context, prefix, excludeUsername string, limit int) ([]*model.User, error)
    // AddPushSubscription 按 endpoint 去重，返回是否新增
    AddPushSubscription(ctx context.Context, userID string, sub model.PushSubscription) (bool, error)
    // RemovePushSubscriptions 删除给定 endpoint 的订阅，返回删除数量
    RemovePushSubscriptions(ctx context.Context, userID string, endpoints []string) (int, error)
    SetEmailNotifications(ctx context.Context, userID string, enabled bool) error
}

type userRepository struct{ db *gorm.DB }

func NewUserRepository(db *gorm.DB) UserRepository { return &userRepository{db: db} }

func (r *userRepository) Create(ctx context.Context, u *model.User) error {
    if u.ID == "" {
        u.ID = uuid.New().String()
    }
    if u.Role == "" {
        u.Role = model.RoleMember
    }
    if u.PushSubscriptions == nil {
        u.PushSubscriptions = []model.PushSubscription{}
    }
    err := r.db.WithContext(ctx).Create(u).Error
    if isDuplicate(err) {
        return ErrDuplicate
    }
    return err
}

func (r *userRepository) Get(ctx context.Context, id string) (*model.User, error) {
    var u model.User
    if err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
        return nil, err
    }
    return &u, nil
}

func (r *userRepository) ListByIDs(ctx context.Context, ids []string) ([]*model.User, error) {
    var res []*model.User
    if len(ids) == 0 {
        return res, nil
    }
    err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("username").Find(&res).Error
    return res, err
}

func (r *userRepository) ListAll(ctx context.Context) ([]*model.User, error) {
    var res []*model.User
    err := r.db.WithContext(ctx).Order("username").Find(&res).Error
    return res, err
}

// FindByUsernames 先精确匹配；没有精确命中的名字再忽略大小写匹配，
// 且只在唯一命中时采用（Jan 与 jan 并存时 @JAN 不通知任何人）
func (r *userRepository) FindByUsernames(ctx context.Context, names []string) ([]*model.User, error) {
    var res []*model.User
    if len(names) == 0 {
        return res, nil
    }
    if err := r.db.WithContext(ctx).Where("username IN ?", names).Find(&res).Error; err != nil {
        return nil, err
    }
    found := make(map[string]struct{}, len(res))
    for _, u := range res {
        found[u.Username] = struct{}{}
    }
    var lowered []string
    for _, n := range names {
        if _, ok := found[n]; !ok {
            lowered = append(lowered, strings.ToLower(n))
        }
    }
    if len(lowered) == 0 {
        return res, nil
    }
    var loose []*model.User
    if err := r.db.WithContext(ctx).Where("LOWER(username) IN ?", lowered).Find(&loose).Error; err != nil {
        return nil, err
    }
    byLower := make(map[string][]*model.User, len(loose))
    for _, u := range loose {
        k := strings.ToLower(u.Username)
        byLower[k] = append(byLower[k], u)
    }
    seen := make(map[string]struct{}, len(res))
    for _, u := range res {
        seen[u.ID] = struct{}{}
    }
    for _, k := range lowered {
        m := byLower[k]
        if len(m) != 1 {
            continue
        }
        if _, dup := seen[m[0].ID]; dup {
            continue
        }
        seen[m[0].ID] = struct{}{}
        res = append(res, m[0])
    }
    return res, nil
}

func (r *userRepository) SearchByPrefix(ctx context.Context, prefix, excludeUsername string, limit int) ([]*model.User, error) {
    var res []*model.User
    q := r.db.WithContext(ctx).
        Where(`LOWER(username) LIKE ? ESCAPE '\'`, escapeLike(strings.ToLower(prefix))+"%")
    if excludeUsername != "" {
        q = q.Where("LOWER(username) <> ?", strings.ToLower(excludeUsername))
    }
    err := q.Order("username").Limit(limit).Find(&res).Error
    return res, err
}

func (r *userRepository) AddPushSubscription(ctx context.Context, userID string, sub model.PushSubscription) (bool, error) {
    added := false
    err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
        u, err := lockUser(tx, userID)
        if err != nil {
            return err
        }
        for _, s := range u.PushSubscriptions {
            if s.Endpoint == sub.Endpoint {
                return nil
            }
        }
        subs := append(u.PushSubscriptions, sub)
        added = true
        return tx.Model(&model.User{}).Where("id = ?", userID).Update("push_subscriptions", subs).Error
    })
    return added, err
}

// RemovePushSubscriptions 在事务内重新读取订阅列表再写回，
// 两个并发的清理不会互相覆盖（postgres 行锁，sqlite 单写者）
func (r *userRepository) RemovePushSubscriptions(ctx context.Context, userID string, endpoints []string) (int, error) {
    if len(endpoints) == 0 {
        return 0, nil
    }
    drop := make(map[string]struct{}, len(endpoints))
    for _, e := range endpoints {
        drop[e] = struct{}{}
    }
    removed := 0
    err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
        u, err := lockUser(tx, userID)
        if err != nil {
            return err
        }
        kept := make(datatypes.JSONSlice[model.PushSubscription], 0, len(u.PushSubscriptions))
        for _, s := range u.PushSubscriptions {
            if _, ok := drop[s.Endpoint]; ok {
                removed++
                continue
            }
            kept = append(kept, s)
        }
        if removed == 0 {
            return nil
        }
        return tx.Model(&model.User{}).Where("id = ?", userID).
            Update("push_subscriptions", kept).Error
    })
    return removed, err
}

func (r *userRepository) SetEmailNotifications(ctx context.Context, userID string, enabled bool) error {
    res := r.db.WithContext(ctx).Model(&model.User{}).Where("id = ?", userID).Update("email_notifications", enabled)
    if res.Error != nil {
        return res.Error
    }
    if res.RowsAffected == 0 {
        return gorm.ErrRecordNotFound
    }
    return nil
}

func lockUser(tx *gorm.DB, userID string) (*model.User, error) {
    var u model.User
    err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", userID).First(&u).Error
    if err != nil {
        return nil, err
    }
    return &u, nil
}

func escapeLike(s string) string {
    return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
