package service

import (
    "context"

    "go.uber.org/zap"

    "github.com/d60-Lab/groupfeed/internal/auth"
    "github.com/d60-Lab/groupfeed/internal/cache"
    "github.com/d60-Lab/groupfeed/internal/model"
    "github.com/d60-Lab/groupfeed/internal/repository"
    "github.com/d60-Lab/groupfeed/pkg/logger"
)

// AccessResolver 决定用户可见/可写的分组
// admin 隐式属于所有分组；普通用户只看显式授权
type AccessResolver struct {
    groups repository.GroupRepository
    access repository.GroupAccessRepository
    users  repository.UserRepository
    cache  cache.GroupIDCache
}

func NewAccessResolver(groups repository.GroupRepository, access repository.GroupAccessRepository, users repository.UserRepository, c cache.GroupIDCache) *AccessResolver {
    if c == nil {
        c = cache.Nop{}
    }
    return &AccessResolver{groups: groups, access: access, users: users, cache: c}
}

// ListVisibleGroups 按 year 倒序、name 正序
func (r *AccessResolver) ListVisibleGroups(ctx context.Context, id auth.Identity) ([]*model.Group, error) {
    if err := requireIdentity(id); err != nil {
        return nil, err
    }
    if id.IsAdmin() {
        return r.groups.ListAll(ctx)
    }
    ids, err := r.groupIDs(ctx, id.ID)
    if err != nil {
        return nil, err
    }
    if len(ids) == 0 {
        return []*model.Group{}, nil
    }
    return r.groups.ListByIDs(ctx, ids)
}

func (r *AccessResolver) groupIDs(ctx context.Context, userID string) ([]string, error) {
    if ids, ok := r.cache.Get(ctx, userID); ok {
        return ids, nil
    }
    ids, err := r.access.ListGroupIDs(ctx, userID)
    if err != nil {
        return nil, err
    }
    r.cache.Set(ctx, userID, ids)
    return ids, nil
}

// CanAccess groupID 为 nil（全站动态）时总是 true；分组不存在时为 false
func (r *AccessResolver) CanAccess(ctx context.Context, id auth.Identity, groupID *string) (bool, error) {
    if id.ID == "" {
        return false, nil
    }
    if groupID == nil {
        return true, nil
    }
    if id.IsAdmin() {
        _, err := r.groups.Get(ctx, *groupID)
        if repository.IsNotFound(err) {
            return false, nil
        }
        return err == nil, err
    }
    return r.access.Exists(ctx, id.ID, *groupID)
}

// authorize 写入/读取前的分组校验。
// 普通用户对不存在或无权限的分组一律得到 ErrForbidden，无法探测分组是否存在
func (r *AccessResolver) authorize(ctx context.Context, id auth.Identity, groupID *string) error {
    if err := requireIdentity(id); err != nil {
        return err
    }
    if groupID == nil {
        return nil
    }
    if id.IsAdmin() {
        _, err := r.groups.Get(ctx, *groupID)
        return translate(err)
    }
    ok, err := r.access.Exists(ctx, id.ID, *groupID)
    if err != nil {
        return err
    }
    if !ok {
        return ErrForbidden
    }
    return nil
}

// Members 分组的显式成员（不含隐式 admin）
func (r *AccessResolver) Members(ctx context.Context, groupID string) ([]string, error) {
    return r.access.ListMemberIDs(ctx, groupID)
}

// Grant 授予成员资格，重复授权返回 ErrConflict
func (r *AccessResolver) Grant(ctx context.Context, actor auth.Identity, userID, groupID string) error {
    if err := requireAdmin(actor); err != nil {
        return err
    }
    if err := r.ensure(ctx, userID, groupID); err != nil {
        return err
    }
    if err := r.access.Create(ctx, userID, groupID); err != nil {
        return translate(err)
    }
    r.cache.Invalidate(ctx, userID)
    logger.Info("group access granted", zap.String("user", userID), zap.String("group", groupID), zap.String("by", actor.ID))
    return nil
}

func (r *AccessResolver) Revoke(ctx context.Context, actor auth.Identity, userID, groupID string) error {
    if err := requireAdmin(actor); err != nil {
        return err
    }
    if err := r.access.Delete(ctx, userID, groupID); err != nil {
        return translate(err)
    }
    r.cache.Invalidate(ctx, userID)
    logger.Info("group access revoked", zap.String("user", userID), zap.String("group", groupID), zap.String("by", actor.ID))
    return nil
}

// ListMembers 管理端查看分组成员
func (r *AccessResolver) ListMembers(ctx context.Context, actor auth.Identity, groupID string) ([]*model.User, error) {
    if err := requireAdmin(actor); err != nil {
        return nil, err
    }
    if _, err := r.groups.Get(ctx, groupID); err != nil {
        return nil, translate(err)
    }
    ids, err := r.access.ListMemberIDs(ctx, groupID)
    if err != nil {
        return nil, err
    }
    return r.users.ListByIDs(ctx, ids)
}

func (r *AccessResolver) ensure(ctx context.Context, userID, groupID string) error {
    if _, err := r.users.Get(ctx, userID); err != nil {
        return translate(err)
    }
    if _, err := r.groups.Get(ctx, groupID); err != nil {
        return translate(err)
    }
    return nil
}

// identityOf 将存储中的用户转为身份，用于代替收件人做访问校验
func identityOf(u *model.User) auth.Identity {
    return auth.Identity{ID: u.ID, Username: u.Username, Role: u.Role}
}
