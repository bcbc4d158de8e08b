package service

import (
    "context"
    "strings"
    "unicode"

    "go.uber.org/zap"

    "github.com/d60-Lab/groupfeed/internal/auth"
    "github.com/d60-Lab/groupfeed/internal/cache"
    "github.com/d60-Lab/groupfeed/internal/model"
    "github.com/d60-Lab/groupfeed/internal/repository"
    "github.com/d60-Lab/groupfeed/pkg/logger"
)

// GroupInput 管理端创建/修改分组的请求
type GroupInput struct {
    Name        string `json:"name" binding:"required,max=128"`
    Slug        string `json:"slug" binding:"omitempty,max=128"`
    Year        string `json:"year" binding:"omitempty,max=16"`
    Description string `json:"description"`
}

// GroupService 分组管理，仅 admin 可用
type GroupService struct {
    groups repository.GroupRepository
    access repository.GroupAccessRepository
    cache  cache.GroupIDCache
}

func NewGroupService(groups repository.GroupRepository, access repository.GroupAccessRepository, c cache.GroupIDCache) *GroupService {
    if c == nil {
        c = cache.Nop{}
    }
    return &GroupService{groups: groups, access: access, cache: c}
}

func (s *GroupService) Create(ctx context.Context, actor auth.Identity, in GroupInput) (*model.Group, error) {
    if err := requireAdmin(actor); err != nil {
        return nil, err
    }
    g, err := groupFromInput(in)
    if err != nil {
        return nil, err
    }
    if err := s.groups.Create(ctx, g); err != nil {
        return nil, translate(err)
    }
    logger.Info("group created", zap.String("group", g.ID), zap.String("slug", g.Slug), zap.String("by", actor.ID))
    return g, nil
}

func (s *GroupService) Update(ctx context.Context, actor auth.Identity, id string, in GroupInput) (*model.Group, error) {
    if err := requireAdmin(actor); err != nil {
        return nil, err
    }
    g, err := groupFromInput(in)
    if err != nil {
        return nil, err
    }
    g.ID = id
    if err := s.groups.Update(ctx, g); err != nil {
        return nil, translate(err)
    }
    updated, err := s.groups.Get(ctx, id)
    return updated, translate(err)
}

// Delete 级联删除成员关系和组内动态，并清掉成员的可见分组缓存
func (s *GroupService) Delete(ctx context.Context, actor auth.Identity, id string) error {
    if err := requireAdmin(actor); err != nil {
        return err
    }
    members, err := s.access.ListMemberIDs(ctx, id)
    if err != nil {
        return err
    }
    if err := s.groups.Delete(ctx, id); err != nil {
        return translate(err)
    }
    s.cache.Invalidate(ctx, members...)
    logger.Info("group deleted", zap.String("group", id), zap.Int("members", len(members)), zap.String("by", actor.ID))
    return nil
}

func groupFromInput(in GroupInput) (*model.Group, error) {
    name := strings.TrimSpace(in.Name)
    if name == "" {
        return nil, invalid("group name is required")
    }
    slug := strings.TrimSpace(in.Slug)
    if slug == "" {
        slug = name
    }
    slug = Slugify(slug)
    if slug == "" {
        return nil, invalid("group slug is empty")
    }
    return &model.Group{
        Name:        name,
        Slug:        slug,
        Year:        strings.TrimSpace(in.Year),
        Description: strings.TrimSpace(in.Description),
    }, nil
}

// Slugify 小写字母数字，其余字符折叠为单个 '-'
func Slugify(s string) string {
    var b strings.Builder
    dash := false
    for _, r := range strings.ToLower(s) {
        if unicode.IsLetter(r) || unicode.IsDigit(r) {
            b.WriteRune(r)
            dash = false
            continue
        }
        if !dash && b.Len() > 0 {
            b.WriteByte('-')
            dash = true
        }
    }
    return strings.TrimSuffix(b.String(), "-")
}
