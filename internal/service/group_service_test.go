package service

import (
    "context"
    "testing"

    "github.com/alicebob/miniredis/v2"
    "github.com/redis/go-redis/v9"
    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/d60-Lab/groupfeed/internal/cache"
    "github.com/d60-Lab/groupfeed/internal/model"
)

func TestSlugify(t *testing.T) {
    tests := map[string]string{
        "2025 Leiding":        "2025-leiding",
        "  Kook--ploeg!! ":    "kook-ploeg",
        "Élève & Co":          "élève-co",
        "---":                 "",
        "Aspi's (16-17 jaar)": "aspi-s-16-17-jaar",
    }
    for in, want := range tests {
        assert.Equal(t, want, Slugify(in), in)
    }
}

func TestGroupService_CRUD(t *testing.T) {
    e := newEnv(t)
    ctx := context.Background()
    svc := NewGroupService(e.groups, e.access, nil)
    jan := e.member(t, "jan")

    _, err := svc.Create(ctx, jan, GroupInput{Name: "Leiding"})
    assert.ErrorIs(t, err, ErrForbidden)

    g, err := svc.Create(ctx, e.admin, GroupInput{Name: " 2025 Leiding ", Year: "2025"})
    require.NoError(t, err)
    assert.Equal(t, "2025 Leiding", g.Name)
    assert.Equal(t, "2025-leiding", g.Slug)

    _, err = svc.Create(ctx, e.admin, GroupInput{Name: "Andere naam", Slug: "2025 leiding"})
    assert.ErrorIs(t, err, ErrConflict)
    _, err = svc.Create(ctx, e.admin, GroupInput{Name: "!!!"})
    assert.ErrorIs(t, err, ErrInvalidInput)

    updated, err := svc.Update(ctx, e.admin, g.ID, GroupInput{Name: "Leiding 2025", Slug: "leiding", Description: "kern"})
    require.NoError(t, err)
    assert.Equal(t, "leiding", updated.Slug)
    assert.Equal(t, "kern", updated.Description)
    assert.Equal(t, "", updated.Year)

    _, err = svc.Update(ctx, e.admin, "missing", GroupInput{Name: "x"})
    assert.ErrorIs(t, err, ErrNotFound)
}

func TestGroupService_DeleteCascades(t *testing.T) {
    mr := miniredis.RunT(t)
    rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
    t.Cleanup(func() { _ = rdb.Close() })
    c := cache.NewRedisGroupCache(rdb, 0)

    e := newEnv(t, withCache(c))
    ctx := context.Background()
    svc := NewGroupService(e.groups, e.access, c)
    jan := e.member(t, "jan")
    g := e.group(t, "Leiding", "2025", jan)
    other := e.group(t, "Kookploeg", "2025", jan)

    visible, err := e.resolver.ListVisibleGroups(ctx, jan)
    require.NoError(t, err)
    require.Len(t, visible, 2)

    inGroup, err := e.content.CreatePost(ctx, jan, CreatePostInput{GroupID: &g, Content: strPtr("weg")})
    require.NoError(t, err)
    kept, err := e.content.CreatePost(ctx, jan, CreatePostInput{GroupID: &other, Content: strPtr("blijft")})
    require.NoError(t, err)
    _, err = e.content.CreateComment(ctx, jan, inGroup.ID, "ook weg", nil)
    require.NoError(t, err)
    _, err = e.content.ToggleLike(ctx, jan, inGroup.ID)
    require.NoError(t, err)

    assert.ErrorIs(t, svc.Delete(ctx, jan, g), ErrForbidden)
    require.NoError(t, svc.Delete(ctx, e.admin, g))
    assert.ErrorIs(t, svc.Delete(ctx, e.admin, g), ErrNotFound)

    assert.Zero(t, e.count(t, &model.GroupAccess{}, "group_id = ?", g))
    assert.Zero(t, e.count(t, &model.Post{}, "group_id = ?", g))
    assert.Zero(t, e.count(t, &model.Comment{}, "post_id = ?", inGroup.ID))
    assert.Zero(t, e.count(t, &model.Like{}, "post_id = ?", inGroup.ID))
    assert.Equal(t, int64(1), e.count(t, &model.Post{}, "id = ?", kept.ID))

    assert.False(t, mr.Exists("groupfeed:visible_groups:"+jan.ID))
    visible, err = e.resolver.ListVisibleGroups(ctx, jan)
    require.NoError(t, err)
    require.Len(t, visible, 1)
    assert.Equal(t, other, visible[0].ID)
}
