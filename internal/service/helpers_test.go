package service

import (
    "context"
    "sort"
    "sync"
    "testing"

    "github.com/stretchr/testify/require"
    "gorm.io/gorm"

    "github.com/d60-Lab/groupfeed/internal/auth"
    "github.com/d60-Lab/groupfeed/internal/cache"
    "github.com/d60-Lab/groupfeed/internal/model"
    "github.com/d60-Lab/groupfeed/internal/notify"
    "github.com/d60-Lab/groupfeed/internal/repository"
    "github.com/d60-Lab/groupfeed/pkg/database"
)

type sent struct {
    kind    string // users | group | all
    group   string
    users   []string
    msg     notify.Message
    exclude []string
}

type recordingNotifier struct {
    mu    sync.Mutex
    calls []sent
}

func (n *recordingNotifier) record(s sent) notify.Report {
    n.mu.Lock()
    defer n.mu.Unlock()
    sort.Strings(s.users)
    n.calls = append(n.calls, s)
    return notify.Report{Recipients: len(s.users)}
}

func (n *recordingNotifier) SendToUsers(_ context.Context, ids []string, msg notify.Message, exclude ...string) notify.Report {
    return n.record(sent{kind: "users", users: append([]string(nil), ids...), msg: msg, exclude: exclude})
}

func (n *recordingNotifier) SendToGroup(_ context.Context, groupID string, msg notify.Message, exclude ...string) notify.Report {
    return n.record(sent{kind: "group", group: groupID, msg: msg, exclude: exclude})
}

func (n *recordingNotifier) SendToAll(_ context.Context, msg notify.Message, exclude ...string) notify.Report {
    return n.record(sent{kind: "all", msg: msg, exclude: exclude})
}

func (n *recordingNotifier) byKind(kind string) []sent {
    n.mu.Lock()
    defer n.mu.Unlock()
    var out []sent
    for _, c := range n.calls {
        if c.kind == kind {
            out = append(out, c)
        }
    }
    return out
}

type env struct {
    db        *gorm.DB
    users     repository.UserRepository
    groups    repository.GroupRepository
    access    repository.GroupAccessRepository
    posts     repository.PostRepository
    comments  repository.CommentRepository
    likes     repository.LikeRepository
    responses repository.ResponseRepository
    resolver  *AccessResolver
    content   *ContentService
    feed      *FeedService
    notifier  *recordingNotifier
    queue     *notify.Queue
    admin     auth.Identity
}

type envOption func(*FeedOptions, *cache.GroupIDCache)

func withAudience(a GlobalAudience) envOption {
    return func(o *FeedOptions, _ *cache.GroupIDCache) { o.GlobalAudience = a }
}

func withMentionAudience(a MentionAudience) envOption {
    return func(o *FeedOptions, _ *cache.GroupIDCache) { o.MentionAudience = a }
}

func withCache(c cache.GroupIDCache) envOption {
    return func(_ *FeedOptions, dst *cache.GroupIDCache) { *dst = c }
}

func newEnv(t *testing.T, opts ...envOption) *env {
    t.Helper()
    db := database.OpenTest(t)
    e := &env{
        db:        db,
        users:     repository.NewUserRepository(db),
        groups:    repository.NewGroupRepository(db),
        access:    repository.NewGroupAccessRepository(db),
        posts:     repository.NewPostRepository(db),
        comments:  repository.NewCommentRepository(db),
        likes:     repository.NewLikeRepository(db),
        responses: repository.NewResponseRepository(db),
        notifier:  &recordingNotifier{},
        queue:     notify.NewQueue(64),
    }
    feedOpts := FeedOptions{SystemUsername: "system", SearchLimit: 5}
    var c cache.GroupIDCache = cache.Nop{}
    for _, o := range opts {
        o(&feedOpts, &c)
    }
    e.resolver = NewAccessResolver(e.groups, e.access, e.users, c)
    e.content = NewContentService(e.resolver, e.posts, e.comments, e.likes, e.responses, ContentOptions{DefaultPageSize: 10, MaxPageSize: 20})
    e.feed = NewFeedService(e.content, e.resolver, e.users, e.groups, e.notifier, e.queue, feedOpts)

    stop := e.queue.Start(2)
    t.Cleanup(func() { _ = stop(context.Background()) })

    e.admin = e.user(t, "root", model.RoleAdmin)
    return e
}

func (e *env) user(t *testing.T, name string, role model.Role) auth.Identity {
    t.Helper()
    u := &model.User{Username: name, Role: role}
    require.NoError(t, e.users.Create(context.Background(), u))
    return identityOf(u)
}

func (e *env) member(t *testing.T, name string) auth.Identity {
    return e.user(t, name, model.RoleMember)
}

func (e *env) group(t *testing.T, name, year string, members ...auth.Identity) string {
    t.Helper()
    g := &model.Group{Name: name, Slug: Slugify(name), Year: year}
    require.NoError(t, e.groups.Create(context.Background(), g))
    for _, m := range members {
        require.NoError(t, e.access.Create(context.Background(), m.ID, g.ID))
    }
    return g.ID
}

func (e *env) count(t *testing.T, m interface{}, where string, args ...interface{}) int64 {
    t.Helper()
    var n int64
    require.NoError(t, e.db.Model(m).Where(where, args...).Count(&n).Error)
    return n
}

func strPtr(s string) *string { return &s }
