package service

import (
    "context"
    "sync"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/d60-Lab/groupfeed/internal/model"
    "github.com/d60-Lab/groupfeed/internal/notify"
)

// 端到端：A 在分组 G 发帖 "hello @B"
func TestCreatePost_BroadcastAndMention(t *testing.T) {
    e := newEnv(t)
    ctx := context.Background()
    a := e.member(t, "annelies")
    b := e.member(t, "bert")
    c := e.member(t, "chris")
    g := e.group(t, "Leiding", "2025", a, b, c)

    post, err := e.feed.CreatePost(ctx, a, CreatePostInput{GroupID: &g, Content: strPtr("hello @bert, groet van @annelies")})
    require.NoError(t, err)
    e.queue.Wait()

    var stored model.Post
    require.NoError(t, e.db.Where("id = ?", post.ID).First(&stored).Error)
    assert.Equal(t, a.ID, stored.AuthorID)
    require.NotNil(t, stored.GroupID)
    assert.Equal(t, g, *stored.GroupID)

    groups := e.notifier.byKind("group")
    require.Len(t, groups, 1)
    assert.Equal(t, g, groups[0].group)
    assert.Equal(t, []string{a.ID}, groups[0].exclude)
    assert.Equal(t, "New post in Leiding", groups[0].msg.Title)
    assert.Contains(t, groups[0].msg.Link, post.ID)

    mentions := e.notifier.byKind("users")
    require.Len(t, mentions, 1)
    assert.Equal(t, []string{b.ID}, mentions[0].users)
    assert.Equal(t, "annelies mentioned you", mentions[0].msg.Title)
    assert.Empty(t, e.notifier.byKind("all"))
}

func TestCreatePost_MentionSkipsUsersWithoutAccess(t *testing.T) {
    e := newEnv(t)
    ctx := context.Background()
    a := e.member(t, "annelies")
    outsider := e.member(t, "olaf")
    g := e.group(t, "Leiding", "2025", a)

    _, err := e.feed.CreatePost(ctx, a, CreatePostInput{GroupID: &g, Content: strPtr("@olaf @root @nobody kijk eens")})
    require.NoError(t, err)
    e.queue.Wait()

    mentions := e.notifier.byKind("users")
    require.Len(t, mentions, 1)
    assert.Equal(t, []string{e.admin.ID}, mentions[0].users, "admins see every group, outsiders are skipped")
    assert.NotContains(t, mentions[0].users, outsider.ID)
}

func TestCreatePost_MentionAudienceEveryone(t *testing.T) {
    e := newEnv(t, withMentionAudience(MentionEveryone))
    a := e.member(t, "annelies")
    outsider := e.member(t, "olaf")
    g := e.group(t, "Leiding", "2025", a)

    _, err := e.feed.CreatePost(context.Background(), a, CreatePostInput{GroupID: &g, Content: strPtr("@olaf @annelies kijk eens")})
    require.NoError(t, err)
    e.queue.Wait()

    mentions := e.notifier.byKind("users")
    require.Len(t, mentions, 1)
    assert.Equal(t, []string{outsider.ID}, mentions[0].users)
}

func TestCreatePost_MentionMatchesExactUsername(t *testing.T) {
    e := newEnv(t)
    a := e.member(t, "annelies")
    upper := e.member(t, "Jan")
    lower := e.member(t, "jan")
    g := e.group(t, "Leiding", "2025", a, upper, lower)

    _, err := e.feed.CreatePost(context.Background(), a, CreatePostInput{GroupID: &g, Content: strPtr("hallo @Jan")})
    require.NoError(t, err)
    e.queue.Wait()

    mentions := e.notifier.byKind("users")
    require.Len(t, mentions, 1)
    assert.Equal(t, []string{upper.ID}, mentions[0].users)
}

func TestCreatePost_GlobalAudiencePolicy(t *testing.T) {
    tests := []struct {
        name     string
        audience GlobalAudience
        want     int
    }{
        {"everyone", AudienceEveryone, 1},
        {"none", AudienceNone, 0},
    }
    for _, tt := range tests {
        t.Run(tt.name, func(t *testing.T) {
            e := newEnv(t, withAudience(tt.audience))
            a := e.member(t, "annelies")
            _, err := e.feed.CreatePost(context.Background(), a, CreatePostInput{Content: strPtr("voor iedereen")})
            require.NoError(t, err)
            e.queue.Wait()

            all := e.notifier.byKind("all")
            assert.Len(t, all, tt.want)
            for _, c := range all {
                assert.Equal(t, []string{a.ID}, c.exclude)
                assert.Equal(t, "New post by annelies", c.msg.Title)
            }
            assert.Empty(t, e.notifier.byKind("group"))
        })
    }
}

func TestCreatePost_FailedWriteSendsNothing(t *testing.T) {
    e := newEnv(t)
    a := e.member(t, "annelies")
    g := e.group(t, "Leiding", "2025")

    _, err := e.feed.CreatePost(context.Background(), a, CreatePostInput{GroupID: &g, Content: strPtr("@root")})
    require.ErrorIs(t, err, ErrForbidden)
    e.queue.Wait()
    assert.Empty(t, e.notifier.calls)
}

func TestCreateComment_ReplyNotifiesParentAuthor(t *testing.T) {
    e := newEnv(t)
    ctx := context.Background()
    a := e.member(t, "annelies")
    b := e.member(t, "bert")
    c := e.member(t, "chris")
    g := e.group(t, "Leiding", "2025", a, b, c)
    post, err := e.content.CreatePost(ctx, a, CreatePostInput{GroupID: &g, Content: strPtr("vergadering")})
    require.NoError(t, err)

    top, err := e.feed.CreateComment(ctx, b, post.ID, "ik kom", nil)
    require.NoError(t, err)
    e.queue.Wait()
    require.Len(t, e.notifier.byKind("group"), 1)
    assert.Empty(t, e.notifier.byKind("users"), "no reply target and no mentions")

    _, err = e.feed.CreateComment(ctx, c, post.ID, "ik ook @annelies", &top.ID)
    require.NoError(t, err)
    e.queue.Wait()

    groups := e.notifier.byKind("group")
    require.Len(t, groups, 2)
    assert.Equal(t, []string{c.ID}, groups[1].exclude)
    assert.Equal(t, "New comment by chris", groups[1].msg.Title)

    var replies, mentions []sent
    for _, s := range e.notifier.byKind("users") {
        switch s.msg.Title {
        case "chris replied to your comment":
            replies = append(replies, s)
        case "chris mentioned you":
            mentions = append(mentions, s)
        }
    }
    require.Len(t, replies, 1)
    assert.Equal(t, []string{b.ID}, replies[0].users)
    require.Len(t, mentions, 1)
    assert.Equal(t, []string{a.ID}, mentions[0].users)

    // 回复自己的评论不通知自己
    _, err = e.feed.CreateComment(ctx, b, post.ID, "nog iets", &top.ID)
    require.NoError(t, err)
    e.queue.Wait()
    for _, s := range e.notifier.byKind("users") {
        assert.NotEqual(t, "bert replied to your comment", s.msg.Title)
    }
}

func TestToggleLike_NotifiesAuthorOnNewLike(t *testing.T) {
    e := newEnv(t)
    ctx := context.Background()
    a := e.member(t, "annelies")
    b := e.member(t, "bert")
    post, err := e.content.CreatePost(ctx, a, CreatePostInput{Content: strPtr("foto's")})
    require.NoError(t, err)

    _, err = e.feed.ToggleLike(ctx, a, post.ID)
    require.NoError(t, err)
    _, err = e.feed.ToggleLike(ctx, b, post.ID)
    require.NoError(t, err)
    _, err = e.feed.ToggleLike(ctx, b, post.ID)
    require.NoError(t, err)
    e.queue.Wait()

    calls := e.notifier.byKind("users")
    require.Len(t, calls, 1)
    assert.Equal(t, []string{a.ID}, calls[0].users)
    assert.Equal(t, "bert liked your post", calls[0].msg.Title)
}

func TestSubmitResponse_NotifiesAuthorUnlessRetracted(t *testing.T) {
    e := newEnv(t)
    a := e.member(t, "annelies")
    b := e.member(t, "bert")
    p := pollPost(t, e, a, nil, false)

    _, err := e.feed.SubmitResponse(context.Background(), b, p.ID, ResponseInput{Kind: model.ResponsePoll, Data: []byte(`{"option_index":1}`)})
    require.NoError(t, err)
    _, err = e.feed.SubmitResponse(context.Background(), b, p.ID, ResponseInput{Kind: model.ResponsePoll, Data: []byte(`{}`)})
    require.NoError(t, err)
    e.queue.Wait()

    calls := e.notifier.byKind("users")
    require.Len(t, calls, 1)
    assert.Equal(t, "bert responded to your poll", calls[0].msg.Title)
}

type blockingNotifier struct {
    recordingNotifier
    release chan struct{}
}

func (n *blockingNotifier) SendToAll(ctx context.Context, msg notify.Message, exclude ...string) notify.Report {
    <-n.release
    return n.recordingNotifier.SendToAll(ctx, msg, exclude...)
}

func TestCreatePost_DoesNotWaitForDelivery(t *testing.T) {
    e := newEnv(t)
    slow := &blockingNotifier{release: make(chan struct{})}
    feed := NewFeedService(e.content, e.resolver, e.users, e.groups, slow, e.queue, FeedOptions{})
    a := e.member(t, "annelies")

    ctx, cancel := context.WithCancel(context.Background())
    done := make(chan error, 1)
    go func() {
        _, err := feed.CreatePost(ctx, a, CreatePostInput{Content: strPtr("snel")})
        done <- err
    }()
    select {
    case err := <-done:
        require.NoError(t, err)
    case <-time.After(2 * time.Second):
        t.Fatal("CreatePost blocked on notification delivery")
    }
    cancel()
    close(slow.release)
    e.queue.Wait()
    assert.Len(t, slow.byKind("all"), 1, "request cancellation does not cancel detached delivery")
}

func TestSearchUsers(t *testing.T) {
    e := newEnv(t)
    ctx := context.Background()
    a := e.member(t, "annelies")
    e.member(t, "system")
    e.member(t, "Jan")
    for _, n := range []string{"jana", "janneke", "jannes", "janine", "jantje"} {
        e.member(t, n)
    }
    e.member(t, "jan_x")

    res, err := e.feed.SearchUsers(ctx, a, "@JAN")
    require.NoError(t, err)
    require.Len(t, res, 5)
    assert.Equal(t, "Jan", res[0].Username)

    res, err = e.feed.SearchUsers(ctx, a, "sys")
    require.NoError(t, err)
    assert.Empty(t, res, "the system account is never suggested")

    res, err = e.feed.SearchUsers(ctx, a, "jan_")
    require.NoError(t, err)
    require.Len(t, res, 1)
    assert.Equal(t, "jan_x", res[0].Username)

    res, err = e.feed.SearchUsers(ctx, a, "  ")
    require.NoError(t, err)
    assert.Empty(t, res)
}

// 使用真实 Dispatcher 与记录型推送，验证广播覆盖分组全部成员（作者除外）
type recordingPush struct {
    mu        sync.Mutex
    endpoints []string
}

func (p *recordingPush) Send(_ context.Context, sub model.PushSubscription, _ []byte) error {
    p.mu.Lock()
    defer p.mu.Unlock()
    p.endpoints = append(p.endpoints, sub.Endpoint)
    return nil
}

func TestCreatePost_EndToEndWithDispatcher(t *testing.T) {
    e := newEnv(t)
    ctx := context.Background()
    push := &recordingPush{}
    disp := notify.NewDispatcher(e.users, e.access, push, nil, notify.Options{SkipUsername: "system"})
    feed := NewFeedService(e.content, e.resolver, e.users, e.groups, disp, e.queue, FeedOptions{})

    mk := func(name string) string {
        u := &model.User{Username: name, PushSubscriptions: []model.PushSubscription{
            {Endpoint: "https://push.example/" + name, Keys: model.PushKeys{P256dh: "p", Auth: "a"}},
        }}
        require.NoError(t, e.users.Create(ctx, u))
        return u.ID
    }
    aID, bID, cID := mk("annelies"), mk("bert"), mk("chris")
    mk("outsider")
    g := &model.Group{Name: "Leiding", Slug: "leiding"}
    require.NoError(t, e.groups.Create(ctx, g))
    for _, id := range []string{aID, bID, cID} {
        require.NoError(t, e.access.Create(ctx, id, g.ID))
    }
    a, err := e.users.Get(ctx, aID)
    require.NoError(t, err)

    _, err = feed.CreatePost(ctx, identityOf(a), CreatePostInput{GroupID: &g.ID, Content: strPtr("hello @bert")})
    require.NoError(t, err)
    e.queue.Wait()

    push.mu.Lock()
    defer push.mu.Unlock()
    assert.ElementsMatch(t, []string{
        "https://push.example/bert",  // broadcast
        "https://push.example/chris", // broadcast
        "https://push.example/bert",  // mention
    }, push.endpoints)
}
