package service

import (
    "context"
    "strings"

    "go.uber.org/zap"

    "github.com/d60-Lab/groupfeed/internal/auth"
    "github.com/d60-Lab/groupfeed/internal/mention"
    "github.com/d60-Lab/groupfeed/internal/model"
    "github.com/d60-Lab/groupfeed/internal/notify"
    "github.com/d60-Lab/groupfeed/internal/repository"
    "github.com/d60-Lab/groupfeed/pkg/logger"
)

// Notifier 通知分发（notify.Dispatcher）
type Notifier interface {
    SendToUsers(ctx context.Context, userIDs []string, msg notify.Message, exclude ...string) notify.Report
    SendToGroup(ctx context.Context, groupID string, msg notify.Message, exclude ...string) notify.Report
    SendToAll(ctx context.Context, msg notify.Message, exclude ...string) notify.Report
}

// TaskQueue 后台任务队列（notify.Queue）
type TaskQueue interface {
    Enqueue(ctx context.Context, name string, fn func(ctx context.Context)) bool
}

// GlobalAudience 全站动态（无分组）的广播受众
type GlobalAudience string

const (
    // AudienceEveryone 所有用户，包括 admin
    AudienceEveryone GlobalAudience = "everyone"
    // AudienceNone 全站动态不广播，只发提及通知
    AudienceNone GlobalAudience = "none"
)

// MentionAudience 被提及用户中哪些会收到通知（作者本人始终排除）
type MentionAudience string

const (
    // MentionMembers 只通知能看到该动态的用户（分组成员与 admin）
    MentionMembers MentionAudience = "members"
    // MentionEveryone 通知所有被提及用户，不检查分组权限
    MentionEveryone MentionAudience = "everyone"
)

type FeedOptions struct {
    GlobalAudience  GlobalAudience
    MentionAudience MentionAudience
    SystemUsername  string
    SearchLimit     int
}

// FeedService 请求级编排：鉴权 -> 写入 -> 立即返回，通知在提交后交给后台队列
type FeedService struct {
    content  *ContentService
    access   *AccessResolver
    users    repository.UserRepository
    groups   repository.GroupRepository
    notifier Notifier
    queue    TaskQueue
    opts     FeedOptions
}

func NewFeedService(content *ContentService, access *AccessResolver, users repository.UserRepository, groups repository.GroupRepository,
    notifier Notifier, queue TaskQueue, opts FeedOptions) *FeedService {
    if opts.GlobalAudience == "" {
        opts.GlobalAudience = AudienceEveryone
    }
    if opts.MentionAudience == "" {
        opts.MentionAudience = MentionMembers
    }
    if opts.SearchLimit <= 0 {
        opts.SearchLimit = 5
    }
    return &FeedService{content: content, access: access, users: users, groups: groups, notifier: notifier, queue: queue, opts: opts}
}

func (s *FeedService) ListGroups(ctx context.Context, id auth.Identity) ([]*model.Group, error) {
    return s.access.ListVisibleGroups(ctx, id)
}

func (s *FeedService) FeedPage(ctx context.Context, id auth.Identity, groupID *string, limit, offset int) (*FeedPage, error) {
    return s.content.ListFeedPage(ctx, id, groupID, limit, offset)
}

func (s *FeedService) CreatePost(ctx context.Context, id auth.Identity, in CreatePostInput) (*model.Post, error) {
    post, err := s.content.CreatePost(ctx, id, in)
    if err != nil {
        return nil, err
    }
    author := displayName(id, post.Author)
    s.enqueue(ctx, "post.broadcast", func(ctx context.Context) {
        var g *model.Group
        if post.GroupID != nil {
            found, err := s.groups.Get(ctx, *post.GroupID)
            if err != nil {
                logger.Warn("broadcast: group lookup failed", zap.String("post", post.ID), zap.Error(err))
                return
            }
            g = found
        }
        s.broadcast(ctx, "post.broadcast", post.GroupID, newPostMessage(author, post, g), id.ID)
    })
    if post.Content != nil {
        text := *post.Content
        s.enqueue(ctx, "post.mentions", func(ctx context.Context) {
            s.notifyMentions(ctx, id, text, post)
        })
    }
    return post, nil
}

func (s *FeedService) UpdatePost(ctx context.Context, id auth.Identity, postID string, content *string) (*model.Post, error) {
    return s.content.UpdatePost(ctx, id, postID, content)
}

func (s *FeedService) DeletePost(ctx context.Context, id auth.Identity, postID string) error {
    return s.content.DeletePost(ctx, id, postID)
}

// CreateComment 广播给动态的受众、通知被提及者；回复额外通知被回复评论的作者
func (s *FeedService) CreateComment(ctx context.Context, id auth.Identity, postID, content string, parentID *string) (*model.Comment, error) {
    res, err := s.content.CreateComment(ctx, id, postID, content, parentID)
    if err != nil {
        return nil, err
    }
    c, post := res.Comment, res.Post
    author := displayName(id, c.Author)
    s.enqueue(ctx, "comment.broadcast", func(ctx context.Context) {
        s.broadcast(ctx, "comment.broadcast", post.GroupID, newCommentMessage(author, c, post), id.ID)
    })
    s.enqueue(ctx, "comment.mentions", func(ctx context.Context) {
        s.notifyMentions(ctx, id, c.Content, post)
    })
    if res.Parent != nil && res.Parent.AuthorID != id.ID {
        target := res.Parent.AuthorID
        s.enqueue(ctx, "comment.reply", func(ctx context.Context) {
            s.notifyUsers(ctx, "comment.reply", []string{target}, replyMessage(author, c, post), id.ID)
        })
    }
    return c, nil
}

func (s *FeedService) UpdateComment(ctx context.Context, id auth.Identity, commentID, content string) (*model.Comment, error) {
    return s.content.UpdateComment(ctx, id, commentID, content)
}

func (s *FeedService) DeleteComment(ctx context.Context, id auth.Identity, commentID string) error {
    return s.content.DeleteComment(ctx, id, commentID)
}

// ToggleLike 新点赞时通知动态作者
func (s *FeedService) ToggleLike(ctx context.Context, id auth.Identity, postID string) (*LikeResult, error) {
    res, err := s.content.ToggleLike(ctx, id, postID)
    if err != nil {
        return nil, err
    }
    if res.Liked && res.Post.AuthorID != id.ID {
        post, author := res.Post, displayName(id, model.User{})
        s.enqueue(ctx, "like", func(ctx context.Context) {
            s.notifyUsers(ctx, "like", []string{post.AuthorID}, likeMessage(author, post), id.ID)
        })
    }
    return res, nil
}

// SubmitResponse 提交（非撤回）时通知动态作者
func (s *FeedService) SubmitResponse(ctx context.Context, id auth.Identity, postID string, in ResponseInput) (*ResponseResult, error) {
    res, err := s.content.SubmitResponse(ctx, id, postID, in)
    if err != nil {
        return nil, err
    }
    if !res.Retracted && res.Post.AuthorID != id.ID {
        post, author, kind := res.Post, displayName(id, model.User{}), res.Kind
        s.enqueue(ctx, "response", func(ctx context.Context) {
            s.notifyUsers(ctx, "response", []string{post.AuthorID}, responseMessage(author, kind, post), id.ID)
        })
    }
    return res, nil
}

// SearchUsers 提及自动补全：前缀匹配，排除系统账号
func (s *FeedService) SearchUsers(ctx context.Context, id auth.Identity, prefix string) ([]UserRef, error) {
    if err := requireIdentity(id); err != nil {
        return nil, err
    }
    prefix = strings.TrimPrefix(strings.TrimSpace(prefix), "@")
    res := []UserRef{}
    if prefix == "" {
        return res, nil
    }
    users, err := s.users.SearchByPrefix(ctx, prefix, s.opts.SystemUsername, s.opts.SearchLimit)
    if err != nil {
        return nil, err
    }
    for _, u := range users {
        res = append(res, refOf(*u))
    }
    return res, nil
}

func (s *FeedService) enqueue(ctx context.Context, name string, fn func(ctx context.Context)) {
    if s.queue == nil || s.notifier == nil {
        return
    }
    s.queue.Enqueue(ctx, name, fn)
}

// broadcast 分组动态发给显式成员；全站动态按 GlobalAudience 策略
func (s *FeedService) broadcast(ctx context.Context, task string, groupID *string, msg notify.Message, exclude string) {
    var rep notify.Report
    switch {
    case groupID != nil:
        rep = s.notifier.SendToGroup(ctx, *groupID, msg, exclude)
    case s.opts.GlobalAudience == AudienceEveryone:
        rep = s.notifier.SendToAll(ctx, msg, exclude)
    default:
        logger.Debug("global broadcast disabled", zap.String("task", task))
        return
    }
    logReport(task, rep)
}

// notifyMentions 按 MentionAudience 通知被提及用户，不含作者本人
func (s *FeedService) notifyMentions(ctx context.Context, author auth.Identity, text string, post *model.Post) {
    names := mention.Extract(text)
    if len(names) == 0 {
        return
    }
    users, err := s.users.FindByUsernames(ctx, names.Sorted())
    if err != nil {
        logger.Warn("mentions: user lookup failed", zap.String("post", post.ID), zap.Error(err))
        return
    }
    ids := make([]string, 0, len(users))
    for _, u := range users {
        if u.ID == author.ID {
            continue
        }
        if s.opts.MentionAudience == MentionMembers {
            ok, err := s.access.CanAccess(ctx, identityOf(u), post.GroupID)
            if err != nil || !ok {
                continue
            }
        }
        ids = append(ids, u.ID)
    }
    if len(ids) == 0 {
        return
    }
    s.notifyUsers(ctx, "mentions", ids, mentionMessage(displayName(author, post.Author), text, post), author.ID)
}

func (s *FeedService) notifyUsers(ctx context.Context, task string, ids []string, msg notify.Message, exclude string) {
    logReport(task, s.notifier.SendToUsers(ctx, ids, msg, exclude))
}

func logReport(task string, rep notify.Report) {
    logger.Info("notification fan-out done",
        zap.String("task", task),
        zap.Int("recipients", rep.Recipients),
        zap.Int("push_delivered", rep.PushDelivered),
        zap.Int("push_failed", rep.PushFailed),
        zap.Int("push_pruned", rep.PushPruned),
        zap.Int("email_delivered", rep.EmailDelivered),
        zap.Int("email_failed", rep.EmailFailed),
    )
}

func displayName(id auth.Identity, fallback model.User) string {
    if id.Username != "" {
        return id.Username
    }
    if fallback.Username != "" {
        return fallback.Username
    }
    return "Someone"
}
