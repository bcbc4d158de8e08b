package service

import (
    "bytes"
    "context"
    "encoding/json"
    "sort"
    "strings"

    "github.com/go-playground/validator/v10"
    "go.uber.org/zap"
    "gorm.io/datatypes"

    "github.com/d60-Lab/groupfeed/internal/auth"
    "github.com/d60-Lab/groupfeed/internal/model"
    "github.com/d60-Lab/groupfeed/internal/repository"
    "github.com/d60-Lab/groupfeed/pkg/logger"
)

var validate = validator.New()

type PollInput struct {
    Question      string   `json:"question"`
    Options       []string `json:"options"`
    AllowMultiple bool     `json:"allow_multiple"`
}

// CreatePostInput 新动态。Form 为表单字段数组，也接受字符串形式的 JSON
type CreatePostInput struct {
    GroupID     *string            `json:"group_id"`
    Content     *string            `json:"content"`
    Attachments []model.Attachment `json:"attachments"`
    Poll        *PollInput         `json:"poll"`
    Form        json.RawMessage    `json:"form" swaggertype:"array,object"`
}

// ResponseInput 投票或表单回复：{"kind":"poll","data":{...}} | {"kind":"form","data":{...}}
type ResponseInput struct {
    Kind model.ResponseKind `json:"kind" binding:"required,oneof=poll form"`
    Data json.RawMessage    `json:"data" swaggertype:"object"`
}

// pollSubmission 单选提交 option_index，多选提交 option_indices
type pollSubmission struct {
    OptionIndex   *int  `json:"option_index"`
    OptionIndices []int `json:"option_indices"`
}

type LikeResult struct {
    Liked  bool        `json:"liked"`
    Count  int64       `json:"count"`
    Likers []string    `json:"likers"`
    Post   *model.Post `json:"-"`
}

type CommentResult struct {
    Comment *model.Comment
    Post    *model.Post
    // Parent 回复时为被回复的顶层评论
    Parent *model.Comment
}

type ResponseResult struct {
    Kind model.ResponseKind `json:"kind"`
    // Retracted 空投票等于撤回
    Retracted bool        `json:"retracted"`
    Post      *model.Post `json:"-"`
}

type ContentOptions struct {
    DefaultPageSize int
    MaxPageSize     int
}

// ContentService 动态、评论、点赞、投票/表单回复的生命周期
type ContentService struct {
    access    *AccessResolver
    posts     repository.PostRepository
    comments  repository.CommentRepository
    likes     repository.LikeRepository
    responses repository.ResponseRepository
    opts      ContentOptions
}

func NewContentService(access *AccessResolver, posts repository.PostRepository, comments repository.CommentRepository,
    likes repository.LikeRepository, responses repository.ResponseRepository, opts ContentOptions) *ContentService {
    if opts.DefaultPageSize <= 0 {
        opts.DefaultPageSize = 10
    }
    if opts.MaxPageSize < opts.DefaultPageSize {
        opts.MaxPageSize = opts.DefaultPageSize
    }
    return &ContentService{access: access, posts: posts, comments: comments, likes: likes, responses: responses, opts: opts}
}

func (s *ContentService) CreatePost(ctx context.Context, id auth.Identity, in CreatePostInput) (*model.Post, error) {
    if err := s.access.authorize(ctx, id, in.GroupID); err != nil {
        return nil, err
    }
    post := &model.Post{AuthorID: id.ID, GroupID: in.GroupID, Content: normalizeContent(in.Content)}

    for _, a := range in.Attachments {
        if strings.TrimSpace(a.Path) == "" {
            return nil, invalid("attachment path is required")
        }
    }
    post.Attachments = in.Attachments

    if in.Poll != nil {
        if poll, err := buildPoll(in.Poll); err != nil {
            logger.Warn("dropping invalid poll", zap.String("author", id.ID), zap.Error(err))
        } else {
            post.Poll = datatypes.NewJSONType(poll)
        }
    }

    if fields, err := parseForm(in.Form); err != nil {
        logger.Warn("dropping malformed form schema", zap.String("author", id.ID), zap.Error(err))
    } else {
        post.Form = fields
    }

    if post.Content == nil && len(post.Attachments) == 0 && post.PollData() == nil && len(post.Form) == 0 {
        return nil, invalid("post is empty")
    }
    if err := s.posts.Create(ctx, post); err != nil {
        return nil, err
    }
    return s.posts.Get(ctx, post.ID)
}

func normalizeContent(c *string) *string {
    if c == nil {
        return nil
    }
    t := strings.TrimSpace(*c)
    if t == "" {
        return nil
    }
    return &t
}

// buildPoll 需要非空问题；空白选项被过滤，过滤后至少一个选项。返回 error 时调用方丢弃投票
func buildPoll(in *PollInput) (*model.Poll, error) {
    q := strings.TrimSpace(in.Question)
    if q == "" {
        return nil, invalid("poll question is required")
    }
    opts := make([]string, 0, len(in.Options))
    for _, o := range in.Options {
        if t := strings.TrimSpace(o); t != "" {
            opts = append(opts, t)
        }
    }
    if len(opts) == 0 {
        return nil, invalid("poll needs at least one option")
    }
    return &model.Poll{Question: q, Options: opts, AllowMultiple: in.AllowMultiple}, nil
}

// parseForm 语法校验表单结构；返回 error 时调用方丢弃表单
func parseForm(raw json.RawMessage) ([]model.FormField, error) {
    raw = bytes.TrimSpace(raw)
    if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
        return nil, nil
    }
    if raw[0] == '"' {
        var s string
        if err := json.Unmarshal(raw, &s); err != nil {
            return nil, err
        }
        if strings.TrimSpace(s) == "" {
            return nil, nil
        }
        raw = []byte(s)
    }
    var fields []model.FormField
    if err := json.Unmarshal(raw, &fields); err != nil {
        return nil, err
    }
    if len(fields) == 0 {
        return nil, nil
    }
    seen := make(map[string]struct{}, len(fields))
    for i := range fields {
        fields[i].Label = strings.TrimSpace(fields[i].Label)
        if err := validate.Struct(&fields[i]); err != nil {
            return nil, err
        }
        if _, dup := seen[fields[i].Label]; dup {
            return nil, invalid("duplicate form field %q", fields[i].Label)
        }
        seen[fields[i].Label] = struct{}{}
    }
    return fields, nil
}

// UpdatePost 只允许修改正文；附件、投票、表单创建后不可变
func (s *ContentService) UpdatePost(ctx context.Context, id auth.Identity, postID string, content *string) (*model.Post, error) {
    if err := requireIdentity(id); err != nil {
        return nil, err
    }
    post, err := s.posts.Get(ctx, postID)
    if err != nil {
        return nil, translate(err)
    }
    if !canModify(id, post.AuthorID) {
        return nil, ErrForbidden
    }
    c := normalizeContent(content)
    if c == nil && len(post.Attachments) == 0 && post.PollData() == nil && len(post.Form) == 0 {
        return nil, invalid("post is empty")
    }
    if err := s.posts.UpdateContent(ctx, postID, c); err != nil {
        return nil, translate(err)
    }
    post.Content = c
    return post, nil
}

func (s *ContentService) DeletePost(ctx context.Context, id auth.Identity, postID string) error {
    if err := requireIdentity(id); err != nil {
        return err
    }
    post, err := s.posts.Get(ctx, postID)
    if err != nil {
        return translate(err)
    }
    if !canModify(id, post.AuthorID) {
        return ErrForbidden
    }
    return translate(s.posts.Delete(ctx, postID))
}

// CreateComment parentID 必须是同一动态下的顶层评论，不允许回复的回复
func (s *ContentService) CreateComment(ctx context.Context, id auth.Identity, postID, content string, parentID *string) (*CommentResult, error) {
    post, err := s.accessiblePost(ctx, id, postID)
    if err != nil {
        return nil, err
    }
    content = strings.TrimSpace(content)
    if content == "" {
        return nil, invalid("comment content is required")
    }
    res := &CommentResult{Post: post}
    if parentID != nil && *parentID != "" {
        parent, err := s.comments.Get(ctx, *parentID)
        if err != nil {
            if repository.IsNotFound(err) {
                return nil, invalid("parent comment not found")
            }
            return nil, err
        }
        if parent.PostID != post.ID {
            return nil, invalid("parent comment belongs to another post")
        }
        if parent.IsReply() {
            return nil, invalid("cannot reply to a reply")
        }
        res.Parent = parent
    } else {
        parentID = nil
    }
    c := &model.Comment{PostID: post.ID, AuthorID: id.ID, ParentID: parentID, Content: content}
    if err := s.comments.Create(ctx, c); err != nil {
        return nil, err
    }
    if res.Comment, err = s.comments.Get(ctx, c.ID); err != nil {
        return nil, err
    }
    return res, nil
}

func (s *ContentService) UpdateComment(ctx context.Context, id auth.Identity, commentID, content string) (*model.Comment, error) {
    if err := requireIdentity(id); err != nil {
        return nil, err
    }
    c, err := s.comments.Get(ctx, commentID)
    if err != nil {
        return nil, translate(err)
    }
    if !canModify(id, c.AuthorID) {
        return nil, ErrForbidden
    }
    content = strings.TrimSpace(content)
    if content == "" {
        return nil, invalid("comment content is required")
    }
    if err := s.comments.UpdateContent(ctx, commentID, content); err != nil {
        return nil, translate(err)
    }
    c.Content = content
    return c, nil
}

// DeleteComment 顶层评论连同其回复一起删除
func (s *ContentService) DeleteComment(ctx context.Context, id auth.Identity, commentID string) error {
    if err := requireIdentity(id); err != nil {
        return err
    }
    c, err := s.comments.Get(ctx, commentID)
    if err != nil {
        return translate(err)
    }
    if !canModify(id, c.AuthorID) {
        return ErrForbidden
    }
    return translate(s.comments.Delete(ctx, commentID))
}

func (s *ContentService) ToggleLike(ctx context.Context, id auth.Identity, postID string) (*LikeResult, error) {
    post, err := s.accessiblePost(ctx, id, postID)
    if err != nil {
        return nil, err
    }
    liked, err := s.likes.Toggle(ctx, post.ID, id.ID)
    if err != nil {
        return nil, err
    }
    cnt, err := s.likes.Count(ctx, post.ID)
    if err != nil {
        return nil, err
    }
    likers, err := s.likes.Likers(ctx, post.ID)
    if err != nil {
        return nil, err
    }
    return &LikeResult{Liked: liked, Count: cnt, Likers: likers, Post: post}, nil
}

func (s *ContentService) SubmitResponse(ctx context.Context, id auth.Identity, postID string, in ResponseInput) (*ResponseResult, error) {
    post, err := s.accessiblePost(ctx, id, postID)
    if err != nil {
        return nil, err
    }
    switch in.Kind {
    case model.ResponsePoll:
        return s.submitPoll(ctx, id, post, in.Data)
    case model.ResponseForm:
        return s.submitForm(ctx, id, post, in.Data)
    default:
        return nil, invalid("unknown response kind %q", in.Kind)
    }
}

func (s *ContentService) submitPoll(ctx context.Context, id auth.Identity, post *model.Post, raw json.RawMessage) (*ResponseResult, error) {
    poll := post.PollData()
    if poll == nil {
        return nil, invalid("post has no poll")
    }
    indices, err := normalizeIndices(raw)
    if err != nil {
        return nil, err
    }
    for _, idx := range indices {
        if idx < 0 || idx >= len(poll.Options) {
            return nil, invalid("option index %d out of range", idx)
        }
    }
    if !poll.AllowMultiple && len(indices) > 1 {
        return nil, invalid("poll allows a single choice")
    }
    var data datatypes.JSON
    if len(indices) > 0 {
        if data, err = json.Marshal(model.PollAnswer{OptionIndices: indices}); err != nil {
            return nil, err
        }
    }
    if err := s.responses.ReplacePoll(ctx, post.ID, id.ID, data); err != nil {
        return nil, err
    }
    return &ResponseResult{Kind: model.ResponsePoll, Retracted: len(indices) == 0, Post: post}, nil
}

// normalizeIndices 合并单选/多选提交，去重并排序
func normalizeIndices(raw json.RawMessage) ([]int, error) {
    var sub pollSubmission
    if len(bytes.TrimSpace(raw)) > 0 {
        if err := json.Unmarshal(raw, &sub); err != nil {
            return nil, invalid("malformed poll answer")
        }
    }
    all := sub.OptionIndices
    if sub.OptionIndex != nil {
        all = append(all, *sub.OptionIndex)
    }
    seen := make(map[int]struct{}, len(all))
    res := make([]int, 0, len(all))
    for _, i := range all {
        if _, ok := seen[i]; ok {
            continue
        }
        seen[i] = struct{}{}
        res = append(res, i)
    }
    sort.Ints(res)
    return res, nil
}

func (s *ContentService) submitForm(ctx context.Context, id auth.Identity, post *model.Post, raw json.RawMessage) (*ResponseResult, error) {
    if len(post.Form) == 0 {
        return nil, invalid("post has no form")
    }
    var answers model.FormAnswer
    if err := json.Unmarshal(raw, &answers); err != nil {
        return nil, invalid("malformed form answer")
    }
    clean, err := checkAnswers(post.Form, answers)
    if err != nil {
        return nil, err
    }
    data, err := json.Marshal(clean)
    if err != nil {
        return nil, err
    }
    if err := s.responses.UpsertForm(ctx, post.ID, id.ID, data); err != nil {
        return nil, err
    }
    return &ResponseResult{Kind: model.ResponseForm, Post: post}, nil
}

// checkAnswers 只保留表单中定义的字段，并校验必填项与字段类型
func checkAnswers(fields []model.FormField, answers model.FormAnswer) (model.FormAnswer, error) {
    clean := make(model.FormAnswer, len(fields))
    for _, f := range fields {
        v := strings.TrimSpace(answers[f.Label])
        if v == "" {
            if f.Required {
                return nil, invalid("field %q is required", f.Label)
            }
            continue
        }
        switch f.Type {
        case "number":
            if validate.Var(v, "numeric") != nil {
                return nil, invalid("field %q must be a number", f.Label)
            }
        case "date":
            if validate.Var(v, "datetime=2006-01-02") != nil {
                return nil, invalid("field %q must be a date (YYYY-MM-DD)", f.Label)
            }
        case "select":
            if !contains(f.Options, v) {
                return nil, invalid("field %q has an unknown option", f.Label)
            }
        }
        clean[f.Label] = v
    }
    return clean, nil
}

func contains(list []string, v string) bool {
    for _, s := range list {
        if s == v {
            return true
        }
    }
    return false
}

// ListFeedPage 按时间倒序返回一页；多取一条判断是否还有下一页
func (s *ContentService) ListFeedPage(ctx context.Context, id auth.Identity, groupID *string, limit, offset int) (*FeedPage, error) {
    if err := s.access.authorize(ctx, id, groupID); err != nil {
        return nil, err
    }
    if limit <= 0 {
        limit = s.opts.DefaultPageSize
    }
    if limit > s.opts.MaxPageSize {
        limit = s.opts.MaxPageSize
    }
    if offset < 0 {
        offset = 0
    }
    posts, err := s.posts.List(ctx, groupID, offset, limit+1)
    if err != nil {
        return nil, err
    }
    page := &FeedPage{NextOffset: offset}
    if len(posts) > limit {
        posts = posts[:limit]
        page.HasMore = true
    }
    page.NextOffset = offset + len(posts)

    ids := make([]string, len(posts))
    for i, p := range posts {
        ids[i] = p.ID
    }
    comments, err := s.comments.ListByPosts(ctx, ids)
    if err != nil {
        return nil, err
    }
    likes, err := s.likes.ListByPosts(ctx, ids)
    if err != nil {
        return nil, err
    }
    responses, err := s.responses.ListByPosts(ctx, ids)
    if err != nil {
        return nil, err
    }
    page.Posts = assemble(posts, comments, likes, responses, id.ID, func(p *model.Post) bool {
        return canModify(id, p.AuthorID)
    })
    return page, nil
}

// accessiblePost 读取动态并校验调用者对其分组的访问权
func (s *ContentService) accessiblePost(ctx context.Context, id auth.Identity, postID string) (*model.Post, error) {
    if err := requireIdentity(id); err != nil {
        return nil, err
    }
    post, err := s.posts.Get(ctx, postID)
    if err != nil {
        return nil, translate(err)
    }
    if err := s.access.authorize(ctx, id, post.GroupID); err != nil {
        return nil, err
    }
    return post, nil
}

func canModify(id auth.Identity, authorID string) bool {
    return id.ID != "" && (id.ID == authorID || id.IsAdmin())
}
