package service

import (
    "encoding/json"
    "time"

    "github.com/d60-Lab/groupfeed/internal/model"
)

// UserRef 对外暴露的最小用户信息
type UserRef struct {
    ID       string `json:"id"`
    Username string `json:"username"`
}

func refOf(u model.User) UserRef { return UserRef{ID: u.ID, Username: u.Username} }

// FeedPage 一页动态。HasMore 为 true 时用 NextOffset 请求下一页（增量追加）
type FeedPage struct {
    Posts      []*PostView `json:"posts"`
    HasMore    bool        `json:"has_more"`
    NextOffset int         `json:"next_offset"`
}

type PostView struct {
    ID          string             `json:"id"`
    GroupID     *string            `json:"group_id,omitempty"`
    Author      UserRef            `json:"author"`
    Content     *string            `json:"content,omitempty"`
    Attachments []model.Attachment `json:"attachments"`
    Poll        *PollView          `json:"poll,omitempty"`
    Form        *FormView          `json:"form,omitempty"`
    Comments    []*CommentView     `json:"comments"`
    Likes       LikeView           `json:"likes"`
    CreatedAt   time.Time          `json:"created_at"`
    UpdatedAt   time.Time          `json:"updated_at"`
}

type CommentView struct {
    ID        string         `json:"id"`
    ParentID  *string        `json:"parent_id,omitempty"`
    Author    UserRef        `json:"author"`
    Content   string         `json:"content"`
    CreatedAt time.Time      `json:"created_at"`
    Replies   []*CommentView `json:"replies,omitempty"`
}

type LikeView struct {
    Count     int      `json:"count"`
    LikedByMe bool     `json:"liked_by_me"`
    Likers    []string `json:"likers"`
}

// PollView 投票及汇总：Votes[i] 为选项 i 的票数
type PollView struct {
    Question      string   `json:"question"`
    Options       []string `json:"options"`
    AllowMultiple bool     `json:"allow_multiple"`
    Votes         []int    `json:"votes"`
    Voters        int      `json:"voters"`
    MyChoice      []int    `json:"my_choice,omitempty"`
}

// FormView 表单。Responses 仅对作者和 admin 可见
type FormView struct {
    Fields    []model.FormField  `json:"fields"`
    Count     int                `json:"count"`
    Mine      model.FormAnswer   `json:"mine,omitempty"`
    Responses []FormResponseView `json:"responses,omitempty"`
}

type FormResponseView struct {
    User      UserRef          `json:"user"`
    Answers   model.FormAnswer `json:"answers"`
    UpdatedAt time.Time        `json:"updated_at"`
}

func newPostView(p *model.Post) *PostView {
    v := &PostView{
        ID:          p.ID,
        GroupID:     p.GroupID,
        Author:      refOf(p.Author),
        Content:     p.Content,
        Attachments: p.Attachments,
        Comments:    []*CommentView{},
        Likes:       LikeView{Likers: []string{}},
        CreatedAt:   p.CreatedAt,
        UpdatedAt:   p.UpdatedAt,
    }
    if v.Attachments == nil {
        v.Attachments = []model.Attachment{}
    }
    if poll := p.PollData(); poll != nil {
        v.Poll = &PollView{
            Question:      poll.Question,
            Options:       poll.Options,
            AllowMultiple: poll.AllowMultiple,
            Votes:         make([]int, len(poll.Options)),
        }
    }
    if len(p.Form) > 0 {
        v.Form = &FormView{Fields: p.Form}
    }
    return v
}

// PostViewOf 单条动态的对外形式（不含评论与汇总），用于写接口的返回值
func PostViewOf(p *model.Post) *PostView { return newPostView(p) }

// CommentViewOf 单条评论的对外形式
func CommentViewOf(c *model.Comment) *CommentView { return newCommentView(c) }

func newCommentView(c *model.Comment) *CommentView {
    return &CommentView{
        ID:        c.ID,
        ParentID:  c.ParentID,
        Author:    refOf(c.Author),
        Content:   c.Content,
        CreatedAt: c.CreatedAt,
    }
}

// assemble 挂载评论树、点赞、回复汇总。输入均已按时间排序
func assemble(posts []*model.Post, comments []*model.Comment, likes []*model.Like,
    responses []*model.PostResponse, viewerID string, privileged func(*model.Post) bool) []*PostView {
    views := make([]*PostView, len(posts))
    byID := make(map[string]*PostView, len(posts))
    owner := make(map[string]*model.Post, len(posts))
    for i, p := range posts {
        views[i] = newPostView(p)
        byID[p.ID] = views[i]
        owner[p.ID] = p
    }

    top := make(map[string]*CommentView)
    for _, c := range comments {
        if c.ParentID == nil {
            cv := newCommentView(c)
            top[c.ID] = cv
            if pv := byID[c.PostID]; pv != nil {
                pv.Comments = append(pv.Comments, cv)
            }
        }
    }
    for _, c := range comments {
        if c.ParentID == nil {
            continue
        }
        if parent := top[*c.ParentID]; parent != nil {
            parent.Replies = append(parent.Replies, newCommentView(c))
        }
    }

    for _, l := range likes {
        pv := byID[l.PostID]
        if pv == nil {
            continue
        }
        pv.Likes.Count++
        pv.Likes.Likers = append(pv.Likes.Likers, l.User.Username)
        if l.UserID == viewerID {
            pv.Likes.LikedByMe = true
        }
    }

    for _, r := range responses {
        pv := byID[r.PostID]
        if pv == nil {
            continue
        }
        switch r.Kind {
        case model.ResponsePoll:
            if pv.Poll == nil {
                continue
            }
            var ans model.PollAnswer
            if err := json.Unmarshal(r.Data, &ans); err != nil {
                continue
            }
            pv.Poll.Voters++
            for _, idx := range ans.OptionIndices {
                if idx >= 0 && idx < len(pv.Poll.Votes) {
                    pv.Poll.Votes[idx]++
                }
            }
            if r.UserID == viewerID {
                pv.Poll.MyChoice = ans.OptionIndices
            }
        case model.ResponseForm:
            if pv.Form == nil {
                continue
            }
            var ans model.FormAnswer
            if err := json.Unmarshal(r.Data, &ans); err != nil {
                continue
            }
            pv.Form.Count++
            if r.UserID == viewerID {
                pv.Form.Mine = ans
            }
            if privileged(owner[r.PostID]) {
                pv.Form.Responses = append(pv.Form.Responses, FormResponseView{User: refOf(r.User), Answers: ans, UpdatedAt: r.UpdatedAt})
            }
        }
    }
    return views
}
