package service

import (
    "context"
    "encoding/json"
    "testing"
    "time"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"

    "github.com/d60-Lab/groupfeed/internal/auth"
    "github.com/d60-Lab/groupfeed/internal/model"
)

func pollPost(t *testing.T, e *env, author auth.Identity, group *string, multiple bool) *model.Post {
    t.Helper()
    p, err := e.content.CreatePost(context.Background(), author, CreatePostInput{
        GroupID: group,
        Poll:    &PollInput{Question: "Weekend?", Options: []string{"zaterdag", "zondag", "beide"}, AllowMultiple: multiple},
    })
    require.NoError(t, err)
    return p
}

func formPost(t *testing.T, e *env, author auth.Identity) *model.Post {
    t.Helper()
    p, err := e.content.CreatePost(context.Background(), author, CreatePostInput{
        Content: strPtr("Inschrijven kamp"),
        Form:    json.RawMessage(`[{"label":"Naam","type":"text","required":true},{"label":"Maat","type":"select","options":["S","M","L"]},{"label":"Leeftijd","type":"number"}]`),
    })
    require.NoError(t, err)
    return p
}

func TestCreatePost_GroupAuthorization(t *testing.T) {
    e := newEnv(t)
    ctx := context.Background()
    jan := e.member(t, "jan")
    loner := e.member(t, "loner")
    g := e.group(t, "Leiding", "2025", jan)
    missing := "00000000-0000-0000-0000-000000000000"

    _, err := e.content.CreatePost(ctx, loner, CreatePostInput{GroupID: &g, Content: strPtr("hoi")})
    assert.ErrorIs(t, err, ErrForbidden)
    _, err = e.content.CreatePost(ctx, jan, CreatePostInput{GroupID: &missing, Content: strPtr("hoi")})
    assert.ErrorIs(t, err, ErrForbidden)
    _, err = e.content.CreatePost(ctx, e.admin, CreatePostInput{GroupID: &missing, Content: strPtr("hoi")})
    assert.ErrorIs(t, err, ErrNotFound)
    _, err = e.content.CreatePost(ctx, auth.Identity{}, CreatePostInput{Content: strPtr("hoi")})
    assert.ErrorIs(t, err, ErrUnauthenticated)
    assert.Zero(t, e.count(t, &model.Post{}, "1 = 1"))

    p, err := e.content.CreatePost(ctx, jan, CreatePostInput{GroupID: &g, Content: strPtr("  hoi  ")})
    require.NoError(t, err)
    assert.Equal(t, jan.ID, p.AuthorID)
    assert.Equal(t, "jan", p.Author.Username)
    require.NotNil(t, p.GroupID)
    assert.Equal(t, g, *p.GroupID)
    assert.Equal(t, "hoi", *p.Content)

    p, err = e.content.CreatePost(ctx, e.admin, CreatePostInput{GroupID: &g, Content: strPtr("admin mag overal")})
    require.NoError(t, err)
    assert.Equal(t, e.admin.ID, p.AuthorID)
}

func TestCreatePost_Poll(t *testing.T) {
    e := newEnv(t)
    ctx := context.Background()
    jan := e.member(t, "jan")

    p, err := e.content.CreatePost(ctx, jan, CreatePostInput{
        Poll: &PollInput{Question: " Wanneer? ", Options: []string{"  vrijdag ", "", "   ", "zaterdag"}},
    })
    require.NoError(t, err)
    poll := p.PollData()
    require.NotNil(t, poll)
    assert.Equal(t, "Wanneer?", poll.Question)
    assert.Equal(t, []string{"vrijdag", "zaterdag"}, poll.Options)
    assert.Nil(t, p.Content)

}

func TestCreatePost_InvalidPollIsDropped(t *testing.T) {
    e := newEnv(t)
    ctx := context.Background()
    jan := e.member(t, "jan")

    tests := []struct {
        name string
        poll PollInput
    }{
        {"blank question", PollInput{Question: "  ", Options: []string{"a"}}},
        {"only blank options", PollInput{Question: "Wanneer?", Options: []string{" ", ""}}},
    }
    for _, tt := range tests {
        t.Run(tt.name, func(t *testing.T) {
            poll := tt.poll
            p, err := e.content.CreatePost(ctx, jan, CreatePostInput{Content: strPtr("vergadering"), Poll: &poll})
            require.NoError(t, err)
            assert.Nil(t, p.PollData())
            assert.Equal(t, "vergadering", *p.Content)

            // 没有其他内容时整条动态为空
            _, err = e.content.CreatePost(ctx, jan, CreatePostInput{Poll: &poll})
            assert.ErrorIs(t, err, ErrInvalidInput)
        })
    }
}

func TestCreatePost_FormSchema(t *testing.T) {
    e := newEnv(t)
    ctx := context.Background()
    jan := e.member(t, "jan")

    tests := []struct {
        name   string
        form   string
        fields int
    }{
        {"array", `[{"label":"Naam","type":"text","required":true}]`, 1},
        {"string encoded", `"[{\"label\":\"Naam\",\"type\":\"text\"},{\"label\":\"Datum\",\"type\":\"date\"}]"`, 2},
        {"not json", `{"label":`, 0},
        {"object instead of array", `{"label":"Naam","type":"text"}`, 0},
        {"unknown type", `[{"label":"Kleur","type":"color"}]`, 0},
        {"select without options", `[{"label":"Maat","type":"select"}]`, 0},
        {"duplicate labels", `[{"label":"Naam","type":"text"},{"label":"Naam","type":"textarea"}]`, 0},
        {"empty", `[]`, 0},
    }
    for _, tt := range tests {
        t.Run(tt.name, func(t *testing.T) {
            p, err := e.content.CreatePost(ctx, jan, CreatePostInput{Content: strPtr("met formulier"), Form: json.RawMessage(tt.form)})
            require.NoError(t, err, "malformed forms are dropped, not rejected")
            assert.Len(t, p.Form, tt.fields)
        })
    }
}

func TestCreatePost_EmptyRejected(t *testing.T) {
    e := newEnv(t)
    jan := e.member(t, "jan")
    _, err := e.content.CreatePost(context.Background(), jan, CreatePostInput{Content: strPtr("   "), Form: json.RawMessage(`"broken`)})
    assert.ErrorIs(t, err, ErrInvalidInput)

    p, err := e.content.CreatePost(context.Background(), jan, CreatePostInput{
        Attachments: []model.Attachment{{Path: "/feed_uploads/a.pdf", OriginalName: "a.pdf", MimeType: "application/pdf"}},
    })
    require.NoError(t, err)
    assert.Len(t, p.Attachments, 1)

    _, err = e.content.CreatePost(context.Background(), jan, CreatePostInput{Attachments: []model.Attachment{{OriginalName: "x"}}})
    assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCreateComment_TwoLevels(t *testing.T) {
    e := newEnv(t)
    ctx := context.Background()
    jan := e.member(t, "jan")
    piet := e.member(t, "piet")
    p1, err := e.content.CreatePost(ctx, jan, CreatePostInput{Content: strPtr("eerste")})
    require.NoError(t, err)
    p2, err := e.content.CreatePost(ctx, jan, CreatePostInput{Content: strPtr("tweede")})
    require.NoError(t, err)

    top, err := e.content.CreateComment(ctx, piet, p1.ID, "top", nil)
    require.NoError(t, err)
    assert.Nil(t, top.Parent)
    assert.Equal(t, "piet", top.Comment.Author.Username)

    reply, err := e.content.CreateComment(ctx, jan, p1.ID, "reply", &top.Comment.ID)
    require.NoError(t, err)
    require.NotNil(t, reply.Parent)
    assert.Equal(t, piet.ID, reply.Parent.AuthorID)
    assert.True(t, reply.Comment.IsReply())

    _, err = e.content.CreateComment(ctx, piet, p1.ID, "deeper", &reply.Comment.ID)
    assert.ErrorIs(t, err, ErrInvalidInput)
    _, err = e.content.CreateComment(ctx, piet, p2.ID, "wrong post", &top.Comment.ID)
    assert.ErrorIs(t, err, ErrInvalidInput)
    _, err = e.content.CreateComment(ctx, piet, p1.ID, "ghost", strPtr("nope"))
    assert.ErrorIs(t, err, ErrInvalidInput)
    _, err = e.content.CreateComment(ctx, piet, p1.ID, "   ", nil)
    assert.ErrorIs(t, err, ErrInvalidInput)
    _, err = e.content.CreateComment(ctx, piet, "nope", "x", nil)
    assert.ErrorIs(t, err, ErrNotFound)

    empty := ""
    c, err := e.content.CreateComment(ctx, piet, p1.ID, "empty parent is top level", &empty)
    require.NoError(t, err)
    assert.Nil(t, c.Comment.ParentID)

    assert.Equal(t, int64(3), e.count(t, &model.Comment{}, "post_id = ?", p1.ID))
}

func TestCreateComment_RequiresGroupAccess(t *testing.T) {
    e := newEnv(t)
    ctx := context.Background()
    jan := e.member(t, "jan")
    loner := e.member(t, "loner")
    g := e.group(t, "Leiding", "2025", jan)
    p, err := e.content.CreatePost(ctx, jan, CreatePostInput{GroupID: &g, Content: strPtr("intern")})
    require.NoError(t, err)

    _, err = e.content.CreateComment(ctx, loner, p.ID, "mag ik?", nil)
    assert.ErrorIs(t, err, ErrForbidden)
    _, err = e.content.ToggleLike(ctx, loner, p.ID)
    assert.ErrorIs(t, err, ErrForbidden)
    assert.Zero(t, e.count(t, &model.Comment{}, "post_id = ?", p.ID))
}

func TestToggleLike_DoubleToggleRestoresState(t *testing.T) {
    e := newEnv(t)
    ctx := context.Background()
    jan := e.member(t, "jan")
    piet := e.member(t, "piet")
    p, err := e.content.CreatePost(ctx, jan, CreatePostInput{Content: strPtr("like mij")})
    require.NoError(t, err)
    _, err = e.content.ToggleLike(ctx, jan, p.ID)
    require.NoError(t, err)

    before, err := e.likes.Count(ctx, p.ID)
    require.NoError(t, err)

    res, err := e.content.ToggleLike(ctx, piet, p.ID)
    require.NoError(t, err)
    assert.True(t, res.Liked)
    assert.Equal(t, before+1, res.Count)
    assert.Equal(t, []string{"jan", "piet"}, res.Likers)

    res, err = e.content.ToggleLike(ctx, piet, p.ID)
    require.NoError(t, err)
    assert.False(t, res.Liked)
    assert.Equal(t, before, res.Count)
    assert.Equal(t, []string{"jan"}, res.Likers)
}

func submitPoll(t *testing.T, e *env, who auth.Identity, postID, data string) (*ResponseResult, error) {
    t.Helper()
    return e.content.SubmitResponse(context.Background(), who, postID, ResponseInput{Kind: model.ResponsePoll, Data: json.RawMessage(data)})
}

func TestSubmitPoll_RevoteKeepsSingleRow(t *testing.T) {
    e := newEnv(t)
    jan := e.member(t, "jan")
    piet := e.member(t, "piet")
    p := pollPost(t, e, jan, nil, false)

    _, err := submitPoll(t, e, piet, p.ID, `{"option_index":0}`)
    require.NoError(t, err)
    _, err = submitPoll(t, e, piet, p.ID, `{"option_index":2}`)
    require.NoError(t, err)

    var rows []model.PostResponse
    require.NoError(t, e.db.Where("post_id = ? AND user_id = ? AND kind = ?", p.ID, piet.ID, model.ResponsePoll).Find(&rows).Error)
    require.Len(t, rows, 1)
    var ans model.PollAnswer
    require.NoError(t, json.Unmarshal(rows[0].Data, &ans))
    assert.Equal(t, []int{2}, ans.OptionIndices)

    res, err := submitPoll(t, e, piet, p.ID, `{}`)
    require.NoError(t, err)
    assert.True(t, res.Retracted)
    assert.Zero(t, e.count(t, &model.PostResponse{}, "post_id = ? AND user_id = ?", p.ID, piet.ID))
}

func TestSubmitPoll_Validation(t *testing.T) {
    e := newEnv(t)
    jan := e.member(t, "jan")
    single := pollPost(t, e, jan, nil, false)
    multi := pollPost(t, e, jan, nil, true)
    text, err := e.content.CreatePost(context.Background(), jan, CreatePostInput{Content: strPtr("geen poll")})
    require.NoError(t, err)

    _, err = submitPoll(t, e, jan, single.ID, `{"option_index":3}`)
    assert.ErrorIs(t, err, ErrInvalidInput)
    _, err = submitPoll(t, e, jan, single.ID, `{"option_index":-1}`)
    assert.ErrorIs(t, err, ErrInvalidInput)
    _, err = submitPoll(t, e, jan, single.ID, `{"option_indices":[0,1]}`)
    assert.ErrorIs(t, err, ErrInvalidInput)
    _, err = submitPoll(t, e, jan, single.ID, `"zaterdag"`)
    assert.ErrorIs(t, err, ErrInvalidInput)
    _, err = submitPoll(t, e, jan, text.ID, `{"option_index":0}`)
    assert.ErrorIs(t, err, ErrInvalidInput)

    _, err = submitPoll(t, e, jan, multi.ID, `{"option_indices":[2,0,2]}`)
    require.NoError(t, err)
    var row model.PostResponse
    require.NoError(t, e.db.Where("post_id = ?", multi.ID).First(&row).Error)
    var ans model.PollAnswer
    require.NoError(t, json.Unmarshal(row.Data, &ans))
    assert.Equal(t, []int{0, 2}, ans.OptionIndices)
}

func TestSubmitForm_UpsertAndValidation(t *testing.T) {
    e := newEnv(t)
    ctx := context.Background()
    jan := e.member(t, "jan")
    piet := e.member(t, "piet")
    p := formPost(t, e, jan)

    submit := func(data string) error {
        _, err := e.content.SubmitResponse(ctx, piet, p.ID, ResponseInput{Kind: model.ResponseForm, Data: json.RawMessage(data)})
        return err
    }

    assert.ErrorIs(t, submit(`{"Maat":"M"}`), ErrInvalidInput, "required field missing")
    assert.ErrorIs(t, submit(`{"Naam":"Piet","Maat":"XXL"}`), ErrInvalidInput)
    assert.ErrorIs(t, submit(`{"Naam":"Piet","Leeftijd":"twintig"}`), ErrInvalidInput)
    assert.ErrorIs(t, submit(`[1,2]`), ErrInvalidInput)

    require.NoError(t, submit(`{"Naam":"Piet","Maat":"M","Extra":"genegeerd"}`))
    require.NoError(t, submit(`{"Naam":"Piet","Maat":"L","Leeftijd":"21"}`))

    var rows []model.PostResponse
    require.NoError(t, e.db.Where("post_id = ? AND user_id = ? AND kind = ?", p.ID, piet.ID, model.ResponseForm).Find(&rows).Error)
    require.Len(t, rows, 1)
    var ans model.FormAnswer
    require.NoError(t, json.Unmarshal(rows[0].Data, &ans))
    assert.Equal(t, model.FormAnswer{"Naam": "Piet", "Maat": "L", "Leeftijd": "21"}, ans)
}

func TestDeletePost_CascadesChildren(t *testing.T) {
    e := newEnv(t)
    ctx := context.Background()
    jan := e.member(t, "jan")
    piet := e.member(t, "piet")
    p := pollPost(t, e, jan, nil, false)
    keep, err := e.content.CreatePost(ctx, jan, CreatePostInput{Content: strPtr("blijft")})
    require.NoError(t, err)

    top, err := e.content.CreateComment(ctx, piet, p.ID, "top", nil)
    require.NoError(t, err)
    _, err = e.content.CreateComment(ctx, jan, p.ID, "reply", &top.Comment.ID)
    require.NoError(t, err)
    _, err = e.content.CreateComment(ctx, piet, keep.ID, "ander", nil)
    require.NoError(t, err)
    _, err = e.content.ToggleLike(ctx, piet, p.ID)
    require.NoError(t, err)
    _, err = e.content.ToggleLike(ctx, piet, keep.ID)
    require.NoError(t, err)
    _, err = submitPoll(t, e, piet, p.ID, `{"option_index":1}`)
    require.NoError(t, err)

    assert.ErrorIs(t, e.content.DeletePost(ctx, piet, p.ID), ErrForbidden)
    require.NoError(t, e.content.DeletePost(ctx, jan, p.ID))

    assert.Zero(t, e.count(t, &model.Post{}, "id = ?", p.ID))
    assert.Zero(t, e.count(t, &model.Comment{}, "post_id = ?", p.ID))
    assert.Zero(t, e.count(t, &model.Like{}, "post_id = ?", p.ID))
    assert.Zero(t, e.count(t, &model.PostResponse{}, "post_id = ?", p.ID))

    assert.Equal(t, int64(1), e.count(t, &model.Comment{}, "post_id = ?", keep.ID))
    assert.Equal(t, int64(1), e.count(t, &model.Like{}, "post_id = ?", keep.ID))

    assert.ErrorIs(t, e.content.DeletePost(ctx, jan, p.ID), ErrNotFound)
}

func TestEditAndDelete_AuthorOrAdmin(t *testing.T) {
    e := newEnv(t)
    ctx := context.Background()
    jan := e.member(t, "jan")
    piet := e.member(t, "piet")
    p, err := e.content.CreatePost(ctx, jan, CreatePostInput{Content: strPtr("origineel")})
    require.NoError(t, err)
    c, err := e.content.CreateComment(ctx, jan, p.ID, "commentaar", nil)
    require.NoError(t, err)

    _, err = e.content.UpdatePost(ctx, piet, p.ID, strPtr("gekaapt"))
    assert.ErrorIs(t, err, ErrForbidden)
    _, err = e.content.UpdateComment(ctx, piet, c.Comment.ID, "gekaapt")
    assert.ErrorIs(t, err, ErrForbidden)
    assert.ErrorIs(t, e.content.DeleteComment(ctx, piet, c.Comment.ID), ErrForbidden)

    updated, err := e.content.UpdatePost(ctx, jan, p.ID, strPtr("aangepast"))
    require.NoError(t, err)
    assert.Equal(t, "aangepast", *updated.Content)
    _, err = e.content.UpdatePost(ctx, jan, p.ID, strPtr("  "))
    assert.ErrorIs(t, err, ErrInvalidInput, "a text-only post cannot lose its text")

    edited, err := e.content.UpdateComment(ctx, e.admin, c.Comment.ID, "door admin")
    require.NoError(t, err)
    assert.Equal(t, "door admin", edited.Content)
    _, err = e.content.UpdateComment(ctx, jan, c.Comment.ID, "")
    assert.ErrorIs(t, err, ErrInvalidInput)

    var stored model.Post
    require.NoError(t, e.db.Where("id = ?", p.ID).First(&stored).Error)
    assert.Equal(t, "aangepast", *stored.Content)

    require.NoError(t, e.content.DeleteComment(ctx, e.admin, c.Comment.ID))
    require.NoError(t, e.content.DeletePost(ctx, e.admin, p.ID))
    _, err = e.content.UpdatePost(ctx, jan, "missing", strPtr("x"))
    assert.ErrorIs(t, err, ErrNotFound)
}

func TestListFeedPage_OrderingAndAppend(t *testing.T) {
    e := newEnv(t)
    ctx := context.Background()
    jan := e.member(t, "jan")
    piet := e.member(t, "piet")
    g := e.group(t, "Leiding", "2025", jan, piet)

    base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
    ids := make([]string, 3)
    for i := range ids {
        p := &model.Post{AuthorID: jan.ID, GroupID: &g, Content: strPtr("post"), CreatedAt: base.Add(time.Duration(i) * time.Hour)}
        require.NoError(t, e.posts.Create(ctx, p))
        ids[i] = p.ID
    }
    // 全站动态不出现在分组页
    require.NoError(t, e.posts.Create(ctx, &model.Post{AuthorID: jan.ID, Content: strPtr("global")}))

    newest := ids[2]
    first := &model.Comment{PostID: newest, AuthorID: piet.ID, Content: "eerste", CreatedAt: base.Add(5 * time.Hour)}
    second := &model.Comment{PostID: newest, AuthorID: jan.ID, Content: "tweede", CreatedAt: base.Add(6 * time.Hour)}
    require.NoError(t, e.comments.Create(ctx, second))
    require.NoError(t, e.comments.Create(ctx, first))
    laterReply := &model.Comment{PostID: newest, AuthorID: piet.ID, ParentID: &first.ID, Content: "later", CreatedAt: base.Add(8 * time.Hour)}
    earlyReply := &model.Comment{PostID: newest, AuthorID: jan.ID, ParentID: &first.ID, Content: "vroeg", CreatedAt: base.Add(7 * time.Hour)}
    require.NoError(t, e.comments.Create(ctx, laterReply))
    require.NoError(t, e.comments.Create(ctx, earlyReply))
    _, err := e.content.ToggleLike(ctx, piet, newest)
    require.NoError(t, err)

    page, err := e.content.ListFeedPage(ctx, jan, &g, 2, 0)
    require.NoError(t, err)
    require.Len(t, page.Posts, 2)
    assert.True(t, page.HasMore)
    assert.Equal(t, 2, page.NextOffset)
    assert.Equal(t, ids[2], page.Posts[0].ID)
    assert.Equal(t, ids[1], page.Posts[1].ID)

    top := page.Posts[0]
    require.Len(t, top.Comments, 2)
    assert.Equal(t, "eerste", top.Comments[0].Content)
    assert.Equal(t, "tweede", top.Comments[1].Content)
    require.Len(t, top.Comments[0].Replies, 2)
    assert.Equal(t, "vroeg", top.Comments[0].Replies[0].Content)
    assert.Equal(t, "later", top.Comments[0].Replies[1].Content)
    assert.Equal(t, 1, top.Likes.Count)
    assert.False(t, top.Likes.LikedByMe)
    assert.Equal(t, []string{"piet"}, top.Likes.Likers)
    assert.Empty(t, page.Posts[1].Comments)

    next, err := e.content.ListFeedPage(ctx, jan, &g, 2, page.NextOffset)
    require.NoError(t, err)
    require.Len(t, next.Posts, 1)
    assert.False(t, next.HasMore)
    assert.Equal(t, 3, next.NextOffset)
    assert.Equal(t, ids[0], next.Posts[0].ID)

    global, err := e.content.ListFeedPage(ctx, jan, nil, 0, 0)
    require.NoError(t, err)
    require.Len(t, global.Posts, 1)
    assert.Equal(t, "global", *global.Posts[0].Content)
}

func TestListFeedPage_Aggregates(t *testing.T) {
    e := newEnv(t)
    ctx := context.Background()
    jan := e.member(t, "jan")
    piet := e.member(t, "piet")
    joris := e.member(t, "joris")
    poll := pollPost(t, e, jan, nil, true)
    form := formPost(t, e, jan)

    _, err := submitPoll(t, e, piet, poll.ID, `{"option_indices":[0,2]}`)
    require.NoError(t, err)
    _, err = submitPoll(t, e, joris, poll.ID, `{"option_index":2}`)
    require.NoError(t, err)
    _, err = e.content.SubmitResponse(ctx, piet, form.ID, ResponseInput{Kind: model.ResponseForm, Data: json.RawMessage(`{"Naam":"Piet"}`)})
    require.NoError(t, err)

    views := func(who auth.Identity) map[string]*PostView {
        page, err := e.content.ListFeedPage(ctx, who, nil, 10, 0)
        require.NoError(t, err)
        out := map[string]*PostView{}
        for _, p := range page.Posts {
            out[p.ID] = p
        }
        return out
    }

    asPiet := views(piet)
    pv := asPiet[poll.ID].Poll
    require.NotNil(t, pv)
    assert.Equal(t, []int{1, 0, 2}, pv.Votes)
    assert.Equal(t, 2, pv.Voters)
    assert.Equal(t, []int{0, 2}, pv.MyChoice)
    fv := asPiet[form.ID].Form
    require.NotNil(t, fv)
    assert.Equal(t, 1, fv.Count)
    assert.Equal(t, model.FormAnswer{"Naam": "Piet"}, fv.Mine)
    assert.Empty(t, fv.Responses, "only the author and admins see all answers")

    asAuthor := views(jan)
    require.Len(t, asAuthor[form.ID].Form.Responses, 1)
    assert.Equal(t, "piet", asAuthor[form.ID].Form.Responses[0].User.Username)
    require.Len(t, views(e.admin)[form.ID].Form.Responses, 1)
}

func TestListFeedPage_ForbiddenGroup(t *testing.T) {
    e := newEnv(t)
    ctx := context.Background()
    jan := e.member(t, "jan")
    loner := e.member(t, "loner")
    g := e.group(t, "Leiding", "2025", jan)
    missing := "00000000-0000-0000-0000-000000000000"

    _, err := e.content.ListFeedPage(ctx, loner, &g, 10, 0)
    assert.ErrorIs(t, err, ErrForbidden)
    _, err = e.content.ListFeedPage(ctx, loner, &missing, 10, 0)
    assert.ErrorIs(t, err, ErrForbidden, "members cannot tell a missing group from a forbidden one")
    _, err = e.content.ListFeedPage(ctx, e.admin, &missing, 10, 0)
    assert.ErrorIs(t, err, ErrNotFound)

    page, err := e.content.ListFeedPage(ctx, e.admin, &g, 10, 0)
    require.NoError(t, err)
    assert.Empty(t, page.Posts)
    assert.False(t, page.HasMore)
}
