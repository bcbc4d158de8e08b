package service

import (
    "fmt"
    "net/url"
    "unicode/utf8"

    "github.com/d60-Lab/groupfeed/internal/model"
    "github.com/d60-Lab/groupfeed/internal/notify"
)

const excerptLen = 140

func excerpt(s string) string {
    if utf8.RuneCountInString(s) <= excerptLen {
        return s
    }
    r := []rune(s)
    return string(r[:excerptLen-1]) + "…"
}

func postLink(p *model.Post) string {
    if p.GroupID == nil {
        return "/feed#post-" + p.ID
    }
    return "/feed?group=" + url.QueryEscape(*p.GroupID) + "#post-" + p.ID
}

func postSummary(p *model.Post) string {
    switch {
    case p.Content != nil:
        return excerpt(*p.Content)
    case p.PollData() != nil:
        return "Poll: " + excerpt(p.PollData().Question)
    case len(p.Form) > 0:
        return "A new form is waiting for your answer."
    default:
        return fmt.Sprintf("Shared %d attachment(s).", len(p.Attachments))
    }
}

func newPostMessage(author string, p *model.Post, g *model.Group) notify.Message {
    title := "New post by " + author
    if g != nil {
        title = fmt.Sprintf("New post in %s", g.Name)
    }
    return notify.Message{Title: title, Body: postSummary(p), Link: postLink(p)}
}

func mentionMessage(author string, text string, p *model.Post) notify.Message {
    return notify.Message{Title: author + " mentioned you", Body: excerpt(text), Link: postLink(p)}
}

func newCommentMessage(author string, c *model.Comment, p *model.Post) notify.Message {
    return notify.Message{Title: "New comment by " + author, Body: excerpt(c.Content), Link: postLink(p)}
}

func replyMessage(author string, c *model.Comment, p *model.Post) notify.Message {
    return notify.Message{Title: author + " replied to your comment", Body: excerpt(c.Content), Link: postLink(p)}
}

func likeMessage(author string, p *model.Post) notify.Message {
    return notify.Message{Title: author + " liked your post", Body: postSummary(p), Link: postLink(p)}
}

func responseMessage(author string, kind model.ResponseKind, p *model.Post) notify.Message {
    return notify.Message{Title: fmt.Sprintf("%s responded to your %s", author, kind), Body: postSummary(p), Link: postLink(p)}
}
