package service

import (
    "context"
    "strings"

    "go.uber.org/zap"

    "github.com/d60-Lab/groupfeed/internal/auth"
    "github.com/d60-Lab/groupfeed/internal/model"
    "github.com/d60-Lab/groupfeed/internal/notify"
    "github.com/d60-Lab/groupfeed/internal/repository"
    "github.com/d60-Lab/groupfeed/pkg/logger"
)

// DirectSender 同步发送给单个用户（管理端测试通知）
type DirectSender interface {
    SendToUser(ctx context.Context, u *model.User, msg notify.Message) notify.Report
}

// TestNotification 管理端测试通知请求
type TestNotification struct {
    UserID string `json:"user_id" binding:"required"`
    Title  string `json:"title" binding:"required,max=120"`
    Body   string `json:"body" binding:"required,max=1000"`
    Link   string `json:"link"`
}

// AccountService 用户自己的推送订阅与通知偏好
type AccountService struct {
    users  repository.UserRepository
    sender DirectSender
}

func NewAccountService(users repository.UserRepository, sender DirectSender) *AccountService {
    return &AccountService{users: users, sender: sender}
}

// SubscribePush 按 endpoint 去重；返回是否新增
func (s *AccountService) SubscribePush(ctx context.Context, id auth.Identity, sub model.PushSubscription) (bool, error) {
    if err := requireIdentity(id); err != nil {
        return false, err
    }
    sub.Endpoint = strings.TrimSpace(sub.Endpoint)
    if sub.Endpoint == "" || sub.Keys.P256dh == "" || sub.Keys.Auth == "" {
        return false, invalid("push subscription needs an endpoint and keys")
    }
    added, err := s.users.AddPushSubscription(ctx, id.ID, sub)
    if err != nil {
        return false, translate(err)
    }
    if added {
        logger.Info("push subscription added", zap.String("user", id.ID))
    }
    return added, nil
}

// UnsubscribePush 未知 endpoint 视为已退订
func (s *AccountService) UnsubscribePush(ctx context.Context, id auth.Identity, endpoint string) error {
    if err := requireIdentity(id); err != nil {
        return err
    }
    endpoint = strings.TrimSpace(endpoint)
    if endpoint == "" {
        return invalid("endpoint is required")
    }
    _, err := s.users.RemovePushSubscriptions(ctx, id.ID, []string{endpoint})
    return translate(err)
}

func (s *AccountService) UpdateNotificationSettings(ctx context.Context, id auth.Identity, emailEnabled bool) error {
    if err := requireIdentity(id); err != nil {
        return err
    }
    return translate(s.users.SetEmailNotifications(ctx, id.ID, emailEnabled))
}

// SendTestNotification 管理端立即向某个用户发送一条通知并返回发送结果
func (s *AccountService) SendTestNotification(ctx context.Context, actor auth.Identity, in TestNotification) (notify.Report, error) {
    if err := requireAdmin(actor); err != nil {
        return notify.Report{}, err
    }
    u, err := s.users.Get(ctx, in.UserID)
    if err != nil {
        return notify.Report{}, translate(err)
    }
    link := in.Link
    if link == "" {
        link = "/"
    }
    rep := s.sender.SendToUser(ctx, u, notify.Message{Title: in.Title, Body: in.Body, Link: link})
    logger.Info("test notification sent", zap.String("user", u.ID), zap.String("by", actor.ID),
        zap.Int("push_delivered", rep.PushDelivered), zap.Int("email_delivered", rep.EmailDelivered))
    return rep, nil
}
