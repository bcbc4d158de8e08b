package handler

import (
    "github.com/gin-gonic/gin"

    "github.com/d60-Lab/groupfeed/internal/model"
    "github.com/d60-Lab/groupfeed/pkg/response"
)

type unsubscribeRequest struct {
    Endpoint string `json:"endpoint" binding:"required"`
}

type notificationSettingsRequest struct {
    EmailNotifications *bool `json:"email_notifications" binding:"required"`
}

// SubscribePush 保存浏览器推送订阅
// @Summary 添加推送订阅
// @Tags 账户
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body model.PushSubscription true "订阅"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.Response
// @Router /api/v1/account/push-subscriptions [post]
func (h *Handler) SubscribePush(c *gin.Context) {
    var req model.PushSubscription
    if err := c.ShouldBindJSON(&req); err != nil {
        response.BadRequest(c, err.Error())
        return
    }
    added, err := h.accounts.SubscribePush(c.Request.Context(), identity(c), req)
    if err != nil {
        fail(c, err)
        return
    }
    response.Success(c, gin.H{"added": added})
}

// UnsubscribePush 删除推送订阅
// @Summary 删除推送订阅
// @Tags 账户
// @Accept json
// @Security BearerAuth
// @Param request body unsubscribeRequest true "endpoint"
// @Success 200 {object} response.Response
// @Router /api/v1/account/push-subscriptions [delete]
func (h *Handler) UnsubscribePush(c *gin.Context) {
    var req unsubscribeRequest
    if err := c.ShouldBindJSON(&req); err != nil {
        response.BadRequest(c, err.Error())
        return
    }
    if err := h.accounts.UnsubscribePush(c.Request.Context(), identity(c), req.Endpoint); err != nil {
        fail(c, err)
        return
    }
    response.Success(c, nil)
}

// UpdateNotificationSettings 邮件通知开关
// @Summary 通知设置
// @Tags 账户
// @Accept json
// @Security BearerAuth
// @Param request body notificationSettingsRequest true "设置"
// @Success 200 {object} response.Response
// @Router /api/v1/account/notifications [put]
func (h *Handler) UpdateNotificationSettings(c *gin.Context) {
    var req notificationSettingsRequest
    if err := c.ShouldBindJSON(&req); err != nil {
        response.BadRequest(c, err.Error())
        return
    }
    if err := h.accounts.UpdateNotificationSettings(c.Request.Context(), identity(c), *req.EmailNotifications); err != nil {
        fail(c, err)
        return
    }
    response.Success(c, gin.H{"email_notifications": *req.EmailNotifications})
}
