package handler

import (
    "github.com/gin-gonic/gin"

    "github.com/d60-Lab/groupfeed/internal/service"
    "github.com/d60-Lab/groupfeed/pkg/response"
)

// CreateGroup 新建分组
// @Summary 新建分组
// @Tags 管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.GroupInput true "分组"
// @Success 201 {object} response.Response{data=model.Group}
// @Failure 409 {object} response.Response
// @Router /api/v1/admin/groups [post]
func (h *Handler) CreateGroup(c *gin.Context) {
    var req service.GroupInput
    if err := c.ShouldBindJSON(&req); err != nil {
        response.BadRequest(c, err.Error())
        return
    }
    g, err := h.groups.Create(c.Request.Context(), identity(c), req)
    if err != nil {
        fail(c, err)
        return
    }
    response.Created(c, g)
}

// UpdateGroup 修改分组
// @Summary 修改分组
// @Tags 管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "分组ID"
// @Param request body service.GroupInput true "分组"
// @Success 200 {object} response.Response{data=model.Group}
// @Router /api/v1/admin/groups/{id} [put]
func (h *Handler) UpdateGroup(c *gin.Context) {
    var req service.GroupInput
    if err := c.ShouldBindJSON(&req); err != nil {
        response.BadRequest(c, err.Error())
        return
    }
    g, err := h.groups.Update(c.Request.Context(), identity(c), c.Param("id"), req)
    if err != nil {
        fail(c, err)
        return
    }
    response.Success(c, g)
}

// DeleteGroup 删除分组（级联成员关系与组内动态）
// @Summary 删除分组
// @Tags 管理
// @Security BearerAuth
// @Param id path string true "分组ID"
// @Success 200 {object} response.Response
// @Router /api/v1/admin/groups/{id} [delete]
func (h *Handler) DeleteGroup(c *gin.Context) {
    if err := h.groups.Delete(c.Request.Context(), identity(c), c.Param("id")); err != nil {
        fail(c, err)
        return
    }
    response.Success(c, nil)
}

// ListMembers 分组显式成员
// @Summary 分组成员
// @Tags 管理
// @Security BearerAuth
// @Param id path string true "分组ID"
// @Success 200 {object} response.Response{data=[]model.User}
// @Router /api/v1/admin/groups/{id}/members [get]
func (h *Handler) ListMembers(c *gin.Context) {
    users, err := h.access.ListMembers(c.Request.Context(), identity(c), c.Param("id"))
    if err != nil {
        fail(c, err)
        return
    }
    response.Success(c, users)
}

// GrantAccess 授予分组访问权
// @Summary 添加成员
// @Tags 管理
// @Security BearerAuth
// @Param id path string true "分组ID"
// @Param user_id path string true "用户ID"
// @Success 201 {object} response.Response
// @Failure 409 {object} response.Response
// @Router /api/v1/admin/groups/{id}/members/{user_id} [post]
func (h *Handler) GrantAccess(c *gin.Context) {
    if err := h.access.Grant(c.Request.Context(), identity(c), c.Param("user_id"), c.Param("id")); err != nil {
        fail(c, err)
        return
    }
    response.Created(c, nil)
}

// RevokeAccess 移除分组访问权
// @Summary 移除成员
// @Tags 管理
// @Security BearerAuth
// @Param id path string true "分组ID"
// @Param user_id path string true "用户ID"
// @Success 200 {object} response.Response
// @Router /api/v1/admin/groups/{id}/members/{user_id} [delete]
func (h *Handler) RevokeAccess(c *gin.Context) {
    if err := h.access.Revoke(c.Request.Context(), identity(c), c.Param("user_id"), c.Param("id")); err != nil {
        fail(c, err)
        return
    }
    response.Success(c, nil)
}

// SendTestNotification 立即向某个用户发送测试通知
// @Summary 测试通知
// @Tags 管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.TestNotification true "通知"
// @Success 200 {object} response.Response{data=notify.Report}
// @Router /api/v1/admin/notifications/test [post]
func (h *Handler) SendTestNotification(c *gin.Context) {
    var req service.TestNotification
    if err := c.ShouldBindJSON(&req); err != nil {
        response.BadRequest(c, err.Error())
        return
    }
    rep, err := h.accounts.SendTestNotification(c.Request.Context(), identity(c), req)
    if err != nil {
        fail(c, err)
        return
    }
    response.Success(c, rep)
}
