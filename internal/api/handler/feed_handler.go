package handler

import (
    "strconv"
    "strings"

    "github.com/gin-gonic/gin"

    "github.com/d60-Lab/groupfeed/internal/service"
    "github.com/d60-Lab/groupfeed/pkg/response"
)

type updatePostRequest struct {
    Content *string `json:"content"`
}

type commentRequest struct {
    Content  string  `json:"content" binding:"required,max=5000"`
    ParentID *string `json:"parent_id"`
}

type updateCommentRequest struct {
    Content string `json:"content" binding:"required,max=5000"`
}

// ListGroups 当前用户可见的分组
// @Summary 可见分组
// @Tags 动态
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response{data=[]model.Group}
// @Failure 401 {object} response.Response
// @Router /api/v1/groups [get]
func (h *Handler) ListGroups(c *gin.Context) {
    groups, err := h.feed.ListGroups(c.Request.Context(), identity(c))
    if err != nil {
        fail(c, err)
        return
    }
    response.Success(c, groups)
}

// Feed 一页动态；group 为空时为全站动态
// @Summary 动态列表（增量分页）
// @Tags 动态
// @Produce json
// @Security BearerAuth
// @Param group query string false "分组ID"
// @Param limit query int false "每页数量" default(10)
// @Param offset query int false "偏移量" default(0)
// @Success 200 {object} response.Response{data=service.FeedPage}
// @Failure 403 {object} response.Response
// @Router /api/v1/feed [get]
func (h *Handler) Feed(c *gin.Context) {
    var group *string
    if g := strings.TrimSpace(c.Query("group")); g != "" {
        group = &g
    }
    limit, _ := strconv.Atoi(c.DefaultQuery("limit", "0"))
    offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
    page, err := h.feed.FeedPage(c.Request.Context(), identity(c), group, limit, offset)
    if err != nil {
        fail(c, err)
        return
    }
    response.Success(c, page)
}

// CreatePost 发布动态
// @Summary 发布动态（通知异步发送）
// @Tags 动态
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.CreatePostInput true "动态内容"
// @Success 201 {object} response.Response{data=service.PostView}
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /api/v1/posts [post]
func (h *Handler) CreatePost(c *gin.Context) {
    var req service.CreatePostInput
    if err := c.ShouldBindJSON(&req); err != nil {
        response.BadRequest(c, err.Error())
        return
    }
    post, err := h.feed.CreatePost(c.Request.Context(), identity(c), req)
    if err != nil {
        fail(c, err)
        return
    }
    response.Created(c, service.PostViewOf(post))
}

// UpdatePost 修改正文（作者或 admin）
// @Summary 修改动态
// @Tags 动态
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "动态ID"
// @Param request body updatePostRequest true "正文"
// @Success 200 {object} response.Response{data=service.PostView}
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/posts/{id} [put]
func (h *Handler) UpdatePost(c *gin.Context) {
    var req updatePostRequest
    if err := c.ShouldBindJSON(&req); err != nil {
        response.BadRequest(c, err.Error())
        return
    }
    post, err := h.feed.UpdatePost(c.Request.Context(), identity(c), c.Param("id"), req.Content)
    if err != nil {
        fail(c, err)
        return
    }
    response.Success(c, service.PostViewOf(post))
}

// DeletePost 删除动态及其评论、点赞、回复
// @Summary 删除动态
// @Tags 动态
// @Security BearerAuth
// @Param id path string true "动态ID"
// @Success 200 {object} response.Response
// @Failure 403 {object} response.Response
// @Failure 404 {object} response.Response
// @Router /api/v1/posts/{id} [delete]
func (h *Handler) DeletePost(c *gin.Context) {
    if err := h.feed.DeletePost(c.Request.Context(), identity(c), c.Param("id")); err != nil {
        fail(c, err)
        return
    }
    response.Success(c, nil)
}

// CreateComment 评论或回复顶层评论
// @Summary 发表评论
// @Tags 评论
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "动态ID"
// @Param request body commentRequest true "评论"
// @Success 201 {object} response.Response{data=service.CommentView}
// @Failure 400 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /api/v1/posts/{id}/comments [post]
func (h *Handler) CreateComment(c *gin.Context) {
    var req commentRequest
    if err := c.ShouldBindJSON(&req); err != nil {
        response.BadRequest(c, err.Error())
        return
    }
    comment, err := h.feed.CreateComment(c.Request.Context(), identity(c), c.Param("id"), req.Content, req.ParentID)
    if err != nil {
        fail(c, err)
        return
    }
    response.Created(c, service.CommentViewOf(comment))
}

// UpdateComment 修改评论
// @Summary 修改评论
// @Tags 评论
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "评论ID"
// @Param request body updateCommentRequest true "评论"
// @Success 200 {object} response.Response{data=service.CommentView}
// @Router /api/v1/comments/{id} [put]
func (h *Handler) UpdateComment(c *gin.Context) {
    var req updateCommentRequest
    if err := c.ShouldBindJSON(&req); err != nil {
        response.BadRequest(c, err.Error())
        return
    }
    comment, err := h.feed.UpdateComment(c.Request.Context(), identity(c), c.Param("id"), req.Content)
    if err != nil {
        fail(c, err)
        return
    }
    response.Success(c, service.CommentViewOf(comment))
}

// DeleteComment 删除评论（含回复）
// @Summary 删除评论
// @Tags 评论
// @Security BearerAuth
// @Param id path string true "评论ID"
// @Success 200 {object} response.Response
// @Router /api/v1/comments/{id} [delete]
func (h *Handler) DeleteComment(c *gin.Context) {
    if err := h.feed.DeleteComment(c.Request.Context(), identity(c), c.Param("id")); err != nil {
        fail(c, err)
        return
    }
    response.Success(c, nil)
}

// ToggleLike 点赞/取消点赞
// @Summary 切换点赞
// @Tags 动态
// @Security BearerAuth
// @Param id path string true "动态ID"
// @Success 200 {object} response.Response{data=service.LikeResult}
// @Router /api/v1/posts/{id}/like [post]
func (h *Handler) ToggleLike(c *gin.Context) {
    res, err := h.feed.ToggleLike(c.Request.Context(), identity(c), c.Param("id"))
    if err != nil {
        fail(c, err)
        return
    }
    response.Success(c, res)
}

// SubmitResponse 投票或填写表单，再次提交覆盖上一次
// @Summary 提交投票/表单
// @Tags 动态
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "动态ID"
// @Param request body service.ResponseInput true "回复"
// @Success 200 {object} response.Response{data=service.ResponseResult}
// @Failure 400 {object} response.Response
// @Router /api/v1/posts/{id}/responses [post]
func (h *Handler) SubmitResponse(c *gin.Context) {
    var req service.ResponseInput
    if err := c.ShouldBindJSON(&req); err != nil {
        response.BadRequest(c, err.Error())
        return
    }
    res, err := h.feed.SubmitResponse(c.Request.Context(), identity(c), c.Param("id"), req)
    if err != nil {
        fail(c, err)
        return
    }
    response.Success(c, res)
}

// SearchUsers 提及自动补全
// @Summary 按前缀搜索用户
// @Tags 动态
// @Security BearerAuth
// @Param q query string true "前缀"
// @Success 200 {object} response.Response{data=[]service.UserRef}
// @Router /api/v1/users/search [get]
func (h *Handler) SearchUsers(c *gin.Context) {
    users, err := h.feed.SearchUsers(c.Request.Context(), identity(c), c.Query("q"))
    if err != nil {
        fail(c, err)
        return
    }
    response.Success(c, users)
}
