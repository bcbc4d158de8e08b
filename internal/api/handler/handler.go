package handler

import (
    "errors"

    "github.com/gin-gonic/gin"

    "github.com/d60-Lab/groupfeed/internal/auth"
    "github.com/d60-Lab/groupfeed/internal/service"
    "github.com/d60-Lab/groupfeed/pkg/response"
)

// Handler HTTP 入口，业务全部委托给 service 层
type Handler struct {
    feed     *service.FeedService
    groups   *service.GroupService
    access   *service.AccessResolver
    accounts *service.AccountService
}

func New(feed *service.FeedService, groups *service.GroupService, access *service.AccessResolver, accounts *service.AccountService) *Handler {
    return &Handler{feed: feed, groups: groups, access: access, accounts: accounts}
}

func identity(c *gin.Context) auth.Identity {
    id, _ := auth.Current(c)
    return id
}

// fail 将服务层错误映射为 HTTP 状态码
func fail(c *gin.Context, err error) {
    switch {
    case errors.Is(err, service.ErrUnauthenticated):
        response.Unauthorized(c, "authentication required")
    case errors.Is(err, service.ErrForbidden):
        response.Forbidden(c, "access denied")
    case errors.Is(err, service.ErrNotFound):
        response.NotFound(c, "not found")
    case errors.Is(err, service.ErrInvalidInput):
        response.BadRequest(c, err.Error())
    case errors.Is(err, service.ErrConflict):
        response.Conflict(c, "already exists")
    default:
        response.InternalError(c, err)
    }
}

// Healthz 存活检查
// @Summary 健康检查
// @Tags 系统
// @Produce json
// @Success 200 {object} response.Response
// @Router /healthz [get]
func (h *Handler) Healthz(c *gin.Context) {
    response.Success(c, gin.H{"status": "ok"})
}
