package api

import (
	"github.com/gin-contrib/gzip"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	_ "github.com/d60-Lab/groupfeed/docs"
	"github.com/d60-Lab/groupfeed/internal/api/handler"
	"github.com/d60-Lab/groupfeed/internal/auth"
	"github.com/d60-Lab/groupfeed/pkg/middleware"
)

// RouterOptions 路由层可选组件
type RouterOptions struct {
	ServiceName string
	RateLimit   *middleware.RateLimiter
	Swagger     bool
}

// NewRouter 注册全部路由
func NewRouter(h *handler.Handler, tokens *auth.TokenManager, opts RouterOptions) *gin.Engine {
	r := gin.New()
	if opts.ServiceName == "" {
		opts.ServiceName = "groupfeed"
	}
	r.Use(
		middleware.Recovery(),
		middleware.RequestLogger(),
		sentrygin.New(sentrygin.Options{Repanic: true}),
		otelgin.Middleware(opts.ServiceName),
		gzip.Gzip(gzip.DefaultCompression),
	)

	r.GET("/healthz", h.Healthz)
	if opts.Swagger {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	limit := func(c *gin.Context) { c.Next() }
	if opts.RateLimit != nil {
		limit = opts.RateLimit.Middleware()
	}

	v1 := r.Group("/api/v1", tokens.Middleware())
	{
		v1.GET("/groups", h.ListGroups)
		v1.GET("/feed", h.Feed)
		v1.GET("/users/search", h.SearchUsers)

		v1.POST("/posts", limit, h.CreatePost)
		v1.PUT("/posts/:id", limit, h.UpdatePost)
		v1.DELETE("/posts/:id", h.DeletePost)
		v1.POST("/posts/:id/comments", limit, h.CreateComment)
		v1.POST("/posts/:id/like", limit, h.ToggleLike)
		v1.POST("/posts/:id/responses", limit, h.SubmitResponse)
		v1.PUT("/comments/:id", limit, h.UpdateComment)
		v1.DELETE("/comments/:id", h.DeleteComment)

		account := v1.Group("/account")
		account.POST("/push-subscriptions", h.SubscribePush)
		account.DELETE("/push-subscriptions", h.UnsubscribePush)
		account.PUT("/notifications", h.UpdateNotificationSettings)

		admin := v1.Group("/admin", auth.RequireAdmin())
		admin.POST("/groups", h.CreateGroup)
		admin.PUT("/groups/:id", h.UpdateGroup)
		admin.DELETE("/groups/:id", h.DeleteGroup)
		admin.GET("/groups/:id/members", h.ListMembers)
		admin.POST("/groups/:id/members/:user_id", h.GrantAccess)
		admin.DELETE("/groups/:id/members/:user_id", h.RevokeAccess)
		admin.POST("/notifications/test", h.SendTestNotification)
	}
	return r
}
