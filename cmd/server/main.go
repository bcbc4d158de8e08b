// @title Groupfeed API
// @version 1.0
// @description Group-scoped feed with push and email notification fan-out.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
    "context"
    "errors"
    "fmt"
    "net/http"
    "os"
    "os/signal"
    "syscall"
    "time"

    "github.com/getsentry/sentry-go"
    "github.com/gin-gonic/gin"
    "github.com/redis/go-redis/v9"
    "github.com/spf13/pflag"
    "go.uber.org/zap"

    "github.com/d60-Lab/groupfeed/config"
    "github.com/d60-Lab/groupfeed/internal/api"
    "github.com/d60-Lab/groupfeed/internal/api/handler"
    "github.com/d60-Lab/groupfeed/internal/auth"
    "github.com/d60-Lab/groupfeed/internal/cache"
    "github.com/d60-Lab/groupfeed/internal/notify"
    "github.com/d60-Lab/groupfeed/internal/repository"
    "github.com/d60-Lab/groupfeed/internal/service"
    "github.com/d60-Lab/groupfeed/pkg/database"
    "github.com/d60-Lab/groupfeed/pkg/logger"
    "github.com/d60-Lab/groupfeed/pkg/middleware"
    "github.com/d60-Lab/groupfeed/pkg/tracing"
)

func main() {
    configPath := pflag.String("config", "", "配置文件路径（默认 ./config.yaml）")
    migrate := pflag.Bool("migrate", true, "启动时自动建表")
    swagger := pflag.Bool("swagger", true, "暴露 /swagger")
    pflag.Parse()

    if err := run(*configPath, *migrate, *swagger); err != nil {
        fmt.Fprintln(os.Stderr, err)
        os.Exit(1)
    }
}

func run(configPath string, migrate, swagger bool) error {
    cfg, err := config.LoadFile(configPath)
    if err != nil {
        return fmt.Errorf("load config: %w", err)
    }
    if cfg.Auth.JWTSecret == "" {
        return errors.New("auth.jwt_secret is required")
    }
    if err := logger.Init(cfg.Log.Level, cfg.Log.Format); err != nil {
        return fmt.Errorf("init logger: %w", err)
    }
    defer logger.Sync()
    gin.SetMode(cfg.Server.Mode)

    if cfg.Sentry.DSN != "" {
        if err := sentry.Init(sentry.ClientOptions{Dsn: cfg.Sentry.DSN, Environment: cfg.Sentry.Environment}); err != nil {
            logger.Warn("sentry init failed", zap.Error(err))
        } else {
            defer sentry.Flush(2 * time.Second)
        }
    }

    ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
    defer stop()

    shutdownTracing, err := tracing.Init(ctx, cfg.Tracing)
    if err != nil {
        return fmt.Errorf("init tracing: %w", err)
    }

    db, err := database.InitDB(cfg)
    if err != nil {
        return fmt.Errorf("init database: %w", err)
    }
    defer database.Close(db)
    if migrate {
        if err := database.Migrate(db); err != nil {
            return fmt.Errorf("migrate: %w", err)
        }
    }

    var groupCache cache.GroupIDCache = cache.Nop{}
    if cfg.Redis.Addr != "" {
        rdb := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
        defer rdb.Close()
        if err := rdb.Ping(ctx).Err(); err != nil {
            logger.Warn("redis unavailable, group cache disabled", zap.Error(err))
        } else {
            groupCache = cache.NewRedisGroupCache(rdb, cfg.Redis.TTL)
        }
    }

    users := repository.NewUserRepository(db)
    groups := repository.NewGroupRepository(db)
    access := repository.NewGroupAccessRepository(db)
    posts := repository.NewPostRepository(db)
    comments := repository.NewCommentRepository(db)
    likes := repository.NewLikeRepository(db)
    responses := repository.NewResponseRepository(db)

    var push notify.PushSender
    if cfg.Push.Enabled() {
        push = notify.NewWebPush(cfg.Push)
    } else {
        logger.Info("VAPID keys not configured, web push disabled")
    }
    var mail notify.Mailer = notify.LogMailer{}
    if cfg.Mail.Enabled() {
        mail = notify.NewSMTPMailer(cfg.Mail)
    }
    dispatcher := notify.NewDispatcher(users, access, push, mail, notify.Options{
        AppName:      cfg.Mail.AppName,
        BaseURL:      cfg.Server.BaseURL,
        SkipUsername: cfg.Feed.SystemUsername,
    })

    queue := notify.NewQueue(cfg.Notify.QueueSize)
    stopQueue := queue.Start(cfg.Notify.Workers)

    resolver := service.NewAccessResolver(groups, access, users, groupCache)
    content := service.NewContentService(resolver, posts, comments, likes, responses, service.ContentOptions{
        DefaultPageSize: cfg.Feed.DefaultPageSize,
        MaxPageSize:     cfg.Feed.MaxPageSize,
    })
    feed := service.NewFeedService(content, resolver, users, groups, dispatcher, queue, service.FeedOptions{
        GlobalAudience:  service.GlobalAudience(cfg.Notify.GlobalAudience),
        MentionAudience: service.MentionAudience(cfg.Notify.MentionAudience),
        SystemUsername:  cfg.Feed.SystemUsername,
        SearchLimit:     cfg.Feed.SearchLimit,
    })
    h := handler.New(feed, service.NewGroupService(groups, access, groupCache), resolver, service.NewAccountService(users, dispatcher))

    tokens := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.Issuer)
    router := api.NewRouter(h, tokens, api.RouterOptions{
        ServiceName: cfg.Tracing.Service,
        RateLimit:   middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst),
        Swagger:     swagger,
    })

    srv := &http.Server{
        Addr:              cfg.Server.Addr,
        Handler:           router,
        ReadHeaderTimeout: 10 * time.Second,
    }
    errCh := make(chan error, 1)
    go func() {
        logger.Info("server listening", zap.String("addr", cfg.Server.Addr))
        if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
            errCh <- err
        }
        close(errCh)
    }()

    select {
    case <-ctx.Done():
        logger.Info("shutting down")
    case err := <-errCh:
        if err != nil {
            return fmt.Errorf("serve: %w", err)
        }
    }

    shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
    defer cancel()
    if err := srv.Shutdown(shutdownCtx); err != nil {
        logger.Error("http shutdown", zap.Error(err))
    }
    // 已接收的请求可能还在排队发送通知
    if err := stopQueue(shutdownCtx); err != nil {
        logger.Warn("notification queue not drained", zap.Error(err))
    }
    if err := shutdownTracing(shutdownCtx); err != nil {
        logger.Warn("tracing shutdown", zap.Error(err))
    }
    return nil
}
