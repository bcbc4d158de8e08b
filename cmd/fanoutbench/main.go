package main

import (
    "context"
    "fmt"
    "os"
    "sort"
    "strconv"
    "sync/atomic"
    "time"

    "github.com/google/uuid"

    "github.com/d60-Lab/groupfeed/config"
    "github.com/d60-Lab/groupfeed/internal/model"
    "github.com/d60-Lab/groupfeed/internal/notify"
    "github.com/d60-Lab/groupfeed/internal/repository"
    "github.com/d60-Lab/groupfeed/pkg/database"
)

// slowPush 模拟推送服务的网络延迟
type slowPush struct {
    latency time.Duration
    sent    atomic.Int64
}

func (p *slowPush) Send(ctx context.Context, _ model.PushSubscription, _ []byte) error {
    select {
    case <-time.After(p.latency):
        p.sent.Add(1)
        return nil
    case <-ctx.Done():
        return ctx.Err()
    }
}

type nopMailer struct{}

func (nopMailer) Send(context.Context, notify.Envelope) error { return nil }

func envInt(name string, def int) int {
    if s := os.Getenv(name); s != "" {
        if v, e := strconv.Atoi(s); e == nil && v > 0 {
            return v
        }
    }
    return def
}

func main() {
    cfg, err := config.Load()
    if err != nil { panic(err) }
    db, err := database.InitDB(cfg)
    if err != nil { panic(err) }
    if err := database.Migrate(db); err != nil { panic(err) }

    MEMBERS := envInt("MEMBERS", 200)
    REPEAT := envInt("REPEAT", 20)
    LATENCY := time.Duration(envInt("LATENCY_MS", 20)) * time.Millisecond

    ctx := context.Background()
    users := repository.NewUserRepository(db)
    groups := repository.NewGroupRepository(db)
    access := repository.NewGroupAccessRepository(db)

    // 每次运行单独建一个分组，成员各带一个推送订阅
    run := uuid.NewString()[:8]
    g := &model.Group{Name: "bench " + run, Slug: "bench-" + run}
    if err := groups.Create(ctx, g); err != nil { panic(err) }
    for i := 0; i < MEMBERS; i++ {
        u := &model.User{Username: fmt.Sprintf("bench_%s_%04d", run, i), Role: model.RoleMember}
        if err := users.Create(ctx, u); err != nil { panic(err) }
        sub := model.PushSubscription{Endpoint: "https://push.invalid/" + u.ID, Keys: model.PushKeys{P256dh: "k", Auth: "a"}}
        if _, err := users.AddPushSubscription(ctx, u.ID, sub); err != nil { panic(err) }
        if err := access.Create(ctx, u.ID, g.ID); err != nil { panic(err) }
    }

    push := &slowPush{latency: LATENCY}
    d := notify.NewDispatcher(users, access, push, nopMailer{}, notify.Options{BaseURL: cfg.Server.BaseURL})
    msg := notify.Message{Title: "bench", Body: "fan-out", Link: "/"}

    // 同步扇出：请求线程等待全部投递
    inline := make([]time.Duration, 0, REPEAT)
    for i := 0; i < REPEAT; i++ {
        st := time.Now()
        d.SendToGroup(ctx, g.ID, msg)
        inline = append(inline, time.Since(st))
    }

    // 队列扇出：请求线程只付出入队开销
    q := notify.NewQueue(cfg.Notify.QueueSize)
    stop := q.Start(cfg.Notify.Workers)
    enqueue := make([]time.Duration, 0, REPEAT)
    for i := 0; i < REPEAT; i++ {
        st := time.Now()
        q.Enqueue(ctx, "bench", func(ctx context.Context) { d.SendToGroup(ctx, g.ID, msg) })
        enqueue = append(enqueue, time.Since(st))
    }
    drainStart := time.Now()
    q.Wait()
    drained := time.Since(drainStart)
    _ = stop(ctx)

    pct := func(vs []time.Duration, p float64) time.Duration {
        xs := append([]time.Duration(nil), vs...)
        sort.Slice(xs, func(i, j int) bool { return xs[i] < xs[j] })
        k := int(float64(len(xs)) * p)
        if k < 0 { k = 0 }
        if k >= len(xs) { k = len(xs) - 1 }
        return xs[k]
    }
    avg := func(vs []time.Duration) time.Duration {
        var sum time.Duration
        for _, v := range vs { sum += v }
        return sum / time.Duration(len(vs))
    }

    fmt.Printf("MEMBERS=%d REPEAT=%d LATENCY=%v WORKERS=%d\n", MEMBERS, REPEAT, LATENCY, cfg.Notify.Workers)
    fmt.Printf("Inline fan-out: avg=%v p95=%v p99=%v\n", avg(inline), pct(inline, 0.95), pct(inline, 0.99))
    fmt.Printf("Queued enqueue: avg=%v p95=%v p99=%v (drain=%v)\n", avg(enqueue), pct(enqueue, 0.95), pct(enqueue, 0.99), drained)
    fmt.Printf("Push delivered: %d\n", push.sent.Load())
}
