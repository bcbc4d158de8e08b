package main

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/d60-Lab/groupfeed/config"
	"github.com/d60-Lab/groupfeed/internal/auth"
	"github.com/d60-Lab/groupfeed/internal/cache"
	"github.com/d60-Lab/groupfeed/internal/model"
	"github.com/d60-Lab/groupfeed/internal/repository"
	"github.com/d60-Lab/groupfeed/internal/service"
	"github.com/d60-Lab/groupfeed/pkg/database"
)

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func mustDo(err error) {
	if err != nil {
		panic(err)
	}
}

func summarize(label string, ds []time.Duration) {
	xs := append([]time.Duration(nil), ds...)
	sort.Slice(xs, func(i, j int) bool { return xs[i] < xs[j] })
	var sum time.Duration
	for _, d := range xs {
		sum += d
	}
	p := func(q float64) time.Duration { return xs[int(q*float64(len(xs)-1))] }
	fmt.Printf("%-14s avg=%v p50=%v p95=%v p99=%v\n", label, sum/time.Duration(len(xs)), p(0.50), p(0.95), p(0.99))
}

func main() {
	ctx := context.Background()
	cfg := must(config.Load())
	db := must(database.InitDB(cfg))
	mustDo(database.Migrate(db))

	const (
		groupCount   = 40
		userCount    = 2000
		groupsPerUsr = 3
		reads        = 20000
		churnEvery   = 500 // 每 N 次读取撤销并重新授予一次权限
	)

	// REDIS_ADDR 为空时使用进程内 miniredis
	addr := cfg.Redis.Addr
	if addr == "" {
		mr := must(miniredis.Run())
		defer mr.Close()
		addr = mr.Addr()
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	defer rdb.Close()
	mustDo(rdb.Ping(ctx).Err())

	users := repository.NewUserRepository(db)
	groups := repository.NewGroupRepository(db)
	access := repository.NewGroupAccessRepository(db)

	fmt.Println("Setting up test data...")
	tag := uuid.NewString()[:8]
	groupIDs := make([]string, groupCount)
	for i := range groupIDs {
		g := &model.Group{Name: fmt.Sprintf("cache %s %d", tag, i), Slug: fmt.Sprintf("cache-%s-%d", tag, i)}
		mustDo(groups.Create(ctx, g))
		groupIDs[i] = g.ID
	}
	r := rand.New(rand.NewSource(42))
	ids := make([]auth.Identity, userCount)
	for i := range ids {
		u := &model.User{Username: fmt.Sprintf("c_%s_%d", tag, i), Role: model.RoleMember}
		mustDo(users.Create(ctx, u))
		ids[i] = auth.Identity{ID: u.ID, Username: u.Username, Role: u.Role}
		for _, k := range r.Perm(groupCount)[:groupsPerUsr] {
			mustDo(access.Create(ctx, u.ID, groupIDs[k]))
		}
	}

	redisCache := cache.NewRedisGroupCache(rdb, cfg.Redis.TTL)
	admin := auth.Identity{ID: "bench-admin", Username: "bench-admin", Role: model.RoleAdmin}

	run := func(label string, c cache.GroupIDCache) {
		resolver := service.NewAccessResolver(groups, access, users, c)
		rr := rand.New(rand.NewSource(7))
		ds := make([]time.Duration, 0, reads)
		for i := 0; i < reads; i++ {
			who := ids[rr.Intn(len(ids))]
			if i > 0 && i%churnEvery == 0 {
				gid := groupIDs[rr.Intn(groupCount)]
				_ = resolver.Revoke(ctx, admin, who.ID, gid)
				_ = resolver.Grant(ctx, admin, who.ID, gid)
			}
			st := time.Now()
			_ = must(resolver.ListVisibleGroups(ctx, who))
			ds = append(ds, time.Since(st))
		}
		summarize(label, ds)
	}

	fmt.Printf("users=%d groups=%d reads=%d ttl=%v\n", userCount, groupCount, reads, cfg.Redis.TTL)
	run("db only", cache.Nop{})
	run("redis cache", redisCache)
	hits, misses := redisCache.Counters()
	fmt.Printf("redis cache hits=%d misses=%d hit_rate=%.2f%%\n", hits, misses, 100*float64(hits)/float64(hits+misses))
	userIDs := make([]string, len(ids))
	for i, id := range ids {
		userIDs[i] = id.ID
	}
	redisCache.Invalidate(ctx, userIDs...)
}
