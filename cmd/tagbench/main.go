package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/d60-Lab/gin-blog/config"
	"github.com/d60-Lab/gin-blog/internal/model"
	"github.com/d60-Lab/gin-blog/internal/repository"
	"github.com/d60-Lab/gin-blog/pkg/database"
)

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func envInt(key string, def int) int {
	if s := os.Getenv(key); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return def
}

// 并发 resolve-or-create 压测：POOL 个标签名被 CONC 个 worker 反复争抢，最终每个名字只应有一行
func main() {
	cfg := must(config.Load())
	db := must(database.InitDB(cfg))
	tagRepo := repository.NewTagRepository(db)

	N := envInt("N", 10000)
	CONC := envInt("CONC", 16)
	POOL := envInt("POOL", 50)
	prefix := fmt.Sprintf("bench-%d-", time.Now().UnixNano())

	ctx := context.Background()
	feed := make(chan int, N)
	for i := 0; i < N; i++ {
		feed <- i
	}
	close(feed)

	var (
		mu       sync.Mutex
		lat      = make([]time.Duration, 0, N)
		failures int
		wg       sync.WaitGroup
	)
	t0 := time.Now()
	for w := 0; w < CONC; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range feed {
				name := prefix + strconv.Itoa(i%POOL)
				st := time.Now()
				_, err := tagRepo.ResolveOrCreate(ctx, name)
				d := time.Since(st)
				mu.Lock()
				lat = append(lat, d)
				if err != nil {
					failures++
				}
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	total := time.Since(t0)

	var rows int64
	if err := db.Model(&model.Tag{}).Where("name LIKE ?", prefix+"%").Count(&rows).Error; err != nil {
		panic(err)
	}

	pct := func(vs []time.Duration, p float64) time.Duration {
		if len(vs) == 0 {
			return 0
		}
		xs := append([]time.Duration(nil), vs...)
		sort.Slice(xs, func(i, j int) bool { return xs[i] < xs[j] })
		k := int(math.Ceil(p*float64(len(xs)))) - 1
		if k < 0 {
			k = 0
		}
		if k >= len(xs) {
			k = len(xs) - 1
		}
		return xs[k]
	}

	want := int64(POOL)
	if N < POOL {
		want = int64(N)
	}
	fmt.Printf("N=%d, CONC=%d, POOL=%d, driver=%s\n", N, CONC, POOL, cfg.Database.Driver)
	fmt.Printf("resolve-or-create total: %v, per op: %v, p50: %v, p95: %v, p99: %v\n",
		total, total/time.Duration(N), pct(lat, 0.50), pct(lat, 0.95), pct(lat, 0.99))
	fmt.Printf("failures=%d, tag rows=%d (want %d)\n", failures, rows, want)
	if rows != want || failures > 0 {
		os.Exit(1)
	}
}
