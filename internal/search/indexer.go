package search

import (
	"context"
	"hash/fnv"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/d60-Lab/gin-blog/pkg/logger"
)

type jobAction int

const (
	actionUpsert jobAction = iota + 1
	actionDelete
)

type indexJob struct {
	action jobAction
	doc    *PostDocument
	id     string
	enqAt  time.Time
}

// IndexerOptions 索引写入器参数
type IndexerOptions struct {
	Workers    int
	QueueSize  int
	JobTimeout time.Duration
	// Inline 为 true 时在调用方 goroutine 内直接写索引
	Inline bool
}

// Indexer 文章变更到索引的写通道：每个 worker 一条有界队列，队列满时丢弃并告警。
// 同一文章的任务按 ID 哈希固定到一个 worker，保证按入队顺序生效。
type Indexer struct {
	index   *Index
	shards  []chan indexJob
	opts    IndexerOptions
	pending atomic.Int64
	stopped atomic.Bool
}

func NewIndexer(index *Index, opts IndexerOptions) *Indexer {
	if opts.Workers <= 0 {
		opts.Workers = 2
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 1024
	}
	if opts.JobTimeout <= 0 {
		opts.JobTimeout = 5 * time.Second
	}
	perShard := (opts.QueueSize + opts.Workers - 1) / opts.Workers
	shards := make([]chan indexJob, opts.Workers)
	for i := range shards {
		shards[i] = make(chan indexJob, perShard)
	}
	return &Indexer{index: index, shards: shards, opts: opts}
}

func (x *Indexer) shardFor(id string) chan indexJob {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	return x.shards[h.Sum32()%uint32(len(x.shards))]
}

// Start 启动 worker；返回的停止函数最多等待 ctx 截止或 2 秒让队列排空
func (x *Indexer) Start() func(context.Context) error {
	if x.opts.Inline {
		return func(context.Context) error { return nil }
	}
	stopCh := make(chan struct{})
	var wg sync.WaitGroup
	for _, ch := range x.shards {
		wg.Add(1)
		go func(ch chan indexJob) {
			defer wg.Done()
			for {
				select {
				case job := <-ch:
					x.run(job)
				case <-stopCh:
					return
				}
			}
		}(ch)
	}
	return func(ctx context.Context) error {
		drainCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
		err := x.Sync(drainCtx)
		x.stopped.Store(true)
		close(stopCh)
		wg.Wait()
		if err != nil {
			logger.Warn("indexer stopped before queue drained", zap.Int64("pending", x.pending.Load()))
		}
		return nil
	}
}

// Upsert 文章新建或修改后调用
func (x *Indexer) Upsert(doc *PostDocument) {
	x.enqueue(indexJob{action: actionUpsert, doc: doc, id: doc.ID, enqAt: time.Now()})
}

// Remove 文章删除后调用
func (x *Indexer) Remove(id string) {
	x.enqueue(indexJob{action: actionDelete, id: id, enqAt: time.Now()})
}

func (x *Indexer) enqueue(job indexJob) {
	if x.opts.Inline {
		x.pending.Add(1)
		x.run(job)
		return
	}
	if x.stopped.Load() {
		logger.Warn("indexer stopped, drop job", zap.String("post", job.id))
		return
	}
	x.pending.Add(1)
	select {
	case x.shardFor(job.id) <- job:
	default:
		x.pending.Add(-1)
		logger.Warn("index queue full, drop job", zap.String("post", job.id), zap.Int("action", int(job.action)))
	}
}

// run 超时只告警，仍等待写入结束，避免同一文章的后续任务先于它生效
func (x *Indexer) run(job indexJob) {
	defer x.pending.Add(-1)

	timer := time.NewTimer(x.opts.JobTimeout)
	defer timer.Stop()

	done := make(chan error, 1)
	go func() {
		switch job.action {
		case actionUpsert:
			done <- x.index.IndexPost(job.doc)
		case actionDelete:
			done <- x.index.DeletePost(job.id)
		default:
			done <- nil
		}
	}()

	var err error
	select {
	case err = <-done:
	case <-timer.C:
		logger.Warn("index job exceeded timeout", zap.String("post", job.id), zap.Duration("timeout", x.opts.JobTimeout))
		err = <-done
	}
	if err != nil {
		logger.Warn("apply index job failed", zap.String("post", job.id), zap.Error(err))
		return
	}
	logger.Debug("index job applied", zap.String("post", job.id), zap.Duration("lag", time.Since(job.enqAt)))
}

// Sync 等待所有已入队任务写入索引
func (x *Indexer) Sync(ctx context.Context) error {
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	for {
		if x.pending.Load() <= 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// QueueLen 各队列长度之和（采样值）
func (x *Indexer) QueueLen() int {
	n := 0
	for _, ch := range x.shards {
		n += len(ch)
	}
	return n
}
