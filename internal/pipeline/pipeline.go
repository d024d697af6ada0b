package pipeline

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/LJTian/MolitPressBot/internal/collector"
	"github.com/LJTian/MolitPressBot/internal/dedup"
	"github.com/LJTian/MolitPressBot/internal/digest"
	"github.com/LJTian/MolitPressBot/internal/notifier"
	"github.com/LJTian/MolitPressBot/internal/processor"
)

// Archiver 保存已投递的资料，可选
type Archiver interface {
	SaveBatch(items []processor.ProcessedRelease) error
}

// Result 一次运行的统计
type Result struct {
	Window    collector.Window
	Collected int
	Fresh     int
	Chunks    int
}

// Pipeline 串行执行：按分类采集 -> 清洗 -> 去重 -> 生成摘要 -> 投递 -> 更新去重缓存
type Pipeline struct {
	fetchers  []collector.Fetcher
	processor *processor.SimpleProcessor
	store     dedup.Store
	builder   *digest.Builder
	sink      notifier.Sink
	loc       *time.Location

	Archive    Archiver
	Now        func() time.Time
	ChunkDelay time.Duration
}

func New(fetchers []collector.Fetcher, p *processor.SimpleProcessor, store dedup.Store, b *digest.Builder, sink notifier.Sink, loc *time.Location) *Pipeline {
	return &Pipeline{
		fetchers:   fetchers,
		processor:  p,
		store:      store,
		builder:    b,
		sink:       sink,
		loc:        loc,
		Now:        time.Now,
		ChunkDelay: notifier.DefaultChunkDelay,
	}
}

// Run 只有投递失败才返回错误；此时不会更新去重缓存，下一轮会重新投递
func (p *Pipeline) Run(ctx context.Context) (Result, error) {
	now := p.Now().In(p.loc)
	res := Result{Window: collector.NewWindow(now)}

	var collected []collector.PressItem
	for _, f := range p.fetchers {
		items, err := f.Fetch(ctx, res.Window)
		if err != nil {
			log.Printf("fetch %s error: %v", f.Name(), err)
		}
		log.Printf("%s done, fetched=%d items", f.Name(), len(items))
		collected = append(collected, items...)
		if ctx.Err() != nil {
			return res, ctx.Err()
		}
	}
	processed := p.processor.Process(collected)
	res.Collected = len(processed)

	sent := p.store.Load(ctx)
	fresh := make([]processor.ProcessedRelease, 0, len(processed))
	for _, it := range processed {
		if sent.Has(it.URL) {
			continue
		}
		fresh = append(fresh, it)
	}
	res.Fresh = len(fresh)

	chunks := p.builder.Build(fresh, now)
	res.Chunks = len(chunks)
	if err := notifier.SendAll(ctx, p.sink, chunks, p.ChunkDelay); err != nil {
		return res, fmt.Errorf("deliver digest: %w", err)
	}

	if len(fresh) == 0 {
		return res, nil
	}

	if p.Archive != nil {
		if err := p.Archive.SaveBatch(fresh); err != nil {
			log.Printf("archive %d releases error: %v", len(fresh), err)
		}
	}

	for _, it := range fresh {
		sent.Add(it.URL)
	}
	p.store.Save(ctx, sent)
	return res, nil
}
