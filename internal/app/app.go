package app

import (
	"log"
	"os"

	"github.com/LJTian/MolitPressBot/internal/collector"
	"github.com/LJTian/MolitPressBot/internal/config"
	"github.com/LJTian/MolitPressBot/internal/dedup"
	"github.com/LJTian/MolitPressBot/internal/digest"
	"github.com/LJTian/MolitPressBot/internal/notifier"
	"github.com/LJTian/MolitPressBot/internal/pipeline"
	"github.com/LJTian/MolitPressBot/internal/processor"
	"github.com/LJTian/MolitPressBot/internal/storage"
	"github.com/redis/go-redis/v9"
)

// App 两个入口共用的组件
type App struct {
	Pipeline *pipeline.Pipeline
	// Store 只有配置了 POSTGRES_DSN 时才非空
	Store *storage.Store
	Redis *redis.Client
}

// New 按配置组装一条完整的投递流水线
func New(cfg *config.Config) (*App, error) {
	a := &App{}
	loc := config.Seoul()

	if cfg.DedupBackend == "redis" || cfg.PostgresDSN != "" {
		a.Redis = storage.NewRedisClient(cfg.RedisAddr)
	}

	var sent dedup.Store
	if cfg.DedupBackend == "redis" {
		sent = dedup.NewRedisStore(a.Redis, "")
	} else {
		sent = dedup.NewFileStore(cfg.CachePath)
	}

	var sink notifier.Sink
	if cfg.DryRun {
		log.Println("dry run: digest will be printed instead of sent")
		sink = &notifier.StdoutSink{W: os.Stdout}
	} else {
		sink = notifier.NewTelegramSink(cfg.TelegramAPIBase, cfg.BotToken, cfg.ChatID)
	}

	client := collector.NewClient(collector.DefaultBaseURL)
	pager := collector.NewPager(client, client.BaseURL(), loc, cfg.SummaryChars)
	fetchers := collector.NewCategoryFetchers(pager, collector.DefaultCategories)

	names := make([]string, 0, len(collector.DefaultCategories))
	for _, c := range collector.DefaultCategories {
		names = append(names, c.Name)
	}

	p := pipeline.New(fetchers, processor.NewSimpleProcessor(), sent, digest.NewBuilder(names), sink, loc)

	if cfg.PostgresDSN != "" {
		store, err := storage.NewStore(cfg.PostgresDSN, a.Redis)
		if err != nil {
			return nil, err
		}
		// 确保各个分野存在
		for _, c := range collector.DefaultCategories {
			if _, err := store.EnsureCategory(c.Section, c.Name); err != nil {
				return nil, err
			}
		}
		a.Store = store
		p.Archive = store
	}

	a.Pipeline = p
	return a, nil
}

func (a *App) Close() {
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
}
