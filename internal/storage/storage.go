package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/LJTian/MolitPressBot/internal/config"
	"github.com/LJTian/MolitPressBot/internal/processor"
	"github.com/redis/go-redis/v9"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// Category 描述一个报道资料分野，例如 주택토지 / p_sec_2
type Category struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	Section string `gorm:"size:32;uniqueIndex" json:"section"`
	Name    string `gorm:"size:64" json:"name"`
	Status  string `gorm:"size:32;index" json:"status"` // active / disabled

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Release 已经投递过的报道资料
type Release struct {
	ID       string `gorm:"primaryKey;size:40" json:"id"`
	Title    string `gorm:"size:512" json:"title"`
	URL      string `gorm:"size:1024;uniqueIndex" json:"url"`
	Category string `gorm:"size:64;index" json:"category"`
	Summary  string `gorm:"size:1200" json:"summary"`

	PublishedAt time.Time `gorm:"index" json:"publishedAt"`
	// PublishedDate 首尔时区日期 YYYY-MM-DD，用于按日期展示
	PublishedDate string            `gorm:"size:10;index" json:"publishedDate"`
	ExtraData     datatypes.JSONMap `gorm:"type:jsonb" json:"extraData"`
	DeliveredAt   time.Time         `gorm:"index" json:"deliveredAt"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Store struct {
	DB    *gorm.DB
	Redis *redis.Client
}

// NewRedisClient 创建 Redis 客户端；ping 失败只告警，调用方按需降级
func NewRedisClient(addr string) *redis.Client {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Printf("warn: redis ping failed: %v", err)
	}
	return rdb
}

func NewStore(dsn string, rdb *redis.Client) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&Category{}, &Release{}); err != nil {
		return nil, err
	}

	return &Store{DB: db, Redis: rdb}, nil
}

// EnsureCategory 确保某个分野存在
func (s *Store) EnsureCategory(section, name string) (*Category, error) {
	c := &Category{}
	if err := s.DB.Where("section = ?", section).First(c).Error; err == nil {
		return c, nil
	}

	c = &Category{
		Section: section,
		Name:    name,
		Status:  "active",
	}
	if err := s.DB.Create(c).Error; err != nil {
		return nil, err
	}
	return c, nil
}

// 首尔时区，用于日期展示与筛选
var locSeoul = config.Seoul()

// SaveBatch 归档一批已投递的资料，以 URL 作为幂等键
func (s *Store) SaveBatch(items []processor.ProcessedRelease) error {
	now := time.Now()
	for _, it := range items {
		r := toRelease(it, now)
		if err := s.DB.Where("url = ?", it.URL).FirstOrCreate(r).Error; err != nil {
			return err
		}
	}
	// 依赖短 TTL 的缓存自然过期
	return nil
}

func toRelease(it processor.ProcessedRelease, deliveredAt time.Time) *Release {
	return &Release{
		ID:            it.ID,
		Title:         it.Title,
		URL:           it.URL,
		Category:      it.Category,
		Summary:       it.Summary,
		PublishedAt:   it.PublishedAt,
		PublishedDate: it.PublishedAt.In(locSeoul).Format("2006-01-02"),
		// 列表中解析出的分野文本可能与请求的分类不同，保留下来便于排查
		ExtraData: datatypes.JSONMap{
			"label":   it.Label,
			"section": it.Section,
		},
		DeliveredAt: deliveredAt,
	}
}

const listCacheTTL = 5 * time.Minute

// ListReleases 按分类与可选日期返回归档列表，并使用 Redis 做简单缓存
// category: 分类名，可为空
// date: 可选，格式 2006-01-02
func (s *Store) ListReleases(category string, limit int, date string) ([]Release, error) {
	if limit <= 0 || limit > 1000 {
		limit = 20
	}

	ctx := context.Background()
	cacheKey := fmt.Sprintf("molit:releases:%s:%d:%s", category, limit, date)
	var cached []Release
	if s.getCache(ctx, cacheKey, &cached) {
		return cached, nil
	}

	var list []Release
	db := s.DB.Model(&Release{})
	if category != "" {
		db = db.Where("category = ?", category)
	}
	if date != "" {
		db = db.Where("published_date = ?", date)
	}
	if err := db.Order("published_at DESC").Limit(limit).Find(&list).Error; err != nil {
		return nil, err
	}

	if len(list) > 0 {
		s.setCache(ctx, cacheKey, list)
	}
	return list, nil
}

// ListPublishedDates 返回有数据的日期列表（倒序），结果缓存 5 分钟
func (s *Store) ListPublishedDates(category string, limit int) ([]string, error) {
	if limit <= 0 || limit > 365 {
		limit = 31
	}
	ctx := context.Background()
	cacheKey := fmt.Sprintf("molit:dates:%s:%d", category, limit)
	var cached []string
	if s.getCache(ctx, cacheKey, &cached) {
		return cached, nil
	}

	db := s.DB.Model(&Release{}).Distinct("published_date")
	if category != "" {
		db = db.Where("category = ?", category)
	}
	var dates []string
	if err := db.Order("published_date DESC").Limit(limit).Pluck("published_date", &dates).Error; err != nil {
		return nil, err
	}

	if len(dates) > 0 {
		s.setCache(ctx, cacheKey, dates)
	}
	return dates, nil
}

func (s *Store) getCache(ctx context.Context, key string, out any) bool {
	if s.Redis == nil {
		return false
	}
	bs, err := s.Redis.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(bs, out) == nil
}

func (s *Store) setCache(ctx context.Context, key string, v any) {
	if s.Redis == nil {
		return
	}
	if bs, err := json.Marshal(v); err == nil {
		_ = s.Redis.Set(ctx, key, bs, listCacheTTL).Err()
	}
}
