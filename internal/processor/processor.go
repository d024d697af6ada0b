package processor

import (
	"crypto/sha1"
	"encoding/hex"
	"strings"
	"time"

	"github.com/LJTian/MolitPressBot/internal/collector"
)

// ProcessedRelease 是去重与投递前的统一结构
type ProcessedRelease struct {
	ID          string
	Title       string
	URL         string
	Category    string
	Section     string
	Label       string
	Summary     string
	PublishedAt time.Time
}

// SimpleProcessor 做最基础的数据清洗与 ID 生成
type SimpleProcessor struct{}

func NewSimpleProcessor() *SimpleProcessor {
	return &SimpleProcessor{}
}

// Process 保留首次出现的链接；同一条资料可能同时出现在多个分类里
func (p *SimpleProcessor) Process(items []collector.PressItem) []ProcessedRelease {
	out := make([]ProcessedRelease, 0, len(items))
	seen := make(map[string]struct{})

	for _, it := range items {
		if it.Link == "" {
			continue
		}
		id := hashURL(it.Link)
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}

		out = append(out, ProcessedRelease{
			ID:          id,
			Title:       toValidUTF8(strings.TrimSpace(it.Title)),
			URL:         it.Link,
			Category:    it.Category,
			Section:     it.Section,
			Label:       it.Label,
			Summary:     toValidUTF8(it.Summary),
			PublishedAt: it.PublishedAt,
		})
	}

	return out
}

// toValidUTF8 将字符串规范为合法 UTF-8，避免 Telegram 和 PostgreSQL 拒绝
func toValidUTF8(s string) string {
	return strings.ToValidUTF8(s, "\uFFFD")
}

func hashURL(url string) string {
	h := sha1.New()
	h.Write([]byte(url))
	return hex.EncodeToString(h.Sum(nil))
}
