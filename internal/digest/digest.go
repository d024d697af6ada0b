package digest

import (
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/LJTian/MolitPressBot/internal/processor"
)

const (
	// DefaultChunkBudget 留出余量，Telegram 单条消息上限为 4096 字符
	DefaultChunkBudget = 3500

	timeLayout  = "2006-01-02 15:04"
	emptyNotice = "신규 보도자료가 없습니다. (중복 제외)"
)

// Builder 把一次运行得到的新资料渲染成若干条可直接发送的消息
type Builder struct {
	Categories  []string
	ChunkBudget int
}

func NewBuilder(categories []string) *Builder {
	return &Builder{Categories: categories, ChunkBudget: DefaultChunkBudget}
}

func (b *Builder) header(now time.Time) string {
	return fmt.Sprintf("국토교통부 보도자료 (지난 24시간, %s)\n기준: %s KST",
		strings.Join(b.Categories, "·"), now.Format(timeLayout))
}

// Build 按时间倒序排列并按分类分组；没有新资料时返回一条说明消息
func (b *Builder) Build(items []processor.ProcessedRelease, now time.Time) []string {
	if len(items) == 0 {
		return []string{b.header(now) + "\n\n" + emptyNotice}
	}

	sorted := append([]processor.ProcessedRelease(nil), items...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].PublishedAt.After(sorted[j].PublishedAt)
	})

	lines := []string{b.header(now), ""}
	lastCategory := ""
	for i, it := range sorted {
		if i == 0 || it.Category != lastCategory {
			lines = append(lines, "["+it.Category+"]")
			lastCategory = it.Category
		}
		lines = append(lines, itemBlock(it))
	}

	return chunk(lines, b.budget())
}

func (b *Builder) budget() int {
	if b.ChunkBudget <= 0 {
		return DefaultChunkBudget
	}
	return b.ChunkBudget
}

func itemBlock(it processor.ProcessedRelease) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "• %s\n  - 등록: %s", it.Title, it.PublishedAt.Format(timeLayout))
	if it.Summary != "" {
		fmt.Fprintf(&sb, "\n  - 요약: %s", it.Summary)
	}
	fmt.Fprintf(&sb, "\n  - 링크: %s", it.URL)
	return sb.String()
}

// chunk 每行按 字符数+1（换行）计入预算；单行超出预算时单独成为一条，不拆行
func chunk(lines []string, budget int) []string {
	var (
		out []string
		cur []string
		buf int
	)
	for _, line := range lines {
		n := utf8.RuneCountInString(line) + 1
		if len(cur) > 0 && buf+n > budget {
			out = append(out, strings.Join(cur, "\n"))
			cur, buf = nil, 0
		}
		cur = append(cur, line)
		buf += n
	}
	if len(cur) > 0 {
		out = append(out, strings.Join(cur, "\n"))
	}
	return out
}
