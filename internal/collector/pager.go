package collector

import (
	"context"
	"log"
	"net/url"
	"strconv"
	"time"
)

const (
	defaultMaxPages  = 3
	defaultPageSize  = 10
	defaultPageDelay = 400 * time.Millisecond
	coarseDateLayout = "2006-01-02"
)

// pagerState 翻页状态：发现过旧的行后，只处理完当前页，不再请求下一页
type pagerState int

const (
	stateCollecting pagerState = iota
	stateDrainingLastPage
)

// Pager 按分类翻页并筛选过去 24 小时内的报道资料，全程串行
type Pager struct {
	client       PageFetcher
	base         string
	loc          *time.Location
	summaryChars int

	MaxPages  int
	PageSize  int
	PageDelay time.Duration
}

func NewPager(client PageFetcher, base string, loc *time.Location, summaryChars int) *Pager {
	return &Pager{
		client:       client,
		base:         base,
		loc:          loc,
		summaryChars: summaryChars,
		MaxPages:     defaultMaxPages,
		PageSize:     defaultPageSize,
		PageDelay:    defaultPageDelay,
	}
}

// Collect 返回某个分类在窗口内的所有条目。列表页抓取失败视为该分类已翻完。
func (p *Pager) Collect(ctx context.Context, cat Category, w Window) []PressItem {
	var items []PressItem
	// 粗略日期只精确到天，用 now-24h 所在的日期比较
	cutoff := dateOf(w.Now.Add(-24*time.Hour).In(p.loc), p.loc)
	state := stateCollecting

	for page := 1; page <= p.MaxPages; page++ {
		query := url.Values{}
		query.Set("search_section", cat.Section)
		query.Set("lcmspage", strconv.Itoa(page))
		query.Set("psize", strconv.Itoa(p.PageSize))

		raw, err := p.client.FetchPage(ctx, query)
		if err != nil {
			log.Printf("collector: %s page %d: %v", cat.Name, page, err)
			break
		}
		rows := ParseListing(raw, p.base)
		if len(rows) == 0 {
			break
		}

		for _, row := range rows {
			if d, ok := p.parseCoarseDate(row.Date); ok && d.Before(cutoff) {
				state = stateDrainingLastPage
				continue
			}

			item, ok := p.resolve(ctx, cat, row, w)
			if ok {
				items = append(items, item)
			}
		}

		if state == stateDrainingLastPage || page == p.MaxPages {
			break
		}
		if !sleepCtx(ctx, p.PageDelay) {
			break
		}
	}

	return items
}

func (p *Pager) resolve(ctx context.Context, cat Category, row ListingRow, w Window) (PressItem, bool) {
	raw, err := p.client.FetchDetail(ctx, row.Link)
	if err != nil {
		log.Printf("collector: %s detail skipped: %v", cat.Name, err)
		return PressItem{}, false
	}
	ts, ok := ResolveTimestamp(raw, p.loc)
	if !ok || !w.Contains(ts) {
		return PressItem{}, false
	}
	return PressItem{
		Title:       row.Title,
		Link:        row.Link,
		Category:    cat.Name,
		Section:     cat.Section,
		Label:       row.Label,
		Summary:     ExtractSummary(raw, p.summaryChars),
		PublishedAt: ts,
	}, true
}

func (p *Pager) parseCoarseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(coarseDateLayout, s, p.loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

func dateOf(t time.Time, loc *time.Location) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
