package collector

import (
	"context"
	"time"
)

// ListingRow 列表页中的一行，只在翻页过程中短暂存在
type ListingRow struct {
	Title string
	Link  string
	// Label 是列表中"分野"列的原始文本，Date 是"登记日"列（YYYY-MM-DD）
	Label string
	Date  string
}

// PressItem 解析出详细登记时间后的报道资料
type PressItem struct {
	Title string
	Link  string
	// Category 使用请求的分类名，而不是行内解析出的 Label
	Category    string
	Section     string
	Label       string
	Summary     string
	PublishedAt time.Time
}

// Window 是 [Since, Now] 的闭区间
type Window struct {
	Since time.Time
	Now   time.Time
}

// NewWindow 以 now 为终点构造过去 24 小时的窗口
func NewWindow(now time.Time) Window {
	return Window{Since: now.Add(-24 * time.Hour), Now: now}
}

// Contains 两端都包含
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Since) && !t.After(w.Now)
}

// Fetcher 抽象每一个分类的数据源
type Fetcher interface {
	Name() string
	Fetch(ctx context.Context, w Window) ([]PressItem, error)
}
