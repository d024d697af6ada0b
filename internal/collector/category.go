package collector

import (
	"context"
	"log"
)

// Category 国土交通部报道资料的一个分野，Section 是站点的 search_section 参数
type Category struct {
	Name    string
	Section string
}

// DefaultCategories 只处理这三个分野，顺序即处理顺序
var DefaultCategories = []Category{
	{Name: "주택토지", Section: "p_sec_2"},
	{Name: "국토도시", Section: "p_sec_9"},
	{Name: "일반", Section: "p_sec_1"},
}

// CategoryFetcher 把一个分类包装成 Fetcher
type CategoryFetcher struct {
	Category Category
	Pager    *Pager
}

func (f *CategoryFetcher) Name() string {
	return f.Category.Name
}

func (f *CategoryFetcher) Fetch(ctx context.Context, w Window) ([]PressItem, error) {
	log.Printf("fetch MOLIT %s (%s)...", f.Category.Name, f.Category.Section)
	items := f.Pager.Collect(ctx, f.Category, w)
	if len(items) == 0 {
		log.Printf("fetch MOLIT %s got 0 items", f.Category.Name)
	}
	return items, ctx.Err()
}

// NewCategoryFetchers 按给定顺序为每个分类创建 Fetcher，共享同一个 Pager
func NewCategoryFetchers(p *Pager, cats []Category) []Fetcher {
	out := make([]Fetcher, 0, len(cats))
	for _, c := range cats {
		out = append(out, &CategoryFetcher{Category: c, Pager: p})
	}
	return out
}
