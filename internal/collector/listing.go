package collector

import (
	"bytes"
	"log"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ParseListing 从列表页中提取所有指向详情页的行，顺序与页面一致。
// 列数不足 4 的行仍然返回，只是 Label 和 Date 为空。
func ParseListing(raw []byte, base string) []ListingRow {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		log.Printf("collector: parse listing html: %v", err)
		return nil
	}

	rows := make([]ListingRow, 0, 10)
	doc.Find("a[href*='" + DetailPathMarker + "']").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		link := resolveURL(base, href)
		if link == "" {
			return
		}

		tr := a.Closest("tr")
		if tr.Length() == 0 {
			return
		}

		// 一般为 [번호, 제목, 분야, 등록일, 조회]
		var cells []string
		tr.Find("td").Each(func(_ int, td *goquery.Selection) {
			cells = append(cells, joinedText(td, ""))
		})

		row := ListingRow{
			Title: joinedText(a, ""),
			Link:  link,
		}
		if n := len(cells); n >= 4 {
			row.Label = cells[n-3]
			row.Date = cells[n-2]
		}
		rows = append(rows, row)
	})

	return rows
}

func resolveURL(base, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	b, err := url.Parse(base)
	if err != nil {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return b.ResolveReference(ref).String()
}
