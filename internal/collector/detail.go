package collector

import (
	"bytes"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

var (
	detailTimeRe = regexp.MustCompile(`등록일\s*([0-9]{4}-[0-9]{2}-[0-9]{2}\s+[0-9]{2}:[0-9]{2})`)
	spaceRe      = regexp.MustCompile(`\s+`)
)

const detailTimeLayout = "2006-01-02 15:04"

// ResolveTimestamp 在详情页原文中查找"등록일 YYYY-MM-DD HH:MM"，找不到时 ok 为 false
func ResolveTimestamp(raw []byte, loc *time.Location) (time.Time, bool) {
	m := detailTimeRe.FindSubmatch(raw)
	if m == nil {
		return time.Time{}, false
	}
	// 日期和时间之间可能是任意空白
	s := strings.Join(strings.Fields(string(m[1])), " ")
	t, err := time.ParseInLocation(detailTimeLayout, s, loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// summaryStrategy 尝试从文档中取出正文，取不到返回空串
type summaryStrategy func(doc *goquery.Document) string

func selectorStrategy(sel string) summaryStrategy {
	return func(doc *goquery.Document) string {
		el := doc.Find(sel).First()
		if el.Length() == 0 {
			return ""
		}
		return joinedText(el, " ")
	}
}

func wholeDocumentStrategy(doc *goquery.Document) string {
	return joinedText(doc.Selection, " ")
}

// 不同的公告板模板使用不同的正文容器，按顺序取第一个有内容的
var summaryStrategies = []summaryStrategy{
	selectorStrategy("#viewCon"),
	selectorStrategy(".board_view"),
	selectorStrategy(".view"),
	selectorStrategy(".bo_view"),
	selectorStrategy(".bo_content"),
	selectorStrategy(".bo_text"),
	selectorStrategy(".bbsView"),
	selectorStrategy(".contents"),
	selectorStrategy("#contents"),
	selectorStrategy("#content"),
	wholeDocumentStrategy,
}

// ExtractSummary 取详情页正文的前 limit 个字符作为摘要，尽力而为，不会失败
func ExtractSummary(raw []byte, limit int) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw))
	if err != nil {
		return ""
	}

	var text string
	for _, strategy := range summaryStrategies {
		if text = strategy(doc); text != "" {
			break
		}
	}

	text = spaceRe.ReplaceAllString(text, " ")
	return truncateRunes(text, limit)
}

// truncateRunes 按 rune 截断，超出时去掉尾部空白并追加省略号
func truncateRunes(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	rs := []rune(s)
	if len(rs) <= limit {
		return s
	}
	return strings.TrimRightFunc(string(rs[:limit]), unicode.IsSpace) + "…"
}

// joinedText 收集可见文本节点，逐个去掉首尾空白后用 sep 连接；
// script/style 中的内容不算正文
func joinedText(sel *goquery.Selection, sep string) string {
	var parts []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch n.Type {
		case html.TextNode:
			if t := strings.TrimSpace(n.Data); t != "" {
				parts = append(parts, t)
			}
			return
		case html.ElementNode:
			switch n.Data {
			case "script", "style", "noscript", "template":
				return
			}
		case html.CommentNode, html.DoctypeNode:
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range sel.Nodes {
		walk(n)
	}
	return strings.Join(parts, sep)
}
