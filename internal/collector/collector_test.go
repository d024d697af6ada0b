package collector

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"testing"
	"time"
)

// helper 返回首尔时间
func mustSeoulTime(t *testing.T, s string) time.Time {
	t.Helper()
	loc := seoul()
	tm, err := time.ParseInLocation("2006-01-02 15:04", s, loc)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return tm
}

func seoul() *time.Location {
	loc, err := time.LoadLocation("Asia/Seoul")
	if err != nil {
		loc = time.FixedZone("KST", 9*60*60)
	}
	return loc
}

type testRow struct {
	id    int
	title string
	label string
	date  string
}

func listingHTML(rows ...testRow) string {
	var b strings.Builder
	b.WriteString("<html><body><table><tbody>")
	for _, r := range rows {
		fmt.Fprintf(&b, `<tr><td>%d</td><td class="bd_title"><a href="/USR/NEWS/m_71/dtl.jsp?lcmspage=1&id=%d">%s</a></td><td>%s</td><td>%s</td><td>12</td></tr>`,
			r.id, r.id, r.title, r.label, r.date)
	}
	b.WriteString("</tbody></table></body></html>")
	return b.String()
}

func detailHTML(ts, body string) string {
	return fmt.Sprintf(`<html><head><title>보도자료</title><script>var x = 1;</script></head><body>
<div class="bd_view_info"><span>등록일 %s</span></div>
<div id="viewCon"><p>%s</p></div>
</body></html>`, ts, body)
}

func detailLink(id int) string {
	return fmt.Sprintf("%s/USR/NEWS/m_71/dtl.jsp?lcmspage=1&id=%d", DefaultBaseURL, id)
}

// fakePageFetcher 按页号返回列表，按链接返回详情，并记录请求过的页号
type fakePageFetcher struct {
	pages   map[string]map[int]string
	details map[string]string
	fetched []string
	detail  []string
}

func (f *fakePageFetcher) FetchPage(_ context.Context, q url.Values) ([]byte, error) {
	f.fetched = append(f.fetched, q.Get("search_section")+"#"+q.Get("lcmspage"))
	var page int
	fmt.Sscanf(q.Get("lcmspage"), "%d", &page)
	body, ok := f.pages[q.Get("search_section")][page]
	if !ok {
		return []byte("<html><body><table></table></body></html>"), nil
	}
	return []byte(body), nil
}

func (f *fakePageFetcher) FetchDetail(_ context.Context, link string) ([]byte, error) {
	f.detail = append(f.detail, link)
	body, ok := f.details[link]
	if !ok {
		return nil, &TransportError{URL: link, Status: 404, Err: fmt.Errorf("Not Found")}
	}
	return []byte(body), nil
}
