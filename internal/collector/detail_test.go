package collector

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestResolveTimestamp(t *testing.T) {
	loc := seoul()
	cases := []struct {
		name string
		html string
		want string
		ok   bool
	}{
		{"plain", detailHTML("2025-08-12 11:00", "본문"), "2025-08-12 11:00", true},
		{"extra spaces", `<span>등록일   2025-08-12   09:05</span>`, "2025-08-12 09:05", true},
		{"newline between date and time", "등록일\n2025-08-12\n\t23:59", "2025-08-12 23:59", true},
		{"missing label", `<span>작성일 2025-08-12 11:00</span>`, "", false},
		{"date only", `<span>등록일 2025-08-12</span>`, "", false},
		{"invalid month", `<span>등록일 2025-13-12 11:00</span>`, "", false},
	}

	for _, c := range cases {
		got, ok := ResolveTimestamp([]byte(c.html), loc)
		if ok != c.ok {
			t.Fatalf("%s: ok = %v, want %v", c.name, ok, c.ok)
		}
		if !ok {
			continue
		}
		if want := mustSeoulTime(t, c.want); !got.Equal(want) {
			t.Fatalf("%s: got %v, want %v", c.name, got, want)
		}
		if got.Location() != loc {
			t.Fatalf("%s: timestamp should carry Asia/Seoul location, got %v", c.name, got.Location())
		}
	}
}

func TestExtractSummaryPrefersFirstContainer(t *testing.T) {
	raw := `<html><body>
<div id="header">메뉴 메뉴</div>
<div class="contents">두 번째 후보</div>
<div id="viewCon"><p>첫   번째</p><p>후보
본문</p></div>
</body></html>`

	got := ExtractSummary([]byte(raw), 220)
	if got != "첫 번째 후보 본문" {
		t.Fatalf("ExtractSummary = %q", got)
	}
}

func TestExtractSummarySkipsEmptyContainers(t *testing.T) {
	raw := `<div id="viewCon">   </div><div class="bo_text"><span>실제</span><span>내용</span></div>`
	if got := ExtractSummary([]byte(raw), 220); got != "실제 내용" {
		t.Fatalf("ExtractSummary = %q, want %q", got, "실제 내용")
	}
}

func TestExtractSummaryFallsBackToWholeDocument(t *testing.T) {
	raw := `<html><head><style>.a{color:red}</style><script>alert(1)</script></head><body><h1>제목</h1><p>문단</p></body></html>`
	got := ExtractSummary([]byte(raw), 220)
	if got != "제목 문단" {
		t.Fatalf("ExtractSummary = %q, want %q", got, "제목 문단")
	}
}

func TestExtractSummaryTruncates(t *testing.T) {
	body := strings.Repeat("가나다 ", 100)
	got := ExtractSummary([]byte(detailHTML("2025-08-12 11:00", body)), 8)

	if !strings.HasSuffix(got, "…") {
		t.Fatalf("truncated summary should end with ellipsis: %q", got)
	}
	// 第 8 个字符是空格，截断后会去掉
	if n := utf8.RuneCountInString(strings.TrimSuffix(got, "…")); n != 7 {
		t.Fatalf("expected 7 runes before ellipsis, got %d: %q", n, got)
	}
}

func TestTruncateRunes(t *testing.T) {
	cases := []struct {
		in    string
		limit int
		want  string
	}{
		{"짧은 글", 10, "짧은 글"},
		{"가나다라마", 5, "가나다라마"},
		{"가나다라마바", 5, "가나다라마…"},
		{"ab  cd", 4, "ab…"},
		{"", 3, ""},
	}
	for _, c := range cases {
		if got := truncateRunes(c.in, c.limit); got != c.want {
			t.Fatalf("truncateRunes(%q, %d) = %q, want %q", c.in, c.limit, got, c.want)
		}
	}
}
