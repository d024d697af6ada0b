package collector

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"
)

const (
	DefaultBaseURL   = "https://www.molit.go.kr"
	ListPath         = "/USR/NEWS/m_71/lst.jsp"
	DetailPathMarker = "USR/NEWS/m_71/dtl.jsp"

	defaultUserAgent     = "Mozilla/5.0 (+MOLIT press bot)"
	defaultClientTimeout = 20 * time.Second
)

// TransportError 网络错误、超时或非成功状态码；调用方只跳过对应页面或条目
type TransportError struct {
	URL    string
	Status int
	Err    error
}

func (e *TransportError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("fetch %s: status %d: %v", e.URL, e.Status, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// PageFetcher 是 Pager 依赖的最小抓取能力，测试中可以替换
type PageFetcher interface {
	FetchPage(ctx context.Context, query url.Values) ([]byte, error)
	FetchDetail(ctx context.Context, link string) ([]byte, error)
}

// Client 基于 colly 的同步抓取客户端，所有请求都带固定的 User-Agent
type Client struct {
	baseURL string
	base    *colly.Collector
}

func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := colly.NewCollector(
		colly.UserAgent(defaultUserAgent),
		// 同一个详情页可能在多轮采集中出现
		colly.AllowURLRevisit(),
	)
	c.SetRequestTimeout(defaultClientTimeout)

	return &Client{baseURL: strings.TrimRight(baseURL, "/"), base: c}
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) FetchPage(ctx context.Context, query url.Values) ([]byte, error) {
	u := c.baseURL + ListPath
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return c.get(ctx, u)
}

func (c *Client) FetchDetail(ctx context.Context, link string) ([]byte, error) {
	return c.get(ctx, link)
}

func (c *Client) get(ctx context.Context, u string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, &TransportError{URL: u, Err: err}
	}

	// Clone 共享 http client 与配置，但回调相互独立
	col := c.base.Clone()

	var (
		body   []byte
		status int
	)
	col.OnResponse(func(r *colly.Response) {
		status = r.StatusCode
		body = r.Body
	})
	col.OnError(func(r *colly.Response, err error) {
		if r != nil {
			status = r.StatusCode
		}
	})

	// colly 发出的请求不带 ctx，Visit 在后台跑完（最多 defaultClientTimeout），调用方取消后立即返回
	done := make(chan error, 1)
	go func() {
		done <- col.Visit(u)
	}()

	var err error
	select {
	case <-ctx.Done():
		return nil, &TransportError{URL: u, Err: ctx.Err()}
	case err = <-done:
	}
	if err != nil {
		return nil, &TransportError{URL: u, Status: status, Err: err}
	}
	if body == nil {
		return nil, &TransportError{URL: u, Status: status, Err: fmt.Errorf("empty response")}
	}
	return body, nil
}
