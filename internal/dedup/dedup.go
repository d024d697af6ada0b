package dedup

import (
	"context"
	"fmt"
)

// MaxCache 最多保留的已发送链接数
const MaxCache = 300

// Store 跨运行保存已发送的链接。Load 失败时返回空集合，Save 失败只记录日志，
// 二者都不会让一次运行失败。
type Store interface {
	Load(ctx context.Context) *LinkSet
	Save(ctx context.Context, set *LinkSet)
}

// PersistenceError 读写去重缓存失败
type PersistenceError struct {
	Op  string // load / save
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("dedup %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// LinkSet 按插入顺序记录链接，淘汰时先淘汰最早加入的
type LinkSet struct {
	order []string
	index map[string]struct{}
}

func NewLinkSet(links ...string) *LinkSet {
	s := &LinkSet{index: make(map[string]struct{}, len(links))}
	for _, l := range links {
		s.Add(l)
	}
	return s
}

func (s *LinkSet) Has(link string) bool {
	_, ok := s.index[link]
	return ok
}

// Add 已存在的链接保持原来的位置
func (s *LinkSet) Add(link string) {
	if link == "" || s.Has(link) {
		return
	}
	s.index[link] = struct{}{}
	s.order = append(s.order, link)
}

func (s *LinkSet) Len() int {
	return len(s.order)
}

// Links 返回按插入顺序排列的副本
func (s *LinkSet) Links() []string {
	return append([]string(nil), s.order...)
}

// Newest 返回最近加入的 n 个链接，顺序不变
func (s *LinkSet) Newest(n int) []string {
	links := s.order
	if n >= 0 && len(links) > n {
		links = links[len(links)-n:]
	}
	return append([]string(nil), links...)
}
