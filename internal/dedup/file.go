package dedup

import (
	"bytes"
	"context"
	"encoding/json"
	"log"
	"os"
	"path/filepath"
)

// cacheFile 与旧版本共用的文件格式 {"links": [...]}
type cacheFile struct {
	Links []string `json:"links"`
}

// FileStore 把已发送链接保存在本地 JSON 文件里
type FileStore struct {
	Path     string
	MaxCache int
}

func NewFileStore(path string) *FileStore {
	return &FileStore{Path: path, MaxCache: MaxCache}
}

func (f *FileStore) Load(_ context.Context) *LinkSet {
	set, err := f.load()
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("dedup: %v, starting with empty cache", &PersistenceError{Op: "load", Err: err})
		}
		return NewLinkSet()
	}
	return set
}

func (f *FileStore) load() (*LinkSet, error) {
	b, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, err
	}
	var data cacheFile
	if err := json.Unmarshal(b, &data); err != nil {
		return nil, err
	}
	return NewLinkSet(data.Links...), nil
}

func (f *FileStore) Save(_ context.Context, set *LinkSet) {
	if err := f.save(set); err != nil {
		log.Printf("dedup: %v", &PersistenceError{Op: "save", Err: err})
	}
}

func (f *FileStore) save(set *LinkSet) error {
	data := cacheFile{Links: set.Newest(f.MaxCache)}
	if data.Links == nil {
		data.Links = []string{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	// 保留原始的韩文 URL 参数，不转义成 \uXXXX
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		return err
	}

	// 先写临时文件再 rename，避免中途失败留下半个文件
	dir := filepath.Dir(f.Path)
	tmp, err := os.CreateTemp(dir, ".molit_sent-*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), f.Path)
}
