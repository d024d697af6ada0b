package notifier

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	telegramClientTimeout    = 20 * time.Second
	telegramMaxResponseBytes = 64 * 1024
	DefaultChunkDelay        = time.Second
)

// Sink 接收已经分好段的文本并逐条发送
type Sink interface {
	Send(ctx context.Context, text string) error
}

// TelegramSink 通过 Bot API sendMessage 投递到指定的频道或群组
type TelegramSink struct {
	apiBase string
	token   string
	chatID  string
	client  *http.Client
}

func NewTelegramSink(apiBase, token, chatID string) *TelegramSink {
	if apiBase == "" {
		apiBase = "https://api.telegram.org"
	}
	return &TelegramSink{
		apiBase: strings.TrimRight(apiBase, "/"),
		token:   token,
		chatID:  chatID,
		client:  &http.Client{Timeout: telegramClientTimeout},
	}
}

type telegramResp struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

func (s *TelegramSink) Send(ctx context.Context, text string) error {
	form := url.Values{}
	form.Set("chat_id", s.chatID)
	form.Set("text", text)
	form.Set("disable_web_page_preview", "true")

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", s.apiBase, s.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("telegram: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		// 错误信息里会带上含 token 的 URL，这里不直接返回
		return fmt.Errorf("telegram: send message: %w", redact(err, s.token))
	}
	defer resp.Body.Close()

	var tr telegramResp
	body, readErr := io.ReadAll(io.LimitReader(resp.Body, telegramMaxResponseBytes))
	var decodeErr error
	if readErr == nil {
		decodeErr = json.Unmarshal(body, &tr)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if tr.Description != "" {
			return fmt.Errorf("telegram: unexpected status %d: %s", resp.StatusCode, tr.Description)
		}
		return fmt.Errorf("telegram: unexpected status %d", resp.StatusCode)
	}
	if readErr != nil {
		return fmt.Errorf("telegram: read response: %w", readErr)
	}
	if decodeErr != nil {
		return fmt.Errorf("telegram: decode response: %w", decodeErr)
	}
	if !tr.OK {
		return fmt.Errorf("telegram: api error: %s", tr.Description)
	}
	return nil
}

func redact(err error, token string) error {
	if token == "" {
		return err
	}
	return fmt.Errorf("%s", strings.ReplaceAll(err.Error(), token, "***"))
}

// StdoutSink dry run 时把消息打印出来
type StdoutSink struct {
	W io.Writer
}

func (s *StdoutSink) Send(_ context.Context, text string) error {
	_, err := fmt.Fprintf(s.W, "%s\n-----\n", text)
	return err
}

// SendAll 按顺序发送每一段，段与段之间稍作停顿；任一段失败即返回
func SendAll(ctx context.Context, sink Sink, chunks []string, delay time.Duration) error {
	for i, c := range chunks {
		if i > 0 && delay > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
		if err := sink.Send(ctx, c); err != nil {
			return fmt.Errorf("chunk %d/%d: %w", i+1, len(chunks), err)
		}
		log.Printf("notifier: sent chunk %d/%d (%d chars)", i+1, len(chunks), len([]rune(c)))
	}
	return nil
}
