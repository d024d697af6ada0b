package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	BotToken string
	ChatID   string
	// TelegramAPIBase 方便测试时指向本地服务
	TelegramAPIBase string

	CachePath    string
	DedupBackend string // file / redis
	SummaryChars int

	// RunTimeHour 仅用于推导定时任务的 cron 表达式（KST）
	RunTimeHour int
	CronSpec    string

	AppPort     string
	PostgresDSN string
	RedisAddr   string
	// 同时配置时 API 启用 Basic Auth
	BasicAuthUser string
	BasicAuthPass string

	DryRun bool
}

// ConfigError 表示启动前即可发现的致命配置问题
type ConfigError struct {
	Missing []string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("config: missing required env %s", strings.Join(e.Missing, ", "))
}

func Load() *Config {
	// .env 可选，不存在时只使用进程环境变量
	_ = godotenv.Load()

	cfg := &Config{
		BotToken:        os.Getenv("BOT_TOKEN"),
		ChatID:          os.Getenv("CHAT_ID"),
		TelegramAPIBase: getEnv("TELEGRAM_API_BASE", "https://api.telegram.org"),
		CachePath:       getEnv("CACHE_PATH", ".molit_sent.json"),
		DedupBackend:    strings.ToLower(getEnv("DEDUP_BACKEND", "file")),
		SummaryChars:    getEnvInt("SUMMARY_CHARS", 220),
		RunTimeHour:     getEnvInt("RUN_TIME_HOUR", 18),
		AppPort:         getEnv("APP_PORT", "9000"),
		PostgresDSN:     os.Getenv("POSTGRES_DSN"),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		BasicAuthUser:   os.Getenv("APP_BASIC_USER"),
		BasicAuthPass:   os.Getenv("APP_BASIC_PASS"),
		DryRun:          getEnvBool("DRY_RUN", false),
	}
	cfg.CronSpec = getEnv("CRON_SPEC", fmt.Sprintf("0 %d * * *", cfg.RunTimeHour))

	log.Printf("config loaded: cron=%s cache=%s dedup=%s dry_run=%t", cfg.CronSpec, cfg.CachePath, cfg.DedupBackend, cfg.DryRun)
	return cfg
}

// Validate 在任何网络请求之前检查必需的凭据；dry run 时不需要 Telegram 凭据
func (c *Config) Validate() error {
	var missing []string
	if !c.DryRun {
		if c.BotToken == "" {
			missing = append(missing, "BOT_TOKEN")
		}
		if c.ChatID == "" {
			missing = append(missing, "CHAT_ID")
		}
	}
	if len(missing) > 0 {
		return &ConfigError{Missing: missing}
	}
	if c.SummaryChars <= 0 {
		c.SummaryChars = 220
	}
	if c.DedupBackend != "file" && c.DedupBackend != "redis" {
		log.Printf("config: unknown DEDUP_BACKEND %q, falling back to file", c.DedupBackend)
		c.DedupBackend = "file"
	}
	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		log.Printf("config: invalid %s=%q, using %d", key, v, def)
		return def
	}
	return n
}

func getEnvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return b
}

// Seoul 返回首尔时区，系统缺少 tzdata 时退回固定 UTC+9
func Seoul() *time.Location {
	loc, err := time.LoadLocation("Asia/Seoul")
	if err != nil {
		return time.FixedZone("KST", 9*60*60)
	}
	return loc
}
