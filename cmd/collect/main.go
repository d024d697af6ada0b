package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/LJTian/MolitPressBot/internal/app"
	"github.com/LJTian/MolitPressBot/internal/config"
)

// 只执行一轮采集与投递后退出：适合 GitHub Actions / crontab 触发
func main() {
	cfg := config.Load()
	// 缺少凭据时在任何网络请求之前退出
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	a, err := app.New(cfg)
	if err != nil {
		log.Fatalf("init app failed: %v", err)
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, 15*time.Minute)
	defer cancel()

	res, err := a.Pipeline.Run(ctx)
	if err != nil {
		log.Printf("run failed: %v", err)
		a.Close()
		os.Exit(1)
	}
	log.Printf("done, collected=%d fresh=%d chunks=%d", res.Collected, res.Fresh, res.Chunks)
}
