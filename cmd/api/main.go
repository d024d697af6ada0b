package main

import (
	"log"

	"github.com/LJTian/MolitPressBot/internal/api"
	"github.com/LJTian/MolitPressBot/internal/app"
	"github.com/LJTian/MolitPressBot/internal/config"
	"github.com/LJTian/MolitPressBot/internal/scheduler"
	"github.com/gin-gonic/gin"
)

// 常驻进程：每天按 CRON_SPEC（首尔时间）投递一次，同时提供归档查询 API
func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	a, err := app.New(cfg)
	if err != nil {
		log.Fatalf("init app failed: %v", err)
	}
	defer a.Close()

	s, err := scheduler.New(cfg.CronSpec, config.Seoul(), a.Pipeline)
	if err != nil {
		log.Fatalf("init scheduler failed: %v", err)
	}
	s.Start()
	defer s.Stop()

	r := gin.Default()
	// 若配置了访问密码，则启用 Basic Auth 保护（/health 仍然免认证）
	if cfg.BasicAuthUser != "" && cfg.BasicAuthPass != "" {
		r.Use(api.BasicAuth(cfg.BasicAuthUser, cfg.BasicAuthPass))
	}

	var lister api.ReleaseLister
	if a.Store != nil {
		lister = a.Store
	} else {
		log.Println("api: POSTGRES_DSN not set, archive endpoints disabled")
	}
	api.NewServer(lister, s).RegisterRoutes(r)

	addr := ":" + cfg.AppPort
	log.Printf("starting api server at %s ...", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("server exit: %v", err)
	}
}
