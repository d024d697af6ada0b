package scheduler

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/LJTian/MolitPressBot/internal/pipeline"
	"github.com/robfig/cron/v3"
)

// Runner 执行一轮完整的采集与投递
type Runner interface {
	Run(ctx context.Context) (pipeline.Result, error)
}

// ErrRunning 已有一轮在执行，本次触发被忽略
var ErrRunning = errors.New("scheduler: digest job already running")

type Scheduler struct {
	cron    *cron.Cron
	runner  Runner
	timeout time.Duration

	// running 保证定时触发与手动触发不会同时读写去重缓存
	running sync.Mutex
}

// defaultRunTimeout 三个分类各最多 3 页，加上详细页请求，正常一轮远小于这个值
const defaultRunTimeout = 15 * time.Minute

// New 按首尔时间解析 spec；上一轮未结束时跳过本轮，避免重复投递
func New(spec string, loc *time.Location, runner Runner) (*Scheduler, error) {
	c := cron.New(
		cron.WithLocation(loc),
		cron.WithChain(cron.SkipIfStillRunning(cron.VerbosePrintfLogger(log.Default()))),
	)

	s := &Scheduler{
		cron:    c,
		runner:  runner,
		timeout: defaultRunTimeout,
	}

	if _, err := c.AddFunc(spec, s.runOnce); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	for _, e := range s.cron.Entries() {
		log.Printf("scheduler: next run at %s", e.Next.Format("2006-01-02 15:04 MST"))
	}
}

// Stop 等待正在执行的任务结束
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}

// Cron 暴露底层 cron 以便追加其它定时任务
func (s *Scheduler) Cron() *cron.Cron {
	return s.cron
}

// RunOnce 对外暴露的单次执行入口，方便手动触发；已有任务在跑时返回 ErrRunning
func (s *Scheduler) RunOnce() error {
	if !s.running.TryLock() {
		log.Println("digest job skipped: previous run still in progress")
		return ErrRunning
	}
	defer s.running.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	log.Println("start digest job...")
	res, err := s.runner.Run(ctx)
	if err != nil {
		log.Printf("digest job failed: %v", err)
		return err
	}
	log.Printf("digest job done, collected=%d fresh=%d chunks=%d", res.Collected, res.Fresh, res.Chunks)
	return nil
}

func (s *Scheduler) runOnce() {
	_ = s.RunOnce()
}
