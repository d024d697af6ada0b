package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/LJTian/MolitPressBot/internal/scheduler"
	"github.com/LJTian/MolitPressBot/internal/storage"
	"github.com/gin-gonic/gin"
)

// ReleaseLister 只读的归档查询
type ReleaseLister interface {
	ListReleases(category string, limit int, date string) ([]storage.Release, error)
	ListPublishedDates(category string, limit int) ([]string, error)
}

// Trigger 手动触发一轮投递
type Trigger interface {
	RunOnce() error
}

type Server struct {
	store   ReleaseLister
	trigger Trigger
}

func NewServer(store ReleaseLister, trigger Trigger) *Server {
	return &Server{store: store, trigger: trigger}
}

func (s *Server) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", s.health)

	// store 或 trigger 为空时不注册对应的路由
	v1 := r.Group("/api/v1")
	{
		if s.store != nil {
			v1.GET("/releases", s.listReleases)
			v1.GET("/dates", s.listDates)
		}
		if s.trigger != nil {
			v1.POST("/run", s.run)
		}
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) listReleases(c *gin.Context) {
	category := c.Query("category")
	date := c.Query("date")
	if date != "" {
		if _, err := time.Parse("2006-01-02", date); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"code":    "invalid_date",
				"message": "date must be YYYY-MM-DD",
			})
			return
		}
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 {
		limit = 20
	}

	items, err := s.store.ListReleases(category, limit, date)
	if err != nil {
		internalError(c)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    "ok",
		"message": "success",
		"data":    items,
	})
}

func (s *Server) listDates(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "31"))
	if err != nil || limit <= 0 {
		limit = 31
	}

	dates, err := s.store.ListPublishedDates(c.Query("category"), limit)
	if err != nil {
		internalError(c)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":    "ok",
		"message": "success",
		"data":    dates,
	})
}

func (s *Server) run(c *gin.Context) {
	err := s.trigger.RunOnce()
	if errors.Is(err, scheduler.ErrRunning) {
		c.JSON(http.StatusConflict, gin.H{
			"code":    "already_running",
			"message": err.Error(),
		})
		return
	}
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{
			"code":    "delivery_failed",
			"message": err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": "ok", "message": "success"})
}

func internalError(c *gin.Context) {
	c.JSON(http.StatusInternalServerError, gin.H{
		"code":    "internal_error",
		"message": "internal server error",
	})
}
