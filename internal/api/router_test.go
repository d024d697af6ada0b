package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/LJTian/MolitPressBot/internal/scheduler"
	"github.com/LJTian/MolitPressBot/internal/storage"
	"github.com/gin-gonic/gin"
)

type fakeLister struct {
	category string
	limit    int
	date     string
	err      error
}

func (f *fakeLister) ListReleases(category string, limit int, date string) ([]storage.Release, error) {
	f.category, f.limit, f.date = category, limit, date
	if f.err != nil {
		return nil, f.err
	}
	return []storage.Release{{ID: "1", Title: "주택 공급", Category: category}}, nil
}

func (f *fakeLister) ListPublishedDates(category string, limit int) ([]string, error) {
	f.category, f.limit = category, limit
	return []string{"2025-08-12"}, f.err
}

type fakeTrigger struct{ err error }

func (f *fakeTrigger) RunOnce() error { return f.err }

func newTestEngine(s *Server, mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(mw...)
	s.RegisterRoutes(r)
	return r
}

func doRequest(r http.Handler, method, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, nil)
	r.ServeHTTP(w, req)
	return w
}

func TestListReleases(t *testing.T) {
	lister := &fakeLister{}
	r := newTestEngine(NewServer(lister, nil))

	w := doRequest(r, http.MethodGet, "/api/v1/releases?category=%EC%9D%BC%EB%B0%98&limit=5&date=2025-08-12")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body=%s", w.Code, w.Body.String())
	}
	if lister.category != "일반" || lister.limit != 5 || lister.date != "2025-08-12" {
		t.Fatalf("unexpected query: %+v", lister)
	}

	var body struct {
		Code string            `json:"code"`
		Data []storage.Release `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Code != "ok" || len(body.Data) != 1 || body.Data[0].Title != "주택 공급" {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}

func TestListReleasesDefaultsAndValidation(t *testing.T) {
	lister := &fakeLister{}
	r := newTestEngine(NewServer(lister, nil))

	if w := doRequest(r, http.MethodGet, "/api/v1/releases?limit=abc"); w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if lister.limit != 20 {
		t.Fatalf("limit = %d, want default 20", lister.limit)
	}

	if w := doRequest(r, http.MethodGet, "/api/v1/releases?date=08/12"); w.Code != http.StatusBadRequest {
		t.Fatalf("invalid date status = %d", w.Code)
	}
}

func TestListReleasesStoreError(t *testing.T) {
	r := newTestEngine(NewServer(&fakeLister{err: errors.New("db down")}, nil))
	if w := doRequest(r, http.MethodGet, "/api/v1/releases"); w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestListDates(t *testing.T) {
	lister := &fakeLister{}
	r := newTestEngine(NewServer(lister, nil))

	w := doRequest(r, http.MethodGet, "/api/v1/dates")
	if w.Code != http.StatusOK || lister.limit != 31 {
		t.Fatalf("status = %d, limit = %d", w.Code, lister.limit)
	}
}

func TestRunEndpoint(t *testing.T) {
	r := newTestEngine(NewServer(&fakeLister{}, &fakeTrigger{}))
	if w := doRequest(r, http.MethodPost, "/api/v1/run"); w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	r = newTestEngine(NewServer(&fakeLister{}, &fakeTrigger{err: errors.New("telegram down")}))
	if w := doRequest(r, http.MethodPost, "/api/v1/run"); w.Code != http.StatusBadGateway {
		t.Fatalf("status = %d", w.Code)
	}

	r = newTestEngine(NewServer(&fakeLister{}, &fakeTrigger{err: scheduler.ErrRunning}))
	if w := doRequest(r, http.MethodPost, "/api/v1/run"); w.Code != http.StatusConflict {
		t.Fatalf("overlapping run status = %d, want 409", w.Code)
	}

	r = newTestEngine(NewServer(&fakeLister{}, nil))
	if w := doRequest(r, http.MethodPost, "/api/v1/run"); w.Code != http.StatusNotFound {
		t.Fatalf("run should not be registered without trigger, status = %d", w.Code)
	}
}

func TestArchiveRoutesNeedStore(t *testing.T) {
	r := newTestEngine(NewServer(nil, &fakeTrigger{}))
	if w := doRequest(r, http.MethodGet, "/api/v1/releases"); w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
	if w := doRequest(r, http.MethodGet, "/health"); w.Code != http.StatusOK {
		t.Fatalf("health status = %d", w.Code)
	}
}

func TestBasicAuth(t *testing.T) {
	r := newTestEngine(NewServer(&fakeLister{}, nil), BasicAuth("admin", "pw"))

	if w := doRequest(r, http.MethodGet, "/health"); w.Code != http.StatusOK {
		t.Fatalf("health should skip auth, status = %d", w.Code)
	}
	if w := doRequest(r, http.MethodGet, "/api/v1/dates"); w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/dates", nil)
	req.SetBasicAuth("admin", "pw")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("authorized status = %d", w.Code)
	}
}
