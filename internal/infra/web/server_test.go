package web

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"telegram-tutoring-bot/internal/domain/model"
	"telegram-tutoring-bot/internal/usecase"
)

const testAPIKey = "test-api-key"

func newTestServer(t *testing.T, students []*model.Student) http.Handler {
	t.Helper()
	repo := &stubStudentRepo{students: students}
	statsUC := usecase.NewStatsUseCase(repo, newTestLogger())
	auth := NewAuthManager("test-secret", false, 30*time.Minute)
	return NewServer(statsUC, auth, testAPIKey, newTestLogger()).Router()
}

func login(t *testing.T, h http.Handler) string {
	t.Helper()
	body, _ := json.Marshal(map[string]string{"api_key": testAPIKey})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/login", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d", rec.Code)
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("login body: %v", err)
	}
	if resp["token"] == "" {
		t.Fatal("login returned no token")
	}
	return resp["token"]
}

func testStudents() []*model.Student {
	joined := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	expires := joined.Add(30 * 24 * time.Hour)
	return []*model.Student{
		{ChatID: 1, Name: "A", Grade: "10", Plan: model.PlanTwoWeek, Status: model.StudentStatusPending},
		{ChatID: 2, Name: "B", Grade: "11", Plan: model.PlanOneMonth, Status: model.StudentStatusApproved, JoinedAt: &joined, ExpiresAt: &expires},
		{ChatID: 3, Name: "C", Grade: "12", Plan: model.PlanOneMonth, Status: model.StudentStatusExpired},
	}
}

func TestHealthz(t *testing.T) {
	h := newTestServer(t, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestLogin(t *testing.T) {
	h := newTestServer(t, nil)

	t.Run("valid key", func(t *testing.T) {
		_ = login(t, h)
	})

	t.Run("wrong key", func(t *testing.T) {
		body, _ := json.Marshal(map[string]string{"api_key": "nope"})
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/login", bytes.NewReader(body)))
		if rec.Code != http.StatusForbidden {
			t.Errorf("status = %d, want 403", rec.Code)
		}
	})

	t.Run("garbage body", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/login", bytes.NewReader([]byte("{not json"))))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})
}

func TestSessionMiddleware(t *testing.T) {
	h := newTestServer(t, testStudents())

	t.Run("no token", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil))
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("bad token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil)
		req.Header.Set("Authorization", "Bearer not-a-jwt")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("status = %d, want 401", rec.Code)
		}
	})

	t.Run("bearer token", func(t *testing.T) {
		token := login(t, h)
		req := httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("status = %d, want 200", rec.Code)
		}
	})
}

func TestStatsEndpoint(t *testing.T) {
	h := newTestServer(t, testStudents())
	token := login(t, h)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp struct {
		Pending  int `json:"pending"`
		Approved int `json:"approved"`
		Expired  int `json:"expired"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("body: %v", err)
	}
	if resp.Pending != 1 || resp.Approved != 1 || resp.Expired != 1 {
		t.Errorf("counts = %+v", resp)
	}
}

func TestStudentsEndpoint(t *testing.T) {
	h := newTestServer(t, testStudents())
	token := login(t, h)

	get := func(t *testing.T, path string) (*httptest.ResponseRecorder, []map[string]any) {
		t.Helper()
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		var views []map[string]any
		if rec.Code == http.StatusOK {
			if err := json.Unmarshal(rec.Body.Bytes(), &views); err != nil {
				t.Fatalf("body: %v", err)
			}
		}
		return rec, views
	}

	t.Run("default is pending", func(t *testing.T) {
		rec, views := get(t, "/api/v1/students")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		if len(views) != 1 || views[0]["name"] != "A" {
			t.Errorf("views = %+v", views)
		}
	})

	t.Run("approved filter carries dates", func(t *testing.T) {
		rec, views := get(t, "/api/v1/students?status=approved")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		if len(views) != 1 {
			t.Fatalf("views = %+v", views)
		}
		if views[0]["joined_at"] != "2026-02-01" || views[0]["expires_at"] != "2026-03-03" {
			t.Errorf("dates = %v / %v", views[0]["joined_at"], views[0]["expires_at"])
		}
	})

	t.Run("unknown status", func(t *testing.T) {
		rec, _ := get(t, "/api/v1/students?status=frozen")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want 400", rec.Code)
		}
	})
}
