package web

import (
	"encoding/json"
	"net/http"

	"telegram-tutoring-bot/internal/domain/model"
	"telegram-tutoring-bot/internal/usecase"
)

type loginRequest struct {
	APIKey string `json:"api_key"`
}

// loginHandler exchanges the configured admin API key for a session token.
func (s *Server) loginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.apiKey == "" {
			s.log.Error().Msg("admin API key is not configured")
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}

		var req loginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "Invalid request body", http.StatusBadRequest)
			return
		}
		if req.APIKey != s.apiKey {
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}

		token, err := s.auth.Mint(w)
		if err != nil {
			http.Error(w, "Failed to mint session", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"token": token})
	}
}

// statsHandler serves student counts grouped by status.
func statsHandler(statsUC *usecase.StatsUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		counts, err := statsUC.CountByStatus(r.Context())
		if err != nil {
			http.Error(w, "Failed to get stats", http.StatusInternalServerError)
			return
		}

		response := struct {
			Pending  int `json:"pending"`
			Approved int `json:"approved"`
			Expired  int `json:"expired"`
		}{
			Pending:  counts[model.StudentStatusPending],
			Approved: counts[model.StudentStatusApproved],
			Expired:  counts[model.StudentStatusExpired],
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(response)
	}
}

type studentView struct {
	ChatID         int64  `json:"chat_id"`
	Name           string `json:"name"`
	Grade          string `json:"grade"`
	Plan           string `json:"plan"`
	Status         string `json:"status"`
	JoinedAt       string `json:"joined_at,omitempty"`
	ExpiresAt      string `json:"expires_at,omitempty"`
	WeeklySchedule string `json:"weekly_schedule"`
}

// studentsListHandler serves records filtered by ?status= (default pending).
func studentsListHandler(statsUC *usecase.StatsUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := model.StudentStatus(r.URL.Query().Get("status"))
		if status == "" {
			status = model.StudentStatusPending
		}
		switch status {
		case model.StudentStatusPending, model.StudentStatusApproved, model.StudentStatusExpired:
		default:
			http.Error(w, "Unknown status", http.StatusBadRequest)
			return
		}

		students, err := statsUC.ListByStatus(r.Context(), status)
		if err != nil {
			http.Error(w, "Failed to list students", http.StatusInternalServerError)
			return
		}

		views := make([]studentView, 0, len(students))
		for _, s := range students {
			v := studentView{
				ChatID:         s.ChatID,
				Name:           s.Name,
				Grade:          s.Grade,
				Plan:           string(s.Plan),
				Status:         string(s.Status),
				WeeklySchedule: s.WeeklySchedule,
			}
			if s.JoinedAt != nil {
				v.JoinedAt = s.JoinedAt.Format("2006-01-02")
			}
			if s.ExpiresAt != nil {
				v.ExpiresAt = s.ExpiresAt.Format("2006-01-02")
			}
			views = append(views, v)
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(views)
	}
}
