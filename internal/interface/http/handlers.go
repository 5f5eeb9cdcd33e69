package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/CodeGrind-Team/CodeGrind-Bot-sub000/internal/application/command"
	"github.com/CodeGrind-Team/CodeGrind-Bot-sub000/internal/application/query"
	"github.com/CodeGrind-Team/CodeGrind-Bot-sub000/internal/domain/leaderboard"
	"github.com/CodeGrind-Team/CodeGrind-Bot-sub000/internal/domain/shared"
	"github.com/CodeGrind-Team/CodeGrind-Bot-sub000/internal/domain/user"
	"github.com/CodeGrind-Team/CodeGrind-Bot-sub000/pkg/logger"
	"github.com/CodeGrind-Team/CodeGrind-Bot-sub000/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// HEALTH & STATUS HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// handleRoot returns basic service information.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeJSONError(w, http.StatusNotFound, "not_found", "Endpoint not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"service": "leetcode-leaderboard",
		"status":  "running",
		"uptime":  timeutil.FormatDuration(s.Uptime()),
	})
}

// handleHealth checks downstream dependencies.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "healthy"
	httpStatus := http.StatusOK

	var checkErr string
	if s.deps.HealthCheck != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := s.deps.HealthCheck(ctx); err != nil {
			status = "unhealthy"
			httpStatus = http.StatusServiceUnavailable
			checkErr = err.Error()
		}
	}

	payload := map[string]interface{}{
		"status": status,
		"uptime": timeutil.FormatDuration(s.Uptime()),
	}
	if checkErr != "" {
		payload["error"] = checkErr
	}

	writeJSON(w, httpStatus, payload)
}

// handleReady reports readiness (dependencies reachable).
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.deps.HealthCheck != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		if err := s.deps.HealthCheck(ctx); err != nil {
			writeJSONError(w, http.StatusServiceUnavailable, "not_ready", err.Error())
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// handleLive reports liveness (process responding).
func (s *Server) handleLive(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// ══════════════════════════════════════════════════════════════════════════════
// LEADERBOARD HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// leaderboardResponse augments the query result with a human-friendly
// refresh age for API consumers.
type leaderboardResponse struct {
	*query.GetLeaderboardResult
	RefreshedAgo string `json:"refreshed_ago"`
}

// handleGetLeaderboard returns a page of the ranked leaderboard.
//
// Query parameters:
//
//	server_id - community ID (0 or omitted = global leaderboard)
//	period    - day | week | month | alltime (default: day)
//	sort      - score | wins (default: score)
//	previous  - true to show the last closed period instead of the open one
//	page      - 1-based page number (clamped, default: 1)
//	page_size - entries per page (default: 10)
func (s *Server) handleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	if s.deps.GetLeaderboard == nil {
		writeJSONError(w, http.StatusServiceUnavailable, "service_unavailable", "Leaderboard queries are not available")
		return
	}

	q := query.GetLeaderboardQuery{
		ServerID: getQueryParamInt64(r, "server_id", 0),
		Period:   shared.PeriodKind(getQueryParam(r, "period", string(shared.PeriodDay))),
		SortKey:  leaderboard.SortKey(getQueryParam(r, "sort", string(leaderboard.SortByScore))),
		Previous: getQueryParamBool(r, "previous"),
		Page:     getQueryParamInt(r, "page", 1),
		PageSize: getQueryParamInt(r, "page_size", 0),
	}

	result, err := s.deps.GetLeaderboard.Handle(r.Context(), q)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, leaderboardResponse{
		GetLeaderboardResult: result,
		RefreshedAgo:         timeutil.Ago(result.LastRefreshAt),
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// ACCOUNT HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

type linkAccountRequest struct {
	UserID   int64  `json:"user_id"`
	ServerID int64  `json:"server_id"`
	Handle   string `json:"handle"`
}

type linkAccountResponse struct {
	UserID        int64  `json:"user_id"`
	Handle        string `json:"handle"`
	TotalScore    int    `json:"total_score"`
	AlreadyLinked bool   `json:"already_linked"`
}

// handleLinkAccount links a Discord account to a LeetCode handle and
// enrolls it in the requesting community.
func (s *Server) handleLinkAccount(w http.ResponseWriter, r *http.Request) {
	if s.deps.LinkAccount == nil {
		writeJSONError(w, http.StatusServiceUnavailable, "service_unavailable", "Account linking is not available")
		return
	}

	var req linkAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body: "+err.Error())
		return
	}

	cmd := command.LinkAccountCommand{
		UserID:   user.DiscordID(req.UserID),
		ServerID: req.ServerID,
		Handle:   user.Handle(req.Handle),
	}

	result, err := s.deps.LinkAccount.Handle(r.Context(), cmd)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	status := http.StatusCreated
	if result.AlreadyLinked {
		status = http.StatusOK
	}

	writeJSON(w, status, linkAccountResponse{
		UserID:        int64(result.User.ID),
		Handle:        string(result.User.Handle),
		TotalScore:    int(result.User.TotalScore),
		AlreadyLinked: result.AlreadyLinked,
	})
}

type unlinkAccountRequest struct {
	UserID int64 `json:"user_id"`
}

// handleUnlinkAccount removes a linked account and all of its data.
func (s *Server) handleUnlinkAccount(w http.ResponseWriter, r *http.Request) {
	if s.deps.UnlinkAccount == nil {
		writeJSONError(w, http.StatusServiceUnavailable, "service_unavailable", "Account unlinking is not available")
		return
	}

	var req unlinkAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body: "+err.Error())
		return
	}

	err := s.deps.UnlinkAccount.Handle(r.Context(), command.UnlinkAccountCommand{
		UserID: user.DiscordID(req.UserID),
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "unlinked"})
}

// ══════════════════════════════════════════════════════════════════════════════
// PREFERENCE HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

type updatePreferencesRequest struct {
	UserID     int64 `json:"user_id"`
	ServerID   int64 `json:"server_id"`
	ShowName   bool  `json:"show_name"`
	ShowHandle bool  `json:"show_handle"`
}

// handleUpdatePreferences updates per-community display preferences.
func (s *Server) handleUpdatePreferences(w http.ResponseWriter, r *http.Request) {
	if s.deps.UpdatePreferences == nil {
		writeJSONError(w, http.StatusServiceUnavailable, "service_unavailable", "Preference updates are not available")
		return
	}

	var req updatePreferencesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body: "+err.Error())
		return
	}

	err := s.deps.UpdatePreferences.Handle(r.Context(), command.UpdatePreferencesCommand{
		UserID:     user.DiscordID(req.UserID),
		ServerID:   req.ServerID,
		ShowName:   req.ShowName,
		ShowHandle: req.ShowHandle,
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// ══════════════════════════════════════════════════════════════════════════════
// ADMIN HANDLERS
// ══════════════════════════════════════════════════════════════════════════════

// requireAdmin verifies the X-Admin-Token header against the configured
// bcrypt hash. Returns false after writing the error response.
func (s *Server) requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	if s.config.AdminTokenHash == "" {
		writeJSONError(w, http.StatusForbidden, "admin_disabled", "Admin endpoints are not configured")
		return false
	}

	token := r.Header.Get("X-Admin-Token")
	if token == "" {
		writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Missing X-Admin-Token header")
		return false
	}

	if err := bcrypt.CompareHashAndPassword([]byte(s.config.AdminTokenHash), []byte(token)); err != nil {
		writeJSONError(w, http.StatusUnauthorized, "unauthorized", "Invalid admin token")
		return false
	}

	return true
}

type closePeriodsRequest struct {
	OverrideDay   bool `json:"override_day"`
	OverrideWeek  bool `json:"override_week"`
	OverrideMonth bool `json:"override_month"`
}

type closePeriodsResponse struct {
	Closed           []shared.PeriodKind `json:"closed"`
	TotalUsers       int                 `json:"total_users"`
	RefreshedCount   int                 `json:"refreshed_count"`
	FailedCount      int                 `json:"failed_count"`
	SnapshotsWritten int                 `json:"snapshots_written"`
	WinnersCredited  int                 `json:"winners_credited"`
	Duration         string              `json:"duration"`
}

// handleAdminClosePeriods forces a refresh-and-close cycle outside the
// scheduled cadence. Overrides settle the named periods even when the
// calendar boundary has not been crossed.
func (s *Server) handleAdminClosePeriods(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}

	if s.deps.ClosePeriods == nil {
		writeJSONError(w, http.StatusServiceUnavailable, "service_unavailable", "Period close is not available")
		return
	}

	var req closePeriodsRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body: "+err.Error())
			return
		}
	}

	result, err := s.deps.ClosePeriods.Handle(r.Context(), command.ClosePeriodsCommand{
		OverrideDay:   req.OverrideDay,
		OverrideWeek:  req.OverrideWeek,
		OverrideMonth: req.OverrideMonth,
	})
	if err != nil {
		s.writeDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, closePeriodsResponse{
		Closed:           result.Closed.Kinds(),
		TotalUsers:       result.TotalUsers,
		RefreshedCount:   result.RefreshedCount,
		FailedCount:      result.FailedCount,
		SnapshotsWritten: result.SnapshotsWritten,
		WinnersCredited:  result.WinnersCredited,
		Duration:         timeutil.FormatDuration(result.Duration()),
	})
}

// handleAdminJobs lists registered scheduler jobs and their next runs.
func (s *Server) handleAdminJobs(w http.ResponseWriter, r *http.Request) {
	if !s.requireAdmin(w, r) {
		return
	}

	if s.deps.Scheduler == nil {
		writeJSONError(w, http.StatusServiceUnavailable, "service_unavailable", "No scheduler attached to this instance")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"running": s.deps.Scheduler.IsRunning(),
		"jobs":    s.deps.Scheduler.ListJobs(),
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// ERROR MAPPING
// ══════════════════════════════════════════════════════════════════════════════

// writeDomainError maps domain errors onto HTTP status codes.
func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case shared.IsValidation(err):
		writeJSONError(w, http.StatusBadRequest, "validation_error", err.Error())
	case shared.IsNotFound(err):
		writeJSONError(w, http.StatusNotFound, "not_found", err.Error())
	case shared.IsAlreadyExists(err):
		writeJSONError(w, http.StatusConflict, "already_exists", err.Error())
	case shared.IsExternalService(err):
		writeJSONError(w, http.StatusBadGateway, "upstream_error", err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		writeJSONError(w, http.StatusGatewayTimeout, "timeout", "Request timed out")
	default:
		s.logger.Error("unhandled request error", logger.Err(err))
		writeJSONError(w, http.StatusInternalServerError, "internal_server_error", "An unexpected error occurred")
	}
}
