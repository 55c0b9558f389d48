package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"suraksha-sathi/internal/app"
	"suraksha-sathi/internal/domain"
)

// API bundles the HTTP handlers over the application services.
type API struct {
	grading *app.GradingService
	board   *app.LeaderboardService
	users   *app.UserService
	drills  *app.DrillService
	alerts  *app.AlertService
	metrics *app.MetricsService
	modules app.ModuleCatalog

	adminKey string
}

func NewAPI(
	grading *app.GradingService,
	board *app.LeaderboardService,
	users *app.UserService,
	drills *app.DrillService,
	alerts *app.AlertService,
	metrics *app.MetricsService,
	modules app.ModuleCatalog,
	adminKey string,
) *API {
	return &API{
		grading:  grading,
		board:    board,
		users:    users,
		drills:   drills,
		alerts:   alerts,
		metrics:  metrics,
		modules:  modules,
		adminKey: adminKey,
	}
}

// Router builds the REST routing table.
func (a *API) Router() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("ok"))
	}).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.HandleFunc("/auth/register", a.handleRegister).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", a.handleLogin).Methods(http.MethodPost)
	api.HandleFunc("/quiz/grade", a.handleGrade).Methods(http.MethodPost)
	api.HandleFunc("/modules", a.handleModules).Methods(http.MethodGet)
	api.HandleFunc("/leaderboard", a.handleLeaderboard).Methods(http.MethodGet)
	api.HandleFunc("/user/stats", a.handleUserStats).Methods(http.MethodGet)
	api.HandleFunc("/user/{userId}/badges", a.handleUserBadges).Methods(http.MethodGet)
	api.HandleFunc("/badges", a.handleBadgeCatalog).Methods(http.MethodGet)
	api.HandleFunc("/drills", a.handleDrills).Methods(http.MethodGet)
	api.HandleFunc("/drills/participation", a.handleDrillParticipation).Methods(http.MethodPost)
	api.HandleFunc("/alerts", a.handlePublishAlert).Methods(http.MethodPost)
	api.HandleFunc("/alerts", a.handleListAlerts).Methods(http.MethodGet)
	api.HandleFunc("/alerts/stream", a.handleAlertStream).Methods(http.MethodGet)
	api.HandleFunc("/admin/metrics", a.handleMetrics).Methods(http.MethodGet)
	return r
}

type registerRequest struct {
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Role     domain.Role `json:"role"`
}

func (a *API) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "name, email and password are required")
		return
	}

	user, err := a.users.Register(r.Context(), req.Name, req.Email, req.Password, req.Role)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"user":    userSummary(user),
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	user, err := a.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"user":    userSummary(user),
	})
}

type gradeRequest struct {
	ModuleID string `json:"moduleId"`
	UserID   string `json:"userId"`
	Answers  []int  `json:"answers"`
}

func (a *API) handleGrade(w http.ResponseWriter, r *http.Request) {
	var req gradeRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ModuleID == "" || req.UserID == "" || req.Answers == nil {
		writeError(w, http.StatusBadRequest, "moduleId, userId, and answers are required")
		return
	}

	result, err := a.grading.Grade(r.Context(), req.ModuleID, req.UserID, req.Answers)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// moduleView strips the correct-answer reference; answers are never
// serialized to clients.
type moduleView struct {
	ID      string         `json:"id"`
	Title   string         `json:"title"`
	Content string         `json:"content"`
	Quiz    []questionView `json:"quiz"`
}

type questionView struct {
	Prompt  string   `json:"question"`
	Choices []string `json:"choices"`
}

func toModuleView(m domain.Module) moduleView {
	questions := make([]questionView, len(m.Quiz))
	for i, q := range m.Quiz {
		questions[i] = questionView{Prompt: q.Prompt, Choices: q.Choices}
	}
	return moduleView{ID: m.ID, Title: m.Title, Content: m.Content, Quiz: questions}
}

func (a *API) handleModules(w http.ResponseWriter, r *http.Request) {
	if id := r.URL.Query().Get("id"); id != "" {
		module, err := a.modules.Module(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toModuleView(module))
		return
	}

	modules, err := a.modules.Modules(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	views := make([]moduleView, len(modules))
	for i, m := range modules {
		views[i] = toModuleView(m)
	}
	writeJSON(w, http.StatusOK, views)
}

func (a *API) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	entries, err := a.board.Snapshot(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (a *API) handleUserBadges(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]
	badges, err := a.users.Badges(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"badges": badges})
}

func (a *API) handleBadgeCatalog(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, app.BadgeCatalog)
}

func (a *API) handleUserStats(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "user ID is required")
		return
	}

	stats, err := a.users.Stats(r.Context(), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (a *API) handleDrills(w http.ResponseWriter, r *http.Request) {
	if id := r.URL.Query().Get("id"); id != "" {
		drill, err := a.drills.Scenario(r.Context(), id)
		if err != nil {
			writeServiceError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, drill)
		return
	}

	drills, err := a.drills.Scenarios(r.Context(), r.URL.Query().Get("region"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, drills)
}

type participationRequest struct {
	UserID  string `json:"userId"`
	DrillID string `json:"drillId"`
}

func (a *API) handleDrillParticipation(w http.ResponseWriter, r *http.Request) {
	var req participationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.UserID == "" || req.DrillID == "" {
		writeError(w, http.StatusBadRequest, "userId and drillId are required")
		return
	}

	result, err := a.drills.RecordParticipation(r.Context(), req.UserID, req.DrillID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

type alertRequest struct {
	Region  string `json:"region"`
	Level   string `json:"level"`
	Message string `json:"message"`
}

func (a *API) handlePublishAlert(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("X-API-Key") != a.adminKey || a.adminKey == "" {
		writeError(w, http.StatusForbidden, "unauthorized")
		return
	}

	var req alertRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	alert, err := a.alerts.Publish(r.Context(), req.Region, req.Level, req.Message)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "id": alert.ID})
}

func (a *API) handleListAlerts(w http.ResponseWriter, r *http.Request) {
	alerts, err := a.alerts.Recent(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if alerts == nil {
		alerts = []domain.Alert{}
	}
	writeJSON(w, http.StatusOK, alerts)
}

func (a *API) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("X-API-Key") != a.adminKey || a.adminKey == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	metrics, err := a.metrics.Snapshot(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]app.Metrics{"metrics": metrics})
}

func userSummary(u domain.User) map[string]any {
	return map[string]any{
		"id":          u.ID,
		"name":        u.Name,
		"email":       u.Email,
		"role":        u.Role,
		"loginStreak": u.LoginStreak,
	}
}

func decodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeServiceError maps domain errors onto the HTTP taxonomy: validation →
// 400, not-found → 404, storage and unknown → 500 with no internals exposed.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrModuleNotFound),
		errors.Is(err, domain.ErrDrillNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrAnswerCountMismatch),
		errors.Is(err, domain.ErrEmailTaken),
		errors.Is(err, domain.ErrInvalidRole),
		errors.Is(err, app.ErrMissingAlertFields):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, err.Error())
	default:
		log.Printf("internal error: %v", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}
