package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"kycdesk/config"
	"kycdesk/logger"
	"kycdesk/services"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

type Handlers struct {
	auth         *services.AuthService
	accounts     *services.AccountService
	transactions *services.TransactionService
	config       *config.Config
}

func NewHandlers(auth *services.AuthService, accounts *services.AccountService, transactions *services.TransactionService, cfg *config.Config) *Handlers {
	return &Handlers{
		auth:         auth,
		accounts:     accounts,
		transactions: transactions,
		config:       cfg,
	}
}

func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"service":   "kycdesk",
		"version":   "1.0.0",
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.GetLogger().Warn("failed to encode response", zap.Error(err))
	}
}

func writeSuccess(w http.ResponseWriter, status int, message string, extra map[string]interface{}) {
	body := map[string]interface{}{
		"success": true,
		"message": message,
	}
	for k, v := range extra {
		body[k] = v
	}
	writeJSON(w, status, body)
}

// writeError renders a workflow failure. Authorization failures use the
// {"error": ...} shape, everything else {"success": false, "message": ...}.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	appErr := services.AsAppError(err)

	if appErr.Status >= http.StatusInternalServerError {
		logger.Error(r.Context(), "request failed",
			zap.String("path", r.URL.Path),
			zap.Error(appErr.Err),
		)
	}

	if appErr.IsAuthorization() {
		writeJSON(w, appErr.Status, map[string]string{"error": appErr.Message})
		return
	}

	body := map[string]interface{}{
		"success": false,
		"message": appErr.Message,
	}
	if appErr.Details != nil {
		body["details"] = appErr.Details
	}
	writeJSON(w, appErr.Status, body)
}

func decodeJSON(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return services.Validation("Invalid request body", map[string]string{"body": err.Error()})
	}
	return nil
}

// pathID parses the {id} route variable. Ids that cannot name a record are
// reported as not found.
func pathID(r *http.Request, notFound string) (uint, error) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil || id == 0 {
		return 0, services.NotFound(notFound)
	}
	return uint(id), nil
}

func pageFromQuery(r *http.Request) services.Page {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	limit, _ := strconv.Atoi(q.Get("limit"))
	return services.NewPage(page, limit)
}
