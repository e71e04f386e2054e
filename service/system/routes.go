package system

import (
	"encoding/json"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"gorm.io/gorm"
)

type SystemHandler struct {
    db *gorm.DB
}

func NewSystemHandler(db *gorm.DB) *SystemHandler {
    return &SystemHandler{db: db}
}

func (h *SystemHandler) RegisterRoutes(router *mux.Router) {
    router.HandleFunc("/system/integrations", h.GetIntegrations).Methods("GET")
    router.HandleFunc("/system/health", h.GetHealth).Methods("GET")
}

// GetIntegrations probes which optional integrations have credentials
// configured, so the frontend can hide features that cannot work.
func (h *SystemHandler) GetIntegrations(w http.ResponseWriter, r *http.Request) {
    w.Header().Set("Content-Type", "application/json")
    json.NewEncoder(w).Encode(map[string]bool{
        "calendar": os.Getenv("GOOGLE_CLIENT_ID") != "" && os.Getenv("GOOGLE_CLIENT_SECRET") != "",
        "email":    os.Getenv("SMTP_HOST") != "" && os.Getenv("SMTP_USER") != "",
        "database": h.databaseReachable(),
    })
}

func (h *SystemHandler) GetHealth(w http.ResponseWriter, r *http.Request) {
    if !h.databaseReachable() {
        http.Error(w, "Database unreachable", http.StatusServiceUnavailable)
        return
    }
    w.Header().Set("Content-Type", "application/json")
    json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (h *SystemHandler) databaseReachable() bool {
    sqlDB, err := h.db.DB()
    if err != nil {
        return false
    }
    return sqlDB.Ping() == nil
}
