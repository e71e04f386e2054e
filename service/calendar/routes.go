package calendar

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/tidycrew/tidycrew-server/cmd/models"
	"github.com/tidycrew/tidycrew-server/cmd/utils"
	"gorm.io/gorm"
)

type CalendarHandler struct {
    db     *gorm.DB
    client *Client
}

func NewCalendarHandler(db *gorm.DB, client *Client) *CalendarHandler {
    return &CalendarHandler{db: db, client: client}
}

func (h *CalendarHandler) RegisterRoutes(router *mux.Router) {
    router.HandleFunc("/calendar/oauth/url", utils.AuthMiddleware(h.GetOAuthURL)).Methods("GET")
    router.HandleFunc("/calendar/oauth/callback", h.HandleOAuthCallback).Methods("GET")
    router.HandleFunc("/calendar/status", utils.AuthMiddleware(h.GetStatus)).Methods("GET")
    router.HandleFunc("/calendar/events", utils.AuthMiddleware(h.CreateEvent)).Methods("POST")
    router.HandleFunc("/calendar/events/{eventId}", utils.AuthMiddleware(h.DeleteEvent)).Methods("DELETE")
}


// GetOAuthURL returns the provider consent URL for the signed-in account.
func (h *CalendarHandler) GetOAuthURL(w http.ResponseWriter, r *http.Request) {
    userID, err := utils.GetUserIDFromContext(r)
    if err != nil {
        http.Error(w, "Unauthorized", http.StatusUnauthorized)
        return
    }

    if !h.client.Configured() {
        http.Error(w, "Calendar integration not configured", http.StatusServiceUnavailable)
        return
    }

    w.Header().Set("Content-Type", "application/json")
    json.NewEncoder(w).Encode(map[string]string{
        "url": h.client.AuthCodeURL(fmt.Sprint(userID)),
    })
}

// HandleOAuthCallback completes the authorization-code exchange. The state
// parameter carries the account key the tokens belong to; the browser is
// sent back to the scheduling page with a success or error flag.
func (h *CalendarHandler) HandleOAuthCallback(w http.ResponseWriter, r *http.Request) {
    query := r.URL.Query()

    if providerErr := query.Get("error"); providerErr != "" {
        redirectToSchedule(w, r, "error")
        return
    }

    code := query.Get("code")
    state := query.Get("state")
    if code == "" || state == "" {
        redirectToSchedule(w, r, "error")
        return
    }

    tok, err := h.client.ExchangeCode(code)
    if err != nil {
        redirectToSchedule(w, r, "error")
        return
    }

    if err := h.client.SaveTokens(state, tok); err != nil {
        redirectToSchedule(w, r, "error")
        return
    }

    redirectToSchedule(w, r, "connected")
}

func redirectToSchedule(w http.ResponseWriter, r *http.Request, flag string) {
    appURL := os.Getenv("APP_URL")
    http.Redirect(w, r, appURL+"/schedule?calendar="+flag, http.StatusFound)
}

// GetStatus reports whether the account has a calendar connection.
func (h *CalendarHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
    userID, err := utils.GetUserIDFromContext(r)
    if err != nil {
        http.Error(w, "Unauthorized", http.StatusUnauthorized)
        return
    }

    var user models.User
    if err := h.db.First(&user, userID).Error; err != nil {
        http.Error(w, "User not found", http.StatusNotFound)
        return
    }

    w.Header().Set("Content-Type", "application/json")
    json.NewEncoder(w).Encode(map[string]interface{}{
        "connected":    user.GoogleAccessToken != "",
        "connected_at": user.GoogleConnectedAt,
        "expires_at":   user.GoogleTokenExpiresAt,
    })
}

// CreateEvent creates a remote calendar event from appointment fields.
func (h *CalendarHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
    userID, err := utils.GetUserIDFromContext(r)
    if err != nil {
        http.Error(w, "Unauthorized", http.StatusUnauthorized)
        return
    }

    var eventRequest struct {
        Service     string `json:"service"`
        Description string `json:"description"`
        Date        string `json:"date"`
        Time        string `json:"time"`
        Minutes     int    `json:"minutes"`
        ClientEmail string `json:"client_email"`
    }
    if err := json.NewDecoder(r.Body).Decode(&eventRequest); err != nil {
        http.Error(w, "Invalid request body", http.StatusBadRequest)
        return
    }

    if eventRequest.Service == "" || eventRequest.Date == "" || eventRequest.Time == "" {
        http.Error(w, "Service, date and time are required", http.StatusBadRequest)
        return
    }

    eventID, err := h.client.CreateEvent(userID, Event{
        Summary:     eventRequest.Service,
        Description: eventRequest.Description,
        Date:        eventRequest.Date,
        Time:        eventRequest.Time,
        Minutes:     eventRequest.Minutes,
        Attendee:    eventRequest.ClientEmail,
    })
    if err != nil {
        writeSyncError(w, err)
        return
    }

    w.Header().Set("Content-Type", "application/json")
    w.WriteHeader(http.StatusCreated)
    json.NewEncoder(w).Encode(map[string]string{
        "event_id": eventID,
    })
}

// DeleteEvent removes a remote calendar event.
func (h *CalendarHandler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
    userID, err := utils.GetUserIDFromContext(r)
    if err != nil {
        http.Error(w, "Unauthorized", http.StatusUnauthorized)
        return
    }

    vars := mux.Vars(r)
    eventID := vars["eventId"]
    if eventID == "" {
        http.Error(w, "Event ID is required", http.StatusBadRequest)
        return
    }

    if err := h.client.DeleteEvent(userID, eventID); err != nil {
        writeSyncError(w, err)
        return
    }

    w.Header().Set("Content-Type", "application/json")
    json.NewEncoder(w).Encode(map[string]string{
        "message": "Event deleted successfully",
    })
}

// writeSyncError maps the client's failure taxonomy onto HTTP responses.
func writeSyncError(w http.ResponseWriter, err error) {
    w.Header().Set("Content-Type", "application/json")

    switch {
    case errors.Is(err, ErrNotConnected):
        w.WriteHeader(http.StatusUnauthorized)
        json.NewEncoder(w).Encode(map[string]string{"error": "not_connected"})
    case errors.Is(err, ErrRefreshFailed):
        w.WriteHeader(http.StatusUnauthorized)
        json.NewEncoder(w).Encode(map[string]string{"error": "refresh_failed"})
    default:
        w.WriteHeader(http.StatusBadGateway)
        json.NewEncoder(w).Encode(map[string]string{"error": "provider_rejected"})
    }
}
