package notification

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
)

// NotificationHandler exposes the three transactional email variants.
type NotificationHandler struct {
    mailer *Mailer
}

func NewNotificationHandler(mailer *Mailer) *NotificationHandler {
    return &NotificationHandler{mailer: mailer}
}

func (h *NotificationHandler) RegisterRoutes(router *mux.Router) {
    router.HandleFunc("/notifications/confirmation", h.SendConfirmation).Methods("POST")
    router.HandleFunc("/notifications/reminder", h.SendReminder).Methods("POST")
    router.HandleFunc("/notifications/cancellation", h.SendCancellation).Methods("POST")
}

func (h *NotificationHandler) SendConfirmation(w http.ResponseWriter, r *http.Request) {
    h.handleSend(w, r, h.mailer.SendConfirmation)
}

func (h *NotificationHandler) SendReminder(w http.ResponseWriter, r *http.Request) {
    h.handleSend(w, r, h.mailer.SendReminder)
}

func (h *NotificationHandler) SendCancellation(w http.ResponseWriter, r *http.Request) {
    h.handleSend(w, r, h.mailer.SendCancellation)
}

func (h *NotificationHandler) handleSend(w http.ResponseWriter, r *http.Request, send func(string, AppointmentDetails) (string, error)) {
    var sendRequest struct {
        Email      string  `json:"email"`
        ClientName string  `json:"client_name"`
        Service    string  `json:"service"`
        Date       string  `json:"date"`
        Time       string  `json:"time"`
        Price      float64 `json:"price"`
    }

    if err := json.NewDecoder(r.Body).Decode(&sendRequest); err != nil {
        http.Error(w, "Invalid request body", http.StatusBadRequest)
        return
    }

    if sendRequest.Email == "" || sendRequest.Service == "" || sendRequest.Date == "" || sendRequest.Time == "" {
        http.Error(w, "Email, service, date and time are required", http.StatusBadRequest)
        return
    }

    messageID, err := send(sendRequest.Email, AppointmentDetails{
        ClientName: sendRequest.ClientName,
        Service:    sendRequest.Service,
        Date:       sendRequest.Date,
        Time:       sendRequest.Time,
        Price:      sendRequest.Price,
    })
    if err != nil {
        http.Error(w, "Error sending email", http.StatusInternalServerError)
        return
    }

    w.Header().Set("Content-Type", "application/json")
    json.NewEncoder(w).Encode(map[string]interface{}{
        "success":    true,
        "message_id": messageID,
    })
}
