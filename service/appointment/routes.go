package appointment

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/tidycrew/tidycrew-server/cmd/models"
	"github.com/tidycrew/tidycrew-server/cmd/utils"
	"github.com/tidycrew/tidycrew-server/service/calendar"
	"github.com/tidycrew/tidycrew-server/service/notification"
	"gorm.io/gorm"
)

type AppointmentHandler struct {
    db       *gorm.DB
    mailer   *notification.Mailer
    calendar *calendar.Client
}

func NewAppointmentHandler(db *gorm.DB, mailer *notification.Mailer, calendarClient *calendar.Client) *AppointmentHandler {
    return &AppointmentHandler{db: db, mailer: mailer, calendar: calendarClient}
}


func (h *AppointmentHandler) RegisterRoutes(router *mux.Router) {
    router.HandleFunc("/appointments", utils.AuthMiddleware(h.CreateAppointment)).Methods("POST")
    router.HandleFunc("/appointments", utils.AuthMiddleware(h.GetAppointments)).Methods("GET")
    router.HandleFunc("/appointments/{id}", utils.AuthMiddleware(h.GetAppointment)).Methods("GET")
    router.HandleFunc("/appointments/{id}", utils.AuthMiddleware(h.UpdateAppointment)).Methods("PUT")
    router.HandleFunc("/appointments/{id}", utils.AuthMiddleware(h.DeleteAppointment)).Methods("DELETE")
}


type appointmentRequest struct {
    ClientID    uint    `json:"client_id"`
    EmployeeIDs []uint  `json:"employee_ids"`
    Date        string  `json:"date"`
    Time        string  `json:"time"`
    Status      string  `json:"status"`
    Service     string  `json:"service"`
    Price       float64 `json:"price"`
    ClientEmail string  `json:"client_email"`
}

// missingFields names every required field absent from the request. Price
// and client email are optional.
func (req appointmentRequest) missingFields() []string {
    var missing []string
    if req.ClientID == 0 {
        missing = append(missing, "client")
    }
    if len(req.EmployeeIDs) == 0 {
        missing = append(missing, "employee")
    }
    if req.Date == "" {
        missing = append(missing, "date")
    }
    if req.Time == "" {
        missing = append(missing, "time")
    }
    if req.Service == "" {
        missing = append(missing, "service")
    }
    if req.Status == "" {
        missing = append(missing, "status")
    }
    return missing
}


// CreateAppointment persists an appointment and its employee assignments as
// one unit, then fires the best-effort side effects (confirmation email,
// calendar event).
func (h *AppointmentHandler) CreateAppointment(w http.ResponseWriter, r *http.Request) {
    userID, err := utils.GetUserIDFromContext(r)
    if err != nil {
        http.Error(w, "Unauthorized", http.StatusUnauthorized)
        return
    }

    var req appointmentRequest
    if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
        http.Error(w, "Invalid request body", http.StatusBadRequest)
        return
    }

    if missing := req.missingFields(); len(missing) > 0 {
        http.Error(w, "Missing required fields: "+strings.Join(missing, ", "), http.StatusBadRequest)
        return
    }
    if !models.ValidStatus(req.Status) {
        http.Error(w, "Invalid status", http.StatusBadRequest)
        return
    }

    appointment := models.Appointment{
        UserID:      userID,
        ClientID:    req.ClientID,
        EmployeeID:  req.EmployeeIDs[0],
        Date:        req.Date,
        Time:        req.Time,
        Status:      req.Status,
        Service:     req.Service,
        Price:       req.Price,
        ClientEmail: req.ClientEmail,
    }

    tx := h.db.Begin()

    if err := tx.Create(&appointment).Error; err != nil {
        tx.Rollback()
        http.Error(w, "Error creating appointment", http.StatusInternalServerError)
        return
    }

    if err := insertAssignments(tx, appointment.ID, req.EmployeeIDs); err != nil {
        tx.Rollback()
        http.Error(w, "Error assigning employees", http.StatusInternalServerError)
        return
    }

    if err := tx.Commit().Error; err != nil {
        http.Error(w, "Error completing appointment save", http.StatusInternalServerError)
        return
    }

    // Side effects are best-effort: a failed email or calendar call never
    // rolls back or blocks the saved appointment.
    if appointment.ClientEmail != "" {
        go h.sendConfirmation(appointment)
    }
    h.syncCalendarCreate(&appointment)

    h.resolveEmployeeIDs(&appointment)

    w.Header().Set("Content-Type", "application/json")
    w.WriteHeader(http.StatusCreated)
    json.NewEncoder(w).Encode(appointment)
}


// GetAppointments lists the user's appointments with optional status and
// date range filters.
func (h *AppointmentHandler) GetAppointments(w http.ResponseWriter, r *http.Request) {
    userID, err := utils.GetUserIDFromContext(r)
    if err != nil {
        http.Error(w, "Unauthorized", http.StatusUnauthorized)
        return
    }

    page, _ := strconv.Atoi(r.URL.Query().Get("page"))
    if page < 1 {
        page = 1
    }
    pageSize := 100

    query := h.db.Model(&models.Appointment{}).Where("user_id = ?", userID).
        Preload("Client").Preload("Employee")

    // Apply filters
    if status := r.URL.Query().Get("status"); status != "" {
        query = query.Where("status = ?", status)
    }
    if date := r.URL.Query().Get("date"); date != "" {
        query = query.Where("date = ?", date)
    }
    if startDate := r.URL.Query().Get("start_date"); startDate != "" {
        query = query.Where("date >= ?", startDate)
    }
    if endDate := r.URL.Query().Get("end_date"); endDate != "" {
        query = query.Where("date <= ?", endDate)
    }

    var total int64
    query.Count(&total)

    var appointments []models.Appointment
    if err := query.Offset((page - 1) * pageSize).Limit(pageSize).
        Order("date DESC, time DESC").Find(&appointments).Error; err != nil {
        http.Error(w, "Error retrieving appointments", http.StatusInternalServerError)
        return
    }

    for i := range appointments {
        h.resolveEmployeeIDs(&appointments[i])
    }

    w.Header().Set("Content-Type", "application/json")
    json.NewEncoder(w).Encode(map[string]interface{}{
        "appointments": appointments,
        "total":        total,
        "page":         page,
        "page_size":    pageSize,
        "total_pages":  (total + int64(pageSize) - 1) / int64(pageSize),
    })
}

// GetAppointment retrieves a specific appointment scoped to the owning user.
func (h *AppointmentHandler) GetAppointment(w http.ResponseWriter, r *http.Request) {
    userID, err := utils.GetUserIDFromContext(r)
    if err != nil {
        http.Error(w, "Unauthorized", http.StatusUnauthorized)
        return
    }

    vars := mux.Vars(r)
    appointmentID, err := strconv.ParseUint(vars["id"], 10, 64)
    if err != nil {
        http.Error(w, "Invalid appointment ID", http.StatusBadRequest)
        return
    }

    var appointment models.Appointment
    if err := h.db.Where("id = ? AND user_id = ?", appointmentID, userID).
        Preload("Client").Preload("Employee").First(&appointment).Error; err != nil {
        http.Error(w, "Appointment not found", http.StatusNotFound)
        return
    }

    h.resolveEmployeeIDs(&appointment)

    w.Header().Set("Content-Type", "application/json")
    json.NewEncoder(w).Encode(appointment)
}


// UpdateAppointment overwrites the appointment's fields and replaces its
// assignment rows with the newly selected employee set. The replace happens
// inside the same transaction as the appointment write, so a failure cannot
// leave the appointment with no assigned employees.
func (h *AppointmentHandler) UpdateAppointment(w http.ResponseWriter, r *http.Request) {
    userID, err := utils.GetUserIDFromContext(r)
    if err != nil {
        http.Error(w, "Unauthorized", http.StatusUnauthorized)
        return
    }

    vars := mux.Vars(r)
    appointmentID, err := strconv.ParseUint(vars["id"], 10, 64)
    if err != nil {
        http.Error(w, "Invalid appointment ID", http.StatusBadRequest)
        return
    }

    var req appointmentRequest
    if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
        http.Error(w, "Invalid request body", http.StatusBadRequest)
        return
    }

    if missing := req.missingFields(); len(missing) > 0 {
        http.Error(w, "Missing required fields: "+strings.Join(missing, ", "), http.StatusBadRequest)
        return
    }
    if !models.ValidStatus(req.Status) {
        http.Error(w, "Invalid status", http.StatusBadRequest)
        return
    }

    var appointment models.Appointment
    if err := h.db.Where("id = ? AND user_id = ?", appointmentID, userID).First(&appointment).Error; err != nil {
        http.Error(w, "Appointment not found", http.StatusNotFound)
        return
    }

    appointment.ClientID = req.ClientID
    appointment.EmployeeID = req.EmployeeIDs[0]
    appointment.Date = req.Date
    appointment.Time = req.Time
    appointment.Status = req.Status
    appointment.Service = req.Service
    appointment.Price = req.Price
    appointment.ClientEmail = req.ClientEmail

    tx := h.db.Begin()

    if err := tx.Save(&appointment).Error; err != nil {
        tx.Rollback()
        http.Error(w, "Error updating appointment", http.StatusInternalServerError)
        return
    }

    // Full replace, not a diff: drop the old assignment set and insert the
    // new one.
    if err := tx.Where("appointment_id = ?", appointment.ID).Delete(&models.AppointmentEmployee{}).Error; err != nil {
        tx.Rollback()
        http.Error(w, "Error updating employee assignments", http.StatusInternalServerError)
        return
    }
    if err := insertAssignments(tx, appointment.ID, req.EmployeeIDs); err != nil {
        tx.Rollback()
        http.Error(w, "Error updating employee assignments", http.StatusInternalServerError)
        return
    }

    if err := tx.Commit().Error; err != nil {
        http.Error(w, "Error completing appointment update", http.StatusInternalServerError)
        return
    }

    if appointment.GoogleEventID != "" {
        h.syncCalendarUpdate(&appointment)
    }

    h.resolveEmployeeIDs(&appointment)

    w.Header().Set("Content-Type", "application/json")
    json.NewEncoder(w).Encode(appointment)
}


// DeleteAppointment hard-deletes the appointment together with its
// assignment rows, then cleans up the remote calendar event and notifies
// the client best-effort.
func (h *AppointmentHandler) DeleteAppointment(w http.ResponseWriter, r *http.Request) {
    userID, err := utils.GetUserIDFromContext(r)
    if err != nil {
        http.Error(w, "Unauthorized", http.StatusUnauthorized)
        return
    }

    vars := mux.Vars(r)
    appointmentID, err := strconv.ParseUint(vars["id"], 10, 64)
    if err != nil {
        http.Error(w, "Invalid appointment ID", http.StatusBadRequest)
        return
    }

    var appointment models.Appointment
    if err := h.db.Where("id = ? AND user_id = ?", appointmentID, userID).First(&appointment).Error; err != nil {
        http.Error(w, "Appointment not found", http.StatusNotFound)
        return
    }

    tx := h.db.Begin()

    if err := tx.Where("appointment_id = ?", appointment.ID).Delete(&models.AppointmentEmployee{}).Error; err != nil {
        tx.Rollback()
        http.Error(w, "Error deleting appointment", http.StatusInternalServerError)
        return
    }
    if err := tx.Unscoped().Delete(&appointment).Error; err != nil {
        tx.Rollback()
        http.Error(w, "Error deleting appointment", http.StatusInternalServerError)
        return
    }

    if err := tx.Commit().Error; err != nil {
        http.Error(w, "Error completing appointment delete", http.StatusInternalServerError)
        return
    }

    if appointment.GoogleEventID != "" {
        if err := h.calendar.DeleteEvent(appointment.UserID, appointment.GoogleEventID); err != nil {
            log.Printf("Error deleting calendar event for appointment %d: %v", appointment.ID, err)
        }
    }
    if appointment.ClientEmail != "" {
        go h.sendCancellation(appointment)
    }

    w.Header().Set("Content-Type", "application/json")
    json.NewEncoder(w).Encode(map[string]string{
        "message": "Appointment deleted successfully",
    })
}


func insertAssignments(tx *gorm.DB, appointmentID uint, employeeIDs []uint) error {
    for _, employeeID := range employeeIDs {
        assignment := models.AppointmentEmployee{
            AppointmentID: appointmentID,
            EmployeeID:    employeeID,
        }
        if err := tx.Create(&assignment).Error; err != nil {
            return err
        }
    }
    return nil
}

// resolveEmployeeIDs fills the appointment's employee-id list from its
// assignment rows, first assignment first.
func (h *AppointmentHandler) resolveEmployeeIDs(appointment *models.Appointment) {
    var assignments []models.AppointmentEmployee
    if err := h.db.Where("appointment_id = ?", appointment.ID).Order("id").Find(&assignments).Error; err != nil {
        log.Printf("Error resolving employees for appointment %d: %v", appointment.ID, err)
        return
    }
    ids := make([]uint, 0, len(assignments))
    for _, assignment := range assignments {
        ids = append(ids, assignment.EmployeeID)
    }
    appointment.EmployeeIDs = ids
}

func (h *AppointmentHandler) appointmentDetails(appointment models.Appointment) notification.AppointmentDetails {
    var client models.Client
    if err := h.db.First(&client, appointment.ClientID).Error; err != nil {
        log.Printf("Error loading client %d for appointment email: %v", appointment.ClientID, err)
    }
    return notification.AppointmentDetails{
        ClientName: client.Name,
        Service:    appointment.Service,
        Date:       appointment.Date,
        Time:       appointment.Time,
        Price:      appointment.Price,
    }
}

func (h *AppointmentHandler) sendConfirmation(appointment models.Appointment) {
    if _, err := h.mailer.SendConfirmation(appointment.ClientEmail, h.appointmentDetails(appointment)); err != nil {
        log.Printf("Error sending confirmation email for appointment %d: %v", appointment.ID, err)
    }
}

func (h *AppointmentHandler) sendCancellation(appointment models.Appointment) {
    if _, err := h.mailer.SendCancellation(appointment.ClientEmail, h.appointmentDetails(appointment)); err != nil {
        log.Printf("Error sending cancellation email for appointment %d: %v", appointment.ID, err)
    }
}

func (h *AppointmentHandler) calendarEvent(appointment models.Appointment) calendar.Event {
    return calendar.Event{
        Summary:     appointment.Service,
        Description: fmt.Sprintf("Cleaning appointment (%s)", appointment.Status),
        Date:        appointment.Date,
        Time:        appointment.Time,
        Attendee:    appointment.ClientEmail,
    }
}

// syncCalendarCreate creates the remote event and stores the returned event
// id back on the appointment row.
func (h *AppointmentHandler) syncCalendarCreate(appointment *models.Appointment) {
    eventID, err := h.calendar.CreateEvent(appointment.UserID, h.calendarEvent(*appointment))
    if err != nil {
        log.Printf("Calendar sync skipped for appointment %d: %v", appointment.ID, err)
        return
    }

    if err := h.db.Model(appointment).Update("google_event_id", eventID).Error; err != nil {
        log.Printf("Error storing calendar event id for appointment %d: %v", appointment.ID, err)
        return
    }
    appointment.GoogleEventID = eventID
}

func (h *AppointmentHandler) syncCalendarUpdate(appointment *models.Appointment) {
    if err := h.calendar.UpdateEvent(appointment.UserID, appointment.GoogleEventID, h.calendarEvent(*appointment)); err != nil {
        log.Printf("Calendar update skipped for appointment %d: %v", appointment.ID, err)
    }
}
