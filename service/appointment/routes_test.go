package appointment

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/tidycrew/tidycrew-server/cmd/models"
	"github.com/tidycrew/tidycrew-server/cmd/utils"
	"github.com/tidycrew/tidycrew-server/service/calendar"
	"github.com/tidycrew/tidycrew-server/service/notification"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTest(t *testing.T) (*gorm.DB, *mux.Router) {
    t.Helper()

    db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
    if err != nil {
        t.Fatalf("opening test database: %v", err)
    }

    err = db.AutoMigrate(
        &models.User{},
        &models.Client{},
        &models.Employee{},
        &models.Appointment{},
        &models.AppointmentEmployee{},
    )
    if err != nil {
        t.Fatalf("migrating test database: %v", err)
    }

    db.Create(&models.Client{UserID: 1, Name: "Dana Roberts", Email: "dana@example.com"})
    db.Create(&models.Employee{UserID: 1, Name: "Alice"})
    db.Create(&models.Employee{UserID: 1, Name: "Bob"})
    db.Create(&models.Employee{UserID: 1, Name: "Carol"})

    // Mailer and calendar client are unconfigured, so side effects simulate
    // or no-op; the persistence path under test is unaffected either way.
    handler := NewAppointmentHandler(db, &notification.Mailer{}, calendar.NewClient(db, calendar.Config{}))

    router := mux.NewRouter()
    router.HandleFunc("/appointments", handler.CreateAppointment).Methods("POST")
    router.HandleFunc("/appointments", handler.GetAppointments).Methods("GET")
    router.HandleFunc("/appointments/{id}", handler.GetAppointment).Methods("GET")
    router.HandleFunc("/appointments/{id}", handler.UpdateAppointment).Methods("PUT")
    router.HandleFunc("/appointments/{id}", handler.DeleteAppointment).Methods("DELETE")

    return db, router
}

func doRequest(router *mux.Router, userID uint, method, target string, body interface{}) *httptest.ResponseRecorder {
    var buf bytes.Buffer
    if body != nil {
        json.NewEncoder(&buf).Encode(body)
    }
    req := httptest.NewRequest(method, target, &buf)
    req = req.WithContext(context.WithValue(req.Context(), utils.UserIDKey, userID))
    rec := httptest.NewRecorder()
    router.ServeHTTP(rec, req)
    return rec
}

func validBody() map[string]interface{} {
    return map[string]interface{}{
        "client_id":    1,
        "employee_ids": []uint{1, 2},
        "date":         "2026-09-20",
        "time":         "14:00",
        "status":       "Scheduled",
        "service":      "Deep Clean",
        "price":        150.0,
    }
}

func TestCreateAppointmentAssignsEmployees(t *testing.T) {
    db, router := setupTest(t)

    rec := doRequest(router, 1, "POST", "/appointments", validBody())
    if rec.Code != http.StatusCreated {
        t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
    }

    var created models.Appointment
    if err := json.NewDecoder(rec.Body).Decode(&created); err != nil {
        t.Fatalf("decoding response: %v", err)
    }

    if len(created.EmployeeIDs) != 2 || created.EmployeeIDs[0] != 1 || created.EmployeeIDs[1] != 2 {
        t.Errorf("employee_ids = %v, want [1 2]", created.EmployeeIDs)
    }
    if created.EmployeeID != 1 {
        t.Errorf("legacy employee_id = %d, want first selected employee 1", created.EmployeeID)
    }

    var assignments []models.AppointmentEmployee
    db.Where("appointment_id = ?", created.ID).Order("id").Find(&assignments)
    if len(assignments) != 2 {
        t.Fatalf("expected 2 assignment rows, got %d", len(assignments))
    }
}

func TestCreateAppointmentMissingFields(t *testing.T) {
    db, router := setupTest(t)

    body := validBody()
    delete(body, "service")
    body["employee_ids"] = []uint{}

    rec := doRequest(router, 1, "POST", "/appointments", body)
    if rec.Code != http.StatusBadRequest {
        t.Fatalf("expected 400, got %d", rec.Code)
    }
    if msg := rec.Body.String(); !bytes.Contains([]byte(msg), []byte("employee")) || !bytes.Contains([]byte(msg), []byte("service")) {
        t.Errorf("error should name the missing fields, got %q", msg)
    }

    var count int64
    db.Model(&models.Appointment{}).Count(&count)
    if count != 0 {
        t.Errorf("rejected request must not persist anything, found %d rows", count)
    }
}

func TestCreateAppointmentInvalidStatus(t *testing.T) {
    _, router := setupTest(t)

    body := validBody()
    body["status"] = "Pending"

    rec := doRequest(router, 1, "POST", "/appointments", body)
    if rec.Code != http.StatusBadRequest {
        t.Fatalf("expected 400, got %d", rec.Code)
    }
}

func TestUpdateAppointmentReplacesAssignments(t *testing.T) {
    db, router := setupTest(t)

    rec := doRequest(router, 1, "POST", "/appointments", validBody())
    if rec.Code != http.StatusCreated {
        t.Fatalf("create failed: %d", rec.Code)
    }
    var created models.Appointment
    json.NewDecoder(rec.Body).Decode(&created)

    body := validBody()
    body["employee_ids"] = []uint{3}
    body["status"] = "Confirmed"

    rec = doRequest(router, 1, "PUT", "/appointments/1", body)
    if rec.Code != http.StatusOK {
        t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
    }

    var updated models.Appointment
    json.NewDecoder(rec.Body).Decode(&updated)
    if len(updated.EmployeeIDs) != 1 || updated.EmployeeIDs[0] != 3 {
        t.Errorf("employee_ids = %v, want [3]", updated.EmployeeIDs)
    }
    if updated.EmployeeID != 3 {
        t.Errorf("legacy employee_id = %d, want 3", updated.EmployeeID)
    }
    if updated.Status != models.StatusConfirmed {
        t.Errorf("status = %q, want Confirmed", updated.Status)
    }

    var assignments []models.AppointmentEmployee
    db.Where("appointment_id = ?", created.ID).Find(&assignments)
    if len(assignments) != 1 {
        t.Errorf("expected old assignments replaced, got %d rows", len(assignments))
    }
}

func TestDeleteAppointmentCleansAssignments(t *testing.T) {
    db, router := setupTest(t)

    rec := doRequest(router, 1, "POST", "/appointments", validBody())
    if rec.Code != http.StatusCreated {
        t.Fatalf("create failed: %d", rec.Code)
    }

    rec = doRequest(router, 1, "DELETE", "/appointments/1", nil)
    if rec.Code != http.StatusOK {
        t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
    }

    var appointmentCount, assignmentCount int64
    db.Model(&models.Appointment{}).Count(&appointmentCount)
    db.Model(&models.AppointmentEmployee{}).Count(&assignmentCount)
    if appointmentCount != 0 || assignmentCount != 0 {
        t.Errorf("expected empty tables after delete, got %d appointments and %d assignments",
            appointmentCount, assignmentCount)
    }
}

func TestAppointmentsScopedToUser(t *testing.T) {
    _, router := setupTest(t)

    rec := doRequest(router, 1, "POST", "/appointments", validBody())
    if rec.Code != http.StatusCreated {
        t.Fatalf("create failed: %d", rec.Code)
    }

    // Another account cannot read, update or delete it.
    if rec := doRequest(router, 2, "GET", "/appointments/1", nil); rec.Code != http.StatusNotFound {
        t.Errorf("cross-user get: expected 404, got %d", rec.Code)
    }
    if rec := doRequest(router, 2, "PUT", "/appointments/1", validBody()); rec.Code != http.StatusNotFound {
        t.Errorf("cross-user update: expected 404, got %d", rec.Code)
    }
    if rec := doRequest(router, 2, "DELETE", "/appointments/1", nil); rec.Code != http.StatusNotFound {
        t.Errorf("cross-user delete: expected 404, got %d", rec.Code)
    }

    rec = doRequest(router, 2, "GET", "/appointments", nil)
    var listing struct {
        Appointments []models.Appointment `json:"appointments"`
        Total        int64                `json:"total"`
    }
    json.NewDecoder(rec.Body).Decode(&listing)
    if listing.Total != 0 || len(listing.Appointments) != 0 {
        t.Errorf("cross-user list should be empty, got %d", listing.Total)
    }
}

func TestGetAppointmentsFiltersByStatus(t *testing.T) {
    _, router := setupTest(t)

    first := validBody()
    doRequest(router, 1, "POST", "/appointments", first)

    second := validBody()
    second["status"] = "Completed"
    second["date"] = "2026-09-10"
    doRequest(router, 1, "POST", "/appointments", second)

    rec := doRequest(router, 1, "GET", "/appointments?status=Completed", nil)
    var listing struct {
        Appointments []models.Appointment `json:"appointments"`
        Total        int64                `json:"total"`
    }
    json.NewDecoder(rec.Body).Decode(&listing)
    if listing.Total != 1 {
        t.Fatalf("expected 1 completed appointment, got %d", listing.Total)
    }
    if listing.Appointments[0].Status != models.StatusCompleted {
        t.Errorf("status = %q, want Completed", listing.Appointments[0].Status)
    }
}
