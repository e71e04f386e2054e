package expense

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
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTest(t *testing.T) (*gorm.DB, *mux.Router) {
    t.Helper()

    db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
    if err != nil {
        t.Fatalf("opening test database: %v", err)
    }
    if err := db.AutoMigrate(&models.Expense{}); err != nil {
        t.Fatalf("migrating test database: %v", err)
    }

    handler := NewExpenseHandler(db)
    router := mux.NewRouter()
    router.HandleFunc("/expenses", handler.CreateExpense).Methods("POST")
    router.HandleFunc("/expenses", handler.GetExpenses).Methods("GET")
    router.HandleFunc("/expenses/{id}", handler.UpdateExpense).Methods("PUT")
    router.HandleFunc("/expenses/{id}", handler.DeleteExpense).Methods("DELETE")

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

func TestCreateExpenseDefaults(t *testing.T) {
    _, router := setupTest(t)

    rec := doRequest(router, 1, "POST", "/expenses", map[string]interface{}{
        "category": "Supplies",
        "amount":   45.50,
        "date":     "2026-09-05",
    })
    if rec.Code != http.StatusCreated {
        t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
    }

    var created models.Expense
    json.NewDecoder(rec.Body).Decode(&created)
    if created.Type != models.ExpenseTypeVariable {
        t.Errorf("type = %q, want default Variable", created.Type)
    }
    if created.Frequency != "One-time" {
        t.Errorf("frequency = %q, want default One-time", created.Frequency)
    }
}

func TestCreateExpenseRejectsInvalidValues(t *testing.T) {
    db, router := setupTest(t)

    cases := []map[string]interface{}{
        {"category": "Snacks", "amount": 10.0, "date": "2026-09-05"},
        {"category": "Supplies", "amount": 0.0, "date": "2026-09-05"},
        {"category": "Supplies", "amount": 10.0, "date": "2026-09-05", "type": "Elastic"},
        {"category": "Supplies", "amount": 10.0, "date": "2026-09-05", "frequency": "Hourly"},
        {"amount": 10.0, "date": "2026-09-05"},
    }
    for _, body := range cases {
        if rec := doRequest(router, 1, "POST", "/expenses", body); rec.Code != http.StatusBadRequest {
            t.Errorf("body %v: expected 400, got %d", body, rec.Code)
        }
    }

    var count int64
    db.Model(&models.Expense{}).Count(&count)
    if count != 0 {
        t.Errorf("rejected requests must not persist anything, found %d rows", count)
    }
}

func TestGetExpensesFiltersAndTotals(t *testing.T) {
    _, router := setupTest(t)

    doRequest(router, 1, "POST", "/expenses", map[string]interface{}{
        "category": "Supplies", "amount": 40.0, "date": "2026-09-02",
    })
    doRequest(router, 1, "POST", "/expenses", map[string]interface{}{
        "category": "Transport", "amount": 25.0, "date": "2026-09-10",
    })
    doRequest(router, 2, "POST", "/expenses", map[string]interface{}{
        "category": "Supplies", "amount": 999.0, "date": "2026-09-02",
    })

    rec := doRequest(router, 1, "GET", "/expenses", nil)
    var listing struct {
        Expenses []models.Expense `json:"expenses"`
        Total    float64          `json:"total"`
    }
    json.NewDecoder(rec.Body).Decode(&listing)
    if len(listing.Expenses) != 2 || listing.Total != 65 {
        t.Errorf("expected 2 expenses totalling 65, got %d totalling %v", len(listing.Expenses), listing.Total)
    }

    rec = doRequest(router, 1, "GET", "/expenses?category=Transport", nil)
    json.NewDecoder(rec.Body).Decode(&listing)
    if len(listing.Expenses) != 1 || listing.Total != 25 {
        t.Errorf("category filter: expected 1 expense totalling 25, got %d totalling %v",
            len(listing.Expenses), listing.Total)
    }
}
