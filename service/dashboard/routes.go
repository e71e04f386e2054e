package dashboard

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/tidycrew/tidycrew-server/cmd/models"
	"github.com/tidycrew/tidycrew-server/cmd/utils"
	"gorm.io/gorm"
)

type DashboardHandler struct {
    db *gorm.DB
}

func NewDashboardHandler(db *gorm.DB) *DashboardHandler {
    return &DashboardHandler{db: db}
}

func (h *DashboardHandler) RegisterRoutes(router *mux.Router) {
    router.HandleFunc("/dashboard/summary", utils.AuthMiddleware(h.GetSummary)).Methods("GET")
    router.HandleFunc("/dashboard/trend", utils.AuthMiddleware(h.GetTrend)).Methods("GET")
}

// GetSummary reports revenue, expenses, profit and margin for the current
// month or year, plus headline counts for the account.
func (h *DashboardHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
    userID, err := utils.GetUserIDFromContext(r)
    if err != nil {
        http.Error(w, "Unauthorized", http.StatusUnauthorized)
        return
    }

    now := time.Now()
    var period Period
    switch r.URL.Query().Get("period") {
    case "", "month":
        period = MonthPeriod(now)
    case "year":
        period = YearPeriod(now)
    default:
        http.Error(w, "Invalid period; expected month or year", http.StatusBadRequest)
        return
    }

    appointments, expenses, err := h.loadFinancials(userID)
    if err != nil {
        http.Error(w, "Error retrieving dashboard data", http.StatusInternalServerError)
        return
    }

    revenue := Revenue(appointments, period)
    spent := ExpenseTotal(expenses, period)

    var clientCount, employeeCount, upcomingCount int64
    h.db.Model(&models.Client{}).Where("user_id = ?", userID).Count(&clientCount)
    h.db.Model(&models.Employee{}).Where("user_id = ?", userID).Count(&employeeCount)
    h.db.Model(&models.Appointment{}).
        Where("user_id = ? AND date >= ? AND status != ?", userID, now.Format("2006-01-02"), models.StatusCancelled).
        Count(&upcomingCount)

    w.Header().Set("Content-Type", "application/json")
    json.NewEncoder(w).Encode(map[string]interface{}{
        "period_start":          period.Start,
        "period_end":            period.End,
        "revenue":               revenue,
        "expenses":              spent,
        "profit":                revenue - spent,
        "margin":                Margin(revenue, spent),
        "client_count":          clientCount,
        "employee_count":        employeeCount,
        "upcoming_appointments": upcomingCount,
    })
}

// GetTrend returns the trailing twelve months of revenue, expenses and
// profit, oldest month first.
func (h *DashboardHandler) GetTrend(w http.ResponseWriter, r *http.Request) {
    userID, err := utils.GetUserIDFromContext(r)
    if err != nil {
        http.Error(w, "Unauthorized", http.StatusUnauthorized)
        return
    }

    appointments, expenses, err := h.loadFinancials(userID)
    if err != nil {
        http.Error(w, "Error retrieving dashboard data", http.StatusInternalServerError)
        return
    }

    w.Header().Set("Content-Type", "application/json")
    json.NewEncoder(w).Encode(map[string]interface{}{
        "trend": MonthlyTrend(appointments, expenses, time.Now()),
    })
}

func (h *DashboardHandler) loadFinancials(userID uint) ([]models.Appointment, []models.Expense, error) {
    var appointments []models.Appointment
    if err := h.db.Where("user_id = ?", userID).Find(&appointments).Error; err != nil {
        return nil, nil, err
    }
    var expenses []models.Expense
    if err := h.db.Where("user_id = ?", userID).Find(&expenses).Error; err != nil {
        return nil, nil, err
    }
    return appointments, expenses, nil
}
