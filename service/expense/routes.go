package expense

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/tidycrew/tidycrew-server/cmd/models"
	"github.com/tidycrew/tidycrew-server/cmd/utils"
	"gorm.io/gorm"
)

type ExpenseHandler struct {
    db *gorm.DB
}

func NewExpenseHandler(db *gorm.DB) *ExpenseHandler {
    return &ExpenseHandler{db: db}
}

func (h *ExpenseHandler) RegisterRoutes(router *mux.Router) {
    router.HandleFunc("/expenses", utils.AuthMiddleware(h.CreateExpense)).Methods("POST")
    router.HandleFunc("/expenses", utils.AuthMiddleware(h.GetExpenses)).Methods("GET")
    router.HandleFunc("/expenses/{id}", utils.AuthMiddleware(h.UpdateExpense)).Methods("PUT")
    router.HandleFunc("/expenses/{id}", utils.AuthMiddleware(h.DeleteExpense)).Methods("DELETE")
}

type expenseRequest struct {
    Category    string  `json:"category"`
    Description string  `json:"description"`
    Amount      float64 `json:"amount"`
    Date        string  `json:"date"`
    Type        string  `json:"type"`
    Frequency   string  `json:"frequency"`
}

// validate normalizes optional fields and rejects values outside the closed
// category, type and frequency sets.
func (req *expenseRequest) validate() string {
    if req.Category == "" || req.Date == "" {
        return "Category and date are required"
    }
    if req.Amount <= 0 {
        return "Amount must be greater than zero"
    }
    if !models.ValidExpenseCategory(req.Category) {
        return "Invalid expense category"
    }
    if req.Type == "" {
        req.Type = models.ExpenseTypeVariable
    }
    if req.Type != models.ExpenseTypeFixed && req.Type != models.ExpenseTypeVariable {
        return "Invalid expense type"
    }
    if req.Frequency == "" {
        req.Frequency = "One-time"
    }
    if !models.ValidExpenseFrequency(req.Frequency) {
        return "Invalid expense frequency"
    }
    return ""
}

func (h *ExpenseHandler) CreateExpense(w http.ResponseWriter, r *http.Request) {
    userID, err := utils.GetUserIDFromContext(r)
    if err != nil {
        http.Error(w, "Unauthorized", http.StatusUnauthorized)
        return
    }

    var req expenseRequest
    if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
        http.Error(w, "Invalid request body", http.StatusBadRequest)
        return
    }

    if msg := req.validate(); msg != "" {
        http.Error(w, msg, http.StatusBadRequest)
        return
    }

    expense := models.Expense{
        UserID:      userID,
        Category:    req.Category,
        Description: req.Description,
        Amount:      req.Amount,
        Date:        req.Date,
        Type:        req.Type,
        Frequency:   req.Frequency,
    }

    if err := h.db.Create(&expense).Error; err != nil {
        http.Error(w, "Error creating expense", http.StatusInternalServerError)
        return
    }

    w.Header().Set("Content-Type", "application/json")
    w.WriteHeader(http.StatusCreated)
    json.NewEncoder(w).Encode(expense)
}

func (h *ExpenseHandler) GetExpenses(w http.ResponseWriter, r *http.Request) {
    userID, err := utils.GetUserIDFromContext(r)
    if err != nil {
        http.Error(w, "Unauthorized", http.StatusUnauthorized)
        return
    }

    query := h.db.Where("user_id = ?", userID)

    if category := r.URL.Query().Get("category"); category != "" {
        query = query.Where("category = ?", category)
    }
    if expenseType := r.URL.Query().Get("type"); expenseType != "" {
        query = query.Where("type = ?", expenseType)
    }
    if startDate := r.URL.Query().Get("start_date"); startDate != "" {
        query = query.Where("date >= ?", startDate)
    }
    if endDate := r.URL.Query().Get("end_date"); endDate != "" {
        query = query.Where("date <= ?", endDate)
    }

    var expenses []models.Expense
    if err := query.Order("date DESC").Find(&expenses).Error; err != nil {
        http.Error(w, "Error retrieving expenses", http.StatusInternalServerError)
        return
    }

    var total float64
    for _, expense := range expenses {
        total += expense.Amount
    }

    w.Header().Set("Content-Type", "application/json")
    json.NewEncoder(w).Encode(map[string]interface{}{
        "expenses": expenses,
        "total":    total,
    })
}

func (h *ExpenseHandler) UpdateExpense(w http.ResponseWriter, r *http.Request) {
    userID, err := utils.GetUserIDFromContext(r)
    if err != nil {
        http.Error(w, "Unauthorized", http.StatusUnauthorized)
        return
    }

    vars := mux.Vars(r)
    expenseID, err := strconv.ParseUint(vars["id"], 10, 64)
    if err != nil {
        http.Error(w, "Invalid expense ID", http.StatusBadRequest)
        return
    }

    var expense models.Expense
    if err := h.db.Where("id = ? AND user_id = ?", expenseID, userID).First(&expense).Error; err != nil {
        http.Error(w, "Expense not found", http.StatusNotFound)
        return
    }

    var req expenseRequest
    if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
        http.Error(w, "Invalid request body", http.StatusBadRequest)
        return
    }

    if msg := req.validate(); msg != "" {
        http.Error(w, msg, http.StatusBadRequest)
        return
    }

    expense.Category = req.Category
    expense.Description = req.Description
    expense.Amount = req.Amount
    expense.Date = req.Date
    expense.Type = req.Type
    expense.Frequency = req.Frequency

    if err := h.db.Save(&expense).Error; err != nil {
        http.Error(w, "Error updating expense", http.StatusInternalServerError)
        return
    }

    w.Header().Set("Content-Type", "application/json")
    json.NewEncoder(w).Encode(expense)
}

func (h *ExpenseHandler) DeleteExpense(w http.ResponseWriter, r *http.Request) {
    userID, err := utils.GetUserIDFromContext(r)
    if err != nil {
        http.Error(w, "Unauthorized", http.StatusUnauthorized)
        return
    }

    vars := mux.Vars(r)
    expenseID, err := strconv.ParseUint(vars["id"], 10, 64)
    if err != nil {
        http.Error(w, "Invalid expense ID", http.StatusBadRequest)
        return
    }

    var expense models.Expense
    if err := h.db.Where("id = ? AND user_id = ?", expenseID, userID).First(&expense).Error; err != nil {
        http.Error(w, "Expense not found", http.StatusNotFound)
        return
    }

    if err := h.db.Unscoped().Delete(&expense).Error; err != nil {
        http.Error(w, "Error deleting expense", http.StatusInternalServerError)
        return
    }

    w.Header().Set("Content-Type", "application/json")
    json.NewEncoder(w).Encode(map[string]string{
        "message": "Expense deleted successfully",
    })
}
