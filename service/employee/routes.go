package employee

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/tidycrew/tidycrew-server/cmd/models"
	"github.com/tidycrew/tidycrew-server/cmd/utils"
	"gorm.io/gorm"
)

type EmployeeHandler struct {
    db *gorm.DB
}

func NewEmployeeHandler(db *gorm.DB) *EmployeeHandler {
    return &EmployeeHandler{db: db}
}

func (h *EmployeeHandler) RegisterRoutes(router *mux.Router) {
    router.HandleFunc("/employees", utils.AuthMiddleware(h.CreateEmployee)).Methods("POST")
    router.HandleFunc("/employees", utils.AuthMiddleware(h.GetEmployees)).Methods("GET")
    router.HandleFunc("/employees/{id}", utils.AuthMiddleware(h.GetEmployee)).Methods("GET")
    router.HandleFunc("/employees/{id}", utils.AuthMiddleware(h.UpdateEmployee)).Methods("PUT")
    router.HandleFunc("/employees/{id}", utils.AuthMiddleware(h.DeleteEmployee)).Methods("DELETE")
}

type employeeRequest struct {
    Name  string `json:"name"`
    Email string `json:"email"`
    Phone string `json:"phone"`
    Role  string `json:"role"`
}

func (h *EmployeeHandler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
    userID, err := utils.GetUserIDFromContext(r)
    if err != nil {
        http.Error(w, "Unauthorized", http.StatusUnauthorized)
        return
    }

    var req employeeRequest
    if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
        http.Error(w, "Invalid request body", http.StatusBadRequest)
        return
    }

    if req.Name == "" {
        http.Error(w, "Employee name is required", http.StatusBadRequest)
        return
    }

    employee := models.Employee{
        UserID: userID,
        Name:   req.Name,
        Email:  req.Email,
        Phone:  req.Phone,
        Role:   req.Role,
    }

    if err := h.db.Create(&employee).Error; err != nil {
        http.Error(w, "Error creating employee", http.StatusInternalServerError)
        return
    }

    w.Header().Set("Content-Type", "application/json")
    w.WriteHeader(http.StatusCreated)
    json.NewEncoder(w).Encode(employee)
}

func (h *EmployeeHandler) GetEmployees(w http.ResponseWriter, r *http.Request) {
    userID, err := utils.GetUserIDFromContext(r)
    if err != nil {
        http.Error(w, "Unauthorized", http.StatusUnauthorized)
        return
    }

    var employees []models.Employee
    if err := h.db.Where("user_id = ?", userID).Order("name").Find(&employees).Error; err != nil {
        http.Error(w, "Error retrieving employees", http.StatusInternalServerError)
        return
    }

    w.Header().Set("Content-Type", "application/json")
    json.NewEncoder(w).Encode(employees)
}

func (h *EmployeeHandler) GetEmployee(w http.ResponseWriter, r *http.Request) {
    userID, err := utils.GetUserIDFromContext(r)
    if err != nil {
        http.Error(w, "Unauthorized", http.StatusUnauthorized)
        return
    }

    vars := mux.Vars(r)
    employeeID, err := strconv.ParseUint(vars["id"], 10, 64)
    if err != nil {
        http.Error(w, "Invalid employee ID", http.StatusBadRequest)
        return
    }

    var employee models.Employee
    if err := h.db.Where("id = ? AND user_id = ?", employeeID, userID).First(&employee).Error; err != nil {
        http.Error(w, "Employee not found", http.StatusNotFound)
        return
    }

    w.Header().Set("Content-Type", "application/json")
    json.NewEncoder(w).Encode(employee)
}

func (h *EmployeeHandler) UpdateEmployee(w http.ResponseWriter, r *http.Request) {
    userID, err := utils.GetUserIDFromContext(r)
    if err != nil {
        http.Error(w, "Unauthorized", http.StatusUnauthorized)
        return
    }

    vars := mux.Vars(r)
    employeeID, err := strconv.ParseUint(vars["id"], 10, 64)
    if err != nil {
        http.Error(w, "Invalid employee ID", http.StatusBadRequest)
        return
    }

    var employee models.Employee
    if err := h.db.Where("id = ? AND user_id = ?", employeeID, userID).First(&employee).Error; err != nil {
        http.Error(w, "Employee not found", http.StatusNotFound)
        return
    }

    var req employeeRequest
    if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
        http.Error(w, "Invalid request body", http.StatusBadRequest)
        return
    }

    if req.Name == "" {
        http.Error(w, "Employee name is required", http.StatusBadRequest)
        return
    }

    employee.Name = req.Name
    employee.Email = req.Email
    employee.Phone = req.Phone
    employee.Role = req.Role

    if err := h.db.Save(&employee).Error; err != nil {
        http.Error(w, "Error updating employee", http.StatusInternalServerError)
        return
    }

    w.Header().Set("Content-Type", "application/json")
    json.NewEncoder(w).Encode(employee)
}

func (h *EmployeeHandler) DeleteEmployee(w http.ResponseWriter, r *http.Request) {
    userID, err := utils.GetUserIDFromContext(r)
    if err != nil {
        http.Error(w, "Unauthorized", http.StatusUnauthorized)
        return
    }

    vars := mux.Vars(r)
    employeeID, err := strconv.ParseUint(vars["id"], 10, 64)
    if err != nil {
        http.Error(w, "Invalid employee ID", http.StatusBadRequest)
        return
    }

    var employee models.Employee
    if err := h.db.Where("id = ? AND user_id = ?", employeeID, userID).First(&employee).Error; err != nil {
        http.Error(w, "Employee not found", http.StatusNotFound)
        return
    }

    if err := h.db.Unscoped().Delete(&employee).Error; err != nil {
        http.Error(w, "Error deleting employee", http.StatusInternalServerError)
        return
    }

    w.Header().Set("Content-Type", "application/json")
    json.NewEncoder(w).Encode(map[string]string{
        "message": "Employee deleted successfully",
    })
}
