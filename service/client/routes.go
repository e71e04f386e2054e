package client

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/tidycrew/tidycrew-server/cmd/models"
	"github.com/tidycrew/tidycrew-server/cmd/utils"
	"gorm.io/gorm"
)

type ClientHandler struct {
    db *gorm.DB
}

func NewClientHandler(db *gorm.DB) *ClientHandler {
    return &ClientHandler{db: db}
}

func (h *ClientHandler) RegisterRoutes(router *mux.Router) {
    router.HandleFunc("/clients", utils.AuthMiddleware(h.CreateClient)).Methods("POST")
    router.HandleFunc("/clients", utils.AuthMiddleware(h.GetClients)).Methods("GET")
    router.HandleFunc("/clients/{id}", utils.AuthMiddleware(h.GetClient)).Methods("GET")
    router.HandleFunc("/clients/{id}", utils.AuthMiddleware(h.UpdateClient)).Methods("PUT")
    router.HandleFunc("/clients/{id}", utils.AuthMiddleware(h.DeleteClient)).Methods("DELETE")
}

type clientRequest struct {
    Name        string `json:"name"`
    Email       string `json:"email"`
    Phone       string `json:"phone"`
    Address     string `json:"address"`
    ServiceType string `json:"service_type"`
}

func (h *ClientHandler) CreateClient(w http.ResponseWriter, r *http.Request) {
    userID, err := utils.GetUserIDFromContext(r)
    if err != nil {
        http.Error(w, "Unauthorized", http.StatusUnauthorized)
        return
    }

    var req clientRequest
    if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
        http.Error(w, "Invalid request body", http.StatusBadRequest)
        return
    }

    if req.Name == "" {
        http.Error(w, "Client name is required", http.StatusBadRequest)
        return
    }

    client := models.Client{
        UserID:      userID,
        Name:        req.Name,
        Email:       req.Email,
        Phone:       req.Phone,
        Address:     req.Address,
        ServiceType: req.ServiceType,
    }

    if err := h.db.Create(&client).Error; err != nil {
        http.Error(w, "Error creating client", http.StatusInternalServerError)
        return
    }

    w.Header().Set("Content-Type", "application/json")
    w.WriteHeader(http.StatusCreated)
    json.NewEncoder(w).Encode(client)
}

func (h *ClientHandler) GetClients(w http.ResponseWriter, r *http.Request) {
    userID, err := utils.GetUserIDFromContext(r)
    if err != nil {
        http.Error(w, "Unauthorized", http.StatusUnauthorized)
        return
    }

    query := h.db.Where("user_id = ?", userID)
    if search := r.URL.Query().Get("search"); search != "" {
        query = query.Where("name LIKE ?", "%"+search+"%")
    }

    var clients []models.Client
    if err := query.Order("name").Find(&clients).Error; err != nil {
        http.Error(w, "Error retrieving clients", http.StatusInternalServerError)
        return
    }

    w.Header().Set("Content-Type", "application/json")
    json.NewEncoder(w).Encode(clients)
}

func (h *ClientHandler) GetClient(w http.ResponseWriter, r *http.Request) {
    userID, err := utils.GetUserIDFromContext(r)
    if err != nil {
        http.Error(w, "Unauthorized", http.StatusUnauthorized)
        return
    }

    vars := mux.Vars(r)
    clientID, err := strconv.ParseUint(vars["id"], 10, 64)
    if err != nil {
        http.Error(w, "Invalid client ID", http.StatusBadRequest)
        return
    }

    var client models.Client
    if err := h.db.Where("id = ? AND user_id = ?", clientID, userID).First(&client).Error; err != nil {
        http.Error(w, "Client not found", http.StatusNotFound)
        return
    }

    w.Header().Set("Content-Type", "application/json")
    json.NewEncoder(w).Encode(client)
}

func (h *ClientHandler) UpdateClient(w http.ResponseWriter, r *http.Request) {
    userID, err := utils.GetUserIDFromContext(r)
    if err != nil {
        http.Error(w, "Unauthorized", http.StatusUnauthorized)
        return
    }

    vars := mux.Vars(r)
    clientID, err := strconv.ParseUint(vars["id"], 10, 64)
    if err != nil {
        http.Error(w, "Invalid client ID", http.StatusBadRequest)
        return
    }

    var client models.Client
    if err := h.db.Where("id = ? AND user_id = ?", clientID, userID).First(&client).Error; err != nil {
        http.Error(w, "Client not found", http.StatusNotFound)
        return
    }

    var req clientRequest
    if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
        http.Error(w, "Invalid request body", http.StatusBadRequest)
        return
    }

    if req.Name == "" {
        http.Error(w, "Client name is required", http.StatusBadRequest)
        return
    }

    client.Name = req.Name
    client.Email = req.Email
    client.Phone = req.Phone
    client.Address = req.Address
    client.ServiceType = req.ServiceType

    if err := h.db.Save(&client).Error; err != nil {
        http.Error(w, "Error updating client", http.StatusInternalServerError)
        return
    }

    w.Header().Set("Content-Type", "application/json")
    json.NewEncoder(w).Encode(client)
}

func (h *ClientHandler) DeleteClient(w http.ResponseWriter, r *http.Request) {
    userID, err := utils.GetUserIDFromContext(r)
    if err != nil {
        http.Error(w, "Unauthorized", http.StatusUnauthorized)
        return
    }

    vars := mux.Vars(r)
    clientID, err := strconv.ParseUint(vars["id"], 10, 64)
    if err != nil {
        http.Error(w, "Invalid client ID", http.StatusBadRequest)
        return
    }

    var client models.Client
    if err := h.db.Where("id = ? AND user_id = ?", clientID, userID).First(&client).Error; err != nil {
        http.Error(w, "Client not found", http.StatusNotFound)
        return
    }

    if err := h.db.Unscoped().Delete(&client).Error; err != nil {
        http.Error(w, "Error deleting client", http.StatusInternalServerError)
        return
    }

    w.Header().Set("Content-Type", "application/json")
    json.NewEncoder(w).Encode(map[string]string{
        "message": "Client deleted successfully",
    })
}
