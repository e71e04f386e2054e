package user

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/gorilla/mux"
	"github.com/tidycrew/tidycrew-server/cmd/models"
	"github.com/tidycrew/tidycrew-server/cmd/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type Handler struct {
    db *gorm.DB
}

func NewHandler(db *gorm.DB) *Handler {
    return &Handler{db: db}
}

func (h *Handler) RegisterRoutes(router *mux.Router) {
    router.HandleFunc("/users/register", h.Register).Methods("POST")
    router.HandleFunc("/users/login", h.Login).Methods("POST")
    router.HandleFunc("/users/refresh", h.RefreshToken).Methods("POST")
    router.HandleFunc("/users/me", utils.AuthMiddleware(h.GetAccount)).Methods("GET")
    router.HandleFunc("/users/me", utils.AuthMiddleware(h.UpdateAccount)).Methods("PUT")
}

// jwtSecret is read at call time so godotenv has loaded before the first
// token is signed.
func jwtSecret() []byte {
    return []byte(os.Getenv("SECRET_KEY"))
}

func tokenExpirationMinutes() int {
    minutes, err := strconv.Atoi(os.Getenv("TOKEN_EXPIRATION_MINUTES"))
    if err != nil || minutes <= 0 {
        return 60
    }
    return minutes
}

func generateJWT(userID uint) (string, error) {
    claims := jwt.RegisteredClaims{
        Subject:   strconv.FormatUint(uint64(userID), 10),
        IssuedAt:  jwt.NewNumericDate(time.Now()),
        ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Duration(tokenExpirationMinutes()) * time.Minute)),
    }
    token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
    return token.SignedString(jwtSecret())
}

func generateRefreshToken() (string, error) {
    buf := make([]byte, 32)
    if _, err := rand.Read(buf); err != nil {
        return "", err
    }
    return hex.EncodeToString(buf), nil
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
    var req struct {
        FullName     string `json:"full_name"`
        BusinessName string `json:"business_name"`
        Email        string `json:"email"`
        Password     string `json:"password"`
        Phone        string `json:"phone"`
    }
    if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
        http.Error(w, "Invalid request body", http.StatusBadRequest)
        return
    }

    if req.FullName == "" || req.Email == "" || req.Password == "" {
        http.Error(w, "Full name, email and password are required", http.StatusBadRequest)
        return
    }

    var existing models.User
    if err := h.db.Where("email = ?", req.Email).First(&existing).Error; err == nil {
        http.Error(w, "Email already registered", http.StatusConflict)
        return
    }
    if req.Phone != "" {
        if err := h.db.Where("phone = ?", req.Phone).First(&existing).Error; err == nil {
            http.Error(w, "Phone number already registered", http.StatusConflict)
            return
        }
    }

    hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
    if err != nil {
        http.Error(w, "Error creating account", http.StatusInternalServerError)
        return
    }

    user := models.User{
        FullName:     req.FullName,
        BusinessName: req.BusinessName,
        Email:        req.Email,
        PasswordHash: string(hashed),
        Phone:        req.Phone,
    }

    if err := h.db.Create(&user).Error; err != nil {
        http.Error(w, "Error creating account", http.StatusInternalServerError)
        return
    }

    w.Header().Set("Content-Type", "application/json")
    w.WriteHeader(http.StatusCreated)
    json.NewEncoder(w).Encode(user)
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
    var req struct {
        Email    string `json:"email"`
        Password string `json:"password"`
    }
    if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
        http.Error(w, "Invalid request body", http.StatusBadRequest)
        return
    }

    var user models.User
    if err := h.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
        http.Error(w, "Invalid email or password", http.StatusUnauthorized)
        return
    }

    if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
        http.Error(w, "Invalid email or password", http.StatusUnauthorized)
        return
    }

    accessToken, err := generateJWT(user.ID)
    if err != nil {
        http.Error(w, "Error generating token", http.StatusInternalServerError)
        return
    }

    refreshToken, err := generateRefreshToken()
    if err != nil {
        http.Error(w, "Error generating token", http.StatusInternalServerError)
        return
    }

    user.Refresh = refreshToken
    user.RefreshTokenExpiredAt = time.Now().Add(7 * 24 * time.Hour)
    if err := h.db.Save(&user).Error; err != nil {
        http.Error(w, "Error saving session", http.StatusInternalServerError)
        return
    }

    w.Header().Set("Content-Type", "application/json")
    json.NewEncoder(w).Encode(map[string]interface{}{
        "access_token":  accessToken,
        "refresh_token": refreshToken,
        "user":          user,
    })
}

// RefreshToken exchanges a stored refresh token for a new access token and
// rotates the refresh token.
func (h *Handler) RefreshToken(w http.ResponseWriter, r *http.Request) {
    var req struct {
        RefreshToken string `json:"refresh_token"`
    }
    if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
        http.Error(w, "Refresh token is required", http.StatusBadRequest)
        return
    }

    var user models.User
    if err := h.db.Where("refresh_token = ?", req.RefreshToken).First(&user).Error; err != nil {
        http.Error(w, "Invalid refresh token", http.StatusUnauthorized)
        return
    }

    if time.Now().After(user.RefreshTokenExpiredAt) {
        http.Error(w, "Refresh token expired", http.StatusUnauthorized)
        return
    }

    accessToken, err := generateJWT(user.ID)
    if err != nil {
        http.Error(w, "Error generating token", http.StatusInternalServerError)
        return
    }

    refreshToken, err := generateRefreshToken()
    if err != nil {
        http.Error(w, "Error generating token", http.StatusInternalServerError)
        return
    }

    user.Refresh = refreshToken
    user.RefreshTokenExpiredAt = time.Now().Add(7 * 24 * time.Hour)
    if err := h.db.Save(&user).Error; err != nil {
        http.Error(w, "Error saving session", http.StatusInternalServerError)
        return
    }

    w.Header().Set("Content-Type", "application/json")
    json.NewEncoder(w).Encode(map[string]string{
        "access_token":  accessToken,
        "refresh_token": refreshToken,
    })
}

func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
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
    json.NewEncoder(w).Encode(user)
}

func (h *Handler) UpdateAccount(w http.ResponseWriter, r *http.Request) {
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

    var req struct {
        FullName     string `json:"full_name"`
        BusinessName string `json:"business_name"`
        Phone        string `json:"phone"`
        Password     string `json:"password"`
    }
    if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
        http.Error(w, "Invalid request body", http.StatusBadRequest)
        return
    }

    if req.FullName != "" {
        user.FullName = req.FullName
    }
    if req.BusinessName != "" {
        user.BusinessName = req.BusinessName
    }
    if req.Phone != "" {
        user.Phone = req.Phone
    }
    if req.Password != "" {
        hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
        if err != nil {
            http.Error(w, "Error updating account", http.StatusInternalServerError)
            return
        }
        user.PasswordHash = string(hashed)
    }

    if err := h.db.Save(&user).Error; err != nil {
        http.Error(w, "Error updating account", http.StatusInternalServerError)
        return
    }

    w.Header().Set("Content-Type", "application/json")
    json.NewEncoder(w).Encode(user)
}
