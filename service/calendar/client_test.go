package calendar

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/tidycrew/tidycrew-server/cmd/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func testDB(t *testing.T) *gorm.DB {
    t.Helper()
    db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
    if err != nil {
        t.Fatalf("opening test database: %v", err)
    }
    if err := db.AutoMigrate(&models.User{}); err != nil {
        t.Fatalf("migrating test database: %v", err)
    }
    return db
}

func testClient(db *gorm.DB, tokenURL, eventsURL string) *Client {
    return NewClient(db, Config{
        ClientID:     "test-client",
        ClientSecret: "test-secret",
        TokenURL:     tokenURL,
        EventsURL:    eventsURL,
    })
}

func TestCreateEventRefreshesExpiredToken(t *testing.T) {
    db := testDB(t)

    tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        if err := r.ParseForm(); err != nil {
            t.Errorf("parsing token form: %v", err)
        }
        if grant := r.Form.Get("grant_type"); grant != "refresh_token" {
            t.Errorf("grant_type = %q, want refresh_token", grant)
        }
        json.NewEncoder(w).Encode(TokenResponse{AccessToken: "fresh-token", ExpiresIn: 3600})
    }))
    defer tokenServer.Close()

    eventsServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        if auth := r.Header.Get("Authorization"); auth != "Bearer fresh-token" {
            t.Errorf("event request used %q, want the refreshed token", auth)
        }
        w.WriteHeader(http.StatusOK)
        json.NewEncoder(w).Encode(map[string]string{"id": "evt-123"})
    }))
    defer eventsServer.Close()

    expired := time.Now().Add(-time.Hour)
    db.Create(&models.User{
        Email:                "owner@example.com",
        FullName:             "Owner",
        PasswordHash:         "x",
        GoogleAccessToken:    "stale-token",
        GoogleRefreshToken:   "refresh-abc",
        GoogleTokenExpiresAt: &expired,
    })

    c := testClient(db, tokenServer.URL, eventsServer.URL)

    eventID, err := c.CreateEvent(1, Event{
        Summary: "Deep Clean",
        Date:    "2026-09-20",
        Time:    "14:00",
    })
    if err != nil {
        t.Fatalf("CreateEvent: %v", err)
    }
    if eventID != "evt-123" {
        t.Errorf("event id = %q, want evt-123", eventID)
    }

    // The refreshed token must be persisted before use.
    var user models.User
    db.First(&user, 1)
    if user.GoogleAccessToken != "fresh-token" {
        t.Errorf("stored access token = %q, want fresh-token", user.GoogleAccessToken)
    }
    if user.GoogleTokenExpiresAt == nil || !user.GoogleTokenExpiresAt.After(time.Now()) {
        t.Error("stored expiry should be in the future after refresh")
    }
}

func TestCreateEventNotConnected(t *testing.T) {
    db := testDB(t)
    db.Create(&models.User{Email: "owner@example.com", FullName: "Owner", PasswordHash: "x"})

    c := testClient(db, "http://unused", "http://unused")

    _, err := c.CreateEvent(1, Event{Summary: "Clean", Date: "2026-09-20", Time: "14:00"})
    if !errors.Is(err, ErrNotConnected) {
        t.Errorf("expected ErrNotConnected, got %v", err)
    }
}

func TestCreateEventRefreshFailed(t *testing.T) {
    db := testDB(t)

    tokenServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        http.Error(w, `{"error":"invalid_grant"}`, http.StatusBadRequest)
    }))
    defer tokenServer.Close()

    expired := time.Now().Add(-time.Hour)
    db.Create(&models.User{
        Email:                "owner@example.com",
        FullName:             "Owner",
        PasswordHash:         "x",
        GoogleAccessToken:    "stale-token",
        GoogleRefreshToken:   "revoked",
        GoogleTokenExpiresAt: &expired,
    })

    c := testClient(db, tokenServer.URL, "http://unused")

    _, err := c.CreateEvent(1, Event{Summary: "Clean", Date: "2026-09-20", Time: "14:00"})
    if !errors.Is(err, ErrRefreshFailed) {
        t.Errorf("expected ErrRefreshFailed, got %v", err)
    }
}

func TestCreateEventProviderRejected(t *testing.T) {
    db := testDB(t)

    eventsServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        http.Error(w, "quota exceeded", http.StatusTooManyRequests)
    }))
    defer eventsServer.Close()

    future := time.Now().Add(time.Hour)
    db.Create(&models.User{
        Email:                "owner@example.com",
        FullName:             "Owner",
        PasswordHash:         "x",
        GoogleAccessToken:    "valid-token",
        GoogleTokenExpiresAt: &future,
    })

    c := testClient(db, "http://unused", eventsServer.URL)

    _, err := c.CreateEvent(1, Event{Summary: "Clean", Date: "2026-09-20", Time: "14:00"})
    if !errors.Is(err, ErrProviderRejected) {
        t.Errorf("expected ErrProviderRejected, got %v", err)
    }
}

func TestDeleteEventMissingRemoteIsSuccess(t *testing.T) {
    db := testDB(t)

    eventsServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
        w.WriteHeader(http.StatusNotFound)
    }))
    defer eventsServer.Close()

    future := time.Now().Add(time.Hour)
    db.Create(&models.User{
        Email:                "owner@example.com",
        FullName:             "Owner",
        PasswordHash:         "x",
        GoogleAccessToken:    "valid-token",
        GoogleTokenExpiresAt: &future,
    })

    c := testClient(db, "http://unused", eventsServer.URL)

    if err := c.DeleteEvent(1, "already-gone"); err != nil {
        t.Errorf("deleting a missing remote event should succeed, got %v", err)
    }
}

func TestSaveTokensUpsertsByNumericID(t *testing.T) {
    db := testDB(t)
    db.Create(&models.User{Email: "owner@example.com", FullName: "Owner", PasswordHash: "x"})

    c := testClient(db, "http://unused", "http://unused")

    err := c.SaveTokens("1", &TokenResponse{
        AccessToken:  "access-1",
        RefreshToken: "refresh-1",
        ExpiresIn:    3600,
    })
    if err != nil {
        t.Fatalf("SaveTokens: %v", err)
    }

    var user models.User
    db.First(&user, 1)
    if user.GoogleAccessToken != "access-1" || user.GoogleRefreshToken != "refresh-1" {
        t.Errorf("tokens not stored: %+v", user)
    }
    if user.GoogleConnectedAt == nil {
        t.Error("connected_at should be set")
    }

    // A later exchange without a refresh grant keeps the old refresh token.
    if err := c.SaveTokens("1", &TokenResponse{AccessToken: "access-2", ExpiresIn: 3600}); err != nil {
        t.Fatalf("SaveTokens: %v", err)
    }
    db.First(&user, 1)
    if user.GoogleAccessToken != "access-2" {
        t.Errorf("access token not updated, got %q", user.GoogleAccessToken)
    }
    if user.GoogleRefreshToken != "refresh-1" {
        t.Errorf("refresh token should be kept, got %q", user.GoogleRefreshToken)
    }
}

func TestSaveTokensFallsBackToAuthID(t *testing.T) {
    db := testDB(t)
    db.Create(&models.User{Email: "owner@example.com", FullName: "Owner", PasswordHash: "x", AuthID: "auth|xyz"})

    c := testClient(db, "http://unused", "http://unused")

    if err := c.SaveTokens("auth|xyz", &TokenResponse{AccessToken: "access-1", ExpiresIn: 3600}); err != nil {
        t.Fatalf("SaveTokens: %v", err)
    }

    var user models.User
    db.Where("auth_id = ?", "auth|xyz").First(&user)
    if user.GoogleAccessToken != "access-1" {
        t.Errorf("tokens not stored on auth-id row: %+v", user)
    }
}
