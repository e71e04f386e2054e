package calendar

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/tidycrew/tidycrew-server/cmd/models"
	"gorm.io/gorm"
)

// Failure taxonomy for calendar sync. Callers in the appointment flow treat
// all of these as non-fatal: the appointment persists without an event id.
var (
	ErrNotConnected     = errors.New("calendar not connected")
	ErrRefreshFailed    = errors.New("calendar token refresh failed")
	ErrProviderRejected = errors.New("calendar provider rejected the request")
)

const (
	defaultAuthURL   = "https://accounts.google.com/o/oauth2/v2/auth"
	defaultTokenURL  = "https://oauth2.googleapis.com/token"
	defaultEventsURL = "https://www.googleapis.com/calendar/v3/calendars/primary/events"

	calendarScope = "https://www.googleapis.com/auth/calendar.events"

	defaultEventMinutes = 60
)

type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	// TZOffset is the UTC offset appended to event timestamps, e.g. "-05:00".
	TZOffset  string
	AuthURL   string
	TokenURL  string
	EventsURL string
}

func ConfigFromEnv() Config {
	return Config{
		ClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		ClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
		RedirectURL:  os.Getenv("GOOGLE_REDIRECT_URL"),
		TZOffset:     os.Getenv("CALENDAR_TZ_OFFSET"),
	}
}

// Client talks to the calendar provider's REST API on behalf of one account
// row, refreshing the stored access token when it has expired.
type Client struct {
	db         *gorm.DB
	config     Config
	httpClient *http.Client
}

func NewClient(db *gorm.DB, config Config) *Client {
	if config.AuthURL == "" {
		config.AuthURL = defaultAuthURL
	}
	if config.TokenURL == "" {
		config.TokenURL = defaultTokenURL
	}
	if config.EventsURL == "" {
		config.EventsURL = defaultEventsURL
	}
	if config.TZOffset == "" {
		config.TZOffset = "+00:00"
	}
	return &Client{
		db:         db,
		config:     config,
		httpClient: &http.Client{},
	}
}

func (c *Client) Configured() bool {
	return c.config.ClientID != "" && c.config.ClientSecret != ""
}

// Event holds the appointment fields that end up on the remote calendar.
type Event struct {
	Summary     string
	Description string
	Date        string // YYYY-MM-DD
	Time        string // 24-hour HH:MM
	Minutes     int    // event length; defaults to one hour
	Attendee    string // client email, optional
}

// TokenResponse is the provider's token-endpoint payload, for both the
// authorization-code and refresh-token grants.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	TokenType    string `json:"token_type"`
}

// AuthCodeURL builds the provider consent URL. The state parameter carries
// the owning-user id back through the OAuth redirect.
func (c *Client) AuthCodeURL(state string) string {
	params := url.Values{}
	params.Set("client_id", c.config.ClientID)
	params.Set("redirect_uri", c.config.RedirectURL)
	params.Set("response_type", "code")
	params.Set("scope", calendarScope)
	params.Set("access_type", "offline")
	params.Set("prompt", "consent")
	params.Set("state", state)
	return c.config.AuthURL + "?" + params.Encode()
}

// ExchangeCode trades an authorization code for tokens.
func (c *Client) ExchangeCode(code string) (*TokenResponse, error) {
	form := url.Values{}
	form.Set("client_id", c.config.ClientID)
	form.Set("client_secret", c.config.ClientSecret)
	form.Set("code", code)
	form.Set("grant_type", "authorization_code")
	form.Set("redirect_uri", c.config.RedirectURL)
	return c.postTokenForm(form)
}

func (c *Client) refreshAccessToken(refreshToken string) (*TokenResponse, error) {
	form := url.Values{}
	form.Set("client_id", c.config.ClientID)
	form.Set("client_secret", c.config.ClientSecret)
	form.Set("refresh_token", refreshToken)
	form.Set("grant_type", "refresh_token")

	tok, err := c.postTokenForm(form)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRefreshFailed, err)
	}
	return tok, nil
}

func (c *Client) postTokenForm(form url.Values) (*TokenResponse, error) {
	resp, err := c.httpClient.Post(c.config.TokenURL, "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("token endpoint returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var tok TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tok); err != nil {
		return nil, err
	}
	if tok.AccessToken == "" {
		return nil, errors.New("token endpoint returned no access token")
	}
	return &tok, nil
}

// SaveTokens upserts tokens onto the account row identified by userKey.
// The key matches either the numeric id or the auth provider id; when
// neither matches, a row is created keyed by the auth id.
func (c *Client) SaveTokens(userKey string, tok *TokenResponse) error {
	now := time.Now()
	expiry := now.Add(time.Duration(tok.ExpiresIn) * time.Second)

	updates := map[string]interface{}{
		"google_access_token":     tok.AccessToken,
		"google_token_expires_at": expiry,
		"google_connected_at":     now,
	}
	// A refresh grant is only issued on first consent; keep the old one.
	if tok.RefreshToken != "" {
		updates["google_refresh_token"] = tok.RefreshToken
	}

	if _, err := strconv.ParseUint(userKey, 10, 64); err == nil {
		result := c.db.Model(&models.User{}).Where("id = ?", userKey).Updates(updates)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected > 0 {
			return nil
		}
	}

	result := c.db.Model(&models.User{}).Where("auth_id = ?", userKey).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	user := models.User{
		AuthID:               userKey,
		GoogleAccessToken:    tok.AccessToken,
		GoogleRefreshToken:   tok.RefreshToken,
		GoogleTokenExpiresAt: &expiry,
		GoogleConnectedAt:    &now,
	}
	return c.db.Create(&user).Error
}

// ensureAccessToken returns a usable access token for the account, running
// the refresh grant and persisting the result first when the stored token
// has expired.
func (c *Client) ensureAccessToken(user *models.User) (string, error) {
	if user.GoogleAccessToken == "" {
		return "", ErrNotConnected
	}
	if user.GoogleTokenExpiresAt == nil || user.GoogleTokenExpiresAt.After(time.Now()) {
		return user.GoogleAccessToken, nil
	}
	if user.GoogleRefreshToken == "" {
		return "", ErrNotConnected
	}

	tok, err := c.refreshAccessToken(user.GoogleRefreshToken)
	if err != nil {
		return "", err
	}

	expiry := time.Now().Add(time.Duration(tok.ExpiresIn) * time.Second)
	err = c.db.Model(&models.User{}).Where("id = ?", user.ID).Updates(map[string]interface{}{
		"google_access_token":     tok.AccessToken,
		"google_token_expires_at": expiry,
	}).Error
	if err != nil {
		return "", fmt.Errorf("persisting refreshed token: %w", err)
	}

	user.GoogleAccessToken = tok.AccessToken
	user.GoogleTokenExpiresAt = &expiry
	return tok.AccessToken, nil
}

// CreateEvent creates a remote calendar event for the appointment and
// returns the provider's event id.
func (c *Client) CreateEvent(userID uint, ev Event) (string, error) {
	token, err := c.tokenForUser(userID)
	if err != nil {
		return "", err
	}

	resp, err := c.doEventRequest("POST", c.config.EventsURL, token, c.eventBody(ev))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if err := checkEventStatus(resp); err != nil {
		return "", err
	}

	var created struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return "", fmt.Errorf("%w: decoding event response: %v", ErrProviderRejected, err)
	}
	return created.ID, nil
}

// UpdateEvent overwrites the remote event with the appointment's current fields.
func (c *Client) UpdateEvent(userID uint, eventID string, ev Event) error {
	token, err := c.tokenForUser(userID)
	if err != nil {
		return err
	}

	resp, err := c.doEventRequest("PUT", c.config.EventsURL+"/"+url.PathEscape(eventID), token, c.eventBody(ev))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return checkEventStatus(resp)
}

// DeleteEvent removes the remote event. A missing event is not an error.
func (c *Client) DeleteEvent(userID uint, eventID string) error {
	token, err := c.tokenForUser(userID)
	if err != nil {
		return err
	}

	resp, err := c.doEventRequest("DELETE", c.config.EventsURL+"/"+url.PathEscape(eventID), token, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone {
		return nil
	}
	return checkEventStatus(resp)
}

func (c *Client) tokenForUser(userID uint) (string, error) {
	if !c.Configured() {
		return "", ErrNotConnected
	}
	var user models.User
	if err := c.db.First(&user, userID).Error; err != nil {
		return "", ErrNotConnected
	}
	return c.ensureAccessToken(&user)
}

func (c *Client) doEventRequest(method, endpoint, token string, body map[string]interface{}) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrProviderRejected, err)
		}
		reader = bytes.NewBuffer(payload)
	}

	req, err := http.NewRequest(method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderRejected, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderRejected, err)
	}
	return resp, nil
}

func checkEventStatus(resp *http.Response) error {
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return ErrNotConnected
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("%w: status %d: %s", ErrProviderRejected, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}

func (c *Client) eventBody(ev Event) map[string]interface{} {
	minutes := ev.Minutes
	if minutes <= 0 {
		minutes = defaultEventMinutes
	}

	start := ev.Date + "T" + ev.Time + ":00" + c.config.TZOffset
	end := start
	if t, err := time.Parse("15:04", ev.Time); err == nil {
		end = ev.Date + "T" + t.Add(time.Duration(minutes)*time.Minute).Format("15:04") + ":00" + c.config.TZOffset
	}

	body := map[string]interface{}{
		"summary":     ev.Summary,
		"description": ev.Description,
		"start":       map[string]string{"dateTime": start},
		"end":         map[string]string{"dateTime": end},
	}
	if ev.Attendee != "" {
		body["attendees"] = []map[string]string{{"email": ev.Attendee}}
	}
	return body
}
