package models

import (
	"time"

	"gorm.io/gorm"
)


type User struct {
    gorm.Model
    FullName     string `gorm:"column:full_name;size:255;not null" json:"full_name"`
    BusinessName string `gorm:"column:business_name;size:255" json:"business_name"`
    Email        string `gorm:"column:email;size:255;not null" json:"email"`
    PasswordHash string `gorm:"column:password_hash;size:255;not null" json:"-"`
    Phone        string `gorm:"column:phone;size:20" json:"phone"`
    // AuthID is the identifier assigned by the hosted auth provider. Older
    // account rows are keyed by it instead of the numeric id, so token
    // upserts accept either column.
    AuthID       string `gorm:"column:auth_id;size:255" json:"auth_id,omitempty"`

    Refresh               string    `gorm:"column:refresh_token;size:255" json:"-"`
    RefreshTokenExpiredAt time.Time `gorm:"column:refresh_token_expired_at" json:"-"`

    GoogleAccessToken    string     `gorm:"column:google_access_token;size:2048" json:"-"`
    GoogleRefreshToken   string     `gorm:"column:google_refresh_token;size:512" json:"-"`
    GoogleTokenExpiresAt *time.Time `gorm:"column:google_token_expires_at" json:"google_token_expires_at,omitempty"`
    GoogleConnectedAt    *time.Time `gorm:"column:google_connected_at" json:"google_connected_at,omitempty"`
}
