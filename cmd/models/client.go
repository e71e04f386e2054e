package models


import (
    "gorm.io/gorm"
)

type Client struct {
    gorm.Model
    UserID      uint   `gorm:"column:user_id;not null;index" json:"user_id"`
    Name        string `gorm:"column:name;size:255;not null" json:"name"`
    Email       string `gorm:"column:email;size:255" json:"email"`
    Phone       string `gorm:"column:phone;size:20" json:"phone"`
    Address     string `gorm:"column:address;size:500" json:"address"`
    ServiceType string `gorm:"column:service_type;size:100" json:"service_type"`
}
