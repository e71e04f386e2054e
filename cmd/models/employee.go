package models


import (
    "gorm.io/gorm"
)

type Employee struct {
    gorm.Model
    UserID uint   `gorm:"column:user_id;not null;index" json:"user_id"`
    Name   string `gorm:"column:name;size:255;not null" json:"name"`
    Email  string `gorm:"column:email;size:255" json:"email"`
    Phone  string `gorm:"column:phone;size:20" json:"phone"`
    Role   string `gorm:"column:role;size:100" json:"role"`
}
