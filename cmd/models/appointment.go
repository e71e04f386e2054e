package models


import (
    "gorm.io/gorm"
)

const (
    StatusScheduled = "Scheduled"
    StatusConfirmed = "Confirmed"
    StatusCompleted = "Completed"
    StatusCancelled = "Cancelled"
)

// ValidStatus reports whether s is one of the four appointment statuses.
func ValidStatus(s string) bool {
    switch s {
    case StatusScheduled, StatusConfirmed, StatusCompleted, StatusCancelled:
        return true
    }
    return false
}

type Appointment struct {
    gorm.Model
    UserID   uint `gorm:"column:user_id;not null;index" json:"user_id"`
    ClientID uint `gorm:"column:client_id;not null" json:"client_id"`
    // EmployeeID mirrors the first assigned employee for older readers of
    // this table; the authoritative set lives in appointment_employees.
    EmployeeID    uint    `gorm:"column:employee_id" json:"employee_id"`
    Date          string  `gorm:"column:date;size:10;not null" json:"date"`
    Time          string  `gorm:"column:time;size:5;not null" json:"time"`
    Status        string  `gorm:"column:status;size:20;not null;default:'Scheduled'" json:"status"`
    Service       string  `gorm:"column:service;size:255;not null" json:"service"`
    Price         float64 `gorm:"column:price;default:0" json:"price"`
    ClientEmail   string  `gorm:"column:client_email;size:255" json:"client_email,omitempty"`
    GoogleEventID string  `gorm:"column:google_event_id;size:255" json:"google_event_id,omitempty"`

    Client   *Client   `gorm:"foreignKey:ClientID" json:"client,omitempty"`
    Employee *Employee `gorm:"foreignKey:EmployeeID" json:"employee,omitempty"`

    // Resolved from appointment_employees on read; never persisted directly.
    EmployeeIDs []uint `gorm:"-" json:"employee_ids"`
}

// AppointmentEmployee is one assignment row linking an appointment to an
// employee. The full set is replaced on every appointment save.
type AppointmentEmployee struct {
    ID            uint `gorm:"primaryKey" json:"id"`
    AppointmentID uint `gorm:"column:appointment_id;not null;index" json:"appointment_id"`
    EmployeeID    uint `gorm:"column:employee_id;not null" json:"employee_id"`
}

func (AppointmentEmployee) TableName() string {
    return "appointment_employees"
}
