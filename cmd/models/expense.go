package models


import (
    "gorm.io/gorm"
)

const (
    ExpenseTypeFixed    = "Fixed"
    ExpenseTypeVariable = "Variable"
)

// ExpenseCategories is the closed set of category labels.
var ExpenseCategories = []string{"Supplies", "Equipment", "Transport", "Payroll", "Other"}

// ExpenseFrequencies describe how often an expense recurs. Frequencies are
// recorded for reporting only; no recurring instances are generated.
var ExpenseFrequencies = []string{"One-time", "Weekly", "Monthly", "Yearly"}

type Expense struct {
    gorm.Model
    UserID      uint    `gorm:"column:user_id;not null;index" json:"user_id"`
    Category    string  `gorm:"column:category;size:50;not null" json:"category"`
    Description string  `gorm:"column:description;size:500" json:"description"`
    Amount      float64 `gorm:"column:amount;not null" json:"amount"`
    Date        string  `gorm:"column:date;size:10;not null" json:"date"`
    Type        string  `gorm:"column:type;size:20;not null;default:'Variable'" json:"type"`
    Frequency   string  `gorm:"column:frequency;size:20;not null;default:'One-time'" json:"frequency"`
}

func ValidExpenseCategory(c string) bool {
    for _, v := range ExpenseCategories {
        if v == c {
            return true
        }
    }
    return false
}

func ValidExpenseFrequency(f string) bool {
    for _, v := range ExpenseFrequencies {
        if v == f {
            return true
        }
    }
    return false
}
