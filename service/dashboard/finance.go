package dashboard

import (
	"fmt"
	"time"

	"github.com/tidycrew/tidycrew-server/cmd/models"
)

// Period is an inclusive date range over the YYYY-MM-DD strings stored on
// appointments and expenses. String comparison orders the same way the
// dates do.
type Period struct {
    Start string
    End   string
}

// MonthPeriod covers the calendar month containing now.
func MonthPeriod(now time.Time) Period {
    start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
    end := start.AddDate(0, 1, -1)
    return Period{Start: start.Format("2006-01-02"), End: end.Format("2006-01-02")}
}

// YearPeriod covers the calendar year containing now.
func YearPeriod(now time.Time) Period {
    return Period{
        Start: fmt.Sprintf("%04d-01-01", now.Year()),
        End:   fmt.Sprintf("%04d-12-31", now.Year()),
    }
}

func (p Period) Contains(date string) bool {
    return date >= p.Start && date <= p.End
}

// Revenue sums appointment prices in the period. Cancelled appointments
// never count toward revenue.
func Revenue(appointments []models.Appointment, p Period) float64 {
    var total float64
    for _, a := range appointments {
        if a.Status == models.StatusCancelled {
            continue
        }
        if p.Contains(a.Date) {
            total += a.Price
        }
    }
    return total
}

// ExpenseTotal sums expense amounts in the period.
func ExpenseTotal(expenses []models.Expense, p Period) float64 {
    var total float64
    for _, e := range expenses {
        if p.Contains(e.Date) {
            total += e.Amount
        }
    }
    return total
}

// Margin is profit as a fraction of revenue. Zero revenue yields a zero
// margin rather than a division error.
func Margin(revenue, expenses float64) float64 {
    if revenue == 0 {
        return 0
    }
    return (revenue - expenses) / revenue
}

// MonthlyPoint is one month of the trailing trend.
type MonthlyPoint struct {
    Month    string  `json:"month"` // YYYY-MM
    Revenue  float64 `json:"revenue"`
    Expenses float64 `json:"expenses"`
    Profit   float64 `json:"profit"`
}

// MonthlyTrend aggregates the trailing twelve months ending at now, oldest
// month first. Months with no activity still appear, zero-valued.
func MonthlyTrend(appointments []models.Appointment, expenses []models.Expense, now time.Time) []MonthlyPoint {
    firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

    points := make([]MonthlyPoint, 0, 12)
    for i := 11; i >= 0; i-- {
        month := firstOfMonth.AddDate(0, -i, 0)
        p := MonthPeriod(month)
        revenue := Revenue(appointments, p)
        spent := ExpenseTotal(expenses, p)
        points = append(points, MonthlyPoint{
            Month:    month.Format("2006-01"),
            Revenue:  revenue,
            Expenses: spent,
            Profit:   revenue - spent,
        })
    }
    return points
}
