package api

import (
	"log"
	"net/http"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"gorm.io/gorm"

	"github.com/tidycrew/tidycrew-server/service/appointment"
	"github.com/tidycrew/tidycrew-server/service/calendar"
	"github.com/tidycrew/tidycrew-server/service/client"
	"github.com/tidycrew/tidycrew-server/service/dashboard"
	"github.com/tidycrew/tidycrew-server/service/employee"
	"github.com/tidycrew/tidycrew-server/service/expense"
	"github.com/tidycrew/tidycrew-server/service/notification"
	"github.com/tidycrew/tidycrew-server/service/system"
	"github.com/tidycrew/tidycrew-server/service/user"
)

type APIServer struct {
	address string
	db      *gorm.DB
}

func NewApiServer(address string, db *gorm.DB) *APIServer {
	return &APIServer{
		address: address,
		db:      db,
	}
}

func (s *APIServer) Run() error {
	router := mux.NewRouter()
	subrouter := router.PathPrefix("/api/v1").Subrouter()

	mailer := notification.NewMailerFromEnv()
	calendarClient := calendar.NewClient(s.db, calendar.ConfigFromEnv())

	userHandler := user.NewHandler(s.db)
	userHandler.RegisterRoutes(subrouter)

	clientHandler := client.NewClientHandler(s.db)
	clientHandler.RegisterRoutes(subrouter)

	employeeHandler := employee.NewEmployeeHandler(s.db)
	employeeHandler.RegisterRoutes(subrouter)

	appointmentHandler := appointment.NewAppointmentHandler(s.db, mailer, calendarClient)
	appointmentHandler.RegisterRoutes(subrouter)

	expenseHandler := expense.NewExpenseHandler(s.db)
	expenseHandler.RegisterRoutes(subrouter)

	dashboardHandler := dashboard.NewDashboardHandler(s.db)
	dashboardHandler.RegisterRoutes(subrouter)

	notificationHandler := notification.NewNotificationHandler(mailer)
	notificationHandler.RegisterRoutes(subrouter)

	calendarHandler := calendar.NewCalendarHandler(s.db, calendarClient)
	calendarHandler.RegisterRoutes(subrouter)

	systemHandler := system.NewSystemHandler(s.db)
	systemHandler.RegisterRoutes(subrouter)

	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)

	log.Println("Server running at", s.address)
	return http.ListenAndServe(s.address, cors(router))
}
