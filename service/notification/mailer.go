package notification

import (
	"fmt"
	"os"
	"strconv"

	"github.com/google/uuid"
	"github.com/tidycrew/tidycrew-server/cmd/utils"
	"gopkg.in/gomail.v2"
)

// AppointmentDetails carries the appointment fields rendered into an email.
type AppointmentDetails struct {
	ClientName string  `json:"client_name"`
	Service    string  `json:"service"`
	Date       string  `json:"date"`
	Time       string  `json:"time"` // 24-hour HH:MM
	Price      float64 `json:"price"`
}

type Mailer struct {
	host string
	port int
	user string
	pass string
	from string
}

func NewMailerFromEnv() *Mailer {
	port, err := strconv.Atoi(os.Getenv("SMTP_PORT"))
	if err != nil || port == 0 {
		port = 587
	}
	user := os.Getenv("SMTP_USER")
	from := os.Getenv("SMTP_FROM")
	if from == "" {
		from = user
	}
	return &Mailer{
		host: os.Getenv("SMTP_HOST"),
		port: port,
		user: user,
		pass: os.Getenv("SMTP_PASS"),
		from: from,
	}
}

// Configured reports whether SMTP credentials are present. Without them,
// sends simulate success so environments with no email provider still save
// appointments normally.
func (m *Mailer) Configured() bool {
	return m.host != "" && m.user != ""
}

// SendConfirmation emails the client that the appointment is booked and
// returns a message id.
func (m *Mailer) SendConfirmation(to string, d AppointmentDetails) (string, error) {
	subject := "Your cleaning appointment is confirmed"
	body := fmt.Sprintf(
		"Hi %s,\n\nYour %s appointment is confirmed for %s at %s.\nPrice: $%.2f\n\nSee you then!",
		clientName(d), d.Service, d.Date, utils.To12Hour(d.Time), d.Price,
	)
	return m.send(to, subject, body)
}

// SendReminder emails the client ahead of an upcoming appointment.
func (m *Mailer) SendReminder(to string, d AppointmentDetails) (string, error) {
	subject := "Reminder: upcoming cleaning appointment"
	body := fmt.Sprintf(
		"Hi %s,\n\nThis is a reminder of your %s appointment on %s at %s.\n\nSee you soon!",
		clientName(d), d.Service, d.Date, utils.To12Hour(d.Time),
	)
	return m.send(to, subject, body)
}

// SendCancellation emails the client that the appointment was cancelled.
func (m *Mailer) SendCancellation(to string, d AppointmentDetails) (string, error) {
	subject := "Your cleaning appointment was cancelled"
	body := fmt.Sprintf(
		"Hi %s,\n\nYour %s appointment on %s at %s has been cancelled.\nPlease get in touch to reschedule.",
		clientName(d), d.Service, d.Date, utils.To12Hour(d.Time),
	)
	return m.send(to, subject, body)
}

func clientName(d AppointmentDetails) string {
	if d.ClientName == "" {
		return "there"
	}
	return d.ClientName
}

func (m *Mailer) send(to, subject, body string) (string, error) {
	messageID := uuid.NewString()
	if !m.Configured() {
		return "simulated-" + messageID, nil
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	d := gomail.NewDialer(m.host, m.port, m.user, m.pass)
	if err := d.DialAndSend(msg); err != nil {
		return "", err
	}
	return messageID, nil
}
