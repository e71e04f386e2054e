package notification

import (
	"strings"
	"testing"
)

func TestSendSimulatesWithoutSMTP(t *testing.T) {
    m := &Mailer{}

    id, err := m.SendConfirmation("client@example.com", AppointmentDetails{
        ClientName: "Dana",
        Service:    "Deep Clean",
        Date:       "2026-09-15",
        Time:       "14:00",
        Price:      120,
    })
    if err != nil {
        t.Fatalf("expected simulated send, got error: %v", err)
    }
    if !strings.HasPrefix(id, "simulated-") {
        t.Errorf("expected simulated message id, got %q", id)
    }
}

func TestEachVariantReturnsDistinctID(t *testing.T) {
    m := &Mailer{}
    d := AppointmentDetails{Service: "Standard Clean", Date: "2026-09-20", Time: "09:30"}

    seen := map[string]bool{}
    sends := []func(string, AppointmentDetails) (string, error){
        m.SendConfirmation, m.SendReminder, m.SendCancellation,
    }
    for _, send := range sends {
        id, err := send("client@example.com", d)
        if err != nil {
            t.Fatalf("unexpected error: %v", err)
        }
        if seen[id] {
            t.Errorf("duplicate message id %q", id)
        }
        seen[id] = true
    }
}
