package utils

import (
	"fmt"
	"testing"
)

func TestTo12Hour(t *testing.T) {
    tests := []struct {
        input    string
        expected string
    }{
        {"00:00", "12:00 AM"},
        {"00:30", "12:30 AM"},
        {"01:05", "1:05 AM"},
        {"09:00", "9:00 AM"},
        {"11:59", "11:59 AM"},
        {"12:00", "12:00 PM"},
        {"12:30", "12:30 PM"},
        {"13:00", "1:00 PM"},
        {"18:45", "6:45 PM"},
        {"23:59", "11:59 PM"},
        // Values outside the 24-hour clock pass through untouched.
        {"24:00", "24:00"},
        {"10:60", "10:60"},
        {"not a time", "not a time"},
        {"", ""},
    }

    for _, tt := range tests {
        if got := To12Hour(tt.input); got != tt.expected {
            t.Errorf("To12Hour(%q) = %q, want %q", tt.input, got, tt.expected)
        }
    }
}

func TestTo24Hour(t *testing.T) {
    tests := []struct {
        input    string
        expected string
    }{
        {"12:00 AM", "00:00"},
        {"12:30 AM", "00:30"},
        {"1:05 AM", "01:05"},
        {"11:59 AM", "11:59"},
        {"12:00 PM", "12:00"},
        {"1:00 PM", "13:00"},
        {"6:45 pm", "18:45"},
        {"11:59 PM", "23:59"},
        // Pattern mismatches pass through untouched.
        {"13:00 PM", "13:00 PM"},
        {"0:30 AM", "0:30 AM"},
        {"09:00", "09:00"},
        {"noon", "noon"},
        {"", ""},
    }

    for _, tt := range tests {
        if got := To24Hour(tt.input); got != tt.expected {
            t.Errorf("To24Hour(%q) = %q, want %q", tt.input, got, tt.expected)
        }
    }
}

func TestClockRoundTrip(t *testing.T) {
    for hour := 0; hour < 24; hour++ {
        for _, min := range []int{0, 1, 15, 30, 59} {
            in := fmt.Sprintf("%02d:%02d", hour, min)
            if got := To24Hour(To12Hour(in)); got != in {
                t.Errorf("round trip of %q came back as %q", in, got)
            }
        }
    }
}
