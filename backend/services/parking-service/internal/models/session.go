package models

import "time"

// TimestampLayout is the DD-MM-YYYY HH:MM:SS format session timestamps are stored in.
const TimestampLayout = "02-01-2006 15:04:05"

// PaymentStatus of a closed session.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "Pending"
	PaymentPartial PaymentStatus = "Partial"
	PaymentPaid    PaymentStatus = "Paid"
)

// ParkingSession as stored in a lot's sessions document.
type ParkingSession struct {
	LicensePlate    string        `json:"licenseplate"`
	Started         string        `json:"started"`
	Stopped         *string       `json:"stopped"`
	User            string        `json:"user"`
	DurationMinutes *int          `json:"duration_minutes,omitempty"`
	Cost            *float64      `json:"cost,omitempty"`
	PaymentStatus   PaymentStatus `json:"payment_status,omitempty"`
	Payed           float64       `json:"payed,omitempty"`
}

// IsOpen reports whether the session has not been stopped yet.
func (s ParkingSession) IsOpen() bool {
	return s.Stopped == nil || *s.Stopped == ""
}

// StartedAt parses the start timestamp.
func (s ParkingSession) StartedAt() (time.Time, error) {
	return ParseTimestamp(s.Started)
}

// StoppedAt parses the stop timestamp; ok is false while the session is open.
func (s ParkingSession) StoppedAt() (t time.Time, ok bool, err error) {
	if s.IsOpen() {
		return time.Time{}, false, nil
	}
	t, err = ParseTimestamp(*s.Stopped)
	return t, err == nil, err
}

// SessionRecord is a session together with its identifiers, as returned by the API.
type SessionRecord struct {
	ID           string `json:"id"`
	ParkingLotID string `json:"parking_lot_id"`
	ParkingSession
}

// FormatTimestamp renders t in local time using TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.In(time.Local).Format(TimestampLayout)
}

// ParseTimestamp parses a TimestampLayout value as local time.
func ParseTimestamp(value string) (time.Time, error) {
	return time.ParseInLocation(TimestampLayout, value, time.Local)
}

// SessionEventType names a session lifecycle transition.
type SessionEventType string

const (
	SessionStarted SessionEventType = "session.started"
	SessionStopped SessionEventType = "session.stopped"
	SessionPaid    SessionEventType = "session.paid"
)

// SessionEvent is published after a lifecycle transition has been persisted.
type SessionEvent struct {
	Type    SessionEventType `json:"type"`
	Session SessionRecord    `json:"session"`
	At      string           `json:"at"`
}
