package core

import "time"

// Timestamp is a UTC instant serialized as RFC 3339 with nanoseconds
type Timestamp time.Time

// NewTimestamp normalizes t to UTC
func NewTimestamp(t time.Time) Timestamp { return Timestamp(t.UTC()) }

// Now is the current instant in UTC
func Now() Timestamp { return NewTimestamp(time.Now()) }

func (t Timestamp) Time() time.Time { return time.Time(t) }
func (t Timestamp) IsZero() bool    { return t.Time().IsZero() }

func (t Timestamp) Before(u Timestamp) bool { return t.Time().Before(u.Time()) }
func (t Timestamp) After(u Timestamp) bool  { return t.Time().After(u.Time()) }

func (t Timestamp) String() string { return t.Time().Format(time.RFC3339Nano) }

// MarshalText makes Timestamp usable as a JSON value and map key
func (t Timestamp) MarshalText() ([]byte, error) {
	return t.Time().UTC().AppendFormat(nil, time.RFC3339Nano), nil
}

// UnmarshalText accepts any RFC 3339 offset and stores the instant in UTC
func (t *Timestamp) UnmarshalText(data []byte) error {
	parsed, err := time.Parse(time.RFC3339Nano, string(data))
	if err != nil {
		return err
	}
	*t = NewTimestamp(parsed)
	return nil
}
