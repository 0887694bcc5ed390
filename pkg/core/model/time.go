package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// The backend serialises java LocalDateTime values without a zone.
var localTimeLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	time.RFC3339Nano,
}

// InputLayout is the timezone-naive representation used by date inputs.
const InputLayout = "2006-01-02T15:04"

// LocalTime is a backend timestamp. Values without a zone are read as local time.
type LocalTime struct {
	time.Time
}

func ParseLocalTime(s string) (LocalTime, error) {
	for _, layout := range localTimeLayouts {
		if layout == time.RFC3339Nano {
			if t, err := time.Parse(layout, s); err == nil {
				return LocalTime{t.Local()}, nil
			}
			continue
		}
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return LocalTime{t}, nil
		}
	}
	return LocalTime{}, fmt.Errorf("unrecognised timestamp %q", s)
}

func (t *LocalTime) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*t = LocalTime{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*t = LocalTime{}
		return nil
	}
	parsed, err := ParseLocalTime(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func (t LocalTime) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Format("2006-01-02T15:04:05"))
}

// InputValue renders the time for a date input, dropping the zone.
func (t LocalTime) InputValue() string {
	if t.IsZero() {
		return ""
	}
	return t.Local().Format(InputLayout)
}
