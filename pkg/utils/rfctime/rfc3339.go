package rfctime

import (
	"encoding/json"
	"time"
)

// Layout to stringify timestamps. Offsets are always numeric, never "Z".
const Layout string = "2006-01-02T15:04:05.999-07:00"

// RFC3339 is a timestamp exchanged in JSON as RFC 3339 date-time.
//
// "Z" offsets are accepted on parsing.
type RFC3339 time.Time

func (t RFC3339) Time() time.Time {
	return time.Time(t)
}

// Equal tells both point the same instant. Two nils are equal.
func (t *RFC3339) Equal(other *RFC3339) bool {
	if t == nil || other == nil {
		return t == nil && other == nil
	}
	return t.Time().Equal(other.Time())
}

func (t RFC3339) String() string {
	return t.Time().Format(Layout)
}

func Parse(s string) (RFC3339, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return RFC3339{}, err
	}
	return RFC3339(t), nil
}

func (t RFC3339) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

// UnmarshalJSON leaves t as it is for null.
func (t *RFC3339) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
