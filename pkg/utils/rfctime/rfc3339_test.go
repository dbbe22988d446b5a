package rfctime_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/opst/dmcatalog/pkg/utils/rfctime"
)

func TestRFC3339_JSON(t *testing.T) {
	jst := time.FixedZone("JST", 9*60*60)
	original := rfctime.RFC3339(time.Date(2024, 1, 2, 3, 4, 5, 678_000_000, jst))

	b, err := json.Marshal(original)
	if err != nil {
		t.Fatal(err)
	}
	if want := `"2024-01-02T03:04:05.678+09:00"`; string(b) != want {
		t.Errorf("got %s, want %s", b, want)
	}

	var got rfctime.RFC3339
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatal(err)
	}
	if !got.Equal(&original) {
		t.Errorf("got %s, want %s", got, original)
	}

	t.Run("Z is accepted", func(t *testing.T) {
		var z rfctime.RFC3339
		if err := json.Unmarshal([]byte(`"2024-01-01T18:04:05.678Z"`), &z); err != nil {
			t.Fatal(err)
		}
		if !z.Equal(&original) {
			t.Errorf("got %s", z)
		}
	})

	t.Run("null is ignored", func(t *testing.T) {
		z := original
		if err := json.Unmarshal([]byte(`null`), &z); err != nil {
			t.Fatal(err)
		}
		if !z.Equal(&original) {
			t.Errorf("got %s", z)
		}
	})

	t.Run("malformed", func(t *testing.T) {
		var z rfctime.RFC3339
		if err := json.Unmarshal([]byte(`"2024-01-01"`), &z); err == nil {
			t.Errorf("expected error")
		}
	})
}
