package errors_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"testing"

	apierr "github.com/opst/dmcatalog/pkg/api/types/errors"
	domerr "github.com/opst/dmcatalog/pkg/domain/errors"
)

func TestFromDomain(t *testing.T) {
	for name, testcase := range map[string]struct {
		err  error
		want int
	}{
		"validation": {
			err: domerr.NewValidation("partitionValue", "must be specified"), want: http.StatusBadRequest,
		},
		"missing partition key": {
			err: domerr.MissingPartitionKey{Format: "f"}, want: http.StatusBadRequest,
		},
		"missing": {
			err: domerr.Missing{Table: "data", Identity: "d"}, want: http.StatusNotFound,
		},
		"unknown group": {
			err: domerr.UnknownGroup{Name: "g"}, want: http.StatusNotFound,
		},
		"conflict": {
			err: domerr.Conflict{Table: "format", Identity: "f"}, want: http.StatusConflict,
		},
		"invalid transition": {
			err: domerr.InvalidTransition{Identity: "d", From: "DELETED", To: "VALID"}, want: http.StatusConflict,
		},
		"cyclic lineage": {
			err: domerr.CyclicLineage{Child: "a", Parent: "b"}, want: http.StatusConflict,
		},
		"duplicate version": {
			err: domerr.DuplicateVersion{Family: "f", Version: 1}, want: http.StatusServiceUnavailable,
		},
		"wrapped": {
			err: fmt.Errorf("registering: %w", domerr.Missing{Table: "format", Identity: "f"}), want: http.StatusNotFound,
		},
		"canceled": {
			err: context.Canceled, want: http.StatusServiceUnavailable,
		},
		"unknown": {
			err: errors.New("fake error"), want: http.StatusInternalServerError,
		},
	} {
		t.Run(name, func(t *testing.T) {
			got := apierr.FromDomain(testcase.err)
			if got.Code != testcase.want {
				t.Errorf("status: got %d, want %d", got.Code, testcase.want)
			}
			if !errors.Is(got.Internal, testcase.err) {
				t.Errorf("cause is lost: %v", got.Internal)
			}
		})
	}
}

func TestErrorMessage_JSON(t *testing.T) {
	msg := apierr.ErrorMessage{Reason: "bad request", Advice: "fix it", Cause: errors.New("hidden")}
	b, err := json.Marshal(msg)
	if err != nil {
		t.Fatal(err)
	}
	if want := `{"reason":"bad request","advice":"fix it"}`; string(b) != want {
		t.Errorf("got %s, want %s", b, want)
	}

	got := apierr.ErrorMessage{}
	if err := json.Unmarshal([]byte(`{"advice":"no reason"}`), &got); err == nil {
		t.Errorf("reason is required")
	}
}
