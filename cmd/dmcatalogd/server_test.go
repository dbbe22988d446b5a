package main

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/labstack/gommon/log"
	"github.com/prometheus/client_golang/prometheus"

	httptestutil "github.com/opst/dmcatalog/internal/testutils/http"
	apidata "github.com/opst/dmcatalog/pkg/api/types/data"
	"github.com/opst/dmcatalog/pkg/catalog"
	kinmem "github.com/opst/dmcatalog/pkg/domain/dmcatalog/db/inmemory"
	"github.com/opst/dmcatalog/pkg/notification"
)

func TestParseLogLevel(t *testing.T) {
	for name, testcase := range map[string]struct {
		when   string
		want   log.Lvl
		wantOk bool
	}{
		"debug":             {when: "debug", want: log.DEBUG, wantOk: true},
		"info":              {when: "INFO", want: log.INFO, wantOk: true},
		"warn":              {when: "warn", want: log.WARN, wantOk: true},
		"empty":             {when: "", want: log.WARN, wantOk: true},
		"error":             {when: "error", want: log.ERROR, wantOk: true},
		"off":               {when: "off", want: log.OFF, wantOk: true},
		"unknown is a warn": {when: "verbose", want: log.WARN, wantOk: false},
	} {
		t.Run(name, func(t *testing.T) {
			got, ok := parseLogLevel(testcase.when)
			if got != testcase.want || ok != testcase.wantOk {
				t.Errorf("got (%v, %v), want (%v, %v)", got, ok, testcase.want, testcase.wantOk)
			}
		})
	}
}

func TestBuildServer(t *testing.T) {
	db := kinmem.New()
	reg := prometheus.NewRegistry()
	svc := catalog.New(db.Data(), db.Formats(), db.Calendar(), catalog.WithRegisterer(reg))

	events := []notification.Event{}
	notifier := notification.NotifierFunc(func(_ context.Context, e notification.Event) error {
		events = append(events, e)
		return nil
	})

	e := BuildServer(svc, notifier, reg, "off")

	formatJSON := `"namespace": "ns", "businessObjectDefinitionName": "def",
		"businessObjectFormatUsage": "PRC", "businessObjectFormatFileType": "TXT", "businessObjectFormatVersion": 0`
	formatQuery := "namespace=ns&businessObjectDefinitionName=def&businessObjectFormatUsage=PRC" +
		"&businessObjectFormatFileType=TXT&businessObjectFormatVersion=0"

	steps := []struct {
		name     string
		method   string
		target   string
		body     string
		wantCode int
	}{
		{
			name: "create group", method: http.MethodPost, target: "/api/groups",
			body:     `{"partitionKeyGroupName": "dates", "expectedPartitionValues": ["2024-01-01", "2024-01-02"]}`,
			wantCode: http.StatusOK,
		},
		{
			name: "register format", method: http.MethodPost, target: "/api/formats",
			body:     `{` + formatJSON + `, "partitionKey": "date", "partitionKeyGroup": "dates"}`,
			wantCode: http.StatusOK,
		},
		{
			name: "register data", method: http.MethodPost, target: "/api/data",
			body:     `{` + formatJSON + `, "partitionValue": "2024-01-01"}`,
			wantCode: http.StatusOK,
		},
		{
			name: "malformed registration", method: http.MethodPost, target: "/api/data",
			body:     `{`,
			wantCode: http.StatusBadRequest,
		},
		{
			name: "get data with trailing slash", method: http.MethodGet,
			target:   "/api/data/?" + formatQuery + "&partitionValue=2024-01-01",
			wantCode: http.StatusOK,
		},
		{
			name: "check availability", method: http.MethodPost, target: "/api/data/availability",
			body: `{` + formatJSON + `,
				"partitionValueRange": {"startPartitionValue": "2024-01-01", "endPartitionValue": "2024-01-02"}}`,
			wantCode: http.StatusOK,
		},
		{
			name: "key prefix of a new version", method: http.MethodGet,
			target:   "/api/data/keyprefix?" + formatQuery + "&partitionValue=2024-01-01&createNewVersion=true",
			wantCode: http.StatusOK,
		},
		{
			name: "get expected values", method: http.MethodGet,
			target:   "/api/groups/dates/values?start=2024-01-01&end=2024-01-31",
			wantCode: http.StatusOK,
		},
		{
			name: "unknown route", method: http.MethodGet, target: "/api/runs",
			wantCode: http.StatusNotFound,
		},
	}

	bodies := map[string]string{}
	for _, step := range steps {
		resp := httptestutil.Serve(e, step.method, step.target, httptestutil.Body(step.body), httptestutil.JSON())
		if resp.Code != step.wantCode {
			t.Fatalf("%s: status code %d, want %d (%s)", step.name, resp.Code, step.wantCode, resp.Body.String())
		}
		bodies[step.name] = resp.Body.String()
	}

	{
		var got apidata.Availability
		if err := json.Unmarshal([]byte(bodies["check availability"]), &got); err != nil {
			t.Fatal(err)
		}
		if len(got.Available) != 1 || len(got.NotAvailable) != 1 {
			t.Errorf("availability: %+v", got)
		}
	}
	{
		var got apidata.KeyPrefix
		if err := json.Unmarshal([]byte(bodies["key prefix of a new version"]), &got); err != nil {
			t.Fatal(err)
		}
		if want := "ns/def/PRC/TXT/frmt-v0/date=2024-01-01/data-v1"; got.KeyPrefix != want {
			t.Errorf("key prefix: %s, want %s", got.KeyPrefix, want)
		}
	}

	if len(events) != 1 || events[0].Type != notification.DataRegistered {
		t.Errorf("events: %+v", events)
	}

	t.Run("metrics are exposed", func(t *testing.T) {
		resp := httptestutil.Serve(e, http.MethodGet, "/metrics", nil)
		if resp.Code != http.StatusOK {
			t.Fatalf("status code: %d", resp.Code)
		}
		body := resp.Body.String()
		for _, name := range []string{
			"dmcatalog_registrations_total",
			"dmcatalog_availability_checks_total",
			"dmcatalog_operation_duration_seconds",
		} {
			if !strings.Contains(body, name) {
				t.Errorf("%s is not exposed", name)
			}
		}
	})
}
