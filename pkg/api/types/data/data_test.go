package data_test

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	apidata "github.com/opst/dmcatalog/pkg/api/types/data"
	"github.com/opst/dmcatalog/pkg/api/types/formats"
	"github.com/opst/dmcatalog/pkg/domain"
	domerr "github.com/opst/dmcatalog/pkg/domain/errors"
	"github.com/opst/dmcatalog/pkg/utils/try"
)

var formatKey = domain.FormatKey{
	Namespace: "ns", Definition: "def", Usage: "PRC", FileType: "TXT", Version: 1,
}

func TestRegistration_Domain(t *testing.T) {
	body := `{
		"namespace": "ns",
		"businessObjectDefinitionName": "def",
		"businessObjectFormatUsage": "PRC",
		"businessObjectFormatFileType": "TXT",
		"businessObjectFormatVersion": 1,
		"partitionValue": "2024-01-01",
		"subPartitionValues": ["east"],
		"status": "UPLOADING",
		"attributes": [{"name": "owner", "value": "alice"}],
		"storageUnits": [{"storageName": "S3_MANAGED", "storageDirectoryPath": "a/b"}],
		"businessObjectDataParents": [{
			"namespace": "ns",
			"businessObjectDefinitionName": "def",
			"businessObjectFormatUsage": "PRC",
			"businessObjectFormatFileType": "TXT",
			"businessObjectFormatVersion": 1,
			"partitionValue": "2023-12-31",
			"businessObjectDataVersion": 2
		}]
	}`
	reg := apidata.Registration{}
	if err := json.Unmarshal([]byte(body), &reg); err != nil {
		t.Fatal(err)
	}
	got := try.To(reg.Domain()).OrFatal(t)

	want := domain.DataRegistration{
		Family:       try.To(domain.NewFamily(formatKey, "2024-01-01", "east")).OrFatal(t),
		Status:       domain.Uploading,
		Attributes:   []domain.Attribute{{Name: "owner", Value: "alice"}},
		StorageUnits: []domain.StorageUnit{{StorageName: "S3_MANAGED", DirectoryPath: "a/b"}},
		Parents: []domain.DataKey{
			{Family: try.To(domain.NewFamily(formatKey, "2023-12-31")).OrFatal(t), Version: 2},
		},
	}
	if got.Family != want.Family || got.Status != want.Status ||
		len(got.Attributes) != 1 || got.Attributes[0] != want.Attributes[0] ||
		len(got.StorageUnits) != 1 || got.StorageUnits[0] != want.StorageUnits[0] ||
		len(got.Parents) != 1 || got.Parents[0] != want.Parents[0] {
		t.Errorf("unexpected registration:\n- actual  : %+v\n- expected: %+v", got, want)
	}

	t.Run("too many sub-partition values", func(t *testing.T) {
		reg := apidata.Registration{Family: apidata.Family{
			Key:                formats.ComposeKey(formatKey),
			PartitionValue:     "a",
			SubPartitionValues: []string{"1", "2", "3", "4", "5"},
		}}
		if _, err := reg.Domain(); !errors.Is(err, domerr.ErrValidation) {
			t.Errorf("expected ErrValidation, but got %v", err)
		}
	})
}

func TestComposeDetail(t *testing.T) {
	family := try.To(domain.NewFamily(formatKey, "2024-01-01", "east")).OrFatal(t)
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	d := domain.Data{
		Id:        "data-1",
		DataKey:   domain.DataKey{Family: family, Version: 3},
		Latest:    true,
		Status:    domain.Valid,
		History:   []domain.StatusHistory{{Status: domain.Valid, CreatedAt: at}},
		CreatedAt: at,
	}

	b, err := json.Marshal(apidata.ComposeDetail(d))
	if err != nil {
		t.Fatal(err)
	}
	got := map[string]any{}
	if err := json.Unmarshal(b, &got); err != nil {
		t.Fatal(err)
	}

	for key, want := range map[string]any{
		"id":                          "data-1",
		"namespace":                   "ns",
		"businessObjectFormatVersion": float64(1),
		"partitionValue":              "2024-01-01",
		"businessObjectDataVersion":   float64(3),
		"latestVersion":               true,
		"status":                      "VALID",
		"createdAt":                   "2024-01-02T03:04:05+00:00",
	} {
		if got[key] != want {
			t.Errorf("%s: got %v, want %v", key, got[key], want)
		}
	}
	for _, key := range []string{"attributes", "storageUnits", "businessObjectDataParents", "businessObjectDataChildren"} {
		if l, ok := got[key].([]any); !ok || len(l) != 0 {
			t.Errorf("%s: should be an empty list, but %v", key, got[key])
		}
	}
	if subs, ok := got["subPartitionValues"].([]any); !ok || len(subs) != 1 || subs[0] != "east" {
		t.Errorf("subPartitionValues: %v", got["subPartitionValues"])
	}
}

func TestAvailabilityRequest_Domain(t *testing.T) {
	for name, testcase := range map[string]struct {
		body       string
		wantValues []string
		wantRange  *domain.PartitionRange
	}{
		"explicit values": {
			body:       `{"partitionValues": ["a", "b"]}`,
			wantValues: []string{"a", "b"},
		},
		"explicit empty values": {
			body:       `{"partitionValues": []}`,
			wantValues: []string{},
		},
		"range": {
			body:      `{"partitionValueRange": {"startPartitionValue": "a", "endPartitionValue": "c"}}`,
			wantRange: &domain.PartitionRange{Start: "a", End: "c"},
		},
	} {
		t.Run(name, func(t *testing.T) {
			req := apidata.AvailabilityRequest{}
			if err := json.Unmarshal([]byte(testcase.body), &req); err != nil {
				t.Fatal(err)
			}
			got := try.To(req.Domain()).OrFatal(t)

			if (got.Values == nil) != (testcase.wantValues == nil) || len(got.Values) != len(testcase.wantValues) {
				t.Errorf("values: %#v", got.Values)
			}
			if (got.Range == nil) != (testcase.wantRange == nil) ||
				(got.Range != nil && *got.Range != *testcase.wantRange) {
				t.Errorf("range: %+v", got.Range)
			}
		})
	}
}
