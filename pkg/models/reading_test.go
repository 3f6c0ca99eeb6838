package models

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestReading_UnmarshalJSON(t *testing.T) {
	testCases := []struct {
		name        string
		input       string
		expected    Reading
		extraKeys   []string
		expectError bool
		errorMsg    string
	}{
		{
			name:  "Numeric plant id",
			input: `{"PlantID": 1, "Log_Time": "2024-01-01T10:00:00Z", "Greeness": 0.5}`,
			expected: Reading{
				PlantID:   "1",
				LogTime:   "2024-01-01T10:00:00Z",
				Greenness: 0.5,
			},
		},
		{
			name:  "String plant id",
			input: `{"PlantID": "basil-2", "Log_Time": "2024-01-01 10:00:00", "Greeness": 0.7}`,
			expected: Reading{
				PlantID:   "basil-2",
				LogTime:   "2024-01-01 10:00:00",
				Greenness: 0.7,
			},
		},
		{
			name:  "Server spelling of greenness",
			input: `{"PlantID": 3, "Log_Time": "2024-01-01 10:00:00", "Greenness": 0.25}`,
			expected: Reading{
				PlantID:   "3",
				LogTime:   "2024-01-01 10:00:00",
				Greenness: 0.25,
			},
		},
		{
			name:  "Unix millisecond timestamp",
			input: `{"PlantID": 4, "Log_Time": 1704103200000, "Greeness": 0.1}`,
			expected: Reading{
				PlantID:   "4",
				LogTime:   "1704103200000",
				Greenness: 0.1,
			},
		},
		{
			name:  "Extra fields pass through",
			input: `{"PlantID": 5, "Log_Time": "2024-01-01 10:00:00", "Greeness": 0.9, "CropID": 12, "Note": "ok"}`,
			expected: Reading{
				PlantID:   "5",
				LogTime:   "2024-01-01 10:00:00",
				Greenness: 0.9,
			},
			extraKeys: []string{"CropID", "Note"},
		},
		{
			name:  "Missing greenness defaults to zero",
			input: `{"PlantID": 6, "Log_Time": "2024-01-01 10:00:00"}`,
			expected: Reading{
				PlantID: "6",
				LogTime: "2024-01-01 10:00:00",
			},
		},
		{
			name:        "Missing plant id",
			input:       `{"Log_Time": "2024-01-01 10:00:00", "Greeness": 0.5}`,
			expectError: true,
			errorMsg:    "has no PlantID",
		},
		{
			name:        "Missing log time",
			input:       `{"PlantID": 1, "Greeness": 0.5}`,
			expectError: true,
			errorMsg:    "has no Log_Time",
		},
		{
			name:        "Non numeric greenness",
			input:       `{"PlantID": 1, "Log_Time": "2024-01-01 10:00:00", "Greeness": "high"}`,
			expectError: true,
			errorMsg:    "invalid Greeness",
		},
		{
			name:        "Not an object",
			input:       `[1, 2, 3]`,
			expectError: true,
			errorMsg:    "not an object",
		},
		{
			name:        "Null reading",
			input:       `null`,
			expectError: true,
			errorMsg:    "null",
		},
		{
			name:        "Object plant id",
			input:       `{"PlantID": {"id": 1}, "Log_Time": "2024-01-01 10:00:00"}`,
			expectError: true,
			errorMsg:    "invalid plant id",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var r Reading
			err := json.Unmarshal([]byte(tc.input), &r)
			if tc.expectError {
				if err == nil {
					t.Fatalf("Expected error but got none")
				}
				if !strings.Contains(err.Error(), tc.errorMsg) {
					t.Errorf("Expected error containing '%s', got '%s'", tc.errorMsg, err.Error())
				}
				return
			}
			if err != nil {
				t.Fatalf("Expected no error but got: %v", err)
			}

			if r.PlantID != tc.expected.PlantID {
				t.Errorf("Expected PlantID %s, got %s", tc.expected.PlantID, r.PlantID)
			}
			if r.LogTime != tc.expected.LogTime {
				t.Errorf("Expected LogTime %s, got %s", tc.expected.LogTime, r.LogTime)
			}
			if r.Greenness != tc.expected.Greenness {
				t.Errorf("Expected Greenness %f, got %f", tc.expected.Greenness, r.Greenness)
			}
			if len(r.Extra) != len(tc.extraKeys) {
				t.Errorf("Expected %d extra fields, got %d", len(tc.extraKeys), len(r.Extra))
			}
			for _, key := range tc.extraKeys {
				if _, ok := r.Extra[key]; !ok {
					t.Errorf("Expected extra field %s to be kept", key)
				}
			}
		})
	}
}

func TestReading_DecodeArray(t *testing.T) {
	payload := `[
		{"PlantID": 1, "Log_Time": "2024-01-01T10:00:00Z", "Greeness": 0.5},
		{"PlantID": 2, "Log_Time": "2024-01-01T10:00:05Z", "Greeness": 0.7}
	]`

	var readings []Reading
	if err := json.Unmarshal([]byte(payload), &readings); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if len(readings) != 2 {
		t.Fatalf("Expected 2 readings, got %d", len(readings))
	}
	if readings[1].PlantID != "2" {
		t.Errorf("Expected second plant id 2, got %s", readings[1].PlantID)
	}
}

func TestReading_MarshalJSON(t *testing.T) {
	r := Reading{
		PlantID:   "7",
		LogTime:   "2024-01-01 10:00:00",
		Greenness: 0.42,
		Extra:     map[string]json.RawMessage{"CropID": json.RawMessage(`12`)},
	}

	data, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Expected valid JSON, got %v", err)
	}

	if decoded[FieldPlantID] != "7" {
		t.Errorf("Expected PlantID '7', got %v", decoded[FieldPlantID])
	}
	if decoded[FieldGreenness] != 0.42 {
		t.Errorf("Expected Greeness 0.42, got %v", decoded[FieldGreenness])
	}
	if decoded["CropID"] != float64(12) {
		t.Errorf("Expected CropID 12 to pass through, got %v", decoded["CropID"])
	}
}

func TestNormalizedReading_MarshalJSON_OmitsInstant(t *testing.T) {
	r := NormalizedReading{
		PlantID:   "1",
		LogTime:   "2024-01-01 10:00",
		Greenness: 0.5,
		At:        time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC),
	}

	data, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Expected valid JSON, got %v", err)
	}

	if len(decoded) != 3 {
		t.Errorf("Expected 3 fields, got %d: %v", len(decoded), decoded)
	}
	if decoded[FieldLogTime] != "2024-01-01 10:00" {
		t.Errorf("Expected Log_Time '2024-01-01 10:00', got %v", decoded[FieldLogTime])
	}
}

func TestCopyExtra(t *testing.T) {
	if CopyExtra(nil) != nil {
		t.Error("Expected nil copy of nil map")
	}

	original := map[string]json.RawMessage{"Note": json.RawMessage(`"a"`)}
	copied := CopyExtra(original)
	copied["Note"][1] = 'b'
	copied["Other"] = json.RawMessage(`1`)

	if string(original["Note"]) != `"a"` {
		t.Errorf("Expected original value to be untouched, got %s", original["Note"])
	}
	if _, ok := original["Other"]; ok {
		t.Error("Expected original map to be untouched")
	}
}

func TestSeriesLabel(t *testing.T) {
	if got := SeriesLabel("12"); got != "Plant 12" {
		t.Errorf("Expected 'Plant 12', got '%s'", got)
	}
}
