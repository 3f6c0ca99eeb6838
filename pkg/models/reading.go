package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Wire field names of the telemetry source
const (
	FieldPlantID   = "PlantID"
	FieldLogTime   = "Log_Time"
	FieldGreenness = "Greeness"

	// fieldGreennessAlt is the spelling used by the crop-manager server
	fieldGreennessAlt = "Greenness"
)

// PlantID identifies a physical plant. The telemetry source sends it either as a
// JSON string or a JSON number; both are kept in their textual form.
type PlantID string

// UnmarshalJSON accepts a JSON string or number
func (id *PlantID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return fmt.Errorf("plant id is null")
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("invalid plant id %s: %w", data, err)
		}
		*id = PlantID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid plant id %s: %w", data, err)
	}
	*id = PlantID(n.String())
	return nil
}

// Reading is one timestamped greenness measurement as received from the
// telemetry source. Fields not known to the pipeline are kept in Extra.
type Reading struct {
	PlantID   PlantID
	LogTime   string
	Greenness float64
	Extra     map[string]json.RawMessage
}

// UnmarshalJSON decodes a reading object, accepting both spellings of the
// greenness field and unix-millisecond timestamps.
func (r *Reading) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("reading is not an object: %w", err)
	}
	if raw == nil {
		return fmt.Errorf("reading is null")
	}

	var decoded Reading

	idRaw, ok := raw[FieldPlantID]
	if !ok {
		return fmt.Errorf("reading has no %s", FieldPlantID)
	}
	if err := decoded.PlantID.UnmarshalJSON(idRaw); err != nil {
		return err
	}
	delete(raw, FieldPlantID)

	timeRaw, ok := raw[FieldLogTime]
	if !ok {
		return fmt.Errorf("reading for plant %s has no %s", decoded.PlantID, FieldLogTime)
	}
	logTime, err := decodeLogTime(timeRaw)
	if err != nil {
		return fmt.Errorf("reading for plant %s: %w", decoded.PlantID, err)
	}
	decoded.LogTime = logTime
	delete(raw, FieldLogTime)

	key := FieldGreenness
	valueRaw, ok := raw[key]
	if !ok {
		key = fieldGreennessAlt
		valueRaw, ok = raw[key]
	}
	if ok {
		if !bytes.Equal(bytes.TrimSpace(valueRaw), []byte("null")) {
			if err := json.Unmarshal(valueRaw, &decoded.Greenness); err != nil {
				return fmt.Errorf("reading for plant %s: invalid %s %s", decoded.PlantID, key, valueRaw)
			}
		}
		delete(raw, key)
	}

	if len(raw) > 0 {
		decoded.Extra = raw
	}

	*r = decoded
	return nil
}

// MarshalJSON encodes the reading in the telemetry wire shape
func (r Reading) MarshalJSON() ([]byte, error) {
	return encodeReading(r.PlantID, r.LogTime, r.Greenness, r.Extra)
}

// NormalizedReading is a Reading whose LogTime holds the canonical display
// string. At is the parsed instant and is not serialized.
type NormalizedReading struct {
	PlantID   PlantID
	LogTime   string
	Greenness float64
	Extra     map[string]json.RawMessage
	At        time.Time
}

// MarshalJSON encodes the reading in the telemetry wire shape so chart code can
// key on Log_Time and Greeness.
func (r NormalizedReading) MarshalJSON() ([]byte, error) {
	return encodeReading(r.PlantID, r.LogTime, r.Greenness, r.Extra)
}

// CopyExtra returns an independent copy of an extra-field map
func CopyExtra(extra map[string]json.RawMessage) map[string]json.RawMessage {
	if extra == nil {
		return nil
	}
	out := make(map[string]json.RawMessage, len(extra))
	for k, v := range extra {
		out[k] = bytes.Clone(v)
	}
	return out
}

func decodeLogTime(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", fmt.Errorf("%s is null", FieldLogTime)
	}

	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", fmt.Errorf("invalid %s %s", FieldLogTime, raw)
		}
		return s, nil
	}

	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("invalid %s %s", FieldLogTime, raw)
	}
	return n.String(), nil
}

func encodeReading(id PlantID, logTime string, greenness float64, extra map[string]json.RawMessage) ([]byte, error) {
	out := make(map[string]any, len(extra)+3)
	for k, v := range extra {
		out[k] = v
	}
	out[FieldPlantID] = string(id)
	out[FieldLogTime] = logTime
	out[FieldGreenness] = greenness
	return json.Marshal(out)
}
