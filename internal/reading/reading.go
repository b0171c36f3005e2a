package reading

import (
	"encoding/json"
	"errors"
	"unicode/utf8"
)

// Field names as they appear in the payload and in logs.
const (
	FieldTemperature = "temperature"
	FieldPressure    = "pressure"
	FieldHumidity    = "humidity"
)

// Fields lists the measurements in write order.
var Fields = [...]string{FieldTemperature, FieldPressure, FieldHumidity}

// Reading is one decoded sensor message.
type Reading struct {
	Temperature float64 `json:"temperature"`
	Pressure    float64 `json:"pressure"`
	Humidity    float64 `json:"humidity"`
}

// Value returns the measurement for a field name from Fields.
func (r Reading) Value(field string) (float64, bool) {
	switch field {
	case FieldTemperature:
		return r.Temperature, true
	case FieldPressure:
		return r.Pressure, true
	case FieldHumidity:
		return r.Humidity, true
	default:
		return 0, false
	}
}

var (
	errMissing   = errors.New("missing")
	errNull      = errors.New("null")
	errNotNumber = errors.New("not a number")
	errNotObject = errors.New("not a JSON object")
)

// Decode parses a raw message payload into a Reading.
//
// The payload must be UTF-8 text holding a JSON object with numeric
// temperature, pressure and humidity members. Other members are ignored.
// Decoding is all-or-nothing: any problem yields a *DecodeError and a zero
// Reading. Decode never panics and has no side effects.
func Decode(payload []byte) (Reading, error) {
	if !utf8.Valid(payload) {
		return Reading{}, &DecodeError{Kind: ErrEncoding}
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(payload, &obj); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return Reading{}, schemaError("", errNotObject)
		}
		return Reading{}, schemaError("", err)
	}
	if obj == nil {
		// The payload was the literal null.
		return Reading{}, schemaError("", errNotObject)
	}

	var r Reading
	targets := [...]*float64{&r.Temperature, &r.Pressure, &r.Humidity}
	for i, field := range Fields {
		v, err := number(obj, field)
		if err != nil {
			return Reading{}, schemaError(field, err)
		}
		*targets[i] = v
	}

	return r, nil
}

// number extracts a finite float64 member.
func number(obj map[string]json.RawMessage, field string) (float64, error) {
	raw, ok := obj[field]
	if !ok {
		return 0, errMissing
	}
	if string(raw) == "null" {
		return 0, errNull
	}
	if len(raw) == 0 || (raw[0] != '-' && (raw[0] < '0' || raw[0] > '9')) {
		return 0, errNotNumber
	}

	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		// Well-formed numbers only fail here when they overflow float64.
		return 0, err
	}
	return v, nil
}
