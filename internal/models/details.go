package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
)

type ImpactType string

const (
	ImpactLate         ImpactType = "LATE"
	ImpactOnTime       ImpactType = "ON_TIME"
	ImpactRiskHigh     ImpactType = "RISK_HIGH"
	ImpactRiskResolved ImpactType = "RISK_RESOLVED"
)

// Impact is the frozen verdict attached to a completion event.
type Impact struct {
	Type  ImpactType `json:"type"`
	Label string     `json:"label"`
}

type DetailsKind int

const (
	DetailsPlain DetailsKind = iota
	DetailsStructured
)

// Details is the activity log's description column. Plain rows hold free text;
// Structured rows are stored as a JSON envelope {"text":...,"impact":...}.
type Details struct {
	Kind   DetailsKind
	Text   string
	Impact *Impact
}

// noDetailsText is shown for envelopes that carry no text.
const noDetailsText = "No details"

func PlainDetails(text string) Details {
	return Details{Kind: DetailsPlain, Text: text}
}

func StructuredDetails(text string, impact *Impact) Details {
	return Details{Kind: DetailsStructured, Text: text, Impact: impact}
}

type detailsEnvelope struct {
	Text   string  `json:"text"`
	Impact *Impact `json:"impact"`
}

// ParseDetails decodes a stored column value. Only values starting with "{" are
// tried as JSON; anything that fails to decode is treated as plain text.
func ParseDetails(raw string) Details {
	if !strings.HasPrefix(raw, "{") {
		return PlainDetails(raw)
	}
	var env detailsEnvelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		return PlainDetails(raw)
	}
	text := env.Text
	if text == "" {
		text = noDetailsText
	}
	return StructuredDetails(text, env.Impact)
}

// Encode renders the column value.
func (d Details) Encode() (string, error) {
	if d.Kind != DetailsStructured {
		return d.Text, nil
	}
	b, err := json.Marshal(detailsEnvelope{Text: d.Text, Impact: d.Impact})
	if err != nil {
		return "", fmt.Errorf("encode details: %w", err)
	}
	return string(b), nil
}

func (d Details) Value() (driver.Value, error) {
	if d.Kind == DetailsPlain && d.Text == "" {
		return nil, nil
	}
	return d.Encode()
}

func (d *Details) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*d = PlainDetails("")
	case string:
		*d = ParseDetails(v)
	case []byte:
		*d = ParseDetails(string(v))
	default:
		return fmt.Errorf("details: unsupported column type %T", src)
	}
	return nil
}

// MarshalJSON exposes the parsed form to API clients.
func (d Details) MarshalJSON() ([]byte, error) {
	return json.Marshal(detailsEnvelope{Text: d.Text, Impact: d.Impact})
}

func (d *Details) UnmarshalJSON(b []byte) error {
	var env detailsEnvelope
	if err := json.Unmarshal(b, &env); err != nil {
		return err
	}
	if env.Impact != nil {
		*d = StructuredDetails(env.Text, env.Impact)
	} else {
		*d = PlainDetails(env.Text)
	}
	return nil
}
