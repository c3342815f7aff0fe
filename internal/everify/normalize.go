package everify

import (
	"fmt"
	"strings"

	"idverify/internal/credential"
)

// Type is the payload type tag declared by the eVerify check endpoint.
type Type string

const (
	TypeNationalID       Type = "National ID"
	TypeNationalIDSigned Type = "National ID Signed"
	TypeCardNumber       Type = "Philsys Card Number"
	TypeEPhilID          Type = "ePhilId"
	TypeCard             Type = "Philsys Card"
	TypeEGovPH           Type = "eGovPH"
	TypeUnknown          Type = "unknown"
)

// Normalized is the simplified shape of an upstream check response: the
// declared type tag plus the flattened data payload.
type Normalized struct {
	Type    Type           `json:"type"`
	Payload map[string]any `json:"payload"`
}

// Normalize simplifies the upstream /api/pub/qr/check response. The meta
// block and data payload each appear at varying nesting depths depending on
// the payload type, so both are resolved through a fallback chain.
func Normalize(response map[string]any) Normalized {
	meta := subMap(response, "meta")
	if meta == nil {
		meta = subMap(subMap(response, "data"), "meta")
	}

	payload := subMap(subMap(response, "data"), "data")
	if payload == nil {
		payload = subMap(response, "data")
	}
	if payload == nil {
		payload = response
	}
	if payload == nil {
		payload = map[string]any{}
	}

	qrType := TypeUnknown
	if s, ok := meta["qr_type"].(string); ok && s != "" {
		qrType = Type(s)
	}

	return Normalized{Type: qrType, Payload: payload}
}

// ToPersonalInfo maps a normalized payload into the display model. Field
// presence varies by type tag; unrecognized tags yield nil and are shown
// through detail rows only.
func ToPersonalInfo(n Normalized) *credential.PersonalInfo {
	p := n.Payload

	switch n.Type {
	case TypeNationalID:
		return &credential.PersonalInfo{
			LastName:       str(p, "last_name"),
			FirstName:      str(p, "first_name"),
			MiddleName:     str(p, "middle_name"),
			Suffix:         str(p, "suffix"),
			Sex:            str(p, "gender"),
			DateOfBirth:    str(p, "birth_date"),
			PlaceOfBirth:   str(p, "place_of_birth"),
			PCN:            str(p, "pcn"),
			DateOfIssuance: str(p, "date_issued"),
		}
	case TypeNationalIDSigned, TypeEPhilID, TypeCard:
		return &credential.PersonalInfo{
			Image:             str(p, "image"),
			ImageURL:          str(p, "face_url"),
			LastName:          str(p, "last_name"),
			FirstName:         str(p, "first_name"),
			MiddleName:        str(p, "middle_name"),
			Suffix:            str(p, "suffix"),
			Sex:               str(p, "sex"),
			DateOfBirth:       str(p, "birth_date"),
			PlaceOfBirth:      str(p, "place_of_birth"),
			PCN:               str(p, "pcn"),
			DateOfIssuance:    str(p, "date_issued"),
			BestCaptureFinger: joined(p, "best_finger_captured"),
		}
	case TypeCardNumber:
		return &credential.PersonalInfo{PCN: str(p, "pcn")}
	default:
		return nil
	}
}

// detailFields is the fixed set of extra payload keys surfaced as rows,
// in display order.
var detailFields = []struct {
	key   string
	label string
}{
	{"digital_id", "Digital ID"},
	{"code", "Reference Code"},
	{"residency_status", "Residency Status"},
	{"marital_status", "Marital Status"},
	{"mobile_number", "Mobile Number"},
	{"email", "Email Address"},
	{"full_address", "Address"},
	{"tracking_number", "Tracking Number"},
}

// BuildDetails derives the additional label/value rows for a normalized
// check payload, plus the notice rows for sparse payload types.
func BuildDetails(n Normalized) []credential.Detail {
	var rows []credential.Detail
	for _, f := range detailFields {
		if v, ok := n.Payload[f.key]; ok && v != nil && v != "" {
			rows = append(rows, credential.Detail{Label: f.label, Value: FormatValue(v)})
		}
	}

	if n.Type == TypeCardNumber && len(rows) == 0 {
		rows = append(rows, credential.Detail{
			Label: "Message",
			Value: "PCN recognised. No additional details returned.",
		})
	}
	if n.Type == TypeUnknown && len(rows) == 0 {
		rows = append(rows, credential.Detail{
			Label: "Notice",
			Value: "QR recognised by eVerify but data type was not identified.",
		})
	}
	return rows
}

// TrackingNumber extracts the consent-polling reference, when present.
func (n Normalized) TrackingNumber() string {
	return str(n.Payload, "tracking_number")
}

func subMap(m map[string]any, key string) map[string]any {
	if m == nil {
		return nil
	}
	sub, _ := m[key].(map[string]any)
	return sub
}

func str(m map[string]any, key string) string {
	if m == nil {
		return ""
	}
	switch v := m[key].(type) {
	case string:
		return v
	case nil:
		return ""
	case bool, float64, int, int64:
		return fmt.Sprintf("%v", v)
	default:
		return ""
	}
}

func joined(m map[string]any, key string) string {
	switch v := m[key].(type) {
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, FormatValue(item))
		}
		return strings.Join(parts, ", ")
	case string:
		return v
	default:
		return ""
	}
}
