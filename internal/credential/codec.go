package credential

import (
	"encoding/base64"
	"fmt"
	"strconv"

	"github.com/fxamacker/cbor/v2"
	"github.com/minvws/base45-go/base45"

	"idverify/pkg/platform/sentinel"
)

// ePhilID claim numbering. cbor keys arrive as integers and are normalized
// to their decimal string form so claim lookups read the same everywhere.
const (
	ClaimCountry    = "1"
	ClaimCredential = "169"

	// CountryCode is the only accepted value of the country claim.
	CountryCode = "PH"

	// qrPrefixLen is the fixed-length envelope marker preceding the
	// base45 body of an ePhilID QR.
	qrPrefixLen = 4
)

// decodeBody strips the QR format prefix and base45-decodes the remainder.
func decodeBody(qr string) ([]byte, error) {
	if len(qr) <= qrPrefixLen {
		return nil, fmt.Errorf("payload too short: %w", sentinel.ErrDecode)
	}
	raw, err := base45.Base45Decode([]byte(qr[qrPrefixLen:]))
	if err != nil {
		return nil, fmt.Errorf("base45 decode: %w", sentinel.ErrDecode)
	}
	return raw, nil
}

// DecodeEnvelope interprets raw bytes as the four-element COSE-style array
// [protected headers, unprotected headers, payload, signature] and returns
// the inner payload bytes.
func DecodeEnvelope(raw []byte) ([]byte, error) {
	var envelope []cbor.RawMessage
	if err := cbor.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("envelope structure: %w", sentinel.ErrDecode)
	}
	if len(envelope) != 4 {
		return nil, fmt.Errorf("envelope has %d elements, want 4: %w", len(envelope), sentinel.ErrDecode)
	}
	var payload []byte
	if err := cbor.Unmarshal(envelope[2], &payload); err != nil {
		return nil, fmt.Errorf("envelope payload: %w", sentinel.ErrDecode)
	}
	return payload, nil
}

// DecodeClaims turns an ePhilID QR string into its claims map. Claim keys
// are normalized to decimal strings. If the embedded photo arrives as raw
// bytes it is replaced in place by its base64 encoding; callers never see
// the raw buffer. Any malformed input yields a sentinel.ErrDecode, never a
// partial result.
func DecodeClaims(qr string) (map[string]any, error) {
	body, err := decodeBody(qr)
	if err != nil {
		return nil, err
	}
	payload, err := DecodeEnvelope(body)
	if err != nil {
		return nil, err
	}

	var raw map[any]any
	if err := cbor.Unmarshal(payload, &raw); err != nil {
		return nil, fmt.Errorf("claims payload: %w", sentinel.ErrDecode)
	}

	claims, ok := normalizeValue(raw).(map[string]any)
	if !ok {
		return nil, fmt.Errorf("claims payload is not a map: %w", sentinel.ErrDecode)
	}

	if cm, ok := claims[ClaimCredential].(map[string]any); ok {
		if img, ok := cm["img"].([]byte); ok {
			cm["img"] = base64.StdEncoding.EncodeToString(img)
		}
	}
	return claims, nil
}

// DecodeCredential decodes claims and maps them into the canonical shape.
// A wrong country claim or a missing credential claim is a hard decode
// failure, exactly like malformed bytes.
func DecodeCredential(qr string) (*Credential, error) {
	claims, err := DecodeClaims(qr)
	if err != nil {
		return nil, err
	}

	if country, _ := claims[ClaimCountry].(string); country != CountryCode {
		return nil, fmt.Errorf("unexpected country code %q: %w", country, sentinel.ErrDecode)
	}

	cm, ok := claims[ClaimCredential].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("credential claim missing: %w", sentinel.ErrDecode)
	}
	sb, ok := cm["sb"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("credential subject missing: %w", sentinel.ErrDecode)
	}

	return &Credential{
		DateIssued: stringClaim(cm, "d"),
		Issuer:     stringClaim(cm, "i"),
		Image:      stringClaim(cm, "img"),
		Subject: Subject{
			BestFinger: stringClaim(sb, "BF"),
			DOB:        stringClaim(sb, "DOB"),
			PCN:        stringClaim(sb, "PCN"),
			POB:        stringClaim(sb, "POB"),
			FirstName:  stringClaim(sb, "fn"),
			LastName:   stringClaim(sb, "ln"),
			MiddleName: stringClaim(sb, "mn"),
			Sex:        stringClaim(sb, "s"),
			Suffix:     stringClaim(sb, "sf"),
		},
	}, nil
}

// normalizeValue rewrites CBOR map keys (integers or strings) to strings,
// recursively. Byte strings are left intact for the photo re-encoding step.
func normalizeValue(v any) any {
	switch m := v.(type) {
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[claimKey(k)] = normalizeValue(val)
		}
		return out
	case []any:
		for i := range m {
			m[i] = normalizeValue(m[i])
		}
		return m
	default:
		return v
	}
}

func claimKey(k any) string {
	switch t := k.(type) {
	case string:
		return t
	case int64:
		return strconv.FormatInt(t, 10)
	case uint64:
		return strconv.FormatUint(t, 10)
	default:
		return fmt.Sprintf("%v", t)
	}
}

func stringClaim(m map[string]any, key string) string {
	if s, ok := m[key].(string); ok {
		return s
	}
	return ""
}
