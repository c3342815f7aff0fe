package everify

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"idverify/internal/credential"
)

// ExtractProfile unwraps the eGovPH profile payload from its response
// envelope, tolerating the same nesting variants as Normalize.
func ExtractProfile(raw map[string]any) map[string]any {
	if p := subMap(subMap(raw, "data"), "data"); p != nil {
		return p
	}
	if p := subMap(raw, "data"); p != nil {
		return p
	}
	if raw != nil {
		return raw
	}
	return map[string]any{}
}

// ProfileReady decides whether a polled consent profile is complete enough
// to terminate polling. An explicit verified flag wins either way; with the
// flag absent, any populated signal field counts as ready.
func ProfileReady(profile map[string]any) bool {
	if len(profile) == 0 {
		return false
	}
	if verified, ok := profile["verified"].(bool); ok {
		return verified
	}
	for _, key := range []string{"first_name", "full_name", "last_name", "face_url", "image", "code", "pcn"} {
		if s, ok := profile[key].(string); ok && strings.TrimSpace(s) != "" {
			return true
		}
	}
	return false
}

// ProfilePersonalInfo maps an eGovPH profile into the display model.
// Profiles use looser field naming than check payloads, so every field has
// a fallback key.
func ProfilePersonalInfo(profile map[string]any) *credential.PersonalInfo {
	return &credential.PersonalInfo{
		Image:             firstStr(profile, "image", "photo"),
		ImageURL:          firstStr(profile, "face_url", "image_url"),
		LastName:          firstStr(profile, "last_name", "surname"),
		FirstName:         firstStr(profile, "first_name", "given_name"),
		MiddleName:        firstStr(profile, "middle_name", "middle_initial"),
		Suffix:            str(profile, "suffix"),
		Sex:               firstStr(profile, "gender", "sex"),
		DateOfBirth:       firstStr(profile, "birth_date", "dob"),
		PlaceOfBirth:      firstStr(profile, "place_of_birth", "pob"),
		PCN:               firstStr(profile, "pcn", "reference"),
		DateOfIssuance:    firstStr(profile, "date_issued", "issued_on"),
		BestCaptureFinger: joined(profile, "best_finger_captured"),
	}
}

// profileMappedKeys are already shown through ProfilePersonalInfo and are
// excluded from the detail rows.
var profileMappedKeys = map[string]struct{}{
	"image": {}, "photo": {}, "face_url": {}, "image_url": {},
	"first_name": {}, "given_name": {}, "middle_name": {}, "middle_initial": {},
	"last_name": {}, "surname": {}, "suffix": {}, "gender": {}, "sex": {},
	"birth_date": {}, "dob": {}, "place_of_birth": {}, "pob": {},
	"pcn": {}, "reference": {}, "date_issued": {}, "issued_on": {},
	"best_finger_captured": {},
}

// ProfileDetails renders every unmapped, non-empty profile field as a
// label/value row, sorted by key for stable output.
func ProfileDetails(profile map[string]any) []credential.Detail {
	keys := make([]string, 0, len(profile))
	for key, value := range profile {
		if _, mapped := profileMappedKeys[key]; mapped {
			continue
		}
		if value == nil || value == "" {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	rows := make([]credential.Detail, 0, len(keys))
	for _, key := range keys {
		rows = append(rows, credential.Detail{
			Label: FormatLabel(key),
			Value: FormatValue(profile[key]),
		})
	}
	return rows
}

// FormatLabel turns a snake_case field name into a title-cased label.
func FormatLabel(key string) string {
	parts := strings.Split(key, "_")
	for i, part := range parts {
		if part == "" {
			continue
		}
		parts[i] = strings.ToUpper(part[:1]) + part[1:]
	}
	return strings.Join(parts, " ")
}

// FormatValue renders an arbitrary payload value for display: booleans as
// Yes/No, lists joined with ", ", nested objects as compact JSON.
func FormatValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case bool:
		if v {
			return "Yes"
		}
		return "No"
	case string:
		return v
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, FormatValue(item))
		}
		return strings.Join(parts, ", ")
	case map[string]any:
		if b, err := json.Marshal(v); err == nil {
			return string(b)
		}
		return fmt.Sprintf("%v", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}

func firstStr(m map[string]any, keys ...string) string {
	for _, key := range keys {
		if s := str(m, key); s != "" {
			return s
		}
	}
	return ""
}
