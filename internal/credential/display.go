package credential

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FingerNames maps PhilSys best-finger indices to finger names. Indices run
// right hand first (1-5), then left (6-10).
var FingerNames = map[string]string{
	"1":  "Right Thumb",
	"2":  "Right Index Finger",
	"3":  "Right Middle Finger",
	"4":  "Right Ring Finger",
	"5":  "Right Little Finger",
	"6":  "Left Thumb",
	"7":  "Left Index Finger",
	"8":  "Left Middle Finger",
	"9":  "Left Ring Finger",
	"10": "Left Little Finger",
}

var monthNames = map[string]string{
	"01": "January", "02": "February", "03": "March", "04": "April",
	"05": "May", "06": "June", "07": "July", "08": "August",
	"09": "September", "10": "October", "11": "November", "12": "December",
}

// fingerFallback is shown whenever best-finger data is absent or malformed.
const fingerFallback = "Best capture finger not detected."

// MonthReadable renders a YYYY-MM-DD date as "Month DD, YYYY". Anything
// that does not split into three parts is returned unchanged.
func MonthReadable(date string) string {
	parts := strings.Split(date, "-")
	if len(parts) != 3 {
		return date
	}
	month, ok := monthNames[parts[1]]
	if !ok {
		month = parts[1]
	}
	return fmt.Sprintf("%s %s, %s", month, parts[2], parts[0])
}

// FormatFingerData decodes the serialized best-finger index pair into
// readable finger names. Malformed or missing data yields the fallback
// string, never an error.
func FormatFingerData(raw string) string {
	if raw == "" {
		return fingerFallback
	}

	var indices []any
	if err := json.Unmarshal([]byte(raw), &indices); err != nil || len(indices) < 2 {
		return fingerFallback
	}

	return fmt.Sprintf("%s, %s", fingerName(indices[0]), fingerName(indices[1]))
}

func fingerName(idx any) string {
	var key string
	switch v := idx.(type) {
	case string:
		key = v
	case float64:
		key = fmt.Sprintf("%.0f", v)
	default:
		key = fmt.Sprintf("%v", v)
	}
	if name, ok := FingerNames[key]; ok {
		return name
	}
	return "Unknown"
}

// Display projects a canonical (ePhilID) credential for presentation. The
// date of birth is rendered human-readable on this path only.
func Display(c Credential) PersonalInfo {
	dateIssued := c.DateIssued
	if dateIssued == "" {
		dateIssued = "Not Printed"
	}
	return PersonalInfo{
		Image:             c.Image,
		LastName:          c.Subject.LastName,
		FirstName:         c.Subject.FirstName,
		MiddleName:        c.Subject.MiddleName,
		Suffix:            c.Subject.Suffix,
		Sex:               c.Subject.Sex,
		DateOfBirth:       MonthReadable(c.Subject.DOB),
		PlaceOfBirth:      c.Subject.POB,
		PCN:               c.Subject.PCN,
		DateOfIssuance:    dateIssued,
		BestCaptureFinger: FormatFingerData(c.Subject.BestFinger),
	}
}

// DisplayLegacy projects a legacy credential for presentation. The date of
// birth stays exactly as printed on the card; legacy records store it
// differently downstream, so the asymmetry with Display is intentional.
func DisplayLegacy(c Legacy) PersonalInfo {
	dateIssued := c.DateIssued
	if dateIssued == "" {
		dateIssued = "Not Printed"
	}
	return PersonalInfo{
		LastName:          c.Subject.LastName,
		FirstName:         c.Subject.FirstName,
		MiddleName:        c.Subject.MiddleName,
		Suffix:            c.Subject.Suffix,
		Sex:               c.Subject.Sex,
		DateOfBirth:       c.Subject.DOB,
		PlaceOfBirth:      c.Subject.POB,
		PCN:               c.Subject.PCN,
		DateOfIssuance:    dateIssued,
		BestCaptureFinger: FormatFingerData(c.Subject.BestFinger),
	}
}
