package credential

import (
	"fmt"
	"strings"
	"time"
)

// signingTemplate reproduces the exact byte layout the issuer signed:
// field order, two-space indentation, and newlines are all load-bearing.
// Any deviation breaks signature verification against real credentials.
const signingTemplate = `{
  "DateIssued": "%s",
  "Issuer": "%s",
  "subject": {
    "Suffix": "%s",
    "lName": "%s",
    "fName": "%s",
    "mName": "%s",
    "sex": "%s",
    "BF": "%s",
    "DOB": "%s",
    "POB": "%s",
    "PCN": "%s"
  },
  "alg": "%s"
}`

// SigningPayload serializes a legacy credential into the byte sequence the
// detached signature was computed over. Values are interpolated verbatim;
// special-character handling happens in VerifyEdDSA.
func SigningPayload(c Legacy) string {
	return fmt.Sprintf(signingTemplate,
		c.DateIssued,
		c.Issuer,
		c.Subject.Suffix,
		c.Subject.LastName,
		c.Subject.FirstName,
		c.Subject.MiddleName,
		c.Subject.Sex,
		c.Subject.BestFinger,
		c.Subject.DOB,
		c.Subject.POB,
		c.Subject.PCN,
		c.Alg,
	)
}

// legacyDateLayouts covers the date spellings observed on printed PhilIDs.
var legacyDateLayouts = []string{
	"2006-01-02",
	"January 2, 2006",
	"January 02, 2006",
	"01/02/2006",
	time.RFC3339,
}

// formatLegacyDate normalizes a legacy date string to YYYY-MM-DD. Unparseable
// input is returned unchanged rather than dropped.
func formatLegacyDate(s string) string {
	trimmed := strings.TrimSpace(s)
	for _, layout := range legacyDateLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return s
}

// FromLegacy maps a signature-verified legacy credential into the canonical
// shape: dates normalized, PCN dashes stripped, no embedded photo.
func FromLegacy(c Legacy) Credential {
	return Credential{
		DateIssued: formatLegacyDate(c.DateIssued),
		Issuer:     c.Issuer,
		Image:      "",
		Subject: Subject{
			BestFinger: c.Subject.BestFinger,
			DOB:        formatLegacyDate(c.Subject.DOB),
			PCN:        strings.ReplaceAll(c.Subject.PCN, "-", ""),
			POB:        c.Subject.POB,
			FirstName:  c.Subject.FirstName,
			LastName:   c.Subject.LastName,
			MiddleName: c.Subject.MiddleName,
			Sex:        c.Subject.Sex,
			Suffix:     c.Subject.Suffix,
		},
	}
}
