package credential

// LegacySubject carries the subject block of a legacy PhilID QR payload.
// JSON tags match the upstream wire names exactly; the signature covers
// these fields in this order, so none of them may be renamed.
type LegacySubject struct {
	Suffix     string `json:"Suffix"`
	LastName   string `json:"lName"`
	FirstName  string `json:"fName"`
	MiddleName string `json:"mName"`
	Sex        string `json:"sex"`
	BestFinger string `json:"BF"`
	DOB        string `json:"DOB"`
	POB        string `json:"POB"`
	PCN        string `json:"PCN"`
}

// Legacy is the version 1 PhilID wire format: plain JSON with a detached
// EdDSA signature. Attacker-supplied until VerifyEdDSA succeeds.
type Legacy struct {
	DateIssued string        `json:"DateIssued"`
	Issuer     string        `json:"Issuer"`
	Subject    LegacySubject `json:"subject"`
	Signature  string        `json:"signature"`
	Alg        string        `json:"alg"`
}

// Subject is the canonical subject record shared by both wire formats.
// The short JSON keys are the ePhilID claim names; the PhilSys online
// verifier expects exactly this shape.
type Subject struct {
	BestFinger string `json:"BF"`
	DOB        string `json:"DOB"`
	PCN        string `json:"PCN"`
	POB        string `json:"POB"`
	FirstName  string `json:"fn"`
	LastName   string `json:"ln"`
	MiddleName string `json:"mn"`
	Sex        string `json:"s"`
	Suffix     string `json:"sf"`
}

// Credential is the canonical credential both wire formats map into.
// Fields double as registry-lookup keys and display values.
type Credential struct {
	DateIssued string  `json:"d"`
	Issuer     string  `json:"i"`
	Image      string  `json:"img"`
	Subject    Subject `json:"sb"`
}

// PersonalInfo is the read-only display projection of a credential or a
// registry profile. It never round-trips back into Credential.
type PersonalInfo struct {
	Image             string `json:"image,omitempty"`
	ImageURL          string `json:"image_url,omitempty"`
	LastName          string `json:"last_name"`
	FirstName         string `json:"first_name"`
	MiddleName        string `json:"middle_name"`
	Suffix            string `json:"suffix"`
	Sex               string `json:"sex"`
	DateOfBirth       string `json:"date_of_birth"`
	PlaceOfBirth      string `json:"place_of_birth"`
	PCN               string `json:"pcn"`
	DateOfIssuance    string `json:"date_of_issuance"`
	BestCaptureFinger string `json:"best_capture_finger"`
}

// Detail is one label/value row rendered under the personal info block.
type Detail struct {
	Label string `json:"label"`
	Value string `json:"value"`
}
