package verify

import "idverify/internal/credential"

// Status is the terminal outcome of one verification attempt.
type Status string

const (
	StatusValid     Status = "VALID"
	StatusInvalid   Status = "INVALID"
	StatusTampered  Status = "TAMPERED"
	StatusActivated Status = "ACTIVATED"
	StatusRevoked   Status = "REVOKED"
	StatusOffline   Status = "OFFLINE"
	StatusError     Status = "ERROR"
	StatusPending   Status = "PENDING"
)

// IDType tags which of the three recognized conventions produced a result.
type IDType string

const (
	TypePhilID  IDType = "PhilID"
	TypeEPhilID IDType = "ePhilID"
	TypeEVerify IDType = "eVerify"
)

// Result is the terminal artifact of a verification pipeline. It is
// immutable once produced; a new scan produces a new Result and discards
// the old one.
type Result struct {
	Status      Status                   `json:"status"`
	Type        IDType                   `json:"type"`
	Data        *credential.Credential   `json:"data,omitempty"`
	DisplayData *credential.PersonalInfo `json:"display_data,omitempty"`
	Message     string                   `json:"message,omitempty"`
	Details     []credential.Detail      `json:"details,omitempty"`
	Tracking    string                   `json:"tracking,omitempty"`
}
