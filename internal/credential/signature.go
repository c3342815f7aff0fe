package credential

import (
	"crypto/ed25519"
	"encoding/base64"
	"strings"
)

// DefaultPublicKey is the built-in PhilSys signing key, used when no
// operator override is configured.
const DefaultPublicKey = "vD3czlgHEpf2sxGcri6iTm4zeEEA+jfd9tTq9S8zxe8="

var signatureSanitizer = strings.NewReplacer("ñ", "?", "Ñ", "?")

// SanitizeSigningMessage replaces ñ/Ñ with a literal "?" before signature
// verification. The issuer computed signatures over payloads with this
// substitution applied, so it must be reproduced, not fixed.
func SanitizeSigningMessage(msg string) string {
	return signatureSanitizer.Replace(msg)
}

// VerifyEdDSA checks the detached Ed25519 signature over the canonical
// signing payload. Signature and public key are base64. Malformed base64 or
// wrong-length inputs count as verification failure, never as an error.
func VerifyEdDSA(msg, signatureB64, publicKeyB64 string) bool {
	if publicKeyB64 == "" {
		publicKeyB64 = DefaultPublicKey
	}

	sig, err := base64.StdEncoding.DecodeString(signatureB64)
	if err != nil || len(sig) != ed25519.SignatureSize {
		return false
	}
	pub, err := base64.StdEncoding.DecodeString(publicKeyB64)
	if err != nil || len(pub) != ed25519.PublicKeySize {
		return false
	}

	message := []byte(SanitizeSigningMessage(msg))
	return ed25519.Verify(ed25519.PublicKey(pub), message, sig)
}
