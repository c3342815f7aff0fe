package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores, codecs, and clients
// return these (optionally wrapped) so services can translate them into
// terminal verification statuses without string matching.
//
// - ErrNotFound: entity does not exist (cache miss, profile not ready)
// - ErrExpired: cached value past its TTL
// - ErrDecode: malformed base45/CBOR/JSON input, never retried
// - ErrSignature: cryptographic verification failed or crypto input malformed
// - ErrUnavailable: upstream registry unreachable or returned garbage
var (
	ErrNotFound    = errors.New("not found")
	ErrExpired     = errors.New("expired")
	ErrDecode      = errors.New("decode failed")
	ErrSignature   = errors.New("signature invalid")
	ErrUnavailable = errors.New("unavailable")
)
