package credential

import (
	"context"

	"github.com/fxamacker/cbor/v2"
	"github.com/veraison/go-cose"
)

// EnvelopeChecker reports whether an ePhilID QR carries a structurally
// sound COSE envelope. The state machine treats it as an opaque yes/no
// collaborator and decodes the claims bytes independently of its verdict.
type EnvelopeChecker interface {
	Check(ctx context.Context, qr string) bool
}

// COSEChecker validates the envelope as an untagged COSE_Sign1 message and
// requires the payload to decode as a CBOR claims map.
type COSEChecker struct{}

func NewCOSEChecker() *COSEChecker {
	return &COSEChecker{}
}

func (c *COSEChecker) Check(_ context.Context, qr string) bool {
	raw, err := decodeBody(qr)
	if err != nil {
		return false
	}

	var msg cose.UntaggedSign1Message
	if err := cbor.Unmarshal(raw, &msg); err != nil {
		return false
	}
	if len(msg.Payload) == 0 || len(msg.Signature) == 0 {
		return false
	}

	var claims map[any]any
	return cbor.Unmarshal(msg.Payload, &claims) == nil
}
