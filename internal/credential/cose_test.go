package credential

import (
	"context"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func coseQR(t *testing.T, payload, signature []byte) string {
	t.Helper()

	protected, err := cbor.Marshal(map[int]any{1: -8})
	require.NoError(t, err)

	envelope, err := cbor.Marshal([]any{
		protected,
		map[any]any{},
		payload,
		signature,
	})
	require.NoError(t, err)

	return "PH1:" + string(mustBase45(t, envelope))
}

func TestCOSECheckerAcceptsWellFormedEnvelope(t *testing.T) {
	payload, err := cbor.Marshal(map[int]any{1: "PH"})
	require.NoError(t, err)

	qr := coseQR(t, payload, make([]byte, 64))

	checker := NewCOSEChecker()
	assert.True(t, checker.Check(context.Background(), qr))
}

func TestCOSECheckerRejects(t *testing.T) {
	claims, err := cbor.Marshal(map[int]any{1: "PH"})
	require.NoError(t, err)

	checker := NewCOSEChecker()
	tests := []struct {
		name string
		qr   string
	}{
		{"empty", ""},
		{"not base45", "PH1:\x01\x02"},
		{"not cbor", "PH1:" + string(mustBase45(t, []byte("junk")))},
		{"empty signature", coseQR(t, claims, []byte{})},
		{"payload not a map", coseQR(t, mustCBOR(t, "just a string"), make([]byte, 64))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.False(t, checker.Check(context.Background(), tt.qr))
		})
	}
}

func mustCBOR(t *testing.T, v any) []byte {
	t.Helper()
	b, err := cbor.Marshal(v)
	require.NoError(t, err)
	return b
}
