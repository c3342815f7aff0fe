package verify

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/minvws/base45-go/base45"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"idverify/internal/credential"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeStatus struct {
	code int
	err  error
}

func (f *fakeStatus) VerifyOnline(_ context.Context, _ *credential.Credential) (int, error) {
	return f.code, f.err
}

type fakeRegistry struct {
	mu sync.Mutex

	checkResp map[string]any
	checkCode int
	checkErr  error

	profileResp  map[string]any
	profileCode  int
	profileErr   error
	profileCalls int
}

func (f *fakeRegistry) Check(_ context.Context, _ string) (map[string]any, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.checkResp, f.checkCode, f.checkErr
}

func (f *fakeRegistry) Profile(_ context.Context, _ string) (map[string]any, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.profileCalls++
	return f.profileResp, f.profileCode, f.profileErr
}

func (f *fakeRegistry) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.profileCalls
}

type fakeEnvelope struct{ ok bool }

func (f *fakeEnvelope) Check(_ context.Context, _ string) bool { return f.ok }

type recordedEvent struct {
	Status string
	IDType string
}

type fakeRecorder struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (f *fakeRecorder) Record(_ context.Context, status, idType string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, recordedEvent{status, idType})
}

func (f *fakeRecorder) all() []recordedEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recordedEvent(nil), f.events...)
}

// signedLegacyQR builds a legacy PhilID JSON payload with a valid detached
// signature, returning the JSON and the matching public key.
func signedLegacyQR(t *testing.T) (string, string) {
	t.Helper()

	legacy := credential.Legacy{
		DateIssued: "2021-05-10",
		Issuer:     "PSA",
		Subject: credential.LegacySubject{
			LastName:  "DELA CRUZ",
			FirstName: "JUAN",
			Sex:       "Male",
			DOB:       "1990-01-15",
			POB:       "MANILA",
			PCN:       "1234-5678-9012-3456",
		},
		Alg: "EDDSA",
	}

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	payload := credential.SigningPayload(legacy)
	sig := ed25519.Sign(priv, []byte(credential.SanitizeSigningMessage(payload)))
	legacy.Signature = base64.StdEncoding.EncodeToString(sig)

	raw, err := json.Marshal(legacy)
	require.NoError(t, err)
	return string(raw), base64.StdEncoding.EncodeToString(pub)
}

// ephilQR builds a decodable ePhilID QR string around the given claims.
func ephilQR(t *testing.T, claims map[int]any) string {
	t.Helper()

	payload, err := cbor.Marshal(claims)
	require.NoError(t, err)
	envelope, err := cbor.Marshal([]any{
		[]byte{0xa0}, map[string]any{}, payload, []byte{0x01, 0x02},
	})
	require.NoError(t, err)
	enc, err := base45.Base45Encode(envelope)
	require.NoError(t, err)
	return "PH1:" + string(enc)
}

func TestVerifyLegacyActivated(t *testing.T) {
	raw, pub := signedLegacyQR(t)
	recorder := &fakeRecorder{}
	svc := New(Options{
		Status:    &fakeStatus{code: http.StatusOK},
		Recorder:  recorder,
		PublicKey: pub,
	}, discardLogger())

	res := svc.Verify(context.Background(), raw, false)

	assert.Equal(t, StatusActivated, res.Status)
	assert.Equal(t, TypePhilID, res.Type)
	require.NotNil(t, res.Data)
	assert.Equal(t, "1234567890123456", res.Data.Subject.PCN)
	require.NotNil(t, res.DisplayData)
	assert.Equal(t, "1990-01-15", res.DisplayData.DateOfBirth)

	current, ok := svc.Current()
	require.True(t, ok)
	assert.Equal(t, StatusActivated, current.Status)

	assert.Equal(t, []recordedEvent{
		{"VALID", "PhilID"},
		{"ACTIVATED", "PhilID"},
	}, recorder.all())
}

func TestVerifyLegacyOffline(t *testing.T) {
	raw, pub := signedLegacyQR(t)
	svc := New(Options{PublicKey: pub}, discardLogger())

	res := svc.Verify(context.Background(), raw, true)

	assert.Equal(t, StatusOffline, res.Status)
	assert.Equal(t, "Offline verification - signature is valid", res.Message)
	require.NotNil(t, res.Data)
}

func TestVerifyLegacyRevoked(t *testing.T) {
	raw, pub := signedLegacyQR(t)
	svc := New(Options{
		Status:    &fakeStatus{code: http.StatusNotFound},
		PublicKey: pub,
	}, discardLogger())

	res := svc.Verify(context.Background(), raw, false)
	assert.Equal(t, StatusRevoked, res.Status)
}

func TestVerifyLegacyOnlineErrorPreservesData(t *testing.T) {
	raw, pub := signedLegacyQR(t)
	svc := New(Options{
		Status:    &fakeStatus{err: errors.New("connection refused")},
		PublicKey: pub,
	}, discardLogger())

	res := svc.Verify(context.Background(), raw, false)

	assert.Equal(t, StatusError, res.Status)
	assert.Equal(t, "Online verification failed", res.Message)
	require.NotNil(t, res.Data)
	require.NotNil(t, res.DisplayData)
}

func TestVerifyLegacyBadSignature(t *testing.T) {
	raw, _ := signedLegacyQR(t)
	// Verifying against a different key fails signature verification.
	_, otherPub := signedLegacyQR(t)
	svc := New(Options{PublicKey: otherPub}, discardLogger())

	res := svc.Verify(context.Background(), raw, false)

	assert.Equal(t, StatusInvalid, res.Status)
	assert.Equal(t, "Signature verification failed", res.Message)
}

func TestVerifyLegacyUnparsableJSON(t *testing.T) {
	svc := New(Options{}, discardLogger())

	// Valid JSON, wrong shape.
	res := svc.Verify(context.Background(), `{"DateIssued": 5}`, false)

	assert.Equal(t, StatusInvalid, res.Status)
	assert.Equal(t, TypePhilID, res.Type)
	assert.Equal(t, "Invalid PhilID format", res.Message)
}

func TestVerifyEPhilIDOffline(t *testing.T) {
	svc := New(Options{Envelope: &fakeEnvelope{ok: true}}, discardLogger())

	res := svc.Verify(context.Background(), "PH1:NOTDECODED", true)

	assert.Equal(t, StatusOffline, res.Status)
	assert.Equal(t, TypeEPhilID, res.Type)
	assert.Equal(t, "Internet connection required for ePhilID verification", res.Message)
	assert.Nil(t, res.Data)
}

func TestVerifyEPhilIDEnvelopeRejected(t *testing.T) {
	svc := New(Options{Envelope: &fakeEnvelope{ok: false}}, discardLogger())

	res := svc.Verify(context.Background(), "PH1:GARBAGE", false)

	assert.Equal(t, StatusInvalid, res.Status)
	assert.Equal(t, "COSE signature verification failed", res.Message)
}

func TestVerifyEPhilIDDecodeFailure(t *testing.T) {
	svc := New(Options{Envelope: &fakeEnvelope{ok: true}}, discardLogger())

	res := svc.Verify(context.Background(), "PH1:GARBAGE", false)

	assert.Equal(t, StatusInvalid, res.Status)
	assert.Equal(t, "Failed to decode ePhilID data", res.Message)
}

func TestVerifyEPhilIDWrongCountry(t *testing.T) {
	qr := ephilQR(t, map[int]any{
		1:   "XX",
		169: map[string]any{"sb": map[string]any{"fn": "JUAN"}},
	})
	svc := New(Options{Envelope: &fakeEnvelope{ok: true}}, discardLogger())

	res := svc.Verify(context.Background(), qr, false)

	assert.Equal(t, StatusInvalid, res.Status)
	assert.Equal(t, "Failed to decode ePhilID data", res.Message)
}

func TestVerifyEPhilIDActivated(t *testing.T) {
	qr := ephilQR(t, map[int]any{
		1: "PH",
		169: map[string]any{
			"d": "2023-04-01",
			"i": "PSA",
			"sb": map[string]any{
				"fn": "JUAN", "ln": "DELA CRUZ", "DOB": "1990-01-15",
				"PCN": "1234567890123456",
			},
		},
	})
	svc := New(Options{
		Envelope: &fakeEnvelope{ok: true},
		Status:   &fakeStatus{code: http.StatusOK},
	}, discardLogger())

	res := svc.Verify(context.Background(), qr, false)

	assert.Equal(t, StatusActivated, res.Status)
	assert.Equal(t, TypeEPhilID, res.Type)
	require.NotNil(t, res.DisplayData)
	// The ePhilID path renders the birth date human-readable.
	assert.Equal(t, "January 15, 1990", res.DisplayData.DateOfBirth)
}

func TestVerifyEVerifyImmediateResult(t *testing.T) {
	registry := &fakeRegistry{
		checkResp: map[string]any{
			"meta": map[string]any{"qr_type": "National ID"},
			"data": map[string]any{"first_name": "JUAN", "pcn": "1234567890123456"},
		},
		checkCode: http.StatusOK,
	}
	svc := New(Options{Registry: registry}, discardLogger())

	res := svc.Verify(context.Background(), "1234567890123456", false)

	assert.Equal(t, StatusValid, res.Status)
	assert.Equal(t, TypeEVerify, res.Type)
	require.NotNil(t, res.DisplayData)
	assert.Equal(t, "JUAN", res.DisplayData.FirstName)
}

func TestVerifyEVerifyCheckFailure(t *testing.T) {
	svc := New(Options{
		Registry: &fakeRegistry{checkErr: errors.New("timeout")},
	}, discardLogger())

	res := svc.Verify(context.Background(), "1234567890123456", false)

	assert.Equal(t, StatusError, res.Status)
	assert.Equal(t, "eVerify request failed", res.Message)
}

func TestResetClearsResult(t *testing.T) {
	raw, pub := signedLegacyQR(t)
	svc := New(Options{PublicKey: pub}, discardLogger())

	svc.Verify(context.Background(), raw, true)
	_, ok := svc.Current()
	require.True(t, ok)

	svc.Reset()
	_, ok = svc.Current()
	assert.False(t, ok)
}
