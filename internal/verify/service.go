package verify

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"idverify/internal/credential"
	"idverify/internal/everify"
	"idverify/internal/platform/metrics"
)

// StatusClient submits a canonical credential to the PhilSys registry and
// returns the upstream HTTP status.
type StatusClient interface {
	VerifyOnline(ctx context.Context, cred *credential.Credential) (int, error)
}

// RegistryClient is the public eVerify registry surface used by the
// lookup-and-poll pipeline.
type RegistryClient interface {
	Check(ctx context.Context, value string) (map[string]any, int, error)
	Profile(ctx context.Context, tracking string) (map[string]any, int, error)
}

// Recorder logs status transitions for the scan audit trail.
type Recorder interface {
	Record(ctx context.Context, status, idType string)
}

const (
	msgInvalidFormat   = "Invalid PhilID format"
	msgSignatureFailed = "Signature verification failed"
	msgOfflineLegacy   = "Offline verification - signature is valid"
	msgOnlineFailed    = "Online verification failed"
	msgOfflineEPhilID  = "Internet connection required for ePhilID verification"
	msgCOSEFailed      = "COSE signature verification failed"
	msgDecodeFailed    = "Failed to decode ePhilID data"
	msgEVerifyFailed   = "eVerify request failed"
	msgConsentPending  = "Awaiting consent confirmation in the eGovPH app."
	msgConsentTimedOut = "Consent not confirmed yet. Ask the holder to approve the request in the eGovPH app, then scan again."
)

// Service drives the verification state machine. Only the most recently
// started scan may update the externally visible result; in-flight consent
// polls from an earlier scan are cancelled when a new one begins.
type Service struct {
	log      *slog.Logger
	metrics  *metrics.Metrics
	status   StatusClient
	registry RegistryClient
	envelope credential.EnvelopeChecker
	recorder Recorder
	clk      clock.Clock

	publicKey    string
	pollInterval time.Duration
	pollAttempts int

	mu      sync.Mutex
	seq     uint64
	current *Result
	poll    *Poll
}

// Options configures a Service. Zero poll settings fall back to the
// upstream convention of ten attempts, four seconds apart.
type Options struct {
	Status       StatusClient
	Registry     RegistryClient
	Envelope     credential.EnvelopeChecker
	Recorder     Recorder
	Metrics      *metrics.Metrics
	Clock        clock.Clock
	PublicKey    string
	PollInterval time.Duration
	PollAttempts int
}

func New(opts Options, log *slog.Logger) *Service {
	if opts.Clock == nil {
		opts.Clock = clock.New()
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = 4 * time.Second
	}
	if opts.PollAttempts <= 0 {
		opts.PollAttempts = 10
	}
	return &Service{
		log:          log,
		metrics:      opts.Metrics,
		status:       opts.Status,
		registry:     opts.Registry,
		envelope:     opts.Envelope,
		recorder:     opts.Recorder,
		clk:          opts.Clock,
		publicKey:    opts.PublicKey,
		pollInterval: opts.PollInterval,
		pollAttempts: opts.PollAttempts,
	}
}

// Verify classifies the scanned text and runs the matching pipeline to a
// terminal Result. Classification precedence: eVerify token heuristics
// first, then JSON (legacy PhilID), then ePhilID CBOR. Starting a scan
// cancels any consent poll left over from the previous one.
func (s *Service) Verify(ctx context.Context, raw string, offline bool) Result {
	s.mu.Lock()
	s.seq++
	seq := s.seq
	if s.poll != nil {
		s.poll.Cancel()
		s.poll = nil
	}
	s.mu.Unlock()

	var res Result
	trimmed := strings.TrimSpace(raw)
	switch {
	case everify.IsCandidate(trimmed):
		res = s.verifyEVerify(ctx, trimmed, seq)
	case json.Valid([]byte(raw)):
		res = s.verifyLegacy(ctx, raw, offline)
	default:
		res = s.verifyEPhilID(ctx, raw, offline)
	}

	s.metrics.ObserveVerification(string(res.Type), string(res.Status))
	s.publish(seq, res)
	return res
}

// Current returns the externally visible result of the newest scan.
func (s *Service) Current() (Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return Result{}, false
	}
	return *s.current, true
}

// Reset discards the visible result and cancels any in-flight consent poll.
func (s *Service) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	if s.poll != nil {
		s.poll.Cancel()
		s.poll = nil
	}
	s.current = nil
}

func (s *Service) verifyLegacy(ctx context.Context, raw string, offline bool) Result {
	var legacy credential.Legacy
	if err := json.Unmarshal([]byte(raw), &legacy); err != nil {
		s.record(ctx, StatusInvalid, TypePhilID)
		return Result{Status: StatusInvalid, Type: TypePhilID, Message: msgInvalidFormat}
	}

	payload := credential.SigningPayload(legacy)
	if !credential.VerifyEdDSA(payload, legacy.Signature, s.publicKey) {
		s.record(ctx, StatusTampered, TypePhilID)
		return Result{Status: StatusInvalid, Type: TypePhilID, Message: msgSignatureFailed}
	}
	s.record(ctx, StatusValid, TypePhilID)

	data := credential.FromLegacy(legacy)
	display := credential.DisplayLegacy(legacy)

	if offline {
		return Result{
			Status:      StatusOffline,
			Type:        TypePhilID,
			Data:        &data,
			DisplayData: &display,
			Message:     msgOfflineLegacy,
		}
	}
	return s.checkOnline(ctx, TypePhilID, &data, &display)
}

func (s *Service) verifyEPhilID(ctx context.Context, raw string, offline bool) Result {
	if offline {
		return Result{Status: StatusOffline, Type: TypeEPhilID, Message: msgOfflineEPhilID}
	}

	if !s.envelope.Check(ctx, raw) {
		s.record(ctx, StatusTampered, TypeEPhilID)
		return Result{Status: StatusInvalid, Type: TypeEPhilID, Message: msgCOSEFailed}
	}

	cred, err := credential.DecodeCredential(raw)
	if err != nil {
		s.log.WarnContext(ctx, "ephilid decode failed", "error", err)
		s.record(ctx, StatusInvalid, TypeEPhilID)
		return Result{Status: StatusInvalid, Type: TypeEPhilID, Message: msgDecodeFailed}
	}
	s.record(ctx, StatusValid, TypeEPhilID)

	display := credential.Display(*cred)
	return s.checkOnline(ctx, TypeEPhilID, cred, &display)
}

// checkOnline resolves the shared three-way online outcome: activated,
// revoked, or a network error that preserves the already-computed data.
func (s *Service) checkOnline(ctx context.Context, idType IDType, data *credential.Credential, display *credential.PersonalInfo) Result {
	code, err := s.status.VerifyOnline(ctx, data)
	if err != nil {
		s.log.WarnContext(ctx, "online verification failed", "type", string(idType), "error", err)
		return Result{
			Status:      StatusError,
			Type:        idType,
			Data:        data,
			DisplayData: display,
			Message:     msgOnlineFailed,
		}
	}

	if code >= 200 && code < 300 {
		s.record(ctx, StatusActivated, idType)
		return Result{Status: StatusActivated, Type: idType, Data: data, DisplayData: display}
	}
	s.record(ctx, StatusRevoked, idType)
	return Result{Status: StatusRevoked, Type: idType, Data: data, DisplayData: display}
}

func (s *Service) verifyEVerify(ctx context.Context, value string, seq uint64) Result {
	raw, code, err := s.registry.Check(ctx, value)
	if err != nil || code < 200 || code >= 300 {
		s.log.WarnContext(ctx, "everify check failed", "status", code, "error", err)
		return Result{Status: StatusError, Type: TypeEVerify, Message: msgEVerifyFailed}
	}

	norm := everify.Normalize(raw)

	if norm.Type == everify.TypeEGovPH {
		res := Result{
			Status:   StatusPending,
			Type:     TypeEVerify,
			Message:  msgConsentPending,
			Details:  everify.BuildDetails(norm),
			Tracking: norm.TrackingNumber(),
		}
		s.record(ctx, StatusPending, TypeEVerify)
		if res.Tracking != "" {
			s.mu.Lock()
			if seq == s.seq {
				s.poll = s.startPoll(res.Tracking, seq, res)
			}
			s.mu.Unlock()
		}
		// A pending payload with no tracking reference cannot be polled;
		// it stays pending until a new scan replaces it.
		return res
	}

	res := Result{
		Status:      StatusValid,
		Type:        TypeEVerify,
		DisplayData: everify.ToPersonalInfo(norm),
		Details:     everify.BuildDetails(norm),
	}
	s.record(ctx, StatusValid, TypeEVerify)
	return res
}

// publish installs a result as the externally visible one, unless a newer
// scan has started since seq was taken.
func (s *Service) publish(seq uint64, res Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.seq {
		return
	}
	s.current = &res
}

func (s *Service) record(ctx context.Context, status Status, idType IDType) {
	if s.recorder == nil {
		return
	}
	s.recorder.Record(ctx, string(status), string(idType))
}
