package verify

import (
	"context"
	"net/http"

	"idverify/internal/everify"
)

// Poll is a cancellable consent-polling task. Cancel is idempotent; Done is
// closed when the poll goroutine exits for any reason.
type Poll struct {
	tracking string
	cancel   context.CancelFunc
	done     chan struct{}
}

func (p *Poll) Cancel() { p.cancel() }

func (p *Poll) Done() <-chan struct{} { return p.done }

func (p *Poll) Tracking() string { return p.tracking }

// startPoll launches the consent-polling sub-machine for a tracking
// reference. The poll outlives the originating request, so it runs on its
// own context rather than the request's.
func (s *Service) startPoll(tracking string, seq uint64, base Result) *Poll {
	ctx, cancel := context.WithCancel(context.Background())
	p := &Poll{tracking: tracking, cancel: cancel, done: make(chan struct{})}
	go s.runPoll(ctx, p, seq, base)
	return p
}

// runPoll queries the profile endpoint at a fixed interval up to the
// attempt ceiling. A 404, an unready profile, or any error counts as "not
// yet ready" and the loop continues. Exhaustion keeps the pending status
// and only swaps in a guidance message.
func (s *Service) runPoll(ctx context.Context, p *Poll, seq uint64, base Result) {
	defer close(p.done)

	for attempt := 1; attempt <= s.pollAttempts; attempt++ {
		timer := s.clk.Timer(s.pollInterval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}

		s.metrics.IncrementPollAttempts()
		raw, code, err := s.registry.Profile(ctx, p.tracking)
		if err != nil || code == http.StatusNotFound || code < 200 || code >= 300 {
			continue
		}

		profile := everify.ExtractProfile(raw)
		if len(profile) == 0 || !everify.ProfileReady(profile) {
			continue
		}

		res := base
		res.Status = StatusValid
		res.Message = ""
		res.DisplayData = everify.ProfilePersonalInfo(profile)
		res.Details = everify.ProfileDetails(profile)
		s.record(ctx, StatusValid, TypeEVerify)
		s.metrics.ObserveVerification(string(TypeEVerify), string(StatusValid))
		s.publish(seq, res)
		return
	}

	res := base
	res.Message = msgConsentTimedOut
	s.publish(seq, res)
}
