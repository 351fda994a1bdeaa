package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dmitrijs2005/greenwallet/internal/client/client"
	"github.com/dmitrijs2005/greenwallet/internal/client/models"
	"github.com/dmitrijs2005/greenwallet/internal/client/security"
	"github.com/dmitrijs2005/greenwallet/internal/logging"
	"github.com/dmitrijs2005/greenwallet/internal/timex"
)

type LoadingStateKind int

const (
	Idle LoadingStateKind = iota
	Loading
	Completed
	ServerResponseHasNoChanges
	Failed
	NoInternet
)

func (k LoadingStateKind) String() string {
	switch k {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Completed:
		return "completed"
	case ServerResponseHasNoChanges:
		return "serverResponseHasNoChanges"
	case Failed:
		return "failed"
	case NoInternet:
		return "noInternet"
	}
	return "unknown"
}

// LoadingState is the progress of the last refresh. Silently is meaningful
// while Loading, Err when Failed.
type LoadingState struct {
	Kind     LoadingStateKind
	Silently bool
	Err      *RefreshError
}

func (s LoadingState) Equal(o LoadingState) bool {
	return s.Kind == o.Kind && s.Silently == o.Silently && s.Err == o.Err
}

type RefreshErrorKind int

const (
	// NetworkFailure is a transient transport failure worth retrying.
	NetworkFailure RefreshErrorKind = iota
	// IssuanceFailure is any other failure of the green card loader.
	IssuanceFailure
	// StorageFailure means the wallet could not be read.
	StorageFailure
)

type RefreshError struct {
	Kind      RefreshErrorKind
	Network   client.NetworkError
	Issuance  *IssuanceError
	Err       error
	Timestamp time.Time
}

func (e *RefreshError) Error() string {
	switch e.Kind {
	case NetworkFailure:
		return "refresh: " + e.Network.Error()
	case IssuanceFailure:
		if e.Issuance != nil {
			return "refresh: " + e.Issuance.Error()
		}
	}
	if e.Err != nil {
		return "refresh: " + e.Err.Error()
	}
	return "refresh failed"
}

func (e *RefreshError) Unwrap() error {
	switch {
	case e.Issuance != nil:
		return e.Issuance
	case e.Err != nil:
		return e.Err
	case e.Kind == NetworkFailure:
		return e.Network
	}
	return nil
}

// State is what the dashboard renders about credential renewal.
type State struct {
	LoadingState                            LoadingState
	CredentialExpiryState                   CredentialExpiryState
	UserHasPreviouslyDismissedALoadingError bool
	HasLoadingEverFailed                    bool
	ErrorOccurenceCount                     int
}

func (s State) IsNonsilentlyLoading() bool {
	return s.LoadingState.Kind == Loading && !s.LoadingState.Silently
}

func (s State) Equal(o State) bool {
	return s.LoadingState.Equal(o.LoadingState) &&
		s.CredentialExpiryState.Equal(o.CredentialExpiryState) &&
		s.UserHasPreviouslyDismissedALoadingError == o.UserHasPreviouslyDismissedALoadingError &&
		s.HasLoadingEverFailed == o.HasLoadingEverFailed &&
		s.ErrorOccurenceCount == o.ErrorOccurenceCount
}

// GreenCardSource lists the green cards that still have an unexpired origin.
type GreenCardSource interface {
	GreencardsWithUnexpiredOrigins(ctx context.Context, now time.Time, types ...models.OriginType) ([]models.GreenCard, error)
}

type RefresherOptions struct {
	// RenewalDays is used when the remote configuration carries none.
	RenewalDays int
	// ForegroundCooldown is the minimum time between the last attempt and a
	// retry triggered by DidBecomeActive.
	ForegroundCooldown time.Duration
	Clock              timex.Clock
	Logger             logging.Logger
}

const (
	DefaultRenewalDays        = 5
	DefaultForegroundCooldown = 10 * time.Minute
)

// Refresher keeps the domestic credentials of the wallet from running out.
type Refresher struct {
	loader GreenCardLoader
	cards  GreenCardSource
	remote security.RemoteConfigurationSource

	renewalDays int
	cooldown    time.Duration
	now         timex.Clock
	log         logging.Logger

	mu          sync.Mutex
	state       State
	lastAttempt time.Time
	subscribers []func(old *State, new State)
}

// NewRefresher computes the initial expiry state from cards. remote may be
// nil.
func NewRefresher(ctx context.Context, loader GreenCardLoader, cards GreenCardSource, remote security.RemoteConfigurationSource, opts RefresherOptions) (*Refresher, error) {
	r := &Refresher{
		loader:      loader,
		cards:       cards,
		remote:      remote,
		renewalDays: opts.RenewalDays,
		cooldown:    opts.ForegroundCooldown,
		now:         opts.Clock,
		log:         logging.OrNop(opts.Logger),
	}
	if r.renewalDays <= 0 {
		r.renewalDays = DefaultRenewalDays
	}
	if r.cooldown <= 0 {
		r.cooldown = DefaultForegroundCooldown
	}
	if r.now == nil {
		r.now = timex.SystemClock
	}

	expiry, err := r.expiryState(ctx)
	if err != nil {
		return nil, err
	}
	r.state.CredentialExpiryState = expiry
	return r, nil
}

func (r *Refresher) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// OnUpdate registers fn. It is called with the current state straight away
// (old is nil) and after every change. Calls run on their own goroutine.
func (r *Refresher) OnUpdate(fn func(old *State, new State)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.subscribers = append(r.subscribers, fn)
	current := r.state
	go fn(nil, current)
}

func (r *Refresher) UserDismissedALoadingError() {
	r.update(func(s *State) { s.UserHasPreviouslyDismissedALoadingError = true })
}

// Load refreshes the green cards when the credentials are about to run out
// or have already. It returns once the attempt is over; a Load while another
// is in flight returns immediately.
func (r *Refresher) Load(ctx context.Context) {
	r.mu.Lock()
	if r.state.LoadingState.Kind == Loading {
		r.mu.Unlock()
		r.log.Debug(ctx, "refresh already in flight")
		return
	}
	r.mu.Unlock()

	expiry, err := r.expiryState(ctx)
	if err != nil {
		r.fail(ctx, &RefreshError{Kind: StorageFailure, Err: err, Timestamp: r.now()})
		return
	}

	var start, silently bool
	r.update(func(s *State) {
		if s.LoadingState.Kind == Loading {
			return
		}
		s.CredentialExpiryState = expiry
		if expiry.Kind == NoActionNeeded {
			return
		}
		start = true
		r.lastAttempt = r.now()
		silently = !s.HasLoadingEverFailed && expiry.Kind != Expired
		s.LoadingState = LoadingState{Kind: Loading, Silently: silently}
	})
	if !start {
		return
	}

	r.log.Info(ctx, "refreshing credentials", "expiry", expiry.Kind, "silently", silently)
	_, err = r.loader.SignTheEventsIntoGreenCardsAndCredentials(ctx, nil)
	if err != nil {
		if r.interrupted(ctx) {
			return
		}
		r.handleLoadError(ctx, err)
		return
	}

	after, err := r.expiryState(ctx)
	if err != nil {
		if r.interrupted(ctx) {
			return
		}
		r.fail(ctx, &RefreshError{Kind: StorageFailure, Err: err, Timestamp: r.now()})
		return
	}
	r.update(func(s *State) {
		if after.Equal(expiry) {
			s.LoadingState = LoadingState{Kind: ServerResponseHasNoChanges}
			return
		}
		s.LoadingState = LoadingState{Kind: Completed}
		s.CredentialExpiryState = after
	})
}

// Reachable retries a load that failed for lack of connectivity.
func (r *Refresher) Reachable(ctx context.Context) {
	if r.State().LoadingState.Kind != NoInternet {
		return
	}
	r.Load(ctx)
}

// DidBecomeActive retries a failed load once the cooldown since the last
// attempt has passed.
func (r *Refresher) DidBecomeActive(ctx context.Context) {
	r.mu.Lock()
	failed := r.state.LoadingState.Kind == Failed
	elapsed := r.now().Sub(r.lastAttempt)
	r.mu.Unlock()

	if !failed || elapsed < r.cooldown {
		return
	}
	r.Load(ctx)
}

// interrupted reports whether ctx ended during a load. The attempt then
// leaves no trace: the refresher goes back to idle and nothing is counted.
func (r *Refresher) interrupted(ctx context.Context) bool {
	if ctx.Err() == nil {
		return false
	}
	r.log.Info(ctx, "refresh interrupted", "error", ctx.Err())
	r.update(func(s *State) { s.LoadingState = LoadingState{Kind: Idle} })
	return true
}

func (r *Refresher) handleLoadError(ctx context.Context, err error) {
	var ie *IssuanceError
	if !errors.As(err, &ie) {
		r.fail(ctx, &RefreshError{Kind: IssuanceFailure, Err: err, Timestamp: r.now()})
		return
	}

	if ie.Server != nil {
		switch ie.Server.Err {
		case client.NoInternetConnection:
			r.log.Info(ctx, "refresh postponed, no internet connection")
			r.update(func(s *State) {
				s.LoadingState = LoadingState{Kind: NoInternet}
				s.HasLoadingEverFailed = true
			})
			return
		case client.ServerBusy,
			client.ServerUnreachableTimedOut,
			client.ServerUnreachableInvalidHost,
			client.ServerUnreachableConnectionLost,
			client.InvalidSignature,
			client.AuthenticationCancelled:
			r.fail(ctx, &RefreshError{Kind: NetworkFailure, Network: ie.Server.Err, Timestamp: r.now()})
			return
		}
	}
	r.fail(ctx, &RefreshError{Kind: IssuanceFailure, Issuance: ie, Timestamp: r.now()})
}

func (r *Refresher) fail(ctx context.Context, rerr *RefreshError) {
	r.log.Warn(ctx, "refresh failed", "error", rerr)
	r.update(func(s *State) {
		s.LoadingState = LoadingState{Kind: Failed, Err: rerr}
		s.HasLoadingEverFailed = true
		s.ErrorOccurenceCount++
	})
}

// update applies fn and notifies subscribers when the state changed.
func (r *Refresher) update(fn func(s *State)) {
	r.mu.Lock()
	defer r.mu.Unlock()

	old := r.state
	fn(&r.state)
	if old.Equal(r.state) {
		return
	}
	current := r.state
	for _, sub := range r.subscribers {
		prev := old
		go sub(&prev, current)
	}
}

func (r *Refresher) expiryState(ctx context.Context) (CredentialExpiryState, error) {
	now := r.now()

	var rc *models.RemoteConfiguration
	if r.remote != nil {
		var err error
		rc, err = r.remote.RemoteConfiguration(ctx)
		if err != nil {
			r.log.Warn(ctx, "remote configuration unavailable, using defaults", "error", err)
			rc = nil
		}
	}
	if rc.IsArchiveMode(now) {
		return CredentialExpiryState{Kind: NoActionNeeded}, nil
	}

	cards, err := r.cards.GreencardsWithUnexpiredOrigins(ctx, now)
	if err != nil {
		return CredentialExpiryState{}, err
	}
	return credentialExpiryState(cards, now, rc.RenewalDays(r.renewalDays)), nil
}
