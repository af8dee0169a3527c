package locator

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/zatekoja/dentisalud-funnel/internal/domain/entities"
)

// ErrSessionClosed is returned when dispatching to a stopped session.
var ErrSessionClosed = errors.New("locator session closed")

// Gateway is the directory query surface a session needs.
type Gateway interface {
	SearchServicePoints(ctx context.Context, query entities.ServicePointQuery) ([]entities.ServicePoint, error)
	ListRowsByServicePoint(ctx context.Context, servicePointID string) ([]entities.DirectoryRow, error)
}

// Observer receives search outcomes, typically for metrics.
type Observer interface {
	SearchCompleted(mode, outcome string)
	StaleDiscarded()
}

// Scheduler runs f after d and returns a function that cancels it.
type Scheduler func(d time.Duration, f func()) (stop func() bool)

func timeScheduler(d time.Duration, f func()) func() bool {
	return time.AfterFunc(d, f).Stop
}

// Settings tunes a session.
type Settings struct {
	Debounce              time.Duration
	NearMeRadiusMeters    float64
	UnboundedRadiusMeters float64
	ResultLimit           int
	MinQueryLength        int
	DefaultCenter         Coordinates
}

// DefaultSettings matches the production locator.
func DefaultSettings() Settings {
	return Settings{
		Debounce:              400 * time.Millisecond,
		NearMeRadiusMeters:    10000,
		UnboundedRadiusMeters: 10000000,
		ResultLimit:           50,
		MinQueryLength:        3,
		DefaultCenter:         Coordinates{Latitude: 40.416, Longitude: -3.703},
	}
}

// QueryFor maps a filter state to gateway parameters and reports whether it
// is a near-me search. Near-me searches ignore text and region; text shorter
// than MinQueryLength is not sent.
func (st Settings) QueryFor(f FilterState) (entities.ServicePointQuery, bool) {
	q := entities.ServicePointQuery{
		Latitude:          st.DefaultCenter.Latitude,
		Longitude:         st.DefaultCenter.Longitude,
		Limit:             st.ResultLimit,
		MaxDistanceMeters: st.UnboundedRadiusMeters,
		Text:              strings.TrimSpace(f.Query),
		Region:            f.Region,
		Subregion:         f.Subregion,
		PostalCode:        f.PostalCode,
	}
	if f.NearMe != nil {
		q.Latitude = f.NearMe.Latitude
		q.Longitude = f.NearMe.Longitude
		q.MaxDistanceMeters = st.NearMeRadiusMeters
		q.OrderByDistance = true
		q.Text, q.Region, q.Subregion, q.PostalCode = "", "", "", ""
		return q, true
	}
	if len([]rune(q.Text)) < st.MinQueryLength {
		q.Text = ""
	}
	return q, false
}

// NoticeKind classifies a user-facing notice.
type NoticeKind string

const (
	NoticeQueryFailed            NoticeKind = "query_failed"
	NoticeNoResultsInRadius      NoticeKind = "no_results_in_radius"
	NoticeGeolocationUnavailable NoticeKind = "geolocation_unavailable"
)

// Notice is a transient message for the user. It never blocks the session.
type Notice struct {
	Kind    NoticeKind `json:"kind"`
	Message string     `json:"message"`
}

// Snapshot is the published, read-only state of a session.
type Snapshot struct {
	ID       string                       `json:"id"`
	Version  uint64                       `json:"version"`
	Filter   FilterState                  `json:"filter"`
	View     ViewState                    `json:"view"`
	Anchor   int                          `json:"anchor"`
	Results  []entities.ServicePoint      `json:"results"`
	Detail   *entities.ServicePointDetail `json:"detail,omitempty"`
	Loading  bool                         `json:"loading"`
	Notice   *Notice                      `json:"notice,omitempty"`
	Searches uint64                       `json:"searches"`
}

// Session is one user's locator. All state changes happen on the goroutine
// running Run; gateway calls report back through the same event queue.
type Session struct {
	id       string
	gateway  Gateway
	settings Settings
	schedule Scheduler
	observer Observer
	logger   zerolog.Logger

	events chan Event
	done   chan struct{}
	ctx    context.Context
	cancel context.CancelFunc
	once   sync.Once

	// owned by the Run goroutine
	filter        FilterState
	filterVersion uint64
	searchSeq     uint64
	detailSeq     uint64
	inFlight      int
	locating      bool
	stopTimer     func() bool
	view          ViewState
	results       []entities.ServicePoint
	detail        *entities.ServicePointDetail
	notice        *Notice
	version       uint64
	searches      uint64

	mu          sync.RWMutex
	last        Snapshot
	subscribers map[chan Snapshot]struct{}
}

// Option configures a Session.
type Option func(*Session)

// WithScheduler replaces the debounce timer source.
func WithScheduler(s Scheduler) Option {
	return func(sess *Session) { sess.schedule = s }
}

// WithObserver attaches a search outcome observer.
func WithObserver(o Observer) Option {
	return func(sess *Session) { sess.observer = o }
}

// WithLogger sets the session logger.
func WithLogger(l zerolog.Logger) Option {
	return func(sess *Session) { sess.logger = l }
}

// NewSession creates a session in its opened state. Call Run to start it.
func NewSession(id string, gateway Gateway, settings Settings, opts ...Option) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		id:          id,
		gateway:     gateway,
		settings:    settings,
		schedule:    timeScheduler,
		logger:      zerolog.Nop(),
		events:      make(chan Event, 64),
		done:        make(chan struct{}),
		ctx:         ctx,
		cancel:      cancel,
		view:        NewViewState(),
		results:     []entities.ServicePoint{},
		subscribers: make(map[chan Snapshot]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With().Str("locator_session", id).Logger()
	s.publish()
	return s
}

// ID returns the session id.
func (s *Session) ID() string { return s.id }

// Run drains the event queue until ctx is done or Close is called.
func (s *Session) Run(ctx context.Context) {
	defer s.Close()
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.ctx.Done():
			return
		case ev := <-s.events:
			ev.apply(s)
			s.publish()
		}
	}
}

// Close stops the session and releases subscribers.
func (s *Session) Close() {
	s.once.Do(func() {
		s.cancel()
		close(s.done)
		s.mu.Lock()
		for ch := range s.subscribers {
			close(ch)
		}
		s.subscribers = map[chan Snapshot]struct{}{}
		s.mu.Unlock()
	})
}

// Done is closed once the session stops.
func (s *Session) Done() <-chan struct{} { return s.done }

// Dispatch queues a user event.
func (s *Session) Dispatch(ctx context.Context, ev Event) error {
	select {
	case <-s.done:
		return ErrSessionClosed
	default:
	}
	select {
	case s.events <- ev:
		return nil
	case <-s.done:
		return ErrSessionClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// enqueue is used by timers and gateway goroutines; it drops events once closed.
func (s *Session) enqueue(ev Event) {
	select {
	case s.events <- ev:
	case <-s.done:
	}
}

// Snapshot returns the latest published state.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.last
}

// Subscribe streams snapshots, starting with the current one. Slow readers
// only ever see the most recent state. Call cancel to unsubscribe.
func (s *Session) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)
	s.mu.Lock()
	select {
	case <-s.done:
		close(ch)
		s.mu.Unlock()
		return ch, func() {}
	default:
	}
	ch <- s.last
	s.subscribers[ch] = struct{}{}
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
	}
	return ch, cancel
}

func (s *Session) publish() {
	s.version++
	results := make([]entities.ServicePoint, len(s.results))
	copy(results, s.results)

	snap := Snapshot{
		ID:       s.id,
		Version:  s.version,
		Filter:   s.filter,
		View:     s.view,
		Anchor:   s.view.Anchor(),
		Results:  results,
		Detail:   s.detail,
		Loading:  s.inFlight > 0 || s.locating,
		Notice:   s.notice,
		Searches: s.searches,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = snap
	for ch := range s.subscribers {
		select {
		case ch <- snap:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
	}
}

// setFilter records a new filter state and (re)arms the debounce timer.
func (s *Session) setFilter(next FilterState) {
	if next.Equal(s.filter) {
		return
	}
	s.filter = next
	s.filterVersion++
	s.disarm()

	if !s.filter.Triggers(s.settings.MinQueryLength) {
		return
	}
	version := s.filterVersion
	s.stopTimer = s.schedule(s.settings.Debounce, func() {
		s.enqueue(debounceElapsed{filterVersion: version})
	})
}

func (s *Session) disarm() {
	if s.stopTimer != nil {
		s.stopTimer()
		s.stopTimer = nil
	}
}

func (s *Session) buildQuery() (entities.ServicePointQuery, bool) {
	return s.settings.QueryFor(s.filter)
}

func (s *Session) dispatchSearch() {
	s.searchSeq++
	s.inFlight++
	s.searches++
	query, nearMe := s.buildQuery()
	seq, fv := s.searchSeq, s.filterVersion

	s.logger.Debug().Uint64("seq", seq).Str("text", query.Text).Str("region", query.Region).
		Bool("near_me", nearMe).Msg("dispatching service point search")

	go func() {
		points, err := s.gateway.SearchServicePoints(s.ctx, query)
		s.enqueue(searchCompleted{seq: seq, filterVersion: fv, nearMe: nearMe, points: points, err: err})
	}()
}

func (s *Session) dispatchDetail(servicePointID string) {
	s.detailSeq++
	s.inFlight++
	seq := s.detailSeq

	go func() {
		rows, err := s.gateway.ListRowsByServicePoint(s.ctx, servicePointID)
		s.enqueue(detailCompleted{seq: seq, servicePointID: servicePointID, rows: rows, err: err})
	}()
}

func (s *Session) servicePointName(id string, rows []entities.DirectoryRow) string {
	for _, sp := range s.results {
		if sp.ID == id {
			return sp.Name
		}
	}
	for _, r := range rows {
		if r.ServicePointName != "" {
			return r.ServicePointName
		}
	}
	return ""
}

func searchMode(nearMe bool) string {
	if nearMe {
		return "near_me"
	}
	return "filter"
}
