package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/weldpoly/quotecart-backend/internal/cart"
	"github.com/weldpoly/quotecart-backend/internal/render"
	"github.com/weldpoly/quotecart-backend/pkg/events"
	"github.com/weldpoly/quotecart-backend/pkg/logger"
)

// Visibility is the modal's only explicit state.
type Visibility string

const (
	Closed Visibility = "closed"
	Open   Visibility = "open"
)

// DefaultCoalesceDelay is the trailing-edge window that folds notification
// bursts into a single refresh.
const DefaultCoalesceDelay = 75 * time.Millisecond

// Subscriber is the cross-instance notification source; the redis client
// satisfies it.
type Subscriber interface {
	Subscribe(ctx context.Context, channel string) (<-chan string, func() error, error)
}

// Snapshot is everything dependent UI reads after a refresh: the rendered
// modal, the nav badge count, the modal visibility and the membership set
// spare-part toggles paint their checked state from.
type Snapshot struct {
	View       render.View    `json:"view"`
	Count      int            `json:"count"`
	Visibility Visibility     `json:"visibility"`
	SpareParts map[string]int `json:"spare_parts"`
}

// Params bundles the syncer dependencies.
type Params struct {
	Store         *cart.Store
	Renderer      *render.Renderer
	Bus           *events.Bus
	Subscriber    Subscriber
	EventsChannel string
	CoalesceDelay time.Duration
	Logger        *logger.Logger
}

// Syncer reacts to cart change notifications, both same-process bus events and
// the storage backend's cross-instance channel, by reloading and re-rendering
// the affected session. Bursts coalesce into one refresh per session.
type Syncer struct {
	store    *cart.Store
	renderer *render.Renderer
	sub      Subscriber
	channel  string
	delay    time.Duration
	logg     *logger.Logger

	mu        sync.Mutex
	sessions  map[string]*sessionState
	refreshes int
}

type sessionState struct {
	visibility Visibility
	snapshot   Snapshot
	rendered   bool
	timer      *time.Timer
}

// New builds a syncer and subscribes it to the in-process bus.
func New(params Params) (*Syncer, error) {
	if params.Store == nil {
		return nil, fmt.Errorf("cart store is required")
	}
	if params.Renderer == nil {
		return nil, fmt.Errorf("renderer is required")
	}
	if params.Bus == nil {
		return nil, fmt.Errorf("event bus is required")
	}
	delay := params.CoalesceDelay
	if delay <= 0 {
		delay = DefaultCoalesceDelay
	}

	s := &Syncer{
		store:    params.Store,
		renderer: params.Renderer,
		sub:      params.Subscriber,
		channel:  params.EventsChannel,
		delay:    delay,
		logg:     params.Logger,
		sessions: map[string]*sessionState{},
	}
	params.Bus.Subscribe(func(evt events.Event) {
		s.scheduleRefresh(evt.SessionID)
	})
	return s, nil
}

// Run consumes the cross-instance channel until the context is cancelled.
// Other instances' saves land here; the local bus already covered our own.
func (s *Syncer) Run(ctx context.Context) error {
	if s.sub == nil || s.channel == "" {
		<-ctx.Done()
		return ctx.Err()
	}

	msgs, stop, err := s.sub.Subscribe(ctx, s.channel)
	if err != nil {
		return err
	}
	defer func() {
		if err := stop(); err != nil && s.logg != nil {
			s.logg.Warn(ctx, "closing cart events subscription: "+err.Error())
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case payload, ok := <-msgs:
			if !ok {
				return nil
			}
			var evt events.Event
			if err := json.Unmarshal([]byte(payload), &evt); err != nil {
				if s.logg != nil {
					s.logg.Warn(ctx, "malformed cart event payload: "+err.Error())
				}
				continue
			}
			s.scheduleRefresh(evt.SessionID)
		}
	}
}

// OpenCart transitions the session's modal to Open and refreshes immediately
// so the view is never stale when shown.
func (s *Syncer) OpenCart(ctx context.Context, sessionID string) Snapshot {
	s.mu.Lock()
	state := s.sessionLocked(sessionID)
	state.visibility = Open
	s.mu.Unlock()

	s.refresh(ctx, sessionID)
	return s.Snapshot(ctx, sessionID)
}

// Refresh re-renders the session synchronously and returns the result.
// Mutation handlers use it so their response reflects the write they just
// made; the coalescing timer only covers notification-driven refreshes.
func (s *Syncer) Refresh(ctx context.Context, sessionID string) Snapshot {
	s.refresh(ctx, sessionID)
	return s.Snapshot(ctx, sessionID)
}

// CloseCart transitions the session's modal to Closed.
func (s *Syncer) CloseCart(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessionLocked(sessionID).visibility = Closed
}

// Visibility reports the session's current modal state.
func (s *Syncer) Visibility(sessionID string) Visibility {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessionLocked(sessionID).visibility
}

// Snapshot returns the session's current view, computing it synchronously
// when no refresh has run yet.
func (s *Syncer) Snapshot(ctx context.Context, sessionID string) Snapshot {
	s.mu.Lock()
	state := s.sessionLocked(sessionID)
	if state.rendered {
		snap := state.snapshot
		snap.Visibility = state.visibility
		s.mu.Unlock()
		return snap
	}
	s.mu.Unlock()

	s.refresh(ctx, sessionID)

	s.mu.Lock()
	defer s.mu.Unlock()
	state = s.sessionLocked(sessionID)
	snap := state.snapshot
	snap.Visibility = state.visibility
	return snap
}

// scheduleRefresh arms (or re-arms) the session's trailing-edge timer.
func (s *Syncer) scheduleRefresh(sessionID string) {
	if sessionID == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	state := s.sessionLocked(sessionID)
	if state.timer != nil {
		state.timer.Stop()
	}
	state.timer = time.AfterFunc(s.delay, func() {
		s.refresh(context.Background(), sessionID)
	})
}

// refresh reloads, re-renders and republishes the session snapshot. Each pass
// replaces the previous snapshot wholesale, so overlapping passes cannot
// interleave partial states.
func (s *Syncer) refresh(ctx context.Context, sessionID string) {
	c := s.store.Load(ctx, sessionID)
	view, err := s.renderer.Render(c)
	if err != nil {
		if s.logg != nil {
			s.logg.Error(ctx, "modal render failed", err)
		}
		return
	}

	spareParts := make(map[string]int)
	for _, item := range c {
		if item.IsSparePart {
			spareParts[item.Key().Encode()] = item.Qty
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	state := s.sessionLocked(sessionID)
	state.snapshot = Snapshot{
		View:       view,
		Count:      len(c),
		SpareParts: spareParts,
	}
	state.rendered = true
	s.refreshes++
}

// sessionLocked returns the session state, creating it Closed on first use.
// Callers hold s.mu.
func (s *Syncer) sessionLocked(sessionID string) *sessionState {
	state, ok := s.sessions[sessionID]
	if !ok {
		state = &sessionState{visibility: Closed}
		s.sessions[sessionID] = state
	}
	return state
}

func (s *Syncer) refreshCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshes
}
