package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/weldpoly/quotecart-backend/pkg/events"
	"github.com/weldpoly/quotecart-backend/pkg/logger"
	"github.com/weldpoly/quotecart-backend/pkg/metrics"
)

// DefaultTTL is the cart envelope time-to-live applied when none is configured.
const DefaultTTL = time.Hour

// storageTTLMargin pads the key expiry past the envelope TTL so Load can still
// observe the stale timestamp and emit the expiry event.
const storageTTLMargin = 5 * time.Minute

// Storage is the key-value surface the store persists cart envelopes to. The
// redis client satisfies it in production; MemoryStorage backs tests.
type Storage interface {
	Lookup(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	CartKey(sessionID string) string
	CartSavedAtKey(sessionID string) string
}

// Publisher fans change notifications out to other running instances.
type Publisher interface {
	Publish(ctx context.Context, channel string, payload any) error
}

// ProductInput carries the fields of an add-to-quote action.
type ProductInput struct {
	Title       string
	Description string
	Slug        string
	SizeRange   string
}

// SparePartInput carries the fields of a spare-part toggle action.
type SparePartInput struct {
	Title       string
	Description string
	ParentTitle string
	ParentSlug  string
}

// StoreParams bundles the store dependencies.
type StoreParams struct {
	Storage       Storage
	Bus           *events.Bus
	Publisher     Publisher
	EventsChannel string
	TTL           time.Duration
	Logger        *logger.Logger
	Metrics       *metrics.CartMetrics
	Now           func() time.Time
}

// Store owns the persisted cart envelope: load, save, expire, merge-dedupe and
// every mutation entry point. Each mutation performs its own fresh load right
// before mutating, which narrows the read-modify-write race window between
// concurrent instances; MergeDuplicates on load repairs what still slips
// through.
type Store struct {
	storage Storage
	bus     *events.Bus
	pub     Publisher
	channel string
	ttl     time.Duration
	logg    *logger.Logger
	metrics *metrics.CartMetrics
	now     func() time.Time
}

// NewStore validates the dependencies and builds a Store.
func NewStore(params StoreParams) (*Store, error) {
	if params.Storage == nil {
		return nil, fmt.Errorf("storage is required")
	}
	if params.Bus == nil {
		return nil, fmt.Errorf("event bus is required")
	}
	ttl := params.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Store{
		storage: params.Storage,
		bus:     params.Bus,
		pub:     params.Publisher,
		channel: params.EventsChannel,
		ttl:     ttl,
		logg:    params.Logger,
		metrics: params.Metrics,
		now:     now,
	}, nil
}

// Load reads the persisted envelope for the session. A missing envelope yields
// an empty cart. An envelope older than the TTL is cleared and CartExpired
// fires before the empty cart is returned. Malformed payloads degrade to an
// empty cart; Load never returns an error to its caller.
func (s *Store) Load(ctx context.Context, sessionID string) Cart {
	cartKey := s.storage.CartKey(sessionID)
	savedAtKey := s.storage.CartSavedAtKey(sessionID)

	if raw, ok, err := s.storage.Lookup(ctx, savedAtKey); err != nil {
		s.warn(ctx, "cart timestamp read failed", err)
	} else if ok {
		savedAt, parseErr := strconv.ParseInt(raw, 10, 64)
		if parseErr != nil {
			s.warn(ctx, "cart timestamp malformed", parseErr)
		} else if s.now().UnixMilli()-savedAt > s.ttl.Milliseconds() {
			if delErr := s.storage.Del(ctx, cartKey, savedAtKey); delErr != nil {
				s.warn(ctx, "clearing expired cart failed", delErr)
			}
			s.metrics.IncExpiration()
			s.emit(ctx, events.Event{Name: events.CartExpired, SessionID: sessionID})
			return Cart{}
		}
	}

	raw, ok, err := s.storage.Lookup(ctx, cartKey)
	if err != nil {
		s.warn(ctx, "cart read failed", err)
		return Cart{}
	}
	if !ok {
		return Cart{}
	}

	var loaded Cart
	if err := json.Unmarshal([]byte(raw), &loaded); err != nil {
		s.warn(ctx, "cart payload malformed, resetting", err)
		return Cart{}
	}
	return MergeDuplicates(loaded)
}

// Save persists the cart with a fresh timestamp and emits CartUpdated. Saving
// is the only path that refreshes the TTL clock. Storage failures are logged
// and swallowed: the session keeps its in-memory result, it just will not
// survive a reload.
func (s *Store) Save(ctx context.Context, sessionID string, c Cart) {
	payload, err := json.Marshal(c)
	if err != nil {
		s.warn(ctx, "cart serialization failed", err)
		return
	}

	cartKey := s.storage.CartKey(sessionID)
	savedAtKey := s.storage.CartSavedAtKey(sessionID)
	timestamp := strconv.FormatInt(s.now().UnixMilli(), 10)

	// Storage keys expire a little after the cart itself so an abandoned
	// session cannot leave its envelope behind forever. The timestamp check in
	// Load stays authoritative for the exact cutoff.
	storageTTL := s.ttl + storageTTLMargin

	if err := s.storage.Set(ctx, cartKey, string(payload), storageTTL); err != nil {
		s.warn(ctx, "cart write failed", err)
		return
	}
	if err := s.storage.Set(ctx, savedAtKey, timestamp, storageTTL); err != nil {
		s.warn(ctx, "cart timestamp write failed", err)
	}

	s.emit(ctx, events.Event{Name: events.CartUpdated, SessionID: sessionID})
}

// AddProduct increments an existing product entry or appends a new one with
// qty 1. Returns the resulting cart and whether the entry was newly added.
func (s *Store) AddProduct(ctx context.Context, sessionID string, input ProductInput) (Cart, bool) {
	start := s.now()
	c := s.Load(ctx, sessionID)

	entry := Item{
		Title:            input.Title,
		Description:      input.Description,
		Qty:              1,
		ProductSlug:      input.Slug,
		ProductSizeRange: input.SizeRange,
	}

	added := false
	if at := c.IndexOf(entry.Key()); at >= 0 {
		c[at].Qty++
	} else {
		c = append(c, entry)
		added = true
	}

	s.Save(ctx, sessionID, c)
	s.observe("add_product", start)
	return c, added
}

// ToggleSparePart removes the spare part when present, otherwise inserts it
// with qty 1, inserting the parent product entry first when the cart does not
// hold it yet.
func (s *Store) ToggleSparePart(ctx context.Context, sessionID string, input SparePartInput) (Cart, bool) {
	start := s.now()
	c := s.Load(ctx, sessionID)

	entry := Item{
		Title:              input.Title,
		Description:        input.Description,
		Qty:                1,
		IsSparePart:        true,
		ParentProductTitle: input.ParentTitle,
		ParentProductSlug:  input.ParentSlug,
	}

	if at := c.IndexOf(entry.Key()); at >= 0 {
		c = append(c[:at], c[at+1:]...)
		s.Save(ctx, sessionID, c)
		s.observe("toggle_spare_part", start)
		return c, false
	}

	parent := Item{
		Title:       input.ParentTitle,
		Qty:         1,
		ProductSlug: input.ParentSlug,
	}
	if c.IndexOf(parent.Key()) < 0 {
		c = append(c, parent)
	}
	c = append(c, entry)

	s.Save(ctx, sessionID, c)
	s.observe("toggle_spare_part", start)
	return c, true
}

// ChangeQty applies a quantity delta to the entry with the given key. Product
// quantities floor at 1; a spare part driven to zero or below is removed. An
// unknown key leaves the cart untouched.
func (s *Store) ChangeQty(ctx context.Context, sessionID string, key IdentityKey, delta int) Cart {
	start := s.now()
	c := s.Load(ctx, sessionID)

	at := c.IndexOf(key)
	if at < 0 {
		return c
	}

	next := c[at].Qty + delta
	if c[at].IsSparePart {
		if next <= 0 {
			c = append(c[:at], c[at+1:]...)
		} else {
			c[at].Qty = next
		}
	} else {
		if next < 1 {
			next = 1
		}
		c[at].Qty = next
	}

	s.Save(ctx, sessionID, c)
	s.observe("change_qty", start)
	return c
}

// Remove deletes the entry with the given key. Removing a product cascades to
// every spare part referencing it; removing a spare part never touches its
// parent.
func (s *Store) Remove(ctx context.Context, sessionID string, key IdentityKey) Cart {
	start := s.now()
	c := s.Load(ctx, sessionID)

	at := c.IndexOf(key)
	if at < 0 {
		return c
	}

	target := c[at]
	kept := make(Cart, 0, len(c))
	for i, item := range c {
		if i == at {
			continue
		}
		if !target.IsSparePart && matchesParent(target, item) {
			continue
		}
		kept = append(kept, item)
	}

	s.Save(ctx, sessionID, kept)
	s.observe("remove", start)
	return kept
}

// Count returns the number of entries in the session's cart.
func (s *Store) Count(ctx context.Context, sessionID string) int {
	return len(s.Load(ctx, sessionID))
}

// TTL exposes the configured envelope time-to-live.
func (s *Store) TTL() time.Duration {
	return s.ttl
}

func (s *Store) emit(ctx context.Context, evt events.Event) {
	s.bus.Publish(evt)
	if s.pub == nil || s.channel == "" {
		return
	}
	payload, err := json.Marshal(evt)
	if err != nil {
		s.warn(ctx, "event serialization failed", err)
		return
	}
	if err := s.pub.Publish(ctx, s.channel, string(payload)); err != nil {
		s.warn(ctx, "event publish failed", err)
	}
}

func (s *Store) observe(op string, start time.Time) {
	s.metrics.IncOperation(op, "ok")
	s.metrics.ObserveOperation(op, s.now().Sub(start))
}

func (s *Store) warn(ctx context.Context, msg string, err error) {
	if s.logg == nil {
		return
	}
	s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), msg)
}
