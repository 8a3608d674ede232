package cart

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weldpoly/quotecart-backend/pkg/events"
)

type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestStore(t *testing.T) (*Store, *MemoryStorage, *testClock, *events.Bus) {
	t.Helper()
	storage := NewMemoryStorage()
	bus := events.NewBus()
	clock := &testClock{now: time.Unix(1_700_000_000, 0)}
	store, err := NewStore(StoreParams{
		Storage: storage,
		Bus:     bus,
		TTL:     time.Hour,
		Now:     clock.Now,
	})
	require.NoError(t, err)
	return store, storage, clock, bus
}

func TestAddProductIncrementsExisting(t *testing.T) {
	store, _, _, _ := newTestStore(t)
	ctx := context.Background()

	store.AddProduct(ctx, "s1", ProductInput{Title: "Pump A", Description: "desc"})
	c, added := store.AddProduct(ctx, "s1", ProductInput{Title: "Pump A", Description: "desc"})

	assert.False(t, added, "second add must not report a new entry")
	require.Len(t, c, 1)
	assert.Equal(t, "Pump A", c[0].Title)
	assert.Equal(t, 2, c[0].Qty)
}

func TestAddProductNormalizedIdentity(t *testing.T) {
	store, _, _, _ := newTestStore(t)
	ctx := context.Background()

	store.AddProduct(ctx, "s1", ProductInput{Title: "Pump A"})
	c, _ := store.AddProduct(ctx, "s1", ProductInput{Title: "  pump   a "})

	require.Len(t, c, 1, "identity must ignore case and whitespace")
	assert.Equal(t, 2, c[0].Qty)
}

func TestToggleSparePartInsertsParent(t *testing.T) {
	store, _, _, _ := newTestStore(t)
	ctx := context.Background()

	c, added := store.ToggleSparePart(ctx, "s1", SparePartInput{Title: "Seal Kit", ParentTitle: "Pump A"})
	require.True(t, added)
	require.Len(t, c, 2, "parent must be auto-inserted")

	assert.Equal(t, "Pump A", c[0].Title)
	assert.False(t, c[0].IsSparePart)
	assert.Equal(t, 1, c[0].Qty)

	assert.Equal(t, "Seal Kit", c[1].Title)
	assert.True(t, c[1].IsSparePart)
	assert.Equal(t, "Pump A", c[1].ParentProductTitle)
}

func TestToggleSparePartSecondCallRemoves(t *testing.T) {
	store, _, _, _ := newTestStore(t)
	ctx := context.Background()
	input := SparePartInput{Title: "Seal Kit", ParentTitle: "Pump A"}

	store.ToggleSparePart(ctx, "s1", input)
	c, added := store.ToggleSparePart(ctx, "s1", input)

	assert.False(t, added, "second toggle must remove")
	require.Len(t, c, 1)
	assert.Equal(t, "Pump A", c[0].Title)
}

func TestChangeQtyFloorsProductsAtOne(t *testing.T) {
	store, _, _, _ := newTestStore(t)
	ctx := context.Background()

	c, _ := store.AddProduct(ctx, "s1", ProductInput{Title: "Pump A"})
	key := c[0].Key()

	c = store.ChangeQty(ctx, "s1", key, -10)
	assert.Equal(t, 1, c[0].Qty, "product quantity floors at 1")

	c = store.ChangeQty(ctx, "s1", key, 3)
	assert.Equal(t, 4, c[0].Qty)
}

func TestChangeQtyRemovesSparePartAtZero(t *testing.T) {
	store, _, _, _ := newTestStore(t)
	ctx := context.Background()

	c, _ := store.ToggleSparePart(ctx, "s1", SparePartInput{Title: "Seal Kit", ParentTitle: "Pump A"})
	key := c[1].Key()

	c = store.ChangeQty(ctx, "s1", key, -1)
	assert.Negative(t, c.IndexOf(key), "spare part must be removed at qty 0")
	require.Len(t, c, 1)
	assert.Equal(t, "Pump A", c[0].Title, "parent must survive")
}

func TestRemoveProductCascadesToSpareParts(t *testing.T) {
	store, _, _, _ := newTestStore(t)
	ctx := context.Background()

	store.AddProduct(ctx, "s1", ProductInput{Title: "Pump A"})
	store.AddProduct(ctx, "s1", ProductInput{Title: "Extruder B"})
	store.ToggleSparePart(ctx, "s1", SparePartInput{Title: "Seal Kit", ParentTitle: "Pump A"})
	c, _ := store.ToggleSparePart(ctx, "s1", SparePartInput{Title: "Nozzle", ParentTitle: "Pump A"})
	require.Len(t, c, 4)

	c = store.Remove(ctx, "s1", Item{Title: "Pump A"}.Key())

	require.Len(t, c, 1, "spare parts must cascade with their parent")
	assert.Equal(t, "Extruder B", c[0].Title)
}

func TestRemoveSparePartKeepsParent(t *testing.T) {
	store, _, _, _ := newTestStore(t)
	ctx := context.Background()

	c, _ := store.ToggleSparePart(ctx, "s1", SparePartInput{Title: "Seal Kit", ParentTitle: "Pump A"})
	c = store.Remove(ctx, "s1", c[1].Key())

	require.Len(t, c, 1)
	assert.Equal(t, "Pump A", c[0].Title)
}

func TestLoadExpiresCartAfterTTL(t *testing.T) {
	store, _, clock, bus := newTestStore(t)
	ctx := context.Background()

	var expired []events.Event
	bus.Subscribe(func(evt events.Event) {
		if evt.Name == events.CartExpired {
			expired = append(expired, evt)
		}
	})

	store.AddProduct(ctx, "s1", ProductInput{Title: "Pump A"})

	clock.Advance(59 * time.Minute)
	require.Len(t, store.Load(ctx, "s1"), 1, "cart must survive within the TTL")

	clock.Advance(2 * time.Minute)
	assert.Empty(t, store.Load(ctx, "s1"), "cart must be empty past the TTL")
	require.Len(t, expired, 1)
	assert.Equal(t, "s1", expired[0].SessionID)

	// the envelope is gone for good
	assert.Empty(t, store.Load(ctx, "s1"))
}

func TestLoadDoesNotExtendTTL(t *testing.T) {
	store, storage, clock, _ := newTestStore(t)
	ctx := context.Background()

	store.AddProduct(ctx, "s1", ProductInput{Title: "Pump A"})
	savedAt, _, _ := storage.Lookup(ctx, storage.CartSavedAtKey("s1"))

	clock.Advance(30 * time.Minute)
	store.Load(ctx, "s1")

	after, _, _ := storage.Lookup(ctx, storage.CartSavedAtKey("s1"))
	assert.Equal(t, savedAt, after, "Load must not refresh the TTL clock")

	want := strconv.FormatInt(clock.Now().Add(-30*time.Minute).UnixMilli(), 10)
	assert.Equal(t, want, savedAt)
}

func TestSaveAppliesStorageTTL(t *testing.T) {
	storage := &ttlRecordingStorage{MemoryStorage: NewMemoryStorage()}
	clock := &testClock{now: time.Unix(1_700_000_000, 0)}
	store, err := NewStore(StoreParams{
		Storage: storage,
		Bus:     events.NewBus(),
		TTL:     time.Hour,
		Now:     clock.Now,
	})
	require.NoError(t, err)

	store.AddProduct(context.Background(), "s1", ProductInput{Title: "Pump A"})

	// Both keys carry a storage expiry past the envelope TTL so abandoned
	// sessions cannot accumulate forever.
	require.Len(t, storage.ttls, 2)
	for key, ttl := range storage.ttls {
		assert.Greater(t, ttl, store.TTL(), "key %s must outlive the envelope TTL", key)
	}
}

func TestLoadMalformedPayloadResets(t *testing.T) {
	store, storage, _, _ := newTestStore(t)
	ctx := context.Background()

	_ = storage.Set(ctx, storage.CartKey("s1"), "{not json", 0)
	assert.Empty(t, store.Load(ctx, "s1"), "malformed payload must yield an empty cart")

	_ = storage.Set(ctx, storage.CartKey("s1"), `{"title":"obj"}`, 0)
	assert.Empty(t, store.Load(ctx, "s1"), "non-array payload must yield an empty cart")
}

func TestLoadMergesDuplicatesWrittenByRacingInstances(t *testing.T) {
	store, storage, _, _ := newTestStore(t)
	ctx := context.Background()

	raw := `[{"title":"Seal Kit","qty":1,"isSparePart":true,"parentProductTitle":"Pump A"},` +
		`{"title":"Seal Kit","qty":2,"isSparePart":true,"parentProductTitle":"Pump A"}]`
	_ = storage.Set(ctx, storage.CartKey("s1"), raw, 0)

	c := store.Load(ctx, "s1")
	require.Len(t, c, 1)
	assert.Equal(t, 3, c[0].Qty)
}

func TestConcurrentTogglesDoNotLoseUpdates(t *testing.T) {
	// Two mutations that each reload right before writing both land, even if
	// the callers started from the same stale snapshot.
	store, _, _, _ := newTestStore(t)
	ctx := context.Background()

	stale := store.Load(ctx, "s1")
	require.Empty(t, stale)

	store.ToggleSparePart(ctx, "s1", SparePartInput{Title: "Seal Kit", ParentTitle: "Pump A"})
	store.ToggleSparePart(ctx, "s1", SparePartInput{Title: "Nozzle", ParentTitle: "Pump A"})

	c := store.Load(ctx, "s1")
	assert.GreaterOrEqual(t, c.IndexOf(Item{Title: "Seal Kit", IsSparePart: true, ParentProductTitle: "Pump A"}.Key()), 0)
	assert.GreaterOrEqual(t, c.IndexOf(Item{Title: "Nozzle", IsSparePart: true, ParentProductTitle: "Pump A"}.Key()), 0)
}

func TestSaveEmitsCartUpdated(t *testing.T) {
	store, _, _, bus := newTestStore(t)
	ctx := context.Background()

	var updates int
	bus.Subscribe(func(evt events.Event) {
		if evt.Name == events.CartUpdated && evt.SessionID == "s1" {
			updates++
		}
	})

	store.AddProduct(ctx, "s1", ProductInput{Title: "Pump A"})
	assert.Equal(t, 1, updates)
}

func TestIdentityUniquenessAcrossMixedOperations(t *testing.T) {
	store, _, _, _ := newTestStore(t)
	ctx := context.Background()

	store.AddProduct(ctx, "s1", ProductInput{Title: "Pump A"})
	store.ToggleSparePart(ctx, "s1", SparePartInput{Title: "Seal Kit", ParentTitle: "Pump A"})
	store.AddProduct(ctx, "s1", ProductInput{Title: "Pump A"})
	store.ToggleSparePart(ctx, "s1", SparePartInput{Title: "Nozzle", ParentTitle: "Pump A"})
	c, _ := store.AddProduct(ctx, "s1", ProductInput{Title: "Extruder B"})

	seen := map[IdentityKey]bool{}
	for _, item := range c {
		key := item.Key()
		require.False(t, seen[key], "duplicate identity key %+v in %+v", key, c)
		seen[key] = true
	}
}

type ttlRecordingStorage struct {
	*MemoryStorage
	ttls map[string]time.Duration
}

func (r *ttlRecordingStorage) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if r.ttls == nil {
		r.ttls = map[string]time.Duration{}
	}
	r.ttls[key] = ttl
	return r.MemoryStorage.Set(ctx, key, value, ttl)
}

type failingStorage struct {
	*MemoryStorage
	failWrites bool
}

func (f *failingStorage) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	if f.failWrites {
		return context.DeadlineExceeded
	}
	return f.MemoryStorage.Set(ctx, key, value, ttl)
}

func TestStorageFailureIsSwallowed(t *testing.T) {
	storage := &failingStorage{MemoryStorage: NewMemoryStorage(), failWrites: true}
	store, err := NewStore(StoreParams{Storage: storage, Bus: events.NewBus()})
	require.NoError(t, err)

	// the mutation's in-memory result is still returned
	c, added := store.AddProduct(context.Background(), "s1", ProductInput{Title: "Pump A"})
	require.True(t, added)
	require.Len(t, c, 1)

	// but nothing survives a reload
	assert.Empty(t, store.Load(context.Background(), "s1"))
}
