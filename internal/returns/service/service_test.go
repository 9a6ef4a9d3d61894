package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/haulzy/haulzy-backend/internal/activity"
	"github.com/haulzy/haulzy-backend/internal/events"
	"github.com/haulzy/haulzy-backend/internal/functions"
	"github.com/haulzy/haulzy-backend/internal/functions/functionstest"
	"github.com/haulzy/haulzy-backend/internal/records"
	"github.com/haulzy/haulzy-backend/internal/returns/domain"
	"github.com/haulzy/haulzy-backend/internal/store"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type failingList struct {
	store.Store
	collection string
}

func (f failingList) List(ctx context.Context, collection string) ([]store.Document, error) {
	if collection == f.collection {
		return nil, errors.New("permission denied")
	}
	return f.Store.List(ctx, collection)
}

type captured struct {
	mu      sync.Mutex
	entries []activity.Entry
	events  []events.Event
}

func (c *captured) Record(_ context.Context, e activity.Entry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append(c.entries, e)
	return nil
}

func (c *captured) ListRecent(context.Context, int) ([]activity.Entry, error) { return nil, nil }

func (c *captured) Publish(_ context.Context, e events.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, e)
}

func seedFixture() *store.MemoryStore {
	s := store.NewMemoryStore()
	s.Seed("pickups/p1", map[string]any{
		"address":       "12 Main St",
		"reference":     "R-100",
		"customerName":  "Ana",
		"scheduledTime": "2024-05-01T10:00",
		"items": []any{
			map[string]any{"name": "Lamp", "size": "L"},
			"i-ref-string",
			map[string]any{"itemId": "emb-2", "name": "Rug", "status": "Returned"},
		},
	})
	s.Seed("pickups/p1/items/a", map[string]any{
		"name":             "Shoes",
		"status":           "Scanned",
		"returnLocationId": "loc1",
		"photo":            map[string]any{"url": "http://img/p.jpg"},
		"quantity":         2,
	})
	s.Seed("pickups/p1/items/b", map[string]any{
		"description":       "Blender",
		"notes":             "fragile",
		"dropoffLocationId": "loc-missing",
	})
	s.Seed("pickups/p2", map[string]any{
		"pickupAddress": map[string]any{"street": "9 Oak", "city": "Reno"},
	})
	s.Seed("pickups/p2/items/c", map[string]any{"status": "processing", "qrUrl": "http://img/qr.png"})
	s.Seed("return_locations/loc1", map[string]any{"name": "UPS Store", "address": "1 Depot Rd"})
	s.Seed("return_locations/loc2", map[string]any{"address": map[string]any{"street": "2 Dock", "city": "Reno"}})
	return s
}

func newService(s store.Store, caller functions.Caller, c *captured) *ReturnsService {
	svc := NewReturnsService(s, caller, c, c, nil)
	svc.now = func() time.Time { return time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC) }
	return svc
}

func ids(items []domain.ItemView) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.ID)
	}
	return out
}

func TestReturnsService_ListItems(t *testing.T) {
	svc := newService(seedFixture(), functionstest.New(), &captured{})
	ctx := context.Background()

	list, err := svc.ListItems(ctx, domain.Filter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c", "p1-0", "emb-2"}, ids(list.Items))
	assert.Equal(t, 5, list.Total)
	assert.Equal(t, 5, list.Matched)

	t.Run("item views carry pickup context", func(t *testing.T) {
		a := list.Items[0]
		assert.Equal(t, "p1", a.PickupID)
		assert.Equal(t, "Shoes", a.Name)
		assert.Equal(t, "2", a.Quantity)
		assert.Equal(t, "http://img/p.jpg", a.PhotoURL)
		assert.Equal(t, "UPS Store", a.ReturnLocation)
		assert.Equal(t, "12 Main St", a.PickupAddress)
		assert.Equal(t, "R-100", a.PickupReference)
		assert.Equal(t, "Ana", a.CustomerName)
		assert.Equal(t, records.ColorActive, a.StatusColor)
		require.NotNil(t, a.PickupScheduled)
		assert.Equal(t, 10, a.PickupScheduled.Hour())

		b := list.Items[1]
		assert.Equal(t, "Blender", b.Name)
		assert.Equal(t, domain.StatusPending, b.Status)
		assert.Equal(t, "Return location not found: loc-missing", b.ReturnLocation)

		c := list.Items[2]
		assert.Equal(t, "9 Oak • Reno", c.PickupAddress)
		assert.Equal(t, "http://img/qr.png", c.QRURL)
		assert.Equal(t, records.Placeholder, c.ReturnLocation)
		assert.Equal(t, records.Placeholder, c.PickupScheduledLabel)
	})

	t.Run("embedded items get deterministic ids", func(t *testing.T) {
		lamp := list.Items[3]
		assert.True(t, lamp.Embedded)
		assert.Equal(t, "Lamp", lamp.Name)
		assert.Equal(t, "L", lamp.Size)

		again, err := svc.ListItems(ctx, domain.Filter{})
		require.NoError(t, err)
		assert.Equal(t, "p1-0", again.Items[3].ID)
	})
}

func TestReturnsService_Filter(t *testing.T) {
	svc := newService(seedFixture(), functionstest.New(), &captured{})
	ctx := context.Background()

	cases := []struct {
		name   string
		filter domain.Filter
		want   []string
	}{
		{"status ignores case", domain.Filter{Status: "scanned"}, []string{"a"}},
		{"missing status counts as pending", domain.Filter{Status: "PENDING"}, []string{"b", "p1-0"}},
		{"all status", domain.Filter{Status: "all"}, []string{"a", "b", "c", "p1-0", "emb-2"}},
		{"term over notes", domain.Filter{Term: "Fragile"}, []string{"b"}},
		{"term over customer", domain.Filter{Term: " ana "}, []string{"a", "b", "p1-0", "emb-2"}},
		{"term over reference", domain.Filter{Term: "r-100", Status: "returned"}, []string{"emb-2"}},
		{"return location", domain.Filter{ReturnLocationID: "loc1"}, []string{"a"}},
		{"no match", domain.Filter{Term: "piano"}, []string{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			list, err := svc.ListItems(ctx, tc.filter)
			require.NoError(t, err)
			assert.Equal(t, tc.want, ids(list.Items))
			assert.Equal(t, len(tc.want), list.Matched)
			assert.Equal(t, 5, list.Total)
		})
	}
}

func TestReturnsService_ListItemsWithFailures(t *testing.T) {
	ctx := context.Background()

	t.Run("failing sub-collection contributes nothing", func(t *testing.T) {
		s := failingList{Store: seedFixture(), collection: "pickups/p1/items"}
		list, err := newService(s, functionstest.New(), &captured{}).ListItems(ctx, domain.Filter{})
		require.NoError(t, err)
		assert.Equal(t, []string{"c", "p1-0", "emb-2"}, ids(list.Items))
	})

	t.Run("failing return locations fall back to ids", func(t *testing.T) {
		s := failingList{Store: seedFixture(), collection: store.ReturnLocations}
		list, err := newService(s, functionstest.New(), &captured{}).ListItems(ctx, domain.Filter{Status: "scanned"})
		require.NoError(t, err)
		require.Len(t, list.Items, 1)
		assert.Equal(t, "loc1", list.Items[0].ReturnLocation)
	})

	t.Run("failing pickups is an error", func(t *testing.T) {
		s := failingList{Store: seedFixture(), collection: store.Pickups}
		_, err := newService(s, functionstest.New(), &captured{}).ListItems(ctx, domain.Filter{})
		assert.Error(t, err)
	})
}

func TestReturnsService_ListReturnLocations(t *testing.T) {
	svc := newService(seedFixture(), functionstest.New(), &captured{})
	locs, err := svc.ListReturnLocations(context.Background())
	require.NoError(t, err)
	require.Len(t, locs, 2)
	assert.Equal(t, "2 Dock • Reno", locs[0].Name)
	assert.Equal(t, domain.ReturnLocation{ID: "loc1", Name: "UPS Store", Address: "1 Depot Rd"}, locs[1])
}

func TestReturnsService_UpdateStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("processing stamps processedAt", func(t *testing.T) {
		s := seedFixture()
		c := &captured{}
		require.NoError(t, newService(s, functionstest.New(), c).UpdateStatus(ctx, "admin-1", "p1", "b", "Processing"))

		doc, err := s.Get(ctx, "pickups/p1/items/b")
		require.NoError(t, err)
		assert.Equal(t, "processing", doc.Data["status"])
		assert.IsType(t, time.Time{}, doc.Data["processedAt"])
		assert.IsType(t, time.Time{}, doc.Data["updatedAt"])
		assert.NotContains(t, doc.Data, "returnedAt")

		require.Len(t, c.entries, 1)
		assert.Equal(t, activity.ActionItemStatus, c.entries[0].Action)
		assert.Equal(t, "pickups/p1/items/b", c.entries[0].Target)
		require.Len(t, c.events, 1)
		assert.Equal(t, events.ItemStatusChanged, c.events[0].Type)
		assert.Equal(t, "processing", c.events[0].Status)
	})

	t.Run("returned stamps returnedAt", func(t *testing.T) {
		s := seedFixture()
		require.NoError(t, newService(s, functionstest.New(), &captured{}).UpdateStatus(ctx, "admin-1", "p2", "c", "returned"))
		doc, err := s.Get(ctx, "pickups/p2/items/c")
		require.NoError(t, err)
		assert.IsType(t, time.Time{}, doc.Data["returnedAt"])
	})

	t.Run("rejects unknown status and missing items", func(t *testing.T) {
		c := &captured{}
		svc := newService(seedFixture(), functionstest.New(), c)
		assert.ErrorIs(t, svc.UpdateStatus(ctx, "admin-1", "p1", "b", "Hauled Off"), domain.ErrInvalidStatus)
		assert.ErrorIs(t, svc.UpdateStatus(ctx, "admin-1", "p1", "zzz", "pending"), domain.ErrItemNotFound)
		assert.ErrorIs(t, svc.UpdateStatus(ctx, "admin-1", "p1", "", "pending"), domain.ErrMissingItemID)
		assert.Empty(t, c.entries)
		assert.Empty(t, c.events)
	})

	t.Run("rejects ids that escape the pickup", func(t *testing.T) {
		s := seedFixture()
		s.Seed("items/b", map[string]any{"status": "pending"})
		c := &captured{}
		svc := newService(s, functionstest.New(), c)

		for _, ids := range [][2]string{{"..", "b"}, {".", "b"}, {"p1", ".."}, {"p1/items", "b"}, {"p1", "b/x"}} {
			err := svc.UpdateStatus(ctx, "admin-1", ids[0], ids[1], "returned")
			assert.ErrorIs(t, err, store.ErrInvalidID, "ids=%v", ids)
		}
		doc, err := s.Get(ctx, "items/b")
		require.NoError(t, err)
		assert.Equal(t, "pending", doc.Data["status"])
		assert.Empty(t, c.entries)
	})
}

func TestReturnsService_ScanIn(t *testing.T) {
	ctx := context.Background()

	t.Run("sends canonical casing", func(t *testing.T) {
		stub := functionstest.New().Respond(functions.ScanInItem, map[string]any{"ok": true})
		c := &captured{}
		res, err := newService(seedFixture(), stub, c).ScanIn(ctx, "admin-1", "a", "hauled OFF")
		require.NoError(t, err)

		assert.Equal(t, domain.ScanHauledOff, res.Status)
		assert.Equal(t, true, res.Result["ok"])
		require.Len(t, stub.Invocations, 1)
		inv := stub.Invocations[0]
		assert.False(t, inv.Callable)
		assert.Equal(t, map[string]any{"itemId": "a", "status": "Hauled Off"}, inv.Payload)
		require.Len(t, c.events, 1)
		assert.Equal(t, events.ItemScanned, c.events[0].Type)
	})

	t.Run("unknown status never reaches the function", func(t *testing.T) {
		stub := functionstest.New()
		_, err := newService(seedFixture(), stub, &captured{}).ScanIn(ctx, "admin-1", "a", "returned")
		assert.ErrorIs(t, err, domain.ErrInvalidScanStatus)
		assert.Zero(t, stub.Count(functions.ScanInItem))
	})

	t.Run("ids with path segments never reach the function", func(t *testing.T) {
		stub := functionstest.New()
		_, err := newService(seedFixture(), stub, &captured{}).ScanIn(ctx, "admin-1", "../a", "Scanned")
		assert.ErrorIs(t, err, store.ErrInvalidID)
		assert.Zero(t, stub.Count(functions.ScanInItem))
	})

	t.Run("remote failure is reported", func(t *testing.T) {
		stub := functionstest.New().Fail(functions.ScanInItem, &functions.CallError{
			Function: functions.ScanInItem, HTTPStatus: 404, Status: "NOT_FOUND", Message: "no such item",
		})
		c := &captured{}
		_, err := newService(seedFixture(), stub, c).ScanIn(ctx, "admin-1", "a", "Scanned")
		require.Error(t, err)
		ce, ok := functions.IsCallError(err)
		require.True(t, ok)
		assert.Equal(t, "no such item", ce.Message)
		assert.Empty(t, c.events)
	})
}
