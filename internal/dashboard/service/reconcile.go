package service

import (
	"fmt"
	"maps"
	"sort"
	"time"

	"github.com/haulzy/haulzy-backend/internal/dashboard/domain"
	"github.com/haulzy/haulzy-backend/internal/records"
	"github.com/haulzy/haulzy-backend/internal/store"
)

var (
	driverRefKeys   = []string{"driverId", "driverUid", "driver"}
	customerRefKeys = []string{"customerId", "userId", "uid"}
	referenceKeys   = []string{"reference", "referenceNumber", "confirmationNumber", "orderNumber"}
	completionKeys  = []string{"returnedAt", "completedAt", "updatedAt"}
	embeddedIDKeys  = []string{"id", "itemId"}
)

// collections is one consistent read of everything the dashboard joins.
type collections struct {
	routes  []store.Document
	pickups []store.Document
	items   []store.Document
	users   []store.Document

	// pickupItems holds each pickup's items sub-collection by pickup id.
	pickupItems map[string][]store.Document
	failed      map[string]bool
}

type indexes struct {
	pickups records.Index
	items   records.Index
	users   records.Index
}

// index builds the join indexes. A section that failed to load gets a nil
// index so its references render as unloaded rather than missing.
func (c collections) index() indexes {
	return indexes{
		pickups: c.indexOf(store.Pickups, c.pickups),
		items:   c.indexOf(store.Items, c.items),
		users:   c.indexOf(store.Users, c.users),
	}
}

func (c collections) indexOf(section string, docs []store.Document) records.Index {
	if c.failed[section] {
		return nil
	}
	return store.Index(docs)
}

// forPickup overlays a pickup's own items sub-collection on the item index.
func (idx indexes) forPickup(sub []store.Document) indexes {
	if len(sub) == 0 || idx.items == nil {
		return idx
	}
	merged := make(records.Index, len(idx.items)+len(sub))
	maps.Copy(merged, idx.items)
	maps.Copy(merged, store.Index(sub))
	idx.items = merged
	return idx
}

// returnItems is every item awaiting or done with its return: pickup
// sub-collections first, then items embedded in pickups, then top-level
// items. An id already seen is counted once.
func (c collections) returnItems() []map[string]any {
	seen := map[string]bool{}
	var out []map[string]any
	add := func(id string, data map[string]any) {
		if seen[id] {
			return
		}
		seen[id] = true
		out = append(out, data)
	}

	for _, p := range c.pickups {
		for _, doc := range c.pickupItems[p.ID] {
			add(doc.ID, doc.Data)
		}
	}
	for _, p := range c.pickups {
		for i, entry := range records.List(p.Data["items"]) {
			m, ok := records.Embedded(entry)
			if !ok {
				continue
			}
			id := records.String(m, embeddedIDKeys...)
			if id == "" {
				id = fmt.Sprintf("%s-%d", p.ID, i)
			}
			add(id, m)
		}
	}
	for _, doc := range c.items {
		add(doc.ID, doc.Data)
	}
	return out
}

// reconcile builds the overview from already-fetched collections.
func reconcile(c collections, now time.Time) domain.Overview {
	idx := c.index()
	ov := domain.Overview{
		GeneratedAt: now,
		Routes: domain.RouteGroups{
			Current:  []domain.RouteView{},
			Upcoming: []domain.RouteView{},
			Past:     []domain.RouteView{},
			Unknown:  []domain.RouteView{},
		},
		Pickups: make([]domain.PickupView, 0, len(c.pickups)),
	}

	for _, doc := range c.routes {
		rv := routeView(doc, idx, now)
		switch rv.Classification {
		case records.Current:
			ov.Routes.Current = append(ov.Routes.Current, rv)
		case records.Upcoming:
			ov.Routes.Upcoming = append(ov.Routes.Upcoming, rv)
		case records.Past:
			ov.Routes.Past = append(ov.Routes.Past, rv)
		default:
			ov.Routes.Unknown = append(ov.Routes.Unknown, rv)
		}
	}
	sortRoutes(&ov.Routes)

	for _, doc := range c.pickups {
		pv := pickupView(doc, idx.forPickup(c.pickupItems[doc.ID]), now)
		ov.Pickups = append(ov.Pickups, pv)
		if pv.Classification == records.Current {
			ov.Summary.ActivePickups++
		}
		if isCompletedOn(doc.Data, now) {
			ov.Summary.CompletedToday++
		}
	}
	sort.SliceStable(ov.Pickups, func(i, j int) bool {
		return timeBefore(ov.Pickups[i].Scheduled, ov.Pickups[j].Scheduled)
	})

	for _, item := range c.returnItems() {
		status := records.String(item, "status")
		if status == "" || records.StatusBucket(status) == records.BucketPending {
			ov.Summary.PendingReturns++
		}
		if isCompletedOn(item, now) {
			ov.Summary.CompletedToday++
		}
	}

	ov.Summary.RoutesCurrent = len(ov.Routes.Current)
	ov.Summary.RoutesUpcoming = len(ov.Routes.Upcoming)
	return ov
}

func routeView(doc store.Document, idx indexes, now time.Time) domain.RouteView {
	route := doc.Data

	refsValue, _ := records.FirstValue(route, "pickups", "pickupIds")
	refs := records.Resolve(refsValue, idx.pickups, "Pickup", pickupLabel)

	window := records.RouteWindow(route, records.ResolvedData(refs))
	scheduled := records.FirstDate(route, records.RouteScheduleKeys...)
	class := records.Classify(window, scheduled, now)

	driverRef, _ := records.FirstValue(route, driverRefKeys...)

	name := records.String(route, "name", "title")
	if name == "" {
		name = "Route " + doc.ID
	}

	status := records.String(route, "status")
	if status == "" {
		status = inferredStatus(class)
	}

	pickups := make([]domain.PickupRef, 0, len(refs))
	for _, r := range refs {
		ref := domain.PickupRef{ID: r.ID, Label: r.Label, NotFound: r.NotFound, Unloaded: r.Unloaded}
		if r.Resolved() {
			ref.Address = records.OrPlaceholder(records.PickupAddress(r.Data))
			ref.Status = records.String(r.Data, "status")
		}
		pickups = append(pickups, ref)
	}

	return domain.RouteView{
		ID:             doc.ID,
		Name:           name,
		Driver:         records.ResolvePerson(records.String(route, "driverName"), driverRef, idx.users, "Driver"),
		Status:         status,
		StatusColor:    records.StatusColor(status),
		Scheduled:      scheduled,
		WindowStart:    window.Start,
		WindowEnd:      window.End,
		WindowLabel:    window.Label(),
		Classification: class,
		Pickups:        pickups,
	}
}

func pickupView(doc store.Document, idx indexes, now time.Time) domain.PickupView {
	p := doc.Data

	scheduled := records.FirstDate(p, records.PickupScheduleKeys...)
	window := records.WindowOf(p)
	class := records.Classify(window, scheduled, now)

	status := records.String(p, "status")
	if status == "" {
		status = inferredStatus(class)
	}

	customerRef, _ := records.FirstValue(p, customerRefKeys...)

	reference := records.String(p, referenceKeys...)
	if reference == "" {
		reference = doc.ID
	}

	itemsValue, _ := records.FirstValue(p, "items", "itemIds")
	refs := records.Resolve(itemsValue, idx.items, "Item", itemLabel)
	items := make([]domain.ItemRef, 0, len(refs))
	for _, r := range refs {
		ref := domain.ItemRef{ID: r.ID, Label: r.Label, NotFound: r.NotFound, Unloaded: r.Unloaded}
		if r.Resolved() {
			ref.Status = records.ItemStatus(r.Data)
			ref.StatusColor = records.StatusColor(ref.Status)
		}
		items = append(items, ref)
	}

	return domain.PickupView{
		ID:             doc.ID,
		Address:        records.OrPlaceholder(records.PickupAddress(p)),
		Customer:       records.ResolvePerson(records.String(p, "customerName"), customerRef, idx.users, "Customer"),
		Reference:      reference,
		Scheduled:      scheduled,
		ScheduledLabel: records.FormatDateTime(scheduled),
		WindowLabel:    window.Label(),
		Status:         status,
		StatusColor:    records.StatusColor(status),
		Classification: class,
		Items:          items,
	}
}

func pickupLabel(id string, data map[string]any) string {
	if addr := records.PickupAddress(data); addr != "" {
		return addr
	}
	if s := records.String(data, referenceKeys...); s != "" {
		return s
	}
	return "Pickup " + id
}

func itemLabel(id string, data map[string]any) string {
	if s := records.String(data, "name", "description"); s != "" {
		return s
	}
	return "Item " + id
}

func inferredStatus(c records.Classification) string {
	switch c {
	case records.Current:
		return "active"
	case records.Upcoming:
		return "scheduled"
	case records.Past:
		return "completed"
	}
	return "unknown"
}

func isCompletedOn(data map[string]any, now time.Time) bool {
	if records.StatusBucket(records.String(data, "status")) != records.BucketDone {
		return false
	}
	at := records.FirstDate(data, completionKeys...)
	return at != nil && records.SameDay(*at, now)
}

func sortRoutes(g *domain.RouteGroups) {
	sort.SliceStable(g.Current, func(i, j int) bool {
		return timeBefore(routeStart(g.Current[i]), routeStart(g.Current[j]))
	})
	sort.SliceStable(g.Upcoming, func(i, j int) bool {
		return timeBefore(routeStart(g.Upcoming[i]), routeStart(g.Upcoming[j]))
	})
	sort.SliceStable(g.Past, func(i, j int) bool {
		return timeBefore(routeEnd(g.Past[j]), routeEnd(g.Past[i]))
	})
	sort.SliceStable(g.Unknown, func(i, j int) bool {
		return g.Unknown[i].Name < g.Unknown[j].Name
	})
}

func routeStart(r domain.RouteView) *time.Time {
	if r.WindowStart != nil {
		return r.WindowStart
	}
	if r.Scheduled != nil {
		return r.Scheduled
	}
	return r.WindowEnd
}

func routeEnd(r domain.RouteView) *time.Time {
	if r.WindowEnd != nil {
		return r.WindowEnd
	}
	return routeStart(r)
}

// timeBefore orders nil last.
func timeBefore(a, b *time.Time) bool {
	switch {
	case a == nil:
		return false
	case b == nil:
		return true
	}
	return a.Before(*b)
}
