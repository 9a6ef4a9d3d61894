package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/haulzy/haulzy-backend/internal/records"
	"github.com/haulzy/haulzy-backend/internal/returns/domain"
	"github.com/haulzy/haulzy-backend/internal/store"
)

const fetchConcurrency = 8

var (
	photoKeys          = []string{"photo.url", "driverPhoto.url", "photoUrl"}
	qrKeys             = []string{"qrCode.url", "qrUrl", "qrCodeUrl"}
	returnLocationKeys = []string{"returnLocationId", "dropoffLocationId", "returnLocation.id"}
	embeddedIDKeys     = []string{"id", "itemId"}
)

// pickupContext is the part of a pickup copied onto each of its items.
type pickupContext struct {
	id        string
	address   string
	reference string
	customer  string
	data      map[string]any
}

func newPickupContext(doc store.Document) pickupContext {
	return pickupContext{
		id:        doc.ID,
		address:   records.PickupAddress(doc.Data),
		reference: records.String(doc.Data, "reference"),
		customer:  records.String(doc.Data, "customerName"),
		data:      doc.Data,
	}
}

// loadItems reads every pickup's items sub-collection and the items embedded
// in pickup records. A sub-collection that fails to load contributes nothing.
func (s *ReturnsService) loadItems(ctx context.Context) ([]domain.ItemView, error) {
	pickups, err := s.store.List(ctx, store.Pickups)
	if err != nil {
		return nil, fmt.Errorf("list pickups: %w", err)
	}

	locations := s.locationIndex(ctx)

	perPickup := make([][]domain.ItemView, len(pickups))
	var g errgroup.Group
	g.SetLimit(fetchConcurrency)
	for i, doc := range pickups {
		g.Go(func() error {
			pc := newPickupContext(doc)
			docs, err := s.store.List(ctx, store.Doc(store.Pickups, doc.ID, store.Items))
			if err != nil {
				s.log.Warn("failed to load pickup items", zap.String("pickup_id", doc.ID), zap.Error(err))
				return nil
			}
			views := make([]domain.ItemView, 0, len(docs))
			for _, item := range docs {
				views = append(views, itemView(item.ID, item.Data, pc, locations))
			}
			perPickup[i] = views
			return nil
		})
	}
	_ = g.Wait()

	out := make([]domain.ItemView, 0)
	for _, views := range perPickup {
		out = append(out, views...)
	}
	for _, doc := range pickups {
		out = append(out, embeddedItems(newPickupContext(doc), locations)...)
	}
	return out, nil
}

func embeddedItems(pc pickupContext, locations records.Index) []domain.ItemView {
	list := records.List(pc.data["items"])
	out := make([]domain.ItemView, 0, len(list))
	for i, entry := range list {
		m, ok := entry.(map[string]any)
		if !ok {
			continue
		}
		id := records.String(m, embeddedIDKeys...)
		if id == "" {
			id = fmt.Sprintf("%s-%d", pc.id, i)
		}
		v := itemView(id, m, pc, locations)
		v.Embedded = true
		out = append(out, v)
	}
	return out
}

func itemView(id string, item map[string]any, pc pickupContext, locations records.Index) domain.ItemView {
	name := records.String(item, "name", "description")
	if name == "" {
		name = "Item " + id
	}

	scheduled := records.FirstDate(pc.data, records.PickupScheduleKeys...)
	status := records.ItemStatus(item)
	locationID := records.String(item, returnLocationKeys...)

	return domain.ItemView{
		ID:                   id,
		PickupID:             pc.id,
		Name:                 name,
		Description:          records.String(item, "description"),
		Quantity:             records.String(item, "quantity"),
		Size:                 records.String(item, "size"),
		Notes:                records.String(item, "notes"),
		PhotoURL:             records.String(item, photoKeys...),
		QRURL:                records.String(item, qrKeys...),
		ReturnLocationID:     locationID,
		ReturnLocation:       locationLabel(item, locationID, locations),
		Status:               status,
		StatusColor:          records.StatusColor(status),
		PickupAddress:        records.OrPlaceholder(pc.address),
		PickupReference:      pc.reference,
		CustomerName:         pc.customer,
		PickupScheduled:      scheduled,
		PickupScheduledLabel: records.FormatDateTime(scheduled),
	}
}

func locationLabel(item map[string]any, id string, locations records.Index) string {
	if embedded, ok := item["returnLocation"].(map[string]any); ok {
		if name := locationName(embedded); name != "" {
			return name
		}
	}
	if id == "" {
		return records.Placeholder
	}
	if locations == nil {
		return id
	}
	loc, ok := locations[id]
	if !ok {
		return records.NotFoundLabel("Return location", id)
	}
	if name := locationName(loc); name != "" {
		return name
	}
	return id
}

func locationName(loc map[string]any) string {
	if name := records.String(loc, "name", "title", "label"); name != "" {
		return name
	}
	return records.FormatAddress(loc["address"])
}

// locationIndex returns nil when return locations cannot be read, in which
// case labels fall back to raw ids.
func (s *ReturnsService) locationIndex(ctx context.Context) records.Index {
	docs, err := s.store.List(ctx, store.ReturnLocations)
	if err != nil {
		s.log.Warn("failed to load return locations", zap.Error(err))
		return nil
	}
	return store.Index(docs)
}

func matches(v domain.ItemView, f domain.Filter) bool {
	if !records.MatchStatus(v.Status, f.Status) {
		return false
	}
	if loc := strings.TrimSpace(f.ReturnLocationID); loc != "" && !strings.EqualFold(loc, "all") && v.ReturnLocationID != loc {
		return false
	}
	return records.MatchTerm(f.Term,
		v.Name,
		v.Description,
		v.PickupAddress,
		v.PickupReference,
		v.CustomerName,
		v.Size,
		v.Notes,
	)
}

func sortLocations(locs []domain.ReturnLocation) {
	sort.SliceStable(locs, func(i, j int) bool {
		return strings.ToLower(locs[i].Name) < strings.ToLower(locs[j].Name)
	})
}
