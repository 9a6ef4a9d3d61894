package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/haulzy/haulzy-backend/internal/activity"
	"github.com/haulzy/haulzy-backend/internal/events"
	"github.com/haulzy/haulzy-backend/internal/functions"
	"github.com/haulzy/haulzy-backend/internal/records"
	"github.com/haulzy/haulzy-backend/internal/returns/domain"
	"github.com/haulzy/haulzy-backend/internal/store"
)

var scanStatuses = map[string]string{
	"scanned":    domain.ScanScanned,
	"rejected":   domain.ScanRejected,
	"hauled off": domain.ScanHauledOff,
}

type ReturnsService struct {
	store     store.Store
	functions functions.Caller
	recorder  activity.Recorder
	events    events.Publisher
	log       *zap.Logger
	now       func() time.Time
}

func NewReturnsService(
	s store.Store,
	caller functions.Caller,
	recorder activity.Recorder,
	publisher events.Publisher,
	log *zap.Logger,
) *ReturnsService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ReturnsService{
		store:     s,
		functions: caller,
		recorder:  recorder,
		events:    publisher,
		log:       log,
		now:       time.Now,
	}
}

// ListItems returns every item matching f together with the unfiltered total.
func (s *ReturnsService) ListItems(ctx context.Context, f domain.Filter) (domain.ItemList, error) {
	all, err := s.loadItems(ctx)
	if err != nil {
		return domain.ItemList{}, err
	}
	matched := make([]domain.ItemView, 0, len(all))
	for _, v := range all {
		if matches(v, f) {
			matched = append(matched, v)
		}
	}
	return domain.ItemList{Items: matched, Total: len(all), Matched: len(matched)}, nil
}

func (s *ReturnsService) ListReturnLocations(ctx context.Context) ([]domain.ReturnLocation, error) {
	docs, err := s.store.List(ctx, store.ReturnLocations)
	if err != nil {
		return nil, fmt.Errorf("list return locations: %w", err)
	}
	out := make([]domain.ReturnLocation, 0, len(docs))
	for _, doc := range docs {
		name := locationName(doc.Data)
		if name == "" {
			name = "Location " + doc.ID
		}
		out = append(out, domain.ReturnLocation{
			ID:      doc.ID,
			Name:    name,
			Address: records.OrPlaceholder(records.FormatAddress(doc.Data["address"])),
		})
	}
	sortLocations(out)
	return out, nil
}

// UpdateStatus moves an item of a pickup to pending, processing or returned.
func (s *ReturnsService) UpdateStatus(ctx context.Context, actor, pickupID, itemID, status string) error {
	status = records.NormalizeStatus(status)
	fields := map[string]any{
		"status":    status,
		"updatedAt": store.ServerTimestamp,
	}
	switch status {
	case domain.StatusPending:
	case domain.StatusProcessing:
		fields["processedAt"] = store.ServerTimestamp
	case domain.StatusReturned:
		fields["returnedAt"] = store.ServerTimestamp
	default:
		return domain.ErrInvalidStatus
	}
	if strings.TrimSpace(pickupID) == "" || strings.TrimSpace(itemID) == "" {
		return domain.ErrMissingItemID
	}
	if err := store.ValidateID(pickupID); err != nil {
		return err
	}
	if err := store.ValidateID(itemID); err != nil {
		return err
	}

	collection := store.Doc(store.Pickups, pickupID, store.Items)
	if err := s.store.Update(ctx, store.Doc(collection, itemID), fields); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.ErrItemNotFound
		}
		return fmt.Errorf("update item status: %w", err)
	}

	s.record(ctx, activity.Entry{
		ActorUID: actor,
		Action:   activity.ActionItemStatus,
		Target:   store.Doc(collection, itemID),
		Details:  map[string]any{"status": status},
	})
	s.events.Publish(ctx, events.Event{
		Type:       events.ItemStatusChanged,
		Collection: collection,
		ID:         itemID,
		Status:     status,
		Actor:      actor,
		At:         s.now(),
	})
	return nil
}

// ScanIn forwards a scan decision to the scan_in_item function.
func (s *ReturnsService) ScanIn(ctx context.Context, actor, itemID, status string) (domain.ScanResult, error) {
	canonical, ok := scanStatuses[records.NormalizeStatus(status)]
	if !ok {
		return domain.ScanResult{}, domain.ErrInvalidScanStatus
	}
	if strings.TrimSpace(itemID) == "" {
		return domain.ScanResult{}, domain.ErrMissingItemID
	}
	if err := store.ValidateID(itemID); err != nil {
		return domain.ScanResult{}, err
	}

	var out map[string]any
	payload := map[string]any{"itemId": itemID, "status": canonical}
	if err := s.functions.Post(ctx, functions.ScanInItem, payload, &out); err != nil {
		return domain.ScanResult{}, fmt.Errorf("scan in item: %w", err)
	}

	s.record(ctx, activity.Entry{
		ActorUID: actor,
		Action:   activity.ActionItemScan,
		Target:   store.Doc(store.Items, itemID),
		Details:  map[string]any{"status": canonical},
	})
	s.events.Publish(ctx, events.Event{
		Type:       events.ItemScanned,
		Collection: store.Items,
		ID:         itemID,
		Status:     canonical,
		Actor:      actor,
		At:         s.now(),
	})
	return domain.ScanResult{ItemID: itemID, Status: canonical, Result: out}, nil
}

func (s *ReturnsService) record(ctx context.Context, e activity.Entry) {
	if err := s.recorder.Record(ctx, e); err != nil {
		s.log.Warn("failed to record activity", zap.String("action", e.Action), zap.Error(err))
	}
}
