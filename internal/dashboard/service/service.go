package service

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/haulzy/haulzy-backend/internal/activity"
	"github.com/haulzy/haulzy-backend/internal/dashboard/domain"
	"github.com/haulzy/haulzy-backend/internal/events"
	"github.com/haulzy/haulzy-backend/internal/store"
)

type DashboardService struct {
	store     store.Store
	snapshots activity.Snapshots
	recorder  activity.Recorder
	events    events.Publisher
	log       *zap.Logger
	now       func() time.Time
}

func NewDashboardService(
	s store.Store,
	snapshots activity.Snapshots,
	recorder activity.Recorder,
	publisher events.Publisher,
	log *zap.Logger,
) *DashboardService {
	if log == nil {
		log = zap.NewNop()
	}
	return &DashboardService{
		store:     s,
		snapshots: snapshots,
		recorder:  recorder,
		events:    publisher,
		log:       log,
		now:       time.Now,
	}
}

const fetchConcurrency = 8

// load fetches every collection concurrently. A failed collection is left
// empty and reported in the returned map instead of failing the whole read.
func (s *DashboardService) load(ctx context.Context) (collections, map[string]string) {
	var (
		c       collections
		errs    [4]error
		itemErr error
		g       errgroup.Group
	)

	targets := []struct {
		name string
		dst  *[]store.Document
	}{
		{store.Routes, &c.routes},
		{store.Pickups, &c.pickups},
		{store.Items, &c.items},
		{store.Users, &c.users},
	}

	for i, target := range targets {
		g.Go(func() error {
			docs, err := s.store.List(ctx, target.name)
			if err != nil {
				errs[i] = err
				return nil
			}
			*target.dst = docs
			if target.name == store.Pickups {
				c.pickupItems, itemErr = s.loadPickupItems(ctx, docs)
			}
			return nil
		})
	}
	_ = g.Wait()

	c.failed = map[string]bool{}
	sectionErrors := map[string]string{}
	for i, err := range errs {
		if err == nil {
			continue
		}
		name := targets[i].name
		s.log.Warn("dashboard section failed", zap.String("section", name), zap.Error(err))
		c.failed[name] = true
		sectionErrors[name] = fmt.Sprintf("Failed to load %s: %v", name, err)
	}
	if itemErr != nil {
		if _, ok := sectionErrors[domain.SectionItems]; !ok {
			sectionErrors[domain.SectionItems] = fmt.Sprintf("Failed to load %s: %v", domain.SectionItems, itemErr)
		}
	}
	return c, sectionErrors
}

// loadPickupItems reads each pickup's items sub-collection. Failed
// sub-collections are skipped and joined into the returned error.
func (s *DashboardService) loadPickupItems(ctx context.Context, pickups []store.Document) (map[string][]store.Document, error) {
	perPickup := make([][]store.Document, len(pickups))
	errs := make([]error, len(pickups))

	var g errgroup.Group
	g.SetLimit(fetchConcurrency)
	for i, doc := range pickups {
		g.Go(func() error {
			docs, err := s.store.List(ctx, store.Doc(store.Pickups, doc.ID, store.Items))
			if err != nil {
				s.log.Warn("failed to load pickup items", zap.String("pickup_id", doc.ID), zap.Error(err))
				errs[i] = fmt.Errorf("pickup %s: %w", doc.ID, err)
				return nil
			}
			perPickup[i] = docs
			return nil
		})
	}
	_ = g.Wait()

	out := make(map[string][]store.Document, len(pickups))
	for i, doc := range pickups {
		if len(perPickup[i]) > 0 {
			out[doc.ID] = perPickup[i]
		}
	}
	return out, errors.Join(errs...)
}

// Build returns the reconciled overview as of now.
func (s *DashboardService) Build(ctx context.Context) domain.Overview {
	c, errs := s.load(ctx)
	ov := reconcile(c, s.now())
	if len(errs) > 0 {
		ov.Errors = errs
	}
	return ov
}

// Route returns a single reconciled route along with any section that
// failed to load while joining it.
func (s *DashboardService) Route(ctx context.Context, id string) (domain.RouteDetail, error) {
	if err := store.ValidateID(id); err != nil {
		return domain.RouteDetail{}, err
	}
	doc, err := s.store.Get(ctx, store.Doc(store.Routes, id))
	if errors.Is(err, store.ErrNotFound) {
		return domain.RouteDetail{}, domain.ErrRouteNotFound
	}
	if err != nil {
		return domain.RouteDetail{}, fmt.Errorf("get route: %w", err)
	}

	c, errs := s.load(ctx)
	detail := domain.RouteDetail{RouteView: routeView(doc, c.index(), s.now())}
	if len(errs) > 0 {
		detail.Errors = errs
	}
	return detail, nil
}

// History returns the stored daily snapshots for the last days days.
func (s *DashboardService) History(ctx context.Context, days int) ([]activity.Snapshot, error) {
	if days < 1 || days > 365 {
		return nil, domain.ErrInvalidDays
	}
	now := s.now()
	since := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, -(days - 1))
	return s.snapshots.ListSince(ctx, since)
}

// Snapshot stores today's summary. Nothing is stored while any section
// fails to load, so a partial read never overwrites the day's counts.
func (s *DashboardService) Snapshot(ctx context.Context, actor string) (activity.Snapshot, error) {
	ov := s.Build(ctx)
	if len(ov.Errors) > 0 {
		sections := slices.Sorted(maps.Keys(ov.Errors))
		return activity.Snapshot{}, fmt.Errorf("%w: %s", domain.ErrIncompleteSnapshot, strings.Join(sections, ", "))
	}
	now := ov.GeneratedAt
	snap := activity.Snapshot{
		Day:            time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()),
		ActivePickups:  ov.Summary.ActivePickups,
		PendingReturns: ov.Summary.PendingReturns,
		CompletedToday: ov.Summary.CompletedToday,
		RoutesCurrent:  ov.Summary.RoutesCurrent,
		CreatedAt:      now,
	}
	if err := s.snapshots.Upsert(ctx, snap); err != nil {
		return activity.Snapshot{}, fmt.Errorf("store snapshot: %w", err)
	}

	if err := s.recorder.Record(ctx, activity.Entry{
		ActorUID: actor,
		Action:   activity.ActionSnapshot,
		Target:   snap.Day.Format("2006-01-02"),
		Details:  map[string]any{"summary": ov.Summary},
	}); err != nil {
		s.log.Warn("failed to record snapshot activity", zap.Error(err))
	}
	s.events.Publish(ctx, events.Event{Type: events.SnapshotTaken, Actor: actor})
	return snap, nil
}
