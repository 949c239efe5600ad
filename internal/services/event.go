package services

import (
	"context"
	"time"

	"pinpoint/internal/domain"
)

type eventService struct {
	eventRepo      domain.EventRepository
	attendance     domain.AttendanceRegistry
	guard          domain.AuthorizationGuard
	now            func() time.Time
	contextTimeout time.Duration
}

// NewEventService wires the event use cases. now is the clock used to classify events;
// pass time.Now outside of tests.
func NewEventService(
	eventRepo domain.EventRepository,
	attendance domain.AttendanceRegistry,
	guard domain.AuthorizationGuard,
	now func() time.Time,
	timeout time.Duration,
) domain.EventService {
	return &eventService{
		eventRepo:      eventRepo,
		attendance:     attendance,
		guard:          guard,
		now:            now,
		contextTimeout: timeout,
	}
}

func (s *eventService) view(e *domain.Event) *domain.EventView {
	return domain.NewEventView(e, s.now())
}

// views classifies every event against a single clock reading.
func (s *eventService) views(events []*domain.Event, status domain.StatusState) []*domain.EventView {
	now := s.now()
	out := make([]*domain.EventView, 0, len(events))
	for _, e := range events {
		v := domain.NewEventView(e, now)
		if status != "" && v.Status.State != status {
			continue
		}
		out = append(out, v)
	}
	return out
}

func (s *eventService) CreateEvent(ctx context.Context, p domain.Principal, fields domain.EventFields) (*domain.EventView, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.guard.RequireRole(p, domain.RoleOrganizer); err != nil {
		return nil, err
	}
	e, err := s.eventRepo.Create(ctx, p.ID, fields)
	if err != nil {
		return nil, wrap("create event", err)
	}
	return s.view(e), nil
}

func (s *eventService) GetEvent(ctx context.Context, id string) (*domain.EventView, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	e, err := s.eventRepo.GetByID(ctx, id)
	if err != nil {
		return nil, wrap("get event", err)
	}
	return s.view(e), nil
}

func (s *eventService) ListEvents(ctx context.Context, filter domain.EventFilter) ([]*domain.EventView, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	events, err := s.eventRepo.List(ctx, filter)
	if err != nil {
		return nil, wrap("list events", err)
	}
	return s.views(events, filter.Status), nil
}

// UpdateEvent leaves the ownership check to the repository, which makes it in the same
// operation as the write.
func (s *eventService) UpdateEvent(ctx context.Context, p domain.Principal, id string, patch domain.EventPatch) (*domain.EventView, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if p.ID == "" {
		return nil, domain.ErrUnauthenticated
	}
	e, err := s.eventRepo.Update(ctx, p.ID, id, patch)
	if err != nil {
		return nil, wrap("update event", err)
	}
	return s.view(e), nil
}

func (s *eventService) DeleteEvent(ctx context.Context, p domain.Principal, id string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if p.ID == "" {
		return domain.ErrUnauthenticated
	}
	if err := s.eventRepo.Delete(ctx, p.ID, id); err != nil {
		return wrap("delete event", err)
	}
	return nil
}

func (s *eventService) JoinEvent(ctx context.Context, p domain.Principal, id string) (*domain.EventView, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if p.ID == "" {
		return nil, domain.ErrUnauthenticated
	}
	e, err := s.attendance.Join(ctx, p.ID, id)
	if err != nil {
		return nil, wrap("join event", err)
	}
	return s.view(e), nil
}

func (s *eventService) UnjoinEvent(ctx context.Context, p domain.Principal, id string) (*domain.EventView, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if p.ID == "" {
		return nil, domain.ErrUnauthenticated
	}
	e, err := s.attendance.Unjoin(ctx, p.ID, id)
	if err != nil {
		return nil, wrap("unjoin event", err)
	}
	return s.view(e), nil
}

func (s *eventService) SaveEvent(ctx context.Context, p domain.Principal, id string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if p.ID == "" {
		return domain.ErrUnauthenticated
	}
	if err := s.attendance.Save(ctx, p.ID, id); err != nil {
		return wrap("save event", err)
	}
	return nil
}

func (s *eventService) UnsaveEvent(ctx context.Context, p domain.Principal, id string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if p.ID == "" {
		return domain.ErrUnauthenticated
	}
	if err := s.attendance.Unsave(ctx, p.ID, id); err != nil {
		return wrap("unsave event", err)
	}
	return nil
}

func (s *eventService) ListJoinedEvents(ctx context.Context, p domain.Principal) ([]*domain.EventView, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if p.ID == "" {
		return nil, domain.ErrUnauthenticated
	}
	events, err := s.attendance.ListJoined(ctx, p.ID)
	if err != nil {
		return nil, wrap("list joined events", err)
	}
	return s.views(events, ""), nil
}

func (s *eventService) ListSavedEvents(ctx context.Context, p domain.Principal) ([]*domain.EventView, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if p.ID == "" {
		return nil, domain.ErrUnauthenticated
	}
	events, err := s.attendance.ListSaved(ctx, p.ID)
	if err != nil {
		return nil, wrap("list saved events", err)
	}
	return s.views(events, ""), nil
}

func (s *eventService) ListOwnedEvents(ctx context.Context, p domain.Principal) ([]*domain.EventView, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := s.guard.RequireRole(p, domain.RoleOrganizer); err != nil {
		return nil, err
	}
	events, err := s.eventRepo.ListByOrganizer(ctx, p.ID)
	if err != nil {
		return nil, wrap("list owned events", err)
	}
	owned := events[:0]
	for _, e := range events {
		if s.guard.Owns(p, e) {
			owned = append(owned, e)
		}
	}
	return s.views(owned, ""), nil
}
