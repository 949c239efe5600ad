package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"pinpoint/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeEventRepo implements domain.EventRepository for tests.
type fakeEventRepo struct {
	events    map[string]*domain.Event
	err       error
	gotFilter domain.EventFilter
	createdBy string
}

func newFakeEventRepo(events ...*domain.Event) *fakeEventRepo {
	f := &fakeEventRepo{events: make(map[string]*domain.Event)}
	for _, e := range events {
		f.events[e.ID] = e
	}
	return f
}

func (f *fakeEventRepo) Create(ctx context.Context, organizerID string, fields domain.EventFields) (*domain.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.createdBy = organizerID
	e := domain.NewEvent(organizerID, fields, time.Now())
	e.ID = "event-new"
	f.events[e.ID] = e
	return e, nil
}

func (f *fakeEventRepo) GetByID(ctx context.Context, id string) (*domain.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	e, ok := f.events[id]
	if !ok {
		return nil, domain.ErrEventNotFound
	}
	return e, nil
}

func (f *fakeEventRepo) List(ctx context.Context, filter domain.EventFilter) ([]*domain.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.gotFilter = filter
	var out []*domain.Event
	for _, e := range f.events {
		if filter.Matches(e) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEventRepo) ListByOrganizer(ctx context.Context, organizerID string) ([]*domain.Event, error) {
	var out []*domain.Event
	for _, e := range f.events {
		if e.OrganizerID == organizerID {
			out = append(out, e)
		}
	}
	return out, f.err
}

func (f *fakeEventRepo) Update(ctx context.Context, requesterID, id string, patch domain.EventPatch) (*domain.Event, error) {
	e, err := f.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if e.OrganizerID != requesterID {
		return nil, domain.ErrNotOwner
	}
	fields := patch.Apply(e.Fields())
	if err := fields.Validate(); err != nil {
		return nil, err
	}
	e.SetFields(fields)
	return e, nil
}

func (f *fakeEventRepo) Delete(ctx context.Context, requesterID, id string) error {
	e, err := f.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if e.OrganizerID != requesterID {
		return domain.ErrNotOwner
	}
	delete(f.events, id)
	return nil
}

type edge struct{ user, event string }

// fakeAttendance implements domain.AttendanceRegistry over maps.
type fakeAttendance struct {
	events *fakeEventRepo
	joined map[edge]bool
	saved  map[edge]bool
	err    error
}

func newFakeAttendance(events *fakeEventRepo) *fakeAttendance {
	return &fakeAttendance{events: events, joined: map[edge]bool{}, saved: map[edge]bool{}}
}

func (f *fakeAttendance) Join(ctx context.Context, userID, eventID string) (*domain.Event, error) {
	e, err := f.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	k := edge{userID, eventID}
	if f.joined[k] {
		return nil, domain.ErrAlreadyJoined
	}
	f.joined[k] = true
	e.AttendeeCount++
	return e, nil
}

func (f *fakeAttendance) Unjoin(ctx context.Context, userID, eventID string) (*domain.Event, error) {
	e, err := f.events.GetByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	k := edge{userID, eventID}
	if !f.joined[k] {
		return nil, domain.ErrNotJoined
	}
	delete(f.joined, k)
	e.AttendeeCount--
	return e, nil
}

func (f *fakeAttendance) Save(ctx context.Context, userID, eventID string) error {
	if _, err := f.events.GetByID(ctx, eventID); err != nil {
		return err
	}
	k := edge{userID, eventID}
	if f.saved[k] {
		return domain.ErrAlreadySaved
	}
	f.saved[k] = true
	return nil
}

func (f *fakeAttendance) Unsave(ctx context.Context, userID, eventID string) error {
	k := edge{userID, eventID}
	if !f.saved[k] {
		return domain.ErrNotSaved
	}
	delete(f.saved, k)
	return nil
}

func (f *fakeAttendance) list(set map[edge]bool, userID string) ([]*domain.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []*domain.Event
	for k := range set {
		if k.user == userID {
			out = append(out, f.events.events[k.event])
		}
	}
	return out, nil
}

func (f *fakeAttendance) ListJoined(ctx context.Context, userID string) ([]*domain.Event, error) {
	return f.list(f.joined, userID)
}

func (f *fakeAttendance) ListSaved(ctx context.Context, userID string) ([]*domain.Event, error) {
	return f.list(f.saved, userID)
}

// fakeTokenVerifier implements domain.TokenVerifier for tests.
type fakeTokenVerifier struct {
	principals map[string]domain.Principal
}

func (f *fakeTokenVerifier) Verify(token string) (domain.Principal, error) {
	p, ok := f.principals[token]
	if !ok {
		return domain.Principal{}, errors.New("token is malformed")
	}
	return p, nil
}

// fakeUserRepo implements domain.UserRepository for tests.
type fakeUserRepo struct {
	byID      map[string]*domain.User
	createErr error
}

func newFakeUserRepo(users ...*domain.User) *fakeUserRepo {
	f := &fakeUserRepo{byID: make(map[string]*domain.User)}
	for _, u := range users {
		f.byID[u.ID] = u
	}
	return f
}

func (f *fakeUserRepo) Create(ctx context.Context, u *domain.User) error {
	if f.createErr != nil {
		return f.createErr
	}
	for _, existing := range f.byID {
		if existing.Email == u.Email {
			return domain.ErrDuplicateEmail
		}
	}
	u.ID = "created-1"
	f.byID[u.ID] = u
	return nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, u := range f.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, domain.ErrUserNotFound
}

func (f *fakeUserRepo) UpdateProfile(ctx context.Context, id string, patch domain.ProfilePatch) (*domain.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if patch.FirstName != nil {
		u.FirstName = *patch.FirstName
	}
	if patch.LastName != nil {
		u.LastName = *patch.LastName
	}
	if patch.Organization != nil {
		u.Organization = *patch.Organization
	}
	return u, nil
}

func (f *fakeUserRepo) ListByRole(ctx context.Context, role domain.Role) ([]*domain.User, error) {
	var out []*domain.User
	for _, u := range f.byID {
		if u.Role == role {
			out = append(out, u)
		}
	}
	return out, nil
}

// fakePasswordHasher implements domain.PasswordHasher for tests.
type fakePasswordHasher struct{}

func (fakePasswordHasher) Hash(password string) (string, error) { return "hash-" + password, nil }

func (fakePasswordHasher) Compare(hash, password string) error {
	if hash != "hash-"+password {
		return errors.New("mismatch")
	}
	return nil
}

// fakeTokenIssuer implements domain.TokenIssuer for tests.
type fakeTokenIssuer struct {
	err error
}

func (f *fakeTokenIssuer) Issue(p domain.Principal, email string, expiry time.Duration) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return "token-" + p.ID + "-" + string(p.Role), nil
}

// fakeEmailService records welcome messages.
type fakeEmailService struct {
	sent []*domain.WelcomeMessageEmailData
	err  error
}

func (f *fakeEmailService) SendWelcomeMessage(ctx context.Context, data *domain.WelcomeMessageEmailData) error {
	f.sent = append(f.sent, data)
	return f.err
}
