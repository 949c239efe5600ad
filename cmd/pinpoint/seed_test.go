package main

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pinpoint/internal/domain"
)

const seedYAML = `
users:
  - email: robotics@campus.edu
    password: correct-horse
    first_name: Ravi
    role: organizer
    organization: Robotics Club
  - email: asha@campus.edu
    password: correct-horse
    first_name: Asha
    role: student
events:
  - organizer: robotics@campus.edu
    title: Line Follower Race
    venue: {room: "101", block: A, campus: North}
    category: tech
    description: Bring your bot.
    location: {lat: 12.93, lng: 77.53}
    start_time: 2026-03-10T10:00:00Z
    end_time: 2026-03-10T12:00:00Z
  - organizer: robotics@campus.edu
    title: Open Lab
    venue: {room: "102", block: A, campus: North}
    category: tech
    description: Drop in any time.
    location: {lat: 12.93, lng: 77.53}
`

func TestParseSeed(t *testing.T) {
	s, err := parseSeed(strings.NewReader(seedYAML))
	require.NoError(t, err)
	require.Len(t, s.Users, 2)
	require.Len(t, s.Events, 2)

	first := s.Events[0]
	assert.Equal(t, domain.Venue{Room: "101", Block: "A", Campus: "North"}, first.Venue)
	assert.Equal(t, 77.53, first.Location.Lng)
	require.NotNil(t, first.StartTime)
	assert.True(t, first.StartTime.Equal(time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)))
	assert.Nil(t, s.Events[1].StartTime)
}

func TestParseSeed_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{name: "unknown key", yaml: "users:\n  - email: a@b.co\n    nickname: x\n", wantErr: "nickname"},
		{name: "organizer not seeded", yaml: "events:\n  - organizer: ghost@campus.edu\n    title: X\n", wantErr: "ghost@campus.edu"},
		{
			name:    "student as organizer",
			yaml:    "users:\n  - email: s@campus.edu\n    role: student\nevents:\n  - organizer: s@campus.edu\n    title: X\n",
			wantErr: "not a seeded organizer",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseSeed(strings.NewReader(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

type seedUserService struct {
	domain.UserService
	existing map[string]*domain.User
	next     int
}

func (f *seedUserService) Register(_ context.Context, reg domain.Registration) (string, *domain.User, error) {
	if _, ok := f.existing[reg.Email]; ok {
		return "", nil, domain.ErrDuplicateEmail
	}
	f.next++
	u := &domain.User{ID: "u-" + reg.Email, Email: reg.Email, Role: reg.Role}
	f.existing[reg.Email] = u
	return "tok", u, nil
}

func (f *seedUserService) Login(_ context.Context, email, _ string) (string, *domain.User, error) {
	return "tok", f.existing[email], nil
}

type seedEventService struct {
	domain.EventService
	created []domain.Principal
}

func (f *seedEventService) CreateEvent(_ context.Context, p domain.Principal, fields domain.EventFields) (*domain.EventView, error) {
	f.created = append(f.created, p)
	return &domain.EventView{Event: &domain.Event{Title: fields.Title}}, nil
}

func TestSeedApply(t *testing.T) {
	s, err := parseSeed(strings.NewReader(seedYAML))
	require.NoError(t, err)
	users := &seedUserService{existing: map[string]*domain.User{
		"asha@campus.edu": {ID: "existing-asha", Email: "asha@campus.edu", Role: domain.RoleStudent},
	}}
	events := &seedEventService{}

	nUsers, nEvents, err := s.apply(context.Background(), users, events)
	require.NoError(t, err)
	assert.Equal(t, 2, nUsers)
	assert.Equal(t, 2, nEvents)
	assert.Equal(t, 1, users.next)
	require.Len(t, events.created, 2)
	assert.Equal(t, domain.Principal{ID: "u-robotics@campus.edu", Role: domain.RoleOrganizer}, events.created[0])
}
