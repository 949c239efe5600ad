package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"pinpoint/internal/adapters/seedsource"
	"pinpoint/internal/domain"
)

type seedUser struct {
	Email        string `yaml:"email"`
	Password     string `yaml:"password"`
	FirstName    string `yaml:"first_name"`
	LastName     string `yaml:"last_name"`
	Role         string `yaml:"role"`
	Organization string `yaml:"organization"`
}

type seedEvent struct {
	Organizer   string             `yaml:"organizer"` // email of a seeded organizer
	Title       string             `yaml:"title"`
	Venue       domain.Venue       `yaml:"venue"`
	Category    string             `yaml:"category"`
	Description string             `yaml:"description"`
	Location    domain.Coordinates `yaml:"location"`
	StartTime   *time.Time         `yaml:"start_time"`
	EndTime     *time.Time         `yaml:"end_time"`
}

type seedFile struct {
	Users  []seedUser  `yaml:"users"`
	Events []seedEvent `yaml:"events"`
}

// readSeed loads the seed document from a local path or an http(s) URL.
func readSeed(ctx context.Context, location string) ([]byte, error) {
	if seedsource.IsRemote(location) {
		return seedsource.NewHTTPFetcher(nil).Fetch(ctx, location)
	}
	return os.ReadFile(location)
}

func parseSeed(r io.Reader) (*seedFile, error) {
	var s seedFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}
	organizers := make(map[string]bool)
	for _, u := range s.Users {
		if domain.Role(u.Role) == domain.RoleOrganizer {
			organizers[u.Email] = true
		}
	}
	for i, e := range s.Events {
		if !organizers[e.Organizer] {
			return nil, fmt.Errorf("parse seed: event %d (%q): organizer %q is not a seeded organizer", i, e.Title, e.Organizer)
		}
	}
	return &s, nil
}

// apply registers every user (logging in instead when the email already exists) and
// creates every event as its organizer. It is safe to rerun for users; events are
// created again on each run.
func (s *seedFile) apply(ctx context.Context, users domain.UserService, events domain.EventService) (int, int, error) {
	principals := make(map[string]domain.Principal, len(s.Users))
	for _, su := range s.Users {
		_, u, err := users.Register(ctx, domain.Registration{
			FirstName:    su.FirstName,
			LastName:     su.LastName,
			Email:        su.Email,
			Password:     su.Password,
			Role:         domain.Role(su.Role),
			Organization: su.Organization,
		})
		if errors.Is(err, domain.ErrDuplicateEmail) {
			_, u, err = users.Login(ctx, su.Email, su.Password)
		}
		if err != nil {
			return 0, 0, fmt.Errorf("seed user %s: %w", su.Email, err)
		}
		principals[su.Email] = domain.Principal{ID: u.ID, Role: u.Role}
	}

	for _, se := range s.Events {
		_, err := events.CreateEvent(ctx, principals[se.Organizer], domain.EventFields{
			Title:       se.Title,
			Venue:       se.Venue,
			Category:    domain.Category(se.Category),
			Description: se.Description,
			Location:    se.Location,
			StartTime:   se.StartTime,
			EndTime:     se.EndTime,
		})
		if err != nil {
			return 0, 0, fmt.Errorf("seed event %q: %w", se.Title, err)
		}
	}
	return len(s.Users), len(s.Events), nil
}
