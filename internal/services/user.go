package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"pinpoint/internal/domain"
)

const (
	minPasswordLen = 8
	maxNameLen     = 100
)

var emailRegexp = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

type userService struct {
	userRepo       domain.UserRepository
	attendance     domain.AttendanceRegistry
	hasher         domain.PasswordHasher
	tokenIssuer    domain.TokenIssuer
	tokenExpiry    time.Duration
	emailService   domain.EmailService
	logger         *slog.Logger
	now            func() time.Time
	contextTimeout time.Duration
}

// NewUserService creates a UserService. emailService may be nil, in which case no welcome
// message is sent.
func NewUserService(
	userRepo domain.UserRepository,
	attendance domain.AttendanceRegistry,
	hasher domain.PasswordHasher,
	tokenIssuer domain.TokenIssuer,
	tokenExpiry time.Duration,
	emailService domain.EmailService,
	logger *slog.Logger,
	timeout time.Duration,
) domain.UserService {
	return &userService{
		userRepo:       userRepo,
		attendance:     attendance,
		hasher:         hasher,
		tokenIssuer:    tokenIssuer,
		tokenExpiry:    tokenExpiry,
		emailService:   emailService,
		logger:         logger,
		now:            time.Now,
		contextTimeout: timeout,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateRegistration(reg *domain.Registration) error {
	reg.FirstName = strings.TrimSpace(reg.FirstName)
	reg.LastName = strings.TrimSpace(reg.LastName)
	reg.Email = normalizeEmail(reg.Email)
	reg.Organization = strings.TrimSpace(reg.Organization)
	reg.Role = domain.Role(strings.ToLower(strings.TrimSpace(string(reg.Role))))

	var problems []string
	switch {
	case reg.FirstName == "":
		problems = append(problems, "first_name is required")
	case utf8.RuneCountInString(reg.FirstName) > maxNameLen:
		problems = append(problems, fmt.Sprintf("first_name must be at most %d characters", maxNameLen))
	}
	if utf8.RuneCountInString(reg.LastName) > maxNameLen {
		problems = append(problems, fmt.Sprintf("last_name must be at most %d characters", maxNameLen))
	}
	if !emailRegexp.MatchString(reg.Email) {
		problems = append(problems, "email is invalid")
	}
	if len(reg.Password) < minPasswordLen {
		problems = append(problems, fmt.Sprintf("password must be at least %d characters", minPasswordLen))
	}
	if !reg.Role.Valid() {
		problems = append(problems, "role must be student or organizer")
	}
	if len(problems) > 0 {
		return domain.NewValidationError(problems...)
	}
	if reg.Role != domain.RoleOrganizer {
		reg.Organization = ""
	}
	return nil
}

func (s *userService) issue(u *domain.User) (string, error) {
	token, err := s.tokenIssuer.Issue(domain.Principal{ID: u.ID, Role: u.Role}, u.Email, s.tokenExpiry)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

func (s *userService) Register(ctx context.Context, reg domain.Registration) (string, *domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if err := validateRegistration(&reg); err != nil {
		return "", nil, err
	}
	hash, err := s.hasher.Hash(reg.Password)
	if err != nil {
		return "", nil, fmt.Errorf("hash password: %w", err)
	}
	user := domain.NewUser(reg.Email, reg.FirstName, reg.LastName, reg.Role, reg.Organization, s.now().UTC())
	user.PasswordHash = hash
	if err := s.userRepo.Create(ctx, user); err != nil {
		return "", nil, wrap("create user", err)
	}

	if s.emailService != nil {
		data := &domain.WelcomeMessageEmailData{
			Email:        user.Email,
			FirstName:    user.FirstName,
			Role:         user.Role,
			Organization: user.Organization,
		}
		if err := s.emailService.SendWelcomeMessage(ctx, data); err != nil {
			s.logger.Warn("welcome email failed", "user_id", user.ID, "error", err)
		}
	}

	token, err := s.issue(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (s *userService) Login(ctx context.Context, email, password string) (string, *domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, wrap("get user", err)
	}
	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		return "", nil, domain.ErrInvalidCredentials
	}
	token, err := s.issue(user)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (s *userService) profile(ctx context.Context, u *domain.User) (*domain.Profile, error) {
	joined, err := s.attendance.ListJoined(ctx, u.ID)
	if err != nil {
		return nil, wrap("list joined events", err)
	}
	saved, err := s.attendance.ListSaved(ctx, u.ID)
	if err != nil {
		return nil, wrap("list saved events", err)
	}
	return &domain.Profile{User: u, JoinedEventIDs: eventIDs(joined), SavedEventIDs: eventIDs(saved)}, nil
}

func eventIDs(events []*domain.Event) []string {
	ids := make([]string, len(events))
	for i, e := range events {
		ids[i] = e.ID
	}
	return ids
}

func (s *userService) GetProfile(ctx context.Context, p domain.Principal) (*domain.Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if p.ID == "" {
		return nil, domain.ErrUnauthenticated
	}
	user, err := s.userRepo.GetByID(ctx, p.ID)
	if err != nil {
		return nil, wrap("get user", err)
	}
	return s.profile(ctx, user)
}

func (s *userService) UpdateProfile(ctx context.Context, p domain.Principal, patch domain.ProfilePatch) (*domain.Profile, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	if p.ID == "" {
		return nil, domain.ErrUnauthenticated
	}
	var problems []string
	if patch.FirstName != nil {
		v := strings.TrimSpace(*patch.FirstName)
		patch.FirstName = &v
		if v == "" {
			problems = append(problems, "first_name must not be blank")
		} else if utf8.RuneCountInString(v) > maxNameLen {
			problems = append(problems, fmt.Sprintf("first_name must be at most %d characters", maxNameLen))
		}
	}
	if patch.LastName != nil {
		v := strings.TrimSpace(*patch.LastName)
		patch.LastName = &v
		if utf8.RuneCountInString(v) > maxNameLen {
			problems = append(problems, fmt.Sprintf("last_name must be at most %d characters", maxNameLen))
		}
	}
	if patch.Organization != nil {
		v := strings.TrimSpace(*patch.Organization)
		patch.Organization = &v
		if p.Role != domain.RoleOrganizer {
			problems = append(problems, "organization can only be set by organizers")
		}
	}
	if len(problems) > 0 {
		return nil, domain.NewValidationError(problems...)
	}

	user, err := s.userRepo.UpdateProfile(ctx, p.ID, patch)
	if err != nil {
		return nil, wrap("update user", err)
	}
	return s.profile(ctx, user)
}

func (s *userService) ListClubs(ctx context.Context) ([]*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	clubs, err := s.userRepo.ListByRole(ctx, domain.RoleOrganizer)
	if err != nil {
		return nil, wrap("list clubs", err)
	}
	return clubs, nil
}
