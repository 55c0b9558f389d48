package app

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"suraksha-sathi/internal/domain"
)

const dateLayout = "2006-01-02"

// UserService covers registration, login-streak tracking and per-user reads.
// Session/token issuance is left to the caller; login lives here because the
// streak mutation feeds the streak-star badges.
type UserService struct {
	users  UserStore
	drills DrillLog

	now   func() time.Time
	newID func() string
}

func NewUserService(users UserStore, drills DrillLog) *UserService {
	return &UserService{
		users:  users,
		drills: drills,
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// WithClock is test-only for deterministic timestamps and identifiers.
func (s *UserService) WithClock(now func() time.Time, newID func() string) *UserService {
	s.now = now
	s.newID = newID
	return s
}

// Register creates a user with a bcrypt credential hash and an empty badge
// set. The email must be unused and the role one of the four known roles.
func (s *UserService) Register(ctx context.Context, name, email, password string, role domain.Role) (domain.User, error) {
	if !domain.ValidRole(role) {
		return domain.User{}, domain.ErrInvalidRole
	}
	if _, err := s.users.ByEmail(ctx, email); err == nil {
		return domain.User{}, domain.ErrEmailTaken
	} else if err != domain.ErrUserNotFound {
		return domain.User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, err
	}

	user := domain.User{
		ID:           s.newID(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		Badges:       []string{},
	}
	if err := s.users.Save(ctx, user); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

// Login verifies the credentials and advances the login streak: +1 when the
// previous login was exactly one day earlier, reset to 1 after a longer gap
// or on the first login, unchanged within the same day.
func (s *UserService) Login(ctx context.Context, email, password string) (domain.User, error) {
	user, err := s.users.ByEmail(ctx, email)
	if err == domain.ErrUserNotFound {
		return domain.User{}, domain.ErrInvalidCredentials
	} else if err != nil {
		return domain.User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return domain.User{}, domain.ErrInvalidCredentials
	}

	now := s.now()
	if user.LastLogin == nil {
		user.LoginStreak = 1
	} else {
		switch days := int(now.Sub(*user.LastLogin).Hours() / 24); {
		case days == 1:
			user.LoginStreak++
		case days > 1:
			user.LoginStreak = 1
		}
	}
	user.LastLogin = &now

	if err := s.users.Save(ctx, user); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

// Badges returns the user's earned badge identifiers.
func (s *UserService) Badges(ctx context.Context, userID string) ([]string, error) {
	user, err := s.users.ByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Badges == nil {
		return []string{}, nil
	}
	return user.Badges, nil
}

// Stats aggregates streak and drill activity for one user.
func (s *UserService) Stats(ctx context.Context, userID string) (domain.UserStats, error) {
	user, err := s.users.ByID(ctx, userID)
	if err != nil {
		return domain.UserStats{}, err
	}

	records, err := s.drills.ByUser(ctx, userID)
	if err != nil {
		return domain.UserStats{}, err
	}

	stats := domain.UserStats{
		LoginStreak:        user.LoginStreak,
		DrillsParticipated: len(records),
	}
	if user.LastLogin != nil {
		stats.LastLoginDate = user.LastLogin.Format(dateLayout)
	}
	var last time.Time
	for _, r := range records {
		if r.Timestamp.After(last) {
			last = r.Timestamp
		}
	}
	if !last.IsZero() {
		stats.LastDrillDate = last.Format(dateLayout)
	}
	return stats, nil
}
