package domain

import "time"

// Role classifies a registered user.
type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleParent  Role = "parent"
	RoleAdmin   Role = "admin"
)

// ValidRole reports whether r is one of the four accepted roles.
func ValidRole(r Role) bool {
	switch r {
	case RoleStudent, RoleTeacher, RoleParent, RoleAdmin:
		return true
	}
	return false
}

// User is the mutable per-user record. Badges is append-only: identifiers are
// added by the badge evaluator and never removed.
type User struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	Role         Role       `json:"role"`
	LoginStreak  int        `json:"loginStreak"`
	LastLogin    *time.Time `json:"lastLogin,omitempty"`
	Badges       []string   `json:"badges"`
}

// HasBadge reports whether the user already holds the badge.
func (u User) HasBadge(id string) bool {
	for _, b := range u.Badges {
		if b == id {
			return true
		}
	}
	return false
}

// QuizAttempt is one scored submission for one module. Immutable once
// recorded; the progress log keeps every attempt, including repeats.
type QuizAttempt struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	ModuleID  string    `json:"moduleId"`
	Score     int       `json:"score"`
	Timestamp time.Time `json:"timestamp"`
}

// DrillRecord logs one user's participation in one drill. Immutable.
type DrillRecord struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	DrillID   string    `json:"drillId"`
	Timestamp time.Time `json:"timestamp"`
}

// Question is a single-answer multiple-choice quiz question. Answer indexes
// into Choices and must never be serialized to clients before grading.
type Question struct {
	Prompt  string   `json:"question"`
	Choices []string `json:"choices"`
	Answer  int      `json:"answer"`
}

// Module is a read-only learning unit with an attached quiz.
type Module struct {
	ID      string     `json:"id"`
	Title   string     `json:"title"`
	Content string     `json:"content"`
	Quiz    []Question `json:"quiz"`
}

// PassMark is the minimum score to pass a quiz of n questions.
func PassMark(n int) int {
	return (n + 1) / 2
}

// DrillScenario is a catalog entry describing a safety exercise.
type DrillScenario struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Type        string `json:"type"`
	Region      string `json:"region"`
	Description string `json:"description"`
}

// BadgeDefinition is a static catalog entry for an achievement.
type BadgeDefinition struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// LeaderboardEntry is one row of the ranked snapshot, 1-based rank implied by
// position after sorting by score descending.
type LeaderboardEntry struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
	Score  int    `json:"score"`
}

// UserStats summarizes streak and drill activity for the dashboard.
type UserStats struct {
	LoginStreak        int    `json:"loginStreak"`
	LastLoginDate      string `json:"lastLoginDate"`
	DrillsParticipated int    `json:"drillsParticipated"`
	LastDrillDate      string `json:"lastDrillDate,omitempty"`
}

// Alert is a broadcast message for a region. Time is unix milliseconds, the
// wire format consumed by existing clients.
type Alert struct {
	ID      string `json:"id"`
	Region  string `json:"region"`
	Level   string `json:"level"`
	Message string `json:"message"`
	Time    int64  `json:"time"`
}
