package app

import (
	"context"
	"time"

	"github.com/google/uuid"

	"suraksha-sathi/internal/domain"
)

// GradeResult is the response of a grading request.
type GradeResult struct {
	Score      int      `json:"score"`
	Total      int      `json:"total"`
	Passed     bool     `json:"passed"`
	TotalScore int      `json:"totalScore"`
	NewBadges  []string `json:"newBadges"`
}

// GradingService runs a quiz submission through validation, scoring,
// persistence and badge evaluation. One request is one full pass; nothing is
// written before validation succeeds.
type GradingService struct {
	users    UserStore
	progress ProgressStore
	drills   DrillLog
	modules  ModuleCatalog
	board    *LeaderboardService

	now   func() time.Time
	newID func() string
}

func NewGradingService(users UserStore, progress ProgressStore, drills DrillLog, modules ModuleCatalog, board *LeaderboardService) *GradingService {
	return &GradingService{
		users:    users,
		progress: progress,
		drills:   drills,
		modules:  modules,
		board:    board,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// WithClock is test-only for deterministic timestamps and identifiers.
func (s *GradingService) WithClock(now func() time.Time, newID func() string) *GradingService {
	s.now = now
	s.newID = newID
	return s
}

// Grade validates and scores a submission, appends the attempt, evaluates
// badges and returns the verdict.
func (s *GradingService) Grade(ctx context.Context, moduleID, userID string, answers []int) (GradeResult, error) {
	user, err := s.users.ByID(ctx, userID)
	if err != nil {
		return GradeResult{}, err
	}
	module, err := s.modules.Module(ctx, moduleID)
	if err != nil {
		return GradeResult{}, err
	}
	if len(answers) != len(module.Quiz) {
		return GradeResult{}, domain.ErrAnswerCountMismatch
	}

	score := 0
	for i, q := range module.Quiz {
		if answers[i] == q.Answer {
			score++
		}
	}

	attempt := domain.QuizAttempt{
		ID:        s.newID(),
		UserID:    userID,
		ModuleID:  moduleID,
		Score:     score,
		Timestamp: s.now(),
	}
	if err := s.progress.Append(ctx, attempt); err != nil {
		return GradeResult{}, err
	}

	newBadges, err := s.evaluateAndPersist(ctx, user)
	if err != nil {
		return GradeResult{}, err
	}

	totalScore, err := s.progress.TotalScore(ctx, userID)
	if err != nil {
		return GradeResult{}, err
	}

	if s.board != nil {
		s.board.recordScore(ctx, user, score)
	}

	return GradeResult{
		Score:      score,
		Total:      len(module.Quiz),
		Passed:     score >= domain.PassMark(len(module.Quiz)),
		TotalScore: totalScore,
		NewBadges:  newBadges,
	}, nil
}

// evaluateAndPersist runs the badge evaluator against the now-updated logs
// and writes the user back only when new badges were earned.
func (s *GradingService) evaluateAndPersist(ctx context.Context, user domain.User) ([]string, error) {
	attempts, err := s.progress.All(ctx)
	if err != nil {
		return nil, err
	}
	drills, err := s.drills.All(ctx)
	if err != nil {
		return nil, err
	}
	modules, err := s.modules.Modules(ctx)
	if err != nil {
		return nil, err
	}

	newBadges := EvaluateBadges(user, attempts, drills, modules)
	if len(newBadges) == 0 {
		return []string{}, nil
	}

	user.Badges = append(user.Badges, newBadges...)
	if err := s.users.Save(ctx, user); err != nil {
		return nil, err
	}
	return newBadges, nil
}
