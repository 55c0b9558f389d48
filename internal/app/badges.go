package app

import (
	"suraksha-sathi/internal/domain"
)

// Badge identifiers. Threshold tiers are independent predicates: a user
// jumping straight past several tiers earns them all in one evaluation.
const (
	BadgeModuleMaster  = "module-master-all"
	BadgeDrillChamp5   = "drill-champion-5"
	BadgeDrillChamp10  = "drill-champion-10"
	BadgeDrillChamp25  = "drill-champion-25"
	BadgeStreakStar5   = "streak-star-5"
	BadgeStreakStar10  = "streak-star-10"
	BadgeStreakStar30  = "streak-star-30"
	BadgeTopScorer     = "top-scorer"
	topScorerThreshold = 0.9
)

// BadgeCatalog is the static achievement catalog. Evaluation output follows
// this declaration order.
var BadgeCatalog = []domain.BadgeDefinition{
	{ID: BadgeModuleMaster, Name: "Module Master", Description: "Passed the quiz of every learning module", Icon: "graduation-cap"},
	{ID: BadgeDrillChamp5, Name: "Drill Champion I", Description: "Participated in 5 safety drills", Icon: "shield"},
	{ID: BadgeDrillChamp10, Name: "Drill Champion II", Description: "Participated in 10 safety drills", Icon: "shield-check"},
	{ID: BadgeDrillChamp25, Name: "Drill Champion III", Description: "Participated in 25 safety drills", Icon: "shield-star"},
	{ID: BadgeStreakStar5, Name: "Streak Star I", Description: "Logged in 5 days in a row", Icon: "flame"},
	{ID: BadgeStreakStar10, Name: "Streak Star II", Description: "Logged in 10 days in a row", Icon: "flame"},
	{ID: BadgeStreakStar30, Name: "Streak Star III", Description: "Logged in 30 days in a row", Icon: "flame"},
	{ID: BadgeTopScorer, Name: "Top Scorer", Description: "Averaged 90% or better across attempted modules", Icon: "trophy"},
}

var drillTiers = []struct {
	badge string
	count int
}{
	{BadgeDrillChamp5, 5},
	{BadgeDrillChamp10, 10},
	{BadgeDrillChamp25, 25},
}

var streakTiers = []struct {
	badge string
	count int
}{
	{BadgeStreakStar5, 5},
	{BadgeStreakStar10, 10},
	{BadgeStreakStar30, 30},
}

// EvaluateBadges determines which badges the user newly qualifies for given
// the full progress and drill logs and the module catalog. It returns only
// the delta: badges already held are never repeated, so calling it twice with
// unchanged inputs yields an empty slice the second time. The function reads
// everything and mutates nothing; the caller persists
// user.Badges = union(existing, delta) when the delta is non-empty.
func EvaluateBadges(user domain.User, attempts []domain.QuizAttempt, drills []domain.DrillRecord, modules []domain.Module) []string {
	var newBadges []string
	best := bestScoresByModule(attempts, user.ID)

	// Module Master: best score meets the pass mark for every catalog module.
	allPassed := len(modules) > 0
	for _, m := range modules {
		if best[m.ID] < domain.PassMark(len(m.Quiz)) {
			allPassed = false
			break
		}
	}
	if allPassed && !user.HasBadge(BadgeModuleMaster) {
		newBadges = append(newBadges, BadgeModuleMaster)
	}

	drillCount := 0
	for _, d := range drills {
		if d.UserID == user.ID {
			drillCount++
		}
	}
	for _, tier := range drillTiers {
		if drillCount >= tier.count && !user.HasBadge(tier.badge) {
			newBadges = append(newBadges, tier.badge)
		}
	}

	for _, tier := range streakTiers {
		if user.LoginStreak >= tier.count && !user.HasBadge(tier.badge) {
			newBadges = append(newBadges, tier.badge)
		}
	}

	// Top Scorer: mean of best scores across attempted modules, each
	// normalized by that module's question count.
	if avg, ok := normalizedAverage(best, modules); ok && avg >= topScorerThreshold && !user.HasBadge(BadgeTopScorer) {
		newBadges = append(newBadges, BadgeTopScorer)
	}

	return newBadges
}

// bestScoresByModule maps moduleID to the user's maximum attempt score.
func bestScoresByModule(attempts []domain.QuizAttempt, userID string) map[string]int {
	best := make(map[string]int)
	for _, a := range attempts {
		if a.UserID != userID {
			continue
		}
		if cur, ok := best[a.ModuleID]; !ok || a.Score > cur {
			best[a.ModuleID] = a.Score
		}
	}
	return best
}

func normalizedAverage(best map[string]int, modules []domain.Module) (float64, bool) {
	questionCounts := make(map[string]int, len(modules))
	for _, m := range modules {
		questionCounts[m.ID] = len(m.Quiz)
	}

	sum := 0.0
	n := 0
	for moduleID, score := range best {
		total := questionCounts[moduleID]
		if total == 0 {
			// Attempt against a module no longer in the catalog.
			continue
		}
		sum += float64(score) / float64(total)
		n++
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}
