package task

import (
	"time"

	"gtdone/internal/model"
)

// PriorityWeights tunes the scoring heuristic. Zero value is unusable; use
// DefaultPriorityWeights or values loaded from config.
type PriorityWeights struct {
	Overdue       int `yaml:"overdue" json:"overdue"`
	DueToday      int `yaml:"due_today" json:"due_today"`
	DueSoon       int `yaml:"due_soon" json:"due_soon"`
	Starred       int `yaml:"starred" json:"starred"`
	NextStatus    int `yaml:"next_status" json:"next_status"`
	Blocked       int `yaml:"blocked" json:"blocked"`
	LowEnergy     int `yaml:"low_energy" json:"low_energy"`
	QuickWin      int `yaml:"quick_win" json:"quick_win"`
	AgePerWeek    int `yaml:"age_per_week" json:"age_per_week"`
	AgeCap        int `yaml:"age_cap" json:"age_cap"`
	QuickWinLimit int `yaml:"quick_win_limit_minutes" json:"quick_win_limit_minutes"`
}

func DefaultPriorityWeights() PriorityWeights {
	return PriorityWeights{
		Overdue:       30,
		DueToday:      20,
		DueSoon:       10,
		Starred:       15,
		NextStatus:    10,
		Blocked:       -25,
		LowEnergy:     5,
		QuickWin:      5,
		AgePerWeek:    2,
		AgeCap:        10,
		QuickWinLimit: 15,
	}
}

// PriorityScore is a sort/badge hint in [0,100]. Purely heuristic, no
// correctness contract.
func PriorityScore(t model.Task, all []model.Task, now time.Time, w PriorityWeights) int {
	if t.Completed {
		return 0
	}

	score := 50

	today := now.Format(model.DateLayout)
	soon := now.AddDate(0, 0, 3).Format(model.DateLayout)
	if t.DueDate != nil {
		switch {
		case *t.DueDate < today:
			score += w.Overdue
		case *t.DueDate == today:
			score += w.DueToday
		case *t.DueDate <= soon:
			score += w.DueSoon
		}
	}

	if t.Starred {
		score += w.Starred
	}
	if t.Status == model.StatusNext {
		score += w.NextStatus
	}
	if !DependenciesMet(t, all) {
		score += w.Blocked
	}
	if t.Energy == model.EnergyLow {
		score += w.LowEnergy
	}
	if t.TimeEstimate > 0 && t.TimeEstimate <= w.QuickWinLimit {
		score += w.QuickWin
	}

	if weeks := int(now.Sub(t.CreatedAt).Hours() / (24 * 7)); weeks > 0 {
		age := weeks * w.AgePerWeek
		if age > w.AgeCap {
			age = w.AgeCap
		}
		score += age
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}
