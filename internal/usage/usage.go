package usage

import (
	"errors"
	"time"
)

const (
	PlanFree    = "free"
	PlanHustler = "hustler"
	PlanPro     = "pro"
)

// planLimits maps plan names to daily analysis allowances.
var planLimits = map[string]int{
	PlanFree:    1,
	PlanHustler: 50,
	PlanPro:     200,
}

// ErrLimitReached signals the caller has spent today's allowance.
var ErrLimitReached = errors.New("daily analysis limit reached")

// ErrUnknownPlan signals a plan name outside the known set.
var ErrUnknownPlan = errors.New("unknown plan")

// LimitFor returns the daily allowance for a plan.
func LimitFor(plan string) (int, bool) {
	limit, ok := planLimits[plan]
	return limit, ok
}

// Usage is the caller-facing view of a quota record.
type Usage struct {
	Plan      string    `json:"plan"`
	Limit     int       `json:"limit"`
	Used      int       `json:"used"`
	Remaining int       `json:"remaining"`
	ResetsAt  time.Time `json:"resetsAt"`
}

// record is the persisted quota state. Day is the UTC calendar day the
// Used counter belongs to; a mismatch with today means the counter is
// stale and rolls back to zero.
type record struct {
	Plan string
	Used int
	Day  string
}

func dayOf(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

func nextMidnight(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC).Add(24 * time.Hour)
}
