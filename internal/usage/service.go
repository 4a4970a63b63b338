package usage

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// store persists quota records keyed by user id. Get reports found=false
// for users it has never seen.
type store interface {
	Get(ctx context.Context, userID string) (record, bool, error)
	Save(ctx context.Context, userID string, rec record) error
}

// Service tracks daily analysis usage per caller. Counters roll over at
// UTC midnight and the quota is advisory, keyed by whatever identity the
// request presented.
type Service struct {
	mu    sync.Mutex
	store store
	now   func() time.Time
}

// NewService builds a Service over the given store. A nil store gets an
// in-memory one.
func NewService(st store) *Service {
	if st == nil {
		st = newMemoryStore()
	}
	return &Service{store: st, now: time.Now}
}

// Get returns the caller's current usage, rolling the counter over if
// the stored day has passed.
func (s *Service) Get(ctx context.Context, userID string) (Usage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.current(ctx, userID)
	if err != nil {
		return Usage{}, err
	}
	return s.view(rec), nil
}

// CanMakeRequest reports whether the caller has allowance left today
// without consuming any.
func (s *Service) CanMakeRequest(ctx context.Context, userID string) (bool, error) {
	u, err := s.Get(ctx, userID)
	if err != nil {
		return false, err
	}
	return u.Remaining > 0, nil
}

// Increment consumes one unit of today's allowance. It returns
// ErrLimitReached, without changing the counter, when nothing is left.
func (s *Service) Increment(ctx context.Context, userID string) (Usage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.current(ctx, userID)
	if err != nil {
		return Usage{}, err
	}
	if rec.Used >= planLimits[rec.Plan] {
		return s.view(rec), ErrLimitReached
	}
	rec.Used++
	if err := s.store.Save(ctx, userID, rec); err != nil {
		return Usage{}, fmt.Errorf("save usage: %w", err)
	}
	return s.view(rec), nil
}

// UpgradePlan switches the caller to a new plan. The Used counter is
// kept, so an upgrade immediately widens Remaining without refunding
// past requests.
func (s *Service) UpgradePlan(ctx context.Context, userID, plan string) (Usage, error) {
	if _, ok := planLimits[plan]; !ok {
		return Usage{}, fmt.Errorf("%w: %q", ErrUnknownPlan, plan)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.current(ctx, userID)
	if err != nil {
		return Usage{}, err
	}
	rec.Plan = plan
	if err := s.store.Save(ctx, userID, rec); err != nil {
		return Usage{}, fmt.Errorf("save usage: %w", err)
	}
	return s.view(rec), nil
}

// Reset zeroes the caller's counter for today. Plan is kept.
func (s *Service) Reset(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.current(ctx, userID)
	if err != nil {
		return err
	}
	rec.Used = 0
	if err := s.store.Save(ctx, userID, rec); err != nil {
		return fmt.Errorf("save usage: %w", err)
	}
	return nil
}

// current loads the caller's record, applying the daily rollover and
// defaulting new callers to the free plan. Callers hold s.mu.
func (s *Service) current(ctx context.Context, userID string) (record, error) {
	today := dayOf(s.now())

	rec, found, err := s.store.Get(ctx, userID)
	if err != nil {
		return record{}, fmt.Errorf("load usage: %w", err)
	}
	if !found {
		return record{Plan: PlanFree, Used: 0, Day: today}, nil
	}
	if rec.Day != today {
		rec.Used = 0
		rec.Day = today
	}
	if _, ok := planLimits[rec.Plan]; !ok {
		rec.Plan = PlanFree
	}
	return rec, nil
}

func (s *Service) view(rec record) Usage {
	limit := planLimits[rec.Plan]
	remaining := limit - rec.Used
	if remaining < 0 {
		remaining = 0
	}
	return Usage{
		Plan:      rec.Plan,
		Limit:     limit,
		Used:      rec.Used,
		Remaining: remaining,
		ResetsAt:  nextMidnight(s.now()),
	}
}
