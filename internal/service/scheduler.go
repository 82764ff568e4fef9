package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dailycheer/cheer-notifier/internal/biz/domain"
	"github.com/dailycheer/cheer-notifier/internal/biz/repo"
	"github.com/dailycheer/cheer-notifier/internal/biz/usecase"
	"github.com/dailycheer/cheer-notifier/internal/logging"
)

// Clock abstracts wall time and one-shot timers
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is a cancellable one-shot timer
type Timer interface {
	Stop() bool
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// RealClock returns the system clock
func RealClock() Clock { return realClock{} }

// Firer runs one delivery. slot is empty for manual sends.
type Firer interface {
	Deliver(ctx context.Context, slot string) (*usecase.DeliveryResult, error)
}

// SlotStatus reports the scheduler state of one slot
type SlotStatus struct {
	Name     string           `json:"name"`
	State    domain.SlotState `json:"state"`
	Time     string           `json:"time,omitempty"`
	NextFire *time.Time       `json:"next_fire,omitempty"`
}

// slotTimer is the live timer of one slot
type slotTimer struct {
	slot   domain.TimeSlot
	timer  Timer
	fireAt time.Time
	seq    uint64
}

// Scheduler owns every slot timer. All arm, cancel and fire transitions go through mu.
type Scheduler struct {
	firer    Firer
	settings repo.SettingsRepo
	clock    Clock
	logger   logging.Logger

	mu      sync.Mutex
	timers  map[string]*slotTimer
	states  map[string]domain.SlotState
	slots   map[string]domain.TimeSlot // last known configuration, for Status
	seq     uint64
	epoch   uint64 // bumped by DisableAll; a firing that sees a new epoch does not re-arm
	stopped bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup // in-flight firings
}

// NewScheduler creates a new scheduler. A nil clock uses the system clock.
func NewScheduler(firer Firer, settings repo.SettingsRepo, clock Clock, logger logging.Logger) *Scheduler {
	if clock == nil {
		clock = RealClock()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		firer:    firer,
		settings: settings,
		clock:    clock,
		logger:   logging.Component(logger, "scheduler"),
		timers:   make(map[string]*slotTimer),
		states:   make(map[string]domain.SlotState),
		slots:    make(map[string]domain.TimeSlot),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start binds firings to ctx and arms every enabled slot
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	s.cancel()
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.stopped = false
	s.mu.Unlock()

	return s.Reconfigure(ctx)
}

// Stop cancels every timer and waits for in-flight firings
func (s *Scheduler) Stop() {
	s.mu.Lock()
	s.stopped = true
	s.disableAllLocked()
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()
	s.logger.Info("stopped")
}

// Arm schedules slot at its next fire instant, replacing any live timer for it
func (s *Scheduler) Arm(slot domain.TimeSlot) time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.armLocked(slot)
}

func (s *Scheduler) armLocked(slot domain.TimeSlot) time.Time {
	if old, ok := s.timers[slot.Name]; ok {
		old.timer.Stop()
		delete(s.timers, slot.Name)
	}

	s.seq++
	seq := s.seq
	now := s.clock.Now()
	fireAt := domain.NextFireTime(now, slot.Time)

	st := &slotTimer{slot: slot, fireAt: fireAt, seq: seq}
	st.timer = s.clock.AfterFunc(fireAt.Sub(now), func() {
		s.onFire(slot.Name, seq)
	})
	s.timers[slot.Name] = st
	s.states[slot.Name] = domain.SlotArmed
	s.slots[slot.Name] = slot

	s.logger.WithFields(logging.Fields{
		"slot":    slot.Name,
		"fire_at": fireAt.Format(time.RFC3339),
	}).Debug("armed")
	return fireAt
}

// DisableAll cancels every live timer and marks every slot Disabled.
// A firing already in progress completes but does not re-arm.
func (s *Scheduler) DisableAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.disableAllLocked()
}

func (s *Scheduler) disableAllLocked() {
	for name, st := range s.timers {
		st.timer.Stop()
		delete(s.timers, name)
	}
	for name := range s.states {
		s.states[name] = domain.SlotDisabled
	}
	s.epoch++
}

// Reconfigure reloads settings, cancels every timer and re-arms the enabled slots.
// On a settings error the current timers are kept.
func (s *Scheduler) Reconfigure(ctx context.Context) error {
	settings, err := s.settings.Load(ctx)
	if err != nil {
		s.logger.WithError(err).Warn("failed to load settings, keeping current timers")
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return nil
	}

	s.disableAllLocked()
	for _, slot := range settings.Slots {
		s.slots[slot.Name] = slot
		s.states[slot.Name] = domain.SlotDisabled
	}
	for _, slot := range settings.ActiveSlots() {
		s.armLocked(slot)
	}

	s.logger.WithFields(logging.Fields{
		"global_enabled": settings.GlobalEnabled,
		"armed":          len(s.timers),
	}).Info("reconfigured")
	return nil
}

// onFire runs when a slot timer expires. seq identifies the timer so a stale callback is ignored.
func (s *Scheduler) onFire(name string, seq uint64) {
	s.mu.Lock()
	st, ok := s.timers[name]
	if !ok || st.seq != seq || s.stopped {
		s.mu.Unlock()
		return
	}
	delete(s.timers, name)
	s.states[name] = domain.SlotFiring
	epoch := s.epoch
	slot := st.slot
	ctx := s.ctx
	s.wg.Add(1)
	s.mu.Unlock()
	defer s.wg.Done()

	log := s.logger.WithField("slot", name)

	if _, err := s.firer.Deliver(ctx, name); err != nil {
		log.WithError(err).Error("delivery failed")
	}

	// Settings may have changed while delivering
	next, enabled := slot, true
	if settings, err := s.settings.Load(ctx); err != nil {
		log.WithError(err).Warn("failed to load settings, re-arming with previous slot")
	} else if cur, found := settings.Slot(name); found && settings.GlobalEnabled {
		next, enabled = cur, cur.Enabled
	} else {
		enabled = false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped || s.epoch != epoch {
		return
	}
	if _, armed := s.timers[name]; armed {
		return
	}
	if !enabled {
		s.states[name] = domain.SlotDisabled
		log.Info("slot disabled, not re-arming")
		return
	}
	s.armLocked(next)
}

// SendNow runs a delivery outside the slot timers. No timer is touched.
func (s *Scheduler) SendNow(ctx context.Context) (*usecase.DeliveryResult, error) {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return nil, context.Canceled
	}
	s.wg.Add(1)
	s.mu.Unlock()
	defer s.wg.Done()

	return s.firer.Deliver(ctx, "")
}

// LiveTimers returns the number of armed timers
func (s *Scheduler) LiveTimers() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.timers)
}

// State returns the state of a slot. Unknown slots are Idle.
func (s *Scheduler) State(name string) domain.SlotState {
	s.mu.Lock()
	defer s.mu.Unlock()
	if state, ok := s.states[name]; ok {
		return state
	}
	return domain.SlotIdle
}

// Status reports every known slot sorted by name
func (s *Scheduler) Status() []SlotStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]SlotStatus, 0, len(s.states))
	for name, state := range s.states {
		st := SlotStatus{Name: name, State: state}
		if slot, ok := s.slots[name]; ok {
			st.Time = slot.Time.String()
		}
		if t, ok := s.timers[name]; ok {
			fireAt := t.fireAt
			st.NextFire = &fireAt
		}
		result = append(result, st)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}
