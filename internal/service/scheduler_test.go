package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/dailycheer/cheer-notifier/internal/biz/domain"
	"github.com/dailycheer/cheer-notifier/internal/biz/usecase"
	"github.com/dailycheer/cheer-notifier/internal/logging"
)

// fakeClock runs due callbacks synchronously inside Advance
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	clock   *fakeClock
	at      time.Time
	f       func()
	stopped bool
	fired   bool
}

func newFakeClock(now time.Time) *fakeClock {
	return &fakeClock{now: now}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, at: c.now.Add(d), f: f}
	c.timers = append(c.timers, t)
	return t
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// Advance moves time forward and fires every timer that came due
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	var due []*fakeTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired && !t.at.After(c.now) {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()

	sort.Slice(due, func(i, j int) bool { return due[i].at.Before(due[j].at) })
	for _, t := range due {
		t.f()
	}
}

// Pending returns the number of timers that can still fire
func (c *fakeClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

type fakeFirer struct {
	mu      sync.Mutex
	slots   []string
	err     error
	started chan struct{}
	release chan struct{}
}

func (f *fakeFirer) Deliver(ctx context.Context, slot string) (*usecase.DeliveryResult, error) {
	if f.started != nil {
		f.started <- struct{}{}
	}
	if f.release != nil {
		<-f.release
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.slots = append(f.slots, slot)
	return &usecase.DeliveryResult{FiringID: "test"}, f.err
}

func (f *fakeFirer) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.slots...)
}

type fakeSettingsRepo struct {
	mu       sync.Mutex
	settings *domain.Settings
	err      error
}

func (r *fakeSettingsRepo) Load(ctx context.Context) (*domain.Settings, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	cp := *r.settings
	cp.Slots = append([]domain.TimeSlot(nil), r.settings.Slots...)
	return &cp, nil
}

func (r *fakeSettingsRepo) Update(fn func(s *domain.Settings)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn(r.settings)
}

func morningEvening() *domain.Settings {
	return &domain.Settings{
		GlobalEnabled: true,
		Slots: []domain.TimeSlot{
			{Name: domain.SlotMorning, Enabled: true, Time: domain.ClockTime{Hour: 8}},
			{Name: domain.SlotAfternoon, Enabled: false, Time: domain.ClockTime{Hour: 12, Minute: 30}},
			{Name: domain.SlotEvening, Enabled: true, Time: domain.ClockTime{Hour: 20}},
		},
		SelectedCharacter: "friend_a",
		Mode:              domain.ModeCatalog,
	}
}

var at9am = time.Date(2026, 10, 12, 9, 0, 0, 0, time.Local)

func newTestScheduler(t *testing.T, now time.Time) (*Scheduler, *fakeClock, *fakeFirer, *fakeSettingsRepo) {
	t.Helper()
	clock := newFakeClock(now)
	firer := &fakeFirer{}
	settings := &fakeSettingsRepo{settings: morningEvening()}
	s := NewScheduler(firer, settings, clock, logging.Discard())
	return s, clock, firer, settings
}

func nextFire(t *testing.T, s *Scheduler, name string) time.Time {
	t.Helper()
	for _, st := range s.Status() {
		if st.Name == name {
			if st.NextFire == nil {
				t.Fatalf("Slot %s has no pending fire", name)
			}
			return *st.NextFire
		}
	}
	t.Fatalf("Slot %s not found", name)
	return time.Time{}
}

func TestScheduler_ArmAt9am(t *testing.T) {
	s, clock, _, _ := newTestScheduler(t, at9am)
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	defer s.Stop()

	if got, want := nextFire(t, s, domain.SlotMorning), time.Date(2026, 10, 13, 8, 0, 0, 0, time.Local); !got.Equal(want) {
		t.Errorf("Expected morning at %v, got %v", want, got)
	}
	if got, want := nextFire(t, s, domain.SlotEvening), time.Date(2026, 10, 12, 20, 0, 0, 0, time.Local); !got.Equal(want) {
		t.Errorf("Expected evening at %v, got %v", want, got)
	}
	if s.State(domain.SlotAfternoon) != domain.SlotDisabled {
		t.Errorf("Expected afternoon disabled, got %s", s.State(domain.SlotAfternoon))
	}
	if s.LiveTimers() != 2 || clock.Pending() != 2 {
		t.Errorf("Expected 2 live timers, got %d (clock %d)", s.LiveTimers(), clock.Pending())
	}
}

func TestScheduler_ArmEqualToNowRollsOver(t *testing.T) {
	now := time.Date(2026, 10, 12, 8, 0, 0, 0, time.Local)
	s, _, _, _ := newTestScheduler(t, now)

	fireAt := s.Arm(domain.TimeSlot{Name: domain.SlotMorning, Enabled: true, Time: domain.ClockTime{Hour: 8}})
	if fireAt.Sub(now) != 24*time.Hour {
		t.Errorf("Expected fire exactly 24h later, got %v", fireAt.Sub(now))
	}
}

func TestScheduler_ArmTwiceLeavesOneTimer(t *testing.T) {
	s, clock, _, _ := newTestScheduler(t, at9am)
	slot := domain.TimeSlot{Name: domain.SlotEvening, Enabled: true, Time: domain.ClockTime{Hour: 20}}

	s.Arm(slot)
	s.Arm(slot)

	if s.LiveTimers() != 1 {
		t.Errorf("Expected 1 live timer, got %d", s.LiveTimers())
	}
	if clock.Pending() != 1 {
		t.Errorf("Expected the first timer cancelled, %d pending", clock.Pending())
	}
}

func TestScheduler_DisableAll(t *testing.T) {
	s, clock, firer, _ := newTestScheduler(t, at9am)
	if err := s.Start(context.Background()); err != nil {
		t.Fatal(err)
	}

	s.DisableAll()

	if s.LiveTimers() != 0 || clock.Pending() != 0 {
		t.Errorf("Expected zero live timers, got %d (clock %d)", s.LiveTimers(), clock.Pending())
	}
	for _, st := range s.Status() {
		if st.State != domain.SlotDisabled {
			t.Errorf("Expected %s disabled, got %s", st.Name, st.State)
		}
	}

	clock.Advance(48 * time.Hour)
	if len(firer.Calls()) != 0 {
		t.Errorf("Expected no firings after DisableAll, got %v", firer.Calls())
	}
}

func TestScheduler_FireDeliversAndRearms(t *testing.T) {
	s, clock, firer, _ := newTestScheduler(t, at9am)
	if err := s.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer s.Stop()

	clock.Advance(11 * time.Hour) // 20:00

	if calls := firer.Calls(); len(calls) != 1 || calls[0] != domain.SlotEvening {
		t.Fatalf("Expected one evening firing, got %v", calls)
	}
	if s.LiveTimers() != 2 {
		t.Errorf("Expected evening re-armed, got %d live timers", s.LiveTimers())
	}
	if got, want := nextFire(t, s, domain.SlotEvening), time.Date(2026, 10, 13, 20, 0, 0, 0, time.Local); !got.Equal(want) {
		t.Errorf("Expected evening re-armed for %v, got %v", want, got)
	}

	// Keeps going without outside help
	clock.Advance(24 * time.Hour)
	calls := firer.Calls()
	if len(calls) != 3 {
		t.Errorf("Expected 3 firings after another day, got %v", calls)
	}
	if s.LiveTimers() != 2 {
		t.Errorf("Expected 2 live timers, got %d", s.LiveTimers())
	}
}

func TestScheduler_FailedDeliveryStillRearms(t *testing.T) {
	s, clock, firer, _ := newTestScheduler(t, at9am)
	firer.err = errors.New("ledger unavailable")
	if err := s.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer s.Stop()

	clock.Advance(11 * time.Hour)

	if s.State(domain.SlotEvening) != domain.SlotArmed {
		t.Errorf("Expected evening armed after a failed delivery, got %s", s.State(domain.SlotEvening))
	}
}

func TestScheduler_FireAfterSlotDisabledDoesNotRearm(t *testing.T) {
	s, clock, firer, settings := newTestScheduler(t, at9am)
	if err := s.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer s.Stop()

	// Settings changed on disk, but no reconfigure has happened yet
	settings.Update(func(st *domain.Settings) { st.Slots[2].Enabled = false })

	clock.Advance(11 * time.Hour)

	if len(firer.Calls()) != 1 {
		t.Fatalf("Expected the armed timer to fire once, got %v", firer.Calls())
	}
	if s.State(domain.SlotEvening) != domain.SlotDisabled {
		t.Errorf("Expected evening disabled, got %s", s.State(domain.SlotEvening))
	}
	if s.LiveTimers() != 1 {
		t.Errorf("Expected only morning armed, got %d", s.LiveTimers())
	}
}

func TestScheduler_DisableAllDuringFiring(t *testing.T) {
	s, clock, firer, _ := newTestScheduler(t, at9am)
	firer.started = make(chan struct{}, 1)
	firer.release = make(chan struct{})
	if err := s.Start(context.Background()); err != nil {
		t.Fatal(err)
	}

	done := make(chan struct{})
	go func() {
		clock.Advance(11 * time.Hour)
		close(done)
	}()

	<-firer.started
	if s.State(domain.SlotEvening) != domain.SlotFiring {
		t.Errorf("Expected evening firing, got %s", s.State(domain.SlotEvening))
	}

	s.DisableAll()
	close(firer.release)
	<-done

	if len(firer.Calls()) != 1 {
		t.Errorf("Expected the in-flight firing to complete, got %v", firer.Calls())
	}
	if s.LiveTimers() != 0 {
		t.Errorf("Expected no re-arm after DisableAll, got %d live timers", s.LiveTimers())
	}
	if s.State(domain.SlotEvening) != domain.SlotDisabled {
		t.Errorf("Expected evening disabled, got %s", s.State(domain.SlotEvening))
	}
}

func TestScheduler_ReconfigureReplacesTimers(t *testing.T) {
	s, clock, _, settings := newTestScheduler(t, at9am)
	if err := s.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer s.Stop()

	settings.Update(func(st *domain.Settings) {
		st.Slots[1].Enabled = true
		st.Slots[2].Time = domain.ClockTime{Hour: 21, Minute: 30}
	})
	if err := s.Reconfigure(context.Background()); err != nil {
		t.Fatalf("Reconfigure failed: %v", err)
	}

	if s.LiveTimers() != 3 || clock.Pending() != 3 {
		t.Errorf("Expected 3 live timers, got %d (clock %d)", s.LiveTimers(), clock.Pending())
	}
	if got, want := nextFire(t, s, domain.SlotEvening), time.Date(2026, 10, 12, 21, 30, 0, 0, time.Local); !got.Equal(want) {
		t.Errorf("Expected evening at %v, got %v", want, got)
	}

	settings.Update(func(st *domain.Settings) { st.GlobalEnabled = false })
	if err := s.Reconfigure(context.Background()); err != nil {
		t.Fatal(err)
	}
	if s.LiveTimers() != 0 || clock.Pending() != 0 {
		t.Errorf("Expected no timers with notifications off, got %d", s.LiveTimers())
	}
}

func TestScheduler_ReconfigureSettingsErrorKeepsTimers(t *testing.T) {
	s, _, _, settings := newTestScheduler(t, at9am)
	if err := s.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer s.Stop()

	settings.mu.Lock()
	settings.err = errors.New("disk full")
	settings.mu.Unlock()

	if err := s.Reconfigure(context.Background()); err == nil {
		t.Error("Expected error")
	}
	if s.LiveTimers() != 2 {
		t.Errorf("Expected timers kept, got %d", s.LiveTimers())
	}
}

func TestScheduler_SendNowLeavesTimersAlone(t *testing.T) {
	s, clock, firer, _ := newTestScheduler(t, at9am)
	if err := s.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	defer s.Stop()
	before := nextFire(t, s, domain.SlotEvening)

	res, err := s.SendNow(context.Background())
	if err != nil || res == nil {
		t.Fatalf("SendNow failed: %v", err)
	}

	if calls := firer.Calls(); len(calls) != 1 || calls[0] != "" {
		t.Errorf("Expected one manual delivery, got %v", calls)
	}
	if s.LiveTimers() != 2 || clock.Pending() != 2 {
		t.Errorf("Expected timers untouched, got %d", s.LiveTimers())
	}
	if !nextFire(t, s, domain.SlotEvening).Equal(before) {
		t.Error("Expected evening fire instant unchanged")
	}
}

func TestScheduler_StaleCallbackIgnored(t *testing.T) {
	s, _, firer, _ := newTestScheduler(t, at9am)
	slot := domain.TimeSlot{Name: domain.SlotEvening, Enabled: true, Time: domain.ClockTime{Hour: 20}}

	s.Arm(slot)
	s.mu.Lock()
	staleSeq := s.timers[slot.Name].seq
	s.mu.Unlock()
	s.Arm(slot)

	s.onFire(slot.Name, staleSeq)

	if len(firer.Calls()) != 0 {
		t.Errorf("Expected stale callback ignored, got %v", firer.Calls())
	}
	if s.LiveTimers() != 1 {
		t.Errorf("Expected current timer kept, got %d", s.LiveTimers())
	}
}

func TestScheduler_StopWaitsAndCancels(t *testing.T) {
	s, clock, firer, _ := newTestScheduler(t, at9am)
	if err := s.Start(context.Background()); err != nil {
		t.Fatal(err)
	}

	s.Stop()

	if s.LiveTimers() != 0 || clock.Pending() != 0 {
		t.Errorf("Expected no timers after Stop, got %d", s.LiveTimers())
	}
	if _, err := s.SendNow(context.Background()); err == nil {
		t.Error("Expected SendNow to fail after Stop")
	}
	clock.Advance(48 * time.Hour)
	if len(firer.Calls()) != 0 {
		t.Errorf("Expected no deliveries after Stop, got %v", firer.Calls())
	}
}
