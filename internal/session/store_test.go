package session

import (
	"testing"
	"time"
)

func newTestStore(ttl time.Duration) (*MemoryStore, *time.Time) {
	s := &MemoryStore{
		ttl:  ttl,
		data: make(map[int64]entry),
		done: make(chan struct{}),
	}
	now := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }
	return s, &now
}

// Обычный цикл: записали, прочитали, удалили.
func TestMemoryStoreSetGetDelete(t *testing.T) {
	s, _ := newTestStore(time.Hour)

	state := State{Flow: FlowUpload, Step: StepAwaitingFile, PendingFileName: "Отчёт"}
	if err := s.Set(42, state); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, ok := s.Get(42)
	if !ok {
		t.Fatal("состояние не найдено после Set")
	}
	if got.Flow != FlowUpload || got.Step != StepAwaitingFile || got.PendingFileName != "Отчёт" {
		t.Errorf("получено %+v", got)
	}

	if err := s.Delete(42); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok := s.Get(42); ok {
		t.Error("состояние найдено после Delete")
	}
}

// По истечении TTL запись недоступна.
func TestMemoryStoreExpiry(t *testing.T) {
	s, now := newTestStore(time.Hour)

	_ = s.Set(1, State{Flow: FlowRegistration, Step: StepAwaitingContact})

	*now = now.Add(time.Hour + time.Second)
	if _, ok := s.Get(1); ok {
		t.Error("истёкшее состояние всё ещё доступно")
	}
}

// Повторный Set продлевает срок действия.
func TestMemoryStoreSetRefreshesTTL(t *testing.T) {
	s, now := newTestStore(time.Hour)

	_ = s.Set(1, State{Flow: FlowRegistration, Step: StepAwaitingContact})

	*now = now.Add(50 * time.Minute)
	_ = s.Set(1, State{Flow: FlowRegistration, Step: StepAwaitingFullName, PendingPhone: "+998901234567"})

	*now = now.Add(50 * time.Minute)
	got, ok := s.Get(1)
	if !ok {
		t.Fatal("состояние истекло, хотя Set должен был продлить TTL")
	}
	if got.Step != StepAwaitingFullName {
		t.Errorf("step = %q", got.Step)
	}
}

// Истёкшая на момент чтения запись, которую параллельный Set успел
// продлить до захвата write-lock, не удаляется устаревшим Get.
func TestMemoryStoreGetKeepsRefreshedEntry(t *testing.T) {
	s, now := newTestStore(time.Hour)

	_ = s.Set(1, State{Flow: FlowUpload, Step: StepAwaitingName})

	expired := now.Add(time.Hour + time.Second)
	fresh := entry{
		state:     State{Flow: FlowUpload, Step: StepAwaitingFile},
		expiresAt: expired.Add(time.Hour),
	}
	calls := 0
	s.now = func() time.Time {
		calls++
		// Третий вызов now происходит уже под write-lock: подменяем
		// запись, как если бы Set продлил её между блокировками.
		if calls == 3 {
			s.data[1] = fresh
		}
		return expired
	}

	if _, ok := s.Get(1); ok {
		t.Error("истёкшее на момент чтения состояние не должно возвращаться")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.data[1]
	if !ok {
		t.Fatal("продлённая запись удалена устаревшим Get")
	}
	if e.state.Step != StepAwaitingFile {
		t.Errorf("step = %q", e.state.Step)
	}
}

// Фоновая очистка удаляет истёкшие записи.
func TestMemoryStoreSweep(t *testing.T) {
	s, now := newTestStore(time.Hour)

	_ = s.Set(1, State{Flow: FlowUpload})
	_ = s.Set(2, State{Flow: FlowRegistration})

	*now = now.Add(2 * time.Hour)
	s.sweep()

	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.data) != 0 {
		t.Errorf("после очистки осталось %d записей", len(s.data))
	}
}
