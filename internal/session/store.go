// Package session хранит состояние диалога пользователя с ботом.
//
// Состояние живёт ограниченное время: каждая запись обновляет срок
// действия, по истечении TTL диалог считается прерванным и пользователь
// начинает сценарий заново.
package session

import (
	"sync"
	"time"
)

// Flow — активный сценарий диалога.
type Flow string

const (
	FlowNone         Flow = ""
	FlowRegistration Flow = "registration"
	FlowUpload       Flow = "upload"
)

// Step — текущий шаг внутри сценария.
type Step string

const (
	StepAwaitingContact  Step = "awaiting_contact"
	StepAwaitingFullName Step = "awaiting_full_name"
	StepAwaitingRegion   Step = "awaiting_region"
	StepAwaitingName     Step = "awaiting_name"
	StepAwaitingFile     Step = "awaiting_file"
)

// State представляет данные, связанные с диалогом пользователя.
type State struct {
	Flow Flow `json:"flow"`
	Step Step `json:"step"`
	// Накопленные данные регистрации.
	PendingPhone string `json:"pending_phone,omitempty"`
	PendingName  string `json:"pending_name,omitempty"`
	// Имя из профиля Telegram, используется в приветствиях.
	DisplayName string `json:"display_name,omitempty"`
	// Название документа, введённое перед отправкой файла.
	PendingFileName string `json:"pending_file_name,omitempty"`
}

// Store определяет интерфейс для работы с состоянием диалога.
type Store interface {
	Get(chatID int64) (State, bool)
	Set(chatID int64, state State) error
	Delete(chatID int64) error
}

type entry struct {
	state     State
	expiresAt time.Time
}

// MemoryStore — in-memory реализация с TTL.
type MemoryStore struct {
	ttl  time.Duration
	now  func() time.Time
	data map[int64]entry
	mu   sync.RWMutex
	done chan struct{}
	once sync.Once
}

// NewMemoryStore создаёт новый MemoryStore с указанным временем жизни записей.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	s := &MemoryStore{
		ttl:  ttl,
		now:  time.Now,
		data: make(map[int64]entry),
		done: make(chan struct{}),
	}
	go s.janitor()
	return s
}

// Get возвращает состояние, если оно существует и не истекло.
// Истёкшая запись удаляется при обращении.
func (m *MemoryStore) Get(chatID int64) (State, bool) {
	m.mu.RLock()
	e, ok := m.data[chatID]
	m.mu.RUnlock()
	if !ok {
		return State{}, false
	}
	if m.now().After(e.expiresAt) {
		m.mu.Lock()
		// Между снятием read-lock и захватом write-lock запись могли
		// продлить через Set: удаляем только если она всё ещё истекла.
		if cur, ok := m.data[chatID]; ok && m.now().After(cur.expiresAt) {
			delete(m.data, chatID)
		}
		m.mu.Unlock()
		return State{}, false
	}
	return e.state, true
}

// Set сохраняет состояние и продлевает срок его действия.
func (m *MemoryStore) Set(chatID int64, state State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[chatID] = entry{state: state, expiresAt: m.now().Add(m.ttl)}
	return nil
}

func (m *MemoryStore) Delete(chatID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, chatID)
	return nil
}

// Close останавливает фоновую очистку.
func (m *MemoryStore) Close() {
	m.once.Do(func() { close(m.done) })
}

func (m *MemoryStore) janitor() {
	interval := m.ttl / 2
	if interval < time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			m.sweep()
		}
	}
}

func (m *MemoryStore) sweep() {
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, e := range m.data {
		if now.After(e.expiresAt) {
			delete(m.data, id)
		}
	}
}
