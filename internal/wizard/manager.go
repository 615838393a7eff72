package wizard

import "sync"

// Manager хранит активные заявки по их идентификаторам. Каждый запуск
// создаёт новую заявку; повторное открытие оформления всегда начинается
// с чистого состояния.
type Manager struct {
	accounts AccountStore
	cart     CartStore

	mu       sync.Mutex
	sessions map[string]*Wizard
}

// NewManager создаёт менеджер заявок поверх хранилищ кабинета и корзины.
func NewManager(accounts AccountStore, cart CartStore) *Manager {
	return &Manager{
		accounts: accounts,
		cart:     cart,
		sessions: make(map[string]*Wizard),
	}
}

// Start создаёт новую заявку для пользователя.
func (m *Manager) Start(userID string) *Wizard {
	w := New(userID, m.accounts, m.cart)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[w.ID()] = w

	return w
}

// Get возвращает заявку по идентификатору, если она принадлежит пользователю.
func (m *Manager) Get(id, userID string) (*Wizard, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	w, ok := m.sessions[id]
	if !ok || w.UserID() != userID {
		return nil, false
	}
	return w, true
}

// Drop удаляет заявку. Отсутствие заявки не ошибка.
func (m *Manager) Drop(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, id)
}
