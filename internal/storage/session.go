package storage

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"

	"github.com/avtomir/autoservice-system/internal/kv"
	"github.com/avtomir/autoservice-system/internal/model"
)

// ErrEmptyCredentials возвращается при попытке входа или регистрации
// с пустым обязательным полем.
var ErrEmptyCredentials = errors.New("empty credentials")

// Session хранит текущую авторизованную учётную запись.
//
// Пароль принимается, но ни с чем не сверяется: сервис не выполняет настоящую
// проверку учётных данных, это осознанное упрощение, а не граница безопасности.
type Session struct {
	store kv.Store

	mu   sync.RWMutex
	user *model.User
}

// NewSession создаёт хранилище сессии и восстанавливает учётную запись
// по фиксированному ключу. Отсутствующее или нечитаемое значение означает,
// что пользователь не авторизован.
func NewSession(ctx context.Context, store kv.Store) *Session {
	s := &Session{store: store}
	if u := s.load(ctx); u != nil {
		s.user = u
	}
	return s
}

func (s *Session) load(ctx context.Context) *model.User {
	raw, ok, err := s.store.Get(ctx, sessionKey)
	if err != nil || !ok {
		return nil
	}

	var u model.User
	if err := json.Unmarshal([]byte(raw), &u); err != nil {
		return nil
	}
	if u.Email == "" {
		return nil
	}
	return &u
}

// Current возвращает текущую учётную запись, если пользователь авторизован.
func (s *Session) Current() (model.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.user == nil {
		return model.User{}, false
	}
	return *s.user, true
}

// Login выполняет вход по email и паролю. Если по фиксированному ключу уже
// сохранена учётная запись с тем же email, она переиспользуется вместе с
// именем; иначе имя выводится из локальной части email.
func (s *Session) Login(ctx context.Context, email, password string) (model.User, error) {
	if email == "" || password == "" {
		return model.User{}, ErrEmptyCredentials
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.load(ctx)
	if u == nil || u.Email != email {
		name := email
		if at := strings.Index(email, "@"); at >= 0 {
			name = email[:at]
		}
		u = &model.User{Email: email, Name: name}
	}

	if err := s.persist(ctx, u); err != nil {
		return model.User{}, err
	}
	s.user = u
	return *u, nil
}

// Register создаёт учётную запись с указанными именем и email, перезаписывая
// ранее сохранённую, и сразу выполняет вход.
func (s *Session) Register(ctx context.Context, name, email, password string) (model.User, error) {
	if name == "" || email == "" || password == "" {
		return model.User{}, ErrEmptyCredentials
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u := &model.User{Email: email, Name: name}
	if err := s.persist(ctx, u); err != nil {
		return model.User{}, err
	}
	s.user = u
	return *u, nil
}

// Logout завершает сессию и удаляет сохранённую учётную запись.
func (s *Session) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.user = nil
	return s.store.Delete(ctx, sessionKey)
}

func (s *Session) persist(ctx context.Context, u *model.User) error {
	raw, err := json.Marshal(u)
	if err != nil {
		return err
	}
	return s.store.Set(ctx, sessionKey, string(raw))
}
