package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/iliyamo/cineverse-auth/internal/model"
	"github.com/iliyamo/cineverse-auth/internal/repository"
)

// memStore is an in-memory credential store with the same compare-and-swap
// semantics as the MySQL repositories.
type memStore struct {
	mu     sync.Mutex
	nextID uint64
	users  map[uint64]model.User
	otps   map[otpKey]model.OneTimeCode
	tokens map[string]model.RefreshToken

	failWith error // returned by every call when set
}

type otpKey struct {
	userID  uint64
	purpose model.OTPPurpose
}

func newMemStore() *memStore {
	return &memStore{
		users:  map[uint64]model.User{},
		otps:   map[otpKey]model.OneTimeCode{},
		tokens: map[string]model.RefreshToken{},
	}
}

func (m *memStore) addUser(u model.User) model.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	u.ID = m.nextID
	u.Email = repository.NormalizeEmail(u.Email)
	m.users[u.ID] = u
	return u
}

func (m *memStore) user(id uint64) model.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.users[id]
}

func (m *memStore) otp(userID uint64, p model.OTPPurpose) (model.OneTimeCode, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.otps[otpKey{userID, p}]
	return o, ok
}

func (m *memStore) liveTokens(userID uint64, now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, t := range m.tokens {
		if t.UserID == userID && t.Live(now) {
			n++
		}
	}
	return n
}

// UserStore

func (m *memStore) Create(_ context.Context, u model.User) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return 0, m.failWith
	}
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return 0, repository.ErrEmailExists
		}
	}
	m.nextID++
	u.ID = m.nextID
	m.users[u.ID] = u
	return u.ID, nil
}

func (m *memStore) findByEmail(email string, activeOnly bool) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return model.User{}, m.failWith
	}
	email = repository.NormalizeEmail(email)
	for _, u := range m.users {
		if u.Email == email && (!activeOnly || u.IsActive) {
			return u, nil
		}
	}
	return model.User{}, repository.ErrNotFound
}

func (m *memStore) GetByEmail(_ context.Context, email string) (model.User, error) {
	return m.findByEmail(email, false)
}

func (m *memStore) GetActiveByEmail(_ context.Context, email string) (model.User, error) {
	return m.findByEmail(email, true)
}

func (m *memStore) GetActiveByID(_ context.Context, id uint64) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return model.User{}, m.failWith
	}
	u, ok := m.users[id]
	if !ok || !u.IsActive {
		return model.User{}, repository.ErrNotFound
	}
	return u, nil
}

func (m *memStore) UpdateProfile(_ context.Context, id uint64, p model.ProfileUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	u, ok := m.users[id]
	if !ok || !u.IsActive {
		return repository.ErrNotFound
	}
	if p.FullName != nil {
		u.FullName = *p.FullName
	}
	if p.PhoneNumber != nil {
		u.PhoneNumber = *p.PhoneNumber
	}
	if p.City != nil {
		u.City = *p.City
	}
	m.users[id] = u
	return nil
}

func (m *memStore) Deactivate(_ context.Context, id uint64, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	u, ok := m.users[id]
	if !ok || !u.IsActive {
		return repository.ErrNotFound
	}
	u.IsActive = false
	m.users[id] = u
	m.revokeAllLocked(id, now)
	return nil
}

// OTPStore

func (m *memStore) Replace(_ context.Context, otp model.OneTimeCode) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	m.otps[otpKey{otp.UserID, otp.Purpose}] = otp
	return nil
}

func (m *memStore) consumeLocked(userID uint64, p model.OTPPurpose, code string, now time.Time) error {
	k := otpKey{userID, p}
	o, ok := m.otps[k]
	if !ok || o.Code != code || !o.Usable(now) {
		return repository.ErrNotFound
	}
	o.Used = true
	o.UsedAt = &now
	m.otps[k] = o
	return nil
}

func (m *memStore) Consume(_ context.Context, userID uint64, p model.OTPPurpose, code string, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	return m.consumeLocked(userID, p, code, now)
}

func (m *memStore) ConsumeAndSetPassword(_ context.Context, userID uint64, code, hash string, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	// validate everything before writing anything
	k := otpKey{userID, model.PurposePasswordReset}
	o, ok := m.otps[k]
	u, uok := m.users[userID]
	if !ok || o.Code != code || !o.Usable(now) || !uok || !u.IsActive {
		return repository.ErrNotFound
	}
	_ = m.consumeLocked(userID, model.PurposePasswordReset, code, now)
	u.PasswordHash = hash
	m.users[userID] = u
	m.revokeAllLocked(userID, now)
	return nil
}

// RefreshTokenStore

func (m *memStore) Store(_ context.Context, t model.RefreshToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	if _, dup := m.tokens[t.TokenHash]; dup {
		return errors.New("duplicate token hash")
	}
	m.tokens[t.TokenHash] = t
	return nil
}

func (m *memStore) Rotate(_ context.Context, presented string, next model.RefreshToken, now time.Time) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return model.User{}, m.failWith
	}
	t, ok := m.tokens[presented]
	if !ok || !t.Live(now) {
		return model.User{}, repository.ErrNotFound
	}
	u, ok := m.users[t.UserID]
	if !ok || !u.IsActive {
		return model.User{}, repository.ErrNotFound
	}
	t.RevokedAt = &now
	m.tokens[presented] = t
	next.UserID = u.ID
	m.tokens[next.TokenHash] = next
	return u, nil
}

func (m *memStore) Revoke(_ context.Context, hash string, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	t, ok := m.tokens[hash]
	if !ok || !t.Live(now) {
		return repository.ErrNotFound
	}
	t.RevokedAt = &now
	m.tokens[hash] = t
	return nil
}

func (m *memStore) RevokeAllForUser(_ context.Context, userID uint64, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return 0, m.failWith
	}
	return m.revokeAllLocked(userID, now), nil
}

func (m *memStore) revokeAllLocked(userID uint64, now time.Time) int64 {
	var n int64
	for h, t := range m.tokens {
		if t.UserID == userID && t.Live(now) {
			t.RevokedAt = &now
			m.tokens[h] = t
			n++
		}
	}
	return n
}

// fakeClock is a settable Clock.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// recordingNotifier captures delivered codes.
type recordingNotifier struct {
	mu   sync.Mutex
	sent []sentCode
	err  error
}

type sentCode struct {
	email   string
	code    string
	purpose model.OTPPurpose
}

func (n *recordingNotifier) Send(_ context.Context, email, code string, purpose model.OTPPurpose) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentCode{email, code, purpose})
	return n.err
}

func (n *recordingNotifier) last() sentCode {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.sent) == 0 {
		return sentCode{}
	}
	return n.sent[len(n.sent)-1]
}
