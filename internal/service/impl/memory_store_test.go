package impl

import (
	"context"
	"errors"
	"maps"
	"os"
	"sync"
	"testing"
	"time"

	"authsvc/internal/domain"
	"authsvc/internal/observability/metrics"
	"authsvc/internal/store"

	"github.com/google/uuid"
)

func TestMain(m *testing.M) {
	metrics.MustRegister("authsvc-test")
	os.Exit(m.Run())
}

type memoryStore struct {
	mu            sync.Mutex
	accounts      map[uuid.UUID]*domain.Account
	verifications map[uuid.UUID]*domain.EmailVerificationToken
	resets        map[uuid.UUID]*domain.PasswordResetToken
	sessions      map[uuid.UUID]*domain.Session
	attempts      map[string]*domain.LoginAttempt

	failIncrement error
}

type storeSnapshot struct {
	accounts      map[uuid.UUID]*domain.Account
	verifications map[uuid.UUID]*domain.EmailVerificationToken
	resets        map[uuid.UUID]*domain.PasswordResetToken
	sessions      map[uuid.UUID]*domain.Session
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		accounts:      make(map[uuid.UUID]*domain.Account),
		verifications: make(map[uuid.UUID]*domain.EmailVerificationToken),
		resets:        make(map[uuid.UUID]*domain.PasswordResetToken),
		sessions:      make(map[uuid.UUID]*domain.Session),
		attempts:      make(map[string]*domain.LoginAttempt),
	}
}

func (m *memoryStore) WithTx(ctx context.Context, fn func(tx storeTx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := m.snapshot()
	if err := fn(m); err != nil {
		m.restore(snapshot)
		return err
	}
	return nil
}

func (m *memoryStore) snapshot() storeSnapshot {
	return storeSnapshot{
		accounts:      cloneRows(m.accounts),
		verifications: cloneRows(m.verifications),
		resets:        cloneRows(m.resets),
		sessions:      cloneRows(m.sessions),
	}
}

func (m *memoryStore) restore(s storeSnapshot) {
	m.accounts = s.accounts
	m.verifications = s.verifications
	m.resets = s.resets
	m.sessions = s.sessions
}

func cloneRows[K comparable, V any](in map[K]*V) map[K]*V {
	out := make(map[K]*V, len(in))
	for k, v := range in {
		copy := *v
		out[k] = &copy
	}
	return out
}

func (m *memoryStore) DeleteAccount(ctx context.Context, id uuid.UUID) error {
	maps.DeleteFunc(m.verifications, func(_ uuid.UUID, t *domain.EmailVerificationToken) bool { return t.AccountID == id })
	maps.DeleteFunc(m.resets, func(_ uuid.UUID, t *domain.PasswordResetToken) bool { return t.AccountID == id })
	maps.DeleteFunc(m.sessions, func(_ uuid.UUID, s *domain.Session) bool { return s.AccountID == id })
	delete(m.accounts, id)
	return nil
}

func (m *memoryStore) Accounts() accountStore { return &memoryAccountStore{store: m} }

func (m *memoryStore) VerificationTokens() verificationTokenStore {
	return &memoryVerificationStore{store: m}
}

func (m *memoryStore) ResetTokens() resetTokenStore { return &memoryResetStore{store: m} }

func (m *memoryStore) Sessions() sessionStore { return &memorySessionStore{store: m} }

// AttemptCounter

func (m *memoryStore) Get(ctx context.Context, email string) (*domain.LoginAttempt, error) {
	a, ok := m.attempts[email]
	if !ok {
		return nil, store.ErrRecordNotFound
	}
	copy := *a
	return &copy, nil
}

func (m *memoryStore) Increment(ctx context.Context, email string, now time.Time) error {
	if m.failIncrement != nil {
		return m.failIncrement
	}
	a, ok := m.attempts[email]
	if !ok {
		m.attempts[email] = &domain.LoginAttempt{Email: email, Attempts: 1, CreatedAt: now, UpdatedAt: now}
		return nil
	}
	a.Attempts++
	a.UpdatedAt = now
	return nil
}

func (m *memoryStore) Reset(ctx context.Context, email string) error {
	delete(m.attempts, email)
	return nil
}

// test helpers

func (m *memoryStore) accountByEmail(email string) (*domain.Account, bool) {
	for _, a := range m.accounts {
		if a.Email == email {
			copy := *a
			return &copy, true
		}
	}
	return nil, false
}

func (m *memoryStore) verificationFor(accountID uuid.UUID) (*domain.EmailVerificationToken, bool) {
	for _, t := range m.verifications {
		if t.AccountID == accountID {
			copy := *t
			return &copy, true
		}
	}
	return nil, false
}

func (m *memoryStore) resetFor(accountID uuid.UUID) (*domain.PasswordResetToken, bool) {
	for _, t := range m.resets {
		if t.AccountID == accountID {
			copy := *t
			return &copy, true
		}
	}
	return nil, false
}

func (m *memoryStore) sessionsFor(accountID uuid.UUID) []domain.Session {
	var out []domain.Session
	for _, s := range m.sessions {
		if s.AccountID == accountID {
			out = append(out, *s)
		}
	}
	return out
}

type memoryAccountStore struct {
	store *memoryStore
}

func (s *memoryAccountStore) Create(ctx context.Context, acc *domain.Account) error {
	if _, taken := s.store.accountByEmail(acc.Email); taken {
		return store.ErrDuplicate
	}
	copy := *acc
	s.store.accounts[acc.ID] = &copy
	return nil
}

func (s *memoryAccountStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	acc, ok := s.store.accounts[id]
	if !ok {
		return nil, store.ErrRecordNotFound
	}
	copy := *acc
	return &copy, nil
}

func (s *memoryAccountStore) GetByEmail(ctx context.Context, email string) (*domain.Account, error) {
	acc, ok := s.store.accountByEmail(domain.NormalizeEmail(email))
	if !ok {
		return nil, store.ErrRecordNotFound
	}
	return acc, nil
}

func (s *memoryAccountStore) GetWithSubscription(ctx context.Context, id uuid.UUID) (*domain.Account, error) {
	return s.GetByID(ctx, id)
}

func (s *memoryAccountStore) SetEmailVerified(ctx context.Context, id uuid.UUID, at time.Time) error {
	return s.update(id, func(a *domain.Account) {
		a.IsEmailVerified = true
		a.UpdatedAt = at
	})
}

func (s *memoryAccountStore) SetPasswordHash(ctx context.Context, id uuid.UUID, hash string, at time.Time) error {
	return s.update(id, func(a *domain.Account) {
		a.PasswordHash = hash
		a.UpdatedAt = at
	})
}

func (s *memoryAccountStore) UpdateProfile(ctx context.Context, id uuid.UUID, name string, company *string, at time.Time) error {
	return s.update(id, func(a *domain.Account) {
		a.Name = name
		a.CompanyName = company
		a.UpdatedAt = at
	})
}

func (s *memoryAccountStore) ListUnverifiedIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	for id, a := range s.store.accounts {
		if !a.IsEmailVerified {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

func (s *memoryAccountStore) update(id uuid.UUID, fn func(a *domain.Account)) error {
	acc, ok := s.store.accounts[id]
	if !ok {
		return store.ErrRecordNotFound
	}
	fn(acc)
	return nil
}

type memoryVerificationStore struct {
	store *memoryStore
}

func (s *memoryVerificationStore) Create(ctx context.Context, t *domain.EmailVerificationToken) error {
	copy := *t
	s.store.verifications[t.ID] = &copy
	return nil
}

func (s *memoryVerificationStore) GetByToken(ctx context.Context, token string) (*domain.EmailVerificationToken, error) {
	for _, t := range s.store.verifications {
		if t.Token == token {
			copy := *t
			return &copy, nil
		}
	}
	return nil, store.ErrRecordNotFound
}

func (s *memoryVerificationStore) HasUnexpired(ctx context.Context, accountID uuid.UUID, now time.Time) (bool, error) {
	for _, t := range s.store.verifications {
		if t.AccountID == accountID && t.ExpiresAt.After(now) {
			return true, nil
		}
	}
	return false, nil
}

func (s *memoryVerificationStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := s.store.verifications[id]; !ok {
		return store.ErrRecordNotFound
	}
	delete(s.store.verifications, id)
	return nil
}

type memoryResetStore struct {
	store *memoryStore
}

func (s *memoryResetStore) Create(ctx context.Context, t *domain.PasswordResetToken) error {
	copy := *t
	s.store.resets[t.ID] = &copy
	return nil
}

func (s *memoryResetStore) GetByToken(ctx context.Context, token string) (*domain.PasswordResetToken, error) {
	for _, t := range s.store.resets {
		if t.Token == token {
			copy := *t
			return &copy, nil
		}
	}
	return nil, store.ErrRecordNotFound
}

func (s *memoryResetStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := s.store.resets[id]; !ok {
		return store.ErrRecordNotFound
	}
	delete(s.store.resets, id)
	return nil
}

type memorySessionStore struct {
	store *memoryStore
}

func (s *memorySessionStore) Create(ctx context.Context, sess *domain.Session) error {
	copy := *sess
	s.store.sessions[sess.ID] = &copy
	return nil
}

func (s *memorySessionStore) GetByRefreshToken(ctx context.Context, token string) (*domain.Session, error) {
	for _, sess := range s.store.sessions {
		if sess.RefreshToken == token {
			copy := *sess
			return &copy, nil
		}
	}
	return nil, store.ErrRecordNotFound
}

func (s *memorySessionStore) GetActiveByAccessToken(ctx context.Context, token string, accountID uuid.UUID, now time.Time) (*domain.Session, error) {
	for _, sess := range s.store.sessions {
		if sess.AccessToken == token && sess.AccountID == accountID && sess.AccessTokenExpiresAt.After(now) {
			copy := *sess
			return &copy, nil
		}
	}
	return nil, store.ErrRecordNotFound
}

func (s *memorySessionStore) Rotate(ctx context.Context, sess *domain.Session) error {
	cur, ok := s.store.sessions[sess.ID]
	if !ok {
		return store.ErrRecordNotFound
	}
	cur.AccessToken = sess.AccessToken
	cur.RefreshToken = sess.RefreshToken
	cur.AccessTokenExpiresAt = sess.AccessTokenExpiresAt
	cur.RefreshTokenExpiresAt = sess.RefreshTokenExpiresAt
	cur.UpdatedAt = sess.UpdatedAt
	return nil
}

func (s *memorySessionStore) Delete(ctx context.Context, id uuid.UUID) error {
	delete(s.store.sessions, id)
	return nil
}

func (s *memorySessionStore) DeleteByToken(ctx context.Context, token string) (int64, error) {
	before := len(s.store.sessions)
	maps.DeleteFunc(s.store.sessions, func(_ uuid.UUID, sess *domain.Session) bool {
		return sess.AccessToken == token || sess.RefreshToken == token
	})
	return int64(before - len(s.store.sessions)), nil
}

func (s *memorySessionStore) DeleteByRefreshToken(ctx context.Context, token string) (int64, error) {
	before := len(s.store.sessions)
	maps.DeleteFunc(s.store.sessions, func(_ uuid.UUID, sess *domain.Session) bool {
		return sess.RefreshToken == token
	})
	return int64(before - len(s.store.sessions)), nil
}

// stubMailer records what would have been sent.
type stubMailer struct {
	err error

	verifications []sentMail
	resets        []sentMail
	changed       []string
}

type sentMail struct {
	to    string
	token string
}

func (s *stubMailer) SendVerification(ctx context.Context, to, token string) error {
	if s.err != nil {
		return s.err
	}
	s.verifications = append(s.verifications, sentMail{to: to, token: token})
	return nil
}

func (s *stubMailer) SendPasswordReset(ctx context.Context, to, token string) error {
	if s.err != nil {
		return s.err
	}
	s.resets = append(s.resets, sentMail{to: to, token: token})
	return nil
}

func (s *stubMailer) SendPasswordChanged(ctx context.Context, to string) error {
	if s.err != nil {
		return s.err
	}
	s.changed = append(s.changed, to)
	return nil
}

var errSMTPDown = errors.New("smtp: connection refused")

// staleReadStore answers token lookups from rows captured earlier, the way a
// request that read before a concurrent consumer committed would see them.
// Writes still go to the underlying store.
type staleReadStore struct {
	*memoryStore
	verification *domain.EmailVerificationToken
	reset        *domain.PasswordResetToken
}

func (s *staleReadStore) VerificationTokens() verificationTokenStore {
	return staleVerificationStore{memoryVerificationStore: &memoryVerificationStore{store: s.memoryStore}, row: s.verification}
}

func (s *staleReadStore) ResetTokens() resetTokenStore {
	return staleResetStore{memoryResetStore: &memoryResetStore{store: s.memoryStore}, row: s.reset}
}

type staleVerificationStore struct {
	*memoryVerificationStore
	row *domain.EmailVerificationToken
}

func (s staleVerificationStore) GetByToken(ctx context.Context, token string) (*domain.EmailVerificationToken, error) {
	if s.row != nil && s.row.Token == token {
		copy := *s.row
		return &copy, nil
	}
	return s.memoryVerificationStore.GetByToken(ctx, token)
}

type staleResetStore struct {
	*memoryResetStore
	row *domain.PasswordResetToken
}

func (s staleResetStore) GetByToken(ctx context.Context, token string) (*domain.PasswordResetToken, error) {
	if s.row != nil && s.row.Token == token {
		copy := *s.row
		return &copy, nil
	}
	return s.memoryResetStore.GetByToken(ctx, token)
}
