package impl

import (
	"context"
	"errors"
	"time"

	"authsvc/internal/domain"
	"authsvc/internal/store"

	"github.com/google/uuid"
	"github.com/samber/oops"
)

// The services depend on these narrow views of the store so tests can run
// against in-memory fakes.

type dataStore interface {
	storeTx
	WithTx(ctx context.Context, fn func(tx storeTx) error) error
	DeleteAccount(ctx context.Context, id uuid.UUID) error
}

type storeTx interface {
	Accounts() accountStore
	VerificationTokens() verificationTokenStore
	ResetTokens() resetTokenStore
	Sessions() sessionStore
}

type accountStore interface {
	Create(ctx context.Context, acc *domain.Account) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	GetByEmail(ctx context.Context, email string) (*domain.Account, error)
	GetWithSubscription(ctx context.Context, id uuid.UUID) (*domain.Account, error)
	SetEmailVerified(ctx context.Context, id uuid.UUID, at time.Time) error
	SetPasswordHash(ctx context.Context, id uuid.UUID, hash string, at time.Time) error
	UpdateProfile(ctx context.Context, id uuid.UUID, name string, company *string, at time.Time) error
	ListUnverifiedIDs(ctx context.Context) ([]uuid.UUID, error)
}

type verificationTokenStore interface {
	Create(ctx context.Context, t *domain.EmailVerificationToken) error
	GetByToken(ctx context.Context, token string) (*domain.EmailVerificationToken, error)
	HasUnexpired(ctx context.Context, accountID uuid.UUID, now time.Time) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type resetTokenStore interface {
	Create(ctx context.Context, t *domain.PasswordResetToken) error
	GetByToken(ctx context.Context, token string) (*domain.PasswordResetToken, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type sessionStore interface {
	Create(ctx context.Context, s *domain.Session) error
	GetByRefreshToken(ctx context.Context, token string) (*domain.Session, error)
	GetActiveByAccessToken(ctx context.Context, token string, accountID uuid.UUID, now time.Time) (*domain.Session, error)
	Rotate(ctx context.Context, s *domain.Session) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByToken(ctx context.Context, token string) (int64, error)
	DeleteByRefreshToken(ctx context.Context, token string) (int64, error)
}

// AttemptCounter tracks failed logins per email. Get returns
// store.ErrRecordNotFound when no failures are on record.
type AttemptCounter interface {
	Get(ctx context.Context, email string) (*domain.LoginAttempt, error)
	Increment(ctx context.Context, email string, now time.Time) error
	Reset(ctx context.Context, email string) error
}

type gormStoreAdapter struct {
	store *store.Store
}

func newGormStoreAdapter(st *store.Store) gormStoreAdapter { return gormStoreAdapter{store: st} }

func (g gormStoreAdapter) WithTx(ctx context.Context, fn func(tx storeTx) error) error {
	if g.store == nil {
		return errors.New("nil store")
	}
	return g.store.WithTx(ctx, func(tx *store.Store) error {
		return fn(gormTxAdapter{tx: tx})
	})
}

func (g gormStoreAdapter) DeleteAccount(ctx context.Context, id uuid.UUID) error {
	_, err := g.store.DeleteAccount(ctx, id)
	return err
}

func (g gormStoreAdapter) Accounts() accountStore { return g.store.Accounts() }

func (g gormStoreAdapter) VerificationTokens() verificationTokenStore {
	return g.store.VerificationTokens()
}

func (g gormStoreAdapter) ResetTokens() resetTokenStore { return g.store.ResetTokens() }

func (g gormStoreAdapter) Sessions() sessionStore { return g.store.Sessions() }

type gormTxAdapter struct {
	tx *store.Store
}

func (g gormTxAdapter) Accounts() accountStore { return g.tx.Accounts() }

func (g gormTxAdapter) VerificationTokens() verificationTokenStore {
	return g.tx.VerificationTokens()
}

func (g gormTxAdapter) ResetTokens() resetTokenStore { return g.tx.ResetTokens() }

func (g gormTxAdapter) Sessions() sessionStore { return g.tx.Sessions() }

func isNotFound(err error) bool { return errors.Is(err, store.ErrRecordNotFound) }

func storeFailure(op string, err error) error {
	return oops.Code("AUTH_STORE_FAILED").With("operation", op).Wrap(err)
}

func clock(now func() time.Time) time.Time {
	if now != nil {
		return now().UTC()
	}
	return time.Now().UTC()
}
