package services

import (
	"context"
	"errors"
	"log"

	"taskdesk/internal/authz"
	"taskdesk/internal/models"
	"taskdesk/internal/repositories"
)

const (
	AdminName     = "Administrador"
	AdminPassword = "admin"
)

// AccountDirectory is the registry of accounts and the source of truth for
// authentication and email uniqueness.
type AccountDirectory interface {
	Initialize(ctx context.Context) error
	Register(ctx context.Context, name, email, password string) (bool, error)
	Exists(ctx context.Context, email string) (bool, error)
	Authenticate(ctx context.Context, email, password string) (*models.Account, error)
	ListAll(ctx context.Context) ([]models.AccountSummary, error)
	Delete(ctx context.Context, email string) (Outcome, error)
	SessionFor(ctx context.Context, email string) (authz.Session, error)
}

type accountDirectory struct {
	store Store
}

func NewAccountDirectory(store Store) AccountDirectory {
	return &accountDirectory{store: store}
}

// Initialize creates the schema and seeds the administrator once.
func (d *accountDirectory) Initialize(ctx context.Context) error {
	if err := d.store.Migrate(ctx); err != nil {
		return err
	}
	return d.store.InTx(ctx, func(r repositories.Repos) error {
		admin := &models.Account{
			Name:     AdminName,
			Email:    authz.AdminEmail,
			Password: AdminPassword,
			Role:     authz.RoleAdministrator,
		}
		created, err := r.Accounts.Create(ctx, admin)
		if err != nil {
			return err
		}
		if created {
			log.Printf("[account][init] seeded administrator id=%d", admin.ID)
			return nil
		}
		// stores created before roles were persisted
		return r.Accounts.SetRole(ctx, authz.AdminEmail, authz.RoleAdministrator)
	})
}

func (d *accountDirectory) Register(ctx context.Context, name, email, password string) (bool, error) {
	account := &models.Account{
		Name:     name,
		Email:    email,
		Password: password,
		Role:     authz.RoleForNewAccount(email),
	}
	var created bool
	err := d.store.InTx(ctx, func(r repositories.Repos) error {
		var err error
		created, err = r.Accounts.Create(ctx, account)
		return err
	})
	if err != nil {
		log.Printf("[account][register][err] email=%q: %v", email, err)
		return false, err
	}
	if !created {
		log.Printf("[account][register][dup] email=%q", email)
		return false, nil
	}
	log.Printf("[account][register][ok] id=%d email=%q", account.ID, email)
	return true, nil
}

func (d *accountDirectory) Exists(ctx context.Context, email string) (bool, error) {
	return d.store.Repos().Accounts.Exists(ctx, email)
}

// Authenticate returns the account when both email and password match
// exactly, and nil on any mismatch.
func (d *accountDirectory) Authenticate(ctx context.Context, email, password string) (*models.Account, error) {
	account, err := d.store.Repos().Accounts.GetByEmail(ctx, email)
	if errors.Is(err, repositories.ErrNotFound) {
		log.Printf("[account][login][fail] unknown email=%q", email)
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if account.Password != password {
		log.Printf("[account][login][fail] password mismatch email=%q", email)
		return nil, nil
	}
	log.Printf("[account][login][ok] id=%d role=%s", account.ID, account.Role)
	return account, nil
}

// ListAll returns every account sorted by name.
func (d *accountDirectory) ListAll(ctx context.Context) ([]models.AccountSummary, error) {
	return d.store.Repos().Accounts.List(ctx)
}

var errAbort = errors.New("abort transaction")

// Delete removes the account and every task it owns in one transaction.
func (d *accountDirectory) Delete(ctx context.Context, email string) (Outcome, error) {
	if email == authz.AdminEmail {
		log.Printf("[account][delete][deny] administrator")
		return refused(ReasonProtectedAdmin, "cannot delete the administrator account"), nil
	}

	var removedTasks int64
	err := d.store.InTx(ctx, func(r repositories.Repos) error {
		n, err := r.Tasks.DeleteByOwner(ctx, email)
		if err != nil {
			return err
		}
		removedTasks = n
		deleted, err := r.Accounts.Delete(ctx, email)
		if err != nil {
			return err
		}
		if !deleted {
			return errAbort
		}
		return nil
	})
	if errors.Is(err, errAbort) {
		log.Printf("[account][delete][404] email=%q", email)
		return outcomeNotFound, nil
	}
	if err != nil {
		log.Printf("[account][delete][err] email=%q: %v", email, err)
		return Outcome{}, err
	}
	log.Printf("[account][delete][ok] email=%q tasks=%d", email, removedTasks)
	return succeeded("account deleted"), nil
}

// SessionFor builds the acting identity for an email. Emails without an
// account act with the standard role.
func (d *accountDirectory) SessionFor(ctx context.Context, email string) (authz.Session, error) {
	account, err := d.store.Repos().Accounts.GetByEmail(ctx, email)
	if errors.Is(err, repositories.ErrNotFound) {
		return authz.Session{Email: email, Role: authz.RoleStandard}, nil
	}
	if err != nil {
		return authz.Session{}, err
	}
	return account.Session(), nil
}
