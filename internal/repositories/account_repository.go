package repositories

import (
	"context"
	"database/sql"
	"errors"

	"taskdesk/internal/authz"
	"taskdesk/internal/models"
)

type AccountRepository interface {
	// Create inserts the account and reports false when the email is taken.
	Create(ctx context.Context, account *models.Account) (bool, error)
	Exists(ctx context.Context, email string) (bool, error)
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	List(ctx context.Context) ([]models.AccountSummary, error)
	Delete(ctx context.Context, email string) (bool, error)
	SetRole(ctx context.Context, email string, role authz.Role) error
}

type accountRepository struct {
	db DBTX
}

func NewAccountRepository(db DBTX) AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) Create(ctx context.Context, account *models.Account) (bool, error) {
	const q = `
		INSERT INTO usuarios (nome, email, senha, papel)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (email) DO NOTHING
		RETURNING id
	`
	err := r.db.QueryRowContext(ctx, q,
		account.Name,
		account.Email,
		account.Password,
		string(account.Role),
	).Scan(&account.ID)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fault("create account", err)
	}
	return true, nil
}

func (r *accountRepository) Exists(ctx context.Context, email string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM usuarios WHERE email = $1`, email).Scan(&n)
	if err != nil {
		return false, fault("account exists", err)
	}
	return n > 0, nil
}

func (r *accountRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	const q = `
		SELECT id, nome, email, senha, COALESCE(papel, '')
		FROM usuarios
		WHERE email = $1
	`
	a := &models.Account{}
	var role string
	err := r.db.QueryRowContext(ctx, q, email).Scan(&a.ID, &a.Name, &a.Email, &a.Password, &role)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fault("get account", err)
	}
	a.Role = authz.DecodeRole(role)
	return a, nil
}

func (r *accountRepository) List(ctx context.Context) ([]models.AccountSummary, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, nome, email FROM usuarios ORDER BY nome ASC, id ASC`)
	if err != nil {
		return nil, fault("list accounts", err)
	}
	defer rows.Close()

	res := []models.AccountSummary{}
	for rows.Next() {
		var s models.AccountSummary
		if err := rows.Scan(&s.ID, &s.Name, &s.Email); err != nil {
			return nil, fault("list accounts", err)
		}
		res = append(res, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fault("list accounts", err)
	}
	return res, nil
}

func (r *accountRepository) Delete(ctx context.Context, email string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM usuarios WHERE email = $1`, email)
	if err != nil {
		return false, fault("delete account", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fault("delete account", err)
	}
	return n > 0, nil
}

func (r *accountRepository) SetRole(ctx context.Context, email string, role authz.Role) error {
	_, err := r.db.ExecContext(ctx, `UPDATE usuarios SET papel = $1 WHERE email = $2`, string(role), email)
	if err != nil {
		return fault("set role", err)
	}
	return nil
}
