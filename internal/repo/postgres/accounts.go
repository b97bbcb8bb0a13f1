package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aqilnadzmi/library-duty-api/internal/domain/account"
	"github.com/aqilnadzmi/library-duty-api/internal/observability"
)

// AccountsRepo is the gateway to the account stored procedures. Creation,
// profile views and profile updates go through the per-role procedures from
// the account capability table; the credential lookups are plain queries.
type AccountsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewAccountsRepo(pool *pgxpool.Pool, prom *observability.Prom) *AccountsRepo {
	return &AccountsRepo{
		pool: pool,
		prom: prom,
	}
}

func (repo *AccountsRepo) observe(op string, fn func() error) error {
	if repo.prom != nil {
		return repo.prom.ObserveDB(op, fn)
	}
	return fn()
}

// Create dispatches to the role's account-creation procedure. Students get
// the matric number as a trailing parameter; everyone else gets four
// parameters.
func (repo *AccountsRepo) Create(ctx context.Context, req account.CreateAccountRequest) error {
	procs, err := req.Role.Procedures()

	if err != nil {
		return err
	}

	err = repo.observe("accounts.create."+string(req.Role), func() error {
		if req.Role.RequiresMatricNumber() {
			_, e := repo.pool.Exec(ctx,
				`CALL `+procs.Create+`($1, $2, $3, $4, $5)`,
				req.Email, req.FirstName, req.LastName, req.PasswordHash, req.MatricNumber,
			)
			return e
		}

		_, e := repo.pool.Exec(ctx,
			`CALL `+procs.Create+`($1, $2, $3, $4)`,
			req.Email, req.FirstName, req.LastName, req.PasswordHash,
		)
		return e
	})

	if isUniqueViolation(err) {
		return account.ErrEmailTaken
	}

	return err
}

// GetByEmailAndRole fetches exactly the row matching both email and role.
// A role mismatch and an unknown email are indistinguishable to the caller.
func (repo *AccountsRepo) GetByEmailAndRole(ctx context.Context, email string, role account.Role) (account.Account, error) {
	var acc account.Account

	err := repo.observe("accounts.get_by_email_role", func() error {
		return repo.pool.QueryRow(ctx,
			`SELECT user_id, email, first_name, last_name, role, password_hash
			 FROM users
			 WHERE email = $1 AND role = $2`,
			email, string(role),
		).Scan(
			&acc.UserID,
			&acc.Email,
			&acc.FirstName,
			&acc.LastName,
			&acc.Role,
			&acc.PasswordHash,
		)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return account.Account{}, account.ErrNotFound
		}

		return account.Account{}, err
	}

	return acc, nil
}

// GetStudentMatricNumber looks up the student detail row for a user.
// Missing rows come back as account.ErrNoStudentDetail so login can omit the field
// instead of failing.
func (repo *AccountsRepo) GetStudentMatricNumber(ctx context.Context, userID int64) (string, error) {
	var matric string

	err := repo.observe("accounts.get_matric", func() error {
		return repo.pool.QueryRow(ctx,
			`SELECT student_matrix_number FROM students WHERE user_id = $1`,
			userID,
		).Scan(&matric)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", account.ErrNoStudentDetail
		}

		return "", err
	}

	return matric, nil
}

// ViewProfileByID runs the role's view procedure and returns the first row
// as a generic projection. Column sets differ per role, so the row stays a
// map instead of being forced into one struct.
func (repo *AccountsRepo) ViewProfileByID(ctx context.Context, role account.Role, userID int64) (map[string]any, error) {
	procs, err := role.Procedures()

	if err != nil {
		return nil, err
	}

	var profile map[string]any

	err = repo.observe("accounts.view."+string(role), func() error {
		rows, e := repo.pool.Query(ctx, `SELECT * FROM `+procs.ViewByID+`($1)`, userID)

		if e != nil {
			return e
		}

		collected, e := pgx.CollectRows(rows, pgx.RowToMap)

		if e != nil {
			return e
		}

		if len(collected) == 0 {
			return account.ErrNotFound
		}

		profile = collected[0]
		return nil
	})

	if err != nil {
		return nil, err
	}

	return profile, nil
}

// UpdateProfile dispatches to the role's profile-update procedure.
func (repo *AccountsRepo) UpdateProfile(ctx context.Context, req account.UpdateProfileRequest) error {
	procs, err := req.Role.Procedures()

	if err != nil {
		return err
	}

	err = repo.observe("accounts.update_profile."+string(req.Role), func() error {
		if req.Role.RequiresMatricNumber() {
			_, e := repo.pool.Exec(ctx,
				`CALL `+procs.UpdateProfile+`($1, $2, $3, $4, $5)`,
				req.UserID, req.FirstName, req.LastName, req.Email, req.MatricNumber,
			)
			return e
		}

		_, e := repo.pool.Exec(ctx,
			`CALL `+procs.UpdateProfile+`($1, $2, $3, $4)`,
			req.UserID, req.FirstName, req.LastName, req.Email,
		)
		return e
	})

	if isUniqueViolation(err) {
		return account.ErrEmailTaken
	}

	return err
}

// GetPasswordHash fetches only the stored hash for a user.
func (repo *AccountsRepo) GetPasswordHash(ctx context.Context, userID int64) (string, error) {
	var hash string

	err := repo.observe("accounts.get_password_hash", func() error {
		return repo.pool.QueryRow(ctx,
			`SELECT password_hash FROM users WHERE user_id = $1`,
			userID,
		).Scan(&hash)
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", account.ErrNotFound
		}

		return "", err
	}

	return hash, nil
}

// UpdatePassword persists a new hash through the dedicated procedure.
func (repo *AccountsRepo) UpdatePassword(ctx context.Context, userID int64, newHash string) error {
	return repo.observe("accounts.update_password", func() error {
		_, err := repo.pool.Exec(ctx,
			`CALL p_update_user_password($1, $2)`,
			userID, newHash,
		)
		return err
	})
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError

	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
