package db

import (
	"context"
	"errors"

	"github.com/aqilnadzmi/library-duty-api/internal/config"
	"github.com/aqilnadzmi/library-duty-api/internal/domain/account"
	"github.com/aqilnadzmi/library-duty-api/internal/repo/postgres"
	"github.com/aqilnadzmi/library-duty-api/internal/security"
)

// EnsureITStaffAccount creates the initial IT-staff account from env config
// so a fresh deployment has someone who can log in. Seeding goes through
// the same create procedure as registration; an already-taken email means
// the account exists and is not an error.
func EnsureITStaffAccount(ctx context.Context, repo *postgres.AccountsRepo, cfg config.Config) error {
	if cfg.SeedITEmail == "" || cfg.SeedITPassword == "" {
		return nil
	}

	hash, err := security.HashPassword(cfg.SeedITPassword, cfg.BcryptCost)

	if err != nil {
		return err
	}

	err = repo.Create(ctx, account.CreateAccountRequest{
		Email:        cfg.SeedITEmail,
		FirstName:    cfg.SeedITFirstName,
		LastName:     cfg.SeedITLastName,
		PasswordHash: hash,
		Role:         account.RoleITStaff,
	})

	if errors.Is(err, account.ErrEmailTaken) {
		return nil
	}

	return err
}
