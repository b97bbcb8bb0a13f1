package memory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/aqilnadzmi/library-duty-api/internal/domain/account"
)

func TestConcurrentRegistrationSameEmail(t *testing.T) {
	repo := NewAccountsRepo()

	const attempts = 16

	var wg sync.WaitGroup
	errs := make([]error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = repo.Create(context.Background(), account.CreateAccountRequest{
				Email:        "same@example.edu",
				FirstName:    "First",
				LastName:     "Last",
				PasswordHash: "hash",
				Role:         account.RoleTeacher,
			})
		}(i)
	}
	wg.Wait()

	winners := 0

	for _, err := range errs {
		switch {
		case err == nil:
			winners++
		case errors.Is(err, account.ErrEmailTaken):
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if winners != 1 {
		t.Fatalf("winners = %d, want exactly 1", winners)
	}
}

func TestViewProfileByID(t *testing.T) {
	repo := NewAccountsRepo()

	err := repo.Create(context.Background(), account.CreateAccountRequest{
		Email:        "student@example.edu",
		FirstName:    "Ana",
		LastName:     "Lim",
		PasswordHash: "hash",
		Role:         account.RoleStudent,
		MatricNumber: "A19EC0042",
	})

	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	acc, err := repo.GetByEmailAndRole(context.Background(), "student@example.edu", account.RoleStudent)

	if err != nil {
		t.Fatalf("GetByEmailAndRole: %v", err)
	}

	profile, err := repo.ViewProfileByID(context.Background(), account.RoleStudent, acc.UserID)

	if err != nil {
		t.Fatalf("ViewProfileByID: %v", err)
	}

	if profile["email"] != "student@example.edu" || profile["student_matrix_number"] != "A19EC0042" {
		t.Errorf("profile = %v", profile)
	}

	// a token for one role never reads another role's projection
	if _, err := repo.ViewProfileByID(context.Background(), account.RoleTeacher, acc.UserID); !errors.Is(err, account.ErrNotFound) {
		t.Errorf("cross-role view err = %v, want ErrNotFound", err)
	}
}

func TestGetByEmailAndRole(t *testing.T) {
	repo := NewAccountsRepo()

	_ = repo.Create(context.Background(), account.CreateAccountRequest{
		Email: "t@example.edu", FirstName: "T", LastName: "T",
		PasswordHash: "hash", Role: account.RoleTeacher,
	})

	if _, err := repo.GetByEmailAndRole(context.Background(), "t@example.edu", account.RoleStudent); !errors.Is(err, account.ErrNotFound) {
		t.Errorf("wrong role err = %v, want ErrNotFound", err)
	}

	if _, err := repo.GetByEmailAndRole(context.Background(), "nobody@example.edu", account.RoleTeacher); !errors.Is(err, account.ErrNotFound) {
		t.Errorf("unknown email err = %v, want ErrNotFound", err)
	}
}

func TestUpdateProfileRebindsEmail(t *testing.T) {
	repo := NewAccountsRepo()

	_ = repo.Create(context.Background(), account.CreateAccountRequest{
		Email: "old@example.edu", FirstName: "A", LastName: "B",
		PasswordHash: "hash", Role: account.RoleITStaff,
	})

	acc, _ := repo.GetByEmailAndRole(context.Background(), "old@example.edu", account.RoleITStaff)

	err := repo.UpdateProfile(context.Background(), account.UpdateProfileRequest{
		UserID:    acc.UserID,
		FirstName: "A",
		LastName:  "B",
		Email:     "new@example.edu",
		Role:      account.RoleITStaff,
	})

	if err != nil {
		t.Fatalf("UpdateProfile: %v", err)
	}

	if _, err := repo.GetByEmailAndRole(context.Background(), "old@example.edu", account.RoleITStaff); !errors.Is(err, account.ErrNotFound) {
		t.Errorf("old email still resolves")
	}

	if _, err := repo.GetByEmailAndRole(context.Background(), "new@example.edu", account.RoleITStaff); err != nil {
		t.Errorf("new email does not resolve: %v", err)
	}
}
