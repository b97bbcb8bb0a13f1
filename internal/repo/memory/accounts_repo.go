package memory

import (
	"context"
	"sync"

	"github.com/aqilnadzmi/library-duty-api/internal/domain/account"
)

// AccountsRepo is an in-memory AccountStore for tests and local hacking.
// Email uniqueness is enforced under the lock, mirroring the database's
// unique constraint: of two concurrent registrations with the same email
// exactly one wins.
type AccountsRepo struct {
	mu       sync.RWMutex
	nextID   int64
	byID     map[int64]account.Account
	byEmail  map[string]int64
	students map[int64]string // userID -> matric number
}

func NewAccountsRepo() *AccountsRepo {
	return &AccountsRepo{
		nextID:   1,
		byID:     make(map[int64]account.Account),
		byEmail:  make(map[string]int64),
		students: make(map[int64]string),
	}
}

func (r *AccountsRepo) Create(_ context.Context, req account.CreateAccountRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.byEmail[req.Email]; taken {
		return account.ErrEmailTaken
	}

	acc := account.Account{
		UserID:       r.nextID,
		Email:        req.Email,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Role:         req.Role,
		PasswordHash: req.PasswordHash,
	}
	r.nextID++

	r.byID[acc.UserID] = acc
	r.byEmail[acc.Email] = acc.UserID

	if req.Role.RequiresMatricNumber() {
		r.students[acc.UserID] = req.MatricNumber
	}

	return nil
}

func (r *AccountsRepo) GetByEmailAndRole(_ context.Context, email string, role account.Role) (account.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]

	if !ok {
		return account.Account{}, account.ErrNotFound
	}

	acc := r.byID[id]

	if acc.Role != role {
		return account.Account{}, account.ErrNotFound
	}

	return acc, nil
}

func (r *AccountsRepo) GetStudentMatricNumber(_ context.Context, userID int64) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matric, ok := r.students[userID]

	if !ok {
		return "", account.ErrNoStudentDetail
	}

	return matric, nil
}

func (r *AccountsRepo) ViewProfileByID(_ context.Context, role account.Role, userID int64) (map[string]any, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	acc, ok := r.byID[userID]

	if !ok || acc.Role != role {
		return nil, account.ErrNotFound
	}

	profile := map[string]any{
		"user_id":    acc.UserID,
		"email":      acc.Email,
		"first_name": acc.FirstName,
		"last_name":  acc.LastName,
		"role":       string(acc.Role),
	}

	if matric, ok := r.students[userID]; ok {
		profile["student_matrix_number"] = matric
	}

	return profile, nil
}

func (r *AccountsRepo) UpdateProfile(_ context.Context, req account.UpdateProfileRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	acc, ok := r.byID[req.UserID]

	if !ok {
		return account.ErrNotFound
	}

	if id, taken := r.byEmail[req.Email]; taken && id != req.UserID {
		return account.ErrEmailTaken
	}

	delete(r.byEmail, acc.Email)

	acc.FirstName = req.FirstName
	acc.LastName = req.LastName
	acc.Email = req.Email

	r.byID[acc.UserID] = acc
	r.byEmail[acc.Email] = acc.UserID

	if req.Role.RequiresMatricNumber() {
		r.students[acc.UserID] = req.MatricNumber
	}

	return nil
}

func (r *AccountsRepo) GetPasswordHash(_ context.Context, userID int64) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	acc, ok := r.byID[userID]

	if !ok {
		return "", account.ErrNotFound
	}

	return acc.PasswordHash, nil
}

func (r *AccountsRepo) UpdatePassword(_ context.Context, userID int64, newHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	acc, ok := r.byID[userID]

	if !ok {
		return account.ErrNotFound
	}

	acc.PasswordHash = newHash
	r.byID[userID] = acc

	return nil
}
