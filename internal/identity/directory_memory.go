package identity

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"instructorhub/pkg/platform/sentinel"
)

// InMemoryDirectory is a process-local account directory.
type InMemoryDirectory struct {
	mu       sync.RWMutex
	accounts map[string]*Account
	byEmail  map[string]string
}

func NewInMemoryDirectory() *InMemoryDirectory {
	return &InMemoryDirectory{
		accounts: make(map[string]*Account),
		byEmail:  make(map[string]string),
	}
}

// EnsureAccount returns the account for email, creating a plain user account
// when none exists.
func (d *InMemoryDirectory) EnsureAccount(_ context.Context, email, displayName string, now time.Time) (*Account, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if id, ok := d.byEmail[email]; ok {
		clone := *d.accounts[id]
		return &clone, nil
	}
	acct := &Account{
		SubjectID:   uuid.NewString(),
		Email:       email,
		DisplayName: displayName,
		Claims:      Claims{Role: RoleUser},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	d.accounts[acct.SubjectID] = acct
	d.byEmail[email] = acct.SubjectID
	clone := *acct
	return &clone, nil
}

// Register inserts a fully specified account; handy for seeding.
func (d *InMemoryDirectory) Register(acct Account) {
	d.mu.Lock()
	defer d.mu.Unlock()
	clone := acct
	d.accounts[acct.SubjectID] = &clone
	d.byEmail[acct.Email] = acct.SubjectID
}

func (d *InMemoryDirectory) FindBySubject(_ context.Context, subjectID string) (*Account, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	acct, ok := d.accounts[subjectID]
	if !ok {
		return nil, fmt.Errorf("account not found: %w", sentinel.ErrNotFound)
	}
	clone := *acct
	return &clone, nil
}

func (d *InMemoryDirectory) FindByEmail(_ context.Context, email string) (*Account, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	id, ok := d.byEmail[email]
	if !ok {
		return nil, fmt.Errorf("account not found: %w", sentinel.ErrNotFound)
	}
	clone := *d.accounts[id]
	return &clone, nil
}

func (d *InMemoryDirectory) SetClaims(_ context.Context, subjectID string, claims Claims, now time.Time) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	acct, ok := d.accounts[subjectID]
	if !ok {
		return fmt.Errorf("account not found: %w", sentinel.ErrNotFound)
	}
	acct.Claims = claims
	acct.UpdatedAt = now
	return nil
}

// ListWithBankDetails returns accounts whose claims say payout is configured.
func (d *InMemoryDirectory) ListWithBankDetails(_ context.Context) ([]Account, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	var out []Account
	for _, acct := range d.accounts {
		if acct.Claims.BankDetailsAdded {
			out = append(out, *acct)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubjectID < out[j].SubjectID })
	return out, nil
}
