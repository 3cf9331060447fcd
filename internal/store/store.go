package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/chamroeunchet-blip/OneDeviceLoginProject/internal/domain"
	"github.com/chamroeunchet-blip/OneDeviceLoginProject/internal/metrics"
)

// tableDocument is the on-disk shape of the account table.
type tableDocument struct {
	Accounts map[string]*domain.Account `json:"accounts"`
}

// Store serializes every read-modify-write transaction on the account table
// and persists it to a single JSON file.
type Store struct {
	path string

	mu       sync.Mutex
	accounts map[string]*domain.Account
	tokens   map[string]string // session token -> username
}

// Open loads the account table from path, initializing the file with an empty
// table if it does not exist. Errors here are fatal to startup: a store that
// cannot read or create its file must not serve requests.
func Open(path string) (*Store, error) {
	s := &Store{path: path}

	raw, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		s.accounts = make(map[string]*domain.Account)
		if err := s.persist(s.accounts); err != nil {
			return nil, fmt.Errorf("initialize account table at %s: %w", path, err)
		}
	case err != nil:
		return nil, fmt.Errorf("read account table at %s: %w", path, err)
	default:
		var doc tableDocument
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("parse account table at %s: %w", path, err)
		}
		s.accounts = doc.Accounts
		if s.accounts == nil {
			s.accounts = make(map[string]*domain.Account)
		}
	}

	s.tokens = buildTokenIndex(s.accounts)
	return s, nil
}

// Tx is a view of the account table inside a transaction. Accounts returned
// from it may be mutated freely; nothing is persisted unless the transaction
// function calls MarkChanged and returns nil.
type Tx struct {
	accounts map[string]*domain.Account
	tokens   map[string]string
	changed  bool
}

// Account returns the account for username, if present.
func (tx *Tx) Account(username string) (*domain.Account, bool) {
	acct, ok := tx.accounts[username]
	return acct, ok
}

// Put inserts or replaces an account and marks the transaction changed.
func (tx *Tx) Put(username string, acct *domain.Account) {
	tx.accounts[username] = acct
	tx.changed = true
}

// Each calls fn for every account in the table.
func (tx *Tx) Each(fn func(username string, acct *domain.Account)) {
	for username, acct := range tx.accounts {
		fn(username, acct)
	}
}

// UsernameByToken resolves a session token via the secondary index,
// avoiding a linear scan over all accounts.
func (tx *Tx) UsernameByToken(token string) (string, bool) {
	username, ok := tx.tokens[token]
	return username, ok
}

// MarkChanged flags the transaction for persistence on commit.
func (tx *Tx) MarkChanged() {
	tx.changed = true
}

// Update runs fn inside an exclusive transaction. The function receives a
// deep copy of the table; if it marks the transaction changed and returns
// nil, the copy is saved to disk and then swapped in as the live table. If
// the save fails, the mutation is discarded entirely and the error returned,
// so no unsaved state ever becomes visible.
func (s *Store) Update(ctx context.Context, fn func(tx *Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &Tx{
		accounts: cloneTable(s.accounts),
		tokens:   s.tokens,
	}
	if err := fn(tx); err != nil {
		return err
	}
	if !tx.changed {
		return nil
	}

	if err := s.persist(tx.accounts); err != nil {
		return fmt.Errorf("persist account table: %w", err)
	}
	s.accounts = tx.accounts
	s.tokens = buildTokenIndex(tx.accounts)
	return nil
}

// View runs fn with read access to the live table under the same lock as
// Update. The function must not mutate accounts; use Update for that.
func (s *Store) View(ctx context.Context, fn func(tx *Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return fn(&Tx{accounts: s.accounts, tokens: s.tokens})
}

// Reconcile folds the configured credential list into the table: missing
// accounts are inserted as logged out, existing accounts get their password
// refreshed in place, and session/ownership fields are never touched. Safe to
// run on every boot.
func (s *Store) Reconcile(ctx context.Context, creds []domain.Credential) error {
	return s.Update(ctx, func(tx *Tx) error {
		for _, cred := range creds {
			if acct, ok := tx.Account(cred.Username); ok {
				if acct.Password != cred.Password {
					acct.Password = cred.Password
					tx.MarkChanged()
				}
				continue
			}
			tx.Put(cred.Username, &domain.Account{
				Password: cred.Password,
				Status:   domain.StatusLoggedOut,
			})
		}
		return nil
	})
}

// Ping reports whether the store is usable. Used by readiness checks.
func (s *Store) Ping(ctx context.Context) error {
	return s.View(ctx, func(*Tx) error { return nil })
}

// persist writes the full table to a temp file in the same directory and
// renames it over the target, so readers never observe a torn file. Callers
// must hold s.mu.
func (s *Store) persist(accounts map[string]*domain.Account) error {
	start := time.Now()
	err := s.writeFile(accounts)
	metrics.StoreSaveDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.StoreSavesTotal.WithLabelValues("error").Inc()
		return err
	}
	metrics.StoreSavesTotal.WithLabelValues("ok").Inc()
	return nil
}

func (s *Store) writeFile(accounts map[string]*domain.Account) error {
	data, err := json.MarshalIndent(tableDocument{Accounts: accounts}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal account table: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".accounts-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace account table: %w", err)
	}
	return nil
}

func cloneTable(accounts map[string]*domain.Account) map[string]*domain.Account {
	out := make(map[string]*domain.Account, len(accounts))
	for username, acct := range accounts {
		copied := *acct
		out[username] = &copied
	}
	return out
}

func buildTokenIndex(accounts map[string]*domain.Account) map[string]string {
	index := make(map[string]string, len(accounts))
	for username, acct := range accounts {
		if acct.SessionToken != "" {
			index[acct.SessionToken] = username
		}
	}
	return index
}
