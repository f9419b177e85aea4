package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/andesbank/backend/internal/models"
)

// fakeAccountLookup serves accounts from a map, returning ErrAccountNotFound
// for unknown ids.
type fakeAccountLookup struct {
	accounts map[int]*models.Account
}

func (f *fakeAccountLookup) GetAccountByID(id int) (*models.Account, error) {
	account, ok := f.accounts[id]
	if !ok {
		return nil, ErrAccountNotFound
	}
	return account, nil
}

// fakeAccountTypeLookup serves account types from a map, mimicking the real
// service's raw sql.ErrNoRows for unknown ids.
type fakeAccountTypeLookup struct {
	types map[int]*models.AccountType
}

func (f *fakeAccountTypeLookup) GetAccountTypeByID(id int) (*models.AccountType, error) {
	accountType, ok := f.types[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return accountType, nil
}

// fakeClientNames resolves every client id to the same name, or fails when
// broken is set.
type fakeClientNames struct {
	name   string
	broken bool
	calls  int
}

func (f *fakeClientNames) ClientName(ctx context.Context, clientID int) (string, error) {
	f.calls++
	if f.broken {
		return "", errors.New("client directory unavailable")
	}
	return f.name, nil
}
