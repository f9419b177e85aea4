package services

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/andesbank/backend/internal/models"
)

func day(d int) time.Time {
	return time.Date(2022, 2, d, 0, 0, 0, 0, time.UTC)
}

func movement(id, accountID, d int, value, balance int64) models.Movement {
	return models.Movement{
		MovementID:        id,
		AccountMovementID: accountID,
		MovementDate:      day(d),
		MovementValue:     decimal.NewFromInt(value),
		MovementBalance:   decimal.NewFromInt(balance),
	}
}

func TestStatementService_GetAccountStatus(t *testing.T) {
	accounts := &fakeAccountLookup{accounts: map[int]*models.Account{
		1: {
			AccountID:      1,
			ClientID:       7,
			AccountNumber:  "478758",
			AccountTypeID:  1,
			InitialBalance: decimal.NewFromInt(100),
			AccountStatus:  true,
		},
		2: {
			AccountID:      2,
			ClientID:       7,
			AccountNumber:  "225487",
			AccountTypeID:  2,
			InitialBalance: decimal.NewFromInt(500),
			AccountStatus:  true,
		},
	}}
	types := &fakeAccountTypeLookup{types: map[int]*models.AccountType{
		1: {AccountTypeID: 1, AccountTypeDescription: "Ahorro"},
		2: {AccountTypeID: 2, AccountTypeDescription: "Corriente"},
	}}

	t.Run("groups keep first-appearance order, rows are date-sorted", func(t *testing.T) {
		svc := NewStatementService(&fakeClientNames{name: "Jose Lema"}, accounts, types)

		// Interleaved accounts, second movement of account 1 out of date order.
		movements := []models.Movement{
			movement(3, 1, 10, -50, 20),
			movement(2, 2, 9, 600, 1100),
			movement(1, 1, 8, -30, 70),
		}

		rows, err := svc.GetAccountStatus(context.Background(), movements, 7)
		assert.NoError(t, err)
		assert.Len(t, rows, 3)

		// Account 1 appeared first, so its two rows lead, oldest first.
		assert.Equal(t, "478758", rows[0].AccountNumber)
		assert.Equal(t, day(8), rows[0].Date)
		assert.Equal(t, "478758", rows[1].AccountNumber)
		assert.Equal(t, day(10), rows[1].Date)
		assert.Equal(t, "225487", rows[2].AccountNumber)

		assert.Equal(t, "Ahorro", rows[0].AccountType)
		assert.Equal(t, "Corriente", rows[2].AccountType)
	})

	t.Run("previous balance chains from the account's initial balance", func(t *testing.T) {
		svc := NewStatementService(&fakeClientNames{name: "Jose Lema"}, accounts, types)

		movements := []models.Movement{
			movement(1, 1, 8, -30, 70),
			movement(2, 1, 10, -50, 20),
		}

		rows, err := svc.GetAccountStatus(context.Background(), movements, 7)
		assert.NoError(t, err)
		assert.Len(t, rows, 2)

		assert.True(t, rows[0].InitialBalance.Equal(decimal.NewFromInt(100)))
		assert.True(t, rows[0].FinalBalance.Equal(decimal.NewFromInt(70)))
		assert.True(t, rows[1].InitialBalance.Equal(decimal.NewFromInt(70)))
		assert.True(t, rows[1].FinalBalance.Equal(decimal.NewFromInt(20)))
	})

	t.Run("client name is resolved once per statement", func(t *testing.T) {
		names := &fakeClientNames{name: "Jose Lema"}
		svc := NewStatementService(names, accounts, types)

		movements := []models.Movement{
			movement(1, 1, 8, -30, 70),
			movement(2, 2, 9, 600, 1100),
		}

		_, err := svc.GetAccountStatus(context.Background(), movements, 7)
		assert.NoError(t, err)
		assert.Equal(t, 1, names.calls)
	})

	t.Run("groups with a missing account are skipped", func(t *testing.T) {
		svc := NewStatementService(&fakeClientNames{name: "Jose Lema"}, accounts, types)

		movements := []models.Movement{
			movement(1, 1, 8, -30, 70),
			movement(2, 99, 9, 600, 1100),
		}

		rows, err := svc.GetAccountStatus(context.Background(), movements, 7)
		assert.NoError(t, err)
		assert.Len(t, rows, 1)
		assert.Equal(t, "478758", rows[0].AccountNumber)
	})

	t.Run("groups with an unknown account type are skipped", func(t *testing.T) {
		orphaned := &fakeAccountLookup{accounts: map[int]*models.Account{
			3: {AccountID: 3, AccountTypeID: 99, AccountNumber: "999999", InitialBalance: decimal.NewFromInt(10)},
		}}
		svc := NewStatementService(&fakeClientNames{name: "Jose Lema"}, orphaned, types)

		rows, err := svc.GetAccountStatus(context.Background(), []models.Movement{movement(1, 3, 8, 5, 15)}, 7)
		assert.NoError(t, err)
		assert.Empty(t, rows)
	})

	t.Run("client directory failure aborts the statement", func(t *testing.T) {
		svc := NewStatementService(&fakeClientNames{broken: true}, accounts, types)

		_, err := svc.GetAccountStatus(context.Background(), []models.Movement{movement(1, 1, 8, -30, 70)}, 7)
		assert.Error(t, err)
	})

	t.Run("no movements produce an empty statement", func(t *testing.T) {
		svc := NewStatementService(&fakeClientNames{name: "Jose Lema"}, accounts, types)

		rows, err := svc.GetAccountStatus(context.Background(), nil, 7)
		assert.NoError(t, err)
		assert.NotNil(t, rows)
		assert.Empty(t, rows)
	})
}

func TestGroupMovementsByAccount(t *testing.T) {
	order, groups := groupMovementsByAccount([]models.Movement{
		movement(1, 2, 10, 1, 1),
		movement(2, 1, 9, 1, 1),
		movement(3, 2, 8, 1, 1),
	})

	assert.Equal(t, []int{2, 1}, order)
	assert.Len(t, groups[2], 2)
	// Within a group the earlier date comes first regardless of input order.
	assert.Equal(t, 3, groups[2][0].MovementID)
	assert.Equal(t, 1, groups[2][1].MovementID)
}
