package services

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/andesbank/backend/internal/models"
)

// AccountLookup is the slice of the account service the statement and
// movement services depend on.
type AccountLookup interface {
	GetAccountByID(id int) (*models.Account, error)
}

// AccountTypeLookup resolves account-type descriptions.
type AccountTypeLookup interface {
	GetAccountTypeByID(id int) (*models.AccountType, error)
}

// ClientNameLookup resolves a client's display name. The production
// implementation lives in internal/clientapi and talks to the client
// directory over HTTP.
type ClientNameLookup interface {
	ClientName(ctx context.Context, clientID int) (string, error)
}

// maxGroupFetches bounds how many account groups are enriched
// concurrently while a statement is assembled.
const maxGroupFetches = 4

// StatementService turns a flat, range-filtered movement list into
// statement rows: movements grouped per account, enriched with account,
// account-type and client metadata, each row carrying the balance before
// and after its movement.
type StatementService struct {
	clients      ClientNameLookup
	accounts     AccountLookup
	accountTypes AccountTypeLookup
}

func NewStatementService(clients ClientNameLookup, accounts AccountLookup, accountTypes AccountTypeLookup) *StatementService {
	return &StatementService{
		clients:      clients,
		accounts:     accounts,
		accountTypes: accountTypes,
	}
}

// GetAccountStatus emits one row per movement. Groups appear in
// first-appearance order of their account id in the input; rows within a
// group are date-ordered. Account and account-type lookups for distinct
// groups run concurrently, but rows are assembled strictly in group order.
// Groups whose account or account type no longer exists are skipped.
func (s *StatementService) GetAccountStatus(ctx context.Context, movements []models.Movement, clientID int) ([]models.AccountStatus, error) {
	clientName, err := s.clients.ClientName(ctx, clientID)
	if err != nil {
		return nil, err
	}

	order, groups := groupMovementsByAccount(movements)

	results := make([][]models.AccountStatus, len(order))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxGroupFetches)

	for i, accountID := range order {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			rows, err := s.buildGroupRows(clientName, accountID, groups[accountID])
			if err != nil {
				return err
			}
			results[i] = rows
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	statement := []models.AccountStatus{}
	for _, rows := range results {
		statement = append(statement, rows...)
	}
	return statement, nil
}

// buildGroupRows enriches one account group. The previous balance for the
// first movement is the account's initial balance; every later movement
// takes the prior movement's stored balance.
func (s *StatementService) buildGroupRows(clientName string, accountID int, group []models.Movement) ([]models.AccountStatus, error) {
	account, err := s.accounts.GetAccountByID(accountID)
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			log.Printf("[STATEMENT] Skipping movements for missing account %d", accountID)
			return nil, nil
		}
		return nil, err
	}

	accountType, err := s.accountTypes.GetAccountTypeByID(account.AccountTypeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Printf("[STATEMENT] Skipping account %d with unknown type %d", accountID, account.AccountTypeID)
			return nil, nil
		}
		return nil, err
	}

	rows := make([]models.AccountStatus, 0, len(group))
	previous := account.InitialBalance
	for _, movement := range group {
		rows = append(rows, models.AccountStatus{
			Date:           movement.MovementDate,
			ClientName:     clientName,
			AccountNumber:  account.AccountNumber,
			AccountType:    accountType.AccountTypeDescription,
			InitialBalance: previous,
			Movement:       movement.MovementValue,
			Status:         account.AccountStatus,
			FinalBalance:   movement.MovementBalance,
		})
		previous = movement.MovementBalance
	}
	return rows, nil
}

// groupMovementsByAccount partitions movements by account group,
// remembering the order in which groups first appear. Each group is
// date-sorted so the previous-balance attribution never depends on the
// caller's ordering.
func groupMovementsByAccount(movements []models.Movement) ([]int, map[int][]models.Movement) {
	order := []int{}
	groups := map[int][]models.Movement{}

	for _, m := range movements {
		if _, seen := groups[m.AccountMovementID]; !seen {
			order = append(order, m.AccountMovementID)
		}
		groups[m.AccountMovementID] = append(groups[m.AccountMovementID], m)
	}

	for _, group := range groups {
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].MovementDate.Before(group[j].MovementDate)
		})
	}
	return order, groups
}
