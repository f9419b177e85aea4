package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Movement is one ledger entry for an account group. Positive values are
// credits, negative values debits. MovementBalance is the running balance
// snapshot taken when the movement was created and is never recomputed.
type Movement struct {
	MovementID        int             `json:"movementId" db:"movement_id"`
	AccountMovementID int             `json:"accountMovementId" db:"account_movement_id"`
	MovementDate      time.Time       `json:"movementDate" db:"movement_date"`
	MovementValue     decimal.Decimal `json:"movementValue" db:"movement_value"`
	MovementBalance   decimal.Decimal `json:"movementBalance" db:"movement_balance"`
}

// AccountStatus is one statement row: a single movement enriched with
// account, account-type and client context plus its point-in-time balances.
type AccountStatus struct {
	Date           time.Time       `json:"date"`
	ClientName     string          `json:"clientName"`
	AccountNumber  string          `json:"accountNumber"`
	AccountType    string          `json:"accountType"`
	InitialBalance decimal.Decimal `json:"initialBalance"`
	Movement       decimal.Decimal `json:"movement"`
	Status         bool            `json:"status"`
	FinalBalance   decimal.Decimal `json:"finalBalance"`
}
