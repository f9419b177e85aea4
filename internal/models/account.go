package models

import "github.com/shopspring/decimal"

// Account groups a client's movements. InitialBalance is the baseline for
// the first movement in the account's history.
type Account struct {
	AccountID      int             `json:"accountId" db:"account_id"`
	ClientID       int             `json:"clientId" db:"client_id"`
	AccountNumber  string          `json:"accountNumber" db:"account_number"`
	AccountTypeID  int             `json:"accountTypeId" db:"account_type_id"`
	InitialBalance decimal.Decimal `json:"initialBalance" db:"initial_balance"`
	AccountStatus  bool            `json:"accountStatus" db:"account_status"`
}

// AccountType is a pure lookup record.
type AccountType struct {
	AccountTypeID          int    `json:"accountTypeId" db:"account_type_id"`
	AccountTypeDescription string `json:"accountTypeDescription" db:"account_type_description"`
}
