package services

import (
	"database/sql"

	"github.com/andesbank/backend/internal/models"
)

// AccountTypeService resolves account-type descriptions. Lookup only.
type AccountTypeService struct {
	db *sql.DB
}

func NewAccountTypeService(db *sql.DB) *AccountTypeService {
	return &AccountTypeService{db: db}
}

func (s *AccountTypeService) GetAccountTypeByID(id int) (*models.AccountType, error) {
	t := &models.AccountType{}
	err := s.db.QueryRow(`
		SELECT account_type_id, account_type_description FROM account_types WHERE account_type_id = $1
	`, id).Scan(&t.AccountTypeID, &t.AccountTypeDescription)
	if err != nil {
		return nil, err
	}
	return t, nil
}
