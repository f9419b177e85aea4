package services

import (
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/andesbank/backend/internal/models"
)

// AccountService is CRUD over accounts. Updates touch the status flag
// only; the rest of the row is immutable after creation.
type AccountService struct {
	db        *sql.DB
	validator *ValidationHelper
}

type AccountRequest struct {
	ClientID       int             `json:"clientId" validate:"required,gt=0"`
	AccountNumber  string          `json:"accountNumber" validate:"required"`
	AccountTypeID  int             `json:"accountTypeId" validate:"required,gt=0"`
	InitialBalance decimal.Decimal `json:"initialBalance"`
	AccountStatus  bool            `json:"accountStatus"`
}

type AccountStatusUpdateRequest struct {
	AccountStatus bool `json:"accountStatus"`
}

func NewAccountService(db *sql.DB) *AccountService {
	return &AccountService{
		db:        db,
		validator: NewValidationHelper(),
	}
}

// CreateAccount persists a new account
// @Summary Create account
// @Tags accounts
// @Accept json
// @Produce json
// @Param account body AccountRequest true "Account data"
// @Success 201 {object} models.Account
// @Failure 400 {object} ErrorResponse
// @Router /accounts [post]
func (s *AccountService) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req AccountRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	if err := s.validator.ValidateStruct(&req); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	account := models.Account{
		ClientID:       req.ClientID,
		AccountNumber:  req.AccountNumber,
		AccountTypeID:  req.AccountTypeID,
		InitialBalance: req.InitialBalance,
		AccountStatus:  req.AccountStatus,
	}

	err := s.db.QueryRow(`
		INSERT INTO accounts (client_id, account_number, account_type_id, initial_balance, account_status)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING account_id
	`, account.ClientID, account.AccountNumber, account.AccountTypeID, account.InitialBalance, account.AccountStatus).Scan(&account.AccountID)
	if err != nil {
		log.Printf("[ACCOUNT] Create failed for number %s: %v", req.AccountNumber, err)
		SendErrorResponse(w, "Failed to create account", http.StatusInternalServerError, nil)
		return
	}

	log.Printf("[ACCOUNT] Created account %d (%s)", account.AccountID, account.AccountNumber)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(account)
}

// UpdateAccount updates the status flag of an existing account
// @Summary Update account status
// @Tags accounts
// @Accept json
// @Produce json
// @Param accountId path int true "Account ID"
// @Param account body AccountStatusUpdateRequest true "New status"
// @Success 200 {object} map[string]string
// @Failure 404 {object} ErrorResponse
// @Router /accounts/{accountId} [put]
func (s *AccountService) UpdateAccount(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "accountId"))
	if err != nil {
		SendErrorResponse(w, "Invalid account id", http.StatusBadRequest, nil)
		return
	}

	var req AccountStatusUpdateRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	result, err := s.db.Exec(`
		UPDATE accounts SET account_status = $1 WHERE account_id = $2
	`, req.AccountStatus, id)
	if err != nil {
		log.Printf("[ACCOUNT] Update failed for account %d: %v", id, err)
		SendErrorResponse(w, "Failed to update account", http.StatusInternalServerError, nil)
		return
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		SendErrorResponse(w, "Account not found", http.StatusNotFound, nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Account updated"})
}

// GetAccount returns one account
// @Summary Get account by ID
// @Tags accounts
// @Produce json
// @Param accountId path int true "Account ID"
// @Success 200 {object} models.Account
// @Failure 404 {object} ErrorResponse
// @Router /accounts/{accountId} [get]
func (s *AccountService) GetAccount(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "accountId"))
	if err != nil {
		SendErrorResponse(w, "Invalid account id", http.StatusBadRequest, nil)
		return
	}

	account, err := s.GetAccountByID(id)
	if err != nil {
		if err == ErrAccountNotFound {
			SendErrorResponse(w, "Account not found", http.StatusNotFound, nil)
			return
		}
		log.Printf("[ACCOUNT] Fetch failed for account %d: %v", id, err)
		SendErrorResponse(w, "Failed to fetch account", http.StatusInternalServerError, nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(account)
}

// ListAccounts returns all accounts
// @Summary List accounts
// @Tags accounts
// @Produce json
// @Success 200 {object} object{accounts=[]models.Account,count=int}
// @Failure 500 {object} ErrorResponse
// @Router /accounts [get]
func (s *AccountService) ListAccounts(w http.ResponseWriter, r *http.Request) {
	rows, err := s.db.Query(`
		SELECT account_id, client_id, account_number, account_type_id, initial_balance, account_status
		FROM accounts ORDER BY account_id
	`)
	if err != nil {
		log.Printf("[ACCOUNT] List failed: %v", err)
		SendErrorResponse(w, "Failed to fetch accounts", http.StatusInternalServerError, nil)
		return
	}
	defer rows.Close()

	accounts := []models.Account{}
	for rows.Next() {
		var a models.Account
		if err := rows.Scan(&a.AccountID, &a.ClientID, &a.AccountNumber, &a.AccountTypeID, &a.InitialBalance, &a.AccountStatus); err != nil {
			SendErrorResponse(w, "Failed to fetch accounts", http.StatusInternalServerError, nil)
			return
		}
		accounts = append(accounts, a)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"accounts": accounts,
		"count":    len(accounts),
	})
}

// DeleteAccount removes one account. Movements are not cascaded.
// @Summary Delete account
// @Tags accounts
// @Produce json
// @Param accountId path int true "Account ID"
// @Success 200 {object} map[string]string
// @Router /accounts/{accountId} [delete]
func (s *AccountService) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "accountId"))
	if err != nil {
		SendErrorResponse(w, "Invalid account id", http.StatusBadRequest, nil)
		return
	}

	if _, err := s.db.Exec(`DELETE FROM accounts WHERE account_id = $1`, id); err != nil {
		log.Printf("[ACCOUNT] Delete failed for account %d: %v", id, err)
		SendErrorResponse(w, "Failed to delete account", http.StatusInternalServerError, nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Account deleted"})
}

// GetAccountByID is the lookup used by the movement and statement services.
func (s *AccountService) GetAccountByID(id int) (*models.Account, error) {
	a := &models.Account{}
	err := s.db.QueryRow(`
		SELECT account_id, client_id, account_number, account_type_id, initial_balance, account_status
		FROM accounts WHERE account_id = $1
	`, id).Scan(&a.AccountID, &a.ClientID, &a.AccountNumber, &a.AccountTypeID, &a.InitialBalance, &a.AccountStatus)
	if err == sql.ErrNoRows {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, err
	}
	return a, nil
}
