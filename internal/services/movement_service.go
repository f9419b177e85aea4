package services

import (
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/andesbank/backend/internal/models"
)

// MovementService persists movements and computes running balances at
// creation time. The balance snapshot on each movement is immutable;
// updates overwrite rows verbatim without recomputation.
type MovementService struct {
	db         *sql.DB
	accounts   AccountLookup
	statements *StatementService
	validator  *ValidationHelper
	locks      accountLocks
}

type MovementRequest struct {
	AccountMovementID int             `json:"accountMovementId" validate:"required,gt=0"`
	MovementValue     decimal.Decimal `json:"movementValue" validate:"required"`
}

// MovementUpdateRequest replaces every mutable field of a movement with
// the caller-supplied values. The balance is trusted as given.
type MovementUpdateRequest struct {
	MovementDate      time.Time       `json:"movementDate" validate:"required"`
	AccountMovementID int             `json:"accountMovementId" validate:"required,gt=0"`
	MovementValue     decimal.Decimal `json:"movementValue" validate:"required"`
	MovementBalance   decimal.Decimal `json:"movementBalance"`
}

func NewMovementService(db *sql.DB, accounts AccountLookup, statements *StatementService) *MovementService {
	return &MovementService{
		db:         db,
		accounts:   accounts,
		statements: statements,
		validator:  NewValidationHelper(),
	}
}

// CreateMovement records a movement with its computed running balance
// @Summary Create movement
// @Description Append a movement to an account group; the resulting balance is previous balance plus value and must not be negative
// @Tags movements
// @Accept json
// @Produce json
// @Param movement body MovementRequest true "Movement data"
// @Success 201 {object} models.Movement
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /movements [post]
func (s *MovementService) CreateMovement(w http.ResponseWriter, r *http.Request) {
	var req MovementRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	if err := s.validator.ValidateStruct(&req); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	movement, err := s.createMovement(&req)
	if err != nil {
		switch err {
		case ErrInsufficientFunds:
			log.Printf("[MOVEMENT] Rejected movement of %s for account %d: insufficient funds", req.MovementValue, req.AccountMovementID)
			SendErrorResponse(w, ErrInsufficientFunds.Error(), http.StatusBadRequest, nil)
		case ErrAccountNotFound:
			SendErrorResponse(w, "Account not found", http.StatusNotFound, nil)
		default:
			log.Printf("[MOVEMENT] Create failed for account %d: %v", req.AccountMovementID, err)
			SendErrorResponse(w, "Failed to create movement", http.StatusInternalServerError, nil)
		}
		return
	}

	log.Printf("[MOVEMENT] Created movement %d for account %d, balance %s", movement.MovementID, movement.AccountMovementID, movement.MovementBalance)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(movement)
}

// UpdateMovement overwrites an existing movement verbatim
// @Summary Update movement
// @Description Replace date, account group, value and balance of a movement; balances of neighbouring movements are not recomputed
// @Tags movements
// @Accept json
// @Produce json
// @Param movementId path int true "Movement ID"
// @Param movement body MovementUpdateRequest true "New movement fields"
// @Success 200 {object} map[string]string
// @Failure 404 {object} ErrorResponse
// @Router /movements/{movementId} [put]
func (s *MovementService) UpdateMovement(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "movementId"))
	if err != nil {
		SendErrorResponse(w, "Invalid movement id", http.StatusBadRequest, nil)
		return
	}

	var req MovementUpdateRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	if err := s.validator.ValidateStruct(&req); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	result, err := s.db.Exec(`
		UPDATE movements
		SET movement_date = $1, account_movement_id = $2, movement_value = $3, movement_balance = $4
		WHERE movement_id = $5
	`, req.MovementDate, req.AccountMovementID, req.MovementValue, req.MovementBalance, id)
	if err != nil {
		log.Printf("[MOVEMENT] Update failed for movement %d: %v", id, err)
		SendErrorResponse(w, "Failed to update movement", http.StatusInternalServerError, nil)
		return
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		SendErrorResponse(w, ErrMovementNotFound.Error(), http.StatusNotFound, nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Movement updated"})
}

// GetMovement returns one movement
// @Summary Get movement by ID
// @Tags movements
// @Produce json
// @Param movementId path int true "Movement ID"
// @Success 200 {object} models.Movement
// @Failure 404 {object} ErrorResponse
// @Router /movements/{movementId} [get]
func (s *MovementService) GetMovement(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "movementId"))
	if err != nil {
		SendErrorResponse(w, "Invalid movement id", http.StatusBadRequest, nil)
		return
	}

	m := models.Movement{}
	err = s.db.QueryRow(`
		SELECT movement_id, account_movement_id, movement_date, movement_value, movement_balance
		FROM movements WHERE movement_id = $1
	`, id).Scan(&m.MovementID, &m.AccountMovementID, &m.MovementDate, &m.MovementValue, &m.MovementBalance)
	if err == sql.ErrNoRows {
		SendErrorResponse(w, ErrMovementNotFound.Error(), http.StatusNotFound, nil)
		return
	}
	if err != nil {
		log.Printf("[MOVEMENT] Fetch failed for movement %d: %v", id, err)
		SendErrorResponse(w, "Failed to fetch movement", http.StatusInternalServerError, nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(m)
}

// ListMovements returns all movements
// @Summary List movements
// @Tags movements
// @Produce json
// @Success 200 {object} object{movements=[]models.Movement,count=int}
// @Failure 500 {object} ErrorResponse
// @Router /movements [get]
func (s *MovementService) ListMovements(w http.ResponseWriter, r *http.Request) {
	rows, err := s.db.Query(`
		SELECT movement_id, account_movement_id, movement_date, movement_value, movement_balance
		FROM movements ORDER BY movement_id
	`)
	if err != nil {
		log.Printf("[MOVEMENT] List failed: %v", err)
		SendErrorResponse(w, "Failed to fetch movements", http.StatusInternalServerError, nil)
		return
	}
	defer rows.Close()

	movements := []models.Movement{}
	for rows.Next() {
		var m models.Movement
		if err := rows.Scan(&m.MovementID, &m.AccountMovementID, &m.MovementDate, &m.MovementValue, &m.MovementBalance); err != nil {
			SendErrorResponse(w, "Failed to fetch movements", http.StatusInternalServerError, nil)
			return
		}
		movements = append(movements, m)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"movements": movements,
		"count":     len(movements),
	})
}

// DeleteMovement removes one movement. Neighbouring balances keep their
// snapshots.
// @Summary Delete movement
// @Tags movements
// @Produce json
// @Param movementId path int true "Movement ID"
// @Success 200 {object} map[string]string
// @Router /movements/{movementId} [delete]
func (s *MovementService) DeleteMovement(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "movementId"))
	if err != nil {
		SendErrorResponse(w, "Invalid movement id", http.StatusBadRequest, nil)
		return
	}

	if _, err := s.db.Exec(`DELETE FROM movements WHERE movement_id = $1`, id); err != nil {
		log.Printf("[MOVEMENT] Delete failed for movement %d: %v", id, err)
		SendErrorResponse(w, "Failed to delete movement", http.StatusInternalServerError, nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Movement deleted"})
}

// GetAccountStatusReport produces the statement for a client and range
// @Summary Account statement report
// @Description All movements for the client between startDate (inclusive) and endDate (exclusive), each with its previous and final balance
// @Tags movements
// @Produce json
// @Param startDate query string true "Range start (RFC 3339)"
// @Param endDate query string true "Range end (RFC 3339)"
// @Param clientId query int true "Client ID"
// @Success 200 {array} models.AccountStatus
// @Failure 400 {object} ErrorResponse
// @Router /movements/report [get]
func (s *MovementService) GetAccountStatusReport(w http.ResponseWriter, r *http.Request) {
	startParam := r.URL.Query().Get("startDate")
	endParam := r.URL.Query().Get("endDate")
	clientParam := r.URL.Query().Get("clientId")

	if startParam == "" || endParam == "" || clientParam == "" {
		SendErrorResponse(w, ErrMissingParameter.Error(), http.StatusBadRequest, nil)
		return
	}

	startDate, err := parseDateTime(startParam)
	if err != nil {
		SendErrorResponse(w, "Invalid startDate", http.StatusBadRequest, nil)
		return
	}
	endDate, err := parseDateTime(endParam)
	if err != nil {
		SendErrorResponse(w, "Invalid endDate", http.StatusBadRequest, nil)
		return
	}
	clientID, err := strconv.Atoi(clientParam)
	if err != nil {
		SendErrorResponse(w, "Invalid clientId", http.StatusBadRequest, nil)
		return
	}

	movements, err := s.rangedMovements(clientID, startDate, endDate)
	if err != nil {
		log.Printf("[MOVEMENT] Report query failed for client %d: %v", clientID, err)
		SendErrorResponse(w, "Failed to fetch movements", http.StatusInternalServerError, nil)
		return
	}

	statement, err := s.statements.GetAccountStatus(r.Context(), movements, clientID)
	if err != nil {
		log.Printf("[MOVEMENT] Report assembly failed for client %d: %v", clientID, err)
		SendErrorResponse(w, "Failed to build report", http.StatusInternalServerError, nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(statement)
}

// createMovement computes the running balance and persists the movement.
// Creation is serialized per account group so two concurrent movements
// cannot both read the same previous balance.
func (s *MovementService) createMovement(req *MovementRequest) (*models.Movement, error) {
	unlock := s.locks.lock(req.AccountMovementID)
	defer unlock()

	previous, err := s.previousBalance(req.AccountMovementID)
	if err != nil {
		return nil, err
	}

	balance := previous.Add(req.MovementValue)
	if balance.IsNegative() {
		return nil, ErrInsufficientFunds
	}

	movement := &models.Movement{
		AccountMovementID: req.AccountMovementID,
		MovementDate:      time.Now().UTC(),
		MovementValue:     req.MovementValue,
		MovementBalance:   balance,
	}

	err = s.db.QueryRow(`
		INSERT INTO movements (account_movement_id, movement_date, movement_value, movement_balance)
		VALUES ($1, $2, $3, $4)
		RETURNING movement_id
	`, movement.AccountMovementID, movement.MovementDate, movement.MovementValue, movement.MovementBalance).Scan(&movement.MovementID)
	if err != nil {
		return nil, err
	}
	return movement, nil
}

// previousBalance is the balance of the most recent movement for the
// account group, or the account's initial balance when no movement exists.
func (s *MovementService) previousBalance(accountMovementID int) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := s.db.QueryRow(`
		SELECT movement_balance FROM movements
		WHERE account_movement_id = $1
		ORDER BY movement_date DESC
		LIMIT 1
	`, accountMovementID).Scan(&balance)
	if err == nil {
		return balance, nil
	}
	if err != sql.ErrNoRows {
		return decimal.Zero, err
	}

	account, err := s.accounts.GetAccountByID(accountMovementID)
	if err != nil {
		return decimal.Zero, err
	}
	return account.InitialBalance, nil
}

func (s *MovementService) rangedMovements(clientID int, startDate, endDate time.Time) ([]models.Movement, error) {
	rows, err := s.db.Query(`
		SELECT m.movement_id, m.account_movement_id, m.movement_date, m.movement_value, m.movement_balance
		FROM movements m
		INNER JOIN accounts a ON m.account_movement_id = a.account_id
		WHERE a.client_id = $1 AND m.movement_date >= $2 AND m.movement_date < $3
		ORDER BY m.movement_date
	`, clientID, startDate, endDate)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	movements := []models.Movement{}
	for rows.Next() {
		var m models.Movement
		if err := rows.Scan(&m.MovementID, &m.AccountMovementID, &m.MovementDate, &m.MovementValue, &m.MovementBalance); err != nil {
			return nil, err
		}
		movements = append(movements, m)
	}
	return movements, rows.Err()
}

func parseDateTime(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}

// accountLocks hands out one mutex per account group id.
type accountLocks struct {
	mu    sync.Mutex
	locks map[int]*sync.Mutex
}

func (l *accountLocks) lock(id int) func() {
	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[int]*sync.Mutex)
	}
	lock, ok := l.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[id] = lock
	}
	l.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}
