package services

import (
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/andesbank/backend/internal/models"
)

// PersonDirectory is the slice of the person service the client service
// needs. Narrow on purpose so tests can swap in a fake.
type PersonDirectory interface {
	SavePerson(p *models.Person) (*models.Person, error)
	GetPersonByID(id int) (*models.Person, error)
	DeletePersonByID(id int) error
}

// ClientService composes client rows with their linked persons. A client
// and its person are created together and deleted together.
type ClientService struct {
	db        *sql.DB
	persons   PersonDirectory
	validator *ValidationHelper
}

// PersonClientRequest is the create/update payload carrying both halves of
// the client (identity fields plus credential/status).
type PersonClientRequest struct {
	PersonName           string `json:"personName" validate:"required"`
	PersonGender         string `json:"personGender"`
	PersonAge            int    `json:"personAge" validate:"omitempty,gte=0,lte=150"`
	PersonIdentification string `json:"personIdentification" validate:"required"`
	PersonAddress        string `json:"personAddress"`
	PersonPhone          string `json:"personPhone"`
	ClientPassword       string `json:"clientPassword" validate:"required,min=6"`
	ClientStatus         bool   `json:"clientStatus"`
}

// PersonClientResponse joins a client with its person record.
type PersonClientResponse struct {
	ClientID      int    `json:"clientId"`
	PersonID      int    `json:"personId"`
	PersonName    string `json:"personName"`
	PersonAddress string `json:"personAddress"`
	PersonPhone   string `json:"personPhone"`
	ClientStatus  bool   `json:"clientStatus"`
}

func NewClientService(db *sql.DB, persons PersonDirectory) *ClientService {
	return &ClientService{
		db:        db,
		persons:   persons,
		validator: NewValidationHelper(),
	}
}

// CreateClient registers a new client
// @Summary Create client
// @Description Create a person record and its linked client account holder
// @Tags clients
// @Accept json
// @Produce json
// @Param client body PersonClientRequest true "Client data"
// @Success 201 {object} PersonClientResponse
// @Failure 400 {object} ErrorResponse
// @Router /clients [post]
func (s *ClientService) CreateClient(w http.ResponseWriter, r *http.Request) {
	var req PersonClientRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	if err := s.validator.ValidateStruct(&req); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	resp, err := s.createClient(&req)
	if err != nil {
		log.Printf("[CLIENT] Create failed for %s: %v", req.PersonIdentification, err)
		SendErrorResponse(w, "Failed to create client", http.StatusInternalServerError, nil)
		return
	}

	log.Printf("[CLIENT] Created client %d (person %d)", resp.ClientID, resp.PersonID)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(resp)
}

// UpdateClient overwrites a client's person fields and credential/status
// @Summary Update client
// @Tags clients
// @Accept json
// @Produce json
// @Param clientId path int true "Client ID"
// @Param client body PersonClientRequest true "Updated client data"
// @Success 200 {object} map[string]string
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /clients/{clientId} [put]
func (s *ClientService) UpdateClient(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "clientId"))
	if err != nil {
		SendErrorResponse(w, "Invalid client id", http.StatusBadRequest, nil)
		return
	}

	var req PersonClientRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	if err := s.validator.ValidateStruct(&req); err != nil {
		SendErrorResponse(w, "Validation failed", http.StatusBadRequest, err)
		return
	}

	if err := s.updateClient(id, &req); err != nil {
		if err == ErrPersonNotFound || err == ErrClientNotFound {
			SendErrorResponse(w, err.Error(), http.StatusNotFound, nil)
			return
		}
		log.Printf("[CLIENT] Update failed for client %d: %v", id, err)
		SendErrorResponse(w, "Failed to update client", http.StatusInternalServerError, nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Client updated"})
}

// GetClient returns one client joined with its person
// @Summary Get client by ID
// @Tags clients
// @Produce json
// @Param clientId path int true "Client ID"
// @Success 200 {object} PersonClientResponse
// @Failure 404 {object} ErrorResponse
// @Router /clients/{clientId} [get]
func (s *ClientService) GetClient(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "clientId"))
	if err != nil {
		SendErrorResponse(w, "Invalid client id", http.StatusBadRequest, nil)
		return
	}

	resp, err := s.GetClientByID(id)
	if err != nil {
		if err == ErrClientNotFound || err == ErrPersonNotFound {
			SendErrorResponse(w, "Client not found", http.StatusNotFound, nil)
			return
		}
		log.Printf("[CLIENT] Fetch failed for client %d: %v", id, err)
		SendErrorResponse(w, "Failed to fetch client", http.StatusInternalServerError, nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// ListClients returns all clients joined with their persons
// @Summary List clients
// @Tags clients
// @Produce json
// @Success 200 {object} object{clients=[]PersonClientResponse,count=int}
// @Failure 500 {object} ErrorResponse
// @Router /clients [get]
func (s *ClientService) ListClients(w http.ResponseWriter, r *http.Request) {
	clients, err := s.getAllClients()
	if err != nil {
		log.Printf("[CLIENT] List failed: %v", err)
		SendErrorResponse(w, "Failed to fetch clients", http.StatusInternalServerError, nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"clients": clients,
		"count":   len(clients),
	})
}

// DeleteClient removes a client and its linked person
// @Summary Delete client
// @Description Delete a client; the linked person record is deleted with it
// @Tags clients
// @Produce json
// @Param clientId path int true "Client ID"
// @Success 200 {object} map[string]string
// @Router /clients/{clientId} [delete]
func (s *ClientService) DeleteClient(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "clientId"))
	if err != nil {
		SendErrorResponse(w, "Invalid client id", http.StatusBadRequest, nil)
		return
	}

	if err := s.deleteClientByID(id); err != nil {
		log.Printf("[CLIENT] Delete failed for client %d: %v", id, err)
		SendErrorResponse(w, "Failed to delete client", http.StatusInternalServerError, nil)
		return
	}

	log.Printf("[CLIENT] Deleted client %d", id)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"message": "Client deleted"})
}

func (s *ClientService) createClient(req *PersonClientRequest) (*PersonClientResponse, error) {
	person, err := s.persons.SavePerson(&models.Person{
		PersonName:           req.PersonName,
		PersonGender:         req.PersonGender,
		PersonAge:            req.PersonAge,
		PersonIdentification: req.PersonIdentification,
		PersonAddress:        req.PersonAddress,
		PersonPhone:          req.PersonPhone,
	})
	if err != nil {
		return nil, err
	}

	hashed, err := hashPassword(req.ClientPassword)
	if err != nil {
		return nil, err
	}

	var clientID int
	err = s.db.QueryRow(`
		INSERT INTO clients (person_client_id, client_password, client_status)
		VALUES ($1, $2, TRUE)
		RETURNING client_id
	`, person.PersonID, hashed).Scan(&clientID)
	if err != nil {
		return nil, err
	}

	return &PersonClientResponse{
		ClientID:      clientID,
		PersonID:      person.PersonID,
		PersonName:    person.PersonName,
		PersonAddress: person.PersonAddress,
		PersonPhone:   person.PersonPhone,
		ClientStatus:  true,
	}, nil
}

// updateClient overwrites every person field, then the client's
// credential and status, resolving the client row by its person link.
func (s *ClientService) updateClient(id int, req *PersonClientRequest) error {
	person, err := s.persons.GetPersonByID(id)
	if err != nil {
		return err
	}

	person.PersonName = req.PersonName
	person.PersonGender = req.PersonGender
	person.PersonAge = req.PersonAge
	person.PersonIdentification = req.PersonIdentification
	person.PersonAddress = req.PersonAddress
	person.PersonPhone = req.PersonPhone
	if _, err := s.persons.SavePerson(person); err != nil {
		return err
	}

	hashed, err := hashPassword(req.ClientPassword)
	if err != nil {
		return err
	}

	result, err := s.db.Exec(`
		UPDATE clients SET client_password = $1, client_status = $2
		WHERE person_client_id = $3
	`, hashed, req.ClientStatus, id)
	if err != nil {
		return err
	}
	if rows, _ := result.RowsAffected(); rows == 0 {
		return ErrClientNotFound
	}
	return nil
}

// GetClientByID joins the client with its person record.
func (s *ClientService) GetClientByID(id int) (*PersonClientResponse, error) {
	var client models.Client
	err := s.db.QueryRow(`
		SELECT client_id, person_client_id, client_status FROM clients WHERE client_id = $1
	`, id).Scan(&client.ClientID, &client.PersonClientID, &client.ClientStatus)
	if err == sql.ErrNoRows {
		return nil, ErrClientNotFound
	}
	if err != nil {
		return nil, err
	}

	person, err := s.persons.GetPersonByID(client.PersonClientID)
	if err != nil {
		return nil, err
	}

	return &PersonClientResponse{
		ClientID:      client.ClientID,
		PersonID:      person.PersonID,
		PersonName:    person.PersonName,
		PersonAddress: person.PersonAddress,
		PersonPhone:   person.PersonPhone,
		ClientStatus:  client.ClientStatus,
	}, nil
}

func (s *ClientService) getAllClients() ([]PersonClientResponse, error) {
	rows, err := s.db.Query(`
		SELECT c.client_id, p.person_id, p.person_name, p.person_address, p.person_phone, c.client_status
		FROM clients c
		INNER JOIN persons p ON c.person_client_id = p.person_id
		ORDER BY c.client_id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	clients := []PersonClientResponse{}
	for rows.Next() {
		var c PersonClientResponse
		if err := rows.Scan(&c.ClientID, &c.PersonID, &c.PersonName, &c.PersonAddress, &c.PersonPhone, &c.ClientStatus); err != nil {
			return nil, err
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

// deleteClientByID deletes the client first, then its person. A missing
// client is a no-op, matching read-delete symmetry elsewhere.
func (s *ClientService) deleteClientByID(id int) error {
	var personID int
	err := s.db.QueryRow(`SELECT person_client_id FROM clients WHERE client_id = $1`, id).Scan(&personID)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return err
	}

	if _, err := s.db.Exec(`DELETE FROM clients WHERE client_id = $1`, id); err != nil {
		return err
	}
	return s.persons.DeletePersonByID(personID)
}
