package services

import (
	"database/sql"

	"github.com/andesbank/backend/internal/models"
)

// PersonService persists identity records. It has no HTTP surface of its
// own; the client service composes it.
type PersonService struct {
	db *sql.DB
}

func NewPersonService(db *sql.DB) *PersonService {
	return &PersonService{db: db}
}

// SavePerson inserts the person when PersonID is zero, otherwise updates
// the existing row. The returned person carries the assigned id.
func (s *PersonService) SavePerson(p *models.Person) (*models.Person, error) {
	if p.PersonID == 0 {
		err := s.db.QueryRow(`
			INSERT INTO persons (person_name, person_gender, person_age, person_identification, person_address, person_phone)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING person_id
		`, p.PersonName, p.PersonGender, p.PersonAge, p.PersonIdentification, p.PersonAddress, p.PersonPhone).Scan(&p.PersonID)
		if err != nil {
			return nil, err
		}
		return p, nil
	}

	_, err := s.db.Exec(`
		UPDATE persons
		SET person_name = $1, person_gender = $2, person_age = $3, person_identification = $4, person_address = $5, person_phone = $6
		WHERE person_id = $7
	`, p.PersonName, p.PersonGender, p.PersonAge, p.PersonIdentification, p.PersonAddress, p.PersonPhone, p.PersonID)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *PersonService) GetPersons() ([]models.Person, error) {
	rows, err := s.db.Query(`
		SELECT person_id, person_name, person_gender, person_age, person_identification, person_address, person_phone
		FROM persons ORDER BY person_id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	persons := []models.Person{}
	for rows.Next() {
		var p models.Person
		if err := rows.Scan(&p.PersonID, &p.PersonName, &p.PersonGender, &p.PersonAge, &p.PersonIdentification, &p.PersonAddress, &p.PersonPhone); err != nil {
			return nil, err
		}
		persons = append(persons, p)
	}
	return persons, rows.Err()
}

func (s *PersonService) GetPersonByID(id int) (*models.Person, error) {
	p := &models.Person{}
	err := s.db.QueryRow(`
		SELECT person_id, person_name, person_gender, person_age, person_identification, person_address, person_phone
		FROM persons WHERE person_id = $1
	`, id).Scan(&p.PersonID, &p.PersonName, &p.PersonGender, &p.PersonAge, &p.PersonIdentification, &p.PersonAddress, &p.PersonPhone)
	if err == sql.ErrNoRows {
		return nil, ErrPersonNotFound
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// DeletePersonByID removes a person row. It never cascades to clients;
// the client service owns the client-then-person delete order.
func (s *PersonService) DeletePersonByID(id int) error {
	_, err := s.db.Exec(`DELETE FROM persons WHERE person_id = $1`, id)
	return err
}
