package models

// Person is the identity record behind a client.
type Person struct {
	PersonID             int    `json:"personId" db:"person_id"`
	PersonName           string `json:"personName" db:"person_name"`
	PersonGender         string `json:"personGender" db:"person_gender"`
	PersonAge            int    `json:"personAge" db:"person_age"`
	PersonIdentification string `json:"personIdentification" db:"person_identification"`
	PersonAddress        string `json:"personAddress" db:"person_address"`
	PersonPhone          string `json:"personPhone" db:"person_phone"`
}
