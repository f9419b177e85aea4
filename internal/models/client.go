package models

// Client is an account holder. Each client maps 1:1 to a Person via
// PersonClientID; they are created and deleted together.
type Client struct {
	ClientID       int    `json:"clientId" db:"client_id"`
	PersonClientID int    `json:"personClientId" db:"person_client_id"`
	ClientPassword string `json:"clientPassword" db:"client_password"` // argon2id hash
	ClientStatus   bool   `json:"clientStatus" db:"client_status"`
}
