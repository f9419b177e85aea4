package services

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image/png"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"
)

// QRService produces scannable receive-details codes for accounts so a
// counterparty can capture the account number without typing it. Payloads
// are nonce-keyed and expire out of redis.
type QRService struct {
	db    *sql.DB
	redis *redis.Client
}

func NewQRService(db *sql.DB, redis *redis.Client) *QRService {
	return &QRService{
		db:    db,
		redis: redis,
	}
}

// GenerateAccountQR returns an opaque code plus its rendered PNG (base64)
// for the given account.
func (s *QRService) GenerateAccountQR(ctx context.Context, accountID int) (string, string, error) {
	var accountNumber, holderName string
	err := s.db.QueryRow(`
		SELECT a.account_number, p.person_name
		FROM accounts a
		INNER JOIN clients c ON a.client_id = c.client_id
		INNER JOIN persons p ON c.person_client_id = p.person_id
		WHERE a.account_id = $1
	`, accountID).Scan(&accountNumber, &holderName)
	if err == sql.ErrNoRows {
		return "", "", ErrAccountNotFound
	}
	if err != nil {
		return "", "", err
	}

	qrData := map[string]any{
		"accountNumber": accountNumber,
		"holderName":    holderName,
		"timestamp":     time.Now().Unix(),
		"nonce":         uuid.NewString(),
	}

	jsonData, err := json.Marshal(qrData)
	if err != nil {
		return "", "", err
	}

	qrCode := base64.URLEncoding.EncodeToString(jsonData)

	if s.redis != nil {
		key := fmt.Sprintf("qr:%s", qrCode)
		if err := s.redis.Set(ctx, key, jsonData, 5*time.Minute).Err(); err != nil {
			return "", "", err
		}
	}

	qr, err := qrcode.New(qrCode, qrcode.Medium)
	if err != nil {
		return "", "", err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, qr.Image(256)); err != nil {
		return "", "", err
	}

	qrImage := base64.StdEncoding.EncodeToString(buf.Bytes())

	return qrCode, qrImage, nil
}

// ResolveQR validates a scanned code and returns its payload. Codes are
// single-use.
func (s *QRService) ResolveQR(ctx context.Context, qrData string) (map[string]any, error) {
	if s.redis == nil {
		return nil, fmt.Errorf("QR resolution unavailable")
	}
	key := fmt.Sprintf("qr:%s", qrData)

	data, err := s.redis.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, fmt.Errorf("invalid or expired QR code")
	}
	if err != nil {
		return nil, err
	}

	var result map[string]any
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, err
	}

	s.redis.Del(ctx, key)

	return result, nil
}
