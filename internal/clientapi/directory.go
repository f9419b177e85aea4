// Package clientapi consumes the client-directory HTTP API that resolves
// a client id to its holder's display name.
package clientapi

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/sony/gobreaker"
)

const nameCacheTTL = 5 * time.Minute

// Directory looks up client display names over HTTP. Lookups go through a
// circuit breaker; successful results are cached in redis so a directory
// outage does not take statement generation down with it.
type Directory struct {
	baseURL string
	client  *http.Client
	redis   *redis.Client
	breaker *gobreaker.CircuitBreaker
}

func NewDirectory(baseURL string, redisClient *redis.Client) *Directory {
	settings := gobreaker.Settings{
		Name:    "client-directory",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			log.Printf("[CLIENTAPI] Circuit breaker %s: %s -> %s", name, from, to)
		},
	}

	return &Directory{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
		redis:   redisClient,
		breaker: gobreaker.NewCircuitBreaker(settings),
	}
}

// ClientName returns the display name for a client id.
func (d *Directory) ClientName(ctx context.Context, clientID int) (string, error) {
	key := fmt.Sprintf("clientname:%d", clientID)
	if d.redis != nil {
		if name, err := d.redis.Get(ctx, key).Result(); err == nil {
			return name, nil
		}
	}

	result, err := d.breaker.Execute(func() (interface{}, error) {
		return d.fetchName(ctx, clientID)
	})
	if err != nil {
		return "", err
	}
	name := result.(string)

	if d.redis != nil {
		if err := d.redis.Set(ctx, key, name, nameCacheTTL).Err(); err != nil {
			log.Printf("[CLIENTAPI] Failed to cache name for client %d: %v", clientID, err)
		}
	}
	return name, nil
}

func (d *Directory) fetchName(ctx context.Context, clientID int) (string, error) {
	url := fmt.Sprintf("%s/clients/%d", d.baseURL, clientID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("client directory returned status %d for client %d", resp.StatusCode, clientID)
	}

	var payload struct {
		PersonName string `json:"personName"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", err
	}
	if payload.PersonName == "" {
		return "", fmt.Errorf("client directory returned no name for client %d", clientID)
	}
	return payload.PersonName, nil
}
