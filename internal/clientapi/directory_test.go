package clientapi

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-redis/redismock/v8"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
)

func TestDirectory_ClientName(t *testing.T) {
	t.Run("resolves the name over HTTP", func(t *testing.T) {
		calls := 0
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls++
			assert.Equal(t, "/clients/7", r.URL.Path)
			fmt.Fprint(w, `{"personName":"Jose Lema"}`)
		}))
		defer server.Close()

		directory := NewDirectory(server.URL, nil)

		name, err := directory.ClientName(context.Background(), 7)
		assert.NoError(t, err)
		assert.Equal(t, "Jose Lema", name)
		assert.Equal(t, 1, calls)
	})

	t.Run("cache hit skips the HTTP call", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Error("directory should not be called on a cache hit")
		}))
		defer server.Close()

		redisClient, redisMock := redismock.NewClientMock()
		redisMock.ExpectGet("clientname:7").SetVal("Jose Lema")

		directory := NewDirectory(server.URL, redisClient)

		name, err := directory.ClientName(context.Background(), 7)
		assert.NoError(t, err)
		assert.Equal(t, "Jose Lema", name)
		assert.NoError(t, redisMock.ExpectationsWereMet())
	})

	t.Run("fetched names are cached", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"personName":"Marianela Montalvo"}`)
		}))
		defer server.Close()

		redisClient, redisMock := redismock.NewClientMock()
		redisMock.ExpectGet("clientname:8").RedisNil()
		redisMock.ExpectSet("clientname:8", "Marianela Montalvo", 5*time.Minute).SetVal("OK")

		directory := NewDirectory(server.URL, redisClient)

		name, err := directory.ClientName(context.Background(), 8)
		assert.NoError(t, err)
		assert.Equal(t, "Marianela Montalvo", name)
		assert.NoError(t, redisMock.ExpectationsWereMet())
	})

	t.Run("non-200 responses are errors", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		directory := NewDirectory(server.URL, nil)

		_, err := directory.ClientName(context.Background(), 42)
		assert.Error(t, err)
	})

	t.Run("breaker opens after repeated failures", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		directory := NewDirectory(server.URL, nil)

		var err error
		for i := 0; i < 6; i++ {
			_, err = directory.ClientName(context.Background(), 7)
			assert.Error(t, err)
		}
		assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	})

	t.Run("empty name is an error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{}`)
		}))
		defer server.Close()

		directory := NewDirectory(server.URL, nil)

		_, err := directory.ClientName(context.Background(), 7)
		assert.Error(t, err)
	})
}
