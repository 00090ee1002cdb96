package common

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5/middleware"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestIdemRejectsReplay(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	calls := 0
	idem := Idem{R: client, TTL: time.Minute, Scope: func(r *http.Request) string { return r.Header.Get("X-Basket-ID") }}
	handler := idem.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
	}))

	send := func(basketID, key string) int {
		req := httptest.NewRequest(http.MethodPost, "/basket/items", nil)
		req.Header.Set("X-Basket-ID", basketID)
		if key != "" {
			req.Header.Set(IdempotencyHeader, key)
		}
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		return rr.Code
	}

	require.Equal(t, http.StatusOK, send("a", "k1"))
	require.Equal(t, http.StatusConflict, send("a", "k1"))
	require.Equal(t, http.StatusOK, send("b", "k1"), "keys are scoped per basket")
	require.Equal(t, http.StatusOK, send("a", ""))
	require.Equal(t, http.StatusOK, send("a", ""))
	require.Equal(t, 4, calls)
}

func TestIdemWithoutRedisPassesThrough(t *testing.T) {
	handler := Idem{}.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))
	req := httptest.NewRequest(http.MethodPost, "/basket/items", nil)
	req.Header.Set(IdempotencyHeader, "k")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	require.Equal(t, http.StatusAccepted, rr.Code)
}

func TestIdemReleasesKeyOnServerError(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	status := http.StatusInternalServerError
	handler := Idem{R: client}.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	}))
	send := func() int {
		req := httptest.NewRequest(http.MethodPost, "/basket/items", nil)
		req.Header.Set(IdempotencyHeader, "retry-me")
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		return rr.Code
	}

	require.Equal(t, http.StatusInternalServerError, send())
	status = http.StatusOK
	require.Equal(t, http.StatusOK, send())
	require.Equal(t, http.StatusConflict, send())
}

func TestIdemReleasesKeyWhenHandlerPanics(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	panicking := true
	idem := Idem{R: client, TTL: time.Minute}
	handler := middleware.Recoverer(idem.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if panicking {
			panic("boom")
		}
		w.WriteHeader(http.StatusOK)
	})))

	send := func() int {
		req := httptest.NewRequest(http.MethodPost, "/basket/items", nil)
		req.Header.Set(IdempotencyHeader, "k-panic")
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		return rr.Code
	}

	require.Equal(t, http.StatusInternalServerError, send())
	require.Empty(t, mr.Keys())

	panicking = false
	require.Equal(t, http.StatusOK, send())
	require.Equal(t, http.StatusConflict, send())
}
