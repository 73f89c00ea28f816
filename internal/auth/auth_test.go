package auth

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("correct horse battery")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse battery", hash)
	assert.True(t, CheckPassword(hash, "correct horse battery"))
	assert.False(t, CheckPassword(hash, "wrong password"))
}

func TestHashPasswordRejectsShort(t *testing.T) {
	_, err := HashPassword("short")
	assert.ErrorIs(t, err, ErrPasswordTooShort)
}

func TestValidEmail(t *testing.T) {
	assert.True(t, ValidEmail("user@example.com"))
	assert.True(t, ValidEmail("first.last+tag@sub.example.co.in"))
	assert.False(t, ValidEmail("not-an-email"))
	assert.False(t, ValidEmail("user@"))
	assert.False(t, ValidEmail("@example.com"))
	assert.False(t, ValidEmail("user @example.com"))
}

func TestDisposableEmail(t *testing.T) {
	assert.True(t, DisposableEmail("spam@mailinator.com"))
	assert.True(t, DisposableEmail("spam@YOPMAIL.com"))
	assert.False(t, DisposableEmail("user@gmail.com"))
	assert.False(t, DisposableEmail("no-at-sign"))
}

func TestValidPinCode(t *testing.T) {
	assert.True(t, ValidPinCode("122001"))
	assert.False(t, ValidPinCode("12200"))
	assert.False(t, ValidPinCode("1220011"))
	assert.False(t, ValidPinCode("12200a"))
	assert.False(t, ValidPinCode(""))
}

func TestGoogleVerifier(t *testing.T) {
	exp := time.Now().Add(time.Hour).Unix()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("id_token") != "good-token" {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error_description":"Invalid Value"}`))
			return
		}
		fmt.Fprintf(w, `{"aud":"client-1","sub":"sub-1","email":"User@Example.com",
			"email_verified":"true","name":"Test User","exp":"%d"}`, exp)
	}))
	defer srv.Close()

	v := NewGoogleVerifier("client-1").WithBaseURL(srv.URL)

	id, err := v.Verify(context.Background(), "good-token")
	require.NoError(t, err)
	assert.Equal(t, "sub-1", id.Subject)
	assert.Equal(t, "user@example.com", id.Email)
	assert.True(t, id.EmailVerified)

	_, err = v.Verify(context.Background(), "bad-token")
	assert.ErrorIs(t, err, ErrInvalidIDToken)

	_, err = v.Verify(context.Background(), "")
	assert.ErrorIs(t, err, ErrInvalidIDToken)
}

func TestGoogleVerifierRejectsWrongAudience(t *testing.T) {
	exp := time.Now().Add(time.Hour).Unix()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"aud":"someone-else","sub":"sub-1","email":"u@e.com","email_verified":"true","exp":"%d"}`, exp)
	}))
	defer srv.Close()

	v := NewGoogleVerifier("client-1").WithBaseURL(srv.URL)
	_, err := v.Verify(context.Background(), "good-token")
	assert.ErrorIs(t, err, ErrInvalidIDToken)
}

func TestGoogleVerifierRejectsExpired(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"aud":"client-1","sub":"sub-1","email":"u@e.com","email_verified":"true","exp":"%d"}`,
			time.Now().Add(-time.Hour).Unix())
	}))
	defer srv.Close()

	v := NewGoogleVerifier("client-1").WithBaseURL(srv.URL)
	_, err := v.Verify(context.Background(), "good-token")
	assert.ErrorIs(t, err, ErrInvalidIDToken)
}
