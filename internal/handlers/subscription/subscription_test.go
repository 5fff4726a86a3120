package subscription_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/Nazarious-ucu/vibe-trading-launch/internal/handlers/subscription"
	"github.com/Nazarious-ucu/vibe-trading-launch/internal/services/store"
	"github.com/Nazarious-ucu/vibe-trading-launch/internal/services/subscriptions"
	"github.com/Nazarious-ucu/vibe-trading-launch/internal/validator"
)

type mockService struct {
	res    subscriptions.Result
	err    error
	called []string
}

func (m *mockService) Subscribe(_ context.Context, email string) (subscriptions.Result, error) {
	m.called = append(m.called, email)
	if err := validator.Check(email); err != nil {
		return subscriptions.Result{}, err
	}
	return m.res, m.err
}

func setupRouter(svc *mockService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	h := subscription.NewHandler(svc, zerolog.Nop())
	r.POST("/api/subscribe", h.Subscribe)

	return r
}

func TestSubscribeEndpoint(t *testing.T) {
	cases := []struct {
		name     string
		body     string
		mockErr  error
		wantCode int
		wantBody string
	}{
		{
			name:     "empty email",
			body:     `{"email": ""}`,
			wantCode: http.StatusBadRequest,
			wantBody: `{"success":false,"message":"Email cannot be empty"}`,
		},
		{
			name:     "malformed body",
			body:     `not json`,
			wantCode: http.StatusBadRequest,
			wantBody: `{"success":false,"message":"Email cannot be empty"}`,
		},
		{
			name:     "invalid email",
			body:     `{"email": "not-an-email"}`,
			wantCode: http.StatusBadRequest,
			wantBody: `{"success":false,"message":"Invalid email format"}`,
		},
		{
			name:     "storage exhausted",
			body:     `{"email": "a@b.com"}`,
			mockErr:  &store.ExhaustedError{},
			wantCode: http.StatusInternalServerError,
			wantBody: `{"success":false,"message":"Failed to subscribe. Please try again later."}`,
		},
		{
			name:     "success",
			body:     `{"email": "a@b.com"}`,
			wantCode: http.StatusOK,
			wantBody: `{"success":true,"message":"Thank you for subscribing! We'll notify you when Vibe Trading launches."}`,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			router := setupRouter(&mockService{err: tc.mockErr})

			req := httptest.NewRequest(http.MethodPost, "/api/subscribe", strings.NewReader(tc.body))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tc.wantCode, w.Code)
			assert.JSONEq(t, tc.wantBody, w.Body.String())
		})
	}
}

func TestSubscribeEndpoint_Idempotent(t *testing.T) {
	svc := &mockService{res: subscriptions.Result{Created: false}}
	router := setupRouter(svc)

	for range 2 {
		req := httptest.NewRequest(http.MethodPost, "/api/subscribe", strings.NewReader(`{"email":"a@b.com"}`))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	}
	assert.Equal(t, []string{"a@b.com", "a@b.com"}, svc.called)
}
