package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/YutakaKawauchi/mvv-analysis-api/internal/dispatch"
	"github.com/stretchr/testify/assert"
)

func TestInternalAuth(t *testing.T) {
	const token = "0123456789abcdef"

	auth := NewInternalAuth(token)
	reached := false
	handler := auth.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
		w.WriteHeader(http.StatusOK)
	}))

	cases := []struct {
		name       string
		header     string
		wantStatus int
		wantPass   bool
	}{
		{name: "valid token", header: token, wantStatus: http.StatusOK, wantPass: true},
		{name: "wrong token", header: "wrong-token-value", wantStatus: http.StatusUnauthorized},
		{name: "missing token", header: "", wantStatus: http.StatusUnauthorized},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			reached = false
			req := httptest.NewRequest(http.MethodPost, "/internal/webhook-task-complete", nil)
			if tc.header != "" {
				req.Header.Set(dispatch.InternalTokenHeader, tc.header)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			assert.Equal(t, tc.wantStatus, rec.Code)
			assert.Equal(t, tc.wantPass, reached)
		})
	}
}
