package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCORS(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	tests := []struct {
		name            string
		allowed         []string
		origin          string
		preflight       bool
		wantStatus      int
		wantAllowOrigin string
		wantCredentials string
		wantMethods     bool
	}{
		{name: "listed origin", allowed: []string{"https://app.example.edu/"}, origin: "https://app.example.edu", wantStatus: http.StatusOK, wantAllowOrigin: "https://app.example.edu", wantCredentials: "true"},
		{name: "unlisted origin", allowed: []string{"https://app.example.edu"}, origin: "https://evil.test", wantStatus: http.StatusOK},
		{name: "wildcard", allowed: []string{"*"}, origin: "https://any.test", wantStatus: http.StatusOK, wantAllowOrigin: "*"},
		{name: "preflight listed", allowed: []string{"https://app.example.edu"}, origin: "https://app.example.edu", preflight: true, wantStatus: http.StatusNoContent, wantAllowOrigin: "https://app.example.edu", wantCredentials: "true", wantMethods: true},
		{name: "preflight unlisted", allowed: []string{"https://app.example.edu"}, origin: "https://evil.test", preflight: true, wantStatus: http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method := http.MethodGet
			if tt.preflight {
				method = http.MethodOptions
			}
			req := httptest.NewRequest(method, "/events", nil)
			req.Header.Set("Origin", tt.origin)
			if tt.preflight {
				req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			}
			rr := httptest.NewRecorder()

			CORS(tt.allowed, ok).ServeHTTP(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.Equal(t, tt.wantAllowOrigin, rr.Header().Get("Access-Control-Allow-Origin"))
			assert.Equal(t, tt.wantCredentials, rr.Header().Get("Access-Control-Allow-Credentials"))
			assert.Equal(t, tt.wantMethods, rr.Header().Get("Access-Control-Allow-Methods") != "")
		})
	}
}
