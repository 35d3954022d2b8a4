package cors

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestMiddleware(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name        string
		allowed     string
		method      string
		origin      string
		wantStatus  int
		wantAllowed string
	}{
		{"wildcard get", "*", http.MethodGet, "http://app.example", http.StatusOK, "*"},
		{"empty config means wildcard", "", http.MethodGet, "", http.StatusOK, "*"},
		{"preflight", "*", http.MethodOptions, "http://app.example", http.StatusNoContent, "*"},
		{"listed origin echoed", "http://a.example, http://app.example/", http.MethodGet, "http://app.example", http.StatusOK, "http://app.example"},
		{"unlisted origin", "http://a.example", http.MethodGet, "http://evil.example", http.StatusOK, ""},
		{"unlisted preflight still 204", "http://a.example", http.MethodOptions, "http://evil.example", http.StatusNoContent, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/api/v1/add-income", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			rr := httptest.NewRecorder()
			Middleware(tt.allowed)(ok).ServeHTTP(rr, req)

			if rr.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rr.Code, tt.wantStatus)
			}
			if got := rr.Header().Get("Access-Control-Allow-Origin"); got != tt.wantAllowed {
				t.Errorf("Allow-Origin = %q, want %q", got, tt.wantAllowed)
			}
		})
	}
}
