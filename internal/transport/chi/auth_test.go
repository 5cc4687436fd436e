package chi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func authProbe(keys []string, path, header string) *httptest.ResponseRecorder {
	h := BearerAuthMiddleware(keys)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	req := httptest.NewRequest("GET", path, http.NoBody)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestBearerAuth(t *testing.T) {
	keys := []string{"k-live-1", " k-live-2 "}

	tests := []struct {
		name   string
		keys   []string
		path   string
		header string
		want   int
	}{
		{"no keys configured", nil, "/v1/cache/stats", "", http.StatusOK},
		{"blank keys disable auth", []string{"", "  "}, "/v1/cache/stats", "", http.StatusOK},
		{"missing header", keys, "/v1/cache/stats", "", http.StatusUnauthorized},
		{"basic scheme", keys, "/v1/cache/stats", "Basic dXNlcjpwYXNz", http.StatusUnauthorized},
		{"bearer without token", keys, "/v1/cache/stats", "Bearer ", http.StatusUnauthorized},
		{"unknown key", keys, "/v1/accounts/a1/matches", "Bearer nope", http.StatusUnauthorized},
		{"first key", keys, "/v1/accounts/a1/matches", "Bearer k-live-1", http.StatusOK},
		{"trimmed second key", keys, "/v1/accounts/a1/matches", "Bearer k-live-2", http.StatusOK},
		{"lowercase scheme", keys, "/v1/cache", "bearer k-live-1", http.StatusOK},
		{"health is public", keys, "/health", "", http.StatusOK},
		{"metrics is public", keys, "/metrics", "", http.StatusOK},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr := authProbe(tc.keys, tc.path, tc.header)
			if rr.Code != tc.want {
				t.Fatalf("status = %d, want %d", rr.Code, tc.want)
			}
			if tc.want == http.StatusUnauthorized && rr.Header().Get("WWW-Authenticate") == "" {
				t.Error("401 without WWW-Authenticate challenge")
			}
		})
	}
}

func TestBearerAuth_ErrorBody(t *testing.T) {
	rr := authProbe([]string{"secret"}, "/v1/cache/stats", "Bearer wrong")

	var resp ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	if resp.Code != CodeUnauthorized || resp.Message != "invalid api key" {
		t.Errorf("unexpected body %+v", resp)
	}
}

func TestAPIKeyRing_Accepts(t *testing.T) {
	ring := newAPIKeyRing([]string{"abc", "abcd"})
	for token, want := range map[string]bool{"abc": true, "abcd": true, "ab": false, "abcde": false, "": false} {
		if got := ring.accepts(token); got != want {
			t.Errorf("accepts(%q) = %v, want %v", token, got, want)
		}
	}
}
