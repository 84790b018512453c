package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRequestID(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Get(RequestIDHeader)
	}))

	cases := []struct {
		name    string
		in      string
		keepsIn bool
	}{
		{"client id kept", "abc-123", true},
		{"missing", "", false},
		{"too long", strings.Repeat("a", 65), false},
		{"unsafe chars", "a b\nc", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tc.in != "" {
				req.Header.Set(RequestIDHeader, tc.in)
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			if seen == "" || w.Header().Get(RequestIDHeader) != seen {
				t.Fatalf("expected echoed id, got %q / %q", seen, w.Header().Get(RequestIDHeader))
			}
			if (seen == tc.in) != tc.keepsIn {
				t.Fatalf("id %q for input %q", seen, tc.in)
			}
		})
	}
}

func TestRecoverReturns500(t *testing.T) {
	h := Recover(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
}
