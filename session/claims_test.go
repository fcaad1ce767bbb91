package session

import (
	"encoding/base64"
	"testing"
)

func tokenWithPayload(payload string) string {
	return "eyJhbGciOiJIUzI1NiJ9." + base64.RawURLEncoding.EncodeToString([]byte(payload)) + ".sig"
}

func TestDecodeClaims(t *testing.T) {
	tests := []struct {
		name  string
		token string
		want  *Claims
	}{
		{
			"full payload",
			tokenWithPayload(`{"userId":"u-1","email":"d@x.test","name":"Driver One","iat":1700000000,"exp":1700003600}`),
			&Claims{UserID: "u-1", Email: "d@x.test", Name: "Driver One", IssuedAt: 1700000000, ExpiresAt: 1700003600},
		},
		{
			"sub fallback",
			tokenWithPayload(`{"sub":"u-2","email":"s@x.test"}`),
			&Claims{UserID: "u-2", Subject: "u-2", Email: "s@x.test"},
		},
		{"empty token", "", nil},
		{"single segment", "notatoken", nil},
		{"bad base64", "a.!!!.c", nil},
		{"not json", "a." + base64.RawURLEncoding.EncodeToString([]byte("plain text")) + ".c", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DecodeClaims(tt.token)
			if (got == nil) != (tt.want == nil) {
				t.Fatalf("DecodeClaims() = %+v, want %+v", got, tt.want)
			}
			if got == nil {
				return
			}
			if got.UserID != tt.want.UserID || got.Email != tt.want.Email ||
				got.Name != tt.want.Name || got.IssuedAt != tt.want.IssuedAt ||
				got.ExpiresAt != tt.want.ExpiresAt {
				t.Errorf("DecodeClaims() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestDecodeClaimsPaddedPayload(t *testing.T) {
	// Some issuers pad the middle segment; decoding must cope.
	padded := "h." + base64.URLEncoding.EncodeToString([]byte(`{"userId":"u-3"}`)) + ".s"
	got := DecodeClaims(padded)
	if got == nil || got.UserID != "u-3" {
		t.Fatalf("DecodeClaims() = %+v, want userId u-3", got)
	}
}
