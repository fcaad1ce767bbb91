package session

import (
	"encoding/base64"
	"encoding/json"
	"strings"
)

// Claims are the decoded token payload fields. They are a read-only local
// hint only; the token is never verified client-side and all authorization
// stays with the server.
type Claims struct {
	UserID    string `json:"userId"`
	Subject   string `json:"sub"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}

// DecodeClaims parses the middle segment of a three-part dot-delimited
// token as base64url JSON. Any malformation yields nil; it never panics.
func DecodeClaims(token string) *Claims {
	parts := strings.Split(token, ".")
	if len(parts) < 2 {
		return nil
	}

	payload, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(parts[1], "="))
	if err != nil {
		return nil
	}

	var claims Claims
	if err := json.Unmarshal(payload, &claims); err != nil {
		return nil
	}
	if claims.UserID == "" {
		claims.UserID = claims.Subject
	}
	return &claims
}
