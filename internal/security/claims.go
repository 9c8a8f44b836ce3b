package security

import "time"

type TokenClaims struct {
	UserID  string
	Exp     time.Time
	Issuer  string
	Subject string
}
