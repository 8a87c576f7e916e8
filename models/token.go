package models

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// ErrEmptySubject is returned when a token carries no "sub" claim.
var ErrEmptySubject = errors.New("token subject is empty")

// Token wraps a JWT used between the client and the system of record.
//
// It embeds [jwt.Token] for low-level operations and [jwt.RegisteredClaims]
// for standard claim access. SignedString holds the compact form sent in
// the Authorization header.
type Token struct {
	*jwt.Token `json:"-"`

	jwt.RegisteredClaims

	SignedString string `json:"-"`

	// Principal is the parsed "sub" claim: the installation or operator the
	// token was issued to.
	Principal string `json:"-"`
}

// GetPrincipal returns the "sub" claim, failing with [ErrEmptySubject] when
// the claim is missing or blank.
func (t *Token) GetPrincipal() (string, error) {
	sub, err := t.GetSubject()
	if err != nil {
		return "", fmt.Errorf("error extracting subject from token: %w", err)
	}
	if sub == "" {
		return "", ErrEmptySubject
	}
	return sub, nil
}

// String implements [fmt.Stringer].
func (t *Token) String() string {
	return t.SignedString
}
