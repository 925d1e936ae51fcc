package passwords

import (
	"database/sql/driver"
	"errors"
	"fmt"

	"github.com/alexedwards/argon2id"
	"github.com/jackc/pgx/v5/pgtype"
)

// Password holds an argon2id hash, never a plaintext.
type Password string

var (
	ErrPasswordTooShort = errors.New("password is too short")
	ErrPasswordTooLong  = errors.New("password is too long")
)

const (
	MinPasswordLength = 8
	MaxPasswordLength = 512
)

var params = &argon2id.Params{
	Memory:      128 * 1024,
	Iterations:  4,
	Parallelism: uint8(4),
	SaltLength:  32,
	KeyLength:   64,
}

// PasswordInput wraps a plaintext password supplied by a user.
type PasswordInput struct {
	Password string
}

// NewPassword hashes a plaintext password, enforcing the length bounds.
func NewPassword(input PasswordInput) (Password, error) {
	if len(input.Password) < MinPasswordLength {
		return "", ErrPasswordTooShort
	}
	if len(input.Password) > MaxPasswordLength {
		return "", ErrPasswordTooLong
	}

	hash, err := argon2id.CreateHash(input.Password, params)
	if err != nil {
		return "", err
	}

	return Password(hash), nil
}

// ComparePasswordAndHash compares the input to the password hash
func (p *Password) ComparePasswordAndHash(input PasswordInput) (bool, error) {
	return argon2id.ComparePasswordAndHash(input.Password, string(*p))
}

// String returns the string representation of the password
func (p *Password) String() string {
	return string(*p)
}

// Scan implements database/sql.Scanner.
func (p *Password) Scan(src any) error {
	if src == nil {
		*p = ""
		return nil
	}

	switch v := src.(type) {
	case string:
		*p = Password(v)
		return nil
	case []byte:
		*p = Password(string(v))
		return nil
	default:
		return fmt.Errorf("passwords.Password.Scan: expected string or []byte, got %T", src)
	}
}

// Value implements driver.Valuer.
func (p Password) Value() (driver.Value, error) {
	return string(p), nil
}

// ScanText implements the pgtype.TextScanner interface for pgx v5.
func (p *Password) ScanText(v pgtype.Text) error {
	if !v.Valid {
		*p = ""
		return nil
	}
	*p = Password(v.String)
	return nil
}

// TextValue implements the pgtype.TextValuer interface for pgx v5.
func (p Password) TextValue() (pgtype.Text, error) {
	return pgtype.Text{String: string(p), Valid: true}, nil
}
