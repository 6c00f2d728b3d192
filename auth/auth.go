// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/crypto/argon2"
)

var (
	ErrInvalidCredentials = errors.New("invalid user id or password")
	ErrInvalidHash        = errors.New("invalid password hash")
	ErrAuthFileExists     = errors.New("auth file already exists")
)

// Argon2id parameters
const (
	argon2Time    = 1
	argon2Memory  = 64 * 1024
	argon2Threads = 4
	argon2KeyLen  = 32
	saltLen       = 16
)

// GenerateSecret creates a random hex string of the specified byte length
func GenerateSecret(byteLen int) (string, error) {
	b := make([]byte, byteLen)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// HashPassword creates an Argon2id hash in PHC string form:
// $argon2id$v=19$m=65536,t=1,p=4$salt$hash
func HashPassword(password string) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	hash := argon2.IDKey([]byte(password), salt, argon2Time, argon2Memory, argon2Threads, argon2KeyLen)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version, argon2Memory, argon2Time, argon2Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(hash)), nil
}

// VerifyPassword reports whether password matches an Argon2id hash.
// A malformed hash is an error, a mismatch is not.
func VerifyPassword(password, hash string) (bool, error) {
	parts := strings.Split(hash, "$")
	if len(parts) != 6 || parts[1] != "argon2id" {
		return false, ErrInvalidHash
	}

	var memory, time uint32
	var threads uint8
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &time, &threads); err != nil {
		return false, fmt.Errorf("%w: %v", ErrInvalidHash, err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil {
		return false, fmt.Errorf("%w: salt: %v", ErrInvalidHash, err)
	}
	want, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil {
		return false, fmt.Errorf("%w: key: %v", ErrInvalidHash, err)
	}

	got := argon2.IDKey([]byte(password), salt, time, memory, threads, uint32(len(want)))
	return subtle.ConstantTimeCompare(want, got) == 1, nil
}

// Credentials is the single admin login read from the auth file.
type Credentials struct {
	UserID string
	Hash   string
}

// Check verifies a login attempt in constant time with respect to the
// user ID.
func (c *Credentials) Check(userID, password string) error {
	userMatch := subtle.ConstantTimeCompare([]byte(userID), []byte(c.UserID)) == 1

	ok, err := VerifyPassword(password, c.Hash)
	if err != nil {
		return err
	}
	if !userMatch || !ok {
		return ErrInvalidCredentials
	}
	return nil
}

// LoadCredentials reads a "user:hash" auth file. A missing file returns
// nil credentials and no error; logins are then disabled and the API is
// left open for local development.
func LoadCredentials(path string) (*Credentials, error) {
	if path == "" {
		slog.Warn("no auth file configured, API is unprotected")
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			slog.Warn("auth file not found, API is unprotected", "path", path)
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read auth file: %w", err)
	}

	user, hash, ok := strings.Cut(strings.TrimSpace(string(data)), ":")
	if !ok || user == "" || hash == "" {
		return nil, errors.New("invalid auth file format (expected user:hash)")
	}
	if !strings.HasPrefix(hash, "$argon2id$") {
		return nil, fmt.Errorf("auth file: %w", ErrInvalidHash)
	}

	slog.Info("admin login enabled", "user", user, "path", path)
	return &Credentials{UserID: user, Hash: hash}, nil
}

// CreateAuthFile hashes password and writes "user:hash" to path with mode
// 0400. An existing file is replaced only when overwrite is set.
func CreateAuthFile(path, userID, password string, overwrite bool) error {
	if userID == "" || strings.Contains(userID, ":") {
		return errors.New("user id must be non-empty and must not contain ':'")
	}
	if password == "" {
		return errors.New("password must not be empty")
	}

	if _, err := os.Stat(path); err == nil {
		if !overwrite {
			return fmt.Errorf("%w: %s", ErrAuthFileExists, path)
		}
		// the file is read-only, so it is removed rather than truncated
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("failed to remove existing auth file: %w", err)
		}
	}

	hash, err := HashPassword(password)
	if err != nil {
		return err
	}

	if err := os.WriteFile(path, []byte(userID+":"+hash+"\n"), 0400); err != nil {
		return fmt.Errorf("failed to write auth file: %w", err)
	}
	return nil
}
