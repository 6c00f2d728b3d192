// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides admin credentials and session tokens.

# Credentials

The admin login lives in an auth file holding one "user:hash" line, where
hash is an Argon2id PHC string:

	err := auth.CreateAuthFile("auth.secret", "admin", password, false)
	creds, err := auth.LoadCredentials("auth.secret")
	err = creds.Check(userID, password)

The file is written with mode 0400. When no auth file exists
LoadCredentials returns nil and the server runs without login, which is
meant for local development only.

# Password Hashing

	hash, err := auth.HashPassword(password)
	ok, err := auth.VerifyPassword(password, hash)

Hashes use Argon2id with t=1, m=64 MiB, p=4 and a 16-byte random salt.
VerifyPassword reads the parameters back from the hash, so older hashes
keep working if they change.

# Sessions

A successful login yields an HS256 JWT carrying the user ID as subject:

	issuer := auth.NewSessionIssuer(secret, 12*time.Hour)
	token, expiresAt, err := issuer.Issue("admin")
	userID, err := issuer.Parse(token)

Expired, tampered or foreign tokens fail with ErrInvalidSession.

# Secrets

	secret, err := auth.GenerateSecret(32) // 64 hex characters

Used to suggest a SESSION_SECRET value.
*/
package auth
