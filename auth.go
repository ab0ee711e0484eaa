package main

import "strings"

// AuthService is the login gate over the plaintext credential file. The
// comparison is a direct string match against the stored row: no hashing,
// no sessions, no rate limiting.
type AuthService struct {
	store CredentialStore
}

func NewAuthService(store CredentialStore) *AuthService {
	return &AuthService{store: store}
}

// Authenticate reports whether the username/password pair matches a stored
// row. An unknown user and a wrong password are indistinguishable to the
// caller.
func (a *AuthService) Authenticate(username, password string) (bool, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return false, &ValidationError{Field: "username", Msg: "must not be empty"}
	}
	stored, ok, err := a.store.Lookup(username)
	if err != nil {
		return false, err
	}
	return ok && stored == password, nil
}

// Register appends a new credential row. Duplicate usernames are rejected
// by the store with a ValidationError.
func (a *AuthService) Register(username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return &ValidationError{Field: "username", Msg: "must not be empty"}
	}
	if password == "" {
		return &ValidationError{Field: "password", Msg: "must not be empty"}
	}
	return a.store.Add(username, password)
}
