package session

import (
	"encoding/json"
	"fmt"
	"os"
)

// Credentials is the uploaded credential bundle (mafile). Only the
// fields the login flow needs are read; the rest of the bundle is
// preserved on disk untouched.
type Credentials struct {
	AccountName  string `json:"account_name"`
	Password     string `json:"password"`
	SharedSecret string `json:"shared_secret"`
}

// Validate checks that every field the login flow needs is present
func (c *Credentials) Validate() error {
	if c.AccountName == "" {
		return fmt.Errorf("credential bundle missing account_name")
	}
	if c.Password == "" {
		return fmt.Errorf("credential bundle missing password")
	}
	if c.SharedSecret == "" {
		return fmt.Errorf("credential bundle missing shared_secret")
	}
	return nil
}

// ParseCredentials decodes a credential bundle from its JSON form
func ParseCredentials(data []byte) (*Credentials, error) {
	var creds Credentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("parse credential bundle: %w", err)
	}
	if err := creds.Validate(); err != nil {
		return nil, err
	}
	return &creds, nil
}

// LoadCredentials reads and decodes a credential bundle file
func LoadCredentials(path string) (*Credentials, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read credential bundle: %w", err)
	}
	return ParseCredentials(data)
}
