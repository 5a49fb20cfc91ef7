package auth

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/zalando/go-keyring"
	"golang.org/x/term"
)

const (
	serviceName     = "dbdesk"
	passwordAccount = "database-password"
	passwordEnvVar  = "DBDESK_PASSWORD"
)

// GetPassword retrieves the database password.
// If allowEnv is false, environment variables are ignored.
func GetPassword(allowEnv bool) (string, string) {
	// 1. Try Keychain
	pw, err := keyring.Get(serviceName, passwordAccount)
	if err == nil && pw != "" {
		return strings.TrimSpace(pw), "Keychain"
	}

	if allowEnv {
		// 2. Try Env Var (optional)
		pw = os.Getenv(passwordEnvVar)
		if pw != "" {
			return strings.TrimSpace(pw), "Environment Variable"
		}
	}

	return "", ""
}

// SavePassword stores the database password in the OS Keychain.
func SavePassword(pw string) error {
	pw = strings.TrimSpace(pw)
	if pw == "" {
		return errors.New("password is empty")
	}
	return keyring.Set(serviceName, passwordAccount, pw)
}

// DeletePassword removes the database password from the OS Keychain.
// A missing entry is not an error.
func DeletePassword() error {
	err := keyring.Delete(serviceName, passwordAccount)
	if errors.Is(err, keyring.ErrNotFound) {
		return nil
	}
	return err
}

// HasPassword reports whether a password exists in the keychain.
func HasPassword() bool {
	pw, err := keyring.Get(serviceName, passwordAccount)
	if err != nil || pw == "" {
		return false
	}
	return true
}

// PromptForPassword securely prompts the user for the database password.
func PromptForPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return "", err
	}
	fmt.Println() // Add newline after password input
	return strings.TrimSpace(string(bytePassword)), nil
}
