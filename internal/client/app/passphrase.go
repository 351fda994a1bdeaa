package app

import (
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

// isTerminal is a test seam for term.IsTerminal.
var isTerminal = term.IsTerminal

var ErrNoPassphrase = errors.New("no passphrase: set GREENWALLET_PASSPHRASE or run on a terminal")

// Passphrase returns configured when set, otherwise prompts on w and reads
// the passphrase from the terminal without echo. The caller should wipe the
// result.
func Passphrase(configured string, w io.Writer) ([]byte, error) {
	if configured != "" {
		return []byte(configured), nil
	}
	fd := int(os.Stdin.Fd())
	if !isTerminal(fd) {
		return nil, ErrNoPassphrase
	}
	if _, err := fmt.Fprint(w, "Wallet passphrase: "); err != nil {
		return nil, err
	}
	pw, err := readPassword(fd)
	fmt.Fprintln(w)
	if err != nil {
		return nil, err
	}
	if len(pw) == 0 {
		return nil, ErrNoPassphrase
	}
	return pw, nil
}
