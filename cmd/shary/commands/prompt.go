package commands

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"
)

// promptPassword reads a password without echo when stdin is a terminal,
// falling back to a plain line read otherwise (tests, pipes).
func promptPassword(label string) (string, error) {
	fmt.Fprintf(os.Stderr, "%s: ", label)
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// authenticate prompts for the password and runs the full local check:
// vault login plus signature re-verification. The failure message never
// reveals which artifact rejected the attempt.
func authenticate(username string) (string, error) {
	password, err := promptPassword("Password")
	if err != nil {
		return "", err
	}
	if !wire.Session.TryLogin(username, password) {
		return "", fmt.Errorf("invalid credentials")
	}
	if !wire.Session.VerifySignature(username, wire.Session.Email(), password) {
		return "", fmt.Errorf("invalid credentials")
	}
	return password, nil
}
