// ABOUTME: Authentication CLI commands
// ABOUTME: Code exchange, registration, and current-user lookup
package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/liquid-state/pip-go/service"
	"golang.org/x/term"
)

// AuthCommand exchanges a one-time code for a session token and caches it in
// the CLI config.
func AuthCommand(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("auth", flag.ExitOnError)
	code := fs.String("code", "", "One-time registration code (prompted when omitted)")
	_ = fs.Parse(args)

	if *code == "" {
		entered, err := readCode()
		if err != nil {
			return err
		}
		*code = entered
	}

	svc, err := newService(cfg)
	if err != nil {
		return err
	}

	token, err := svc.AuthenticateViaCode(context.Background(), *code)
	if err != nil {
		return fmt.Errorf("code exchange failed: %w", err)
	}

	cfg.Token = token
	if err := SaveConfig(cfg); err != nil {
		return err
	}

	fmt.Println("Authenticated. Token saved.")
	return nil
}

// RegisterCommand registers the current token without a code.
func RegisterCommand(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("register", flag.ExitOnError)
	_ = fs.Parse(args)

	svc, err := newService(cfg)
	if err != nil {
		return err
	}
	if err := svc.Register(context.Background()); err != nil {
		return fmt.Errorf("registration failed: %w", err)
	}
	fmt.Println("Registered.")
	return nil
}

// WhoamiCommand prints the user record behind the cached token.
func WhoamiCommand(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("whoami", flag.ExitOnError)
	_ = fs.Parse(args)

	sub, err := service.Subject(cfg.Token)
	if err != nil {
		return fmt.Errorf("no usable token: %w", err)
	}

	svc, err := newService(cfg)
	if err != nil {
		return err
	}
	user, err := svc.GetUser(context.Background(), sub)
	if err != nil {
		return err
	}
	fmt.Printf("app_user_id: %s\nuuid: %s\n", user.AppUserID, user.UUID)
	return nil
}

// readCode prompts for the registration code without echoing it.
func readCode() (string, error) {
	fmt.Fprint(os.Stderr, "Registration code: ")
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read code: %w", err)
	}
	code := strings.TrimSpace(string(raw))
	if code == "" {
		return "", fmt.Errorf("no code entered")
	}
	return code, nil
}
