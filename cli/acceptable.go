// ABOUTME: Consent document CLI commands
// ABOUTME: Shows acceptance status and records acceptances
package cli

import (
	"context"
	"flag"
	"fmt"
	"strings"
)

// AcceptableStatusCommand reports whether the current user has accepted the
// latest version of a document.
func AcceptableStatusCommand(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	id := fs.String("id", "", "Acceptable document id (required)")
	languages := fs.String("lang", "", "Comma-separated ranked language preferences")
	_ = fs.Parse(args)

	if *id == "" {
		return fmt.Errorf("-id is required")
	}

	svc, err := newService(cfg)
	if err != nil {
		return err
	}
	ctx := context.Background()
	resolver, err := svc.Acceptable(ctx, *id)
	if err != nil {
		return err
	}

	acceptable, err := resolver.Get(ctx, splitList(*languages)...)
	if err != nil {
		return err
	}
	accepted, err := resolver.IsAccepted(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("document: %s\n", acceptable.Name)
	if acceptable.LatestVersion != nil {
		fmt.Printf("latest version: %d\n", acceptable.LatestVersion.Number)
	}
	fmt.Printf("accepted: %t\n", accepted)
	return nil
}

// AcceptableAcceptCommand records acceptance of a document's latest version.
// Accepting twice writes two records; check status first if that matters.
func AcceptableAcceptCommand(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("accept", flag.ExitOnError)
	id := fs.String("id", "", "Acceptable document id (required)")
	_ = fs.Parse(args)

	if *id == "" {
		return fmt.Errorf("-id is required")
	}

	svc, err := newService(cfg)
	if err != nil {
		return err
	}
	ctx := context.Background()
	resolver, err := svc.Acceptable(ctx, *id)
	if err != nil {
		return err
	}
	if err := resolver.Accept(ctx); err != nil {
		return err
	}
	fmt.Println("Accepted.")
	return nil
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	languages := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			languages = append(languages, trimmed)
		}
	}
	return languages
}
