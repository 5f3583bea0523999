// ABOUTME: Form CLI commands
// ABOUTME: Renders composed form definitions and submits form data
package cli

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
)

// FormRenderCommand prints the fully composed form definition.
func FormRenderCommand(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("render", flag.ExitOnError)
	id := fs.String("id", "", "Form object type id (required)")
	_ = fs.Parse(args)

	if *id == "" {
		return fmt.Errorf("-id is required")
	}

	svc, err := newService(cfg)
	if err != nil {
		return err
	}
	ctx := context.Background()
	composer, err := svc.Form(ctx, *id)
	if err != nil {
		return err
	}
	response, err := composer.Render(ctx)
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(response, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

// FormSubmitCommand submits form data from a file or stdin.
func FormSubmitCommand(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("submit", flag.ExitOnError)
	id := fs.String("id", "", "Form object type id (required)")
	file := fs.String("file", "", "JSON form data file (reads stdin when omitted)")
	_ = fs.Parse(args)

	if *id == "" {
		return fmt.Errorf("-id is required")
	}

	payload, err := readPayload(*file)
	if err != nil {
		return err
	}
	formData, ok := payload.(map[string]any)
	if !ok {
		return fmt.Errorf("form data must be a JSON object")
	}

	svc, err := newService(cfg)
	if err != nil {
		return err
	}
	ctx := context.Background()
	composer, err := svc.Form(ctx, *id)
	if err != nil {
		return err
	}
	object, err := composer.Submit(ctx, formData, nil)
	if err != nil {
		return err
	}
	fmt.Printf("submitted version %d\n", object.Version)
	return nil
}
