// ABOUTME: User data CLI commands
// ABOUTME: Reads and writes versioned JSON objects by data type
package cli

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
)

// GetDataCommand prints the latest object of a data type.
func GetDataCommand(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("get", flag.ExitOnError)
	dataType := fs.String("type", "", "Object type key (required)")
	includeUnowned := fs.Bool("include-unowned", false, "Include global objects with no owning user")
	_ = fs.Parse(args)

	if *dataType == "" {
		return fmt.Errorf("-type is required")
	}

	svc, err := newService(cfg)
	if err != nil {
		return err
	}
	object, err := svc.GetUserData(context.Background(), *dataType, *includeUnowned)
	if err != nil {
		return err
	}

	fmt.Printf("version %d", object.Version)
	if object.AppUser == nil {
		fmt.Print(" (global)")
	}
	fmt.Println()
	return printJSON(object.JSON)
}

// PutDataCommand writes a new version of a data type from a file or stdin.
func PutDataCommand(cfg *Config, args []string) error {
	fs := flag.NewFlagSet("put", flag.ExitOnError)
	dataType := fs.String("type", "", "Object type key (required)")
	file := fs.String("file", "", "JSON payload file (reads stdin when omitted)")
	status := fs.String("status", "", "Optional status tag for the new version")
	_ = fs.Parse(args)

	if *dataType == "" {
		return fmt.Errorf("-type is required")
	}

	payload, err := readPayload(*file)
	if err != nil {
		return err
	}

	svc, err := newService(cfg)
	if err != nil {
		return err
	}
	object, err := svc.PutUserData(context.Background(), *dataType, payload, *status)
	if err != nil {
		return err
	}
	fmt.Printf("wrote version %d of %s\n", object.Version, *dataType)
	return nil
}

// readPayload decodes a JSON document from a file or stdin.
func readPayload(file string) (any, error) {
	var raw []byte
	var err error
	if file == "" {
		raw, err = io.ReadAll(os.Stdin)
	} else {
		raw, err = os.ReadFile(file)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read payload: %w", err)
	}
	var payload any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("payload is not valid JSON: %w", err)
	}
	return payload, nil
}

// printJSON pretty-prints a raw JSON document to stdout.
func printJSON(raw json.RawMessage) error {
	var buf any
	if err := json.Unmarshal(raw, &buf); err != nil {
		return err
	}
	out, err := json.MarshalIndent(buf, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
