// ABOUTME: Entry point for the pipctl CLI
// ABOUTME: Routes subcommands for auth, user data, consent documents, and forms
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/liquid-state/pip-go/cli"
)

const version = "0.1.0"

func main() {
	showVersion := flag.Bool("version", false, "Show version and exit")
	_ = flag.CommandLine.Parse(os.Args[1:])

	if *showVersion {
		fmt.Printf("pipctl version %s\n", version)
		os.Exit(0)
	}

	// Optional .env for local development; absence is fine.
	_ = godotenv.Load()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(0)
	}

	cfg, err := cli.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	command := args[0]
	commandArgs := args[1:]

	var cmdErr error
	switch command {
	case "auth":
		cmdErr = cli.AuthCommand(cfg, commandArgs)
	case "register":
		cmdErr = cli.RegisterCommand(cfg, commandArgs)
	case "whoami":
		cmdErr = cli.WhoamiCommand(cfg, commandArgs)
	case "get":
		cmdErr = cli.GetDataCommand(cfg, commandArgs)
	case "put":
		cmdErr = cli.PutDataCommand(cfg, commandArgs)
	case "acceptable":
		cmdErr = routeAcceptable(cfg, commandArgs)
	case "form":
		cmdErr = routeForm(cfg, commandArgs)
	case "types":
		cmdErr = cli.TypesCommand(cfg, commandArgs)
	case "create-type":
		cmdErr = cli.CreateTypeCommand(cfg, commandArgs)
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}

	if cmdErr != nil {
		log.Fatalf("%v", cmdErr)
	}
}

func routeAcceptable(cfg *cli.Config, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: pipctl acceptable <status|accept> [flags]")
	}
	switch args[0] {
	case "status":
		return cli.AcceptableStatusCommand(cfg, args[1:])
	case "accept":
		return cli.AcceptableAcceptCommand(cfg, args[1:])
	default:
		return fmt.Errorf("unknown acceptable subcommand: %s", args[0])
	}
}

func routeForm(cfg *cli.Config, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: pipctl form <render|submit> [flags]")
	}
	switch args[0] {
	case "render":
		return cli.FormRenderCommand(cfg, args[1:])
	case "submit":
		return cli.FormSubmitCommand(cfg, args[1:])
	default:
		return fmt.Errorf("unknown form subcommand: %s", args[0])
	}
}

func printUsage() {
	fmt.Println("pipctl - client for a PIP (private information) backend")
	fmt.Println()
	fmt.Println("Usage: pipctl <command> [flags]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  auth                          Exchange a one-time code for a session token")
	fmt.Println("  register                      Register the current token without a code")
	fmt.Println("  whoami                        Show the user record behind the cached token")
	fmt.Println("  get -type <key>               Print the latest object of a data type")
	fmt.Println("  put -type <key> [-file f]     Write a new version of a data type")
	fmt.Println("  acceptable status -id <id>    Show acceptance status of a document")
	fmt.Println("  acceptable accept -id <id>    Accept a document's latest version")
	fmt.Println("  form render -id <id>          Print a composed form definition")
	fmt.Println("  form submit -id <id>          Submit form data")
	fmt.Println("  types                         List object types (admin)")
	fmt.Println("  create-type                   Define a new object type (admin)")
	fmt.Println()
	fmt.Println("Environment: PIP_API_ROOT, PIP_TOKEN, PIP_API_KEY, PIP_DEBUG")
}
