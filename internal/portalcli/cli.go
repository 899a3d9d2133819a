// Package portalcli implements the portal command line.
package portalcli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/ldsaas/portal/internal/config"
	"github.com/ldsaas/portal/internal/invite"
	"github.com/ldsaas/portal/internal/logx"
	"github.com/ldsaas/portal/internal/webapp"
)

var ErrUsage = errors.New("usage")

func Execute(args []string) error {
	if len(args) < 1 {
		return usageError()
	}

	switch args[0] {
	case "setup":
		return runSetup(args[1:])
	case "template":
		return runTemplate(args[1:])
	case "run":
		return runCommand(args[1:])
	default:
		return usageError()
	}
}

func usageError() error {
	return fmt.Errorf("%w: portal <setup|template|run> [...]", ErrUsage)
}

// PrintUsage writes the command summary.
func PrintUsage(w io.Writer) {
	fmt.Fprintln(w, "usage: portal setup --api-base-url <url> [--port 8080] [--force]")
	fmt.Fprintln(w, "       portal template [--out invite-template.xlsx]")
	fmt.Fprintln(w, "       portal run")
}

func runSetup(args []string) error {
	fs := flag.NewFlagSet("setup", flag.ContinueOnError)
	apiBaseURL := fs.String("api-base-url", "", "base URL of the learning-platform API")
	port := fs.Int("port", 8080, "HTTP port for the portal")
	envPath := fs.String("env-file", ".env", "path to .env file")
	force := fs.Bool("force", false, "overwrite existing env file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *apiBaseURL == "" {
		return errors.New("--api-base-url is required")
	}

	values := map[string]string{
		"PORTAL_API_BASE_URL": *apiBaseURL,
		"PORTAL_PORT":         fmt.Sprintf("%d", *port),
		"PORTAL_COOKIE_PREFIX": "portal",
		"ENV":                  "dev",
		"LOG_LEVEL":            "info",
		"LOG_FORMAT":           "json",
	}

	if err := writeDotEnv(*envPath, values, *force); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", *envPath)
	return nil
}

func runTemplate(args []string) error {
	fs := flag.NewFlagSet("template", flag.ContinueOnError)
	out := fs.String("out", "invite-template.xlsx", "where to write the manifest template")
	if err := fs.Parse(args); err != nil {
		return err
	}

	data, err := invite.TemplateWorkbook()
	if err != nil {
		return fmt.Errorf("build template: %w", err)
	}
	if err := os.WriteFile(*out, data, 0o644); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", *out)
	return nil
}

func runCommand(args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("%w: portal run takes no arguments", ErrUsage)
	}

	// A missing .env is fine; the environment may carry everything.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load .env: %w", err)
	}

	cfg := config.FromEnv()
	logger := logx.New(logx.Config{
		Service: "portal",
		Env:     cfg.Env,
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
	})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := webapp.Run(ctx, cfg, logger); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func writeDotEnv(path string, values map[string]string, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(k)
		b.WriteString("=")
		b.WriteString(values[k])
		b.WriteString("\n")
	}

	return os.WriteFile(path, []byte(b.String()), 0o600)
}
