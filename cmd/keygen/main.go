// Package main is a command-line generator for CozySnippet API keys and
// the admin secret.
//
// Usage:
//
//	keygen api-keys [count] [--format plain|json|yaml]
//	keygen admin-secret [--format plain|json|yaml]
//
// Generated credentials are printed once; install them through the
// API_KEYS and ADMIN_SECRET environment variables.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/cozysnippet/api/internal/auth"
)

// Output formats.
const (
	formatPlain = "plain"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

const defaultBaseURL = "http://localhost:8080"

// apiKeysOutput is the structured form of the api-keys command.
type apiKeysOutput struct {
	Keys  []string `json:"keys" yaml:"keys"`
	Count int      `json:"count" yaml:"count"`
	Setup string   `json:"setup" yaml:"setup"`
	Usage []string `json:"usage" yaml:"usage"`
}

// adminSecretOutput is the structured form of the admin-secret command.
type adminSecretOutput struct {
	AdminSecret string   `json:"adminSecret" yaml:"adminSecret"`
	Setup       string   `json:"setup" yaml:"setup"`
	Usage       []string `json:"usage" yaml:"usage"`
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		format  string
		baseURL string
	)

	root := &cobra.Command{
		Use:          "keygen",
		Short:        "Generate credentials for the CozySnippet API",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			switch format {
			case formatPlain, formatJSON, formatYAML:
				return nil
			default:
				return fmt.Errorf("unknown format %q (want plain, json or yaml)", format)
			}
		},
	}
	root.PersistentFlags().StringVarP(&format, "format", "f", formatPlain, "Output format: plain, json or yaml")
	root.PersistentFlags().StringVar(&baseURL, "base-url", defaultBaseURL, "API base URL used in usage examples")

	apiKeysCmd := &cobra.Command{
		Use:   "api-keys [count]",
		Short: fmt.Sprintf("Generate API keys (default 1, at most %d)", auth.MaxKeysPerRequest),
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			count := 1
			if len(args) == 1 {
				n, err := strconv.Atoi(args[0])
				if err != nil || n < 1 {
					return fmt.Errorf("count must be a positive integer, got %q", args[0])
				}
				count = n
			}

			keys, err := auth.GenerateAPIKeys(count)
			if err != nil {
				return fmt.Errorf("failed to generate api keys: %w", err)
			}

			out := apiKeysOutput{
				Keys:  keys,
				Count: len(keys),
				Setup: "export API_KEYS=" + strings.Join(keys, ","),
				Usage: []string{
					fmt.Sprintf(`curl -H "X-API-Key: YOUR_KEY" %s/api/v1/users`, baseURL),
					fmt.Sprintf(`curl -H "Authorization: Bearer YOUR_KEY" %s/api/v1/users`, baseURL),
				},
			}
			return render(cmd.OutOrStdout(), format, out, func(w io.Writer) {
				for i, k := range keys {
					fmt.Fprintf(w, "Key %d: %s\n", i+1, k)
				}
				if count > len(keys) {
					fmt.Fprintf(w, "(capped at %d keys)\n", len(keys))
				}
				fmt.Fprintln(w)
				fmt.Fprintln(w, "Setup:")
				fmt.Fprintf(w, "  %s\n", out.Setup)
				fmt.Fprintln(w)
				fmt.Fprintln(w, "Client usage:")
				for _, u := range out.Usage {
					fmt.Fprintf(w, "  %s\n", u)
				}
			})
		},
	}

	adminSecretCmd := &cobra.Command{
		Use:   "admin-secret",
		Short: "Generate an admin secret",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			secret, err := auth.GenerateAdminSecret()
			if err != nil {
				return fmt.Errorf("failed to generate admin secret: %w", err)
			}

			out := adminSecretOutput{
				AdminSecret: secret,
				Setup:       fmt.Sprintf("export ADMIN_SECRET='%s'", secret),
				Usage: []string{
					fmt.Sprintf(`curl -X POST -H "X-Admin-Secret: $ADMIN_SECRET" -H "Content-Type: application/json" -d '{"count": 3}' %s/admin/keys/generate`, baseURL),
					fmt.Sprintf(`curl -H "X-Admin-Secret: $ADMIN_SECRET" %s/admin/keys/info`, baseURL),
				},
			}
			return render(cmd.OutOrStdout(), format, out, func(w io.Writer) {
				fmt.Fprintf(w, "Admin Secret: %s\n\n", secret)
				fmt.Fprintln(w, "Setup:")
				fmt.Fprintf(w, "  %s\n", out.Setup)
				fmt.Fprintln(w)
				fmt.Fprintln(w, "Usage:")
				for _, u := range out.Usage {
					fmt.Fprintf(w, "  %s\n", u)
				}
				fmt.Fprintln(w)
				fmt.Fprintln(w, "Keep this secret private. It controls API key management.")
			})
		},
	}

	root.AddCommand(apiKeysCmd, adminSecretCmd)
	return root
}

// render writes v in the requested format. plain is written by the
// command's own printer.
func render(w io.Writer, format string, v any, plain func(io.Writer)) error {
	switch format {
	case formatJSON:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode json: %w", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("failed to encode yaml: %w", err)
		}
		return enc.Close()
	default:
		plain(w)
		return nil
	}
}
