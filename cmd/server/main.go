package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// newRootCmd builds the ecoa command tree. Server commands read the
// environment through config.Load; client commands read ECOA_* variables
// and flags through v.
func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("ECOA")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	root := &cobra.Command{
		Use:   "ecoa",
		Short: "eCoA request tracking",
		Long: `ecoa runs the eCoA backend and queries it.
Server commands: serve, migrate, seed.
Client commands: requests, templates, responsibilities, users. They talk to
the API at --url and show sample data when it cannot be reached.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.String("url", "http://localhost:8080", "API base URL")
	flags.String("token", "", "bearer token")
	flags.String("email", "", "log in with this email when no token is given")
	flags.Bool("json", false, "output JSON")
	flags.Duration("timeout", 10*time.Second, "request timeout")
	for _, name := range []string{"url", "token", "email", "json", "timeout"} {
		_ = v.BindPFlag(name, flags.Lookup(name))
	}

	root.AddCommand(
		serveCmd(),
		migrateCmd(),
		seedCmd(),
		requestsCmd(v),
		templatesCmd(v),
		responsibilitiesCmd(v),
		usersCmd(v),
	)
	return root
}
