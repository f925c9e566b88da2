// Command presensi-token mints HS256 bearer tokens for local development,
// standing in for the login service.
package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/presensi-app/presensi/internal/auth"
	"github.com/presensi-app/presensi/internal/presensi/types"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, out io.Writer) error {
	var (
		id     types.Identity
		secret string
		issuer string
		ttl    time.Duration
	)

	flagSet := pflag.NewFlagSet("presensi-token", pflag.ContinueOnError)
	flagSet.Int64Var(&id.UserID, "id", 0, "user id (required)")
	flagSet.StringVar(&id.DisplayName, "name", "", "display name")
	flagSet.StringVar(&id.Email, "email", "", "email address")
	flagSet.StringVar(&id.Role, "role", "mahasiswa", "role; admin unlocks reports and edits")
	flagSet.StringVar(&secret, "secret", os.Getenv("PRESENSI_JWT_SECRET"), "signing secret (default $PRESENSI_JWT_SECRET, then dev-secret)")
	flagSet.StringVar(&issuer, "issuer", os.Getenv("PRESENSI_JWT_ISSUER"), "iss claim")
	flagSet.DurationVar(&ttl, "ttl", 24*time.Hour, "token lifetime")

	if err := flagSet.Parse(args); err != nil {
		if err == pflag.ErrHelp {
			return nil
		}
		return err
	}
	if id.UserID <= 0 {
		return fmt.Errorf("--id must be a positive user id")
	}
	if secret == "" {
		secret = "dev-secret"
	}

	token, err := auth.Mint(secret, issuer, id, ttl, time.Now())
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, token)
	return err
}
