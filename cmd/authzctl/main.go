// Command authzctl inspects grant table documents and mints local test
// tokens.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/pflag"

	"authz-service/internal/auth"
	"authz-service/internal/grantsource"
	"authz-service/pkg/rbac"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2

	defaultTokenExpiry = time.Hour
)

const usage = `usage: authzctl <command> [flags]

commands:
  validate --file grants.yaml                    compile and validate a grant table
  grants   --role ROLE [--file grants.yaml]      print a role's grant set
  check    --role ROLE --permission PERM [--file grants.yaml]
  catalog                                        print the permission vocabulary
  token    --subject ID --role ROLE              mint a JWT signed with JWT_SECRET
`

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return exitUsage
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "validate":
		return validate(rest, stdout, stderr)
	case "grants":
		return grants(rest, stdout, stderr)
	case "check":
		return check(rest, stdout, stderr)
	case "catalog":
		return catalog(stdout)
	case "token":
		return token(rest, stdout, stderr)
	case "help", "-h", "--help":
		fmt.Fprint(stdout, usage)
		return exitOK
	default:
		fmt.Fprintf(stderr, "unknown command %q\n\n%s", cmd, usage)
		return exitUsage
	}
}

func newFlagSet(name string, stderr io.Writer) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(stderr)
	return fs
}

// loadTable reads path, or the default preset when path is empty.
func loadTable(path string) (*rbac.GrantTable, error) {
	var src grantsource.Source = grantsource.NewEmbedded("")
	if path != "" {
		src = grantsource.NewFile(path)
	}
	return src.Load(context.Background())
}

func validate(args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("validate", stderr)
	file := fs.StringP("file", "f", "", "grant table document")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if *file == "" {
		fmt.Fprintln(stderr, "validate: --file is required")
		return exitUsage
	}

	table, err := loadTable(*file)
	if err != nil {
		if violations := rbac.Violations(err); len(violations) > 0 {
			fmt.Fprintf(stderr, "%s: %d hierarchy violations\n", *file, len(violations))
			for _, v := range violations {
				fmt.Fprintf(stderr, "  %s\n", v)
			}
			return exitError
		}
		fmt.Fprintf(stderr, "%v\n", err)
		return exitError
	}

	fmt.Fprintf(stdout, "ok %s roles=%d fingerprint=%s\n", *file, len(table.Roles()), table.Fingerprint())
	return exitOK
}

func grants(args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("grants", stderr)
	file := fs.StringP("file", "f", "", "grant table document (default: built-in preset)")
	roleName := fs.StringP("role", "r", "", "role name")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	role, err := rbac.ParseRole(*roleName)
	if err != nil {
		fmt.Fprintf(stderr, "grants: %v\n", err)
		return exitError
	}
	table, err := loadTable(*file)
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return exitError
	}

	set, err := table.GrantsFor(role)
	if err != nil {
		fmt.Fprintf(stderr, "grants: %v\n", err)
		return exitError
	}
	for _, p := range set.Sorted() {
		fmt.Fprintln(stdout, p)
	}
	return exitOK
}

func check(args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("check", stderr)
	file := fs.StringP("file", "f", "", "grant table document (default: built-in preset)")
	roleName := fs.StringP("role", "r", "", "role name, empty for no role")
	perm := fs.StringP("permission", "p", "", "permission token")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	p, err := rbac.ParsePermission(*perm)
	if err != nil {
		fmt.Fprintf(stderr, "check: %v\n", err)
		return exitError
	}
	table, err := loadTable(*file)
	if err != nil {
		fmt.Fprintf(stderr, "%v\n", err)
		return exitError
	}

	allowed, err := table.Can(rbac.Subject{ID: "authzctl", Role: rbac.Role(*roleName)}, p)
	if err != nil {
		fmt.Fprintf(stderr, "check: %v\n", err)
		return exitError
	}
	if allowed {
		fmt.Fprintf(stdout, "allowed: %s may %s\n", *roleName, p)
	} else {
		fmt.Fprintf(stdout, "denied: %s may not %s\n", *roleName, p)
	}
	return exitOK
}

func catalog(stdout io.Writer) int {
	for _, p := range rbac.AllPermissions() {
		fmt.Fprintln(stdout, p)
	}
	return exitOK
}

func token(args []string, stdout, stderr io.Writer) int {
	fs := newFlagSet("token", stderr)
	subject := fs.StringP("subject", "s", "", "subject id")
	roleName := fs.StringP("role", "r", "", "role claim")
	expiry := fs.Duration("expiry", defaultTokenExpiry, "token lifetime")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		fmt.Fprintln(stderr, "token: JWT_SECRET is not set")
		return exitError
	}
	if *subject == "" {
		fmt.Fprintln(stderr, "token: --subject is required")
		return exitUsage
	}
	role := rbac.RoleNone
	if *roleName != "" {
		r, err := rbac.ParseRole(*roleName)
		if err != nil {
			fmt.Fprintf(stderr, "token: %v\n", err)
			return exitError
		}
		role = r
	}

	signed, err := auth.NewJWTService(secret, *expiry).Generate(*subject, role)
	if err != nil {
		fmt.Fprintf(stderr, "token: %v\n", err)
		return exitError
	}
	fmt.Fprintln(stdout, signed)
	return exitOK
}
