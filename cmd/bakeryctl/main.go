// AngelaMos | 2026
// main.go

package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/carterperez-dev/bakery-orders/internal/account"
	"github.com/carterperez-dev/bakery-orders/internal/auth"
	"github.com/carterperez-dev/bakery-orders/internal/config"
	"github.com/carterperez-dev/bakery-orders/internal/core"
)

const usage = `usage: bakeryctl <command> [flags]

commands:
  keygen         write a new ES256 key pair for access tokens
  hash-password  print the argon2id hash of a password
  add-account    create an account directly in the database
  migrate        apply pending database migrations`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT,
		syscall.SIGTERM,
	)
	defer stop()

	var err error
	switch os.Args[1] {
	case "keygen":
		err = keygen(os.Args[2:])
	case "hash-password":
		err = hashPassword(os.Args[2:])
	case "add-account":
		err = addAccount(ctx, os.Args[2:])
	case "migrate":
		err = migrate(ctx, os.Args[2:])
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "bakeryctl %s: %v\n", os.Args[1], err)
		os.Exit(1)
	}
}

func keygen(args []string) error {
	fs := flag.NewFlagSet("keygen", flag.ExitOnError)
	privatePath := fs.String("private", "keys/private.pem", "private key output path")
	publicPath := fs.String("public", "keys/public.pem", "public key output path")
	_ = fs.Parse(args) //nolint:errcheck // ExitOnError

	if err := auth.GenerateKeyPair(*privatePath, *publicPath); err != nil {
		return err
	}

	fmt.Printf("wrote %s and %s\n", *privatePath, *publicPath)
	return nil
}

func hashPassword(args []string) error {
	fs := flag.NewFlagSet("hash-password", flag.ExitOnError)
	password := fs.String("password", "", "password to hash")
	_ = fs.Parse(args) //nolint:errcheck // ExitOnError

	if len(*password) < core.MinPasswordLength {
		return fmt.Errorf("password must be at least %d characters", core.MinPasswordLength)
	}

	hash, err := core.HashPassword(*password)
	if err != nil {
		return err
	}

	fmt.Println(hash)
	return nil
}

func addAccount(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("add-account", flag.ExitOnError)
	configPath := fs.String("config", "config.yaml", "path to config file")
	username := fs.String("username", "", "login name")
	password := fs.String("password", "", "password")
	bakeryName := fs.String("bakery", "", "bakery display name")
	email := fs.String("email", "", "contact email")
	privileged := fs.Bool("privileged", false, "allow managing other accounts")
	_ = fs.Parse(args) //nolint:errcheck // ExitOnError

	if *username == "" || *password == "" {
		fs.PrintDefaults()
		return fmt.Errorf("username and password are required")
	}

	db, err := openDatabase(ctx, *configPath)
	if err != nil {
		return err
	}
	defer db.Close() //nolint:errcheck // process exit

	if _, err := db.Migrate(ctx); err != nil {
		return err
	}

	svc := account.NewService(account.NewRepository(db.DB))
	created, err := svc.Create(ctx, account.CreateAccountRequest{
		Username:   *username,
		Password:   *password,
		BakeryName: bakeryName,
		Email:      email,
		Privileged: *privileged,
	})
	if err != nil {
		return err
	}

	fmt.Printf("account %q created with id %d\n", created.Username, created.ID)
	return nil
}

func migrate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("migrate", flag.ExitOnError)
	configPath := fs.String("config", "config.yaml", "path to config file")
	_ = fs.Parse(args) //nolint:errcheck // ExitOnError

	db, err := openDatabase(ctx, *configPath)
	if err != nil {
		return err
	}
	defer db.Close() //nolint:errcheck // process exit

	applied, err := db.Migrate(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("%d migration(s) applied\n", applied)
	return nil
}

// openDatabase only needs the database section, so a missing JWT key or
// bootstrap setting does not stop the CLI.
func openDatabase(ctx context.Context, configPath string) (*core.Database, error) {
	cfg, err := config.LoadDatabase(configPath)
	if err != nil {
		return nil, err
	}

	return core.NewDatabase(ctx, cfg)
}
