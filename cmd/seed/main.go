package main

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"libraryapi/internal/cache"
	"libraryapi/internal/config"
	"libraryapi/internal/db"
	"libraryapi/internal/repository"
	"libraryapi/internal/service"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "seed",
		Short:        "Populate the library database",
		SilenceUsage: true,
	}
	root.AddCommand(newCatalogCmd(), newAdminCmd())
	return root
}

func newCatalogCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Import authors, genres and books from a JSON catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := loadCatalog(file)
			if err != nil {
				return err
			}
			store, c, err := openStore()
			if err != nil {
				return err
			}
			seeder := &catalogSeeder{
				authors: service.NewAuthorService(store.Authors(), store.Books(), c),
				genres:  service.NewGenreService(store.Genres(), store.Books(), c),
				books:   service.NewBookService(store, c),
			}

			res, err := seeder.Seed(cmd.Context(), catalog)
			if err != nil {
				return err
			}
			log.Printf("Seed completed: %d created, %d skipped", res.Created, res.Skipped)
			return nil
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "catalog file (defaults to the bundled sample)")
	return cmd
}

func newAdminCmd() *cobra.Command {
	var name, email, phone string
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Create an administrator account",
		RunE: func(cmd *cobra.Command, args []string) error {
			password, err := readPassword(fmt.Sprintf("Enter password for %s: ", email))
			if err != nil {
				return fmt.Errorf("read password: %w", err)
			}
			store, c, err := openStore()
			if err != nil {
				return err
			}

			isAdmin := true
			user, err := service.NewUserService(store.Users(), store.Borrowings(), c).Create(cmd.Context(), service.UserInput{
				Name:     &name,
				Phone:    &phone,
				Email:    &email,
				Password: &password,
				IsAdmin:  &isAdmin,
			})
			if err != nil {
				return err
			}
			log.Printf("Created admin %s (ID: %d)", user.Email, user.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "Administrator", "display name")
	cmd.Flags().StringVar(&email, "email", "", "login email")
	cmd.Flags().StringVar(&phone, "phone", "0000000000", "contact phone")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

// openStore connects and migrates the configured database.
func openStore() (repository.Store, *cache.Client, error) {
	cfg := config.Load()
	gormDB, err := db.Open(db.Options{Driver: cfg.DBDriver, DSN: cfg.DBDSN, MaxOpenConns: cfg.DBMaxOpenConns})
	if err != nil {
		return nil, nil, err
	}
	log.Printf("Connected to %s database", cfg.DBDriver)
	if err := db.Migrate(gormDB); err != nil {
		return nil, nil, err
	}
	log.Println("Database migrations completed")
	return repository.NewStore(gormDB), cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB), nil
}

// readPassword reads a password without echoing it.
func readPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	bytePassword, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return "", err
	}
	fmt.Println()
	return strings.TrimSpace(string(bytePassword)), nil
}
