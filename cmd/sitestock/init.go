package main

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/jmoiron/sqlx"
	"github.com/urfave/cli/v3"
	"golang.org/x/crypto/bcrypt"

	"github.com/erazemk/sitestock/internal/db"
	"github.com/erazemk/sitestock/internal/model"
	"github.com/erazemk/sitestock/internal/store"
)

const defaultAdmin = "admin"

func initCommand() *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "create an admin account in the warehouse partition",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "user", Aliases: []string{"u"}, Value: defaultAdmin, Usage: "admin username"},
			&cli.StringFlag{Name: "name", Value: "Administrator", Usage: "admin display name"},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg, closeLog, err := setup(c)
			if err != nil {
				return err
			}
			defer closeLog()

			reg, err := cfg.Registry()
			if err != nil {
				return err
			}
			partitions := db.NewPartitions(cfg.DataDir)
			defer partitions.Close()

			warehouse, err := partitions.Get(ctx, reg.Warehouse().Partition)
			if err != nil {
				return err
			}

			username := model.NormalizeUsername(c.String("user"))
			password, err := createAdmin(ctx, warehouse, username, c.String("name"))
			if err != nil {
				return err
			}

			fmt.Printf("Warehouse partition: %s\n", partitions.Path(reg.Warehouse().Partition))
			printAdmin(username, password)
			return nil
		},
	}
}

// createAdmin stores an admin with a generated password and returns the
// password.
func createAdmin(ctx context.Context, warehouse *sqlx.DB, username, name string) (string, error) {
	password, err := generatePassword(16)
	if err != nil {
		return "", fmt.Errorf("generating password: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}

	if _, err := store.CreateUser(ctx, warehouse, username, name, string(hash), model.RoleAdmin); err != nil {
		return "", err
	}
	return password, nil
}

// printAdmin prints the new admin credentials to stdout.
func printAdmin(username, password string) {
	fmt.Println("Admin account created:")
	fmt.Printf("  Username: %s\n", username)
	fmt.Printf("  Password: %s\n", password)
	fmt.Println()
	fmt.Println("Save this password, it cannot be recovered.")
	fmt.Println("Sign in with the Administration site and change it.")
}

// generatePassword creates a random password of the given length.
func generatePassword(length int) (string, error) {
	const charset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789!@#$%&*"
	result := make([]byte, length)
	for i := range result {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		result[i] = charset[n.Int64()]
	}
	return string(result), nil
}
