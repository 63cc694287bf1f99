package main

import (
	"fmt"

	"github.com/jorik41/plctester/internal/auth"
	"github.com/spf13/cobra"
)

// hashPasswordCmd produces an Argon2id hash for seeding the users table.
var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password <password>",
	Short: "Hash a password for the users table",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		hash, err := auth.NewPasswordHasher().HashPassword(args[0])
		if err != nil {
			return err
		}
		fmt.Println(hash)
		return nil
	},
}
