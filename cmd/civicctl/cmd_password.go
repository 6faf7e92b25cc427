package main

import (
	"fmt"

	"github.com/spf13/cobra"

	authservice "civicfund/internal/auth/service"
)

var hashCost int

var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password <password>",
	Short: "Print the bcrypt hash stored for a password",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		accounts := authservice.New(nil, nil, nil, authservice.WithBcryptCost(hashCost))
		hash, err := accounts.HashPassword(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), hash)
		return nil
	},
}

func init() {
	hashPasswordCmd.Flags().IntVar(&hashCost, "cost", 10, "bcrypt cost")
}
