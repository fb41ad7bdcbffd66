package main

import (
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/knbiosciences/agriaqua-go/pkg/auth"
)

var loginUsername string

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Verify credentials against the platform login endpoint",
	RunE: func(cmd *cobra.Command, args []string) error {
		if loginUsername == "" {
			return fmt.Errorf("--username is required")
		}

		fmt.Fprint(os.Stderr, "Password: ")
		password, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Fprintln(os.Stderr)
		if err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}

		svc := auth.NewService(auth.Config{
			RegisterURL:  cfg.RegisterURL,
			LoginURL:     cfg.LoginURL,
			TokenURL:     cfg.TokenURL,
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
		})

		if err := svc.Login(cmd.Context(), loginUsername, strings.TrimSpace(string(password))); err != nil {
			return fmt.Errorf("login failed: %w", err)
		}

		fmt.Println("Login successful.")
		return nil
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginUsername, "username", "", "account username")
}
