package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"shary/internal/crypto"
)

func whoamiCmd() *cobra.Command {
	var username string
	cmd := &cobra.Command{
		Use:   "whoami",
		Short: "Print account info and key fingerprint",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := authenticate(username); err != nil {
				return err
			}
			pubkey, err := wire.Identity.PublicKeyString()
			if err != nil {
				return err
			}
			fmt.Printf("Username:    %s\n", wire.Session.Username())
			fmt.Printf("Email:       %s\n", wire.Session.Email())
			fmt.Printf("Fingerprint: %s\n", crypto.HashString(pubkey))
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "as", "", "your username")
	_ = cmd.MarkFlagRequired("as")
	return cmd
}
