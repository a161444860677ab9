package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func deleteAccountCmd() *cobra.Command {
	var username string
	cmd := &cobra.Command{
		Use:   "delete-account",
		Short: "Remove local credentials and the relay registration",
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := authenticate(username); err != nil {
				return err
			}

			email := wire.Session.Email()
			if !wire.Exchange.DeleteUser(cmd.Context(), email) {
				fmt.Println("relay registration not removed (offline?); deleting local data anyway")
			}
			if err := wire.Session.DeleteCredentials(); err != nil {
				return err
			}
			fmt.Println("account deleted")
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "as", "", "your username")
	_ = cmd.MarkFlagRequired("as")
	return cmd
}
