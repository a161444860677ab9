package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func loginCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "login <username>",
		Short: "Verify credentials against the local vault",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := authenticate(args[0]); err != nil {
				return err
			}
			fmt.Printf("Logged in as %s <%s>\n", wire.Session.Username(), wire.Session.Email())

			// Re-publish lazily: a fresh install on a second machine has valid
			// credentials but no key on the relay yet.
			email := wire.Session.Email()
			if !wire.Exchange.IsRegistered(cmd.Context(), email) {
				wire.Exchange.Register(cmd.Context(), email)
			}
			return nil
		},
	}
}
