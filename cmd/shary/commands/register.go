package commands

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"shary/internal/domain"
)

func registerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "register <email> <username>",
		Short: "Create the local account and publish the public key",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			email, username := args[0], args[1]

			password, err := promptPassword("Password")
			if err != nil {
				return err
			}
			confirm, err := promptPassword("Confirm password")
			if err != nil {
				return err
			}
			if password != confirm {
				return fmt.Errorf("passwords do not match")
			}

			wire.Session.Cache(email, username, password)
			if err := wire.Session.StoreCached(); err != nil {
				if errors.Is(err, domain.ErrAlreadyExists) {
					return fmt.Errorf("an account already exists in %s", home)
				}
				return err
			}
			if err := wire.Session.SaveSignature(username, email, password); err != nil {
				return err
			}

			if wire.Exchange.Register(cmd.Context(), email) {
				fmt.Println("Account created and registered with relay.")
			} else {
				fmt.Println("Account created. Relay unreachable; key not published yet.")
			}
			return nil
		},
	}
}
