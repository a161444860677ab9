package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"shary/internal/domain"
)

// request --as <username> --key k [--key k ...] <recipient email> ...
func requestCmd() *cobra.Command {
	var (
		username string
		keys     []string
	)
	cmd := &cobra.Command{
		Use:   "request <recipient email> [more recipients...]",
		Short: "Ask recipients to share fields back",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fields, err := parseFields(keys, false)
			if err != nil {
				return err
			}
			if _, err := authenticate(username); err != nil {
				return err
			}

			owner := wire.Session.Email()
			if !wire.Exchange.Register(cmd.Context(), owner) {
				return fmt.Errorf("relay offline")
			}
			results := wire.Exchange.Upload(cmd.Context(), fields, owner, args, domain.ModeRequest)
			printResults(results)
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "as", "", "your username")
	cmd.Flags().StringArrayVar(&keys, "key", nil, "field key to request (repeatable)")
	_ = cmd.MarkFlagRequired("as")
	_ = cmd.MarkFlagRequired("key")
	return cmd
}
