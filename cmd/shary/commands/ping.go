package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func pingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Probe relay liveness",
		RunE: func(cmd *cobra.Command, args []string) error {
			if wire.Exchange.Ping(cmd.Context()) {
				fmt.Println("relay online")
				return nil
			}
			return fmt.Errorf("relay offline")
		},
	}
}
