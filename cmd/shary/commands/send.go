package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"shary/internal/domain"
)

// send --as <username> --field k=v [--field k=v ...] <recipient email> ...
func sendCmd() *cobra.Command {
	var (
		username  string
		rawFields []string
	)
	cmd := &cobra.Command{
		Use:   "send <recipient email> [more recipients...]",
		Short: "Share field values with recipients",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fields, err := parseFields(rawFields, true)
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
			results := wire.Exchange.Upload(cmd.Context(), fields, owner, args, domain.ModeSend)
			printResults(results)
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "as", "", "your username")
	cmd.Flags().StringArrayVar(&rawFields, "field", nil, "field as key=value (repeatable)")
	_ = cmd.MarkFlagRequired("as")
	_ = cmd.MarkFlagRequired("field")
	return cmd
}

func parseFields(raw []string, withValues bool) ([]domain.Field, error) {
	fields := make([]domain.Field, 0, len(raw))
	for _, r := range raw {
		if !withValues {
			fields = append(fields, domain.Field{Key: r})
			continue
		}
		key, value, ok := strings.Cut(r, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("malformed field %q, want key=value", r)
		}
		fields = append(fields, domain.Field{Key: key, Value: value})
	}
	return fields, nil
}

func printResults(results map[string]domain.UploadStatus) {
	if len(results) == 0 {
		fmt.Println("nothing sent")
		return
	}
	for recipient, status := range results {
		fmt.Printf("%s: %s\n", recipient, status)
	}
}
