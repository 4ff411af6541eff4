package cli

import (
	"fmt"

	"tasktimer/backend/internal/services"

	"github.com/spf13/cobra"
)

func newUsersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage user accounts",
	}
	cmd.AddCommand(newUsersDeleteCmd())
	return cmd
}

func newUsersDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete USERNAME",
		Short: "Delete a user with all of their tasks and time entries",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(true)
			if err != nil {
				return err
			}
			defer a.Close()

			userService := services.NewUserService(services.NewSummaryCache(a.cache, a.config.Cache.SummaryTTL))
			db := a.DB().WithContext(cmd.Context())

			user, err := userService.FindByUsername(db, args[0])
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			if err := userService.DeleteUser(db, user.ID); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Deleted user %s (%s)\n", user.Username, user.ID)
			return nil
		},
	}
}
