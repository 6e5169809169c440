package cli

import (
	"fmt"

	"rentexpress/internal/models"
	"rentexpress/internal/util"

	"github.com/spf13/cobra"
)

var (
	adminUsername string
	adminPassword string
	adminName     string
)

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an administrator account",
	Long: `Create an administrator account. Admins cannot self-register.

If --password is omitted a random password is generated and printed once.`,
	RunE: runCreateAdmin,
}

func init() {
	createAdminCmd.Flags().StringVarP(&adminUsername, "username", "u", "", "admin username (required)")
	createAdminCmd.Flags().StringVarP(&adminPassword, "password", "p", "", "admin password")
	createAdminCmd.Flags().StringVar(&adminName, "name", "Administrator", "display name")
	_ = createAdminCmd.MarkFlagRequired("username")
}

func runCreateAdmin(cmd *cobra.Command, args []string) error {
	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.close()

	password := adminPassword
	generated := password == ""
	if generated {
		r, err := util.RandomString(16)
		if err != nil {
			return err
		}
		// guarantee the strength classes regardless of the random draw
		password = r + "Aa1"
	}

	user, err := a.svc.Accounts.CreateAdmin(cmd.Context(), adminUsername, password, models.Profile{"fullName": adminName})
	if err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "created admin %s (%s)\n", user.Username, user.ID)
	if generated {
		fmt.Fprintf(cmd.OutOrStdout(), "password: %s\n", password)
	}
	return nil
}
