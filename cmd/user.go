package main

import (
	"fmt"

	"github.com/arzan03/ConsultCMS/internal/models"
	"github.com/spf13/cobra"
)

var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage staff accounts",
}

var userCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a staff account directly in the store",
	Long: `Create a staff account without going through the API. Use it to bootstrap the
first admin.

Example:
  cmsctl user create --name "Asha" --email asha@example.com --password '...' --role admin`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		name, _ := cmd.Flags().GetString("name")
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")
		role, _ := cmd.Flags().GetString("role")

		rt, err := newRuntime(ctx)
		if err != nil {
			return err
		}
		defer rt.close(ctx)

		schema, _ := rt.resources.Registry().Get(models.UsersResource)
		user, err := rt.resources.Create(ctx, schema, map[string]any{
			"name":     name,
			"email":    email,
			"password": password,
			"role":     role,
		})
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "created %s user %s (%s)\n", user["role"], user["email"], user.ID())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(userCmd)
	userCmd.AddCommand(userCreateCmd)
	userCreateCmd.Flags().String("name", "", "Display name")
	userCreateCmd.Flags().String("email", "", "Login email")
	userCreateCmd.Flags().String("password", "", "Password, at least 8 characters")
	userCreateCmd.Flags().String("role", models.RoleAdmin, "Role: admin or editor")
	_ = userCreateCmd.MarkFlagRequired("email")
	_ = userCreateCmd.MarkFlagRequired("password")
	_ = userCreateCmd.MarkFlagRequired("name")
}
