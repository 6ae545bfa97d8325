package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/arzan03/ConsultCMS/internal/client"
	"github.com/spf13/cobra"
)

func newAPI(cmd *cobra.Command) (*client.API, error) {
	cfg, log, err := loadConfig()
	if err != nil {
		return nil, err
	}
	baseURL, _ := cmd.Flags().GetString("api")
	if baseURL == "" {
		baseURL = cfg.APIURL
	}
	path := cfg.SessionFile
	if path == "" {
		path = client.DefaultSessionPath()
	}
	return client.NewAPI(baseURL, client.NewGuard(client.NewFileStore(path)), log), nil
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and cache the session locally",
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")

		api, err := newAPI(cmd)
		if err != nil {
			return err
		}
		session, err := api.Login(email, password)
		if err != nil {
			return err
		}
		exp, _ := client.TokenExpiry(session.Token)
		fmt.Fprintf(cmd.OutOrStdout(), "signed in as %v until %s\n", session.User["email"], exp.Local().Format(time.RFC1123))
		return nil
	},
}

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Show the cached session, clearing it if it has expired",
	RunE: func(cmd *cobra.Command, args []string) error {
		api, err := newAPI(cmd)
		if err != nil {
			return err
		}
		session, err := api.Session()
		if errors.Is(err, client.ErrNotSignedIn) {
			fmt.Fprintln(cmd.OutOrStdout(), "not signed in")
			return nil
		}
		if err != nil {
			return err
		}
		exp, _ := client.TokenExpiry(session.Token)
		fmt.Fprintf(cmd.OutOrStdout(), "%v (%v) valid until %s\n", session.User["email"], session.User["role"], exp.Local().Format(time.RFC1123))
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and clear the cached session",
	RunE: func(cmd *cobra.Command, args []string) error {
		api, err := newAPI(cmd)
		if err != nil {
			return err
		}
		if err := api.Logout(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "signed out")
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{loginCmd, sessionCmd, logoutCmd} {
		c.Flags().String("api", "", "API base URL (defaults to CMS_API_URL)")
		rootCmd.AddCommand(c)
	}
	loginCmd.Flags().String("email", "", "Login email")
	loginCmd.Flags().String("password", "", "Password")
	_ = loginCmd.MarkFlagRequired("email")
	_ = loginCmd.MarkFlagRequired("password")
}
