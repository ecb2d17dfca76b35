package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/intermeet/backend/internal/flow"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and print a bearer token",
	PreRunE: func(_ *cobra.Command, _ []string) error {
		if viper.GetString("email") == "" {
			return fmt.Errorf("email must be specified")
		}
		if viper.GetString("password") == "" {
			return fmt.Errorf("password must be specified")
		}
		return nil
	},
	Run: login,
}

func init() {
	rootCmd.AddCommand(loginCmd)

	loginCmd.Flags().String("email", "", "account email")
	loginCmd.Flags().String("password", "", "account password")
	_ = viper.BindPFlag("email", loginCmd.Flags().Lookup("email"))
	_ = viper.BindPFlag("password", loginCmd.Flags().Lookup("password"))
}

func login(_ *cobra.Command, _ []string) {
	server, email, password := viper.GetString("server"),
		viper.GetString("email"),
		viper.GetString("password")

	token, err := flow.Login(context.Background(), server, email, password)
	if err != nil {
		log.Fatalf("login failed: %v", err)
	}

	fmt.Println(token)
	log.Printf("pass this token to other commands via --token or MEET_TOKEN")
}
