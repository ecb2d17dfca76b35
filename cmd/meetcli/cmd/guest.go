package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/intermeet/backend/internal/flow"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var guestCmd = &cobra.Command{
	Use:   "guest",
	Short: "Get a bearer token without an account",
	Run:   guestLogin,
}

func init() {
	rootCmd.AddCommand(guestCmd)

	guestCmd.Flags().String("name", "", "display name shown to other participants")
	_ = viper.BindPFlag("guest.name", guestCmd.Flags().Lookup("name"))
}

func guestLogin(_ *cobra.Command, _ []string) {
	token, err := flow.Guest(context.Background(), viper.GetString("server"), viper.GetString("guest.name"))
	if err != nil {
		log.Fatalf("guest sign-in failed: %v", err)
	}

	fmt.Println(token)
	log.Printf("pass this token to other commands via --token or MEET_TOKEN")
}
