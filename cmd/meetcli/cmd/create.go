package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/intermeet/backend/internal/flow"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a meeting room and print its join code",
	PreRunE: func(_ *cobra.Command, _ []string) error {
		if viper.GetString("token") == "" {
			return fmt.Errorf("a bearer token is required, run the login command first")
		}
		return nil
	},
	Run: createRoom,
}

func init() {
	rootCmd.AddCommand(createCmd)

	createCmd.Flags().String("name", "", "room name")
	createCmd.Flags().String("room-password", "", "optional room password")
	createCmd.Flags().Bool("waiting-room", false, "require the host to admit participants")
	createCmd.Flags().Int("max", 0, "participant limit, 0 for the server default")
	_ = viper.BindPFlag("create.name", createCmd.Flags().Lookup("name"))
	_ = viper.BindPFlag("create.password", createCmd.Flags().Lookup("room-password"))
	_ = viper.BindPFlag("create.waiting-room", createCmd.Flags().Lookup("waiting-room"))
	_ = viper.BindPFlag("create.max", createCmd.Flags().Lookup("max"))
}

func createRoom(_ *cobra.Command, _ []string) {
	client := flow.NewClient(viper.GetString("server"), viper.GetString("token"))

	code, err := client.CreateRoom(context.Background(),
		viper.GetString("create.name"),
		viper.GetString("create.password"),
		viper.GetBool("create.waiting-room"),
		viper.GetInt("create.max"),
	)
	if err != nil {
		log.Fatalf("create room failed: %v", err)
	}

	fmt.Println(code)
}
