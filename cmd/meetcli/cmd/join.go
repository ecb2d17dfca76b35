package cmd

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/intermeet/backend/internal/domain"
	"github.com/intermeet/backend/internal/flow"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var joinCmd = &cobra.Command{
	Use:   "join",
	Short: "Join a meeting by its room code",
	Args:  cobra.MaximumNArgs(1),
	PreRunE: func(_ *cobra.Command, args []string) error {
		if viper.GetString("token") == "" {
			return fmt.Errorf("a bearer token is required, run the login command first")
		}
		if len(args) == 0 {
			return fmt.Errorf("room code must be specified as an argument")
		}

		code := strings.ToUpper(strings.TrimSpace(args[0]))
		if !domain.ValidCode(code) {
			return fmt.Errorf("%q is not a valid room code", args[0])
		}
		viper.Set("join.code", code)
		return nil
	},
	Run: joinRoom,
}

func init() {
	rootCmd.AddCommand(joinCmd)

	joinCmd.Flags().String("room-password", "", "room password, prompted for when omitted")
	_ = viper.BindPFlag("join.password", joinCmd.Flags().Lookup("room-password"))
}

func joinRoom(_ *cobra.Command, _ []string) {
	code := viper.GetString("join.code")

	ctx, stop := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := flow.NewClient(viper.GetString("server"), viper.GetString("token"))
	join := flow.New(client, code, slog.Default())

	if err := join.Start(ctx); err != nil {
		log.Fatalf("join failed: %v", err)
	}

	for {
		switch join.Stage() {
		case flow.StagePassword:
			if msg := join.Err(); msg != "" {
				fmt.Println(msg)
			}
			password := viper.GetString("join.password")
			if password == "" {
				password = promptPassword()
			}
			viper.Set("join.password", "")
			if err := join.SubmitPassword(ctx, password); err != nil {
				log.Fatalf("join failed: %v", err)
			}
		case flow.StageLobby:
			fmt.Println("waiting for the host to let you in...")
			if err := join.AwaitAdmission(ctx); err != nil {
				log.Fatalf("lobby wait interrupted: %v", err)
			}
		case flow.StageConnected:
			grant := join.Grant()
			fmt.Printf("joined %q (%d/%d participants)\n",
				grant.RoomName, grant.ParticipantCount, grant.MaxParticipants)
			fmt.Println(grant.Token)

			<-ctx.Done()
			stop()
			if err := join.Leave(context.Background()); err != nil {
				log.Printf("leave failed: %v", err)
			}
			return
		case flow.StageError:
			log.Fatalf("could not join: %s", join.Err())
		default:
			log.Fatalf("unexpected stage %q", join.Stage())
		}
	}
}

func promptPassword() string {
	fmt.Print("room password: ")
	line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	return strings.TrimSpace(line)
}
