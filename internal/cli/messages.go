package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newSendCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "send <conversation> <text>...",
		Short:   "Send a message to a conversation",
		Example: "  wasatext send 3 hello there",
		Args:    cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			convID, err := strconv.Atoi(args[0])
			if err != nil || convID <= 0 {
				return fmt.Errorf("invalid conversation id %q", args[0])
			}
			msgID, err := a.client.SendMessage(cmd.Context(), convID, strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			cmd.Printf("Sent message %d\n", msgID)
			return nil
		},
	}
}

func newDMCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "dm <user-id> <text>...",
		Short:   "Send a direct message, opening the conversation if needed",
		Example: "  wasatext dm 0b9f0c3e-... hi",
		Args:    cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := a.client.SendDirectMessage(cmd.Context(), args[0], strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			cmd.Printf("Sent message %d in conversation %d\n", resp.MessageID, resp.ConversationID)
			return nil
		},
	}
}
