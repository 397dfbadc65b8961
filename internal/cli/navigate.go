package cli

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/wasatext/internal/webui"
)

func newRoutesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "routes",
		Short: "List the web UI routes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "PATH\tNAME\tVIEWS")
			for _, r := range a.router.Routes() {
				views := make([]string, 0, len(r.Views))
				for _, v := range r.Views {
					views = append(views, string(v))
				}
				target := strings.Join(views, " > ")
				if r.Redirect {
					target = "(redirect)"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", r.Path, r.Name, target)
			}
			return w.Flush()
		},
	}
}

func newOpenCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "open <path|url>",
		Short: "Navigate to a web UI location and show it",
		Long: "Resolve a path or URL (hash history URLs such as http://host/#/chat/3 are accepted)\n" +
			"through the web UI routes, applying redirects and the login guard, then render the view.",
		Example: "  wasatext open /\n  wasatext open /conversations/3\n  wasatext open 'http://localhost:5173/#/chat/3'",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			res, err := a.router.NavigateURL(args[0])
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(res)
			}

			for _, hop := range res.Redirects {
				cmd.Printf("-> %s\n", hop)
			}
			cmd.Printf("%s\n\n", res.FullPath())
			return a.render(cmd, res)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the resolution as JSON instead of rendering it")
	return cmd
}

// render prints the innermost view of a resolution using the API
func (a *app) render(cmd *cobra.Command, res webui.Resolution) error {
	if !res.Found {
		cmd.Println("Page not found")
		return nil
	}

	switch res.View() {
	case webui.LoginView:
		cmd.Println("Log in with: wasatext login <name>")
		return nil

	case webui.ConversationsEmpty, webui.ConversationsView:
		items, err := a.client.MyConversations(cmd.Context())
		if err != nil {
			return err
		}
		if len(items) == 0 {
			cmd.Println("No conversations yet.")
			return nil
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tLAST MESSAGE")
		for _, it := range items {
			name := it.Name
			if it.IsGroup {
				name += " (group)"
			}
			last := ""
			if it.LastMessageText != nil {
				last = *it.LastMessageText
			}
			fmt.Fprintf(w, "%d\t%s\t%s\n", it.ID, name, last)
		}
		return w.Flush()

	case webui.ConversationView:
		id, err := strconv.Atoi(res.Params["id"])
		if err != nil {
			return fmt.Errorf("invalid conversation id %q", res.Params["id"])
		}
		detail, err := a.client.Conversation(cmd.Context(), id)
		if err != nil {
			return err
		}
		cmd.Printf("Participants: %s\n\n", strings.Join(detail.Participants, ", "))
		// newest first from the API, print oldest first
		for i := len(detail.Messages) - 1; i >= 0; i-- {
			m := detail.Messages[i]
			cmd.Printf("[%d] %s %s: %s\n", m.ID, m.Timestamp.Local().Format("2006-01-02 15:04"), m.Sender, m.Text)
			for _, c := range m.Comments {
				cmd.Printf("      %s: %s\n", c.UserID, c.Comment)
			}
		}
		return nil
	}

	cmd.Printf("%s\n", res.View())
	return nil
}
