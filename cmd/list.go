package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/iksnae/tgsum/internal"
	"github.com/iksnae/tgsum/internal/telegram"
	"github.com/spf13/cobra"
)

var (
	listLimit      int
	listUnreadOnly bool
)

var (
	// Styles
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("62")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212"))

	idStyle = lipgloss.NewStyle().
		Foreground(lipgloss.Color("240")).
		Italic(true)

	countStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	dateStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243"))
)

// listCmd represents the list command
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List your Telegram chats",
	Long:  `List dialogs with their chat ids and unread counts. The ids can be passed to summarize, show and export.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		var chats []internal.Chat
		err = withTelegram(ctx, cfg, func(ctx context.Context, src *telegram.Source) error {
			return internal.ShowProgress(ctx, "Loading dialogs", func(ctx context.Context) error {
				var listErr error
				chats, listErr = src.ListDialogs(ctx, listLimit)
				return listErr
			})
		})
		if err != nil {
			return err
		}

		if listUnreadOnly {
			chats = unreadChats(chats)
		}
		displayChats(chats)
		return nil
	},
}

func unreadChats(chats []internal.Chat) []internal.Chat {
	unread := make([]internal.Chat, 0, len(chats))
	for _, c := range chats {
		if c.UnreadCount > 0 {
			unread = append(unread, c)
		}
	}
	return unread
}

func displayChats(chats []internal.Chat) {
	if len(chats) == 0 {
		fmt.Println(headerStyle.Render("📋 No chats found"))
		return
	}

	fmt.Println(headerStyle.Render(fmt.Sprintf("📋 Found %d chat(s)", len(chats))))
	fmt.Println()

	w := tabwriter.NewWriter(lipgloss.DefaultRenderer().Output(), 0, 0, 3, ' ', 0)

	_, _ = fmt.Fprintln(w, titleStyle.Render("ID")+"\t"+titleStyle.Render("Title")+"\t"+titleStyle.Render("Unread")+"\t")
	_, _ = fmt.Fprintln(w, strings.Repeat("─", 80))

	for _, chat := range chats {
		title := chat.Title
		if title == "" {
			title = "Untitled"
		}
		if len(title) > 50 {
			title = title[:47] + "..."
		}

		unread := dateStyle.Render("0")
		if chat.UnreadCount > 0 {
			unread = countStyle.Render(humanize.Comma(int64(chat.UnreadCount)))
		}

		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t\n", idStyle.Render(strconv.FormatInt(chat.ID, 10)), title, unread)
	}

	_ = w.Flush()
	fmt.Println()
	fmt.Println(idStyle.Render("💡 Tip: Use an ID (e.g., ") +
		lipgloss.NewStyle().Foreground(lipgloss.Color("62")).Render(strconv.FormatInt(chats[0].ID, 10)) +
		idStyle.Render(") with `tgsum summarize -c <id>`"))
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().IntVarP(&listLimit, "limit", "n", 50, "Maximum number of chats to list (0 for all)")
	listCmd.Flags().BoolVar(&listUnreadOnly, "unread", false, "Only list chats with unread messages")
}
