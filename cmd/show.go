package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/iksnae/tgsum/internal"
	"github.com/iksnae/tgsum/internal/telegram"
	"github.com/spf13/cobra"
)

var (
	showLimit  int
	showSince  string
	showUnread bool
	showUsers  []string
)

var (
	// Styles for show command
	chatHeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212")).
			Padding(0, 1).
			MarginBottom(1)

	chatMetaStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("243")).
			MarginBottom(1)

	senderStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")).
			Bold(true).
			Padding(0, 1)

	forwardStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("135")).
			Italic(true)

	messageContentStyle = lipgloss.NewStyle().
				Padding(0, 2).
				MarginBottom(1)

	timestampStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Italic(true)
)

// showCmd represents the show command
var showCmd = &cobra.Command{
	Use:   "show <chat>",
	Short: "Show messages from a chat",
	Long:  `Display recent messages from a Telegram chat in the terminal, oldest first.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		chatRef := args[0]
		if _, err := telegram.ParseChatRef(chatRef); err != nil {
			return err
		}
		since, err := parseSince(showSince)
		if err != nil {
			return err
		}

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		limit := showLimit
		if limit <= 0 {
			limit = cfg.Settings.MessageFetching.DefaultLimit
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		chat, messages, err := fetchTranscript(ctx, cfg, chatRef, limit, since, showUnread)
		if err != nil {
			return err
		}

		messages, _ = internal.FilterByParticipants(messages, splitUsers(showUsers))
		messages = internal.SortChronologically(messages)

		displayChatHeader(chat, messages)
		if len(messages) == 0 {
			fmt.Println(chatMetaStyle.Render("(no text messages)"))
			return nil
		}
		for i, msg := range messages {
			displayMessage(i+1, msg, len(messages))
		}
		return nil
	},
}

func displayChatHeader(chat *internal.Chat, messages []internal.Message) {
	if chat == nil {
		return
	}
	fmt.Println(chatHeaderStyle.Render(fmt.Sprintf("💬 %s", chat.Title)))

	metaParts := []string{fmt.Sprintf("Messages: %d", len(messages))}
	if chat.UnreadCount > 0 {
		metaParts = append(metaParts, fmt.Sprintf("Unread: %d", chat.UnreadCount))
	}
	if r := internal.GetDateRange(messages); r.Earliest != nil {
		metaParts = append(metaParts, r.String())
	}
	fmt.Println(chatMetaStyle.Render(strings.Join(metaParts, " • ")))
	fmt.Println()
}

func displayMessage(index int, msg internal.Message, total int) {
	header := senderStyle.Render("👤 "+senderLabel(msg)) + " " + timestampStyle.Render(fmt.Sprintf("[%d/%d]", index, total))
	if ts := msg.FormattedTime(); ts != "" {
		header += " " + timestampStyle.Render(ts)
	}
	if msg.IsReply() {
		header += " " + timestampStyle.Render(fmt.Sprintf("↩ #%d", msg.ReplyToID))
	}
	fmt.Println(header)

	if msg.Forwarded {
		fmt.Println(messageContentStyle.Render(forwardStyle.Render("Forwarded from " + msg.ForwardedFrom)))
	}

	content := strings.TrimSpace(msg.Text)
	if content != "" {
		fmt.Println(messageContentStyle.Render(wrapText(content, 80)))
	} else {
		fmt.Println(messageContentStyle.Foreground(lipgloss.Color("240")).Render("(empty message)"))
	}
}

func senderLabel(msg internal.Message) string {
	if msg.SenderName == "" {
		return "Unknown"
	}
	return msg.SenderName
}

func wrapText(text string, width int) string {
	lines := strings.Split(text, "\n")
	var wrapped []string

	for _, line := range lines {
		if len(line) <= width {
			wrapped = append(wrapped, line)
			continue
		}

		// Wrap long lines
		words := strings.Fields(line)
		currentLine := ""
		for _, word := range words {
			if len(currentLine)+len(word)+1 > width {
				if currentLine != "" {
					wrapped = append(wrapped, currentLine)
					currentLine = word
				} else {
					wrapped = append(wrapped, word)
					currentLine = ""
				}
			} else {
				if currentLine == "" {
					currentLine = word
				} else {
					currentLine += " " + word
				}
			}
		}
		if currentLine != "" {
			wrapped = append(wrapped, currentLine)
		}
	}

	return strings.Join(wrapped, "\n")
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().IntVarP(&showLimit, "limit", "n", 0, "Number of messages to fetch (default: message_fetching.default_limit)")
	showCmd.Flags().StringVar(&showSince, "since", "", "Show messages since this time (RFC3339, YYYY-MM-DD or duration such as 24h)")
	showCmd.Flags().BoolVar(&showUnread, "unread", false, "Only show unread messages")
	showCmd.Flags().StringSliceVarP(&showUsers, "users", "u", nil, "Only show messages from these users and the messages they reply to")
}
