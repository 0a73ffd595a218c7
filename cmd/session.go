package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-faster/errors"
	"github.com/iksnae/tgsum/internal"
	"github.com/iksnae/tgsum/internal/telegram"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const sessionEnvKey = "TELEGRAM_STRING_SESSION"

var (
	sessionPhone    string
	sessionWriteEnv bool
)

var (
	promptIn  io.Reader = os.Stdin
	promptOut io.Writer = os.Stderr
	lineIn    *bufio.Reader
)

// sessionCmd represents the session command
var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Log in to Telegram and create a session string",
	Long: `Log in to Telegram interactively and print a string session.

Store the printed value as TELEGRAM_STRING_SESSION, or pass --write-env to save it
into the env file (--env-file, default .env). TELEGRAM_API_ID and
TELEGRAM_API_HASH must already be set.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if err := cfg.RequireTelegram(); err != nil {
			return err
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		phone := strings.TrimSpace(sessionPhone)
		if phone == "" {
			phone, err = readLine("Phone number (international format): ")
			if err != nil {
				return err
			}
		}

		code := func(ctx context.Context) (string, error) {
			return readLine("Login code: ")
		}
		password := func(ctx context.Context) (string, error) {
			return readSecret("Two-step verification password: ")
		}

		str, err := telegram.Login(ctx, telegramOptions(cfg), phone, code, password)
		if err != nil {
			return err
		}

		if sessionWriteEnv {
			path := sessionEnvPath()
			if err := writeEnvValue(path, sessionEnvKey, str); err != nil {
				return &internal.ExportError{Format: "env", Path: path, Err: err}
			}
			internal.PrintSuccess("Session saved to " + path)
			return nil
		}

		internal.PrintSuccess("Logged in. Add this line to your .env file:")
		fmt.Printf("%s=%s\n", sessionEnvKey, str)
		return nil
	},
}

func sessionEnvPath() string {
	if envFile != "" {
		return envFile
	}
	return ".env"
}

// writeEnvValue sets key in the env file at path, keeping the other entries
func writeEnvValue(path, key, value string) error {
	values := map[string]string{}
	if _, err := os.Stat(path); err == nil {
		existing, err := godotenv.Read(path)
		if err != nil {
			return errors.Wrap(err, "read env file")
		}
		values = existing
	}
	values[key] = value
	return godotenv.Write(values, path)
}

func readLine(prompt string) (string, error) {
	_, _ = fmt.Fprint(promptOut, prompt)
	if lineIn == nil {
		lineIn = bufio.NewReader(promptIn)
	}
	line, err := lineIn.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", errors.Wrap(err, "read input")
	}
	return strings.TrimSpace(line), nil
}

// readSecret reads without echo when stdin is a terminal
func readSecret(prompt string) (string, error) {
	f, ok := promptIn.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return readLine(prompt)
	}
	_, _ = fmt.Fprint(promptOut, prompt)
	b, err := term.ReadPassword(int(f.Fd()))
	_, _ = fmt.Fprintln(promptOut)
	if err != nil {
		return "", errors.Wrap(err, "read password")
	}
	return strings.TrimSpace(string(b)), nil
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.Flags().StringVar(&sessionPhone, "phone", "", "Phone number to log in with (prompted if empty)")
	sessionCmd.Flags().BoolVar(&sessionWriteEnv, "write-env", false, "Write TELEGRAM_STRING_SESSION into the env file instead of printing it")
}
