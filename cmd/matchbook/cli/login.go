package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	loginServer string
	loginEmail  string

	registerServer string
	registerEmail  string
	registerName   string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to a Matchbook server",
	Long: `Sign in to a Matchbook server using email and password.
The session token is stored in ~/.matchbook/token with 0600 permissions.

Example:
  matchbook login --server http://localhost:8080 --email player@example.com`,
	RunE: runLogin,
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a Matchbook account",
	Long: `Create an account on a Matchbook server and sign in.

Example:
  matchbook register --server http://localhost:8080 --email player@example.com --name "Sam Player"`,
	RunE: runRegister,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session token",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := RemoveToken(); err != nil {
			return err
		}
		fmt.Fprintln(os.Stderr, "Logged out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in player",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := NewClient()
		if err != nil {
			return err
		}
		me, err := client.Me()
		if err != nil {
			return fmt.Errorf("failed to get profile: %w", err)
		}
		return printOutput(cmd.OutOrStdout(), me, func(w *tableWriter) {
			w.row("NAME", "EMAIL", "MATCHES")
			w.row(me.Name, me.Email, fmt.Sprint(me.MatchCount))
		})
	},
}

func init() {
	loginCmd.Flags().StringVar(&loginServer, "server", "", "Matchbook server URL (e.g. http://localhost:8080)")
	loginCmd.Flags().StringVar(&loginEmail, "email", "", "Email address for authentication")
	loginCmd.MarkFlagRequired("server")
	loginCmd.MarkFlagRequired("email")

	registerCmd.Flags().StringVar(&registerServer, "server", "", "Matchbook server URL (e.g. http://localhost:8080)")
	registerCmd.Flags().StringVar(&registerEmail, "email", "", "Email address for the account")
	registerCmd.Flags().StringVar(&registerName, "name", "", "Display name")
	registerCmd.MarkFlagRequired("server")
	registerCmd.MarkFlagRequired("email")
	registerCmd.MarkFlagRequired("name")
}

func validateServer(raw string) (string, error) {
	server := strings.TrimRight(raw, "/")
	if !strings.HasPrefix(server, "http://") && !strings.HasPrefix(server, "https://") {
		return "", fmt.Errorf("server URL must start with http:// or https://")
	}
	return server, nil
}

func runLogin(cmd *cobra.Command, args []string) error {
	server, err := validateServer(loginServer)
	if err != nil {
		return err
	}

	// Prompt for password interactively
	password, err := readPassword("Password: ")
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}
	if password == "" {
		return fmt.Errorf("password cannot be empty")
	}

	client := NewClientWithURL(server)
	fmt.Fprintf(os.Stderr, "Authenticating with %s...\n", server)

	sess, err := client.Login(loginEmail, password)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	return storeSession(server, sess)
}

func runRegister(cmd *cobra.Command, args []string) error {
	server, err := validateServer(registerServer)
	if err != nil {
		return err
	}

	password, err := readPassword("Password: ")
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}
	confirm, err := readPassword("Confirm password: ")
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}
	if password != confirm {
		return fmt.Errorf("passwords do not match")
	}

	sess, err := NewClientWithURL(server).Register(registerEmail, password, registerName)
	if err != nil {
		return fmt.Errorf("registration failed: %w", err)
	}
	return storeSession(server, sess)
}

func storeSession(server string, sess *Session) error {
	if err := SaveToken(TokenData{
		Token:  sess.Token,
		Server: server,
		Email:  sess.User.Email,
	}); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Logged in as %s\n", sess.User.Email)
	fmt.Fprintf(os.Stderr, "  Token stored in ~/.matchbook/token\n")
	return nil
}

// readPassword prompts for a password without echoing input.
func readPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)

	// Check if stdin is a terminal
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		b, err := term.ReadPassword(fd)
		fmt.Fprintln(os.Stderr) // newline after password input
		if err != nil {
			return "", err
		}
		return string(b), nil
	}

	// Non-interactive: read from stdin (piped input)
	var password string
	_, err := fmt.Fscanln(os.Stdin, &password)
	if err != nil {
		return "", err
	}
	return password, nil
}
