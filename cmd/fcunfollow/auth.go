package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"fcunfollow/pkg/auth"
)

// authCmd represents the auth command
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage Neynar credentials",
	Long: `Manage stored Neynar credentials securely.

Credentials are stored using:
  - System keychain (when available)
  - Encrypted file with PBKDF2 key derivation
  - Environment variables (read-only fallback)

Never share your API key or signer UUID!`,
}

// loginCmd represents the auth login command
var loginCmd = &cobra.Command{
	Use:   "login [label]",
	Short: "Store Neynar credentials securely",
	Long: `Store Neynar credentials securely in the system keychain or an
encrypted file.

You will be prompted for:
  - A label for this credential set (if not provided)
  - Neynar API key
  - Signer UUID

Get these values from the Neynar developer dashboard at
https://dev.neynar.com after registering a signer for your account.`,
	Example: `  # Interactive login
  fcunfollow auth login

  # Login with a label
  fcunfollow auth login production`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLogin,
}

// statusCmd represents the auth status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "List stored credentials",
	Long:  `List all stored Neynar credential sets with sensitive values masked.`,
	RunE:  runStatus,
}

// logoutCmd represents the auth logout command
var logoutCmd = &cobra.Command{
	Use:   "logout <label>",
	Short: "Remove stored credentials",
	Long:  `Remove stored Neynar credentials for the given label.`,
	Example: `  # Remove the production credentials
  fcunfollow auth logout production`,
	Args: cobra.ExactArgs(1),
	RunE: runLogout,
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(statusCmd)
	authCmd.AddCommand(logoutCmd)
}

func runLogin(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	reader := bufio.NewReader(os.Stdin)

	var label string
	if len(args) > 0 {
		label = args[0]
	} else {
		fmt.Print("Label [default]: ")
		input, _ := reader.ReadString('\n')
		label = strings.TrimSpace(input)
		if label == "" {
			label = "default"
		}
	}

	apiKey, err := promptSecret("Neynar API key: ")
	if err != nil {
		return err
	}

	signerUUID, err := promptSecret("Signer UUID: ")
	if err != nil {
		return err
	}

	creds := &auth.Credentials{
		Label:      label,
		APIKey:     apiKey,
		SignerUUID: signerUUID,
	}

	if err := manager.Store(creds); err != nil {
		return fmt.Errorf("failed to store credentials: %w", err)
	}

	fmt.Printf("Credentials stored for %q\n", label)
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	all, err := manager.List()
	if err != nil {
		return fmt.Errorf("failed to list credentials: %w", err)
	}

	if len(all) == 0 {
		fmt.Println("No stored credentials. Run 'fcunfollow auth login' to add some.")
		return nil
	}

	for _, creds := range all {
		masked := auth.Sanitize(creds)
		fmt.Printf("%s\n  API key:     %s\n  Signer UUID: %s\n  Modified:    %s\n",
			masked.Label, masked.APIKey, masked.SignerUUID,
			masked.LastModified.Format("2006-01-02 15:04:05"))
	}

	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	manager, err := auth.NewManager()
	if err != nil {
		return fmt.Errorf("failed to initialize credential manager: %w", err)
	}

	label := args[0]
	if err := manager.Delete(label); err != nil {
		return fmt.Errorf("failed to remove credentials: %w", err)
	}

	fmt.Printf("Credentials removed for %q\n", label)
	return nil
}

// promptSecret reads a value without echoing it to the terminal
func promptSecret(prompt string) (string, error) {
	fmt.Print(prompt)
	data, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}

	value := strings.TrimSpace(string(data))
	if value == "" {
		return "", fmt.Errorf("value cannot be empty")
	}

	return value, nil
}
