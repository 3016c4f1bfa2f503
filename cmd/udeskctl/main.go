// Command udeskctl is an operator CLI for the userdesk console API.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/userdesk/console-backend/client"
)

var (
	apiURL      string
	sessionPath string

	api  *client.Client
	auth *client.AuthProvider
	data *client.DataProvider
)

var rootCmd = &cobra.Command{
	Use:   "udeskctl",
	Short: "Manage userdesk console users from the command line",
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		session := client.NewSession(client.NewFileStorage(sessionPath))
		api = client.New(apiURL, session)
		auth = client.NewAuthProvider(api)
		data = client.NewDataProvider(api)
	},
	SilenceUsage: true,
}

var loginCmd = &cobra.Command{
	Use:   "login <email>",
	Short: "Authenticate and store a session token",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		password := os.Getenv("UDESK_PASSWORD")
		if password == "" {
			fmt.Fprint(cmd.OutOrStdout(), "Password: ")
			if _, err := fmt.Fscanln(cmd.InOrStdin(), &password); err != nil {
				return fmt.Errorf("read password: %w", err)
			}
		}
		if err := auth.Login(cmd.Context(), args[0], password); err != nil {
			return err
		}
		identity, err := auth.Identity()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (%s)\n", args[0], identity.Role)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Clear the stored session",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := auth.Logout(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the current identity and capabilities",
	RunE: func(cmd *cobra.Command, _ []string) error {
		identity, err := auth.Identity()
		if err != nil {
			return err
		}
		caps := auth.Permissions()
		fmt.Fprintf(cmd.OutOrStdout(), "Role: %s\n", identity.Role)
		fmt.Fprintf(cmd.OutOrStdout(), "Create: %v  Edit: %v  Delete: %v  Export: %v  Import: %v\n",
			caps.CanCreate, caps.CanEdit, caps.CanDelete, caps.CanExport, caps.CanImport)
		return nil
	},
}

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Inspect and manage user accounts",
}

var (
	listPage     int
	listPageSize int
	listSort     string
	listOrder    string
	listFilters  = map[string]*string{
		"role":         new(string),
		"status":       new(string),
		"account_role": new(string),
		"search":       new(string),
	}
)

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List users",
	RunE: func(cmd *cobra.Command, _ []string) error {
		filters := map[string]string{}
		for key, value := range listFilters {
			filters[key] = *value
		}
		result, err := data.List(cmd.Context(), "users", client.ListQuery{
			Page:      listPage,
			PageSize:  listPageSize,
			SortField: listSort,
			SortOrder: listOrder,
			Filters:   filters,
		})
		if err != nil {
			return checkAuthError(err)
		}
		for _, user := range result.Items {
			fmt.Fprintf(cmd.OutOrStdout(), "%v\t%v\t%v\t%v\n",
				user["_key"], user["email"], user["account_role"], user["status"])
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Total: %d\n", result.Total)
		return nil
	},
}

var usersGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one user as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		user, err := data.GetOne(cmd.Context(), "users", args[0])
		if err != nil {
			return checkAuthError(err)
		}
		out, err := json.MarshalIndent(user, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}

var usersDeleteCmd = &cobra.Command{
	Use:   "delete <id>...",
	Short: "Delete one or more users",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		deleted, err := data.DeleteMany(cmd.Context(), "users", args)
		if err != nil {
			return checkAuthError(err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d users\n", len(deleted))
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file.csv>",
	Short: "Bulk create users from a CSV file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		file, err := os.Open(args[0])
		if err != nil {
			return err
		}
		defer file.Close()

		result, err := api.UploadCSV(cmd.Context(), filepath.Base(args[0]), file)
		if err != nil {
			return checkAuthError(err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Rows: %d  Created: %d  Failed: %d\n",
			result.TotalRows, result.UsersCreated, len(result.Errors))
		for _, rowErr := range result.Errors {
			for _, msg := range rowErr.Errors {
				fmt.Fprintf(cmd.OutOrStdout(), "  row %d: %s\n", rowErr.Row, msg)
			}
		}
		return nil
	},
}

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Download users as a CSV file",
	RunE: func(cmd *cobra.Command, _ []string) error {
		filters := client.ExportFilters{
			Role:        *listFilters["role"],
			Status:      *listFilters["status"],
			AccountRole: *listFilters["account_role"],
			Search:      *listFilters["search"],
		}
		var csvSort *client.ExportSort
		if listSort != "" {
			csvSort = &client.ExportSort{Field: listSort, Order: listOrder}
		}

		blob, err := api.ExportCSV(cmd.Context(), filters, csvSort)
		if err != nil {
			return checkAuthError(err)
		}
		if err := os.WriteFile(exportOut, blob, 0644); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d bytes to %s\n", len(blob), exportOut)
		return nil
	},
}

// checkAuthError clears a dead session so the next command starts clean.
func checkAuthError(err error) error {
	if auth.CheckError(err) {
		return fmt.Errorf("%w (session cleared, run 'udeskctl login')", err)
	}
	return err
}

func defaultSessionPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".udeskctl.json"
	}
	return filepath.Join(home, ".udeskctl.json")
}

func init() {
	defaultURL := os.Getenv("UDESK_URL")
	if defaultURL == "" {
		defaultURL = "http://localhost:8000/api/v1"
	}

	rootCmd.PersistentFlags().StringVar(&apiURL, "url", defaultURL, "API base URL")
	rootCmd.PersistentFlags().StringVar(&sessionPath, "session", defaultSessionPath(), "session file path")

	for _, cmd := range []*cobra.Command{usersListCmd, exportCmd} {
		cmd.Flags().StringVar(listFilters["role"], "role", "", "filter by job role")
		cmd.Flags().StringVar(listFilters["status"], "status", "", "filter by status")
		cmd.Flags().StringVar(listFilters["account_role"], "account-role", "", "filter by account role")
		cmd.Flags().StringVar(listFilters["search"], "search", "", "search name or email")
		cmd.Flags().StringVar(&listSort, "sort", "", "sort field")
		cmd.Flags().StringVar(&listOrder, "order", "", "sort order (asc or desc)")
	}
	usersListCmd.Flags().IntVar(&listPage, "page", 1, "page number")
	usersListCmd.Flags().IntVar(&listPageSize, "page-size", 10, "page size")
	exportCmd.Flags().StringVar(&exportOut, "out", "users.csv", "output file")

	usersCmd.AddCommand(usersListCmd, usersGetCmd, usersDeleteCmd)
	rootCmd.AddCommand(loginCmd, logoutCmd, whoamiCmd, usersCmd, importCmd, exportCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
