package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// @title Bookmarks API
// @version 1.0
// @description Personal URL bookmarks with short redirect codes and visit counts.

// @contact.name Bookmarks Support
// @contact.url https://github.com/mikepea/bookmarks

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT access token (refresh token for /auth/token/refresh). Format: "Bearer {token}"

func main() {
	rootCmd := &cobra.Command{
		Use:          "bookmarks-server",
		Short:        "Bookmark manager with short redirect links",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newMigrateCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
