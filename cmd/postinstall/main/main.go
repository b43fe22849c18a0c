package main

import (
	"fmt"
	"os"

	"github.com/arthur-debert/postinstall/cmd/postinstall"
	"github.com/arthur-debert/postinstall/pkg/ui/styles"
)

func main() {
	rootCmd := postinstall.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, styles.Render("Error", fmt.Sprintf("Error: %v", err)))
		os.Exit(1)
	}
}
