package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra/doc"

	"github.com/arthur-debert/postinstall/cmd/postinstall"
	"github.com/arthur-debert/postinstall/internal/version"
)

func main() {
	rootCmd := postinstall.NewRootCmd()

	header := &doc.GenManHeader{
		Title:   "POSTINSTALL",
		Section: "1",
		Source:  "postinstall " + version.Version,
		Manual:  "postinstall manual",
	}

	err := doc.GenMan(rootCmd, header, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating man page: %v\n", err)
		os.Exit(1)
	}
}
