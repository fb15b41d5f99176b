// Command bookshelf serves the book API and talks to a running instance.
package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "bookshelf:", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:    "bookshelf",
		Usage:   "In-memory book API",
		Version: fmt.Sprintf("%s (%s)", version, commit),
		Commands: []*cli.Command{
			serveCommand(),
			booksCommand(),
		},
	}
}
