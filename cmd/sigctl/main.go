package main

import (
	"fmt"
	"os"

	"github.com/AnatoleLucet/sig/cmd/sigctl/internal/cli"
)

func main() {
	root := cli.NewRootCommand()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}
