package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"

	"github.com/goliatone/go-flatcms/cmd/flatcms/internal/cli"
)

func main() {
	cmd := cli.NewCmdRoot()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("error:"), err)
		os.Exit(1)
	}
}
