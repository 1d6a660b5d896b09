package main

import (
	"fmt"
	"os"

	"github.com/arctir/xvsched/cmd"
)

func main() {
	xvschedCmd := cmd.SetupCLI()
	if err := xvschedCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
