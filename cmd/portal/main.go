package main

import (
	"fmt"
	"os"

	"github.com/jrsteele09/go-college-portal/apiclient"
	"github.com/jrsteele09/go-college-portal/internal/cli"
	"github.com/jrsteele09/go-college-portal/internal/config"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading .env: %s\n", err)
	}
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", apiclient.Notice(err))
		os.Exit(1)
	}
}
