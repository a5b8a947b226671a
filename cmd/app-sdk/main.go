package main

import (
	"os"

	"github.com/spryker-sdk/app-sdk/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
