package main

import (
	"os"

	"github.com/xonecas/clong/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
