package main

import (
	"os"

	"procurekpi/internal/cli"
)

func main() {
	os.Exit(int(cli.Run()))
}
