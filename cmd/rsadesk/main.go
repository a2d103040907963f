package main

import (
	"context"
	"os"

	"rsadesk/internal/cli"
)

func main() {
	os.Exit(cli.Execute(context.Background()))
}
