package main

import (
	"fmt"
	"os"

	_ "github.com/joho/godotenv/autoload" // Autoload .env file.

	"github.com/chamada-app/chamadactl/cmd/app"
)

func main() {
	if err := app.Start(); err != nil {
		fmt.Fprintln(os.Stderr, "chamadactl:", err)
		os.Exit(1)
	}
}
