package main

import (
	"os"

	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
)

func main() {
	// A missing .env is fine; options also come from flags and the environment.
	_ = godotenv.Load()

	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if e, ok := err.(*flags.Error); ok && e.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}
}
