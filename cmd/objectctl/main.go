package main

import (
	"os"

	"doi-frontend/cmd/objectctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
