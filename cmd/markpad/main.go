package main

import (
	"log"

	"github.com/markpad/markpad/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		log.Fatal(err)
	}
}
