package main

import (
	"log"
	"os"

	"github.com/abhisek/lasty/cmd"
)

func main() {
	log.SetFlags(0)
	log.SetPrefix("lasty: ")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
