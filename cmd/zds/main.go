package main

import (
	"log"
	"zdsctl/cmd/zds/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		log.Fatal(err)
	}
}
