package main

import "github.com/diogo/chatotp/internal/commands"

func main() {
	commands.Execute()
}
