package main

import "github.com/logbot/logbot/internal/cli"

func main() {
	cli.Execute()
}
