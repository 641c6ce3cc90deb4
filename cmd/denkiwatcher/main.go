package main

import (
	"denki-watcher/internal/cli"
)

func main() {
	cli.Execute()
}
