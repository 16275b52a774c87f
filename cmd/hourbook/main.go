package main

import "github.com/hourbook/hourbook/internal/cli"

func main() {
	cli.Execute()
}
