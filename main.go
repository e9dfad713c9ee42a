package main

import "mocat/internal/cli"

func main() {
	cli.Execute()
}
