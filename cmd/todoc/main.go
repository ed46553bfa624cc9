package main

import "todoc/internal/cli"

func main() {
	cli.Execute()
}
