package main

import "github.com/explorestoneham/explorestoneham-sub000/internal/cli"

func main() {
	cli.Execute()
}
