package main

import "github.com/zbx-labs/zbxkit/internal/cli"

func main() {
	cli.Execute()
}
