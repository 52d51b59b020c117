package main

import "github.com/relab/dagbft/internal/cli"

func main() {
	cli.Execute()
}
