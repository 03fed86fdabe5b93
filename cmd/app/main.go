package main

import "trade-ledger/internal/adapters/cli"

func main() {
	cli.Execute()
}
