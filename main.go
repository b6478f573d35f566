package main

import "github.com/frahmantamala/budget-ledger/cmd"

func main() {
	cmd.Execute()
}
