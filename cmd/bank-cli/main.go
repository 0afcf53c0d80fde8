package main

import "bank-core/cmd/bank-cli/cmd"

func main() {
	cmd.Execute()
}
