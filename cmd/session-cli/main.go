package main

import "wallet-session/cmd/session-cli/cmd"

func main() {
	cmd.Execute()
}
