package main

import "github.com/ardanlabs/whitelist/app/wallet/cli/cmd"

func main() {
	cmd.Execute()
}
