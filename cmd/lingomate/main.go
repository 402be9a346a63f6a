package main

import "github.com/lingomate/lingomate-cli/cmd/lingomate/cmd"

func main() {
	cmd.Execute()
}
