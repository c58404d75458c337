// Command stromctl is a command line client for the strom streaming service.
package main

import "github.com/rhuss/strom/cmd/stromctl/cmd"

var version = "dev"

func main() {
	cmd.SetVersion(version)
	cmd.Execute()
}
