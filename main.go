package main

import "github.com/awxmon/awxmon/cmd"

func main() {
	cmd.Execute()
}
