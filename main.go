package main

import "github.com/droneq/droneq/cmd"

func main() {
	cmd.Execute()
}
