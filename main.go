package main

import "event-ticketing/cmd"

func main() {
	cmd.Execute()
}
