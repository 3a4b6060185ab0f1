package main

import "hostmedic/cmd"

func main() {
	cmd.Execute()
}
