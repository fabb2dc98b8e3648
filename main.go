package main

import "giveup-backend/cmd"

func main() {
	cmd.Run()
}
