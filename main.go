package main

import "debtwatch/src/handler/cli"

func main() {
	cli.Run()
}
