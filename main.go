package main

import "portfolio-site/cmd"

func main() {
	cmd.Execute()
}
