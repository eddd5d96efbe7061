package main

import "github.com/mgrajesh1/cyclonedx-python/cmd"

func main() {
	cmd.Execute()
}
