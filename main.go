package main

import "github.com/vibast-solutions/ms-go-jobboard/cmd"

func main() {
	cmd.Execute()
}
