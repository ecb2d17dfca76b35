package main

import "github.com/intermeet/backend/cmd/meetcli/cmd"

func main() {
	cmd.Execute()
}
