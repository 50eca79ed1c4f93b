package main

import "github.com/tripfriend/auth-service/cmd/authctl/cmd"

func main() {
	cmd.Execute()
}
