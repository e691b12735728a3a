package main

import "github.com/MeKo-Tech/credex/cmd/credex/cmd"

func main() {
	cmd.Execute()
}
