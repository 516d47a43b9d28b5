package main

import (
	"os"

	"github.com/pkg/profile"

	"github.com/stratus-model/stratus/cmd"
)

func main() {
	for _, arg := range os.Args[1:] {
		if arg == "--profile" {
			defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
			break
		}
	}
	cmd.Execute()
}
