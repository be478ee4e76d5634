package main

import "github.com/omicslab/sra-engine/pkg/cmd"

// Version is set at build time via ldflags
var Version = "dev"

func main() {
	cmd.Version = Version
	cmd.Execute()
}
