package main

import "github.com/StinkyLord/sbom-srcmap/cmd"

func main() {
	cmd.Execute()
}
