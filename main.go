package main

import "github.com/voiceops/speechadmin/cmd"

func main() {
	cmd.Execute()
}
