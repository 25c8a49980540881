package main

import "github.com/oshokin/acap-packager/cmd/acap-packager/cmd"

func main() {
	cmd.Execute()
}
