package main

import "github.com/oshokin/acap-packager/cmd/acap-checker/cmd"

func main() {
	cmd.Execute()
}
