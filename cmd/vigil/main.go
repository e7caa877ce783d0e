// cmd/vigil/main.go
package main

import (
	cmd "github.com/jsandlin/vigil/internal/cli"
)

// main starts the vigil CLI application by delegating to the
// cobra root command defined in the vigil package. It does not
// take any arguments and does not return a value.
func main() {
	cmd.Execute()
}
