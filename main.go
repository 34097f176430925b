// Entrypoint for the desim CLI; delegates to the Cobra root command in cmd/root.go.

package main

import (
	"github.com/desim-go/desim/cmd"
)

func main() {
	cmd.Execute()
}
