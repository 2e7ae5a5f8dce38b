// Command raytracer is the CLI front end for the path-tracing core: a
// github.com/spf13/cobra command tree replacing the teacher's flat,
// flag-parsed main.go, the CLI idiom the retrieved corpus uses for its
// own tools.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
