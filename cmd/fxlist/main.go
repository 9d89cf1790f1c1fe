package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/Makepad-fr/fxlist/internal/cli"
	"github.com/Makepad-fr/fxlist/internal/ui"
)

func main() {
	// Root flags (apply to every subcommand)
	envFile := flag.String("env", ".env", "dotenv file merged into the environment")
	theme := flag.String("theme", "classic", "output theme: "+strings.Join(ui.Themes, ", "))
	flag.Usage = func() { cli.PrintHelp(os.Stderr) }
	flag.Parse()

	// Hand the remaining args to the CLI runner; no args opens the list.
	code := cli.Run(flag.Args(), cli.Options{
		EnvFile: *envFile,
		Theme:   *theme,
	})
	if code != 0 {
		fmt.Fprintln(os.Stderr)
	}
	os.Exit(code)
}
