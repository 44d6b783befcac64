package main

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/go-task-client/internal/cli"
	"github.com/jrsteele09/go-task-client/internal/config"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) (exitCode int) {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Recovered from panic: %v\n", r)
			debug.PrintStack()
			exitCode = cli.ExitFailure
		}
	}()

	if len(args) == 0 {
		displayAppname(config.GetEnv("APP_NAME", "Tasks"))
	}

	cmd := cli.NewRootCmd()
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, cli.RenderError(err))
		return cli.ExitCode(err)
	}
	return cli.ExitOK
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
