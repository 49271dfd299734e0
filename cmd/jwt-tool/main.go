package main

import (
	"io"
	"os"

	"github.com/alecthomas/kong"
	"github.com/effective-security/xjwt/cmd/jwt-tool/cli"
	"github.com/effective-security/xjwt/internal/version"
	"github.com/effective-security/xjwt/x/ctl"
)

type app struct {
	cli.Cli

	Encode  cli.EncodeCmd  `cmd:"" help:"encode and sign token"`
	Decode  cli.DecodeCmd  `cmd:"" help:"decode and validate token"`
	Inspect cli.InspectCmd `cmd:"" help:"print token header and claims without validation"`
}

func main() {
	realMain(os.Args, os.Stdin, os.Stdout, os.Stderr, os.Exit)
}

func realMain(args []string, in io.Reader, out io.Writer, errout io.Writer, exit func(int)) {
	cl := app{
		Cli: cli.Cli{},
	}
	cl.Cli.WithErrWriter(errout).
		WithWriter(out).
		WithReader(in)

	parser, err := kong.New(&cl,
		kong.Name("jwt-tool"),
		kong.Description("JWT tools"),
		kong.Writers(out, errout),
		kong.Exit(exit),
		ctl.BoolPtrMapper,
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
		kong.Vars{
			"version": version.Current().String(),
		})
	if err != nil {
		panic(err)
	}

	ctx, err := parser.Parse(args[1:])
	parser.FatalIfErrorf(err)

	if ctx != nil {
		err = ctx.Run(&cl.Cli)
		ctx.FatalIfErrorf(err)
	}
}
