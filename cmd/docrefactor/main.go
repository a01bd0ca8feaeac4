package main

import (
	"log/slog"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/docrefactor/cmd/docrefactor/commands"
	derrors "git.home.luguber.info/inful/docrefactor/internal/errors"
	"git.home.luguber.info/inful/docrefactor/internal/version"
)

func main() {
	cli := &commands.CLI{}
	parser := kong.Parse(cli,
		kong.Name("docrefactor"),
		kong.Description("Reorganize rustdoc HTML: properties sections, widget indexes and inlined inherited methods."),
		kong.Vars{"version": version.String()},
	)

	err := parser.Run(&commands.Global{Logger: slog.Default()}, cli)
	derrors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err)
}
