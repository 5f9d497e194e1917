package main

import (
	"log/slog"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/plantbuild/cmd/plantbuild/commands"
	foundationerrors "git.home.luguber.info/inful/plantbuild/internal/foundation/errors"
	"git.home.luguber.info/inful/plantbuild/internal/version"
)

func main() {
	var cli commands.CLI
	parser := kong.Parse(&cli,
		kong.Name("plantbuild"),
		kong.Description("Incremental PlantUML diagram builder"),
		kong.UsageOnError(),
		kong.Vars{"version": version.String()},
	)

	globals := &commands.Global{Logger: slog.Default()}
	if err := parser.Run(globals, &cli); err != nil {
		foundationerrors.NewCLIErrorAdapter(cli.Verbose, slog.Default()).HandleError(err)
	}
}
