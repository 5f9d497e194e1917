package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"git.home.luguber.info/inful/plantbuild/internal/build"
)

// DiscoverCmd implements the 'discover' command.
type DiscoverCmd struct {
	Force bool `short:"f" help:"Evaluate staleness as build --force would"`
	JSON  bool `name:"json" help:"Print candidates as JSON"`
}

func (d *DiscoverCmd) Run(_ *Global, root *CLI) error {
	cfg, err := LoadConfig(root)
	if err != nil {
		return err
	}
	candidates, err := build.Plan(context.Background(), cfg, d.Force)
	if err != nil {
		return err
	}
	if d.JSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(candidates)
	}
	PrintCandidates(os.Stdout, candidates)
	return nil
}

// PrintCandidates writes one line per candidate: state, source, outputs.
func PrintCandidates(w io.Writer, candidates []build.Candidate) {
	stale := 0
	for _, c := range candidates {
		state := "ok"
		switch {
		case c.Error != "":
			state = "error"
		case len(c.Stale) > 0:
			state = "stale"
			stale++
		}
		line := fmt.Sprintf("%-5s %s", state, c.Source)
		if len(c.Outputs) > 0 {
			line += " -> " + strings.Join(c.Outputs, ", ")
		}
		if c.Error != "" {
			line += " (" + c.Error + ")"
		}
		_, _ = fmt.Fprintln(w, line)
	}
	_, _ = fmt.Fprintf(w, "%d candidates, %d stale\n", len(candidates), stale)
}
