package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/mrlokans/ipcboard/internal/config"
	"github.com/mrlokans/ipcboard/internal/reports"
)

// ReportCommand prints a text report for an imported board.
type ReportCommand struct {
	BoardName    string
	Kind         string
	DatabasePath string

	out io.Writer
}

func NewReportCommand() *ReportCommand {
	return &ReportCommand{out: os.Stdout}
}

func (cmd *ReportCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("report", flag.ContinueOnError)

	fs.StringVar(&cmd.BoardName, "board", "", "Name of the imported board (required)")
	fs.StringVar(&cmd.Kind, "kind", reports.KindNetlist, "Report kind: netlist or components")
	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the SQLite database")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s report -board <name> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Print the netlist or component list of an imported board.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}

	if cmd.BoardName == "" {
		return fmt.Errorf("required flag -board not provided")
	}
	if cmd.Kind != reports.KindNetlist && cmd.Kind != reports.KindComponents {
		return fmt.Errorf("%w: %q", reports.ErrUnknownKind, cmd.Kind)
	}
	return nil
}

func (cmd *ReportCommand) Run(ctx context.Context) error {
	st, err := openStack(cmd.DatabasePath, false)
	if err != nil {
		return err
	}
	defer st.Close()

	board, err := st.boards.FindBoardByName(ctx, cmd.BoardName)
	if err != nil {
		return fmt.Errorf("failed to look up board: %w", err)
	}
	if board == nil {
		return fmt.Errorf("board %q not found", cmd.BoardName)
	}

	return reports.NewGenerator(st.boards).Write(ctx, cmd.Kind, board.ID, cmd.out)
}
