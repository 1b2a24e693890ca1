package main

import (
	"fmt"
	"io"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/vanderheijden86/flexview/pkg/loader"
	"github.com/vanderheijden86/flexview/pkg/model"
	"github.com/vanderheijden86/flexview/pkg/ui"
)

func viewCmd(ro *rootOptions) *cobra.Command {
	var noWatch bool
	cmd := &cobra.Command{
		Use:   "view <document>",
		Short: "Explore a document in the terminal",
		Long: "Explore a document in the terminal. Pan with the arrow keys or by\n" +
			"dragging, zoom with +/- or the mouse wheel, and press ? for all keys.\n" +
			"The document is reloaded when the file changes.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !isTerminal(os.Stdout) {
				return fmt.Errorf("view needs a terminal; use fv render instead")
			}
			opts, err := ro.options()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			v, err := openViewer(ctx, opts, args[0])
			if err != nil {
				return err
			}

			// The alt screen owns the terminal
			log.SetOutput(io.Discard)
			if path := os.Getenv("FV_DEBUG_LOG"); path != "" {
				f, err := tea.LogToFile(path, "fv")
				if err != nil {
					return err
				}
				defer f.Close()
			}

			p := tea.NewProgram(
				ui.NewModel(ctx, v, titleOf(args[0])),
				tea.WithAltScreen(),
				tea.WithMouseCellMotion(),
				tea.WithContext(ctx),
			)

			if !noWatch {
				w, err := loader.NewWatcher(args[0], loader.DefaultDebounce)
				if err != nil {
					return err
				}
				defer w.Close()
				go w.Run(ctx, func(raws []model.RawNode, err error) {
					p.Send(ui.DocumentMsg{Raws: raws, Err: err})
				})
			}

			_, err = p.Run()
			return err
		},
	}
	cmd.Flags().BoolVar(&noWatch, "no-watch", false, "do not reload when the file changes")
	return cmd
}
