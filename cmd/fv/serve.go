package main

import (
	"github.com/spf13/cobra"

	"github.com/vanderheijden86/flexview/pkg/export"
	"github.com/vanderheijden86/flexview/pkg/loader"
)

func serveCmd(ro *rootOptions) *cobra.Command {
	var (
		addr    string
		noWatch bool
	)
	cmd := &cobra.Command{
		Use:   "serve <document>",
		Short: "Serve a live browser preview of a document",
		Long: "Serve the diagram as an interactive page. Clicking a node shows its\n" +
			"details, clicking its marker expands or collapses it, and the page\n" +
			"reloads when the file changes.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := ro.options()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			v, err := openViewer(ctx, opts, args[0])
			if err != nil {
				return err
			}

			var w *loader.Watcher
			if !noWatch {
				w, err = loader.NewWatcher(args[0], loader.DefaultDebounce)
				if err != nil {
					return err
				}
				defer w.Close()
			}

			s := export.NewPreviewServer(v, titleOf(args[0]))
			statusInfo.Fprintf(cmd.ErrOrStderr(), "Serving %s on http://%s\n", args[0], displayAddr(addr))
			statusSubtle.Fprintln(cmd.ErrOrStderr(), "Press Ctrl+C to stop")
			return s.Serve(ctx, addr, w)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:9000", "listen address")
	cmd.Flags().BoolVar(&noWatch, "no-watch", false, "do not reload when the file changes")
	return cmd
}

func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}
