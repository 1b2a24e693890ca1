package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/vanderheijden86/flexview/pkg/config"
	"github.com/vanderheijden86/flexview/pkg/model"
)

func initCmd(ro *rootOptions) *cobra.Command {
	var (
		format string
		yes    bool
		force  bool
	)
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a .flexview config file in the current directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := config.Default()
			if ro.orientation != "" {
				opts.Orientation = ro.orientation
			}

			if !yes {
				if !isTerminal(os.Stdin) {
					return fmt.Errorf("init needs a terminal; pass --yes to write the defaults")
				}
				var err error
				opts, format, err = runInitForm(opts, format)
				if errors.Is(err, huh.ErrUserAborted) {
					statusSubtle.Fprintln(cmd.ErrOrStderr(), "Aborted")
					return nil
				}
				if err != nil {
					return err
				}
			}

			path := ".flexview." + format
			if _, err := config.FormatOf(path); err != nil {
				return err
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists; use --force to overwrite", path)
			}
			if err := opts.Validate(); err != nil {
				return err
			}
			if err := config.Save(path, opts); err != nil {
				return err
			}
			statusGood.Fprintf(cmd.ErrOrStderr(), "✓ wrote %s\n", path)
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "yaml", "config format: yaml, toml or json")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "write the defaults without asking")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")
	return cmd
}

// runInitForm asks for the common settings, prefilled from opts.
func runInitForm(opts config.Options, format string) (config.Options, string, error) {
	nodeW := formatFloat(opts.NodeSize.Width)
	nodeH := formatFloat(opts.NodeSize.Height)
	sibling := formatFloat(opts.NodeMargin.Sibling)
	children := formatFloat(opts.NodeMargin.Children)
	gap := formatFloat(opts.GapBetweenTrees)
	orientation := opts.Orientation

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Orientation").
				Options(
					huh.NewOption("Horizontal (roots on the left)", "horizontal"),
					huh.NewOption("Vertical (roots on top)", "vertical"),
				).
				Value(&orientation),
			huh.NewInput().Title("Node width").Value(&nodeW).Validate(positive),
			huh.NewInput().Title("Node height").Value(&nodeH).Validate(positive),
		),
		huh.NewGroup(
			huh.NewInput().Title("Space between siblings").Value(&sibling).Validate(nonNegative),
			huh.NewInput().Title("Space between parent and children").Value(&children).Validate(nonNegative),
			huh.NewInput().Title("Space between trees").Value(&gap).Validate(nonNegative),
			huh.NewSelect[string]().
				Title("File format").
				Options(huh.NewOptions("yaml", "toml", "json")...).
				Value(&format),
		),
	)
	if err := form.Run(); err != nil {
		return opts, format, err
	}

	opts.Orientation = orientation
	opts.NodeSize = model.Size{Width: mustFloat(nodeW), Height: mustFloat(nodeH)}
	opts.NodeMargin.Sibling = mustFloat(sibling)
	opts.NodeMargin.Children = mustFloat(children)
	opts.GapBetweenTrees = mustFloat(gap)
	return opts, format, nil
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// mustFloat parses a value the form already validated.
func mustFloat(s string) float64 {
	f, _ := strconv.ParseFloat(s, 64)
	return f
}

func positive(s string) error {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f <= 0 {
		return errors.New("enter a positive number")
	}
	return nil
}

func nonNegative(s string) error {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 {
		return errors.New("enter a number of zero or more")
	}
	return nil
}
