package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/ukaji3/exgrade-go/pkg/exgrade/template"
)

var overwrite bool

func newTemplateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "template [output.xlsx]",
		Short: "Write the blank task workbook",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runTemplate,
	}
	cmd.Flags().BoolVar(&overwrite, "force", false, "Overwrite an existing file")
	return cmd
}

func runTemplate(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	path := cfg.Template.Path
	if len(args) == 1 {
		path = args[0]
	}

	if overwrite {
		if err := template.Save(path, cfg.TemplateLayout()); err != nil {
			return err
		}
	} else {
		created, err := template.EnsureFile(path, cfg.TemplateLayout())
		if err != nil {
			return err
		}
		if !created {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		}
	}

	logger.Info("template written", "path", path)
	fmt.Fprintln(os.Stdout, path)
	return nil
}
