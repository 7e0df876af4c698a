package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"paper-docx/api/internal/config"
	"paper-docx/api/internal/render"
)

var withGeneric bool

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "Write the built-in DOCX templates into the templates directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := viper.GetString(config.KeyTemplatesDir)
		written, err := render.Provision(dir, withGeneric)
		if err != nil {
			return err
		}
		for _, p := range written {
			fmt.Fprintln(cmd.OutOrStdout(), p)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(templatesCmd)
	templatesCmd.Flags().BoolVar(&withGeneric, "generic", true, "also write template_generic.docx")
}
