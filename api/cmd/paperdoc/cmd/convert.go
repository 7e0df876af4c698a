package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"paper-docx/api/internal/common"
	"paper-docx/api/internal/pipeline"
)

var (
	convertMode string
	convertJSON bool
)

var convertCmd = &cobra.Command{
	Use:   "convert <image>",
	Short: "Convert one image file and write the DOCX to the outputs directory",
	Args:  cobra.ExactArgs(1),
	RunE:  runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)
	convertCmd.Flags().StringVarP(&convertMode, "mode", "m", "mixed", "extraction mode")
	convertCmd.Flags().BoolVar(&convertJSON, "json", false, "print the extracted data as JSON")
}

func runConvert(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	img, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, a.cfg.RequestTimeout)
	defer cancel()

	res, err := a.orch.Run(ctx, pipeline.Request{
		Image:    img,
		Filename: filepath.Base(args[0]),
		Mode:     convertMode,
	})
	if err != nil {
		if d := common.DetailOf(err); d != "" {
			fmt.Fprintln(cmd.ErrOrStderr(), d)
		}
		return fmt.Errorf("%s: %w", common.CodeOf(err), err)
	}

	out := cmd.OutOrStdout()
	if convertJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res.Data); err != nil {
			return err
		}
	}
	fmt.Fprintln(out, filepath.Join(a.cfg.OutputsDir, res.Document.Name))
	if res.Companion != "" {
		fmt.Fprintln(out, filepath.Join(a.cfg.OutputsDir, res.Companion))
	}
	return nil
}
