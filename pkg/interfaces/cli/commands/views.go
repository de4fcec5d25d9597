package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vsinha/methodtree/pkg/domain/entities"
	"github.com/vsinha/methodtree/pkg/interfaces/cli/output"
)

// viewFlags are shared by the bom and routing commands
type viewFlags struct {
	domain    string
	format    string
	outputDir string
}

func (f *viewFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.domain, "domain", "d", string(entities.ItemMethod), "method domain: item, job or quote")
	cmd.Flags().StringVarP(&f.format, "format", "f", output.FormatText, "output format: text, json, csv or xlsx")
	cmd.Flags().StringVarP(&f.outputDir, "output", "o", "", "output directory (default: stdout)")
}

func (f *viewFlags) validate() (entities.MethodDomain, error) {
	if !output.ValidFormat(f.format) {
		return "", fmt.Errorf("unsupported output format: %s", f.format)
	}
	return entities.ParseMethodDomain(f.domain)
}

func (f *viewFlags) outputConfig(cmd *cobra.Command, verbose bool) output.Config {
	return output.Config{
		Format:    f.format,
		OutputDir: f.outputDir,
		Writer:    cmd.OutOrStdout(),
		Verbose:   verbose,
	}
}

func newBOMCommand(a *app) *cobra.Command {
	flags := &viewFlags{}

	cmd := &cobra.Command{
		Use:   "bom <make-method-id>",
		Short: "Print the flattened bill of materials of a make method",
		Long: `Print every material of a make method and its nested make methods with
hierarchical BOM ids, total quantities and rolled-up costs.

Example:
  methodtree bom MM-CHAIR --domain job --format csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			domain, err := flags.validate()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			svc, closeFn, err := a.service(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			view, err := svc.BOMView(ctx, domain, args[0])
			if err != nil {
				return err
			}
			return output.WriteBOM(view, flags.outputConfig(cmd, a.verbose))
		},
	}

	flags.register(cmd)
	return cmd
}

func newRoutingCommand(a *app) *cobra.Command {
	flags := &viewFlags{}
	var quantity float64

	cmd := &cobra.Command{
		Use:   "routing <make-method-id>",
		Short: "Print operation durations of a make method for a quantity",
		Long: `Print setup, labor and machine durations in milliseconds for every
operation of a make method and its nested make methods. Nested operations run
at the requested quantity times the material's total quantity.

Example:
  methodtree routing MM-CHAIR --quantity 25`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			domain, err := flags.validate()
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("quantity") {
				quantity = a.cfg.Routing.DefaultQuantity
			}

			ctx := cmd.Context()
			svc, closeFn, err := a.service(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			view, err := svc.RoutingView(ctx, domain, args[0], quantity)
			if err != nil {
				return err
			}
			return output.WriteRouting(view, flags.outputConfig(cmd, a.verbose))
		},
	}

	flags.register(cmd)
	cmd.Flags().Float64VarP(&quantity, "quantity", "q", 1, "operation quantity (default from routing.default_quantity)")
	return cmd
}
