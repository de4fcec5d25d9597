package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/vsinha/methodtree/pkg/domain/entities"
	csvrepo "github.com/vsinha/methodtree/pkg/infrastructure/repositories/csv"
	"github.com/vsinha/methodtree/pkg/infrastructure/repositories/sqlite"
)

func newImportCommand(a *app) *cobra.Command {
	var fromDir string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Copy CSV method rows into the SQLite database",
		Long: `Read <domain>_materials.csv and <domain>_operations.csv from a directory
and insert them into the SQLite database given by --db or source.path.
Rows whose id is already stored are updated in place and keep their
position, so re-importing a file does not renumber the BOM.

Example:
  methodtree import --from ./data --db ./data/methods.db`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if fromDir == "" {
				fromDir = a.cfg.Source.Dir
			}

			repo, err := sqlite.Open(a.cfg.Source.Path)
			if err != nil {
				return err
			}
			defer repo.Close()

			ctx := cmd.Context()
			if err := csvrepo.NewLoader().LoadDirectory(ctx, fromDir, repo); err != nil {
				return fmt.Errorf("import failed: %w", err)
			}

			out := cmd.OutOrStdout()
			for _, domain := range entities.MethodDomains() {
				rows, err := repo.GetAllMaterials(ctx, domain)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s: %d materials\n", domain, len(rows))
			}

			a.logger.Info("imported method rows",
				zap.String("from", fromDir),
				zap.String("db", a.cfg.Source.Path))
			return nil
		},
	}

	cmd.Flags().StringVar(&fromDir, "from", "", "CSV directory to import (default: source.dir)")
	return cmd
}
