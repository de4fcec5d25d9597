package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vsinha/methodtree/pkg/domain/entities"
)

func newValidateCommand(a *app) *cobra.Command {
	var domainFlag string

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check method rows for cycles, duplicate ids and negative quantities",
		RunE: func(cmd *cobra.Command, args []string) error {
			domains := entities.MethodDomains()
			if domainFlag != "" {
				domain, err := entities.ParseMethodDomain(domainFlag)
				if err != nil {
					return err
				}
				domains = []entities.MethodDomain{domain}
			}

			ctx := cmd.Context()
			svc, closeFn, err := a.service(ctx)
			if err != nil {
				return err
			}
			defer closeFn()

			out := cmd.OutOrStdout()
			var failed []string
			for _, domain := range domains {
				result, err := svc.Validate(ctx, domain)
				if err != nil {
					return err
				}

				if result.IsValid() {
					fmt.Fprintf(out, "✅ %s: valid\n", domain)
					continue
				}

				failed = append(failed, string(domain))
				fmt.Fprintf(out, "❌ %s: %d error(s)\n", domain, len(result.Errors))
				for _, msg := range result.Errors {
					fmt.Fprintf(out, "  - %s\n", msg)
				}
				for _, path := range result.CyclePaths {
					fmt.Fprintf(out, "  cycle: %s\n", strings.Join(path, " -> "))
				}
			}

			if len(failed) > 0 {
				return fmt.Errorf("validation failed for: %s", strings.Join(failed, ", "))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&domainFlag, "domain", "d", "", "validate a single domain (default: all)")
	return cmd
}
