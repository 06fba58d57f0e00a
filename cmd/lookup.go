package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"consultabot/config"
	"consultabot/internal/lookup"
	"consultabot/internal/report"
)

func lookupCMD() *cobra.Command {
	var cfgPath, sourceKey, kind, pdfOut string
	var cmd = &cobra.Command{
		Use:   "lookup <query>",
		Short: "Run one lookup from the command line",
		Long: `Runs the fetch/clean/format pipeline once and prints the plain-text
report to stdout. Use --source for a single upstream or --kind with
--merge for a consolidated lookup across every source of that kind.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			svc, err := buildService(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			var tree any
			var title string
			switch {
			case sourceKey != "":
				src, ok := svc.Registry.Get(sourceKey)
				if !ok {
					return fmt.Errorf("unknown source %q", sourceKey)
				}
				title = src.Label
				tree, err = svc.Lookup(cmd.Context(), sourceKey, args[0])
			case kind != "":
				title = "Consolidado " + kind
				tree, err = svc.LookupAll(cmd.Context(), lookup.Kind(kind), args[0])
			default:
				return fmt.Errorf("either --source or --kind is required")
			}
			if err != nil {
				return err
			}
			if tree == nil {
				fmt.Println("Nenhum campo relevante encontrado.")
				return nil
			}

			if pdfOut != "" {
				f, err := os.Create(pdfOut)
				if err != nil {
					return err
				}
				defer f.Close()
				return report.WritePDF(f, title, tree)
			}
			fmt.Println(report.PlainText(tree))
			return nil
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "config directory (default is .)")
	cmd.Flags().StringVar(&sourceKey, "source", "", "source key to query")
	cmd.Flags().StringVar(&kind, "kind", "", "query kind for a consolidated lookup (cpf, nome, placa, ...)")
	cmd.Flags().StringVar(&pdfOut, "pdf", "", "write the result as a PDF report to this path")
	return cmd
}
