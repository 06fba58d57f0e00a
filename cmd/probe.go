package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"consultabot/config"
)

func probeCMD() *cobra.Command {
	var cfgPath string
	var cmd = &cobra.Command{
		Use:   "probe",
		Short: "Probe every source once and print its health",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			registry, err := buildRegistry(cfg)
			if err != nil {
				return err
			}
			prober := buildProber(cfg, registry, nil)
			prober.ProbeOnce()

			snapshot := prober.Snapshot()
			for _, src := range registry.All() {
				st, ok := snapshot[src.Key]
				if !ok {
					fmt.Printf("⚪ %-22s no measurement\n", src.Key)
					continue
				}
				fmt.Printf("%s %-22s %-5s %6.2fs\n", st.Level.Icon(), src.Key, st.Level, st.Latency.Seconds())
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "config directory (default is .)")
	return cmd
}
