package main

import (
	"github.com/spf13/cobra"
)

func main() {
	var root = &cobra.Command{
		Use:   "consultabot",
		Short: "Telegram lookup bot for Brazilian data sources",
	}

	root.AddCommand(serveCMD(), lookupCMD(), probeCMD())
	_ = root.Execute()
}
