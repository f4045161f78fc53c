package commands

import (
	"fmt"

	"zdsctl/pkg/types"

	"github.com/spf13/cobra"
)

var viewCmd = &cobra.Command{
	Use:   "view NAME",
	Short: "Show the catalog and attribute snapshot of a data set",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if ZDS == nil {
			return fmt.Errorf("app not initialized")
		}

		name := types.DsName(args[0])
		if !name.Valid() {
			return fmt.Errorf("value %q is invalid for data set name", name)
		}

		// 快照绕过缓存层, 直接问设施拿实时数据
		v, err := ZDS.Inspector.GatherView(cmd.Context(), name)
		if err != nil {
			return err
		}

		if !v.Exists {
			fmt.Printf("%s: not cataloged\n", v.Name)
			return nil
		}

		fmt.Printf("name:    %s\n", v.Name)
		fmt.Printf("dsorg:   %s\n", v.DSOrg)
		if v.DSOrg != "VSAM" {
			fmt.Printf("recfm:   %s\n", v.RecFm)
			fmt.Printf("lrecl:   %d\n", v.Lrecl)
			fmt.Printf("blksize: %d\n", v.BlkSize)
		}
		if v.Volser != "" {
			fmt.Printf("volser:  %s\n", v.Volser)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(viewCmd)
}
