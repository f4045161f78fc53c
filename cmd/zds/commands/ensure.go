package commands

import (
	"fmt"

	"zdsctl/pkg/app"

	"github.com/spf13/cobra"
)

var ensureReq struct {
	state        string
	dsType       string
	spacePrimary int
	spaceSecond  int
	spaceType    string
	recordFormat string
	recordLength int
	blockSize    int
	dirBlocks    int
	keyLength    int
	keyOffset    int
	storClass    string
	dataClass    string
	mgmtClass    string
	volumes      []string
	replace      bool
	force        bool
}

var ensureCmd = &cobra.Command{
	Use:   "ensure NAME",
	Short: "Converge a data set toward the requested state",
	Long: `Inspect the catalog and volume residency of NAME and perform only the
changes needed to reach the requested state. NAME may carry a member
suffix ("USER.SRC.PDS(MOD1)") for member-level operations.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if ZDS == nil {
			return fmt.Errorf("app not initialized")
		}

		req := app.Request{
			Name:           args[0],
			State:          ensureReq.state,
			Type:           ensureReq.dsType,
			SpacePrimary:   ensureReq.spacePrimary,
			SpaceSecondary: ensureReq.spaceSecond,
			SpaceType:      ensureReq.spaceType,
			RecordFormat:   ensureReq.recordFormat,
			BlockSize:      ensureReq.blockSize,
			DirBlocks:      ensureReq.dirBlocks,
			KeyOffset:      ensureReq.keyOffset,
			StorageClass:   ensureReq.storClass,
			DataClass:      ensureReq.dataClass,
			MgmtClass:      ensureReq.mgmtClass,
			Volumes:        ensureReq.volumes,
			Replace:        ensureReq.replace,
			Force:          ensureReq.force,
		}
		// Changed() 区分 "没传" 和 "传了 0"
		if cmd.Flags().Changed("record-length") {
			req.RecordLength = &ensureReq.recordLength
		}
		if cmd.Flags().Changed("key-length") {
			req.KeyLength = &ensureReq.keyLength
		}

		res, err := ZDS.Converge(cmd.Context(), req)
		if err != nil {
			return err
		}

		if res.Changed {
			fmt.Printf("changed: %s is now %s\n", res.Name, res.State)
		} else {
			fmt.Printf("ok: %s already %s\n", res.Name, res.State)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(ensureCmd)

	f := ensureCmd.Flags()
	f.StringVar(&ensureReq.state, "state", "present", "target state: present, absent, cataloged, uncataloged")
	f.StringVar(&ensureReq.dsType, "type", "", "data set type: SEQ, PDS, PDSE, KSDS, ESDS, RRDS, LDS, ZFS, ... (default PDS)")
	f.IntVar(&ensureReq.spacePrimary, "space-primary", 0, "primary space amount")
	f.IntVar(&ensureReq.spaceSecond, "space-secondary", 0, "secondary space amount")
	f.StringVar(&ensureReq.spaceType, "space-type", "", "space unit: K, M, G, TRK or CYL")
	f.StringVar(&ensureReq.recordFormat, "record-format", "", "record format: FB, VB, FBA, VBA, U or F")
	f.IntVar(&ensureReq.recordLength, "record-length", 0, "record length in bytes")
	f.IntVar(&ensureReq.blockSize, "block-size", 0, "block size in bytes")
	f.IntVar(&ensureReq.dirBlocks, "directory-blocks", 0, "directory blocks for partitioned data sets")
	f.IntVar(&ensureReq.keyLength, "key-length", 0, "key length, required for KSDS")
	f.IntVar(&ensureReq.keyOffset, "key-offset", 0, "key offset, used with --key-length")
	f.StringVar(&ensureReq.storClass, "sms-storage-class", "", "SMS storage class")
	f.StringVar(&ensureReq.dataClass, "sms-data-class", "", "SMS data class")
	f.StringVar(&ensureReq.mgmtClass, "sms-management-class", "", "SMS management class")
	f.StringSliceVar(&ensureReq.volumes, "volumes", nil, "volume serials the data set resides on")
	f.BoolVar(&ensureReq.replace, "replace", false, "delete and recreate when the data set already exists")
	f.BoolVar(&ensureReq.force, "force", false, "member deletion under shared-access disposition")
}
