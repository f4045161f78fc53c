package dataset

import (
	"strings"
	"testing"

	"zdsctl/pkg/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatControlLine_Column72(t *testing.T) {
	line := formatControlLine("    CATLG DSNAME=USER.TEST,", 'X', true)

	require.True(t, strings.HasSuffix(line, "X\n"))
	// 去掉换行后整行正好 72 列，第 72 列是续行标记
	body := strings.TrimSuffix(line, "\n")
	assert.Len(t, body, 72)
	assert.Equal(t, byte('X'), body[71])
}

func TestBuildNonVsamCatalogCommand_SingleVolume(t *testing.T) {
	cmd := buildNonVsamCatalogCommand("user.test", []types.Volume{"222222"})

	lines := strings.Split(strings.TrimSuffix(cmd, "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Len(t, lines[0], 72, "首行必须续行到 72 列")
	assert.Contains(t, lines[0], "CATLG DSNAME=USER.TEST,")
	assert.Equal(t, "               VOL=3390=(222222)", lines[1])
}

func TestBuildNonVsamCatalogCommand_MultiVolume(t *testing.T) {
	cmd := buildNonVsamCatalogCommand("USER.TEST", []types.Volume{"VOL001", "VOL002", "VOL003"})

	lines := strings.Split(strings.TrimSuffix(cmd, "\n"), "\n")
	require.Len(t, lines, 4)
	// 中间行全部续行到 72 列
	for _, l := range lines[:3] {
		assert.Len(t, l, 72)
		assert.Equal(t, byte('X'), l[71])
	}
	assert.Contains(t, lines[1], "VOL=3390=(VOL001,")
	assert.Contains(t, lines[2], "VOL002,")
	// 末行收括号，不带续行标记
	assert.Equal(t, "               VOL003)", lines[3])
}

func TestBuildVsamCatalogCommand(t *testing.T) {
	indexed := buildVsamCatalogCommand("user.vsam", []types.Volume{"222222"}, "INDEXED")
	assert.Contains(t, indexed, "DEFINE CLUSTER")
	assert.Contains(t, indexed, "NAME('USER.VSAM')")
	assert.Contains(t, indexed, "RECATALOG INDEXED")
	assert.Contains(t, indexed, "DATA(NAME('USER.VSAM.DATA'))")
	assert.Contains(t, indexed, "INDEX(NAME('USER.VSAM.INDEX'))")

	nonindexed := buildVsamCatalogCommand("USER.VSAM", []types.Volume{"222222"}, "NONINDEXED")
	assert.Contains(t, nonindexed, "RECATALOG NONINDEXED")
	assert.NotContains(t, nonindexed, "INDEX(NAME")

	// LINEAR 套非索引模板，只换 RECATALOG 后面的字
	linear := buildVsamCatalogCommand("USER.VSAM", []types.Volume{"222222"}, "LINEAR")
	assert.Contains(t, linear, "RECATALOG LINEAR")
	assert.NotContains(t, linear, "INDEX(NAME")
}

func TestBuildVsamCatalogCommand_MultiVolumeClause(t *testing.T) {
	cmd := buildVsamCatalogCommand("USER.VSAM", []types.Volume{"VOL001", "VOL002"}, "NONINDEXED")
	assert.Contains(t, cmd, "VOLUMES(VOL001 -\n    VOL002)")
}

func TestBuildCreateCommand(t *testing.T) {
	a := Attributes{
		Name: "user.new.pds", Type: types.TypePDS,
		SpacePrimary: 5, SpaceSecondary: 3, SpaceType: "M",
		RecordFormat: "FB", RecordLength: 80, BlockSize: 27920,
		DirBlocks:    5,
		StorageClass: "FAST", Volumes: []types.Volume{"VOL001", "VOL002"},
	}
	cmd := buildCreateCommand(a)

	assert.True(t, strings.HasPrefix(cmd, "dtouch "))
	assert.Contains(t, cmd, "-tPDS")
	assert.Contains(t, cmd, "-rFB")
	assert.Contains(t, cmd, "-l80")
	assert.Contains(t, cmd, "-b27920")
	assert.Contains(t, cmd, "-s5M")
	assert.Contains(t, cmd, "-e3M")
	assert.Contains(t, cmd, "-d5")
	assert.Contains(t, cmd, "-cFAST")
	assert.Contains(t, cmd, "-VVOL001,VOL002")
	assert.Contains(t, cmd, `"USER.NEW.PDS"`)
}

func TestBuildCreateCommand_ZfsAllocatesAsLDS(t *testing.T) {
	a := Attributes{Name: "USER.ZFS", Type: types.TypeZFS, RecordLength: RecordLengthUnset}
	cmd := buildCreateCommand(a)
	assert.Contains(t, cmd, "-tLDS")
	assert.NotContains(t, cmd, "-tZFS")
}

func TestBuildCreateCommand_KSDSKey(t *testing.T) {
	a := Attributes{Name: "USER.KSDS", Type: types.TypeKSDS, RecordLength: RecordLengthUnset}.WithKey(4, 0)
	cmd := buildCreateCommand(a)
	assert.Contains(t, cmd, "-k4:0")
}
