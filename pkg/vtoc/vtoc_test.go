package vtoc

import (
	"context"
	"testing"

	"zdsctl/pkg/types"
	"zdsctl/pkg/zoscmd"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleReport = `1          SYSTEMS SUPPORT UTILITIES---IEHLIST
0          CONTENTS OF VTOC ON VOL 222222
0  DATA SETS ARE LISTED IN ALPHANUMERIC ORDER
0   ---------------DATA SET NAME----------------
USER.PLAIN.SEQ                               PS    FB      80  6160
USER.SRC.PDS                                 PO    FB      80 27920
USER.VSAM.KSDS.DATA                          VS    U        0 18432
USER.VSAM.KSDS.INDEX                         VS    U        0  2048
0  THERE ARE 123 EMPTY CYLINDERS PLUS 45 EMPTY TRACKS ON THIS VOLUME
`

func TestParseListvtoc(t *testing.T) {
	entries := parseListvtoc(sampleReport)

	require.Len(t, entries, 4)
	assert.Equal(t, types.DsName("USER.PLAIN.SEQ"), entries[0].Name)
	assert.Equal(t, "PS", entries[0].DSOrg)
	assert.Equal(t, "VS", entries[2].DSOrg)
}

func TestFindAndContains(t *testing.T) {
	entries := parseListvtoc(sampleReport)

	// 大小写不敏感查找
	e := Find(entries, "user.src.pds")
	require.NotNil(t, e)
	assert.Equal(t, "PO", e.DSOrg)

	assert.Nil(t, Find(entries, "USER.NOPE"))

	// VSAM 簇名本身不在 VTOC，必须能通过 .DATA 组件命中
	assert.True(t, Contains(entries, "USER.VSAM.KSDS"))
	assert.True(t, Contains(entries, "USER.PLAIN.SEQ"))
	assert.False(t, Contains(entries, "USER.NOPE"))
}

type fakeExecutor struct {
	resp    zoscmd.Response
	lastCmd string
}

func (f *fakeExecutor) Run(ctx context.Context, cmdLine, stdin string) (zoscmd.Response, error) {
	f.lastCmd = cmdLine
	return f.resp, nil
}

func TestIehlistInspector(t *testing.T) {
	fake := &fakeExecutor{resp: zoscmd.Response{RC: 0, Stdout: sampleReport}}
	insp := NewIehlistInspector(fake)

	entries, err := insp.Entries(context.Background(), "scr03")
	require.NoError(t, err)
	assert.Len(t, entries, 4)
	// 卷名要大写进命令行
	assert.Contains(t, fake.lastCmd, "SCR03")
}

func TestIehlistInspector_NonZeroRC(t *testing.T) {
	fake := &fakeExecutor{resp: zoscmd.Response{RC: 8, Stdout: "IEH105I ..."}}
	insp := NewIehlistInspector(fake)

	_, err := insp.Entries(context.Background(), "222222")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "rc=8")
}
