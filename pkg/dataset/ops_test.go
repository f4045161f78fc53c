package dataset

import (
	"context"
	"strings"
	"testing"

	"zdsctl/pkg/types"
	"zdsctl/pkg/vtoc"
	"zdsctl/pkg/zoscmd"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeExecutor 按命令行片段回放响应并记录全部调用，
// 协调分支全靠数一数哪些命令以什么顺序跑过
type fakeExecutor struct {
	rules []fakeRule
	calls []call
}

type fakeRule struct {
	cmdPart string
	resp    zoscmd.Response
}

type call struct {
	cmd   string
	stdin string
}

func (f *fakeExecutor) on(cmdPart string, resp zoscmd.Response) {
	f.rules = append(f.rules, fakeRule{cmdPart: cmdPart, resp: resp})
}

func (f *fakeExecutor) Run(ctx context.Context, cmdLine, stdin string) (zoscmd.Response, error) {
	f.calls = append(f.calls, call{cmd: cmdLine, stdin: stdin})
	for _, r := range f.rules {
		if strings.Contains(cmdLine, r.cmdPart) {
			return r.resp, nil
		}
	}
	return zoscmd.Response{}, nil
}

func (f *fakeExecutor) countCalls(cmdPart, stdinPart string) int {
	n := 0
	for _, c := range f.calls {
		if strings.Contains(c.cmd, cmdPart) && strings.Contains(c.stdin, stdinPart) {
			n++
		}
	}
	return n
}

type fakeVtoc struct {
	entries []vtoc.Entry
}

func (f *fakeVtoc) Entries(ctx context.Context, volume types.Volume) ([]vtoc.Entry, error) {
	return f.entries, nil
}

type fakeFacts struct {
	cataloged bool
	vsam      bool
}

func (f *fakeFacts) IsCataloged(ctx context.Context, name types.DsName, volumes []types.Volume) (bool, error) {
	return f.cataloged, nil
}

func (f *fakeFacts) IsVSAM(ctx context.Context, name types.DsName, volumes []types.Volume) (bool, error) {
	return f.vsam, nil
}

func newTestOperator(fake *fakeExecutor, vt *fakeVtoc, facts *fakeFacts) *Operator {
	if vt == nil {
		vt = &fakeVtoc{}
	}
	if facts == nil {
		facts = &fakeFacts{}
	}
	return NewOperator(fake, vt, facts, "TMPHLQ")
}

func TestCreate_ErrorEmbedsFacilityOutput(t *testing.T) {
	fake := &fakeExecutor{}
	fake.on("dtouch", zoscmd.Response{RC: 8, Stdout: "BGYSC1103E ", Stderr: "Error Code: 0x4704"})
	op := newTestOperator(fake, nil, nil)

	err := op.Create(context.Background(), Attributes{
		Name: "USER.EXISTS", Type: types.TypeSEQ, RecordLength: RecordLengthUnset,
	})

	var ce *CreateError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, 8, ce.RC)
	assert.True(t, ce.ExistsOnVolume(), "0x4704 是 '卷上已存在' 的签名")
}

func TestDelete(t *testing.T) {
	fake := &fakeExecutor{}
	op := newTestOperator(fake, nil, nil)

	require.NoError(t, op.Delete(context.Background(), "user.gone"))
	assert.Equal(t, 1, len(fake.calls))
	assert.Contains(t, fake.calls[0].cmd, `drm "USER.GONE"`)

	fake2 := &fakeExecutor{}
	fake2.on("drm", zoscmd.Response{RC: 8})
	op2 := newTestOperator(fake2, nil, nil)
	var de *DeleteError
	assert.ErrorAs(t, op2.Delete(context.Background(), "USER.GONE"), &de)
}

func TestCatalogNonVsam_RequiresNormalEndMarker(t *testing.T) {
	fake := &fakeExecutor{}
	// rc=0 但没有成功标记：必须算编目失败
	fake.on("iehprogm", zoscmd.Response{RC: 0, Stdout: "SOMETHING ELSE"})
	op := newTestOperator(fake, nil, &fakeFacts{vsam: false})

	err := op.Catalog(context.Background(), "USER.TEST", []types.Volume{"222222"})
	var ce *CatalogError
	require.ErrorAs(t, err, &ce)

	fake2 := &fakeExecutor{}
	fake2.on("iehprogm", zoscmd.Response{RC: 0, Stdout: "NORMAL END OF TASK RETURNED"})
	op2 := newTestOperator(fake2, nil, &fakeFacts{vsam: false})
	require.NoError(t, op2.Catalog(context.Background(), "USER.TEST", []types.Volume{"222222"}))
}

func TestCatalogVsam_IndexedDecisionFromVtoc(t *testing.T) {
	fake := &fakeExecutor{}
	fake.on("idcams", zoscmd.Response{RC: 0})
	vt := &fakeVtoc{entries: []vtoc.Entry{
		{Name: "USER.VS.DATA", DSOrg: "VS"},
		{Name: "USER.VS.INDEX", DSOrg: "VS"},
	}}
	op := newTestOperator(fake, vt, &fakeFacts{vsam: true})

	require.NoError(t, op.Catalog(context.Background(), "USER.VS", []types.Volume{"222222"}))
	// DATA+INDEX 都在卷上：首选 INDEXED，一次成功
	assert.Equal(t, 1, fake.countCalls("idcams", "RECATALOG INDEXED"))
	assert.Equal(t, 0, fake.countCalls("idcams", "RECATALOG NONINDEXED"))
}

func TestCatalogVsam_WorstCaseExactlyThreeAttempts(t *testing.T) {
	fake := &fakeExecutor{}
	fake.on("idcams", zoscmd.Response{RC: 12, Stdout: "IDC3012I"})
	vt := &fakeVtoc{entries: []vtoc.Entry{
		{Name: "USER.VS.DATA", DSOrg: "VS"},
		{Name: "USER.VS.INDEX", DSOrg: "VS"},
	}}
	op := newTestOperator(fake, vt, &fakeFacts{vsam: true})

	err := op.Catalog(context.Background(), "USER.VS", []types.Volume{"222222"})
	var ce *CatalogError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, 12, ce.RC)

	// 三种簇类各试一次，一次不多一次不少
	assert.Equal(t, 1, fake.countCalls("idcams", "RECATALOG INDEXED"))
	assert.Equal(t, 1, fake.countCalls("idcams", "RECATALOG NONINDEXED"))
	assert.Equal(t, 1, fake.countCalls("idcams", "RECATALOG LINEAR"))
	assert.Equal(t, 3, fake.countCalls("idcams", "DEFINE CLUSTER"))
}

func TestCatalogVsam_LinearFallbackAfterPreferredFails(t *testing.T) {
	// 前两种簇类失败，LINEAR 放行
	linearSeen := false
	runner := runFunc(func(cmdLine, stdin string) zoscmd.Response {
		if strings.Contains(stdin, "RECATALOG LINEAR") {
			linearSeen = true
			return zoscmd.Response{RC: 0}
		}
		return zoscmd.Response{RC: 12}
	})
	op := NewOperator(runner, &fakeVtoc{}, &fakeFacts{vsam: true}, "")

	require.NoError(t, op.Catalog(context.Background(), "USER.LDS", []types.Volume{"222222"}))
	assert.True(t, linearSeen)
}

// runFunc 把闭包适配成 Executor
type runFunc func(cmdLine, stdin string) zoscmd.Response

func (f runFunc) Run(ctx context.Context, cmdLine, stdin string) (zoscmd.Response, error) {
	return f(cmdLine, stdin), nil
}

func TestUncatalogVsam(t *testing.T) {
	fake := &fakeExecutor{}
	fake.on("idcams", zoscmd.Response{RC: 0})
	op := newTestOperator(fake, nil, &fakeFacts{vsam: true})

	require.NoError(t, op.Uncatalog(context.Background(), "user.vs"))
	require.Len(t, fake.calls, 1)
	assert.Equal(t, " DELETE 'USER.VS' NOSCRATCH", fake.calls[0].stdin)
}

func TestUncatalogNonVsam_TempAlwaysCleanedUp(t *testing.T) {
	fake := &fakeExecutor{}
	// IEHPROGM 失败，但临时数据集仍然要删
	fake.on("iehprogm", zoscmd.Response{RC: 8, Stdout: "ABEND"})
	op := newTestOperator(fake, nil, &fakeFacts{vsam: false})

	err := op.Uncatalog(context.Background(), "USER.SEQ")
	var ue *UncatalogError
	require.ErrorAs(t, err, &ue)

	// 调用序列：dtouch (建临时) → cp (写控制语句) → iehprogm → drm (清理)
	assert.Equal(t, 1, fake.countCalls("dtouch", ""))
	assert.Equal(t, 1, fake.countCalls("cp -O u", ""))
	assert.Equal(t, 1, fake.countCalls("drm", ""))

	// 控制语句来自临时数据集，不走 stdin
	for _, c := range fake.calls {
		if strings.Contains(c.cmd, "iehprogm") {
			assert.Contains(t, c.cmd, "--sysin=USER.ZTMP.T")
			assert.Empty(t, c.stdin)
		}
	}
}

func TestMemberExists(t *testing.T) {
	fake := &fakeExecutor{}
	fake.on("head", zoscmd.Response{RC: 0})
	op := newTestOperator(fake, nil, nil)

	ok, err := op.MemberExists(context.Background(), "USER.PDS(MEM1)")
	require.NoError(t, err)
	assert.True(t, ok)

	// EDC5067I 即使 rc=0 也算不存在
	fake2 := &fakeExecutor{}
	fake2.on("head", zoscmd.Response{RC: 0, Stderr: "EDC5067I not found"})
	op2 := newTestOperator(fake2, nil, nil)
	ok, err = op2.MemberExists(context.Background(), "USER.PDS(MEM1)")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCreateMember_ParentMustBeCataloged(t *testing.T) {
	fake := &fakeExecutor{}
	op := newTestOperator(fake, nil, &fakeFacts{cataloged: false})

	err := op.CreateMember(context.Background(), "USER.PDS(MEM1)")
	var nf *NotFoundError
	assert.ErrorAs(t, err, &nf)
	assert.Empty(t, fake.calls, "父数据集不在目录里就不该跑任何命令")
}

func TestDeleteMember_ForceFlag(t *testing.T) {
	fake := &fakeExecutor{}
	op := newTestOperator(fake, nil, nil)

	require.NoError(t, op.DeleteMember(context.Background(), "USER.PDS(MEM1)", false))
	assert.Contains(t, fake.calls[0].cmd, `mrm "USER.PDS(MEM1)"`)

	require.NoError(t, op.DeleteMember(context.Background(), "USER.PDS(MEM1)", true))
	assert.Contains(t, fake.calls[1].cmd, `mrm -f "USER.PDS(MEM1)"`)
}

func TestFormat(t *testing.T) {
	fake := &fakeExecutor{}
	op := newTestOperator(fake, nil, nil)

	require.NoError(t, op.Format(context.Background(), "user.zfs"))
	assert.Contains(t, fake.calls[0].cmd, "zfsadm format -aggregate USER.ZFS")

	fake2 := &fakeExecutor{}
	fake2.on("zfsadm", zoscmd.Response{RC: 4, Stdout: "IOEZ00077E"})
	op2 := newTestOperator(fake2, nil, nil)
	var fe *FormatError
	assert.ErrorAs(t, op2.Format(context.Background(), "USER.ZFS"), &fe)
}

func TestTempName(t *testing.T) {
	op := newTestOperator(&fakeExecutor{}, nil, nil)

	name := op.TempName("")
	assert.True(t, strings.HasPrefix(name.String(), "TMPHLQ.ZTMP.T"))
	assert.True(t, name.Valid(), "临时名必须是合法数据集名: %s", name)

	// 显式 HLQ 优先于配置
	name = op.TempName("myhlq")
	assert.True(t, strings.HasPrefix(name.String(), "MYHLQ.ZTMP.T"))
}

func TestCacheInvalidation(t *testing.T) {
	fake := &fakeExecutor{}
	inv := &recordingInvalidator{}
	op := newTestOperator(fake, nil, nil).WithCache(inv)

	require.NoError(t, op.Delete(context.Background(), "USER.A(MEM)"))
	// 失效键用本名，不带成员后缀
	assert.Equal(t, []types.DsName{"USER.A"}, inv.names)
}

type recordingInvalidator struct {
	names []types.DsName
}

func (r *recordingInvalidator) Invalidate(ctx context.Context, name types.DsName) error {
	r.names = append(r.names, name)
	return nil
}
