// pkg/zoscmd/executor.go
package zoscmd

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"strings"
	"time"
)

// Response 是一次主机命令调用的完整结果
type Response struct {
	RC     int
	Stdout string
	Stderr string
}

// Executor 是整个模块与主机交互的唯一通道。
// 所有目录查询、分配、删除最终都落到这一个接口上，
// 测试时替换成脚本化的假实现即可覆盖全部恢复分支。
type Executor interface {
	// Run 同步执行一条命令行，stdin 可为空串。
	// 非零 RC 不算 error：解释 RC 是调用方的事 (比如 "NOT FOUND" 只是否定结果)。
	// error 只表示命令根本没跑起来。
	Run(ctx context.Context, cmdLine string, stdin string) (Response, error)
}

// HostExecutor 直接在本机 shell 里跑命令 (z/OS USS 环境)
// Timeout 为 0 表示不设超时：挂死的主机命令会一直阻塞，这是接受的外部依赖。
type HostExecutor struct {
	Timeout time.Duration
}

func NewHostExecutor(timeout time.Duration) *HostExecutor {
	return &HostExecutor{Timeout: timeout}
}

func (h *HostExecutor) Run(ctx context.Context, cmdLine string, stdin string) (Response, error) {
	if h.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, "/bin/sh", "-c", cmdLine)
	if stdin != "" {
		cmd.Stdin = strings.NewReader(stdin)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	resp := Response{Stdout: stdout.String(), Stderr: stderr.String()}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			// 命令跑了但退出码非零：交给调用方解释
			resp.RC = exitErr.ExitCode()
			return resp, nil
		}
		return resp, err
	}
	return resp, nil
}
