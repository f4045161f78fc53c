package commands

import (
	"fmt"
	"os"
	"sort"
	"sync"

	"zdsctl/pkg/app"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

var batchConcurrency int

var batchCmd = &cobra.Command{
	Use:   "batch PLAN",
	Short: "Converge a list of data set requests from a YAML plan file",
	Long: `Read a YAML list of requests and converge each target. Independent
targets run fanned out; each target internally stays strictly sequential.

Plan file format:

  - name: USER.SRC.PDS
    state: present
    type: PDS
    space_primary: 5
    space_type: M
  - name: USER.OLD.SEQ
    state: absent
    volumes: [VOL002]`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if ZDS == nil {
			return fmt.Errorf("app not initialized")
		}

		raw, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read plan file: %w", err)
		}
		var plan []app.Request
		if err := yaml.Unmarshal(raw, &plan); err != nil {
			return fmt.Errorf("failed to parse plan file: %w", err)
		}
		if len(plan) == 0 {
			fmt.Println("nothing to do, plan is empty")
			return nil
		}

		// 同一个数据集出现两次必须拒绝: 两条请求并发收敛同一个目标
		// 会互相踩对方的检查结果
		seen := map[string]bool{}
		for _, req := range plan {
			key := req.Name
			if seen[key] {
				return fmt.Errorf("duplicate target %q in plan, each data set may appear once", key)
			}
			seen[key] = true
		}

		type outcome struct {
			idx int
			res app.Result
			err error
		}

		var mu sync.Mutex
		var outcomes []outcome

		g, ctx := errgroup.WithContext(cmd.Context())
		g.SetLimit(batchConcurrency)
		for i, req := range plan {
			g.Go(func() error {
				res, err := ZDS.Converge(ctx, req)
				mu.Lock()
				outcomes = append(outcomes, outcome{idx: i, res: res, err: err})
				mu.Unlock()
				return err
			})
		}
		runErr := g.Wait()

		// 按计划顺序汇报
		sort.Slice(outcomes, func(a, b int) bool { return outcomes[a].idx < outcomes[b].idx })
		changed := 0
		for _, o := range outcomes {
			switch {
			case o.err != nil:
				fmt.Printf("failed: %s (%s): %v\n", o.res.Name, o.res.State, o.err)
			case o.res.Changed:
				changed++
				fmt.Printf("changed: %s is now %s\n", o.res.Name, o.res.State)
			default:
				fmt.Printf("ok: %s already %s\n", o.res.Name, o.res.State)
			}
		}
		fmt.Printf("%d targets, %d changed\n", len(plan), changed)
		return runErr
	},
}

func init() {
	rootCmd.AddCommand(batchCmd)
	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 4, "maximum targets converging at once")
}
