// Package jobs 注册保管库的定时任务.
package jobs

import (
	"context"
	"fmt"

	"github.com/yeisme/taskvault/pkg/configs"
	"github.com/yeisme/taskvault/pkg/internal/vault"
	"github.com/yeisme/taskvault/pkg/log"
	"github.com/yeisme/taskvault/pkg/scheduler"
)

// RegisterCronJobs 配置业务定时任务:
//   - 按 vault.sweep_cron（默认每天 03:00）执行过期对象清扫
func RegisterCronJobs(sched *scheduler.Scheduler, v *vault.Vault, cfg *configs.VaultConfig) error {
	if sched == nil {
		return fmt.Errorf("scheduler is nil")
	}
	if v == nil {
		return fmt.Errorf("vault is nil")
	}

	return sched.AddCron(context.Background(), JobExpirySweep, cfg.SweepCron, func(ctx context.Context) {
		runExpirySweep(ctx, v)
	})
}

// runExpirySweep 执行一轮过期清扫并记录结果.
func runExpirySweep(ctx context.Context, v *vault.Vault) {
	l := log.Component("jobs").With().Str("job", JobExpirySweep).Logger()

	report, err := v.SweepExpired(ctx)
	if err != nil {
		l.Error().Err(err).Msg("expiry sweep failed")
		return
	}

	if report.Scanned > 0 {
		l.Info().
			Int("scanned", report.Scanned).
			Int("removed", report.Removed).
			Int("failed", report.Failed).
			Int64("bytes_freed", report.BytesFreed).
			Msg("expiry sweep finished")
	}
}
