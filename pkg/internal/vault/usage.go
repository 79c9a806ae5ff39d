package vault

import (
	"context"

	"github.com/yeisme/taskvault/pkg/internal/types"
)

// Usage 返回所有者的配额用量, 含按分类聚合.
func (v *Vault) Usage(ctx context.Context, ownerID string) (*types.UsageSummary, error) {
	used, count, err := v.store.SumUsage(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	byCategory, err := v.store.AggregateByCategory(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	return &types.UsageSummary{
		OwnerID:    ownerID,
		UsedBytes:  used,
		CapBytes:   v.cfg.QuotaFor(ownerID),
		Objects:    count,
		ByCategory: byCategory,
	}, nil
}

// GlobalUsage 返回全局用量统计, 仅供管理端使用.
func (v *Vault) GlobalUsage(ctx context.Context) (*types.GlobalUsage, error) {
	return v.store.AggregateGlobal(ctx)
}
