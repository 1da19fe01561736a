// Copyright 2026 Zintix Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package magiclab

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/zintix-labs/magiclab/dto"
	"github.com/zintix-labs/magiclab/errs"
	"github.com/zintix-labs/magiclab/sdk/buf"
	"github.com/zintix-labs/magiclab/sdk/square"
	"github.com/zintix-labs/magiclab/sdk/verify"
	"github.com/zintix-labs/magiclab/spec"
	"github.com/zintix-labs/magiclab/stats"
)

// 批次驗證走 HTTP 時的上限，避免一個請求佔住 worker 太久
const (
	maxBatchSamples = 10000
	maxBatchRounds  = 200000
)

type SquareRuntime struct {
	// build-time 來源（只讀引用）
	lab *Magiclab // 方便取 catalog/registry/corefactory 與共用一些 helper

	// data-plane：關鍵主池（每個預設集一個 pool）
	pools map[spec.PID]*ForgePool
	ids   []spec.PID // 固定順序，用於觀測/列舉（來自 cat.IDs()）

	// 無狀態校驗器重用（presence 表跨請求攤提）
	checkers sync.Pool

	// lifecycle
	done      chan struct{}
	closeOnce sync.Once
	closed    atomic.Bool
	reason    atomic.Value // string

	// runtime 行為設定（一期先簡單，之後可擴展）
	poolSize int // 每個預設集的池大小（BuildRuntime(n) 的 n）
}

func (rt *SquareRuntime) Generate(ctx context.Context, req *dto.SquareRequest) (dto.SquareResult, error) {
	select {
	case <-ctx.Done():
		// 如果通知取消
		return dto.SquareResult{}, errs.NewWarn("generate canceled/timeout: " + ctx.Err().Error())
	case <-rt.done:
		// done is the source of truth; keep a fast boolean for cheap reads/telemetry.
		rt.closed.Store(true)
		return dto.SquareResult{}, errs.NewFatal("square runtime closed: " + rt.ClosedReason())
	default:
	}

	id, err := rt.resolvePID(req.PresetId, req.PresetName)
	if err != nil {
		return dto.SquareResult{}, err
	}

	fp, ok := rt.pools[id]
	if !ok {
		return dto.SquareResult{}, errs.NewWarn("preset id not found")
	}

	// pool 自己會處理 done / close / rebuild / metrics
	return fp.Generate(ctx, req)
}

// Verify 對呼叫端提供的盤面做無狀態校驗；任何已知的預設集都不需要。
func (rt *SquareRuntime) Verify(req *buf.VerifyRequest) (dto.VerifyResult, error) {
	if rt.Closed() {
		return dto.VerifyResult{}, errs.NewFatal("square runtime closed: " + rt.ClosedReason())
	}
	if req == nil {
		return dto.VerifyResult{}, errs.NewWarn("nil verify request")
	}
	n := req.Order
	if n < 1 {
		return dto.VerifyResult{}, errs.NewInvalidOrder("order must >= 1")
	}

	// 長度不符交給校驗器：謂詞語意下是正常的 false，不是請求錯誤
	v, _ := rt.checkers.Get().(*verify.Verifier)
	if v == nil {
		v = verify.New()
	}
	ok := v.Check(n, req.Cells)
	rt.checkers.Put(v)

	return dto.VerifyResult{
		Order: n,
		Valid: ok,
		Magic: square.MagicConstant(n),
	}, nil
}

// Batch 對單一預設集跑一輪小型批次驗證並回傳統計報表。
//
// 這是給 HTTP 端用的入口：單線、無進度條，並以 maxBatchSamples /
// maxBatchRounds 限制總量；大規模驗證請改用 Magiclab.NewVerifier 走 CLI。
func (rt *SquareRuntime) Batch(ctx context.Context, req *buf.BatchRequest) (*stats.VerifyReport, error) {
	select {
	case <-ctx.Done():
		return nil, errs.NewWarn("batch canceled/timeout: " + ctx.Err().Error())
	case <-rt.done:
		rt.closed.Store(true)
		return nil, errs.NewFatal("square runtime closed: " + rt.ClosedReason())
	default:
	}
	if req == nil {
		return nil, errs.NewWarn("nil batch request")
	}

	id, err := rt.resolvePID(req.PresetId, req.PresetName)
	if err != nil {
		return nil, err
	}
	if req.Samples > maxBatchSamples {
		return nil, errs.Warnf("samples must <= %d", maxBatchSamples)
	}
	span := req.MaxOrder - req.MinOrder + 1
	if span > 0 && req.Samples*span > maxBatchRounds {
		return nil, errs.Warnf("total rounds must <= %d", maxBatchRounds)
	}

	v, err := rt.lab.NewVerifier(id)
	if err != nil {
		return nil, err
	}
	report, _, err := v.Verify(req.MinOrder, req.MaxOrder, req.Samples, false)
	if err != nil {
		return nil, err
	}
	return report, nil
}

// resolvePID 以 pid 優先、名稱兜底的方式找出目標預設集。
// 兩者都給時交給 Forge.valid 做一致性檢查。
func (rt *SquareRuntime) resolvePID(id spec.PID, name string) (spec.PID, error) {
	if id != 0 {
		return id, nil
	}
	if name == "" {
		return 0, errs.NewWarn("preset id or name required")
	}
	ent, ok := rt.lab.EntryByName(name)
	if !ok {
		return 0, errs.NewWarn("preset name not found")
	}
	return ent.PID, nil
}

// IDs 回傳固定順序的預設集編號，用於觀測/列舉。
func (rt *SquareRuntime) IDs() []spec.PID {
	return rt.ids
}

// Lab 回傳建構本 runtime 的 Magiclab（只讀用途，例如查 Summary）。
func (rt *SquareRuntime) Lab() *Magiclab {
	return rt.lab
}

// PoolMetrics 回傳指定預設集的池觀測快照。
func (rt *SquareRuntime) PoolMetrics(id spec.PID) (ForgePoolMetrics, bool) {
	fp, ok := rt.pools[id]
	if !ok {
		return ForgePoolMetrics{}, false
	}
	return fp.Metrics(), true
}

// Metrics 依固定順序回傳所有池的觀測快照。
func (rt *SquareRuntime) Metrics() []ForgePoolMetrics {
	out := make([]ForgePoolMetrics, 0, len(rt.ids))
	for _, id := range rt.ids {
		if fp, ok := rt.pools[id]; ok {
			out = append(out, fp.Metrics())
		}
	}
	return out
}

// Close transitions the runtime into a closed state. It is safe to call multiple times.
func (rt *SquareRuntime) Close() {
	rt.closeWithReason("closed")
}

// closeWithReason closes the runtime and records the reason (written once).
func (rt *SquareRuntime) closeWithReason(reason string) {
	rt.closeOnce.Do(func() {
		if reason == "" {
			reason = "closed"
		}
		rt.reason.Store(reason)
		rt.closed.Store(true)
		close(rt.done)
		// 先關 runtime 再關各池，讓借出中的請求走池自己的關閉路徑
		for _, fp := range rt.pools {
			fp.Close()
		}
	})
}

// Closed reports whether the runtime has been closed.
func (rt *SquareRuntime) Closed() bool {
	return rt.closed.Load()
}

func (rt *SquareRuntime) ClosedReason() string {
	if v := rt.reason.Load(); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}
