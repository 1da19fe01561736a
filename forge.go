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
	"crypto/rand"
	"fmt"
	"math"
	"math/big"
	"sync"

	"github.com/zintix-labs/magiclab/dto"
	"github.com/zintix-labs/magiclab/errs"
	"github.com/zintix-labs/magiclab/sdk/buf"
	"github.com/zintix-labs/magiclab/sdk/core"
	"github.com/zintix-labs/magiclab/sdk/gen"
	"github.com/zintix-labs/magiclab/sdk/square"
	"github.com/zintix-labs/magiclab/sdk/verify"
	"github.com/zintix-labs/magiclab/spec"
)

// Forge 封裝一座「可對外提供 Generate 的魔方陣工坊」。
//
// 對外：提供 Generate 入口（HTTP/批次驗證器通常只操作 Forge）。
// 對內：持有 RNG（Core）、生成器註冊表與自檢用的校驗器。
//
// 並發語意：
//   - Forge 不是 lock-free 結構；它內含可重用的 Scratch 與校驗器 presence 表
//     （熱路徑），同一座 Forge 不應被多 goroutine 同時 Generate。
//   - 要併發就由更高層建多座 Forge 分散到 worker（見 ForgePool）。
//
// 結果所有權：
//   - 每次生成的 Square.Cells 都是新配置並整塊移交，呼叫端可長期持有；
//     Forge 只重用內部暫存（Scratch、presence 表），不重用交付物。
type Forge struct {
	presetName string           // 預設集名稱（主要用於觀測/日誌）
	presetId   spec.PID         // 預設集編號（Catalog 內唯一；用於路由與查表）
	core       *core.Core       // RNG 核心（PRNG + Snapshot/Restore 合約）
	reg        *gen.Registry    // 生成路徑註冊表
	gens       map[gen.Class]gen.Generator
	verifier   *verify.Verifier // 自檢校驗器（presence 表跨呼叫重用）
	scratch    *buf.Scratch     // 生成暫存（底方陣/字母樣板/truth grid）
	maxOrder   int              // 階數上限（部署方策略，超過直接拒絕）
	selfCheck  bool             // 生成後是否自檢
	retryLimit int              // 自檢失敗時的生成次數上限（只有非決定性路徑適用）
	mu         sync.Mutex       // 防併發鎖：保護可重用暫存與核心狀態一致性
	initseed   int64            // 出生 seed（便於追溯；完整重現請用 Snapshot/Restore）
}

// newForge 以「隨機 seed」建立 Forge。
//
// 這裡使用 crypto/rand 產生 seed 是為了：
//   - 在對外服務情境避免可預測 RNG 起點
//   - 同時保留可追溯性（seed 會被記錄在 Forge.initseed）
//
// seed 只決定 Forge 的出生點；要把 Forge「重設」到任意節點請用 Snapshot/Restore。
func newForge(ps *spec.PresetSetting, reg *gen.Registry, cf core.PRNGFactory) (*Forge, error) {
	seed, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
	if err != nil {
		return nil, errs.Wrap(err, "new crypto seed error in go std lib")
	}
	return newForgeWithSeed(ps, reg, cf, seed.Int64())
}

// newForgeWithSeed 以指定 seed 建立 Forge。
//
// 這是最常用的「可重現」入口：同一份 PresetSetting + 同一個 seed，
// 應能得到一致的隨機序列（取決於 Core 實作）。
func newForgeWithSeed(ps *spec.PresetSetting, reg *gen.Registry, cf core.PRNGFactory, seed int64) (*Forge, error) {
	if ps == nil {
		return nil, errs.NewFatal("preset setting required")
	}
	if reg == nil {
		return nil, errs.NewFatal("generator registry required")
	}
	if cf == nil {
		return nil, errs.NewFatal("core factory required")
	}

	f := &Forge{
		presetName: ps.PresetName,
		presetId:   ps.PresetId,
		core:       core.New(cf.New(seed)),
		reg:        reg,
		gens:       make(map[gen.Class]gen.Generator, 3),
		verifier:   verify.New(),
		scratch:    &buf.Scratch{},
		maxOrder:   ps.MaxOrder,
		selfCheck:  ps.SelfCheck,
		retryLimit: ps.RetryLimit,
		initseed:   seed,
	}
	return f, nil
}

// Generate 為主要公開入口：校驗請求、處理快照回放/續玩、執行生成並轉 DTO。
func (f *Forge) Generate(r *dto.SquareRequest) (dto.SquareResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	// 1. 校驗請求合法性
	if err := f.valid(r); err != nil {
		return dto.SquareResult{}, err
	}
	// 2. parse dto to inner request
	req, err := r.Parse()
	if err != nil {
		return dto.SquareResult{}, err
	}

	// 3. get start snapshot
	startsnap, err := f.SnapshotCore()
	if err != nil {
		return dto.SquareResult{}, errs.NewFatal("before snapshot error " + err.Error())
	}
	rem := startsnap
	if len(req.CoreSnap) != 0 {
		startsnap = req.CoreSnap
		if err := f.RestoreCore(req.CoreSnap); err != nil {
			return dto.SquareResult{}, errs.NewWarn("restore core err " + err.Error())
		}
	}

	// 4. get inner result
	sr, err := f.generate(req.Order)
	if err != nil {
		// 回放失敗也要把流水復原，否則 Forge 停在外部快照上
		if len(req.CoreSnap) != 0 {
			if e := f.RestoreCore(rem); e != nil {
				return dto.SquareResult{}, errs.NewFatal("fall back err " + e.Error())
			}
		}
		return dto.SquareResult{}, err
	}

	// 5. get after snapshot
	aftersnap, err := f.SnapshotCore()
	if err != nil {
		if e := f.RestoreCore(rem); e != nil {
			return dto.SquareResult{}, errs.NewFatal("fall back err " + e.Error())
		}
		return dto.SquareResult{}, errs.NewWarn("after snapshot error " + err.Error())
	}
	sr.State.StartCoreSnap = startsnap
	sr.State.AfterCoreSnap = aftersnap

	// 6. restore if needed
	if len(req.CoreSnap) != 0 {
		if err := f.RestoreCore(rem); err != nil {
			return dto.SquareResult{}, errs.NewFatal("restore core back err " + err.Error())
		}
	}

	// 7. dto
	return dto.NewSquareResultDTO(sr)
}

// GenerateInternal 直接取得內部 SquareResult；常用於批次驗證器或測試。
//
// 跳過快照包裝（不回傳 State），但階數檢查照常執行。
func (f *Forge) GenerateInternal(n int) (*buf.SquareResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.generate(n)
}

// generate 是生成主流程。呼叫端必須已持有 f.mu。
//
// 階數檢查在任何配置之前完成：非法階數與超限階數都不會碰到 n² 的記憶體。
func (f *Forge) generate(n int) (*buf.SquareResult, error) {
	cls := gen.Classify(n)
	if cls == gen.ClassInvalid {
		if n == 2 {
			return nil, errs.NewInvalidOrder("no magic square of order 2 exists")
		}
		return nil, errs.NewInvalidOrder(fmt.Sprintf("invalid order: %d", n))
	}
	if n > f.maxOrder {
		return nil, errs.NewOrderTooLarge(fmt.Sprintf("order %d exceeds preset limit %d", n, f.maxOrder))
	}

	sr := &buf.SquareResult{
		PresetName: f.presetName,
		PresetId:   f.presetId,
		Class:      gen.ClassName(cls),
		SelfCheck:  f.selfCheck,
	}

	// 一階不經過生成器
	if cls == gen.ClassTrivial {
		sq := square.New(1)
		sq.Cells[0] = 1
		sr.Square = sq
		sr.Attempts = 1
		return sr, nil
	}

	g, ok := f.gens[cls]
	if !ok {
		var err error
		g, err = f.reg.Build(cls, f.core, f.scratch)
		if err != nil {
			return nil, err
		}
		f.gens[cls] = g
	}

	sq := square.New(n)
	attempts := 0
	for {
		attempts++
		g.Generate(n, sq.Cells)

		if !f.selfCheck || f.verifier.Check(n, sq.Cells) {
			break
		}

		// 決定性路徑重來只會重現同一個缺陷，立即回報
		if gen.Deterministic(cls) {
			return nil, errs.NewInternal(fmt.Sprintf("self-check failed on deterministic path %s order %d", sr.Class, n))
		}
		if attempts >= f.retryLimit {
			return nil, errs.NewInternal(fmt.Sprintf("self-check failed after %d attempts on order %d", attempts, n))
		}

		// 重試換一組對稱變體；truth grid 會覆寫每一格，不需歸零
	}

	sr.Square = sq
	sr.Attempts = attempts
	return sr, nil
}

func (f *Forge) valid(req *dto.SquareRequest) error {
	if req == nil {
		return errs.NewWarn("nil square request")
	}
	if req.PresetId != 0 && req.PresetId != f.presetId {
		return errs.NewWarn("preset id is not matched")
	}
	if req.PresetName != "" && req.PresetName != f.presetName {
		return errs.NewWarn("preset name is not matched")
	}
	return nil
}

// PresetName 回傳本座 Forge 綁定的預設集名稱。
func (f *Forge) PresetName() string {
	return f.presetName
}

// PresetId 回傳本座 Forge 綁定的預設集編號。
func (f *Forge) PresetId() spec.PID {
	return f.presetId
}

// MaxOrder 回傳本座 Forge 的階數上限。
func (f *Forge) MaxOrder() int {
	return f.maxOrder
}

// SnapshotCore 取得 Core 狀態暫存 當前僅提供取得 Core 狀態
func (f *Forge) SnapshotCore() ([]byte, error) {
	return f.core.Snapshot()
}

// RestoreCore 恢復 Core 狀態暫存 當前僅提供恢復 Core 狀態
func (f *Forge) RestoreCore(src []byte) error {
	return f.core.Restore(src)
}
