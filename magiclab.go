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

// Package magiclab 提供魔方陣引擎的「組裝入口（assembler）」與「運行入口（runtime entry）」。
//
// Magiclab 負責把三個必需的地基組裝在一起，並提供建立 Forge 的入口：
//  1. Catalog：預設集目錄（Single Source of Truth / SSOT），定義有哪些預設集、各自對應的設定檔名稱（ConfigName）。
//  2. gen.Registry：生成路徑註冊表，提供「依階數分類建出生成器」的 builders。
//  3. CoreFactory：亂數核心工廠（PRNG factory），保證可重現（reproducible）與可審計（auditable）。
//
// 設計重點：
//   - Magiclab 本身不綁定任何「檔案路徑」概念：設定檔來源一律以 fs.FS 的形式注入。
//   - Forge 是對外提供 Generate 的最小單位；演算法本體在 sdk/gen，Forge 只做路由與自檢策略。
//
// 典型使用情境：
//   - 後端服務（HTTP）：由 Magiclab 建立 Forge（或 ForgePool），Forge 對外提供 Generate。
//   - 批次驗證（verify）：由 Magiclab 建立 Verifier 進行大量生成與校驗。
package magiclab

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io/fs"
	"math"
	"math/big"
	"path/filepath"
	"strings"

	"github.com/zintix-labs/magiclab/catalog"
	"github.com/zintix-labs/magiclab/errs"
	"github.com/zintix-labs/magiclab/sdk/core"
	"github.com/zintix-labs/magiclab/sdk/gen"
	"github.com/zintix-labs/magiclab/spec"
)

// Configs 用來把一或多個設定檔來源（fs.FS）打包成 New() 需要的參數。
//
// 為什麼是 fs.FS：
//   - 可以用 go:embed 把 configs 直接編進 binary（部署最穩定，不依賴工作目錄）。
//   - 也可以用 os.DirFS 在本機開發時讀取目錄。
//
// Magiclab 不解析「路徑」：它只依賴 fs.FS + ConfigName（檔名）來取得設定內容。
func Configs(cfgs ...fs.FS) []fs.FS {
	return cfgs
}

// Magiclab 是「組裝器（assembler）」與「運行入口（runtime entry）」。
//
// 使用流程通常分成兩階段：
//   - 註冊/組裝階段（registration/build）：建立 catalog、檢查重複與缺漏。
//   - 執行階段（runtime）：依預設集 ID 產生 Forge，並在 Forge 上執行 Generate。
//
// 重要設計原則：
//   - Catalog 的 ID 唯一性只保證在「同一個 Magiclab instance」內。
//   - runtime 一旦開始（已建立 Forge 並對外服務），不建議再變更 Catalog。
type Magiclab struct {
	cat *catalog.Catalog
	reg *gen.Registry
	cf  core.PRNGFactory
	sum []catalog.Summary
}

// New 建立一個 Magiclab instance。
//
// 這是「組裝階段（registration/build）」的入口：
//   - 會建立 Catalog（同時做檔名存在性/重複性檢查，避免 runtime 才爆）。
//   - 會保存生成路徑註冊表與 CoreFactory。
//
// 參數要求（是合約的一部分）：
//   - cf 不能為 nil：沒有 RNG 工廠就無法建立可重現/可審計的核心。
//   - cfgs 至少一個：沒有設定檔來源，Catalog 無法解析 PresetSetting。
//   - reg 不能為 nil：沒有生成器 builders 就建不出 Forge。
func New(cf core.PRNGFactory, cfgs []fs.FS, reg *gen.Registry) (*Magiclab, error) {
	if cf == nil {
		return nil, errs.NewFatal("core factory required")
	}
	if len(cfgs) == 0 {
		return nil, errs.NewFatal("configs required")
	}
	if reg == nil {
		return nil, errs.NewFatal("generator registry required")
	}
	cata, err := catalog.New(cfgs...)
	if err != nil {
		return nil, err
	}
	lab := &Magiclab{
		cat: cata,
		reg: reg,
		cf:  cf,
	}
	return lab, nil
}

// NewAuto 建立一個直接進入執行階段的 Magiclab instance：
// 掃描所有設定檔、批次註冊並凍結目錄。
func NewAuto(cf core.PRNGFactory, cfgs []fs.FS, reg *gen.Registry) (*Magiclab, error) {
	lab, err := New(cf, cfgs, reg)
	if err != nil {
		return nil, err
	}
	if err := lab.RegisterAll(); err != nil {
		return nil, err
	}
	lab.Freeze()
	return lab, nil
}

func (p *Magiclab) Register(ents ...catalog.Entry) error {
	return p.cat.Register(ents...)
}

// RegisterAll
//
// 會掃描 catalog 持有的設定檔來源（fs.FS），把所有可辨識的設定檔（.yaml/.yml/.json）
// 嘗試解析成 *spec.PresetSetting，並用設定檔內宣告的 PresetId/PresetName 產生
// 對應的 catalog.Entry 來批次註冊。
//
// 行為特性（重要）：
//  1. Fail-fast：任何一個檔案讀取/解析/基本檢查失敗，都會立刻回傳 error。
//  2. 原子性：只有當「全部檔案」都成功解析並通過基本檢查時，才會呼叫 Register(...) 一次性寫入；
//     不會出現只註冊了一半、目錄處於半完成狀態的情況。
//  3. 穩定性：fs.WalkDir 依檔名字典序走訪，行為 determinism（方便重現與除錯）。
func (p *Magiclab) RegisterAll() error {
	cfgs := p.cat.Cfg()
	sources := cfgs.Sources()
	if len(sources) == 0 {
		return errs.NewFatal("configs required")
	}

	entries := make([]catalog.Entry, 0, 64)
	seenID := map[spec.PID]string{}
	seenName := map[string]string{}

	for _, src := range sources {
		walkErr := fs.WalkDir(src, ".", func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path == "." {
					return nil
				}
				return errs.NewFatal(fmt.Sprintf("configs must be flat (no subdir): %q", path))
			}

			base := filepath.Base(path)
			if strings.Contains(path, "/") && path != base {
				return errs.NewFatal(fmt.Sprintf("configs must be flat (nested path): %q", path))
			}
			if strings.HasPrefix(base, ".") {
				return nil
			}

			ext := strings.ToLower(filepath.Ext(base))
			if ext != ".yaml" && ext != ".yml" && ext != ".json" {
				return nil
			}

			raw, rerr := fs.ReadFile(src, path)
			if rerr != nil {
				return errs.NewFatal(fmt.Sprintf("read config failed: %s", base))
			}

			var (
				ps   *spec.PresetSetting
				perr error
			)
			switch ext {
			case ".yaml", ".yml":
				ps, perr = spec.GetPresetSettingByYAML(raw)
			case ".json":
				ps, perr = spec.GetPresetSettingByJSON(raw)
			default:
				return errs.NewFatal(fmt.Sprintf("unsupported config format: %q", base))
			}
			if perr != nil {
				return errs.NewFatal(fmt.Sprintf("parse preset setting failed: %s", base))
			}

			name := strings.TrimSpace(ps.PresetName)
			if name == "" {
				return errs.NewFatal(fmt.Sprintf("preset name required: %s", base))
			}

			id := ps.PresetId
			if prev, ok := seenID[id]; ok {
				return errs.NewFatal(fmt.Sprintf("duplicate preset id: %d (config=%s and %s)", id, prev, base))
			}
			if _, ok := p.cat.GetByID(id); ok {
				return errs.NewFatal(fmt.Sprintf("preset id already registered: %d (config=%s)", id, base))
			}
			seenID[id] = base

			nameKey := strings.ToLower(name)
			if prev, ok := seenName[nameKey]; ok {
				return errs.NewFatal(fmt.Sprintf("duplicate preset name: %s (config=%s and %s)", nameKey, prev, base))
			}
			if _, ok := p.cat.GetByName(name); ok {
				return errs.NewFatal(fmt.Sprintf("preset name already registered: %s (config=%s)", name, base))
			}
			seenName[nameKey] = base

			entries = append(entries, catalog.Entry{
				PID:        id,
				Name:       name,
				ConfigName: base,
			})
			return nil
		})
		if walkErr != nil {
			return walkErr
		}
	}

	if len(entries) == 0 {
		return errs.NewFatal("no config files found to register")
	}

	return p.cat.Register(entries...)
}

func (p *Magiclab) Freeze() {
	p.cat.Freeze()
}

func (p *Magiclab) EntryById(id spec.PID) (catalog.Entry, bool) {
	return p.cat.GetByID(id)
}

func (p *Magiclab) EntryByName(name string) (catalog.Entry, bool) {
	return p.cat.GetByName(name)
}

func (p *Magiclab) IDs() []spec.PID {
	return p.cat.IDs()
}

func (p *Magiclab) All() []catalog.Entry {
	return p.cat.All()
}

// PresetSettingById 解碼並回傳指定預設集的完整設定。
// 給 CLI 等外層工具取用 Render/Fixed 這類引擎不讀的欄位。
func (p *Magiclab) PresetSettingById(id spec.PID) (*spec.PresetSetting, error) {
	return p.cat.PresetSettingById(id)
}

func (p *Magiclab) Summary() ([]catalog.Summary, error) {
	if !p.cat.IsFrozen() {
		return nil, errs.NewFatal("catalog is not frozen yet")
	}
	if p.sum != nil {
		return p.sum, nil
	}
	ids := p.cat.IDs()
	cs := make([]catalog.Summary, 0, len(ids))
	for _, id := range ids {
		ps, err := p.cat.PresetSettingById(id)
		if err != nil {
			return nil, errs.NewFatal("parse preset setting failed")
		}
		s := catalog.Summary{
			PID:       id,
			Name:      ps.PresetName,
			MaxOrder:  ps.MaxOrder,
			SelfCheck: ps.SelfCheck,
		}
		cs = append(cs, s)
	}
	p.sum = cs
	return p.sum, nil
}

// NewForge 依據 Catalog 內的預設集 ID 建立一座 Forge。
//
// 行為：
//  1. 由 Catalog 取得對應的 PresetSetting（通常來自 fs.FS 內的 YAML/JSON）。
//  2. 以 CoreFactory 產生 RNG 核心（seed 由 crypto/rand 產生）。
//  3. 依生成路徑註冊表準備三條路徑的生成器。
//
// 注意：seed 會被記錄在 Forge 內（initseed），用於追溯/重現；
// 真正的可審計能力以 Core 的 Snapshot/Restore 合約為準。
func (p *Magiclab) NewForge(id spec.PID) (*Forge, error) {
	if !p.cat.IsFrozen() {
		return nil, errs.NewFatal("catalog is not frozen yet")
	}
	ps, err := p.cat.PresetSettingById(id)
	if err != nil {
		return nil, err
	}
	return newForge(ps, p.reg, p.cf)
}

// NewForgeWithSeed 與 NewForge 相同，但由呼叫端指定初始 seed。
//
// 使用情境：
//   - 可重現的測試：同一份設定 + 同一個 seed，應產生一致的隨機序列。
func (p *Magiclab) NewForgeWithSeed(id spec.PID, seed int64) (*Forge, error) {
	if !p.cat.IsFrozen() {
		return nil, errs.NewFatal("catalog is not frozen yet")
	}
	ps, err := p.cat.PresetSettingById(id)
	if err != nil {
		return nil, err
	}
	return newForgeWithSeed(ps, p.reg, p.cf, seed)
}

// NewForgeByJSON 以外部提供的 JSON 設定建立 Forge；設定必須指向已註冊的預設集。
func (p *Magiclab) NewForgeByJSON(raw []byte, seed int64) (*Forge, error) {
	if !p.cat.IsFrozen() {
		return nil, errs.NewFatal("catalog is not frozen yet")
	}
	cfg, err := spec.GetPresetSettingByJSON(raw)
	if err != nil {
		return nil, err
	}
	if err := p.validCfg(cfg); err != nil {
		return nil, err
	}
	return newForgeWithSeed(cfg, p.reg, p.cf, seed)
}

// NewForgeByYAML 以外部提供的 YAML 設定建立 Forge；設定必須指向已註冊的預設集。
func (p *Magiclab) NewForgeByYAML(raw []byte, seed int64) (*Forge, error) {
	if !p.cat.IsFrozen() {
		return nil, errs.NewFatal("catalog is not frozen yet")
	}
	cfg, err := spec.GetPresetSettingByYAML(raw)
	if err != nil {
		return nil, err
	}
	if err := p.validCfg(cfg); err != nil {
		return nil, err
	}
	return newForgeWithSeed(cfg, p.reg, p.cf, seed)
}

func (p *Magiclab) validCfg(cfg *spec.PresetSetting) error {
	ent, ok := p.cat.GetByID(cfg.PresetId)
	if !ok {
		return errs.NewWarn("pid not exist")
	}
	ent2, ok := p.cat.GetByName(cfg.PresetName)
	if !ok {
		return errs.NewWarn("preset name not exist")
	}
	if ent.PID != ent2.PID {
		return errs.NewWarn("preset id is not matched preset name")
	}
	return nil
}

func (p *Magiclab) NewVerifier(id spec.PID) (*Verifier, error) {
	if !p.cat.IsFrozen() {
		return nil, errs.NewFatal("catalog is not frozen yet")
	}
	ps, err := p.cat.PresetSettingById(id)
	if err != nil {
		return nil, err
	}
	return newVerifier(ps, p.reg, p.cf)
}

func (p *Magiclab) NewVerifierWithSeed(id spec.PID, seed int64) (*Verifier, error) {
	if !p.cat.IsFrozen() {
		return nil, errs.NewFatal("catalog is not frozen yet")
	}
	ps, err := p.cat.PresetSettingById(id)
	if err != nil {
		return nil, err
	}
	return newVerifierWithSeed(ps, p.reg, p.cf, seed)
}

// NewVerifierByJSON 以外部提供的 JSON 設定建立 Verifier；設定必須指向已註冊的預設集。
func (p *Magiclab) NewVerifierByJSON(raw []byte, seed int64) (*Verifier, error) {
	if !p.cat.IsFrozen() {
		return nil, errs.NewFatal("catalog is not frozen yet")
	}
	cfg, err := spec.GetPresetSettingByJSON(raw)
	if err != nil {
		return nil, err
	}
	if err := p.validCfg(cfg); err != nil {
		return nil, err
	}
	return newVerifierWithSeed(cfg, p.reg, p.cf, seed)
}

// NewVerifierByYAML 以外部提供的 YAML 設定建立 Verifier；設定必須指向已註冊的預設集。
func (p *Magiclab) NewVerifierByYAML(raw []byte, seed int64) (*Verifier, error) {
	if !p.cat.IsFrozen() {
		return nil, errs.NewFatal("catalog is not frozen yet")
	}
	cfg, err := spec.GetPresetSettingByYAML(raw)
	if err != nil {
		return nil, err
	}
	if err := p.validCfg(cfg); err != nil {
		return nil, err
	}
	return newVerifierWithSeed(cfg, p.reg, p.cf, seed)
}

// BuildRuntime 建立服務端運行時：每個已註冊的預設集一個 ForgePool。
func (p *Magiclab) BuildRuntime(poolSize int) (*SquareRuntime, error) {
	// 1. 進入 runtime 前，catalog 必須 Freeze
	p.Freeze()

	ids := p.cat.IDs()
	if len(ids) == 0 {
		return nil, errs.NewFatal("no presets registered")
	}

	rt := &SquareRuntime{
		lab:      p,
		pools:    make(map[spec.PID]*ForgePool, len(ids)),
		ids:      ids,
		done:     make(chan struct{}),
		poolSize: max(1, poolSize),
	}
	rt.reason.Store("")

	// 2. 先全建好（fail-fast + cleanup）
	for _, id := range ids {
		ps, err := p.cat.PresetSettingById(id)
		if err != nil {
			return nil, err
		}

		seed, _ := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
		fp, err := newForgePool(rt.poolSize, ps, p.reg, p.cf, seed.Int64())
		if err != nil {
			return nil, err
		}
		rt.pools[id] = fp
	}
	return rt, nil
}

// NewDevForge
//
// 注意只能由Magiclab起
// 只提供給Dev模式使用的工坊，重點是保持單座模式所以保持可重現性
func (p *Magiclab) NewDevForge(id spec.PID, seed int64) (*DevForge, error) {
	vr, err := p.NewVerifierWithSeed(id, seed)
	if err != nil {
		return nil, err
	}
	f, err := p.NewForgeWithSeed(id, seed)
	if err != nil {
		return nil, err
	}
	vrBe, err := vr.fBuf[0].SnapshotCore()
	if err != nil {
		return nil, err
	}
	fBe, err := f.SnapshotCore()
	if err != nil {
		return nil, err
	}
	vrBe64 := base64.StdEncoding.EncodeToString(vrBe)
	fBe64 := base64.StdEncoding.EncodeToString(fBe)
	if fBe64 != vrBe64 {
		return nil, errs.NewFatal("seeds are not equal")
	}
	dev := &DevForge{
		vr:       vr,
		f:        f,
		before:   fBe,
		before64: fBe64,
	}
	return dev, nil
}
