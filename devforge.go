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
	"github.com/zintix-labs/magiclab/corefmt"
	"github.com/zintix-labs/magiclab/dto"
	"github.com/zintix-labs/magiclab/errs"
	"github.com/zintix-labs/magiclab/stats"
)

// DevForge
//
// 只提供給Dev模式使用的工坊，單線(不併發)，重點在可審計、可重現
type DevForge struct {
	vr       *Verifier // 只開放 Verify 功能
	f        *Forge    // 同步seed
	before   []byte
	after    []byte
	before64 string
	after64  string
}

type DevGenReport struct {
	Before  string             `json:"start_b64u"`
	After   string             `json:"after_b64u"`
	Rounds  int                `json:"rounds"`
	Valid   int                `json:"valid"`
	Results []dto.SquareResult `json:"results"`
}

func (d *DevForge) generateOne(n int) (dto.SquareResult, error) {
	req := &dto.SquareRequest{
		PresetName: d.f.presetName,
		PresetId:   d.f.presetId,
		Order:      n,
	}
	return d.f.Generate(req)
}

func (d *DevForge) Generates(n int, round int) (DevGenReport, error) {
	// 限制檢查
	if round < 1 || round > 5000 {
		return DevGenReport{}, errs.NewWarn("round must be between 1 and 5,000")
	}

	// generate
	ds := make([]dto.SquareResult, 0, round)
	for i := 0; i < round; i++ {
		result, err := d.generateOne(n)
		if err != nil {
			return DevGenReport{}, errs.Wrap(err, "generate error")
		}
		ds = append(ds, result)
	}
	// 統計：Dev 模式逐張重驗，確認回放鏈路完整
	valid := 0
	v := d.vr.vBuf[0]
	for _, r := range ds {
		if v.Check(r.Order, r.Cells) {
			valid++
		}
	}

	de := DevGenReport{
		Before:  ds[0].State.StartCoreSnapB64U,
		After:   ds[len(ds)-1].State.AfterCoreSnapB64U,
		Rounds:  len(ds),
		Valid:   valid,
		Results: ds,
	}
	return de, nil
}

func (d *DevForge) RestoreGenerates(be64 string, n int, round int) (DevGenReport, error) {
	// 限制檢查
	if round < 1 || round > 5000 {
		return DevGenReport{}, errs.NewWarn("round must be between 1 and 5,000")
	}
	// 解析seed
	be, err := corefmt.DecodeBase64URL(be64)
	if err != nil {
		return DevGenReport{}, errs.NewWarn("decode seed failed" + err.Error())
	}
	// restore
	if err := d.f.RestoreCore(be); err != nil {
		return DevGenReport{}, errs.NewWarn("forge restore failed")
	}
	return d.Generates(n, round)
}

type DevVerifyReport struct {
	Before string              `json:"before"`
	After  string              `json:"after"`
	Stat   *stats.VerifyReport `json:"statistic"`
}

func (d *DevForge) Verify(minOrder int, maxOrder int, samples int) (DevVerifyReport, error) {
	// 先存 before 快照
	f := d.vr.fBuf[0]
	be, err := f.SnapshotCore()
	if err != nil {
		return DevVerifyReport{}, err
	}
	be64 := corefmt.EncodeBase64URL(be)
	d.before = be
	d.before64 = be64

	// Verify
	if samples < 1 || samples > 3_000_000 {
		return DevVerifyReport{}, errs.NewWarn("samples must be between 1 and 3,000,000")
	}
	stat, _, err := d.vr.Verify(minOrder, maxOrder, samples, false)
	if err != nil {
		return DevVerifyReport{}, errs.Wrap(err, "verify failed")
	}

	// 再存 after 快照
	af, err := f.SnapshotCore()
	if err != nil {
		return DevVerifyReport{}, err
	}
	af64 := corefmt.EncodeBase64URL(af)
	d.after = af
	d.after64 = af64

	return DevVerifyReport{
		Before: be64,
		After:  af64,
		Stat:   stat,
	}, nil
}

func (d *DevForge) RestoreVerify(be64 string, minOrder int, maxOrder int, samples int) (DevVerifyReport, error) {
	// 反解析 string -> []byte
	be, err := corefmt.DecodeBase64URL(be64)
	if err != nil {
		return DevVerifyReport{}, errs.Wrap(err, "decode seed failed")
	}
	d.before = be
	d.before64 = be64

	// restore
	if err := d.vr.fBuf[0].RestoreCore(be); err != nil {
		return DevVerifyReport{}, errs.Wrap(err, "restore verifier failed")
	}

	return d.Verify(minOrder, maxOrder, samples)
}
