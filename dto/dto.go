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

package dto

import (
	"github.com/zintix-labs/magiclab/corefmt"
	"github.com/zintix-labs/magiclab/errs"
	"github.com/zintix-labs/magiclab/sdk/buf"
	"github.com/zintix-labs/magiclab/spec"
)

// SquareResult 為對外輸出的生成結果序列化結構。
type SquareResult struct {
	PresetName string      `json:"preset"`             // 預設集名稱
	PresetId   spec.PID    `json:"pid"`                // 預設集編號
	Order      int         `json:"n"`                  // 階數
	Magic      int64       `json:"magic"`              // 魔術常數 M(n)
	Class      string      `json:"class"`              // 生成路徑
	Attempts   int         `json:"attempts"`           // 實際生成次數
	SelfCheck  bool        `json:"self_check"`         // 是否執行自檢
	Cells      []uint32    `json:"cells"`              // row-major 盤面
	State      SquareState `json:"square_state"`       // 回放/續玩狀態
}

// VerifyResult 為校驗請求的回應結構。
type VerifyResult struct {
	Order int   `json:"n"`
	Valid bool  `json:"valid"`
	Magic int64 `json:"magic"` // 期望的魔術常數，方便呼叫端對帳
}

// SquareState 以 base64url 承載 PRNG 快照。
//
// Start 是本張方陣的重現憑證；After 餵回下一次請求的 core_snap
// 可延續同一條亂數流水。兩者皆為 opaque payload，呼叫端只需 round-trip。
type SquareState struct {
	StartCoreSnapB64U string `json:"start_b64u"` // 必回
	AfterCoreSnapB64U string `json:"after_b64u"` // 必回
}

func NewSquareResultDTO(sr *buf.SquareResult) (SquareResult, error) {
	if sr == nil {
		return SquareResult{}, errs.NewWarn("square result is nil")
	}
	if sr.Square == nil {
		return SquareResult{}, errs.NewWarn("square result has no square")
	}

	state := SquareState{
		StartCoreSnapB64U: corefmt.EncodeBase64URL(sr.State.StartCoreSnap),
		AfterCoreSnapB64U: corefmt.EncodeBase64URL(sr.State.AfterCoreSnap),
	}

	dto := SquareResult{
		PresetName: sr.PresetName,
		PresetId:   sr.PresetId,
		Order:      sr.Square.Order,
		Magic:      sr.Square.Magic(),
		Class:      sr.Class,
		Attempts:   sr.Attempts,
		SelfCheck:  sr.SelfCheck,
		Cells:      sr.Square.Cells,
		State:      state,
	}

	return dto, nil
}
