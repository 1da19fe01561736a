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

package buf

import (
	"github.com/zintix-labs/magiclab/sdk/square"
	"github.com/zintix-labs/magiclab/spec"
)

// SquareResult 為一次生成的內部結果，由 Forge 產生、dto 負責序列化。
//
// Square.Cells 由本次生成新配置並整塊移交，呼叫端可長期持有；
// State 內的快照是 PRNG 內部狀態的拷貝，用於回放與審計。
type SquareResult struct {
	PresetName string   // 預設集名稱
	PresetId   spec.PID // 預設集編號
	Class      string   // 生成路徑（odd / singly_even / doubly_even / trivial）
	Attempts   int      // 實際生成次數（自檢重試會 > 1）
	SelfCheck  bool     // 本次是否執行了自檢
	Square     *square.Square
	State      SquareState
}

// SquareState 生成前後的 PRNG 快照。
//
// Start 讓同一張方陣可精確重現；After 餵回下一次請求可延續同一條流水。
type SquareState struct {
	StartCoreSnap []byte
	AfterCoreSnap []byte
}
