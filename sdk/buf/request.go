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

import "github.com/zintix-labs/magiclab/spec"

// SquareRequest 為生成請求的內部表示。
// 對外的 wire 格式（query string / JSON、base64url 快照）由 dto 負責轉換。
type SquareRequest struct {
	PresetName string   // 預設集名稱
	PresetId   spec.PID // 預設集編號
	Order      int      // 要求的階數
	CoreSnap   []byte   // PRNG 起始快照，nil 表示沿用 Forge 當前流水
}

// VerifyRequest 為校驗請求的內部表示：一張候選方陣。
type VerifyRequest struct {
	Order int
	Cells []uint32
}

// BatchRequest 為批次驗證請求的內部表示。
type BatchRequest struct {
	PresetName string
	PresetId   spec.PID
	MinOrder   int
	MaxOrder   int
	Samples    int
}
