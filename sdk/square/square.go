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

// Package square 定義魔方陣的資料模型。
//
// Square 是引擎對外交付的唯一產物：一塊 row-major 的連續 cells，
// 由一次生成呼叫配置、整塊移交呼叫端持有；引擎交付後不保留任何引用、
// 也不再修改內容。
package square

import "hash/fnv"

// Square 一張 n×n 魔方陣。
//
// 不變式：Cells 長度為 Order²，且為 1..Order² 的一個排列；
// 每列、每行、兩條主對角線總和皆為 MagicConstant(Order)。
type Square struct {
	Order int      `json:"order"`
	Cells []uint32 `json:"cells"` // row-major
}

// New 配置一張全零的 n×n 方陣，等待生成器填入。
func New(order int) *Square {
	return &Square{
		Order: order,
		Cells: make([]uint32, order*order),
	}
}

// MagicConstant 回傳 n 階魔方陣的魔術常數 M(n) = n(n²+1)/2。
// 以 int64 計算：n=1000 時 M ≈ 5×10⁸，行列和驗證過程的中間值不能溢位。
func MagicConstant(n int) int64 {
	nn := int64(n)
	return nn * (nn*nn + 1) / 2
}

// Magic 回傳本方陣的魔術常數。
func (s *Square) Magic() int64 {
	return MagicConstant(s.Order)
}

// At 讀取 (r,c) 格的值。不做邊界檢查，熱路徑使用。
func (s *Square) At(r, c int) uint32 {
	return s.Cells[r*s.Order+c]
}

// Fingerprint 以 FNV-1a 對 cells 取 64-bit 指紋。
// 批次驗證器用它統計「同一階數下生成了幾種不同變體」；不是密碼學雜湊。
func (s *Square) Fingerprint() uint64 {
	h := fnv.New64a()
	var b [4]byte
	for _, v := range s.Cells {
		b[0] = byte(v >> 24)
		b[1] = byte(v >> 16)
		b[2] = byte(v >> 8)
		b[3] = byte(v)
		_, _ = h.Write(b[:])
	}
	return h.Sum64()
}
