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

// Package verify 實作魔方陣校驗器。
//
// Check 是一個純謂詞：對同一組輸入永遠回傳同一個結果、絕不修改輸入、
// 絕不回傳 error——長度不符是正常的 false，不是異常。
package verify

import "github.com/zintix-labs/magiclab/sdk/square"

// Verifier 具狀態校驗器：重用 presence 表避免每次呼叫都配置 n² 的記憶體。
//
// presence 表用 epoch 技巧清表：每次 Check 遞增 epoch，格子上存的 epoch
// 不等於當前值就視為「未出現」，省掉整塊歸零的 O(n²) 寫入。
// 同一個 Verifier 不可被多 goroutine 同時使用。
type Verifier struct {
	seen  []uint32
	epoch uint32
}

// New 建立可重用的 Verifier。
func New() *Verifier {
	return &Verifier{}
}

// Check 依序短路檢查：
//  1. len(cells) == n*n
//  2. cells 是 1..n² 的排列（presence 表，O(n²)，不靠排序）
//  3. n 條列和皆為 M(n)
//  4. n 條行和皆為 M(n)
//  5. 兩條主對角線和皆為 M(n)
func (v *Verifier) Check(n int, cells []uint32) bool {
	if n < 1 || len(cells) != n*n {
		return false
	}

	nn := n * n

	// 排列檢查
	if cap(v.seen) < nn {
		v.seen = make([]uint32, nn)
		v.epoch = 0
	}
	v.seen = v.seen[:nn]
	v.epoch++
	if v.epoch == 0 { // epoch 溢位繞回，整表歸零後重來
		for i := range v.seen {
			v.seen[i] = 0
		}
		v.epoch = 1
	}
	for _, val := range cells {
		if val < 1 || val > uint32(nn) {
			return false
		}
		if v.seen[val-1] == v.epoch {
			return false
		}
		v.seen[val-1] = v.epoch
	}

	m := square.MagicConstant(n)

	// 列和
	for r := 0; r < n; r++ {
		var sum int64
		row := cells[r*n : r*n+n]
		for _, val := range row {
			sum += int64(val)
		}
		if sum != m {
			return false
		}
	}

	// 行和
	for c := 0; c < n; c++ {
		var sum int64
		for r := 0; r < n; r++ {
			sum += int64(cells[r*n+c])
		}
		if sum != m {
			return false
		}
	}

	// 主對角線（左上到右下）
	var diag int64
	for i := 0; i < n; i++ {
		diag += int64(cells[i*n+i])
	}
	if diag != m {
		return false
	}

	// 反對角線（右上到左下）
	var anti int64
	for i := 0; i < n; i++ {
		anti += int64(cells[i*n+(n-1-i)])
	}
	return anti == m
}

// Check 一次性校驗的便利入口；熱路徑請自行持有 Verifier 重用 presence 表。
func Check(n int, cells []uint32) bool {
	return New().Check(n, cells)
}
