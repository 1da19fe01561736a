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

package gen

// OddGenerator 以 Siamese（De La Loubère）法填奇數階魔方陣。
//
// 規則：從第一列正中間起，依序放 1..n²；每一步往右上移動（兩個維度都
// wrap），目標格已被占用時改為從「上一格」往下移一列。整條路徑純決定性：
// 同一個 n 永遠長出同一張方陣。
type OddGenerator struct{}

// Generate 要求 cells 已歸零（0 代表未占用；合法值域是 1..n²，0 不會撞值）。
func (g *OddGenerator) Generate(n int, cells []uint32) {
	r, c := 0, n/2
	total := n * n
	for k := 1; k <= total; k++ {
		cells[r*n+c] = uint32(k)

		nr := r - 1
		if nr < 0 {
			nr = n - 1
		}
		nc := c + 1
		if nc == n {
			nc = 0
		}

		if cells[nr*n+nc] != 0 {
			// 碰撞：自當前格往下一列，行不動
			r++
			if r == n {
				r = 0
			}
		} else {
			r, c = nr, nc
		}
	}
}
