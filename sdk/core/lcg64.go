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

package core

import (
	"crypto/rand"
	"encoding/binary"
	"math"
	"math/big"

	"github.com/zintix-labs/magiclab/errs"
)

// Knuth MMIX 的 LCG 常數：state' = a*state + c (mod 2^64)，全週期 2^64。
const (
	lcgMultiplier uint64 = 6364136223846793005
	lcgIncrement  uint64 = 1442695040888963407
	lcgFloatUnit         = 1.0 / (1 << 32)
)

// LCG64 為 64-bit 狀態、32-bit 輸出的線性同餘產生器。
//
// 輸出取 state 的高 32 位：LCG 的低位元週期短、統計品質差，高位元是整個
// register 裡最「亂」的部分。這個產生器唯一的用途是幫偶倍四階生成器挑
// 對稱變體（視覺多樣性），不用於任何安全或統計敏感場景。
type LCG64 struct {
	state uint64
}

// --------------------------------------
// 提供兩種New方式
// --------------------------------------

func newLCG64() *LCG64 {
	seed, _ := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
	return newLCG64WithSeed(seed.Int64())
}

func newLCG64WithSeed(seed int64) *LCG64 {
	return &LCG64{state: uint64(seed)}
}

//---------------------------------------
// 回傳介面方法
//---------------------------------------

// Uint32 推進狀態並回傳高 32 位。
func (r *LCG64) Uint32() uint32 {
	r.state = r.state*lcgMultiplier + lcgIncrement
	return uint32(r.state >> 32)
}

// Uint64 回傳非負整數uint64亂數（由兩次 32-bit 輸出組成）。
func (r *LCG64) Uint64() uint64 {
	return (uint64(r.Uint32()) << 32) | uint64(r.Uint32())
}

// UintN 產出[0,n) 的uint整數，若 max == 0 回傳 0。
//
// 取 modulo 而非拒絕採樣：這裡的 n 都是個位數（變體選擇），modulo bias
// 對 2^32 等級的值域可忽略，換來熱路徑零分支。
func (r *LCG64) UintN(max uint) uint {
	if max == 0 {
		return 0
	}
	return uint(r.Uint32()) % max
}

// IntN 回傳 [0,n) 的亂數；若 n <= 0 回傳 -1。
func (r *LCG64) IntN(max int) int {
	if max <= 0 {
		return -1
	}
	return int(uint(r.Uint32()) % uint(max))
}

// Float64 回傳 [0,1) 的浮點亂數（32-bit 精度）。
func (r *LCG64) Float64() float64 {
	return float64(r.Uint32()) * lcgFloatUnit
}

// Snapshot 取得當下內部狀態（8 bytes, big-endian）。
func (r *LCG64) Snapshot() ([]byte, error) {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, r.state)
	return b, nil
}

// Restore 依 Snapshot 還原內部狀態。
func (r *LCG64) Restore(data []byte) error {
	if len(data) != 8 {
		return errs.Warnf("lcg64 restore: want 8 bytes, got %d", len(data))
	}
	r.state = binary.BigEndian.Uint64(data)
	return nil
}
