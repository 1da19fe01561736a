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

package recorder

import (
	"fmt"
	"sort"
	"time"

	"github.com/zintix-labs/magiclab/errs"
	"github.com/zintix-labs/magiclab/sdk/buf"
	"github.com/zintix-labs/magiclab/spec"
	"github.com/zintix-labs/magiclab/stats"
)

// SquareRecorder 生成紀錄員
//
// SquareRecorder 負責紀錄批次驗證的生成結果，並透過Done輸出統計報表
//
// 紀錄項目：
//   - 每個階數的 rounds/valid/invalid/failed 計數
//   - 指紋去重（FNV-1a）：同階數重複盤面只算一個變體
//   - attempts 落點分布（只有雙偶階會重試）
//   - 累計生成耗時；KeepTiming 時另外保留逐筆耗時（毫秒）供分位數評估
type SquareRecorder struct {
	PresetName string
	PresetId   spec.PID
	MinOrder   int
	MaxOrder   int
	KeepTiming bool
	Attempts   *AttemptRecord
	byOrder    map[int]*OrderRecord
}

// OrderRecord 單一階數的計數
type OrderRecord struct {
	Order    int
	Class    string
	Rounds   int
	Valid    int
	Invalid  int
	Failed   int
	Attempts int
	GenNanos int64
	prints   map[uint64]struct{}
	durs     []float64 // 毫秒；只有 KeepTiming 時收集
}

// AttemptRecord attempts 落點統計
type AttemptRecord struct {
	Collect []int
}

func NewSquareRecorder(name string, id spec.PID, minOrder int, maxOrder int, keepTiming bool) (*SquareRecorder, error) {
	s := new(SquareRecorder)

	if minOrder < 1 {
		return s, errs.NewFatal(fmt.Sprintf("min order err %d", minOrder))
	}
	if maxOrder < minOrder {
		return s, errs.NewFatal(fmt.Sprintf("order range err [%d,%d]", minOrder, maxOrder))
	}
	// 通過valid
	s.PresetName = name
	s.PresetId = id
	s.MinOrder = minOrder
	s.MaxOrder = maxOrder
	s.KeepTiming = keepTiming
	s.Attempts = &AttemptRecord{Collect: make([]int, len(stats.Buckets.AttemptBucketStr()))}
	s.byOrder = make(map[int]*OrderRecord, maxOrder-minOrder+1)

	return s, nil
}

func MergeSquareRecorder(r []*SquareRecorder) (*SquareRecorder, error) {
	r0 := r[0]
	s, err := NewSquareRecorder(r0.PresetName, r0.PresetId, r0.MinOrder, r0.MaxOrder, r0.KeepTiming)
	if err != nil {
		return s, err
	}
	for _, v := range r {
		if v.PresetName != r0.PresetName {
			return s, errs.NewFatal("merge square record err : different preset name")
		}
		if v.PresetId != r0.PresetId {
			return s, errs.NewFatal("merge square record err : different preset id")
		}
		if v.MinOrder != r0.MinOrder || v.MaxOrder != r0.MaxOrder {
			return s, errs.NewFatal("merge square record err : different order range")
		}

		for n, o := range v.byOrder {
			dst := s.orderRecord(n, o.Class)
			dst.Rounds += o.Rounds
			dst.Valid += o.Valid
			dst.Invalid += o.Invalid
			dst.Failed += o.Failed
			dst.Attempts += o.Attempts
			dst.GenNanos += o.GenNanos
			for fp := range o.prints {
				dst.prints[fp] = struct{}{}
			}
			if s.KeepTiming {
				dst.durs = append(dst.durs, o.durs...)
			}
		}

		// 整合Attempts
		for i := range v.Attempts.Collect {
			s.Attempts.Collect[i] += v.Attempts.Collect[i]
		}
	}
	return s, nil
}

// Record 以單次生成結果更新統計。valid 由呼叫端的獨立校驗器判定，
// 不信任 Forge 自檢的結論；d 為本次生成耗時。
func (s *SquareRecorder) Record(sr *buf.SquareResult, valid bool, d time.Duration) {
	o := s.orderRecord(sr.Square.Order, sr.Class)
	o.Rounds++
	o.Attempts += sr.Attempts
	o.GenNanos += d.Nanoseconds()
	if valid {
		o.Valid++
		o.prints[sr.Square.Fingerprint()] = struct{}{}
	} else {
		o.Invalid++
	}
	if s.KeepTiming {
		o.durs = append(o.durs, float64(d.Nanoseconds())/1e6)
	}

	s.Attempts.Collect[stats.Buckets.Index(sr.Attempts)]++
}

// RecordFailure 紀錄一次生成失敗（Forge 直接回錯誤，沒有盤面可校驗）。
func (s *SquareRecorder) RecordFailure(order int, class string) {
	o := s.orderRecord(order, class)
	o.Rounds++
	o.Failed++
}

// TimingMs 回傳所有已收集的逐筆生成耗時（毫秒）。
// 只有 KeepTiming 的紀錄員會有內容。
func (s *SquareRecorder) TimingMs() []float64 {
	total := 0
	for _, o := range s.byOrder {
		total += len(o.durs)
	}
	out := make([]float64, 0, total)
	for _, n := range s.orderKeys() {
		out = append(out, s.byOrder[n].durs...)
	}
	return out
}

func (s *SquareRecorder) Done() *stats.VerifyReport {
	report := &stats.VerifyReport{
		Summary: &stats.SummaryReport{
			PresetName: s.PresetName,
			PresetId:   s.PresetId,
			MinOrder:   s.MinOrder,
			MaxOrder:   s.MaxOrder,
		},
		Dist: &stats.DistReport{
			AttemptBucket:  stats.Buckets.AttemptBucketStr(),
			AttemptCollect: s.Attempts.Collect,
		},
	}

	for _, n := range s.orderKeys() {
		o := s.byOrder[n]
		or := &stats.OrderReport{
			Order:    o.Order,
			Class:    o.Class,
			Rounds:   o.Rounds,
			Valid:    o.Valid,
			Invalid:  o.Invalid,
			Failed:   o.Failed,
			Unique:   len(o.prints),
			Attempts: o.Attempts,
		}
		if o.Rounds > 0 {
			or.AvgGenUs = float64(o.GenNanos) / float64(o.Rounds) / 1e3
		}
		report.Orders = append(report.Orders, or)

		report.Summary.Rounds += o.Rounds
		report.Summary.Valid += o.Valid
		report.Summary.Invalid += o.Invalid
		report.Summary.Failed += o.Failed
		report.Summary.Unique += len(o.prints)
		report.Summary.Attempts += o.Attempts
	}

	return report
}

func (s *SquareRecorder) orderRecord(n int, class string) *OrderRecord {
	o, ok := s.byOrder[n]
	if !ok {
		o = &OrderRecord{
			Order:  n,
			Class:  class,
			prints: make(map[uint64]struct{}),
		}
		s.byOrder[n] = o
	}
	return o
}

func (s *SquareRecorder) orderKeys() []int {
	keys := make([]int, 0, len(s.byOrder))
	for n := range s.byOrder {
		keys = append(keys, n)
	}
	sort.Ints(keys)
	return keys
}
