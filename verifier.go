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
	"crypto/rand"
	"io"
	"math"
	"math/big"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cheggaaa/pb/v3"
	"github.com/zintix-labs/magiclab/errs"
	"github.com/zintix-labs/magiclab/recorder"
	"github.com/zintix-labs/magiclab/sdk/core"
	"github.com/zintix-labs/magiclab/sdk/gen"
	"github.com/zintix-labs/magiclab/sdk/verify"
	"github.com/zintix-labs/magiclab/spec"
	"github.com/zintix-labs/magiclab/stats"
)

const capPrepare int = 100

// Verifier 用於批次驗證生成行為，可建立多座 Forge 並平行紀錄統計。
//
// 與 Forge 內建的自檢不同，Verifier 用自己獨立的校驗器重新檢查每一張
// 生成結果，不信任生成端的結論。
type Verifier struct {
	PresetName string                     // 預設集名稱
	PresetId   spec.PID                   // 預設集編號
	ps         *spec.PresetSetting        // 方便重用建立 Forge
	reg        *gen.Registry              // 生成路徑註冊表
	cf         core.PRNGFactory           // 亂數生成器
	initSeed   int64                      // 初始下的種子
	seedmaker  *seedMaker                 // 種子生成器
	fBuf       []*Forge                   // 併發執行工坊實例
	vBuf       []*verify.Verifier         // 併發獨立校驗器
	rBuf       []*recorder.SquareRecorder // 併發生成紀錄員
}

func newVerifier(ps *spec.PresetSetting, reg *gen.Registry, cf core.PRNGFactory) (*Verifier, error) {
	seed, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
	if err != nil {
		return nil, err
	}
	return newVerifierWithSeed(ps, reg, cf, seed.Int64())
}

func newVerifierWithSeed(ps *spec.PresetSetting, reg *gen.Registry, cf core.PRNGFactory, seed int64) (*Verifier, error) {
	s := &Verifier{
		PresetName: ps.PresetName,
		PresetId:   ps.PresetId,
		ps:         ps,
		reg:        reg,
		cf:         cf,
		initSeed:   seed,
		seedmaker:  newSeedMaker(seed),
		fBuf:       make([]*Forge, 1, capPrepare),
		vBuf:       make([]*verify.Verifier, 1, capPrepare),
		rBuf:       make([]*recorder.SquareRecorder, 0, capPrepare),
	}
	f, err := newForgeWithSeed(ps, reg, cf, s.initSeed)
	if err != nil {
		return nil, err
	}
	s.fBuf[0] = f
	s.vBuf[0] = verify.New()
	return s, nil
}

// Verify 單線驗證器：以一座 Forge 對 [minOrder,maxOrder] 每個可生成階數
// 連續生成 samples 張並回傳統計結果與用時
func (s *Verifier) Verify(minOrder int, maxOrder int, samples int, showpb bool) (*stats.VerifyReport, time.Duration, error) {
	defer s.reset()
	orders, err := s.validRange(minOrder, maxOrder, samples)
	if err != nil {
		return nil, 0, err
	}
	if len(s.rBuf) == 0 {
		r, err := recorder.NewSquareRecorder(s.PresetName, s.PresetId, minOrder, maxOrder, false)
		if err != nil {
			return nil, 0, err
		}
		s.rBuf = append(s.rBuf, r)
	}
	r := s.rBuf[0]
	f := s.fBuf[0]
	v := s.vBuf[0]

	bar := pb.StartNew(len(orders) * samples)
	if !showpb {
		bar.SetWriter(io.Discard)
	}
	runVerify(nil, f, v, r, orders, samples, bar)
	used := time.Since(bar.StartTime())
	bar.Finish()
	result := r.Done()
	result.Done()

	return result, used, nil
}

// VerifyMP 平行執行多座 Forge，每個階數總計 samples*mp 張，合併統計結果後 回傳統計結果與用時
func (s *Verifier) VerifyMP(minOrder int, maxOrder int, samples int, mp int, showpb bool) (*stats.VerifyReport, time.Duration, error) {
	defer s.reset()
	if mp <= 0 {
		return nil, 0, errs.NewWarn("workers must > 0")
	}
	orders, err := s.validRange(minOrder, maxOrder, samples)
	if err != nil {
		return nil, 0, err
	}
	if err := s.prepare(mp, minOrder, maxOrder, false); err != nil {
		return nil, 0, err
	}

	wg := new(sync.WaitGroup)
	wg.Add(mp)
	bar := pb.StartNew(len(orders) * samples * mp)
	if !showpb {
		bar.SetWriter(io.Discard)
	}
	for i := 0; i < mp; i++ {
		go runVerify(wg, s.fBuf[i], s.vBuf[i], s.rBuf[i], orders, samples, bar)
	}
	wg.Wait()
	used := time.Since(bar.StartTime())
	bar.Finish()

	st, err := recorder.MergeSquareRecorder(s.rBuf)
	if err != nil {
		return nil, 0, err
	}
	result := st.Done()
	result.Done()

	return result, used, nil
}

// VerifyTiming 與 VerifyMP 相同，但額外保留逐筆生成耗時，
// 產出統計報表之外再回傳延遲分位數評估。
func (s *Verifier) VerifyTiming(minOrder int, maxOrder int, samples int, mp int, showpb bool) (*stats.VerifyReport, *stats.EstimatorTiming, time.Duration, error) {
	defer s.reset()
	if mp <= 0 {
		return nil, nil, 0, errs.NewWarn("workers must > 0")
	}
	orders, err := s.validRange(minOrder, maxOrder, samples)
	if err != nil {
		return nil, nil, 0, err
	}
	if err := s.prepare(mp, minOrder, maxOrder, true); err != nil {
		return nil, nil, 0, err
	}

	wg := new(sync.WaitGroup)
	wg.Add(mp)
	bar := pb.StartNew(len(orders) * samples * mp)
	if !showpb {
		bar.SetWriter(io.Discard)
	}
	for i := 0; i < mp; i++ {
		go runVerify(wg, s.fBuf[i], s.vBuf[i], s.rBuf[i], orders, samples, bar)
	}
	wg.Wait()
	used := time.Since(bar.StartTime())
	bar.Finish()

	st, err := recorder.MergeSquareRecorder(s.rBuf)
	if err != nil {
		return nil, nil, 0, err
	}
	result := st.Done()
	result.Done()
	est := stats.EstimatorGenTiming(st.TimingMs())

	return result, est, used, nil
}

func runVerify(wg *sync.WaitGroup, f *Forge, v *verify.Verifier, r *recorder.SquareRecorder, orders []int, samples int, bar *pb.ProgressBar) {
	if wg != nil {
		defer wg.Done()
	}
	for _, n := range orders {
		for i := 0; i < samples; i++ {
			t0 := time.Now()
			sr, err := f.GenerateInternal(n)
			d := time.Since(t0)
			if err != nil {
				r.RecordFailure(n, gen.ClassName(gen.Classify(n)))
			} else {
				r.Record(sr, v.Check(sr.Square.Order, sr.Square.Cells), d)
			}
			bar.Increment()
		}
	}
}

// prepare 補齊平行驗證需要的 Forge / 校驗器 / 紀錄員數量。
func (s *Verifier) prepare(mp int, minOrder int, maxOrder int, keepTiming bool) error {
	for len(s.fBuf) < mp {
		f, err := newForgeWithSeed(s.ps, s.reg, s.cf, s.seedmaker.next())
		if err != nil {
			return err
		}
		s.fBuf = append(s.fBuf, f)
	}
	for len(s.vBuf) < mp {
		s.vBuf = append(s.vBuf, verify.New())
	}
	for len(s.rBuf) < mp {
		r, err := recorder.NewSquareRecorder(s.PresetName, s.PresetId, minOrder, maxOrder, keepTiming)
		if err != nil {
			return err
		}
		s.rBuf = append(s.rBuf, r)
	}
	return nil
}

// validRange 驗證參數並回傳區間內可生成的階數（跳過 n==2）。
func (s *Verifier) validRange(minOrder int, maxOrder int, samples int) ([]int, error) {
	if minOrder < 1 {
		return nil, errs.NewWarn("min order must >= 1")
	}
	if maxOrder < minOrder {
		return nil, errs.NewWarn("max order must >= min order")
	}
	if maxOrder > s.ps.MaxOrder {
		return nil, errs.NewWarn("max order exceeds preset limit")
	}
	if samples < 1 {
		return nil, errs.NewWarn("samples must > 0")
	}
	orders := make([]int, 0, maxOrder-minOrder+1)
	for n := minOrder; n <= maxOrder; n++ {
		if gen.Classify(n) != gen.ClassInvalid {
			orders = append(orders, n)
		}
	}
	if len(orders) == 0 {
		return nil, errs.NewWarn("no generable order in range")
	}
	return orders, nil
}

func (s *Verifier) reset() {
	s.rBuf = s.rBuf[:0]
}

const mask63 = uint64(1<<63) - 1

type seedMaker struct {
	state atomic.Uint64 // always in [0, 2^63)
}

func newSeedMaker(seed int64) *seedMaker {
	s := &seedMaker{}
	s.state.Store(uint64(seed) & mask63)
	return s
}

// state 走全週期（不重複），再用可逆 mix63 打散
//
// 注意：此方法可能在併發環境下被多 goroutines 同時呼叫（例如 VerifyMP / ForgePool 補機）。
// 因此 state 的推進必須是原子的：
//   - 使用 CAS（Compare-And-Swap）迴圈確保每次呼叫都會取得唯一的下一個 state。
//   - 回傳值使用推進後的 state 經 mix63 打散後的結果。
func (s *seedMaker) next() int64 {
	for {
		old := s.state.Load()                                            // always masked
		next := (old*6364136223846793005 + 1442695040888963407) & mask63 // full-period LCG mod 2^63
		if s.state.CompareAndSwap(old, next) {
			return int64(mix63(next)) // 一定非負
		}
	}
}

// mix63：只用「可逆」的 bit 操作 + 乘奇數（mod 2^63）
func mix63(x uint64) uint64 {
	x &= mask63
	x ^= x >> 30
	x = (x * 0xBF58476D1CE4E5B9) & mask63 // 乘奇數 ⇒ mod 2^63 可逆
	x ^= x >> 27
	x = (x * 0x94D049BB133111EB) & mask63
	x ^= x >> 31
	return x & mask63
}
