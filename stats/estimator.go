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

package stats

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat/distuv"
)

// ============================================================
// ** 結構宣告 **
// ============================================================

// 生成延遲評估
type EstimatorTiming struct {
	Samples     int
	LatencyStat LatencyStat
	BudgetStat  BudgetStat
}

// 延遲敘事
type LatencyStat struct {
	Median PointStat // 描述延遲的中位數
	P90    PointStat
	P99    PointStat
}

// 用延遲預算視角看: 有多少比例的生成落在 1ms 內、10ms 內 ...
type BudgetStat struct {
	Under1ms   PointStat
	Under10ms  PointStat
	Under100ms PointStat
}

// PointStat 點估計 回傳 估計值 以及信賴區間
type PointStat struct {
	Hat float64
	CI  CI
}

// ============================================================
// ** 對外 : 生成延遲評估 **
// ============================================================

// EstimatorGenTiming 生成延遲評估
//
// 1. Latency 敘事 : 描述生成耗時的分位數（中位數 / P90 / P99）
//
// 2. Budget 敘事 : 描述生成落在某個延遲預算內的比例
//
// durs 為每一次生成的耗時，單位毫秒
func EstimatorGenTiming(durs []float64) *EstimatorTiming {
	// 0. 防禦：空輸入
	n := len(durs)
	out := &EstimatorTiming{Samples: n}
	if n == 0 {
		return out
	}

	// ------------------------------------------------------------
	// 1) Latency 敘事：分位點估計 + 95% CI
	// ------------------------------------------------------------
	medHat := quantilePoint(durs, 0.5)
	medLo, medHi := quantileCI(durs, 0.5, 0.95)

	p90Hat := quantilePoint(durs, 0.90)
	p90Lo, p90Hi := quantileCI(durs, 0.90, 0.95)

	p99Hat := quantilePoint(durs, 0.99)
	p99Lo, p99Hi := quantileCI(durs, 0.99, 0.95)

	out.LatencyStat = LatencyStat{
		Median: PointStat{Hat: medHat, CI: CI{Lo: medLo, Hi: medHi}},
		P90:    PointStat{Hat: p90Hat, CI: CI{Lo: p90Lo, Hi: p90Hi}},
		P99:    PointStat{Hat: p99Hat, CI: CI{Lo: p99Lo, Hi: p99Hi}},
	}

	// ------------------------------------------------------------
	// 2) Budget 敘事：≤ 1/10/100 ms 的比例（CP 95% CI）
	// ------------------------------------------------------------
	u1Hat, u1CI := percentileCIForValue(durs, 1.0, 0.95)
	u10Hat, u10CI := percentileCIForValue(durs, 10.0, 0.95)
	u100Hat, u100CI := percentileCIForValue(durs, 100.0, 0.95)

	out.BudgetStat = BudgetStat{
		Under1ms:   PointStat{Hat: u1Hat, CI: u1CI},
		Under10ms:  PointStat{Hat: u10Hat, CI: u10CI},
		Under100ms: PointStat{Hat: u100Hat, CI: u100CI},
	}

	return out
}

// ============================================================
// ** 內部統計函數 **
// ============================================================

// Clopper–Pearson exact CI for binomial proportion (k successes out of n)
func proportionCICP(k int, n int, confidence float64) (pHat float64, ci CI) {
	if n == 0 {
		return 0, CI{0, 1}
	}
	alpha := 1 - confidence
	pHat = float64(k) / float64(n)

	// Beta PPF 映射，處理邊界
	if k == 0 {
		ci.Lo = 0
	} else {
		b := distuv.Beta{Alpha: float64(k), Beta: float64(n - k + 1)}
		ci.Lo = b.Quantile(alpha / 2)
	}
	if k == n {
		ci.Hi = 1
	} else {
		b := distuv.Beta{Alpha: float64(k + 1), Beta: float64(n - k)}
		ci.Hi = b.Quantile(1 - alpha/2)
	}
	return
}

// 問題：給定樣本 data 與門檻 x0，估計 p = P(X ≤ x0) 的點估計與 CI 區間
// 回傳 (pHat, CI)
func percentileCIForValue(data []float64, x0 float64, confidence float64) (pHat float64, ci CI) {
	n := len(data)
	if n == 0 {
		return 0, CI{Lo: 0, Hi: 0}
	}
	// k = 數到 <= x0 的個數
	k := 0
	for _, v := range data {
		if v <= x0 {
			k++
		}
	}
	return proportionCICP(k, n, confidence)
}

// 想估「第 q 分位」的上下界。做法：把 order statistic 的秩視為二項→Beta 反推 p 範圍，再把 p 轉回樣本索引。
// 回傳 (loValue, hiValue)
func quantileCI(data []float64, q, confidence float64) (float64, float64) {
	n := len(data)
	if n == 0 {
		return 0, 0
	}
	cp := make([]float64, n)
	copy(cp, data)
	sort.Float64s(cp)

	alpha := 1 - confidence
	k := int(q * float64(n))
	if k < 1 {
		k = 1
	} else if k > n-1 {
		k = n - 1
	}

	// 以 CP 思想反推 p 範圍
	bLo := distuv.Beta{Alpha: float64(k), Beta: float64(n - k + 1)}
	bHi := distuv.Beta{Alpha: float64(k + 1), Beta: float64(n - k)}
	pLo := bLo.Quantile(alpha / 2)
	pHi := bHi.Quantile(1 - alpha/2)

	li := int(pLo * float64(n))
	ui := int(pHi * float64(n))
	if ui > 0 {
		ui -= 1
	}
	if li < 0 {
		li = 0
	}
	if li > n-1 {
		li = n - 1
	}
	if ui < 0 {
		ui = 0
	}
	if ui > n-1 {
		ui = n - 1
	}
	return cp[li], cp[ui]
}

// quantilePoint returns the empirical quantile point estimate at q.
func quantilePoint(data []float64, q float64) float64 {
	n := len(data)
	if n == 0 {
		return 0
	}
	cp := make([]float64, n)
	copy(cp, data)
	sort.Float64s(cp)
	// 最近秩法
	idx := int(q * float64(n))
	if idx < 0 {
		idx = 0
	}
	if idx > n-1 {
		idx = n - 1
	}
	return cp[idx]
}

// ============================================================
// ** 輸出函數 **
// ============================================================

func (est *EstimatorTiming) Out() {
	// 1) Latency
	fmt.Println("=== Generation Latency ===")
	latKeys := []string{"Median", "P90", "P99"}
	latMsg := map[string]string{
		"Median": fmtHatCIms(est.LatencyStat.Median.Hat, est.LatencyStat.Median.CI),
		"P90":    fmtHatCIms(est.LatencyStat.P90.Hat, est.LatencyStat.P90.CI),
		"P99":    fmtHatCIms(est.LatencyStat.P99.Hat, est.LatencyStat.P99.CI),
	}
	printTable("Generation Latency", latKeys, latMsg)

	// 2) Budget
	fmt.Println("\n=== Latency Budget ===")
	budKeys := []string{"≤1ms", "≤10ms", "≤100ms"}
	budMsg := map[string]string{
		"≤1ms":   fmtHatCIpct01(est.BudgetStat.Under1ms.Hat, est.BudgetStat.Under1ms.CI),
		"≤10ms":  fmtHatCIpct01(est.BudgetStat.Under10ms.Hat, est.BudgetStat.Under10ms.CI),
		"≤100ms": fmtHatCIpct01(est.BudgetStat.Under100ms.Hat, est.BudgetStat.Under100ms.CI),
	}
	printTable("Latency Budget", budKeys, budMsg)
}

func printTable(title string, keys []string, msg map[string]string) {
	fmt.Println(title)
	maxKeyLen := 0
	for _, k := range keys {
		if len(k) > maxKeyLen {
			maxKeyLen = len(k)
		}
	}
	for _, k := range keys {
		fmt.Printf("  %-*s : %s\n", maxKeyLen, k, msg[k])
	}
}

func fmtPct01(x float64) string {
	return fmt.Sprintf("%.2f%%", x*100)
}

func fmtHatCIpct01(hat float64, ci CI) string {
	return fmt.Sprintf("%s [%s, %s]", fmtPct01(hat), fmtPct01(ci.Lo), fmtPct01(ci.Hi))
}

func fmtHatCIms(hat float64, ci CI) string {
	return fmt.Sprintf("%.3fms [%.3fms, %.3fms]", hat, ci.Lo, ci.Hi)
}
