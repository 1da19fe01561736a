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

package stats_test

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/zintix-labs/magiclab/stats"
)

// buildVerifyReport constructs a VerifyReport from per-order (rounds, valid) counts.
// Failed rounds are rounds that errored before producing a square.
func buildVerifyReport(orders map[int][2]int) *stats.VerifyReport {
	L := len(stats.Buckets.AttemptBucketStr())
	report := &stats.VerifyReport{
		Summary: &stats.SummaryReport{
			PresetName: "TestPreset",
			PresetId:   0,
			MinOrder:   1 << 30,
		},
		Dist: &stats.DistReport{
			AttemptBucket:  stats.Buckets.AttemptBucketStr(),
			AttemptCollect: make([]int, L),
		},
	}
	for n, rv := range orders {
		rounds, valid := rv[0], rv[1]
		report.Orders = append(report.Orders, &stats.OrderReport{
			Order:    n,
			Class:    "odd",
			Rounds:   rounds,
			Valid:    valid,
			Invalid:  rounds - valid,
			Unique:   valid,
			Attempts: valid,
		})
		report.Summary.Rounds += rounds
		report.Summary.Valid += valid
		report.Summary.Invalid += rounds - valid
		report.Summary.Unique += valid
		report.Summary.Attempts += valid
		report.Dist.AttemptCollect[0] += rounds
		if n < report.Summary.MinOrder {
			report.Summary.MinOrder = n
		}
		if n > report.Summary.MaxOrder {
			report.Summary.MaxOrder = n
		}
	}
	report.Done()
	return report
}

func TestVerifyReportCoreMetrics(t *testing.T) {
	rep := buildVerifyReport(map[int][2]int{
		3: {100, 100},
		5: {100, 95},
	})

	wantRate := 195.0 / 200.0
	if got := rep.Summary.ValidRate; math.Abs(got-wantRate) > 1e-12 {
		t.Fatalf("valid rate got %.12f want %.12f", got, wantRate)
	}
	if rep.Summary.ValidCI.Lo <= 0 || rep.Summary.ValidCI.Hi > 1 {
		t.Fatalf("valid CI out of range: %+v", rep.Summary.ValidCI)
	}
	if rep.Summary.ValidCI.Lo > wantRate || rep.Summary.ValidCI.Hi < wantRate {
		t.Fatalf("valid CI does not cover point estimate: %+v", rep.Summary.ValidCI)
	}
	if rep.AllValid() {
		t.Fatalf("report with invalid rounds must not be AllValid")
	}

	// Distribution lengths and sums
	if len(rep.Dist.AttemptCollect) != len(rep.Dist.AttemptBucket) {
		t.Fatalf("attempt buckets length mismatch")
	}
	total := 0
	for _, c := range rep.Dist.AttemptCollect {
		total += c
	}
	if total != rep.Summary.Rounds {
		t.Fatalf("distribution total %d != rounds %d", total, rep.Summary.Rounds)
	}

	rate := rep.Summary.ValidRate
	rep.Done() // idempotent
	if rep.Summary.ValidRate != rate {
		t.Fatalf("valid rate changed after second Done")
	}
}

func TestVerifyReportAllValid(t *testing.T) {
	rep := buildVerifyReport(map[int][2]int{4: {50, 50}})
	if !rep.AllValid() {
		t.Fatalf("fully valid report must report AllValid")
	}
	if rep.Summary.ValidRate != 1.0 {
		t.Fatalf("valid rate got %.3f want 1.0", rep.Summary.ValidRate)
	}
	if rep.Summary.ValidCI.Hi != 1.0 {
		t.Fatalf("k==n upper CI must be 1.0, got %.6f", rep.Summary.ValidCI.Hi)
	}
}

func TestAttemptBucketIndex(t *testing.T) {
	cases := map[int]int{1: 0, 2: 1, 3: 2, 4: 2, 5: 3, 7: 3, 8: 4, 15: 4, 16: 5, 1000: 5}
	for attempts, want := range cases {
		if got := stats.Buckets.Index(attempts); got != want {
			t.Fatalf("Index(%d) got %d want %d", attempts, got, want)
		}
	}
}

func TestEstimatorGenTiming(t *testing.T) {
	// 100 durations from 0.00ms to 9.90ms
	durs := make([]float64, 100)
	for i := range durs {
		durs[i] = float64(i) / 10.0
	}
	est := stats.EstimatorGenTiming(durs)
	if est.Samples != 100 {
		t.Fatalf("samples got %d want 100", est.Samples)
	}
	if math.Abs(est.LatencyStat.Median.Hat-5.0) > 0.5 {
		t.Fatalf("median expected ~5.0ms, got %.3f", est.LatencyStat.Median.Hat)
	}
	if math.Abs(est.LatencyStat.P90.Hat-9.0) > 0.5 {
		t.Fatalf("P90 expected ~9.0ms, got %.3f", est.LatencyStat.P90.Hat)
	}
	// 11 of 100 durations are <= 1.0ms
	if math.Abs(est.BudgetStat.Under1ms.Hat-0.11) > 1e-12 {
		t.Fatalf("under 1ms expected 0.11, got %.3f", est.BudgetStat.Under1ms.Hat)
	}

	empty := stats.EstimatorGenTiming(nil)
	if empty.Samples != 0 {
		t.Fatalf("empty input must keep zero samples")
	}
}

func TestVerifyReportRender(t *testing.T) {
	rep := buildVerifyReport(map[int][2]int{3: {10, 10}})

	var jsonBuf bytes.Buffer
	if err := rep.WriteWith(&jsonBuf, &stats.JsonVerifyReportRender{}); err != nil {
		t.Fatalf("json render: %v", err)
	}
	if !strings.Contains(jsonBuf.String(), `"PresetName":"TestPreset"`) {
		t.Fatalf("json output missing preset name: %s", jsonBuf.String())
	}

	var yamlBuf bytes.Buffer
	if err := rep.WriteWith(&yamlBuf, &stats.YAMLVerifyReportRender{}); err != nil {
		t.Fatalf("yaml render: %v", err)
	}
	// innermost numeric sequences render in flow style
	if !strings.Contains(yamlBuf.String(), "[") {
		t.Fatalf("yaml output should keep flat lists in flow style: %s", yamlBuf.String())
	}
}
