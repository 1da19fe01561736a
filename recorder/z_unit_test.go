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

package recorder_test

import (
	"testing"
	"time"

	"github.com/zintix-labs/magiclab/recorder"
	"github.com/zintix-labs/magiclab/sdk/buf"
	"github.com/zintix-labs/magiclab/sdk/square"
)

func squareResult(cells []uint32, order int, attempts int) *buf.SquareResult {
	return &buf.SquareResult{
		PresetName: "classic",
		PresetId:   1,
		Class:      "odd",
		Attempts:   attempts,
		Square:     &square.Square{Order: order, Cells: cells},
	}
}

func TestSquareRecorderCounts(t *testing.T) {
	r, err := recorder.NewSquareRecorder("classic", 1, 3, 5, false)
	if err != nil {
		t.Fatalf("new recorder: %v", err)
	}

	lo := []uint32{8, 1, 6, 3, 5, 7, 4, 9, 2}
	r.Record(squareResult(lo, 3, 1), true, time.Millisecond)
	r.Record(squareResult(lo, 3, 1), true, time.Millisecond) // duplicate fingerprint
	r.Record(squareResult([]uint32{1, 2, 3, 4, 5, 6, 7, 8, 9}, 3, 2), false, time.Millisecond)
	r.RecordFailure(5, "odd")

	rep := r.Done()
	rep.Done()

	if rep.Summary.Rounds != 4 || rep.Summary.Valid != 2 || rep.Summary.Invalid != 1 || rep.Summary.Failed != 1 {
		t.Fatalf("summary counts wrong: %+v", rep.Summary)
	}
	if rep.Summary.Unique != 1 {
		t.Fatalf("duplicate boards must dedupe by fingerprint, unique=%d", rep.Summary.Unique)
	}
	if len(rep.Orders) != 2 || rep.Orders[0].Order != 3 || rep.Orders[1].Order != 5 {
		t.Fatalf("order reports must be sorted by order: %+v", rep.Orders)
	}

	total := 0
	for _, c := range rep.Dist.AttemptCollect {
		total += c
	}
	if total != 3 { // failures never reach a generator attempt bucket
		t.Fatalf("attempt distribution total got %d want 3", total)
	}
}

func TestSquareRecorderValidation(t *testing.T) {
	if _, err := recorder.NewSquareRecorder("classic", 1, 0, 5, false); err == nil {
		t.Fatalf("min order < 1 must fail")
	}
	if _, err := recorder.NewSquareRecorder("classic", 1, 5, 3, false); err == nil {
		t.Fatalf("max order < min order must fail")
	}
}

func TestMergeSquareRecorder(t *testing.T) {
	a, _ := recorder.NewSquareRecorder("classic", 1, 3, 3, true)
	b, _ := recorder.NewSquareRecorder("classic", 1, 3, 3, true)

	lo := []uint32{8, 1, 6, 3, 5, 7, 4, 9, 2}
	rot := []uint32{6, 7, 2, 1, 5, 9, 8, 3, 4}
	a.Record(squareResult(lo, 3, 1), true, 2*time.Millisecond)
	b.Record(squareResult(rot, 3, 1), true, 4*time.Millisecond)
	b.Record(squareResult(lo, 3, 1), true, 6*time.Millisecond)

	m, err := recorder.MergeSquareRecorder([]*recorder.SquareRecorder{a, b})
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	rep := m.Done()
	if rep.Summary.Rounds != 3 || rep.Summary.Unique != 2 {
		t.Fatalf("merged counts wrong: %+v", rep.Summary)
	}
	if got := len(m.TimingMs()); got != 3 {
		t.Fatalf("merged timing samples got %d want 3", got)
	}

	c, _ := recorder.NewSquareRecorder("other", 2, 3, 3, true)
	if _, err := recorder.MergeSquareRecorder([]*recorder.SquareRecorder{a, c}); err == nil {
		t.Fatalf("different presets must not merge")
	}
}
