package v1

import (
	"encoding/json"
	"net/http"

	"github.com/zintix-labs/magiclab/recorder"
	"github.com/zintix-labs/magiclab/sdk/buf"
	"github.com/zintix-labs/magiclab/sdk/gen"
	"github.com/zintix-labs/magiclab/sdk/square"
	"github.com/zintix-labs/magiclab/sdk/verify"
)

type DistStat struct {
	// 批次來源描述
	PresetName string `json:"preset_name"`
	// 呼叫端回放的盤面
	Orders   []int      `json:"orders"`
	Boards   [][]uint32 `json:"boards"`
	Attempts []int      `json:"attempts,omitempty"`
}

// Stat 回放呼叫端提供的盤面批次，逐張重驗後輸出統計報表。
// 盤面來源不限定本服務，所以每張都走獨立校驗器，不信任任何附帶結論。
func Stat(w http.ResponseWriter, r *http.Request) {
	// Post方法限定
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	// 嘗試解析
	dst := new(DistStat)
	r.Body = http.MaxBytesReader(w, r.Body, 8<<20) // 8MB
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// 對齊張數
	round := min(len(dst.Orders), len(dst.Boards))
	if round < 1 {
		http.Error(w, "boards must > 0", http.StatusBadRequest)
		return
	}

	// 求階數範圍，才能構造 SquareRecorder
	minOrder, maxOrder := dst.Orders[0], dst.Orders[0]
	for _, n := range dst.Orders[:round] {
		if n < 1 {
			http.Error(w, "order must >= 1", http.StatusBadRequest)
			return
		}
		minOrder = min(minOrder, n)
		maxOrder = max(maxOrder, n)
	}

	rec, err := recorder.NewSquareRecorder(dst.PresetName, 0, minOrder, maxOrder, false)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// 重複使用 SquareResult 殼 (presence table 也跟著重用)
	v := verify.New()
	sr := &buf.SquareResult{
		PresetName: dst.PresetName,
		Square:     new(square.Square),
	}
	for i := 0; i < round; i++ {
		n := dst.Orders[i]
		sr.Class = gen.ClassName(gen.Classify(n))
		sr.Attempts = 1
		if i < len(dst.Attempts) && dst.Attempts[i] > 0 {
			sr.Attempts = dst.Attempts[i]
		}
		sr.Square.Order = n
		sr.Square.Cells = dst.Boards[i]
		// 紀錄
		rec.Record(sr, v.Check(n, dst.Boards[i]), 0)
	}
	st := rec.Done()
	st.Done()
	if err := json.NewEncoder(w).Encode(st); err != nil {
		http.Error(w, err.Error(), http.StatusForbidden)
		return
	}
}
