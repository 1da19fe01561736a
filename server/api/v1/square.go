package v1

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/zintix-labs/magiclab"
	"github.com/zintix-labs/magiclab/dto"
	"github.com/zintix-labs/magiclab/errs"
	"github.com/zintix-labs/magiclab/server/httperr"
	"github.com/zintix-labs/magiclab/server/svrcfg"
)

func (c *SquareHandler) Square(w http.ResponseWriter, q *http.Request) {
	// 請求方法、結構體校驗
	if q.Method != http.MethodGet && q.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	req, err := dto.DecodeSquareRequest(q)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	// 請求解析完成，設置超時 context
	ctx := q.Context()
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	// 開始 Generate
	result, err := c.rt.Generate(ctx, req)
	if err != nil {
		httperr.Errs(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(result); err != nil {
		httperr.Errs(w, err)
		return
	}
}

// Verify 對呼叫端提供的盤面做無狀態校驗。
func (c *SquareHandler) Verify(w http.ResponseWriter, q *http.Request) {
	wire, err := dto.DecodeVerifyRequest(q)
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	result, err := c.rt.Verify(wire.Parse())
	if err != nil {
		httperr.Errs(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(result); err != nil {
		httperr.Errs(w, err)
		return
	}
}

// Batch 對單一預設集跑一輪小型批次驗證。
func (c *SquareHandler) Batch(w http.ResponseWriter, q *http.Request) {
	if q.Method != http.MethodGet && q.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	wire, err := dto.DecodeBatchRequest(q)
	if err != nil {
		httperr.Errs(w, err)
		return
	}

	// 批次驗證比單張生成重，給較寬的超時
	ctx := q.Context()
	ctx, cancel := context.WithTimeout(ctx, 60*time.Second)
	defer cancel()

	report, err := c.rt.Batch(ctx, wire.Parse())
	if err != nil {
		httperr.Errs(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(report); err != nil {
		httperr.Errs(w, err)
		return
	}
}

// Presets 列出所有已註冊預設集的摘要。
func (c *SquareHandler) Presets(w http.ResponseWriter, q *http.Request) {
	sum, err := c.rt.Lab().Summary()
	if err != nil {
		httperr.Errs(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(sum); err != nil {
		httperr.Errs(w, err)
		return
	}
}

// Metrics 回傳所有 ForgePool 的觀測快照。
func (c *SquareHandler) Metrics(w http.ResponseWriter, q *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(c.rt.Metrics()); err != nil {
		httperr.Errs(w, err)
		return
	}
}

// ============================================================
// ** SquareHandler **
// ============================================================

type SquareHandler struct {
	rt *magiclab.SquareRuntime
}

func NewSquareHandler(sCfg *svrcfg.SvrCfg) (*SquareHandler, error) {
	rt, err := sCfg.Magiclab.BuildRuntime(sCfg.ForgeBufSize)
	if err != nil {
		return nil, errs.Wrap(err, "build square handler error")
	}
	return &SquareHandler{rt: rt}, nil
}
