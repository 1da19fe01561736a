package v1

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"net/http"
	"strconv"

	"github.com/zintix-labs/magiclab"
	"github.com/zintix-labs/magiclab/errs"
	"github.com/zintix-labs/magiclab/server/httperr"
	"github.com/zintix-labs/magiclab/spec"
	"github.com/zintix-labs/magiclab/stats"
)

type VerifyHandler struct {
	Magiclab *magiclab.Magiclab
}

func NewVerifyHandler(lab *magiclab.Magiclab) (*VerifyHandler, error) {
	return &VerifyHandler{Magiclab: lab}, nil
}

func (vh *VerifyHandler) VerifyRun(w http.ResponseWriter, q *http.Request) {
	// 內部結構 不影響外部 也不被外部使用
	type VerifyRequestBody struct {
		PID      spec.PID `json:"pid"`
		MinOrder int      `json:"min_order"`
		MaxOrder int      `json:"max_order"`
		Samples  int      `json:"samples"`
		Seed     *int64   `json:"seed,omitempty"`
	}
	// 內部結構 不影響外部 也不被外部使用
	type VerifyResponse struct {
		Stats    *stats.VerifyReport `json:"stats"`
		UsedTime int64               `json:"used_ms"`
	}
	// ---
	req := new(VerifyRequestBody)
	if q.Method != http.MethodGet && q.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if q.Method == http.MethodGet {
		// pid
		if s := q.URL.Query().Get("pid"); s != "" {
			u, err := strconv.ParseUint(s, 10, 64)
			if err != nil {
				httperr.Errs(w, errs.NewWarn("pid must be non-negative integer"))
				return
			}
			req.PID = spec.PID(u)
		} else {
			// 直接空值
			httperr.Errs(w, errs.NewWarn("pid is required"))
			return
		}

		// min_order
		if m := q.URL.Query().Get("min_order"); m != "" {
			u, err := strconv.ParseInt(m, 10, 64)
			if err != nil {
				httperr.Errs(w, errs.NewWarn("min_order must be integer"))
				return
			}
			req.MinOrder = int(u)
		} else {
			req.MinOrder = 1
		}

		// max_order
		if m := q.URL.Query().Get("max_order"); m != "" {
			u, err := strconv.ParseInt(m, 10, 64)
			if err != nil {
				httperr.Errs(w, errs.NewWarn("max_order must be integer"))
				return
			}
			req.MaxOrder = int(u)
		} else {
			httperr.Errs(w, errs.NewWarn("max_order is required"))
			return
		}

		// samples
		if r := q.URL.Query().Get("samples"); r != "" {
			u, err := strconv.ParseInt(r, 10, 64)
			if err != nil {
				httperr.Errs(w, errs.NewWarn("samples must be integer"))
				return
			}
			req.Samples = int(u)
		} else {
			httperr.Errs(w, errs.NewWarn("samples is required"))
			return
		}

		// seed
		if s := q.URL.Query().Get("seed"); s != "" {
			u, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				httperr.Errs(w, errs.NewWarn("seed must be int64"))
				return
			}
			v := u
			req.Seed = &v
		}
	}
	if q.Method == http.MethodPost {
		if err := json.NewDecoder(q.Body).Decode(req); err != nil {
			httperr.Errs(w, errs.NewWarn("invalid json:"+err.Error()))
			return
		}
	}
	// 業務檢驗
	_, ok := vh.Magiclab.EntryById(req.PID)
	if !ok {
		httperr.Errs(w, errs.NewWarn("pid not found"))
		return
	}
	if req.MinOrder < 1 {
		req.MinOrder = 1
	}
	if req.Samples < 1 || req.Samples > 1000000 {
		httperr.Errs(w, errs.NewWarn("samples must be between 1 to 1,000,000"))
		return
	}
	if req.Seed == nil {
		rnd, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
		if err != nil {
			httperr.Errs(w, errs.NewWarn("seed generate failed"))
			return
		}
		v := rnd.Int64()
		req.Seed = &v
	}
	vr, err := vh.Magiclab.NewVerifierWithSeed(req.PID, *req.Seed)
	if err != nil {
		// 這裡的錯誤是來自magiclab 尊重錯誤分級
		httperr.Errs(w, errs.Wrap(err, fmt.Sprintf("build verifier err: %d", req.PID)))
		return
	}
	st, used, err := vr.Verify(req.MinOrder, req.MaxOrder, req.Samples, false)
	if err != nil {
		// 這裡的錯誤來自verifier 尊重錯誤分級
		httperr.Errs(w, errs.Wrap(err, "verify err"))
		return
	}
	resp := VerifyResponse{
		Stats:    st,
		UsedTime: used.Milliseconds(),
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

func (vh *VerifyHandler) VerifyTiming(w http.ResponseWriter, r *http.Request) {
	// 內部結構 不影響外部 也不被外部使用
	type VerifyTimingRequestBody struct {
		PID      spec.PID `json:"pid"`
		MinOrder int      `json:"min_order"`
		MaxOrder int      `json:"max_order"`
		Samples  int      `json:"samples"`
		Workers  int      `json:"workers"`
		Seed     *int64   `json:"seed,omitempty"`
	}
	// 內部結構 不影響外部 也不被外部使用
	type VerifyTimingResponse struct {
		StatsReport *stats.VerifyReport    `json:"stats"`
		Estimator   *stats.EstimatorTiming `json:"est"`
		UsedTime    int64                  `json:"used_ms"`
	}
	// ---
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	req := new(VerifyTimingRequestBody)
	if r.Method == http.MethodGet {
		// pid
		if s := r.URL.Query().Get("pid"); s != "" {
			u, err := strconv.ParseUint(s, 10, 64)
			if err != nil {
				httperr.Errs(w, errs.NewWarn("pid must be non-negative integer"))
				return
			}
			req.PID = spec.PID(u)
		} else {
			httperr.Errs(w, errs.NewWarn("pid is required"))
			return
		}

		// min_order
		if m := r.URL.Query().Get("min_order"); m != "" {
			u, err := strconv.Atoi(m)
			if err != nil {
				httperr.Errs(w, errs.NewWarn("min_order must be integer"))
				return
			}
			req.MinOrder = u
		} else {
			req.MinOrder = 1
		}

		// max_order
		if m := r.URL.Query().Get("max_order"); m != "" {
			u, err := strconv.Atoi(m)
			if err != nil {
				httperr.Errs(w, errs.NewWarn("max_order must be integer"))
				return
			}
			req.MaxOrder = u
		} else {
			httperr.Errs(w, errs.NewWarn("max_order is required"))
			return
		}

		// samples
		if s := r.URL.Query().Get("samples"); s != "" {
			u, err := strconv.Atoi(s)
			if err != nil {
				httperr.Errs(w, errs.NewWarn("samples must be integer"))
				return
			}
			req.Samples = u
		} else {
			httperr.Errs(w, errs.NewWarn("samples is required"))
			return
		}

		// workers
		if s := r.URL.Query().Get("workers"); s != "" {
			u, err := strconv.Atoi(s)
			if err != nil {
				httperr.Errs(w, errs.NewWarn("workers must be integer"))
				return
			}
			req.Workers = u
		} else {
			req.Workers = 4
		}

		// seed
		if s := r.URL.Query().Get("seed"); s != "" {
			u, err := strconv.ParseInt(s, 10, 64)
			if err != nil {
				httperr.Errs(w, errs.NewWarn("seed must be int64"))
				return
			}
			v := u
			req.Seed = &v
		}
	}
	if r.Method == http.MethodPost {
		if err := json.NewDecoder(r.Body).Decode(req); err != nil {
			httperr.Errs(w, errs.NewWarn("invalid json:"+err.Error()))
			return
		}
		if req.MinOrder < 1 {
			req.MinOrder = 1
		}
		if req.Workers < 1 {
			req.Workers = 4
		}
	}
	// 業務邏輯判斷
	if _, ok := vh.Magiclab.EntryById(req.PID); !ok {
		httperr.Errs(w, errs.NewWarn("pid not found"))
		return
	}
	if req.Workers < 1 || req.Workers > 64 {
		httperr.Errs(w, errs.NewWarn("workers must be between 1 and 64"))
		return
	}
	if req.Samples < 1 || req.Samples > 15000 {
		httperr.Errs(w, errs.NewWarn("samples must be between 1 and 15,000"))
		return
	}
	if req.Seed == nil {
		rnd, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
		if err != nil {
			httperr.Errs(w, errs.NewWarn("seed generate failed"))
			return
		}
		v := rnd.Int64()
		req.Seed = &v
	}
	// 取得verifier
	vr, err := vh.Magiclab.NewVerifierWithSeed(req.PID, *req.Seed)
	if err != nil {
		httperr.Errs(w, errs.Wrap(err, fmt.Sprintf("build verifier err: %d", req.PID)))
		return
	}
	st, est, used, err := vr.VerifyTiming(req.MinOrder, req.MaxOrder, req.Samples, req.Workers, false)
	if err != nil {
		httperr.Errs(w, errs.Wrap(err, fmt.Sprintf("verifier err: %d", req.PID)))
		return
	}
	resp := &VerifyTimingResponse{
		StatsReport: st,
		Estimator:   est,
		UsedTime:    used.Milliseconds(),
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
