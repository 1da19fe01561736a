// Package dev 提供 MagicLab 的「內部 Dev Panel」HTTP endpoints。
//
// 目的（ explain the why ）：
//   - 給數學家 / 後端在開發期快速驗證：指定 Preset、Order、Seed / Snap，然後執行 Generate 或 Verify。
//   - 支援可回放（replay）：把 Snapshot（Snap）以字串形式在前端顯示，並可貼回後端做 Restore。
//
// 注意（ contract ）：
//   - 這不是 production API；它偏向 debug / tooling，行為允許更寬鬆，但仍需維持 deterministic concludes。
//   - 這裡的錯誤處理走 `httperr.Errs`（以 errs.Warn/errs.Fatal 對應 HTTP response）。
//   - Seed/Snap 的互斥與優先級由前端 + 後端共同保證（Snap takes precedence）。
package dev

import (
	"crypto/rand"
	"embed"
	"encoding/json"
	"math"
	"math/big"
	"net/http"
	"strconv"
	"strings"

	"github.com/zintix-labs/magiclab"
	"github.com/zintix-labs/magiclab/catalog"
	"github.com/zintix-labs/magiclab/errs"
	"github.com/zintix-labs/magiclab/server/httperr"
	"github.com/zintix-labs/magiclab/server/netsvr"
	"github.com/zintix-labs/magiclab/server/svrcfg"
	"github.com/zintix-labs/magiclab/spec"
)

// devRequest 是 Dev Panel 的「輸入 payload」。
//
// 兼容性（backward compatibility）：
//   - 同時保留 `order` 與簡寫 `n`（OrderAlt）。
//   - 同時保留 `samples` 與舊欄位 `rounds`。
//   - `pid` 與 `preset` 兩者擇一即可；若兩者同時存在，後端會優先使用 pid 做解析。
//
// Seed / Snap：
//   - Seed（int64 string）用於 deterministic 起始；若為空字串則自動生成（crypto/rand）。
//   - Snap（base64url string）代表 core snapshot；若提供 Snap，則後端以 Snap Restore 為準（Snap precedence）。
//
// 注意：
//   - 這個 struct 是 API 邊界用的 DTO；不要把它滲透到 generator / math domain。
type devRequest struct {
	PID      int64  `json:"pid"`
	Preset   string `json:"preset"`
	Order    *int   `json:"order"`
	OrderAlt *int   `json:"n"`
	MinOrder int    `json:"min_order"`
	MaxOrder int    `json:"max_order"`
	Samples  int    `json:"samples"`
	Rounds   int    `json:"rounds"`
	Seed     string `json:"seed"`
	Snap     string `json:"snap"`
}

// samples() 將 samples/rounds 做兼容合併：優先 samples，其次 rounds；若都未提供則回 0。
func (r devRequest) samples() int {
	if r.Samples > 0 {
		return r.Samples
	}
	if r.Rounds > 0 {
		return r.Rounds
	}
	return 0
}

// order() 將 order/n 做兼容合併：優先 order，其次 n
func (r devRequest) order() (int, bool) {
	if r.Order != nil {
		return *r.Order, true
	}
	if r.OrderAlt != nil {
		return *r.OrderAlt, true
	}
	return 0, false
}

// Register 註冊 Dev Panel 的 routes。
//
// Routes：
//   - GET  /dev         ：Dev Panel HTML（內嵌 JS）。
//   - GET  /dev/meta    ：回傳 Catalog summary（供前端下拉選單：Preset）。
//   - POST /dev/gen     ：執行 N 次 Generate 並回傳每張結果（含 start_b64u/after_b64u）。
//   - POST /dev/verify  ：執行批次驗證並回傳統計報表（不回傳逐張 results）。
//
// 依賴（dependency）：
//   - 需要 cfg.Magiclab 已被上層組裝完成並注入；否則會回 errs.Fatal。
func Register(svr netsvr.NetRouter, cfg *svrcfg.SvrCfg) {
	svr.Get("/dev", devPage)
	svr.Get("/favicon.svg", favicon)
	svr.Get("/dev/meta", devMeta(cfg))
	svr.Post("/dev/gen", devGen(cfg))
	svr.Post("/dev/verify", devVerify(cfg))
}

// devPageHTML 是內嵌的 Dev Panel UI。
//
// UI 行為（contract）：
//   - Preset：由 /dev/meta 動態載入。
//   - Seed/Snap 互斥：
//   - Snap 非空 → Seed 會被清空並 disable。
//   - Seed 非空 → Snap 會被清空並 disable。
//   - Snap takes precedence（後端也會以 Snap 為準）。
//   - Samples：
//   - Generate：前端會 cap 在 5,000 以避免回傳 payload 過大。
//   - Verify  ：前端會 cap 在 3,000,000 以避免長時間阻塞（仍屬 dev tooling）。
//
// 回傳呈現：
//   - Generate：Summary 區顯示整體統計；Results 展開後可點選查看 raw SquareResult JSON。
//   - Verify  ：僅顯示統計（statistic/stats/stat），不顯示逐張 results。
const devPageHTML = `<!doctype html>
<html lang="zh-Hant">
<head>
  <meta charset="utf-8" />
  <link rel="icon" type="image/svg+xml" href="/favicon.svg" />
  <title>MagicLab Dev</title>
  <style>
    body { font-family: -apple-system,BlinkMacSystemFont,"Segoe UI",sans-serif; background:#0f172a; color:#e2e8f0; margin:0; }
    .wrap { max-width: 980px; margin: 24px auto; padding: 16px 20px; background:#111827; border:1px solid #1f2937; border-radius:12px; box-shadow:0 12px 50px rgba(0,0,0,0.35); }
    h1 { margin: 0 0 16px; font-size: 22px; letter-spacing: 0.3px; }
    .grid { display:grid; grid-template-columns: repeat(auto-fit, minmax(180px,1fr)); gap:12px; margin-bottom:12px; }
    label { display:flex; flex-direction:column; gap:6px; font-size: 13px; color:#cbd5e1; }
    input, select { background:#0b1224; color:#e2e8f0; border:1px solid #1f2738; border-radius:8px; padding:10px 12px; font-size:14px; }
    input:focus, select:focus { outline:1px solid #38bdf8; border-color:#38bdf8; }
    .actions { position:relative; display:flex; gap:10px; align-items:center; justify-content:flex-end; margin: 8px 0 14px; }
    button { cursor:pointer; border:none; border-radius:10px; padding:10px 14px; font-weight:600; letter-spacing:0.2px; }
    #btn-gen { background:#38bdf8; color:#0b1224; }
    #btn-verify { background:#22c55e; color:#0b1224; }
    #btn-clear { background:#1f2937; color:#e2e8f0; border:1px solid #334155; }
    button:disabled { opacity:0.6; cursor:not-allowed; }
    input:disabled, select:disabled {
      opacity: 0.55;
      cursor: not-allowed;
      filter: grayscale(0.25);
    }
    label.is-disabled { opacity: 0.55; }
    label.is-disabled input, label.is-disabled select { pointer-events: none; }
    .hint { font-size: 12px; color:#94a3b8; margin-top:4px; }
    .info { position:absolute; left:50%; transform:translateX(-50%); font-size:13px; color:#94a3b8; }
    .info.warn { color:#f87171; font-weight:600; }
    #summary { background:#0b1224; border:1px solid #1f2738; border-radius:12px; padding:14px; min-height:120px; overflow:auto; font-family: ui-monospace, SFMono-Regular, Menlo, Monaco, Consolas, "Liberation Mono", "Courier New", monospace; white-space:pre-wrap; margin-bottom:12px; }
    #squaresBox { border:1px solid #1f2737; border-radius:12px; padding:10px; background:#0b1224; margin-bottom:12px; max-height: calc(60vh - 56px); overflow:auto; }
    #squareList { max-height: calc(60vh - 136px); overflow:auto; }
    .square-item { display:grid; grid-template-columns: minmax(3.5em, max-content) minmax(100px, max-content) max-content; align-items:center; column-gap:8px; width:100%; text-align:left; background:none; border:none; padding:6px 10px; color:#e2e8f0; font-family: ui-monospace, SFMono-Regular, Menlo, Monaco, Consolas, "Liberation Mono", "Courier New", monospace; cursor:pointer; border-left: 4px solid transparent; }
    .square-item:hover { background:#1f2937; border-left-color:#38bdf8; }
    .square-item.selected { background:#2563eb; border-left-color:#60a5fa; }
    .square-index { color:#94a3b8; text-align:right; justify-self:end; min-width:3.5em; font-variant-numeric: tabular-nums; }
    .square-class { text-align:right; justify-self:end; }
    .square-attempts { text-align:right; justify-self:end; font-variant-numeric: tabular-nums; }
    .retried { color:#f59e0b; font-weight:600; }
    #detail { background:#0b1224; border:1px solid #1f2738; border-radius:12px; padding:14px; min-height:220px; overflow:auto; font-family: ui-monospace, SFMono-Regular, Menlo, Monaco, Consolas, "Liberation Mono", "Courier New", monospace; white-space:pre-wrap; display:none; }
    .note { font-size:12px; color:#94a3b8; margin-top:4px; }
  </style>
</head>
<body>
  <div class="wrap">
    <h1>MagicLab Dev Panel</h1>
    <div class="grid">
      <label>Preset
        <select id="preset"></select>
      </label>
      <label>Seed (int64)
   <input id="seed" type="text" inputmode="numeric" placeholder="Empty = auto" />
      </label>
      <label>Snap(base64url)
        <input id="snap" type="text" placeholder="Paste snap (base64url)" />
      </label>
      <label>Order (n)
        <input id="order" type="number" min="1" value="5" />
      </label>
      <label>Max Order (verify)
        <input id="maxorder" type="number" min="1" value="16" />
      </label>
      <label>Samples
        <input id="samples" type="number" min="1" max="3000000" value="1" />
      </label>
    </div>
    <div class="actions">
      <button id="btn-gen">Generate</button>
      <button id="btn-verify">Verify</button>
      <button id="btn-clear">Clear</button>
      <span class="info" id="info"></span>
    </div>

    <pre id="summary"></pre>

    <details id="squaresBox" style="display:none;">
      <summary>Results</summary>
      <div id="squareList"></div>
    </details>

    <pre id="detail" style="display:none;"></pre>
  </div>
<script>
const state = { meta: null, results: [] };
const presetSel = document.getElementById('preset');
const seedInput = document.getElementById('seed');
const snapInput = document.getElementById('snap');
const orderInput = document.getElementById('order');
const maxOrderInput = document.getElementById('maxorder');
const samplesInput = document.getElementById('samples');
const summary = document.getElementById('summary');
const squaresBox = document.getElementById('squaresBox');
const squareList = document.getElementById('squareList');
const detail = document.getElementById('detail');
const infoEl = document.getElementById('info');
const btnGen = document.getElementById('btn-gen');
const btnVerify = document.getElementById('btn-verify');
const btnClear = document.getElementById('btn-clear');

function setDisabled(el, disabled) {
  el.disabled = disabled;
  const label = el.closest('label');
  if (label) label.classList.toggle('is-disabled', disabled);
}

function syncInputLocks() {
  const seedValue = seedInput.value.trim();
  const snapValue = snapInput.value.trim();

  if (snapValue !== '') {
    seedInput.value = '';
    setDisabled(seedInput, true);
    setDisabled(snapInput, false);
    return;
  }
  if (seedValue !== '') {
    snapInput.value = '';
    setDisabled(snapInput, true);
    setDisabled(seedInput, false);
    return;
  }
  setDisabled(seedInput, false);
  setDisabled(snapInput, false);
}

async function loadMeta() {
  try {
    const res = await fetch('/dev/meta');
    if (!res.ok) throw new Error(await res.text());
    const data = await res.json();
    const presets = Array.isArray(data) ? data : (data.presets || data.summary || []);
    state.meta = { presets };
    presetSel.innerHTML = '';
    state.meta.presets.forEach((p) => {
      const opt = document.createElement('option');
      const pid = p.pid ?? p.id ?? p.PID;
      opt.value = pid != null ? String(pid) : (p.name || '');
      opt.textContent = p.name || String(opt.value);
      opt.dataset.name = p.name || '';
      presetSel.appendChild(opt);
    });
    refreshOrderCap();
    summary.textContent = '';
    squaresBox.style.display = 'none';
    detail.style.display = 'none';
    setInfo('', false);
  } catch (err) {
    summary.textContent = 'Failed to load meta: ' + err.message;
  }
}

function getSelectedPreset() {
  if (!state.meta || !state.meta.presets) return null;
  const value = presetSel.value;
  return state.meta.presets.find((p) => String(p.pid ?? p.id ?? p.PID) === value)
    || state.meta.presets.find((p) => (p.name || '') === value);
}

function refreshOrderCap() {
  const pr = getSelectedPreset();
  if (!pr) return;
  const maxOrder = pr.max_order || pr.maxOrder || 0;
  if (maxOrder > 0) {
    orderInput.max = maxOrder;
    maxOrderInput.max = maxOrder;
    if (Number(maxOrderInput.value) > maxOrder) maxOrderInput.value = maxOrder;
  }
}

presetSel.addEventListener('change', refreshOrderCap);

function setInfo(text, isWarn) {
  infoEl.textContent = text;
  if (isWarn) {
    infoEl.classList.add('warn');
  } else {
    infoEl.classList.remove('warn');
  }
}

function setLoading(isLoading) {
  btnGen.disabled = isLoading;
  btnVerify.disabled = isLoading;
  if (isLoading) {
    setInfo('Running…', false);
  }
}

function clearSelection() {
  summary.textContent = '';
  squaresBox.style.display = 'none';
  detail.style.display = 'none';
  squareList.innerHTML = '';
  state.results = [];
}

function renderDetail(index) {
  if (!state.results || !state.results[index]) {
    detail.textContent = '';
    detail.style.display = 'none';
    return;
  }
  const result = state.results[index];
  detail.textContent = JSON.stringify(result, null, 2);
  detail.style.display = 'block';

  // highlight selected
  const buttons = squareList.querySelectorAll('.square-item');
  buttons.forEach((btn, idx) => {
    if (idx === index) {
      btn.classList.add('selected');
    } else {
      btn.classList.remove('selected');
    }
  });
}

function basePayload() {
  const seed = seedInput.value.trim();
  const snap = snapInput.value.trim();
  const payload = {};
  const pid = Number(presetSel.value);
  if (Number.isFinite(pid)) {
    payload.pid = pid;
  }
  const selected = getSelectedPreset();
  if (selected && selected.name) {
    payload.preset = selected.name;
  } else if (presetSel.value) {
    payload.preset = presetSel.value;
  }
  if (snap) {
    payload.snap = snap;
  } else if (seed) {
    payload.seed = seed;
  }
  return payload;
}

async function runGen() {
  setLoading(true);
  clearSelection();
  const inputSamples = Number(samplesInput.value) || 1;
  const safeSamples = Math.min(inputSamples, 5000);
  const payload = basePayload();
  payload.order = Number(orderInput.value) || 3;
  payload.n = payload.order;
  payload.samples = safeSamples;
  payload.rounds = safeSamples;
  try {
    const res = await fetch('/dev/gen', {
      method: 'POST',
      headers: { 'Content-Type': 'application/json' },
      body: JSON.stringify(payload),
    });
    if (!res.ok) throw new Error(await res.text());
    const data = await res.json();

    const summaryObj = { ...data };
    delete summaryObj.results;
    summary.textContent = JSON.stringify(summaryObj, null, 2);

    if (inputSamples > 5000) {
      setInfo('Generate records are capped at 5,000 squares.', true);
    } else {
      setInfo('', false);
    }

    const results = Array.isArray(data.results) ? data.results : [];
    if (results.length > 0) {
      state.results = results;
      squareList.innerHTML = '';
      results.forEach((sq, idx) => {
        const cls = sq.class || '';
        const attempts = (typeof sq.attempts === 'number') ? sq.attempts : 1;
        const retried = attempts > 1;
        const btn = document.createElement('button');
        btn.type = 'button';
        btn.className = 'square-item';
        btn.textContent = '';
        const idxSpan = document.createElement('span');
        idxSpan.className = 'square-index';
        idxSpan.textContent = '#' + (idx + 1);
        const clsSpan = document.createElement('span');
        clsSpan.className = 'square-class';
        clsSpan.textContent = 'n=' + sq.n + ' ' + cls;
        const attSpan = document.createElement('span');
        attSpan.className = 'square-attempts' + (retried ? ' retried' : '');
        attSpan.textContent = 'attempts=' + attempts;
        btn.appendChild(idxSpan);
        btn.appendChild(clsSpan);
        btn.appendChild(attSpan);
        btn.title = 'Square ' + (idx + 1) + ' | n=' + sq.n + (retried ? ' | retried' : '');
        btn.addEventListener('click', () => {
          renderDetail(idx);
        });
        squareList.appendChild(btn);
      });
      squaresBox.style.display = 'block';
      renderDetail(0);
    } else {
      squaresBox.style.display = 'none';
      detail.style.display = 'none';
      state.results = [];
    }
  } catch (err) {
    summary.textContent = 'Request failed: ' + err.message;
    setInfo('', false);
  } finally {
    setLoading(false);
  }
}

async function runVerify() {
  setLoading(true);
  clearSelection();
  const inputSamples = Number(samplesInput.value) || 1;
  const safeSamples = Math.min(inputSamples, 3000000);
  const payload = basePayload();
  payload.min_order = Number(orderInput.value) || 1;
  payload.max_order = Number(maxOrderInput.value) || payload.min_order;
  payload.samples = safeSamples;
  payload.rounds = safeSamples;
  try {
    const res = await fetch('/dev/verify', {
      method: 'POST',
      headers: { 'Content-Type': 'application/json' },
      body: JSON.stringify(payload),
    });
    if (!res.ok) throw new Error(await res.text());
    const data = await res.json();
    const summaryObj = data.statistic || data.stats || data.stat || data;
    summary.textContent = JSON.stringify(summaryObj, null, 2);
    if (inputSamples > 3000000) {
      setInfo('Verify statistics are capped at 3,000,000 samples.', true);
    } else {
      setInfo('', false);
    }
  } catch (err) {
    summary.textContent = 'Request failed: ' + err.message;
    setInfo('', false);
  } finally {
    setLoading(false);
  }
}

btnGen.addEventListener('click', runGen);
btnVerify.addEventListener('click', runVerify);
btnClear.addEventListener('click', () => {
  clearSelection();
  setInfo('', false);
});
seedInput.addEventListener('input', syncInputLocks);
snapInput.addEventListener('input', syncInputLocks);

syncInputLocks();
loadMeta();
</script>
</body>
</html>`

// devPage 回傳內嵌 HTML（single page）。這裡不做 templating，降低 dev tool 維護成本。
func devPage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(devPageHTML))
}

// favicon 提供 Dev Panel 的 favicon.svg。
func favicon(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Write([]byte(faviconSVG))
}

// devMeta 回傳 Catalog summary（JSON）。
//
// 前端依賴欄位：
//   - pid / id / PID
//   - name
//   - max_order / maxOrder
func devMeta(cfg *svrcfg.SvrCfg) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		lab, ok := getMagiclab(cfg)
		if !ok {
			httperr.Errs(w, errs.NewFatal("magiclab is required"))
			return
		}
		sum, err := lab.Summary()
		if err != nil {
			httperr.Errs(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(sum)
	}
}

// devGen 執行「可回放」的 Generate。
//
// 流程（high level）：
//  1. decode devRequest（JSON body）
//  2. resolve preset（pid/name）→ catalog.Summary
//  3. resolve order（by order or n）
//  4. resolve seed（empty = auto）
//  5. 建立 DevForge → Generates() 或 RestoreGenerates()
//
// Snap precedence：若 snap 非空，會走 RestoreGenerates(snap, ...)。
func devGen(cfg *svrcfg.SvrCfg) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		req := new(devRequest)
		if err := json.NewDecoder(r.Body).Decode(req); err != nil {
			httperr.Errs(w, errs.NewWarn("invalid json:"+err.Error()))
			return
		}
		lab, ok := getMagiclab(cfg)
		if !ok {
			httperr.Errs(w, errs.NewFatal("magiclab is required"))
			return
		}
		sum, err := resolveSummary(lab, req)
		if err != nil {
			httperr.Errs(w, err)
			return
		}
		round := req.samples()
		if round < 1 {
			httperr.Errs(w, errs.NewWarn("samples is required"))
			return
		}
		order, err := resolveOrder(sum, req)
		if err != nil {
			httperr.Errs(w, err)
			return
		}
		snap := strings.TrimSpace(req.Snap)
		seed, err := resolveSeed(req.Seed)
		if err != nil {
			httperr.Errs(w, err)
			return
		}
		forge, err := lab.NewDevForge(sum.PID, seed)
		if err != nil {
			httperr.Errs(w, err)
			return
		}
		var report magiclab.DevGenReport
		if snap != "" {
			report, err = forge.RestoreGenerates(snap, order, round)
		} else {
			report, err = forge.Generates(order, round)
		}
		if err != nil {
			httperr.Errs(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(report)
	}
}

// devVerify 執行批次驗證（batch verify）。
//
// 和 devGen 的差異：
//   - devVerify 不回逐張 results（降低 response size），僅回 DevVerifyReport（statistic）。
//   - 若提供 snap，會走 RestoreVerify(snap, ...)。
func devVerify(cfg *svrcfg.SvrCfg) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		req := new(devRequest)
		if err := json.NewDecoder(r.Body).Decode(req); err != nil {
			httperr.Errs(w, errs.NewWarn("invalid json:"+err.Error()))
			return
		}
		lab, ok := getMagiclab(cfg)
		if !ok {
			httperr.Errs(w, errs.NewFatal("magiclab is required"))
			return
		}
		sum, err := resolveSummary(lab, req)
		if err != nil {
			httperr.Errs(w, err)
			return
		}
		samples := req.samples()
		if samples < 1 {
			httperr.Errs(w, errs.NewWarn("samples is required"))
			return
		}
		minOrder := req.MinOrder
		if minOrder < 1 {
			minOrder = 1
		}
		maxOrder := req.MaxOrder
		if maxOrder < minOrder {
			httperr.Errs(w, errs.NewWarn("max_order must >= min_order"))
			return
		}
		snap := strings.TrimSpace(req.Snap)
		seed, err := resolveSeed(req.Seed)
		if err != nil {
			httperr.Errs(w, err)
			return
		}
		forge, err := lab.NewDevForge(sum.PID, seed)
		if err != nil {
			httperr.Errs(w, err)
			return
		}
		var report magiclab.DevVerifyReport
		if snap != "" {
			report, err = forge.RestoreVerify(snap, minOrder, maxOrder, samples)
		} else {
			report, err = forge.Verify(minOrder, maxOrder, samples)
		}
		if err != nil {
			httperr.Errs(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(report)
	}
}

// getMagiclab 從 server config 取得已組裝的 Magiclab instance。
// Dev routes 不負責組裝（assembler），只負責使用（runtime entry）。
func getMagiclab(cfg *svrcfg.SvrCfg) (*magiclab.Magiclab, bool) {
	if cfg == nil || cfg.Magiclab == nil {
		return nil, false
	}
	return cfg.Magiclab, true
}

// resolveSummary 解析使用者指定的預設集：
//   - 若 pid > 0：以 pid 精準匹配（fast path）。
//   - 否則若 preset(name) 非空：先做 case-insensitive name 匹配；也允許把 preset 當作數字字串解析成 pid。
//
// 回傳 catalog.Summary 作為後續 Order 上限的依據。
func resolveSummary(lab *magiclab.Magiclab, req *devRequest) (catalog.Summary, error) {
	sums, err := lab.Summary()
	if err != nil {
		return catalog.Summary{}, err
	}
	if req.PID > 0 {
		pid := spec.PID(req.PID)
		for _, s := range sums {
			if s.PID == pid {
				return s, nil
			}
		}
		return catalog.Summary{}, errs.NewWarn("pid not found")
	}
	name := strings.TrimSpace(req.Preset)
	if name != "" {
		for _, s := range sums {
			if strings.EqualFold(s.Name, name) {
				return s, nil
			}
		}
		if pid, err := strconv.ParseUint(name, 10, 64); err == nil {
			sp := spec.PID(pid)
			for _, s := range sums {
				if s.PID == sp {
					return s, nil
				}
			}
		}
		return catalog.Summary{}, errs.NewWarn("preset not found")
	}
	return catalog.Summary{}, errs.NewWarn("preset is required")
}

// resolveOrder 決定要生成的階數：
//   - 必須提供 order（或簡寫 n）。
//   - 檢查 1 <= n <= summary.MaxOrder。
func resolveOrder(sum catalog.Summary, req *devRequest) (int, error) {
	n, ok := req.order()
	if !ok {
		return 0, errs.NewWarn("order is required")
	}
	if n < 1 {
		return 0, errs.NewWarn("order must >= 1")
	}
	if sum.MaxOrder > 0 && n > sum.MaxOrder {
		return 0, errs.NewWarn("order out of range")
	}
	return n, nil
}

// resolveSeed 解析 seed（int64 string）。
//   - 空字串：自動生成 seed（crypto/rand），方便快速測試。
//   - 非空：必須為合法 int64。
func resolveSeed(seed string) (int64, error) {
	seed = strings.TrimSpace(seed)
	if seed == "" {
		return randomSeed()
	}
	v, err := strconv.ParseInt(seed, 10, 64)
	if err != nil {
		return 0, errs.NewWarn("seed must be int64")
	}
	return v, nil
}

// randomSeed 使用 crypto/rand 產生 [0, MaxInt64) 的種子。
// 目的：避免 math/rand 的 deterministic 來源造成 seed 品質偏差（dev tool 也要可依賴）。
func randomSeed() (int64, error) {
	rnd, err := rand.Int(rand.Reader, big.NewInt(math.MaxInt64))
	if err != nil {
		return 0, errs.NewWarn("seed generate failed")
	}
	return rnd.Int64(), nil
}

//go:embed favicon.svg
var faviconSVG string

// keep embed imported even if only used for directives
var _ embed.FS
