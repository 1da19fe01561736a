// Package index 提供服務主頁（landing page）。
// 只列出可用的 endpoints，不帶任何狀態。
package index

import "net/http"

const indexHTML = `<!doctype html>
<html lang="zh-Hant">
<head>
  <meta charset="utf-8" />
  <link rel="icon" type="image/svg+xml" href="/favicon.svg" />
  <title>MagicLab</title>
  <style>
    body { font-family: -apple-system,BlinkMacSystemFont,"Segoe UI",sans-serif; background:#0f172a; color:#e2e8f0; margin:0; }
    .wrap { max-width: 720px; margin: 48px auto; padding: 20px 24px; background:#111827; border:1px solid #1f2937; border-radius:12px; }
    h1 { margin: 0 0 8px; font-size: 22px; }
    p { color:#94a3b8; font-size: 14px; }
    table { width:100%; border-collapse: collapse; font-size: 14px; }
    th, td { text-align:left; padding: 8px 10px; border-bottom: 1px solid #1f2937; }
    th { color:#94a3b8; font-weight: 600; }
    code { font-family: ui-monospace, SFMono-Regular, Menlo, monospace; color:#38bdf8; }
    a { color:#38bdf8; text-decoration: none; }
  </style>
</head>
<body>
  <div class="wrap">
    <h1>MagicLab</h1>
    <p>魔方陣生成與驗證服務。開發期工具見 <a href="/dev">/dev</a>。</p>
    <table>
      <tr><th>Method</th><th>Path</th><th>說明</th></tr>
      <tr><td>GET/POST</td><td><code>/v1/square</code></td><td>生成一張魔方陣（可回放）</td></tr>
      <tr><td>POST</td><td><code>/v1/verify</code></td><td>校驗呼叫端提供的盤面</td></tr>
      <tr><td>GET/POST</td><td><code>/v1/batch</code></td><td>小型批次驗證</td></tr>
      <tr><td>GET/POST</td><td><code>/v1/verifyrun</code></td><td>批次驗證（指定 seed 可重現）</td></tr>
      <tr><td>GET/POST</td><td><code>/v1/verifytiming</code></td><td>批次驗證 + 生成耗時分位數</td></tr>
      <tr><td>POST</td><td><code>/v1/verifybycfg</code></td><td>以 JSON 預設集執行批次驗證</td></tr>
      <tr><td>POST</td><td><code>/v1/stat</code></td><td>回放盤面批次並輸出統計</td></tr>
      <tr><td>GET</td><td><code>/v1/presets</code></td><td>列出已註冊預設集</td></tr>
      <tr><td>GET</td><td><code>/v1/metrics</code></td><td>ForgePool 觀測快照</td></tr>
    </table>
  </div>
</body>
</html>`

// IndexHandlerFn 回傳主頁 HTML。
func IndexHandlerFn(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(indexHTML))
}
