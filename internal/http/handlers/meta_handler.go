// Meta HTTP handlers.
//
// This file exposes the informational endpoints that sit outside the API
// namespace:
//   - GET /            (static status message)
//   - GET /playground  (self-contained HTML demo page)
//
// The playground is a deliberately tiny single-file page that posts to
// /agent/chat so the service can be demoed without any separate front-end.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RootResponse is the static status payload served at "/".
type RootResponse struct {
	Message string `json:"message" example:"JP Drama Agent API is running."`
}

// Root godoc
// @ID          root
// @Summary     API status message
// @Description Returns a static message confirming the API is up.
// @Tags        Meta
// @Produce     json
// @Success     200  {object}  handlers.RootResponse
// @Router      / [get]
func (h *Handlers) Root(c *gin.Context) {
	ok(c, http.StatusOK, RootResponse{Message: "JP Drama Agent API is running."})
}

// Playground godoc
// @ID          playground
// @Summary     Interactive demo page
// @Description Serves a minimal HTML page for trying the chat endpoint in a browser.
// @Tags        Meta
// @Produce     html
// @Success     200  {string}  string  "HTML page"
// @Router      /playground [get]
func (h *Handlers) Playground(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(playgroundHTML))
}

// playgroundHTML is the embedded demo page. It lists every selectable persona
// mode and posts to /agent/chat with a fixed demo identity, so the daily
// quota behavior is visible from the page itself.
const playgroundHTML = `<!DOCTYPE html>
<html lang="zh-cn">
<head>
  <meta charset="UTF-8" />
  <title>JP Drama Agent Demo</title>
  <style>
    body { font-family: system-ui, -apple-system, BlinkMacSystemFont, sans-serif;
           max-width: 720px; margin: 40px auto; padding: 0 16px; }
    h1 { font-size: 22px; margin-bottom: 4px; }
    p.desc { font-size: 13px; color: #666; margin-top: 0; }
    label { display: block; margin-top: 16px; font-weight: 600; font-size: 14px; }
    select, textarea, button {
      width: 100%; margin-top: 6px; padding: 8px;
      font-size: 14px; border-radius: 6px; border: 1px solid #ddd;
      box-sizing: border-box;
    }
    button {
      margin-top: 14px; background: #111827; color: #fff; border: none;
      cursor: pointer; font-weight: 600;
    }
    button:disabled { opacity: .6; cursor: default; }
    .msg {
      margin-top: 10px; padding: 10px; min-height: 60px;
      border-radius: 6px; border: 1px solid #eee;
      white-space: pre-wrap; font-size: 14px; background: #fafafa;
    }
  </style>
</head>
<body>
  <h1>JP Drama Agent</h1>
  <p class="desc">选择模式，输入内容，直接体验日剧场景下的日语老师或陪伴角色。每个用户每天有免费对话额度。</p>

  <label>模式 Mode</label>
  <select id="mode">
    <option value="daily">日常生活会话（便利店、车站、打工场景）</option>
    <option value="office">职场敬语（邮件、会议、接待用语）</option>
    <option value="medical">就医沟通（症状描述、药局对话）</option>
    <option value="comfort_soft">软萌陪伴聊天（治愈陪聊＋顺手教日语）</option>
    <option value="comfort_steady">沉稳陪伴聊天（大人系安心感）</option>
  </select>

  <label>你的输入</label>
  <textarea id="input" rows="3"
    placeholder="例如：教我一个在便利店常用的自然问句；或：今天有点累，用日语安慰我一下。"></textarea>

  <button id="send">发送</button>

  <label>AI 回复</label>
  <div id="reply" class="msg"></div>

  <script>
    const endpoint = "/agent/chat";
    const sendBtn = document.getElementById("send");
    const inputEl = document.getElementById("input");
    const modeEl = document.getElementById("mode");
    const replyEl = document.getElementById("reply");

    async function send() {
      const text = inputEl.value.trim();
      if (!text) return;
      const mode = modeEl.value;
      replyEl.textContent = "思考中 / 考え中...";
      sendBtn.disabled = true;
      try {
        const res = await fetch(endpoint, {
          method: "POST",
          headers: { "Content-Type": "application/json" },
          body: JSON.stringify({
            user_id: "web-demo",
            mode,
            message: text
          })
        });
        const data = await res.json();
        replyEl.textContent = data.reply || data.message || JSON.stringify(data, null, 2);
      } catch (e) {
        replyEl.textContent = "出错了：" + e;
      } finally {
        sendBtn.disabled = false;
      }
    }

    sendBtn.addEventListener("click", send);
    inputEl.addEventListener("keydown", (e) => {
      if (e.key === "Enter" && (e.metaKey || e.ctrlKey)) {
        send();
      }
    });
  </script>
</body>
</html>
`
