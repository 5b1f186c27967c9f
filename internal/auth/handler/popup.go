package handler

import (
	"html/template"

	"github.com/gin-gonic/gin"
)

// popupData drives the postMessage bridge page returned to the OAuth
// popup window. The opener receives either the session token or an
// error message, never both.
type popupData struct {
	Success bool
	Token   string
	Error   string
	Origin  string
}

var popupTemplate = template.Must(template.New("popup").Parse(`<!DOCTYPE html>
<html>
<head><title>{{if .Success}}Authentication Complete{{else}}Authentication Error{{end}}</title></head>
<body>
  <script>
    if (window.opener) {
      {{if .Success}}
      window.opener.postMessage({
        type: 'DISCORD_OAUTH_SUCCESS',
        token: {{.Token}}
      }, {{.Origin}});
      {{else}}
      window.opener.postMessage({
        type: 'DISCORD_OAUTH_ERROR',
        error: {{.Error}}
      }, {{.Origin}});
      {{end}}
      setTimeout(function() {
        window.close();
      }, 2000);
    } else {
      document.body.innerHTML = '<p>Please close this window.</p>';
    }
  </script>
  <p>{{if .Success}}Authentication successful. This window should close automatically.{{else}}Authentication failed. Please close this window and try again.{{end}}</p>
</body>
</html>
`))

func (h *Handler) renderPopup(c *gin.Context, status int, data popupData) {
	data.Origin = h.frontendOrigin

	c.Status(status)
	c.Header("Content-Type", "text/html; charset=utf-8")
	if err := popupTemplate.Execute(c.Writer, data); err != nil {
		_ = c.Error(err)
	}
}
