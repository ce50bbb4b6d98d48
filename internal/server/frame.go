package server

import (
	"fmt"
	"net/http"
)

const frameTemplate = `<!DOCTYPE html>
<html>
  <head>
    <title>Unfollow Tool</title>
    <meta property="og:title" content="Unfollow Tool" />
    <meta property="og:description" content="Unfollow on Farcaster - Analyze your follows and identify who to unfollow" />
    <meta property="og:image" content="%[1]s/thumbnail.png" />
    <meta property="fc:frame" content="vNext" />
    <meta property="fc:frame:image" content="%[1]s/thumbnail.png" />
    <meta property="fc:frame:button:1" content="Try Unfollow Tool" />
    <meta property="fc:frame:post_url" content="%[1]s/embed" />
  </head>
  <body>
    <h1>Unfollow Tool</h1>
    <p>Analyze your follows and identify who to unfollow</p>
    <a href="%[1]s/embed">Try the tool</a>
  </body>
</html>
`

// HandleFrame serves the Farcaster frame embed metadata
func (h *Handlers) HandleFrame(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	fmt.Fprintf(w, frameTemplate, h.cfg.Server.PublicURL)
}
