package shell

import (
	"net/http"
	"strings"

	authdomain "github.com/aiagents/collab-hub/internal/auth/domain"
	commonhttp "github.com/aiagents/collab-hub/internal/common/http"
)

func Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/shell", commonhttp.RequireMethod(http.MethodGet)(viewHandler))
}

func viewHandler(w http.ResponseWriter, r *http.Request) {
	var session *authdomain.Session
	if s, ok := authdomain.SessionFromContext(r.Context()); ok {
		session = &s
	}
	requested := Tab(strings.ToLower(strings.TrimSpace(r.URL.Query().Get("tab"))))
	commonhttp.WriteJSON(w, http.StatusOK, Build(session, requested))
}
