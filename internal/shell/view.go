package shell

import authdomain "github.com/aiagents/collab-hub/internal/auth/domain"

type Tab string

const (
	TabHome   Tab = "home"
	TabChat   Tab = "chat"
	TabCreate Tab = "create"
)

type View struct {
	Session *authdomain.Session `json:"session"`
	Tabs    []Tab               `json:"tabs"`
	Active  Tab                 `json:"active"`
}

// Build returns the navigation for the given session. Chat and create are
// only offered to signed-in users; asking for a tab that is not offered
// lands on home.
func Build(session *authdomain.Session, requested Tab) View {
	tabs := []Tab{TabHome}
	if session != nil && session.Valid() {
		tabs = append(tabs, TabChat, TabCreate)
	} else {
		session = nil
	}

	active := TabHome
	for _, t := range tabs {
		if t == requested {
			active = t
			break
		}
	}
	return View{Session: session, Tabs: tabs, Active: active}
}
