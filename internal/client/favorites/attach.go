package favorites

import (
	"context"

	"github.com/dmitrijs2005/bookcase/internal/client/models"
	"github.com/dmitrijs2005/bookcase/internal/client/session"
)

type Publisher interface {
	Subscribe(fn session.Subscriber) (unsubscribe func())
}

// Attach keeps st in step with the published session: it starts a
// background load once a session is published and resets when the session
// goes away. The subscriber itself never waits on the network. detach
// unsubscribes and waits for a pending load.
func (st *State) Attach(ctx context.Context, p Publisher) (detach func()) {
	unsubscribe := p.Subscribe(func(s session.State) {
		if s.IsLoading {
			return
		}
		if !s.IsAuthenticated() {
			st.Reset()
			return
		}
		if st.current() == s.Session {
			return
		}
		st.Prefetch(ctx, s.Session)
	})
	return func() {
		unsubscribe()
		_ = st.Wait(context.Background())
	}
}

func (st *State) current() *models.Session {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.session
}
