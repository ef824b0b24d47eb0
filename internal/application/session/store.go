package session

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jhoicas/fieldservice-invoicing/internal/domain"
)

// Store sesiones abiertas en memoria. Las que superan ttl sin actividad se descartan en Sweep.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time
}

// NewStore construye el almacén. ttl <= 0 desactiva la expiración; now nil usa time.Now.
func NewStore(ttl time.Duration, now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		now:      now,
	}
}

func (st *Store) put(s *Session) {
	st.mu.Lock()
	st.sessions[s.ID()] = s
	st.mu.Unlock()
}

// Get devuelve la sesión o domain.ErrSessionNotFound.
func (st *Store) Get(id string) (*Session, error) {
	st.mu.RLock()
	s, ok := st.sessions[id]
	st.mu.RUnlock()
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return s, nil
}

// Delete quita la sesión; no falla si no existe.
func (st *Store) Delete(id string) {
	st.mu.Lock()
	delete(st.sessions, id)
	st.mu.Unlock()
}

// Len cantidad de sesiones abiertas.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// Sweep elimina las sesiones inactivas y devuelve cuántas quitó.
func (st *Store) Sweep() int {
	if st.ttl <= 0 {
		return 0
	}
	cutoff := st.now().Add(-st.ttl)
	st.mu.Lock()
	defer st.mu.Unlock()
	removed := 0
	for id, s := range st.sessions {
		if s.idleSince().Before(cutoff) {
			delete(st.sessions, id)
			removed++
		}
	}
	return removed
}

// RunSweeper ejecuta Sweep cada interval hasta que ctx termine. interval <= 0 no barre.
func (st *Store) RunSweeper(ctx context.Context, interval time.Duration, log zerolog.Logger) {
	if interval <= 0 || st.ttl <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := st.Sweep(); n > 0 {
				log.Info().Int("expired", n).Int("open", st.Len()).Msg("sesiones vencidas descartadas")
			}
		}
	}
}
