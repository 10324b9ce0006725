package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/pprof"
	"time"

	"hextactics-server/internal/domain"
	"hextactics-server/internal/engine"
	"hextactics-server/internal/version"
	"hextactics-server/pkg/api"
	"hextactics-server/pkg/logger"

	"github.com/sirupsen/logrus"
)

// Максимальный размер присланного реплея
const maxReplayBody = 8 << 20

// ReplaySaver сохраняет лог завершенной сессии
type ReplaySaver interface {
	Save(session *domain.ReplaySession) (string, error)
}

type Server struct {
	Engine  *engine.GameService
	Replays ReplaySaver // nil - реплеи не сохраняются
	Addr    string

	log *logrus.Entry
}

func New(engine *engine.GameService, replays ReplaySaver, addr string) *Server {
	return &Server{
		Engine:  engine,
		Replays: replays,
		Addr:    addr,
		log:     logger.Component("server"),
	}
}

// Handler собирает роуты
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/ws", enableCORS(s.handleWS))
	mux.HandleFunc("/verify", enableCORS(s.handleVerify))
	mux.HandleFunc("/health", enableCORS(s.handleHealth))
	mux.HandleFunc("/version", enableCORS(s.handleVersion))

	NewDebugHandler(s.Engine).RegisterRoutes(mux)

	// Profiling
	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	return mux
}

// Run запускает HTTP сервер и останавливает его по ctx
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Infof("HexTactics server running on %s", s.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func enableCORS(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Разрешаем запросы с фронтенда
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next(w, r)
	}
}

// handleWS обрабатывает подключение по WebSocket
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.WithError(err).Error("Upgrade error")
		return
	}

	client := NewClient(s, conn)

	// Запускаем пампы
	go client.writePump()
	go client.readPump(r.Context())
}

// handleVerify - POST /verify: реплей в JSON, ответ - вердикт
func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var session domain.ReplaySession
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxReplayBody))
	if err := dec.Decode(&session); err != nil {
		http.Error(w, "malformed replay: "+err.Error(), http.StatusBadRequest)
		return
	}
	if session.Seed == "" {
		http.Error(w, "seed is required", http.StatusBadRequest)
		return
	}

	v, err := s.Engine.Verify(r.Context(), session)
	if err != nil {
		s.log.WithError(err).Error("Verification failed")
		http.Error(w, "verification failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, VerdictResponse(v))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, version.Info())
}

// VerdictResponse переводит вердикт в DTO протокола
func VerdictResponse(v domain.Verdict) api.VerifyResponse {
	return api.VerifyResponse{
		Type:     api.TypeVerdict,
		ID:       v.ID,
		Valid:    v.Valid,
		Reason:   v.Reason,
		Index:    v.Index,
		Stats:    json.RawMessage(v.Stats),
		Digest:   v.Digest,
		Turn:     v.Turn,
		Phase:    v.Phase,
		Applied:  v.Applied,
		Rejected: v.Rejected,
	}
}
