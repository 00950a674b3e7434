package server

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/user/rsacalc/internal/rsacore"
	"github.com/user/rsacalc/internal/storage"
	"github.com/user/rsacalc/internal/verify"
	"github.com/user/rsacalc/pkg/sysinfo"
)

type Server struct {
	router     *mux.Router
	history    *storage.HistoryStore
	db         *storage.DB
	jobStore   *JobStore
	workerPool *WorkerPool
	sysInfo    *sysinfo.SystemInfo
	upgrader   websocket.Upgrader
	port       string
}

type JobStore struct {
	mu   sync.RWMutex
	jobs map[string]*VerificationJob
}

// VerificationJob is an asynchronous property sweep submitted over
// the API.
type VerificationJob struct {
	ID          string                     `json:"id"`
	Params      SolveRequest               `json:"params"`
	Config      verify.Config              `json:"config"`
	Status      string                     `json:"status"`
	StartedAt   time.Time                  `json:"started_at"`
	UpdatedAt   time.Time                  `json:"updated_at"`
	CompletedAt *time.Time                 `json:"completed_at,omitempty"`
	Result      *verify.Result             `json:"result,omitempty"`
	Error       string                     `json:"error,omitempty"`
	Progress    chan verify.ProgressUpdate `json:"-"`
}

// SolveRequest carries RSA parameters as decimal strings; JSON
// numbers cannot hold realistic moduli.
type SolveRequest struct {
	P string `json:"p"`
	Q string `json:"q"`
	E string `json:"e"`
	M string `json:"m"`
}

type VerificationRequest struct {
	SolveRequest
	Samples        int  `json:"samples"`
	Parallel       int  `json:"parallel"`
	RandomMessages bool `json:"random_messages"`
	Timeout        int  `json:"timeout"`
}

// NewServer creates the API server. db may be nil, in which case
// solves live only in memory.
func NewServer(port string, db *storage.DB) (*Server, error) {
	return NewServerWithWorkers(port, db, 1)
}

func NewServerWithWorkers(port string, db *storage.DB, workers int) (*Server, error) {
	if workers < 1 {
		workers = 1
	}

	sysInfo, err := sysinfo.Collect()
	if err != nil {
		return nil, fmt.Errorf("failed to collect system info: %w", err)
	}

	jobStore := &JobStore{
		jobs: make(map[string]*VerificationJob),
	}

	s := &Server{
		router:   mux.NewRouter(),
		history:  storage.NewHistoryStore(),
		db:       db,
		jobStore: jobStore,
		sysInfo:  sysInfo,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		port: port,
	}

	s.workerPool = NewWorkerPool(workers, jobStore)

	s.setupRoutes()
	return s, nil
}

func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/system-info", s.handleSystemInfo).Methods("GET")
	api.HandleFunc("/solves", s.handleCreateSolve).Methods("POST")
	api.HandleFunc("/solves", s.handleListSolves).Methods("GET")
	api.HandleFunc("/solves/{id}", s.handleGetSolve).Methods("GET")
	api.HandleFunc("/solves/{id}", s.handleDeleteSolve).Methods("DELETE")
	api.HandleFunc("/solves/{id}/trace", s.handleSolveTrace).Methods("GET")
	api.HandleFunc("/verifications", s.handleCreateVerification).Methods("POST")
	api.HandleFunc("/verifications", s.handleListVerifications).Methods("GET")
	api.HandleFunc("/verifications/{id}", s.handleGetVerification).Methods("GET")
	api.HandleFunc("/verifications/{id}/terminate", s.handleTerminateVerification).Methods("POST")
	api.HandleFunc("/verifications/{id}/progress", s.handleVerificationProgress).Methods("GET")
}

func (s *Server) Start() error {
	s.workerPool.Start()

	log.Printf("rsacalc web server starting on http://localhost:%s", s.port)

	return http.ListenAndServe(":"+s.port, s.router)
}

func (s *Server) handleSystemInfo(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.sysInfo)
}

func (s *Server) handleCreateSolve(w http.ResponseWriter, r *http.Request) {
	var req SolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	params, err := rsacore.ParseParams(req.P, req.Q, req.E, req.M)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := rsacore.Solve(params)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	record := storage.NewSolveRecord(result)
	s.history.Add(record)
	if s.db != nil {
		if err := s.db.SaveSolve(record); err != nil {
			log.Printf("Failed to persist solve %s: %v", record.ID, err)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"id":     record.ID,
		"result": result,
	})
}

func (s *Server) handleListSolves(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.history.All())
}

func (s *Server) handleGetSolve(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	record, exists := s.history.Get(id)
	if !exists && s.db != nil {
		if fromDB, err := s.db.GetSolve(id); err == nil {
			record, exists = fromDB, true
		}
	}
	if !exists {
		http.Error(w, "Solve not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(record)
}

func (s *Server) handleDeleteSolve(w http.ResponseWriter, r *http.Request) {
	s.history.Delete(mux.Vars(r)["id"])
	w.WriteHeader(http.StatusNoContent)
}

// handleSolveTrace replays the extended Euclidean steps of a stored
// solve over a websocket, one frame per step, then a summary frame.
func (s *Server) handleSolveTrace(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	record, exists := s.history.Get(id)
	if !exists {
		http.Error(w, "Solve not found", http.StatusNotFound)
		return
	}

	params, err := rsacore.ParseParams(record.P, record.Q, record.E, record.M)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	_, totient := rsacore.NTotient(params.P, params.Q)
	g, x, _, steps := rsacore.ExtendedGCDSteps(params.E, totient)
	d := x.Mod(x, totient)

	for _, step := range steps {
		if err := conn.WriteJSON(map[string]any{
			"done": false,
			"step": step,
		}); err != nil {
			return
		}
	}

	conn.WriteJSON(map[string]any{
		"done":    true,
		"gcd":     g.String(),
		"totient": totient.String(),
		"d":       d.String(),
	})
}

func (s *Server) handleCreateVerification(w http.ResponseWriter, r *http.Request) {
	var req VerificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if _, err := rsacore.ParseParams(req.P, req.Q, req.E, req.M); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	job := &VerificationJob{
		ID:     uuid.New().String(),
		Params: req.SolveRequest,
		Config: verify.Config{
			Samples:        req.Samples,
			Parallel:       req.Parallel,
			RandomMessages: req.RandomMessages,
			Timeout:        req.Timeout,
		},
		Status:    "queued",
		StartedAt: time.Now(),
		UpdatedAt: time.Now(),
		Progress:  make(chan verify.ProgressUpdate, 100),
	}

	s.jobStore.mu.Lock()
	s.jobStore.jobs[job.ID] = job
	s.jobStore.mu.Unlock()

	if err := s.workerPool.Submit(job); err != nil {
		http.Error(w, "Server is busy, please try again later", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"job_id": job.ID,
		"status": "started",
	})
}

func (s *Server) handleListVerifications(w http.ResponseWriter, r *http.Request) {
	s.jobStore.mu.RLock()
	jobs := make([]*VerificationJob, 0, len(s.jobStore.jobs))
	for _, job := range s.jobStore.jobs {
		jobs = append(jobs, job)
	}
	s.jobStore.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(jobs)
}

func (s *Server) handleGetVerification(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	s.jobStore.mu.RLock()
	job, exists := s.jobStore.jobs[id]
	s.jobStore.mu.RUnlock()

	if !exists {
		http.Error(w, "Verification not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(job)
}

func (s *Server) handleTerminateVerification(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	s.jobStore.mu.Lock()
	job, exists := s.jobStore.jobs[id]
	if !exists {
		s.jobStore.mu.Unlock()
		http.Error(w, "Verification not found", http.StatusNotFound)
		return
	}
	job.Status = "terminated"
	job.UpdatedAt = time.Now()
	s.jobStore.mu.Unlock()

	s.workerPool.TerminateJob(id)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "terminated",
		"message": "Verification termination initiated",
	})
}

func (s *Server) handleVerificationProgress(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	s.jobStore.mu.RLock()
	job, exists := s.jobStore.jobs[id]
	s.jobStore.mu.RUnlock()

	if !exists {
		return
	}

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case update, ok := <-job.Progress:
			if ok {
				conn.WriteJSON(map[string]any{
					"status":     "running",
					"completed":  false,
					"current":    update.Current,
					"total":      update.Total,
					"percentage": update.Percentage,
					"rate":       update.Rate,
				})
			}
		case <-ticker.C:
			s.jobStore.mu.RLock()
			currentJob, exists := s.jobStore.jobs[id]
			status := ""
			if exists {
				status = currentJob.Status
			}
			s.jobStore.mu.RUnlock()

			if !exists {
				return
			}
			if status != "running" && status != "queued" {
				conn.WriteJSON(map[string]any{
					"status":    status,
					"completed": true,
				})
				return
			}

		case <-r.Context().Done():
			return
		}
	}
}
