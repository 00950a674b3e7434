package storage

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/user/rsacalc/internal/rsacore"
)

// SolveRecord is one computed demonstration, with every big integer
// as a decimal string so records survive JSON and SQL untouched.
type SolveRecord struct {
	ID         string    `json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	P          string    `json:"p"`
	Q          string    `json:"q"`
	E          string    `json:"e"`
	M          string    `json:"m"`
	N          string    `json:"n"`
	Totient    string    `json:"totient"`
	D          string    `json:"d"`
	Ciphertext string    `json:"ciphertext"`
	Decrypted  string    `json:"decrypted"`
	OK         bool      `json:"ok"`
}

func NewSolveRecord(result *rsacore.Result) *SolveRecord {
	return &SolveRecord{
		ID:         uuid.New().String(),
		CreatedAt:  time.Now(),
		P:          result.Params.P.String(),
		Q:          result.Params.Q.String(),
		E:          result.Params.E.String(),
		M:          result.Params.M.String(),
		N:          result.N.String(),
		Totient:    result.Totient.String(),
		D:          result.D.String(),
		Ciphertext: result.Ciphertext.String(),
		Decrypted:  result.Decrypted.String(),
		OK:         result.OK,
	}
}

// HistoryStore keeps solve records in memory for the web API.
type HistoryStore struct {
	mu      sync.RWMutex
	records map[string]*SolveRecord
}

func NewHistoryStore() *HistoryStore {
	return &HistoryStore{
		records: make(map[string]*SolveRecord),
	}
}

func (hs *HistoryStore) Add(record *SolveRecord) {
	hs.mu.Lock()
	defer hs.mu.Unlock()
	hs.records[record.ID] = record
}

func (hs *HistoryStore) Get(id string) (*SolveRecord, bool) {
	hs.mu.RLock()
	defer hs.mu.RUnlock()

	record, exists := hs.records[id]
	return record, exists
}

// All returns every record, newest first.
func (hs *HistoryStore) All() []*SolveRecord {
	hs.mu.RLock()
	defer hs.mu.RUnlock()

	records := make([]*SolveRecord, 0, len(hs.records))
	for _, record := range hs.records {
		records = append(records, record)
	}
	sort.Slice(records, func(i, j int) bool {
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	return records
}

func (hs *HistoryStore) Delete(id string) {
	hs.mu.Lock()
	defer hs.mu.Unlock()
	delete(hs.records, id)
}

func (hs *HistoryStore) Count() int {
	hs.mu.RLock()
	defer hs.mu.RUnlock()
	return len(hs.records)
}
