package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestServerSolveFlow(t *testing.T) {
	srv, err := NewServer("8080", nil)
	if err != nil {
		t.Fatalf("Failed to create server: %v", err)
	}

	body, _ := json.Marshal(SolveRequest{P: "61", Q: "53", E: "17", M: "65"})
	req := httptest.NewRequest("POST", "/api/v1/solves", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var response struct {
		ID     string `json:"id"`
		Result struct {
			N          json.Number `json:"n"`
			Totient    json.Number `json:"totient"`
			D          json.Number `json:"d"`
			Ciphertext json.Number `json:"ciphertext"`
			Decrypted  json.Number `json:"decrypted"`
			OK         bool        `json:"ok"`
		} `json:"result"`
	}
	if err := json.NewDecoder(w.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if response.ID == "" {
		t.Fatal("No id in response")
	}
	if response.Result.N.String() != "3233" || response.Result.D.String() != "2753" {
		t.Errorf("Unexpected result: n=%s d=%s", response.Result.N, response.Result.D)
	}
	if response.Result.Ciphertext.String() != "2790" {
		t.Errorf("Expected ciphertext 2790, got %s", response.Result.Ciphertext)
	}
	if !response.Result.OK {
		t.Error("Expected OK result for the textbook example")
	}

	// The solve should now be listed and retrievable
	req = httptest.NewRequest("GET", "/api/v1/solves", nil)
	w = httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200 listing solves, got %d", w.Code)
	}
	var records []map[string]any
	json.NewDecoder(w.Body).Decode(&records)
	if len(records) != 1 {
		t.Errorf("Expected 1 stored solve, got %d", len(records))
	}

	req = httptest.NewRequest("GET", "/api/v1/solves/"+response.ID, nil)
	w = httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200 fetching solve, got %d", w.Code)
	}

	req = httptest.NewRequest("DELETE", "/api/v1/solves/"+response.ID, nil)
	w = httptest.NewRecorder()
	srv.router.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Errorf("Expected status 204 deleting solve, got %d", w.Code)
	}
}

func TestServerRejectsBadParams(t *testing.T) {
	srv, err := NewServer("8080", nil)
	if err != nil {
		t.Fatalf("Failed to create server: %v", err)
	}

	body, _ := json.Marshal(SolveRequest{P: "sixty-one", Q: "53", E: "17", M: "65"})
	req := httptest.NewRequest("POST", "/api/v1/solves", bytes.NewBuffer(body))
	w := httptest.NewRecorder()

	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("Expected status 400, got %d", w.Code)
	}
}

func TestServerVerificationFlow(t *testing.T) {
	srv, err := NewServer("8080", nil)
	if err != nil {
		t.Fatalf("Failed to create server: %v", err)
	}
	srv.workerPool.Start()
	defer srv.workerPool.Stop()

	reqBody := VerificationRequest{
		SolveRequest: SolveRequest{P: "61", Q: "53", E: "17", M: "65"},
		Samples:      100,
		Parallel:     1,
		Timeout:      30,
	}
	body, _ := json.Marshal(reqBody)
	req := httptest.NewRequest("POST", "/api/v1/verifications", bytes.NewBuffer(body))
	w := httptest.NewRecorder()

	srv.router.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var response map[string]string
	json.NewDecoder(w.Body).Decode(&response)
	jobID, ok := response["job_id"]
	if !ok {
		t.Fatal("No job_id in response")
	}

	// Poll until the job finishes
	deadline := time.Now().Add(10 * time.Second)
	var job VerificationJob
	for {
		req = httptest.NewRequest("GET", "/api/v1/verifications/"+jobID, nil)
		w = httptest.NewRecorder()
		srv.router.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Expected status 200, got %d", w.Code)
		}
		json.NewDecoder(w.Body).Decode(&job)
		if job.Status == "completed" || job.Status == "completed_with_failures" || job.Status == "failed" {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("Verification did not finish, status %q", job.Status)
		}
		time.Sleep(50 * time.Millisecond)
	}

	if job.Status != "completed" {
		t.Fatalf("Expected completed, got %s (%s)", job.Status, job.Error)
	}
	if job.Result == nil {
		t.Fatal("Expected a result on the completed job")
	}
	if job.Result.Checked != 100 {
		t.Errorf("Expected 100 checks, got %d", job.Result.Checked)
	}
	if job.Result.Failures != 0 {
		t.Errorf("Expected 0 failures, got %d", job.Result.Failures)
	}
}
