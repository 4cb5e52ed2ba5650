package worker

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/servvia/trust/internal/model"
	"github.com/servvia/trust/internal/pipeline"
)

// Verifier runs a single verification request through the pipeline.
type Verifier interface {
	Verify(ctx context.Context, req pipeline.Request) (*model.Report, error)
}

// VerifyJob pairs one request with the verifier that will run it.
type VerifyJob struct {
	Index    int
	Request  pipeline.Request
	Verifier Verifier
}

// Execute runs the verification job.
func (j *VerifyJob) Execute(ctx context.Context) Result {
	report, err := j.Verifier.Verify(ctx, j.Request)
	if err != nil {
		return &VerifyResult{
			Index:   j.Index,
			Request: j.Request,
			Error:   err,
		}
	}
	return &VerifyResult{
		Index:   j.Index,
		Request: j.Request,
		Report:  report,
	}
}

// VerifyResult is the outcome of one batch entry.
type VerifyResult struct {
	Index   int
	Request pipeline.Request
	Report  *model.Report
	Error   error
}

// GetError returns the error from the verification result.
func (r *VerifyResult) GetError() error {
	return r.Error
}

// BatchProcessor verifies multiple requests concurrently.
type BatchProcessor struct {
	verifier    Verifier
	concurrency int
}

// NewBatchProcessor creates a new batch processor.
func NewBatchProcessor(verifier Verifier, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		verifier:    verifier,
		concurrency: concurrency,
	}
}

// ProcessRequests verifies requests concurrently. Results come back in
// input order regardless of completion order.
func (b *BatchProcessor) ProcessRequests(ctx context.Context, reqs []pipeline.Request) []*VerifyResult {
	if len(reqs) == 0 {
		return []*VerifyResult{}
	}

	pool := NewPool(b.concurrency)
	pool.Start()

	for i, req := range reqs {
		pool.Submit(&VerifyJob{
			Index:    i,
			Request:  req,
			Verifier: b.verifier,
		})
	}

	results := pool.Wait()

	verifyResults := make([]*VerifyResult, len(results))
	for i, result := range results {
		verifyResults[i] = result.(*VerifyResult)
	}
	sort.Slice(verifyResults, func(i, j int) bool {
		return verifyResults[i].Index < verifyResults[j].Index
	})

	return verifyResults
}

// ProcessFile reads requests from a JSONL file and verifies them concurrently.
func (b *BatchProcessor) ProcessFile(ctx context.Context, filePath string) ([]*VerifyResult, error) {
	reqs, err := ReadRequestsFromFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("read requests: %w", err)
	}

	return b.ProcessRequests(ctx, reqs), nil
}

// ReadRequestsFromFile reads verification requests from a file, one JSON
// object per line. Blank lines and lines starting with # are skipped.
func ReadRequestsFromFile(filePath string) ([]pipeline.Request, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var reqs []pipeline.Request
	lineNum := 0

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024) // pasted responses can be long
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		var req pipeline.Request
		if err := json.Unmarshal([]byte(line), &req); err != nil {
			return nil, fmt.Errorf("line %d: parse request: %w", lineNum, err)
		}
		if strings.TrimSpace(req.Query) == "" && strings.TrimSpace(req.Response) == "" {
			return nil, fmt.Errorf("line %d: request needs a query or a response", lineNum)
		}

		reqs = append(reqs, req)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return reqs, nil
}
