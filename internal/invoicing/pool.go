package invoicing

import (
	"context"
	"sync"

	"cyvat/pkg/models"
)

// Outcome is the result of assessing one request in a batch.
type Outcome struct {
	Index   int // Position in the request slice
	Request Request
	Record  *models.TaxRecord
	Err     error
}

// Succeeded reports whether a record was produced.
func (o Outcome) Succeeded() bool {
	return o.Err == nil && o.Record != nil
}

// ProgressFunc is called once per finished request. Calls are serialized.
type ProgressFunc func(done, total int, outcome Outcome)

// AssessMany assesses requests with a fixed pool of workers. Outcomes are
// returned in request order regardless of completion order.
func (s *Service) AssessMany(ctx context.Context, requests []Request, workers int, progress ProgressFunc) []Outcome {
	if workers <= 0 {
		workers = 1
	}

	jobs := make(chan int, len(requests))
	outcomes := make([]Outcome, len(requests))

	var (
		mu   sync.Mutex
		done int
		wg   sync.WaitGroup
	)

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()

			for i := range jobs {
				req := requests[i]
				s.log.Debug().
					Int("worker", workerID).
					Int("index", i+1).
					Str("invoice_id", req.InvoiceID).
					Msg("Worker assessing invoice")

				record, err := s.Assess(ctx, req)
				outcome := Outcome{Index: i, Request: req, Record: record, Err: err}
				outcomes[i] = outcome

				mu.Lock()
				done++
				if progress != nil {
					progress(done, len(requests), outcome)
				}
				mu.Unlock()
			}
		}(w)
	}

	for i := range requests {
		jobs <- i
	}
	close(jobs)

	wg.Wait()

	return outcomes
}
