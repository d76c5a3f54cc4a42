// Package worker implements background block production for the chain.
package worker

import (
	"context"
	"errors"
	"sync"

	"github.com/ardanlabs/whitelist/foundation/chain/state"
)

// Worker manages the block production workflow for the chain.
type Worker struct {
	state        *state.State
	wg           sync.WaitGroup
	shut         chan struct{}
	startProduce chan bool
	evHandler    state.EventHandler
}

// Run creates a worker, registers the worker with the state package, and
// starts up all the background processes.
func Run(st *state.State, evHandler state.EventHandler) {
	w := Worker{
		state:        st,
		shut:         make(chan struct{}),
		startProduce: make(chan bool, 1),
		evHandler:    evHandler,
	}

	// Register this worker with the state package.
	st.Worker = &w

	// Load the set of operations we need to run.
	operations := []func(){
		w.produceOperations,
	}

	// Set waitgroup to match the number of G's we need for the set
	// of operations we have.
	g := len(operations)
	w.wg.Add(g)

	// We don't want to return until we know all the G's are up and running.
	hasStarted := make(chan bool)

	// Start all the operational G's.
	for _, op := range operations {
		go func(op func()) {
			defer w.wg.Done()
			hasStarted <- true
			op()
		}(op)
	}

	// Wait for the G's to report they are running.
	for i := 0; i < g; i++ {
		<-hasStarted
	}
}

// Shutdown terminates the goroutines performing work.
func (w *Worker) Shutdown() {
	w.evHandler("worker: shutdown: started")
	defer w.evHandler("worker: shutdown: completed")

	w.evHandler("worker: shutdown: signal cancel block production")
	close(w.shut)

	w.evHandler("worker: shutdown: terminate goroutines")
	w.wg.Wait()
}

// SignalStartProduce starts a block production operation. If an operation
// is already in progress, the signal is dropped and the production loop
// re-signals itself when the mempool is still not empty.
func (w *Worker) SignalStartProduce() {
	select {
	case w.startProduce <- true:
	default:
	}
	w.evHandler("worker: SignalStartProduce: production signaled")
}

// =============================================================================

// isShutdown is used to test if a shutdown has been signaled.
func (w *Worker) isShutdown() bool {
	select {
	case <-w.shut:
		return true
	default:
		return false
	}
}

// produceOperations handles block production.
func (w *Worker) produceOperations() {
	w.evHandler("worker: produceOperations: G started")
	defer w.evHandler("worker: produceOperations: G completed")

	for {
		select {
		case <-w.startProduce:
			if !w.isShutdown() {
				w.runProduceOperation()
			}
		case <-w.shut:
			w.evHandler("worker: produceOperations: received shut signal")
			return
		}
	}
}

// runProduceOperation takes the transactions from the mempool and writes
// a new block to the database.
func (w *Worker) runProduceOperation() {
	w.evHandler("worker: runProduceOperation: started")
	defer w.evHandler("worker: runProduceOperation: completed")

	// Make sure there are transactions in the mempool.
	length := w.state.QueryMempoolLength()
	if length == 0 {
		w.evHandler("worker: runProduceOperation: no transactions to include: Txs[%d]", length)
		return
	}

	// After running a production operation, check if a new operation
	// should be signaled again.
	defer func() {
		length := w.state.QueryMempoolLength()
		if length > 0 {
			w.evHandler("worker: runProduceOperation: signal new production operation: Txs[%d]", length)
			w.SignalStartProduce()
		}
	}()

	// Create a context so the POW can be cancelled at shutdown.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		select {
		case <-w.shut:
			cancel()
		case <-ctx.Done():
		}
	}()

	block, err := w.state.ProduceBlock(ctx)
	if err != nil {
		switch {
		case errors.Is(err, state.ErrNoTransactions):
			w.evHandler("worker: runProduceOperation: WARNING: no transactions in mempool")
		case ctx.Err() != nil:
			w.evHandler("worker: runProduceOperation: CANCEL: complete")
		default:
			w.evHandler("worker: runProduceOperation: ERROR: %s", err)
		}
		return
	}

	w.evHandler("viewer: runProduceOperation: block produced: number[%d] hash[%s] txs[%d]", block.Header.Number, block.Hash(), len(block.Trans))
}
