package renderer

import (
	"runtime"
	"sync"

	"github.com/shirou/gopsutil/v3/cpu"

	"github.com/df07/go-progressive-pathtracer/pkg/core"
)

// RowFunc renders one row using the calling worker's sampler
type RowFunc func(row int, sampler core.Sampler)

// rowTask is one row of a Run call
type rowTask struct {
	row  int
	fn   RowFunc
	done *sync.WaitGroup
}

// WorkerPool runs passes fork-join style over a fixed set of workers. Each
// worker owns one sampler for its whole life, so no random stream is ever
// shared between goroutines.
type WorkerPool struct {
	taskQueue  chan rowTask
	workers    []*Worker
	numWorkers int
	wg         sync.WaitGroup
}

// Worker handles rows for the pool
type Worker struct {
	ID        int
	sampler   core.Sampler
	taskQueue chan rowTask
}

// NewWorkerPool creates and starts numWorkers workers. Worker i is seeded
// with baseSeed+i. numWorkers <= 0 uses DefaultWorkerCount.
func NewWorkerPool(numWorkers int, baseSeed int64) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = DefaultWorkerCount()
	}

	wp := &WorkerPool{
		taskQueue:  make(chan rowTask, numWorkers*4),
		numWorkers: numWorkers,
	}

	for i := 0; i < numWorkers; i++ {
		worker := &Worker{
			ID:        i,
			sampler:   core.NewSeededSampler(baseSeed + int64(i)),
			taskQueue: wp.taskQueue,
		}
		wp.workers = append(wp.workers, worker)
		wp.wg.Add(1)
		go worker.run(&wp.wg)
	}

	return wp
}

// DefaultWorkerCount returns the number of logical CPUs
func DefaultWorkerCount() int {
	if n, err := cpu.Counts(true); err == nil && n > 0 {
		return n
	}
	return runtime.NumCPU()
}

// Run calls fn for every row in [0, rows) across the workers and blocks until all rows are done
func (wp *WorkerPool) Run(rows int, fn RowFunc) {
	var done sync.WaitGroup
	done.Add(rows)
	for row := 0; row < rows; row++ {
		wp.taskQueue <- rowTask{row: row, fn: fn, done: &done}
	}
	done.Wait()
}

// Stop shuts down all workers. The pool must not be used afterwards.
func (wp *WorkerPool) Stop() {
	close(wp.taskQueue)
	wp.wg.Wait()
}

// NumWorkers returns the number of workers in the pool
func (wp *WorkerPool) NumWorkers() int {
	return wp.numWorkers
}

// run is the main worker loop
func (w *Worker) run(wg *sync.WaitGroup) {
	defer wg.Done()

	for task := range w.taskQueue {
		task.fn(task.row, w.sampler)
		task.done.Done()
	}
}
