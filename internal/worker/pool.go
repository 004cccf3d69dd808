package worker

import (
	"context"
	"sync"

	"github.com/wokaidabaoma/econ-site/internal/logger"

	"github.com/rs/zerolog"
)

// Pool runs submitted jobs on a fixed set of goroutines. Submission never
// blocks; when the queue is full the job is dropped and logged, a missed
// reminder scan is recovered by the next tick.
type Pool struct {
	workerCount int
	jobChan     chan func(context.Context) error
	wg          sync.WaitGroup
	log         zerolog.Logger
}

func NewPool(workerCount int) *Pool {
	if workerCount < 1 {
		workerCount = 1
	}
	return &Pool{
		workerCount: workerCount,
		jobChan:     make(chan func(context.Context) error, workerCount*2),
		log:         logger.For("worker"),
	}
}

func (p *Pool) Start(ctx context.Context) {
	p.log.Info().Int("worker_count", p.workerCount).Msg("Starting worker pool")

	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i)
	}
}

func (p *Pool) Stop() {
	p.log.Info().Msg("Stopping worker pool")
	close(p.jobChan)
	p.wg.Wait()
	p.log.Info().Msg("Worker pool stopped")
}

func (p *Pool) Submit(job func(context.Context) error) {
	select {
	case p.jobChan <- job:
	default:
		p.log.Warn().Msg("Worker pool job queue full, job dropped")
	}
}

func (p *Pool) worker(ctx context.Context, id int) {
	defer p.wg.Done()

	log := p.log.With().Int("worker_id", id).Logger()
	log.Debug().Msg("Worker started")

	for {
		select {
		case <-ctx.Done():
			log.Debug().Msg("Worker stopping due to context cancellation")
			return
		case job, ok := <-p.jobChan:
			if !ok {
				log.Debug().Msg("Worker stopping due to closed job channel")
				return
			}

			if err := job(ctx); err != nil {
				log.Error().Err(err).Msg("Job execution failed")
			}
		}
	}
}
