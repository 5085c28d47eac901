package middleware

import (
	"context"
	"fmt"
	"sync"
	"time"

	"PUM/internal/domain/models"
	domrepo "PUM/internal/domain/repository"
)

// Proc is the minimal processor interface the pipeline needs.
type Proc interface {
	Process(ctx context.Context, p *models.MarketPoint) error
}

// RealtimePipeline is a middleware between the market feed and the backend.
// It validates, filters/throttles, optionally transforms, and buffers when downstream is unavailable.
type RealtimePipeline struct {
	proc     Proc
	metrics  domrepo.Metrics
	maxRPS   int
	bufSize  int
	bufCh    chan *models.MarketPoint
	stopCh   chan struct{}
	started  bool
	mu       sync.Mutex
	lastSeen map[string]time.Time // per-token last accepted time
	// simple format transform hook (optional)
	transform func(*models.MarketPoint) *models.MarketPoint
	// metrics
	bufDepthGauge func(int)
	throttleWarn  func(string)
}

type PipelineOption func(*RealtimePipeline)

// WithMaxRPS sets the max points per second per token.
func WithMaxRPS(n int) PipelineOption {
	return func(p *RealtimePipeline) {
		if n > 0 {
			p.maxRPS = n
		}
	}
}

// WithBufferSize sets the temporary buffer size when downstream is unavailable.
func WithBufferSize(n int) PipelineOption {
	return func(p *RealtimePipeline) {
		if n > 0 {
			p.bufSize = n
		}
	}
}

// NewRealtimePipeline creates a new pipeline.
func NewRealtimePipeline(proc Proc, metrics domrepo.Metrics, opts ...PipelineOption) *RealtimePipeline {
	p := &RealtimePipeline{
		proc:     proc,
		metrics:  metrics,
		maxRPS:   20,   // default throttle per token
		bufSize:  1000, // default buffer
		bufCh:    make(chan *models.MarketPoint, 1000),
		stopCh:   make(chan struct{}),
		lastSeen: make(map[string]time.Time),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.bufSize != cap(p.bufCh) {
		p.bufCh = make(chan *models.MarketPoint, p.bufSize)
	}
	// metrics hooks using domain metrics if available
	p.bufDepthGauge = func(n int) { p.metrics.RecordLatency("pipeline_buffer_depth", float64(n)) }
	p.throttleWarn = func(token string) { p.metrics.RecordError("pipeline_throttle_" + token) }
	return p
}

// Start launches background flushing of buffered points.
func (p *RealtimePipeline) Start(ctx context.Context) {
	p.mu.Lock()
	if p.started {
		p.mu.Unlock()
		return
	}
	p.started = true
	p.mu.Unlock()

	go func() {
		backoff := 50 * time.Millisecond
		for {
			select {
			case <-p.stopCh:
				return
			case pt := <-p.bufCh:
				if pt == nil {
					continue
				}
				if err := p.proc.Process(ctx, pt); err != nil {
					// exponential backoff with cap
					if backoff < 2*time.Second {
						backoff *= 2
					}
					p.metrics.RecordError("pipeline_flush")
					time.Sleep(backoff)
					// requeue if space; drop otherwise
					select {
					case p.bufCh <- pt:
					default:
						p.metrics.RecordError("pipeline_buffer_drop")
					}
				} else {
					backoff = 50 * time.Millisecond
				}
			}
		}
	}()
}

// Stop stops the background flushing.
func (p *RealtimePipeline) Stop() {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return
	}
	p.started = false
	p.mu.Unlock()
	close(p.stopCh)
}

// Process validates, throttles, and forwards the point downstream, buffering on errors.
func (p *RealtimePipeline) Process(ctx context.Context, pt *models.MarketPoint) error {
	start := time.Now()
	if err := validatePoint(pt); err != nil {
		p.metrics.RecordError("pipeline_validate")
		return err
	}
	if p.transform != nil {
		pt = p.transform(pt)
		if err := validatePoint(pt); err != nil {
			p.metrics.RecordError("pipeline_transform_invalid")
			return err
		}
	}
	if !p.allow(pt.TokenSymbol, start) {
		// throttled; record and drop silently
		p.metrics.RecordError("pipeline_throttle")
		if p.throttleWarn != nil {
			p.throttleWarn(pt.TokenSymbol)
		}
		return nil
	}

	if err := p.proc.Process(ctx, pt); err != nil {
		p.metrics.RecordError("pipeline_process")
		// buffer non-blocking
		select {
		case p.bufCh <- pt:
			if p.bufDepthGauge != nil {
				p.bufDepthGauge(len(p.bufCh))
			}
		default:
			p.metrics.RecordError("pipeline_buffer_full")
		}
		return fmt.Errorf("pipeline downstream: %w", err)
	}
	p.metrics.RecordLatency("pipeline_process", time.Since(start).Seconds())
	return nil
}

// WithTransform sets a transformation hook to modify point format.
func WithTransform(fn func(*models.MarketPoint) *models.MarketPoint) PipelineOption {
	return func(p *RealtimePipeline) { p.transform = fn }
}

func validatePoint(pt *models.MarketPoint) error {
	if pt == nil {
		return fmt.Errorf("market point nil")
	}
	if pt.TokenSymbol == "" {
		return fmt.Errorf("token symbol empty")
	}
	if pt.Timestamp.IsZero() {
		return fmt.Errorf("timestamp invalid")
	}
	if pt.Price < 0 || pt.Volume24h < 0 || pt.MarketCap < 0 {
		return fmt.Errorf("negative price/volume/marketcap")
	}
	return nil
}

func (p *RealtimePipeline) allow(token string, now time.Time) bool {
	if p.maxRPS <= 0 {
		return true
	}
	// simple throttle: ensure at most maxRPS per second
	last := p.lastSeen[token]
	if last.IsZero() {
		p.lastSeen[token] = now
		return true
	}
	// compute elapsed points per second window
	if now.Sub(last) < time.Second/time.Duration(p.maxRPS) {
		return false
	}
	p.lastSeen[token] = now
	return true
}
