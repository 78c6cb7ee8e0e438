package player

import "time"

// Fine sampling cadence while playing; the coarse main-loop tick keeps
// position fresh when the sampler is not running.
const sampleInterval = 33 * time.Millisecond

// sampler is the owned handle for the fine progress loop. It runs only
// while the session is in the playing state and is stopped on every path
// that leaves it: pause, end of stream, error and teardown.
type sampler struct {
	stop chan struct{}
	done chan struct{}
}

func (s *sampler) stopAndWait() {
	close(s.stop)
	<-s.done
}

// Starts or stops the sampler to match the current state. Called from the
// session goroutine after every event and tick, so the loop never
// outlives the playing state by more than one pass.
func (p *Player) syncSampler() {
	p.mu.RLock()
	playing := p.state.State == StatePlaying
	p.mu.RUnlock()

	switch {
	case playing && p.sampler == nil:
		s := &sampler{
			stop: make(chan struct{}),
			done: make(chan struct{}),
		}
		p.sampler = s
		go p.sampleLoop(s)

	case !playing && p.sampler != nil:
		p.sampler.stopAndWait()
		p.sampler = nil
	}
}

// Mirrors the authoritative media position into UI state at the fine
// cadence. Purely a freshness mechanism: it never changes the state
// machine and never blocks transport controls.
func (p *Player) sampleLoop(s *sampler) {
	defer close(s.done)

	ticker := time.NewTicker(sampleInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stop:
			return
		case <-p.ctx.Done():
			return
		case <-ticker.C:
			select {
			case <-s.stop:
				return
			case <-p.ctx.Done():
				return
			default:
			}
			p.mirrorPosition()
			p.renderProgress()
		}
	}
}

func (p *Player) mirrorPosition() {
	pos, ok := p.source.Position()
	if !ok {
		return
	}

	p.mu.Lock()
	if p.state.State == StatePlaying {
		p.state.Position = pos
		p.posWrites.Add(1)
	}
	p.mu.Unlock()
}

// PositionWrites counts sampler position mirrors, for lifecycle checks.
func (p *Player) PositionWrites() uint64 {
	return p.posWrites.Load()
}

// SamplerRunning reports whether the fine progress loop is active.
func (p *Player) SamplerRunning() bool {
	return p.sampler != nil
}
