// Package sim provides an in-memory stand-in for a PLC so plans can run
// without hardware. Data blocks grow on demand and unwritten memory reads
// back as zeros.
package sim

import (
	"fmt"
	"sync"
)

// Port implements s7.MemoryPort against process-local byte slices.
type Port struct {
	mu        sync.Mutex
	blocks    map[int][]byte
	connected bool
}

func New() *Port {
	return &Port{blocks: make(map[int][]byte)}
}

// Seed preloads a data block with the given contents, replacing whatever was
// there. Usable before or after Connect.
func (p *Port) Seed(dbNumber int, data []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()

	block := make([]byte, len(data))
	copy(block, data)
	p.blocks[dbNumber] = block
}

// Block returns a copy of the current contents of a data block.
func (p *Port) Block(dbNumber int) []byte {
	p.mu.Lock()
	defer p.mu.Unlock()

	block := p.blocks[dbNumber]
	out := make([]byte, len(block))
	copy(out, block)
	return out
}

func (p *Port) Connect() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.connected = true
	return nil
}

func (p *Port) Disconnect() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.connected = false
	return nil
}

// Connected reports whether the port currently holds a session.
func (p *Port) Connected() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.connected
}

func (p *Port) ReadDB(dbNumber, start, size int) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.connected {
		return nil, fmt.Errorf("not connected")
	}
	if start < 0 || size < 0 {
		return nil, fmt.Errorf("invalid read range DB%d@%d+%d", dbNumber, start, size)
	}

	p.grow(dbNumber, start+size)

	out := make([]byte, size)
	copy(out, p.blocks[dbNumber][start:start+size])
	return out, nil
}

func (p *Port) WriteDB(dbNumber, start int, data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.connected {
		return fmt.Errorf("not connected")
	}
	if start < 0 {
		return fmt.Errorf("invalid write offset DB%d@%d", dbNumber, start)
	}

	p.grow(dbNumber, start+len(data))
	copy(p.blocks[dbNumber][start:], data)
	return nil
}

func (p *Port) grow(dbNumber, size int) {
	block := p.blocks[dbNumber]
	if len(block) >= size {
		return
	}
	grown := make([]byte, size)
	copy(grown, block)
	p.blocks[dbNumber] = grown
}
