package system

import (
	"fmt"
	"sync"

	"github.com/ivlev/depth2video/internal/raster"
)

// FramePool переиспользует буферы одного размера, чтобы не нагружать GC,
// пока кадры идут в энкодер.
type FramePool struct {
	pools map[string]*sync.Pool
	mu    sync.RWMutex
}

var globalPool = NewFramePool()

func NewFramePool() *FramePool {
	return &FramePool{pools: make(map[string]*sync.Pool)}
}

// SharedFramePool - общий пул процесса, рендер берет его по умолчанию.
func SharedFramePool() *FramePool {
	return globalPool
}

func poolKey(width, height, channels int) string {
	return fmt.Sprintf("%dx%dx%d", width, height, channels)
}

func (p *FramePool) Get(width, height, channels int) *raster.Image {
	key := poolKey(width, height, channels)
	p.mu.RLock()
	pool, exists := p.pools[key]
	p.mu.RUnlock()

	if !exists {
		p.mu.Lock()
		// Повторная проверка
		pool, exists = p.pools[key]
		if !exists {
			pool = &sync.Pool{
				New: func() any {
					return raster.New(width, height, channels)
				},
			}
			p.pools[key] = pool
		}
		p.mu.Unlock()
	}

	return pool.Get().(*raster.Image)
}

func (p *FramePool) Put(img *raster.Image) {
	if img == nil || len(img.Pix) != img.Width*img.Height*img.Channels {
		return
	}
	key := poolKey(img.Width, img.Height, img.Channels)
	p.mu.RLock()
	pool, exists := p.pools[key]
	p.mu.RUnlock()

	if exists {
		pool.Put(img)
	}
}
