package engine

import (
	"context"
	"fmt"
	"image"
	"iter"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/ivlev/depth2video/internal/config"
	"github.com/ivlev/depth2video/internal/parallax"
	"github.com/ivlev/depth2video/internal/raster"
	"github.com/ivlev/depth2video/internal/system"
)

// progressEvery - как часто Run пишет прогресс, в кадрах.
const progressEvery = 10

type Frame struct {
	Index    int
	Progress float64
	Offset   parallax.Offset
	Image    *raster.Image
}

// FrameSink принимает кадры по порядку. Изображение, переданное в WriteFrame,
// действительно только до возврата из вызова.
type FrameSink interface {
	WriteFrame(ctx context.Context, index int, img *raster.Image) error
}

type FrameSinkFunc func(ctx context.Context, index int, img *raster.Image) error

func (f FrameSinkFunc) WriteFrame(ctx context.Context, index int, img *raster.Image) error {
	return f(ctx, index, img)
}

type Option func(*Renderer)

// WithWorkers задает число кадров, которые Run считает параллельно.
// 0 и меньше - подбор по CPU и свободной памяти.
func WithWorkers(n int) Option {
	return func(r *Renderer) { r.workers = n }
}

// WithPool заменяет общий пул кадров.
func WithPool(p *system.FramePool) Option {
	return func(r *Renderer) { r.pool = p }
}

// Renderer хранит подготовленные входы одной анимации. После NewRenderer
// все поля только читаются, кадры можно считать параллельно.
type Renderer struct {
	cfg     config.Animation
	image   *raster.Image
	plane   *parallax.DepthPlane
	filler  *parallax.HoleFiller
	total   int
	workers int
	pool    *system.FramePool
}

func NewRenderer(img, depth *raster.Image, cfg config.Animation, opts ...Option) (*Renderer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, setupError(StageValidate, fmt.Errorf("%w: %v", parallax.ErrInvalidInput, err))
	}
	if img == nil || depth == nil {
		return nil, setupError(StageValidate, fmt.Errorf("%w: missing image or depth map", parallax.ErrInvalidInput))
	}
	if img.Channels != 3 {
		return nil, setupError(StageValidate, fmt.Errorf("%w: image has %d channels, want 3", parallax.ErrInvalidInput, img.Channels))
	}

	fitted, err := parallax.Fit(img, cfg.Width, cfg.Height)
	if err != nil {
		return nil, setupError(StageFit, err)
	}
	fittedDepth, err := parallax.Fit(depth, cfg.Width, cfg.Height)
	if err != nil {
		return nil, setupError(StageFit, err)
	}
	if !fitted.SameSize(fittedDepth) {
		return nil, setupError(StageFit, fmt.Errorf("%w: image %dx%d, depth %dx%d", parallax.ErrDimensionMismatch,
			fitted.Width, fitted.Height, fittedDepth.Width, fittedDepth.Height))
	}

	plane, err := parallax.NewDepthPlane(fittedDepth)
	if err != nil {
		return nil, setupError(StageField, err)
	}
	filler, err := parallax.NewHoleFiller(fitted)
	if err != nil {
		return nil, setupError(StageFill, err)
	}

	r := &Renderer{
		cfg:    cfg,
		image:  fitted,
		plane:  plane,
		filler: filler,
		total:  cfg.TotalFrames(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.workers <= 0 {
		r.workers = system.SuggestWorkers(len(fitted.Pix))
	}
	r.workers = min(r.workers, r.total)
	if r.pool == nil {
		r.pool = system.SharedFramePool()
	}
	return r, nil
}

func setupError(stage string, err error) *RenderError {
	return &RenderError{Stage: stage, Frame: -1, Err: err}
}

func (r *Renderer) TotalFrames() int {
	return r.total
}

func (r *Renderer) Workers() int {
	return r.workers
}

// RenderFrame считает кадр i в новый буфер.
func (r *Renderer) RenderFrame(i int) (*Frame, error) {
	return r.renderInto(i, raster.New(r.image.Width, r.image.Height, r.image.Channels))
}

func (r *Renderer) renderInto(i int, dst *raster.Image) (*Frame, error) {
	if i < 0 || i >= r.total {
		return nil, &RenderError{Stage: StageValidate, Frame: i,
			Err: fmt.Errorf("%w: frame index out of range [0, %d)", parallax.ErrInvalidInput, r.total)}
	}
	progress := parallax.Progress(i, r.total)
	off := parallax.OffsetAt(progress, r.cfg.MovementRange, r.cfg.CameraMovement)

	field, err := r.plane.Field(off, r.cfg.CameraMovement)
	if err != nil {
		return nil, &RenderError{Stage: StageField, Frame: i, Err: err}
	}
	if err := parallax.SampleInto(dst, r.image, field.Coords()); err != nil {
		return nil, &RenderError{Stage: StageSample, Frame: i, Err: err}
	}
	if _, err := r.filler.Fill(dst); err != nil {
		return nil, &RenderError{Stage: StageFill, Frame: i, Err: err}
	}
	return &Frame{Index: i, Progress: progress, Offset: off, Image: dst}, nil
}

// Frames отдает кадры по порядку, каждый считается по запросу.
// Последовательность обрывается на первой ошибке, она приходит с nil кадром.
func (r *Renderer) Frames(ctx context.Context) iter.Seq2[*Frame, error] {
	return func(yield func(*Frame, error) bool) {
		for i := range r.total {
			if err := ctx.Err(); err != nil {
				yield(nil, &RenderError{Stage: StageCancel, Frame: i, Err: err})
				return
			}
			f, err := r.RenderFrame(i)
			if err != nil {
				yield(nil, err)
				return
			}
			if !yield(f, nil) {
				return
			}
		}
	}
}

// Run считает кадры в Workers горутинах и отдает их в sink строго по
// порядку. Ждать отправки могут не больше 2*Workers готовых кадров.
// Первая ошибка рендера или sink отменяет остальное.
func (r *Renderer) Run(ctx context.Context, sink FrameSink) error {
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(runCtx)
	g.SetLimit(r.workers)

	window := make(chan struct{}, 2*r.workers)
	slots := make([]chan *Frame, r.total)
	for i := range slots {
		slots[i] = make(chan *Frame, 1)
	}

	scheduled := make(chan struct{})
	go func() {
		defer close(scheduled)
		for i := range r.total {
			select {
			case window <- struct{}{}:
			case <-gctx.Done():
				return
			}
			g.Go(func() error {
				if gctx.Err() != nil {
					return nil
				}
				dst := r.pool.Get(r.image.Width, r.image.Height, r.image.Channels)
				f, err := r.renderInto(i, dst)
				if err != nil {
					r.pool.Put(dst)
					return err
				}
				slots[i] <- f
				return nil
			})
		}
	}()

	log.WithFields(log.Fields{
		"frames":  r.total,
		"workers": r.workers,
		"size":    fmt.Sprintf("%dx%d", r.image.Width, r.image.Height),
	}).Info("rendering")

	var sinkErr error
	delivered := 0
deliver:
	for i := range r.total {
		if gctx.Err() != nil {
			break
		}
		select {
		case f := <-slots[i]:
			err := sink.WriteFrame(gctx, i, f.Image)
			r.pool.Put(f.Image)
			<-window
			if err != nil {
				sinkErr = &RenderError{Stage: StageSink, Frame: i, Err: err}
				break deliver
			}
			delivered++
			if delivered%progressEvery == 0 || delivered == r.total {
				log.WithFields(log.Fields{"frame": delivered, "total": r.total}).Info("progress")
			}
		case <-gctx.Done():
			break deliver
		}
	}

	cancel()
	<-scheduled
	werr := g.Wait()
	for _, slot := range slots[delivered:] {
		select {
		case f := <-slot:
			r.pool.Put(f.Image)
		default:
		}
	}

	switch {
	case sinkErr != nil:
		return sinkErr
	case werr != nil:
		return werr
	case delivered < r.total:
		err := ctx.Err()
		if err == nil {
			err = context.Canceled
		}
		return &RenderError{Stage: StageCancel, Frame: delivered, Err: err}
	}
	return nil
}

// CreateAnimation рендерит анимацию img по карте depth в sink. Перед подгонкой
// img переводится в RGB, depth в один канал.
func CreateAnimation(ctx context.Context, img, depth image.Image, sink FrameSink, cfg config.Animation, opts ...Option) error {
	if img == nil || depth == nil {
		return setupError(StageValidate, fmt.Errorf("%w: missing image or depth map", parallax.ErrInvalidInput))
	}
	if img.Bounds().Empty() || depth.Bounds().Empty() {
		return setupError(StageValidate, fmt.Errorf("%w: zero-area image or depth map", parallax.ErrInvalidInput))
	}
	r, err := NewRenderer(raster.FromImage(img), raster.FromGray(depth), cfg, opts...)
	if err != nil {
		return err
	}
	return r.Run(ctx, sink)
}
