package accel

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/snucp/tfhe-wopbs/storage"
	"github.com/snucp/tfhe-wopbs/tfhe"
	"github.com/snucp/tfhe-wopbs/wopbs"
)

// Logger is the logging interface of Dispatcher.
// It is satisfied by *log.Logger.
type Logger interface {
	Printf(format string, v ...any)
}

// Config configures a Dispatcher.
type Config struct {
	// Units is the number of HostDevices created by NewHostDispatcher.
	Units int
	// SamplesPerLaunch bounds the samples of a single launch.
	// Zero launches the whole share of a unit at once.
	SamplesPerLaunch int
	// SharedMemory is passed to every launch as LaunchConfig.SharedMemory.
	SharedMemory int
	// MemoryLimit is the memory limit in bytes of every HostDevice. Zero means unlimited.
	MemoryLimit int
	// Logger receives dispatch events. Defaults to discarding them.
	Logger Logger
}

// DefaultConfig returns a Config with one unit per CPU.
func DefaultConfig() Config {
	return Config{
		Units: runtime.NumCPU(),
	}
}

// errAborted is returned by units that stopped because another unit failed.
var errAborted = errors.New("batch aborted")

// Range is the share of a batch assigned to a unit.
type Range struct {
	Start int
	Count int
}

// Partition splits total samples over units statically.
// Every unit gets total / units samples, and the last unit also gets the remainder.
func Partition(total, units int) []Range {
	per := total / units
	ranges := make([]Range, units)
	for u := range ranges {
		ranges[u] = Range{Start: u * per, Count: per}
	}
	ranges[units-1].Count = total - (units-1)*per
	return ranges
}

// Dispatcher runs batches of WoP-PBS operations over devices.
//
// A batch is partitioned with [Partition], and each unit runs its share in its own goroutine.
// If any unit fails, the others stop at their next launch and the whole batch fails:
// no output of a failed batch is returned.
// The context is checked between launches only. A launched kernel is never interrupted.
type Dispatcher[T tfhe.TorusInt] struct {
	params  wopbs.Parameters[T]
	devices []Device[T]
	config  Config
	logger  Logger
}

// NewDispatcher returns a Dispatcher over devices.
func NewDispatcher[T tfhe.TorusInt](params wopbs.Parameters[T], devices []Device[T], cfg Config) (*Dispatcher[T], error) {
	if len(devices) == 0 {
		return nil, ErrNoDevice
	}
	if cfg.SamplesPerLaunch < 0 {
		return nil, fmt.Errorf("%w: negative samples per launch", tfhe.ErrInvalidParameters)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	return &Dispatcher[T]{
		params:  params,
		devices: devices,
		config:  cfg,
		logger:  logger,
	}, nil
}

// NewHostDispatcher returns a Dispatcher over cfg.Units HostDevices,
// each running on its own shallow copy of eval.
func NewHostDispatcher[T tfhe.TorusInt](eval *wopbs.Evaluator[T], cfg Config) (*Dispatcher[T], error) {
	if cfg.Units < 1 {
		return nil, ErrNoDevice
	}
	devices := make([]Device[T], cfg.Units)
	for i := range devices {
		devices[i] = NewHostDevice(fmt.Sprintf("host:%d", i), eval, cfg.MemoryLimit)
	}
	return NewDispatcher(eval.Parameters, devices, cfg)
}

// LoadHostDispatcher loads the evaluation key saved under h in store,
// and returns a Dispatcher over HostDevices using it.
func LoadHostDispatcher[T tfhe.TorusInt](ctx context.Context, params wopbs.Parameters[T], store storage.Store, h storage.Handle, cfg Config) (*Dispatcher[T], error) {
	var evk wopbs.EvaluationKey[T]
	if err := storage.GetEntity(ctx, store, h, &evk); err != nil {
		return nil, fmt.Errorf("load evaluation key: %w", err)
	}
	return NewHostDispatcher(wopbs.NewEvaluator(params, evk), cfg)
}

// Units returns the number of devices.
func (d *Dispatcher[T]) Units() int {
	return len(d.devices)
}

// launchConfig returns the LaunchConfig shared by every launch.
func (d *Dispatcher[T]) launchConfig(gadgetParams tfhe.GadgetParameters[T]) LaunchConfig {
	base := d.params.BaseParameters()
	return LaunchConfig{
		LWEDimension: base.LWEDimension(),
		GLWERank:     base.GLWERank(),
		PolyDegree:   base.PolyDegree(),
		BaseLog:      gadgetParams.BaseLog(),
		Level:        gadgetParams.Level(),
		SharedMemory: d.config.SharedMemory,
	}
}

// shape returns the buffer layout of the parameters.
func (d *Dispatcher[T]) shape() shape {
	base := d.params.BaseParameters()
	return shape{
		lweDimension: base.LWEDimension(),
		glweRank:     base.GLWERank(),
		polyDegree:   base.PolyDegree(),
	}
}

// unit is the state of a unit during a dispatch.
type unit[T tfhe.TorusInt] struct {
	ctx     context.Context
	abort   *atomic.Bool
	device  Device[T]
	step    int
	buffers []Buffer
}

// alloc allocates a buffer, to be released by free.
func (u *unit[T]) alloc(kind BufferKind, n int) (Buffer, error) {
	b, err := u.device.Allocate(kind, n)
	if err != nil {
		return Buffer{}, err
	}
	u.buffers = append(u.buffers, b)
	return b, nil
}

// upload allocates a torus buffer holding src.
func (u *unit[T]) upload(src []T) (Buffer, error) {
	b, err := u.alloc(BufferTorus, len(src))
	if err != nil {
		return Buffer{}, err
	}
	return b, u.device.CopyToDevice(b, 0, src)
}

// launch launches kernel over cfg.SampleCount samples, in steps of at most u.step samples,
// and waits for the device.
func (u *unit[T]) launch(kernel Kernel, buffers []Buffer, cfg LaunchConfig) error {
	total := cfg.SampleCount
	step := total
	if u.step > 0 && u.step < step {
		step = u.step
	}

	for offset := 0; offset < total; offset += step {
		if u.abort.Load() {
			return errAborted
		}
		if err := u.ctx.Err(); err != nil {
			return canceledError("launch "+kernel.String(), u.device.Name(), err)
		}

		c := cfg
		c.Offset = offset
		c.SampleCount = min(step, total-offset)
		if err := u.device.Launch(kernel, buffers, c); err != nil {
			return err
		}
	}
	return u.device.Synchronize()
}

// canceledError wraps a context error as an [*Error].
func canceledError(op, device string, err error) error {
	return &Error{Op: op, Device: device, Err: fmt.Errorf("%w: %w", ErrCanceled, err)}
}

// free releases every buffer allocated by the unit.
func (u *unit[T]) free() {
	for _, b := range u.buffers {
		u.device.Free(b)
	}
	u.buffers = nil
}

// dispatch runs run on every unit with a nonempty share of total samples, and joins them.
// It returns the first error of a failed unit, in unit order.
func (d *Dispatcher[T]) dispatch(ctx context.Context, op string, total int, run func(u *unit[T], r Range) error) error {
	if err := ctx.Err(); err != nil {
		return canceledError(op, "dispatcher", err)
	}

	ranges := Partition(total, len(d.devices))
	errs := make([]error, len(ranges))
	var abort atomic.Bool

	var wg sync.WaitGroup
	for i, r := range ranges {
		if r.Count == 0 {
			continue
		}

		wg.Add(1)
		go func(i int, r Range) {
			defer wg.Done()

			u := &unit[T]{ctx: ctx, abort: &abort, device: d.devices[i], step: d.config.SamplesPerLaunch}
			defer u.free()

			if err := run(u, r); err != nil {
				abort.Store(true)
				errs[i] = err
			}
		}(i, r)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil && !errors.Is(err, errAborted) {
			d.logger.Printf("accel: %s failed on %s: %v", op, d.devices[i].Name(), err)
			return err
		}
	}
	d.logger.Printf("accel: %s completed %d samples on %d units", op, total, len(d.devices))
	return nil
}

// BlindRotate blind rotates every ciphertext in cts, under the LWE key, with respect to lut.
// kernel must be KernelBlindRotateLowLatency or KernelBlindRotateAmortized.
// Both strategies give identical results.
func (d *Dispatcher[T]) BlindRotate(ctx context.Context, kernel Kernel, cts []tfhe.LWECiphertext[T], lut tfhe.LookUpTable[T]) ([]tfhe.GLWECiphertext[T], error) {
	if kernel != KernelBlindRotateLowLatency && kernel != KernelBlindRotateAmortized {
		return nil, fmt.Errorf("%w: %v is not a blind rotation kernel", tfhe.ErrInvalidParameters, kernel)
	}
	s := d.shape()
	if err := checkLWEs(cts, s.lweDimension); err != nil {
		return nil, err
	}
	if len(lut.Value.Coeffs) != s.polyDegree {
		return nil, &tfhe.MismatchError{Err: tfhe.ErrPolyDegreeMismatch, Want: s.polyDegree, Got: len(lut.Value.Coeffs)}
	}

	ctOut := make([]tfhe.GLWECiphertext[T], len(cts))
	err := d.dispatch(ctx, kernel.String(), len(cts), func(u *unit[T], r Range) error {
		in, err := u.upload(flattenLWEs(cts[r.Start : r.Start+r.Count]))
		if err != nil {
			return err
		}
		lutBuf, err := u.upload(lut.Value.Coeffs)
		if err != nil {
			return err
		}
		out, err := u.alloc(BufferTorus, r.Count*s.glweSize())
		if err != nil {
			return err
		}

		cfg := d.launchConfig(d.params.BaseParameters().BlindRotateParameters())
		cfg.SampleCount = r.Count
		if err := u.launch(kernel, []Buffer{in, lutBuf, out}, cfg); err != nil {
			return err
		}

		host := make([]T, out.Len)
		if err := u.device.CopyToHost(host, out, 0); err != nil {
			return err
		}
		for i := 0; i < r.Count; i++ {
			ctOut[r.Start+i] = glweAt(s, host, i)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ctOut, nil
}

// ExtractBits extracts bitCount bits from every ciphertext in cts, under the large LWE key.
// ctOut[i][j] encrypts bit j of cts[i], as in [*wopbs.Evaluator.ExtractBitsAssign].
func (d *Dispatcher[T]) ExtractBits(ctx context.Context, cts []tfhe.LWECiphertext[T], deltaLog, bitCount int) ([][]tfhe.LWECiphertext[T], error) {
	s := d.shape()
	glweDim := d.params.BaseParameters().GLWEDimension()
	if err := checkLWEs(cts, glweDim); err != nil {
		return nil, err
	}
	if bitCount < 1 {
		return nil, fmt.Errorf("%w: bit count %v", tfhe.ErrInvalidParameters, bitCount)
	}

	ctOut := make([][]tfhe.LWECiphertext[T], len(cts))
	err := d.dispatch(ctx, KernelExtractBits.String(), len(cts), func(u *unit[T], r Range) error {
		in, err := u.upload(flattenLWEs(cts[r.Start : r.Start+r.Count]))
		if err != nil {
			return err
		}
		out, err := u.alloc(BufferTorus, r.Count*bitCount*s.lweSize(s.lweDimension))
		if err != nil {
			return err
		}

		cfg := d.launchConfig(d.params.CircuitBootstrapParameters())
		cfg.SampleCount = r.Count
		cfg.DeltaLog = deltaLog
		cfg.BitCount = bitCount
		if err := u.launch(KernelExtractBits, []Buffer{in, out}, cfg); err != nil {
			return err
		}

		host := make([]T, out.Len)
		if err := u.device.CopyToHost(host, out, 0); err != nil {
			return err
		}
		for i := 0; i < r.Count; i++ {
			ctOut[r.Start+i] = make([]tfhe.LWECiphertext[T], bitCount)
			for j := range ctOut[r.Start+i] {
				ctOut[r.Start+i][j] = lweAt(host, s.lweDimension, i*bitCount+j)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ctOut, nil
}

// CircuitBootstrap circuit bootstraps every bit in cts, under the LWE key,
// to GGSW ciphertexts in the coefficient domain.
func (d *Dispatcher[T]) CircuitBootstrap(ctx context.Context, cts []tfhe.LWECiphertext[T]) ([]tfhe.GGSWCiphertext[T], error) {
	s := d.shape()
	cbsParams := d.params.CircuitBootstrapParameters()
	if err := checkLWEs(cts, s.lweDimension); err != nil {
		return nil, err
	}

	ctOut := make([]tfhe.GGSWCiphertext[T], len(cts))
	err := d.dispatch(ctx, KernelCircuitBootstrap.String(), len(cts), func(u *unit[T], r Range) error {
		in, err := u.upload(flattenLWEs(cts[r.Start : r.Start+r.Count]))
		if err != nil {
			return err
		}
		out, err := u.alloc(BufferTorus, r.Count*s.ggswSize(cbsParams.Level()))
		if err != nil {
			return err
		}

		cfg := d.launchConfig(cbsParams)
		cfg.SampleCount = r.Count
		if err := u.launch(KernelCircuitBootstrap, []Buffer{in, out}, cfg); err != nil {
			return err
		}

		host := make([]T, out.Len)
		if err := u.device.CopyToHost(host, out, 0); err != nil {
			return err
		}
		for i := 0; i < r.Count; i++ {
			ctOut[r.Start+i] = ggswAt(s, cbsParams, host, i)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ctOut, nil
}

// VerticalPacking evaluates every segment of lut at the integer whose bits are encrypted in ctSelectors,
// most significant bit first, as in [*wopbs.Evaluator.VerticalPackingAssign].
// ctSelectors are circuit bootstrapped GGSW ciphertexts in the coefficient domain.
// Segments are partitioned over the units, and every unit converts the selectors to the Fourier domain.
func (d *Dispatcher[T]) VerticalPacking(ctx context.Context, ctSelectors []tfhe.GGSWCiphertext[T], lut []T) ([]tfhe.LWECiphertext[T], error) {
	s := d.shape()
	cbsParams := d.params.CircuitBootstrapParameters()
	glweDim := d.params.BaseParameters().GLWEDimension()

	r := len(ctSelectors)
	if r == 0 || r > 30 {
		return nil, fmt.Errorf("%w: %v selectors", tfhe.ErrBatchSizeMismatch, r)
	}
	size := 1 << r
	if len(lut) == 0 || len(lut)%size != 0 {
		return nil, fmt.Errorf("%w: %v entries for %v selectors", tfhe.ErrLUTSizeMismatch, len(lut), r)
	}
	var selectors []T
	for _, ct := range ctSelectors {
		if ct.GadgetParameters != cbsParams {
			return nil, fmt.Errorf("%w: selectors must use the circuit bootstrap parameters", tfhe.ErrGadgetMismatch)
		}
		if len(ct.Value) != s.glweRank+1 {
			return nil, &tfhe.MismatchError{Err: tfhe.ErrGLWERankMismatch, Want: s.glweRank, Got: len(ct.Value) - 1}
		}
		selectors = appendGGSW(selectors, ct)
	}
	if len(selectors) != r*s.ggswSize(cbsParams.Level()) {
		return nil, fmt.Errorf("%w: selectors do not match the parameters", tfhe.ErrPolyDegreeMismatch)
	}

	outputs := len(lut) / size
	ctOut := make([]tfhe.LWECiphertext[T], outputs)
	err := d.dispatch(ctx, KernelCMuxTree.String(), outputs, func(u *unit[T], rg Range) error {
		sel, err := u.upload(selectors)
		if err != nil {
			return err
		}
		fourierSel, err := u.alloc(BufferFourier, r*s.fourierGGSWSize(cbsParams.Level()))
		if err != nil {
			return err
		}
		lutBuf, err := u.upload(lut[rg.Start*size : (rg.Start+rg.Count)*size])
		if err != nil {
			return err
		}
		out, err := u.alloc(BufferTorus, rg.Count*s.lweSize(glweDim))
		if err != nil {
			return err
		}

		cfg := d.launchConfig(cbsParams)
		cfg.SampleCount = r
		if err := u.launch(KernelConvertToFourier, []Buffer{sel, fourierSel}, cfg); err != nil {
			return err
		}

		cfg.SampleCount = rg.Count
		cfg.BitCount = r
		if err := u.launch(KernelCMuxTree, []Buffer{fourierSel, lutBuf, out}, cfg); err != nil {
			return err
		}

		host := make([]T, out.Len)
		if err := u.device.CopyToHost(host, out, 0); err != nil {
			return err
		}
		for i := 0; i < rg.Count; i++ {
			ctOut[rg.Start+i] = lweAt(host, glweDim, i)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ctOut, nil
}

// WoPBS evaluates lut on every ciphertext in cts, under the large LWE key.
// lut has 2^MessageBits entries, as generated by [*wopbs.Evaluator.GenLookUpTable].
func (d *Dispatcher[T]) WoPBS(ctx context.Context, cts []tfhe.LWECiphertext[T], lut []T) ([]tfhe.LWECiphertext[T], error) {
	if len(lut) != d.params.LookUpTableSize() {
		return nil, &tfhe.MismatchError{Err: tfhe.ErrLUTSizeMismatch, Want: d.params.LookUpTableSize(), Got: len(lut)}
	}
	ctOutMany, err := d.WoPBSMany(ctx, cts, lut)
	if err != nil {
		return nil, err
	}

	ctOut := make([]tfhe.LWECiphertext[T], len(cts))
	for i := range ctOut {
		ctOut[i] = ctOutMany[i][0]
	}
	return ctOut, nil
}

// WoPBSMany evaluates every segment of lut on every ciphertext in cts, under the large LWE key.
// ctOut[i][j] encrypts segment j evaluated on cts[i].
func (d *Dispatcher[T]) WoPBSMany(ctx context.Context, cts []tfhe.LWECiphertext[T], lut []T) ([][]tfhe.LWECiphertext[T], error) {
	s := d.shape()
	glweDim := d.params.BaseParameters().GLWEDimension()
	if err := checkLWEs(cts, glweDim); err != nil {
		return nil, err
	}
	if len(lut) == 0 || len(lut)%d.params.LookUpTableSize() != 0 {
		return nil, fmt.Errorf("%w: %v entries", tfhe.ErrLUTSizeMismatch, len(lut))
	}
	outputs := len(lut) / d.params.LookUpTableSize()

	ctOut := make([][]tfhe.LWECiphertext[T], len(cts))
	err := d.dispatch(ctx, KernelWoPBS.String(), len(cts), func(u *unit[T], r Range) error {
		in, err := u.upload(flattenLWEs(cts[r.Start : r.Start+r.Count]))
		if err != nil {
			return err
		}
		lutBuf, err := u.upload(lut)
		if err != nil {
			return err
		}
		out, err := u.alloc(BufferTorus, r.Count*outputs*s.lweSize(glweDim))
		if err != nil {
			return err
		}

		cfg := d.launchConfig(d.params.CircuitBootstrapParameters())
		cfg.SampleCount = r.Count
		cfg.Outputs = outputs
		if err := u.launch(KernelWoPBS, []Buffer{in, lutBuf, out}, cfg); err != nil {
			return err
		}

		host := make([]T, out.Len)
		if err := u.device.CopyToHost(host, out, 0); err != nil {
			return err
		}
		for i := 0; i < r.Count; i++ {
			ctOut[r.Start+i] = make([]tfhe.LWECiphertext[T], outputs)
			for j := range ctOut[r.Start+i] {
				ctOut[r.Start+i][j] = lweAt(host, glweDim, i*outputs+j)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ctOut, nil
}

// checkLWEs checks that every ciphertext in cts has dimension dim.
func checkLWEs[T tfhe.TorusInt](cts []tfhe.LWECiphertext[T], dim int) error {
	for _, ct := range cts {
		if ct.Dimension() != dim {
			return &tfhe.MismatchError{Err: tfhe.ErrLWEDimensionMismatch, Want: dim, Got: ct.Dimension()}
		}
	}
	return nil
}

// flattenLWEs lays out cts contiguously.
func flattenLWEs[T tfhe.TorusInt](cts []tfhe.LWECiphertext[T]) []T {
	var buf []T
	for _, ct := range cts {
		buf = appendLWE(buf, ct)
	}
	return buf
}
