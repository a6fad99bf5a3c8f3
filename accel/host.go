package accel

import (
	"fmt"
	"sync"

	"github.com/snucp/tfhe-wopbs/math/num"
	"github.com/snucp/tfhe-wopbs/math/poly"
	"github.com/snucp/tfhe-wopbs/tfhe"
	"github.com/snucp/tfhe-wopbs/wopbs"
)

// fourierSize is the size of a Fourier coefficient in bytes.
const fourierSize = 16

// hostBuffer is the memory of a buffer of HostDevice.
// Exactly one of torus and fourier is set.
type hostBuffer[T tfhe.TorusInt] struct {
	torus   []T
	fourier []complex128
}

// HostDevice is a Device executing kernels on the CPU.
// Launches run synchronously, and a kernel that panics
// leaves the device failed, as reported by Synchronize.
type HostDevice[T tfhe.TorusInt] struct {
	name      string
	params    wopbs.Parameters[T]
	shape     shape
	evaluator *wopbs.Evaluator[T]

	mu          sync.Mutex
	buffers     map[int]hostBuffer[T]
	nextID      int
	allocated   int
	memoryLimit int
	failure     error
}

// NewHostDevice returns a HostDevice executing kernels with a shallow copy of eval.
// Allocations fail once memoryLimit bytes are in use, unless memoryLimit is zero.
func NewHostDevice[T tfhe.TorusInt](name string, eval *wopbs.Evaluator[T], memoryLimit int) *HostDevice[T] {
	base := eval.Parameters.BaseParameters()
	return &HostDevice[T]{
		name:   name,
		params: eval.Parameters,
		shape: shape{
			lweDimension: base.LWEDimension(),
			glweRank:     base.GLWERank(),
			polyDegree:   base.PolyDegree(),
		},
		evaluator:   eval.ShallowCopy(),
		buffers:     make(map[int]hostBuffer[T]),
		memoryLimit: memoryLimit,
	}
}

// Name implements the [Device] interface.
func (d *HostDevice[T]) Name() string {
	return d.name
}

// Allocated returns the number of bytes in use.
func (d *HostDevice[T]) Allocated() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.allocated
}

func (d *HostDevice[T]) fail(op string, sentinel error, format string, args ...any) error {
	return &Error{Op: op, Device: d.name, Err: fmt.Errorf("%w: %s", sentinel, fmt.Sprintf(format, args...))}
}

// Allocate implements the [Device] interface.
func (d *HostDevice[T]) Allocate(kind BufferKind, n int) (Buffer, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	var elemSize int
	switch kind {
	case BufferTorus:
		elemSize = num.SizeT[T]() / 8
	case BufferFourier:
		elemSize = fourierSize
	default:
		return Buffer{}, d.fail("allocate", ErrAllocation, "unknown buffer kind %v", kind)
	}
	if n < 0 {
		return Buffer{}, d.fail("allocate", ErrAllocation, "negative length %v", n)
	}
	if d.memoryLimit > 0 && d.allocated+n*elemSize > d.memoryLimit {
		return Buffer{}, d.fail("allocate", ErrAllocation, "%v bytes requested, %v of %v in use", n*elemSize, d.allocated, d.memoryLimit)
	}

	var buf hostBuffer[T]
	if kind == BufferTorus {
		buf.torus = make([]T, n)
	} else {
		buf.fourier = make([]complex128, n)
	}

	d.nextID++
	d.buffers[d.nextID] = buf
	d.allocated += n * elemSize
	return Buffer{ID: d.nextID, Kind: kind, Len: n}, nil
}

// Free implements the [Device] interface.
func (d *HostDevice[T]) Free(b Buffer) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	buf, ok := d.buffers[b.ID]
	if !ok {
		return d.fail("free", ErrAllocation, "unknown buffer %v", b.ID)
	}
	d.allocated -= len(buf.torus)*num.SizeT[T]()/8 + len(buf.fourier)*fourierSize
	delete(d.buffers, b.ID)
	return nil
}

// torusBuffer returns the memory of a torus buffer. d.mu must be held.
func (d *HostDevice[T]) torusBuffer(b Buffer) ([]T, bool) {
	buf, ok := d.buffers[b.ID]
	if !ok || b.Kind != BufferTorus {
		return nil, false
	}
	return buf.torus, true
}

// CopyToDevice implements the [Device] interface.
func (d *HostDevice[T]) CopyToDevice(dst Buffer, offset int, src []T) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	buf, ok := d.torusBuffer(dst)
	if !ok {
		return d.fail("copy to device", ErrLaunch, "buffer %v is not a torus buffer", dst.ID)
	}
	if offset < 0 || offset+len(src) > len(buf) {
		return d.fail("copy to device", ErrLaunch, "copy of %v elements at %v overflows buffer of %v", len(src), offset, len(buf))
	}
	copy(buf[offset:], src)
	return nil
}

// CopyToHost implements the [Device] interface.
func (d *HostDevice[T]) CopyToHost(dst []T, src Buffer, offset int) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.failure != nil {
		return d.fail("copy to host", ErrSync, "device failed: %v", d.failure)
	}
	buf, ok := d.torusBuffer(src)
	if !ok {
		return d.fail("copy to host", ErrLaunch, "buffer %v is not a torus buffer", src.ID)
	}
	if offset < 0 || offset+len(dst) > len(buf) {
		return d.fail("copy to host", ErrLaunch, "copy of %v elements at %v overflows buffer of %v", len(dst), offset, len(buf))
	}
	copy(dst, buf[offset:])
	return nil
}

// Synchronize implements the [Device] interface.
func (d *HostDevice[T]) Synchronize() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.failure != nil {
		return &Error{Op: "synchronize", Device: d.name, Err: fmt.Errorf("%w: %w", ErrSync, d.failure)}
	}
	return nil
}

// Launch implements the [Device] interface.
// Invalid arguments are reported synchronously with ErrLaunch.
func (d *HostDevice[T]) Launch(kernel Kernel, buffers []Buffer, cfg LaunchConfig) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.failure != nil {
		return d.fail("launch "+kernel.String(), ErrLaunch, "device failed: %v", d.failure)
	}

	run, err := d.prepare(kernel, buffers, cfg)
	if err != nil {
		return &Error{Op: "launch " + kernel.String(), Device: d.name, Err: fmt.Errorf("%w: %w", ErrLaunch, err)}
	}

	d.execute(run)
	return nil
}

// execute runs a prepared kernel, recording a panic as the failure of the device.
func (d *HostDevice[T]) execute(run func() error) {
	defer func() {
		if r := recover(); r != nil {
			d.failure = fmt.Errorf("kernel panicked: %v", r)
		}
	}()
	if err := run(); err != nil {
		d.failure = err
	}
}

// kernelBuffers resolves the buffers of a launch against their expected kinds and lengths.
type kernelBuffers[T tfhe.TorusInt] struct {
	d       *HostDevice[T]
	buffers []Buffer
	err     error
}

func (kb *kernelBuffers[T]) setErr(format string, args ...any) {
	if kb.err == nil {
		kb.err = fmt.Errorf(format, args...)
	}
}

func (kb *kernelBuffers[T]) torus(i, minLen int) []T {
	if kb.err != nil {
		return nil
	}
	if i >= len(kb.buffers) {
		kb.setErr("missing buffer %v", i)
		return nil
	}
	buf, ok := kb.d.torusBuffer(kb.buffers[i])
	if !ok {
		kb.setErr("buffer %v is not an allocated torus buffer", i)
		return nil
	}
	if len(buf) < minLen {
		kb.setErr("buffer %v has %v elements, need %v", i, len(buf), minLen)
		return nil
	}
	return buf
}

func (kb *kernelBuffers[T]) fourier(i, minLen int) []complex128 {
	if kb.err != nil {
		return nil
	}
	if i >= len(kb.buffers) {
		kb.setErr("missing buffer %v", i)
		return nil
	}
	buf, ok := kb.d.buffers[kb.buffers[i].ID]
	if !ok || kb.buffers[i].Kind != BufferFourier {
		kb.setErr("buffer %v is not an allocated fourier buffer", i)
		return nil
	}
	if len(buf.fourier) < minLen {
		kb.setErr("buffer %v has %v elements, need %v", i, len(buf.fourier), minLen)
		return nil
	}
	return buf.fourier
}

// prepare validates a launch and returns the kernel to run. d.mu must be held.
func (d *HostDevice[T]) prepare(kernel Kernel, buffers []Buffer, cfg LaunchConfig) (func() error, error) {
	s := d.shape
	if cfg.LWEDimension != s.lweDimension || cfg.GLWERank != s.glweRank || cfg.PolyDegree != s.polyDegree {
		return nil, fmt.Errorf("launch shape (%v, %v, %v) does not match device shape (%v, %v, %v)",
			cfg.LWEDimension, cfg.GLWERank, cfg.PolyDegree, s.lweDimension, s.glweRank, s.polyDegree)
	}
	if cfg.SampleCount < 0 || cfg.Offset < 0 || cfg.SharedMemory < 0 {
		return nil, fmt.Errorf("negative sample range or memory budget")
	}

	base := d.params.BaseParameters()
	cbsParams := d.params.CircuitBootstrapParameters()
	glweDim := base.GLWEDimension()
	end := cfg.Offset + cfg.SampleCount
	eval := d.evaluator
	kb := &kernelBuffers[T]{d: d, buffers: buffers}

	checkGadget := func(gadgetParams tfhe.GadgetParameters[T]) error {
		if cfg.BaseLog != gadgetParams.BaseLog() || cfg.Level != gadgetParams.Level() {
			return fmt.Errorf("%w: launch uses base log %v level %v, kernel needs base log %v level %v",
				tfhe.ErrGadgetMismatch, cfg.BaseLog, cfg.Level, gadgetParams.BaseLog(), gadgetParams.Level())
		}
		return nil
	}

	switch kernel {
	case KernelConvertToFourier:
		if err := checkGadget(cbsParams); err != nil {
			return nil, err
		}
		in := kb.torus(0, end*s.ggswSize(cfg.Level))
		out := kb.fourier(1, end*s.fourierGGSWSize(cfg.Level))
		if kb.err != nil {
			return nil, kb.err
		}
		return func() error {
			for i := cfg.Offset; i < end; i++ {
				tfhe.ToFourierGGSWCiphertextAssign(eval.BaseEvaluator.PolyEvaluator, ggswAt(s, cbsParams, in, i), fourierGGSWAt(s, cbsParams, out, i))
			}
			return nil
		}, nil

	case KernelBlindRotateLowLatency, KernelBlindRotateAmortized:
		if err := checkGadget(base.BlindRotateParameters()); err != nil {
			return nil, err
		}
		in := kb.torus(0, end*s.lweSize(s.lweDimension))
		lutBuf := kb.torus(1, s.polyDegree)
		out := kb.torus(2, end*s.glweSize())
		if kb.err != nil {
			return nil, kb.err
		}
		lut := tfhe.LookUpTable[T]{Value: poly.Poly[T]{Coeffs: lutBuf[:s.polyDegree]}}

		if kernel == KernelBlindRotateLowLatency {
			return func() error {
				for i := cfg.Offset; i < end; i++ {
					if err := eval.BaseEvaluator.BlindRotateAssign(lweAt(in, s.lweDimension, i), lut, glweAt(s, out, i)); err != nil {
						return err
					}
				}
				return nil
			}, nil
		}
		return func() error {
			cts := make([]tfhe.LWECiphertext[T], 0, cfg.SampleCount)
			ctOut := make([]tfhe.GLWECiphertext[T], 0, cfg.SampleCount)
			for i := cfg.Offset; i < end; i++ {
				cts = append(cts, lweAt(in, s.lweDimension, i))
				ctOut = append(ctOut, glweAt(s, out, i))
			}
			return eval.BaseEvaluator.BlindRotateBatchAssign(cts, lut, ctOut)
		}, nil

	case KernelExtractBits:
		if cfg.BitCount < 1 {
			return nil, fmt.Errorf("%w: bit count %v", tfhe.ErrInvalidParameters, cfg.BitCount)
		}
		in := kb.torus(0, end*s.lweSize(glweDim))
		out := kb.torus(1, end*cfg.BitCount*s.lweSize(s.lweDimension))
		if kb.err != nil {
			return nil, kb.err
		}
		return func() error {
			ctBits := make([]tfhe.LWECiphertext[T], cfg.BitCount)
			for i := cfg.Offset; i < end; i++ {
				for j := range ctBits {
					ctBits[j] = lweAt(out, s.lweDimension, i*cfg.BitCount+j)
				}
				if err := eval.ExtractBitsAssign(lweAt(in, glweDim, i), cfg.DeltaLog, cfg.BitCount, ctBits); err != nil {
					return err
				}
			}
			return nil
		}, nil

	case KernelCircuitBootstrap:
		if err := checkGadget(cbsParams); err != nil {
			return nil, err
		}
		in := kb.torus(0, end*s.lweSize(s.lweDimension))
		out := kb.torus(1, end*s.ggswSize(cfg.Level))
		if kb.err != nil {
			return nil, kb.err
		}
		return func() error {
			for i := cfg.Offset; i < end; i++ {
				if err := eval.CircuitBootstrapToGGSWAssign(lweAt(in, s.lweDimension, i), ggswAt(s, cbsParams, out, i)); err != nil {
					return err
				}
			}
			return nil
		}, nil

	case KernelCMuxTree:
		if err := checkGadget(cbsParams); err != nil {
			return nil, err
		}
		if cfg.BitCount < 1 || cfg.BitCount > 30 {
			return nil, fmt.Errorf("%w: %v selectors", tfhe.ErrLUTSizeMismatch, cfg.BitCount)
		}
		size := 1 << cfg.BitCount
		sel := kb.fourier(0, cfg.BitCount*s.fourierGGSWSize(cfg.Level))
		lut := kb.torus(1, end*size)
		out := kb.torus(2, end*s.lweSize(glweDim))
		if kb.err != nil {
			return nil, kb.err
		}
		return func() error {
			ctSelectors := make([]tfhe.FourierGGSWCiphertext[T], cfg.BitCount)
			for j := range ctSelectors {
				ctSelectors[j] = fourierGGSWAt(s, cbsParams, sel, j)
			}
			ctOut := make([]tfhe.LWECiphertext[T], 0, cfg.SampleCount)
			for i := cfg.Offset; i < end; i++ {
				ctOut = append(ctOut, lweAt(out, glweDim, i))
			}
			if len(ctOut) == 0 {
				return nil
			}
			return eval.VerticalPackingAssign(ctSelectors, lut[cfg.Offset*size:end*size], ctOut)
		}, nil

	case KernelWoPBS:
		if cfg.Outputs < 1 {
			return nil, fmt.Errorf("%w: %v outputs", tfhe.ErrBatchSizeMismatch, cfg.Outputs)
		}
		lutSize := cfg.Outputs * d.params.LookUpTableSize()
		in := kb.torus(0, end*s.lweSize(glweDim))
		lut := kb.torus(1, lutSize)
		out := kb.torus(2, end*cfg.Outputs*s.lweSize(glweDim))
		if kb.err != nil {
			return nil, kb.err
		}
		return func() error {
			ctOut := make([]tfhe.LWECiphertext[T], cfg.Outputs)
			for i := cfg.Offset; i < end; i++ {
				for j := range ctOut {
					ctOut[j] = lweAt(out, glweDim, i*cfg.Outputs+j)
				}
				if err := eval.WoPBSManyAssign(lweAt(in, glweDim, i), lut[:lutSize], ctOut); err != nil {
					return err
				}
			}
			return nil
		}, nil
	}

	return nil, fmt.Errorf("unknown kernel %v", kernel)
}
