// Package accel runs batches of WoP-PBS kernels over one or more execution units.
//
// A unit is any [Device]: it owns buffers, executes kernels over a fixed buffer layout,
// and reports failures as [*Error]. [HostDevice] executes kernels on the CPU.
// [Dispatcher] partitions a batch statically over its units.
package accel

import (
	"errors"
	"fmt"

	"github.com/snucp/tfhe-wopbs/tfhe"
)

var (
	// ErrAllocation is returned when a device cannot allocate a buffer.
	ErrAllocation = errors.New("device allocation failed")
	// ErrLaunch is returned when a kernel cannot be launched.
	ErrLaunch = errors.New("kernel launch failed")
	// ErrSync is returned when a launched kernel failed during execution.
	ErrSync = errors.New("device synchronization failed")
	// ErrNoDevice is returned when a Dispatcher has no device.
	ErrNoDevice = errors.New("no device")
	// ErrCanceled is returned when the context of a batch is done before it completes.
	// It is joined with the context error.
	ErrCanceled = errors.New("batch canceled")
)

// Error is an error reported by a device.
type Error struct {
	// Op is the device operation that failed.
	Op string
	// Device is the name of the device.
	Device string
	// Err wraps one of ErrAllocation, ErrLaunch, ErrSync or ErrCanceled.
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("accel: %s on %s: %v", e.Op, e.Device, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Kernel identifies a kernel a device can execute.
type Kernel int

const (
	// KernelConvertToFourier converts GGSW ciphertexts to the Fourier domain.
	//
	// Buffers: GGSW ciphertexts (torus), Fourier GGSW ciphertexts (fourier).
	KernelConvertToFourier Kernel = iota + 1
	// KernelBlindRotateLowLatency blind rotates each ciphertext with its own accumulator.
	//
	// Buffers: LWE ciphertexts of LWEDimension (torus), lookup table (torus), GLWE ciphertexts (torus).
	KernelBlindRotateLowLatency
	// KernelBlindRotateAmortized blind rotates the ciphertexts of a launch together,
	// reading each bootstrapping key row once.
	//
	// Buffers are the same as KernelBlindRotateLowLatency.
	KernelBlindRotateAmortized
	// KernelExtractBits extracts BitCount bits from each ciphertext.
	//
	// Buffers: LWE ciphertexts of GLWEDimension (torus),
	// BitCount LWE ciphertexts of LWEDimension per sample, LSB first (torus).
	KernelExtractBits
	// KernelCircuitBootstrap circuit bootstraps each bit.
	//
	// Buffers: LWE ciphertexts of LWEDimension (torus), GGSW ciphertexts (torus).
	KernelCircuitBootstrap
	// KernelCMuxTree evaluates vertical packing. Samples are lookup table segments.
	//
	// Buffers: BitCount Fourier GGSW selectors, MSB first (fourier),
	// segments of 2^BitCount entries (torus), LWE ciphertexts of GLWEDimension (torus).
	KernelCMuxTree
	// KernelWoPBS evaluates WoP-PBS with Outputs lookup table segments on each ciphertext.
	//
	// Buffers: LWE ciphertexts of GLWEDimension (torus), segments of 2^MessageBits entries (torus),
	// Outputs LWE ciphertexts of GLWEDimension per sample (torus).
	KernelWoPBS
)

func (k Kernel) String() string {
	switch k {
	case KernelConvertToFourier:
		return "ConvertToFourier"
	case KernelBlindRotateLowLatency:
		return "BlindRotateLowLatency"
	case KernelBlindRotateAmortized:
		return "BlindRotateAmortized"
	case KernelExtractBits:
		return "ExtractBits"
	case KernelCircuitBootstrap:
		return "CircuitBootstrap"
	case KernelCMuxTree:
		return "CMuxTree"
	case KernelWoPBS:
		return "WoPBS"
	}
	return fmt.Sprintf("Kernel(%d)", int(k))
}

// LaunchConfig is the scalar configuration of a kernel launch.
type LaunchConfig struct {
	// LWEDimension is the dimension of the LWE key.
	LWEDimension int
	// GLWERank is the rank of the GLWE key.
	GLWERank int
	// PolyDegree is the degree of polynomials.
	PolyDegree int

	// BaseLog and Level are the gadget parameters of the GGSW ciphertexts a kernel reads or writes.
	BaseLog int
	Level   int

	// SampleCount is the number of samples processed by the launch.
	SampleCount int
	// Offset is the index of the first sample in the buffers.
	Offset int
	// SharedMemory is the per-launch scratch budget in bytes. Zero means unlimited.
	SharedMemory int

	// DeltaLog is the position of the lowest message bit for KernelExtractBits.
	DeltaLog int
	// BitCount is the number of extracted bits, or the number of selectors for KernelCMuxTree.
	BitCount int
	// Outputs is the number of lookup table segments for KernelWoPBS.
	Outputs int
}

// BufferKind is the element type of a buffer.
type BufferKind int

const (
	// BufferTorus holds torus elements.
	BufferTorus BufferKind = iota
	// BufferFourier holds Fourier domain coefficients.
	BufferFourier
)

// Buffer is a handle to device memory.
type Buffer struct {
	ID   int
	Kind BufferKind
	// Len is the number of elements.
	Len int
}

// Device is an execution unit.
//
// Launches are ordered: a kernel sees the results of the previous launches.
// A Device is used by a single goroutine at a time.
type Device[T tfhe.TorusInt] interface {
	// Name returns the name of the device.
	Name() string
	// Allocate allocates a buffer of n elements.
	Allocate(kind BufferKind, n int) (Buffer, error)
	// CopyToDevice copies src to dst, starting from element offset.
	CopyToDevice(dst Buffer, offset int, src []T) error
	// CopyToHost copies src, starting from element offset, to dst.
	CopyToHost(dst []T, src Buffer, offset int) error
	// Launch launches kernel over buffers.
	Launch(kernel Kernel, buffers []Buffer, cfg LaunchConfig) error
	// Synchronize waits for all launches, and reports failures during their execution.
	Synchronize() error
	// Free releases a buffer.
	Free(b Buffer) error
}
