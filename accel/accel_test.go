package accel_test

import (
	"bytes"
	"context"
	"errors"
	"log"
	"testing"

	"github.com/snucp/tfhe-wopbs/accel"
	"github.com/snucp/tfhe-wopbs/storage"
	"github.com/snucp/tfhe-wopbs/tfhe"
	"github.com/snucp/tfhe-wopbs/wopbs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testParams = wopbs.ParamsTestUint64.Compile()
	baseParams = testParams.BaseParameters()
	enc        = wopbs.NewEncryptorWithSeed(testParams, []byte("accel test seed"))
	eval       = wopbs.NewEvaluator(testParams, enc.GenEvaluationKeyParallel())
)

// failingDevice fails every allocation after the first n.
type failingDevice struct {
	accel.Device[uint64]
	n int
}

func (d *failingDevice) Allocate(kind accel.BufferKind, n int) (accel.Buffer, error) {
	if d.n == 0 {
		return accel.Buffer{}, &accel.Error{Op: "allocate", Device: d.Name(), Err: accel.ErrAllocation}
	}
	d.n--
	return d.Device.Allocate(kind, n)
}

// cancelingDevice cancels a context on its first launch.
type cancelingDevice struct {
	accel.Device[uint64]
	cancel context.CancelFunc
}

func (d *cancelingDevice) Launch(kernel accel.Kernel, buffers []accel.Buffer, cfg accel.LaunchConfig) error {
	d.cancel()
	return d.Device.Launch(kernel, buffers, cfg)
}

func newDispatcher(t *testing.T, cfg accel.Config) *accel.Dispatcher[uint64] {
	d, err := accel.NewHostDispatcher(eval, cfg)
	require.NoError(t, err)
	return d
}

func TestPartition(t *testing.T) {
	tests := []struct {
		total, units int
		counts       []int
	}{
		{10, 3, []int{3, 3, 4}},
		{8, 4, []int{2, 2, 2, 2}},
		{3, 4, []int{0, 0, 0, 3}},
		{0, 2, []int{0, 0}},
		{5, 1, []int{5}},
	}

	for _, tc := range tests {
		ranges := accel.Partition(tc.total, tc.units)
		require.Len(t, ranges, tc.units)

		start := 0
		for i, r := range ranges {
			assert.Equal(t, start, r.Start)
			assert.Equal(t, tc.counts[i], r.Count)
			start += r.Count
		}
		assert.Equal(t, tc.total, start)
	}
}

func TestHostDevice(t *testing.T) {
	t.Run("Allocation", func(t *testing.T) {
		dev := accel.NewHostDevice("host", eval, 1024)

		b, err := dev.Allocate(accel.BufferTorus, 64)
		require.NoError(t, err)
		assert.Equal(t, 512, dev.Allocated())

		_, err = dev.Allocate(accel.BufferFourier, 64)
		var accelErr *accel.Error
		require.ErrorAs(t, err, &accelErr)
		assert.Equal(t, "host", accelErr.Device)
		assert.ErrorIs(t, err, accel.ErrAllocation)

		require.NoError(t, dev.Free(b))
		assert.Equal(t, 0, dev.Allocated())
		assert.ErrorIs(t, dev.Free(b), accel.ErrAllocation)
	})

	t.Run("Copy", func(t *testing.T) {
		dev := accel.NewHostDevice("host", eval, 0)
		b, err := dev.Allocate(accel.BufferTorus, 4)
		require.NoError(t, err)

		require.NoError(t, dev.CopyToDevice(b, 1, []uint64{1, 2, 3}))
		assert.ErrorIs(t, dev.CopyToDevice(b, 2, []uint64{1, 2, 3}), accel.ErrLaunch)

		out := make([]uint64, 4)
		require.NoError(t, dev.CopyToHost(out, b, 0))
		assert.Equal(t, []uint64{0, 1, 2, 3}, out)
	})

	t.Run("Launch", func(t *testing.T) {
		dev := accel.NewHostDevice("host", eval, 0)
		cfg := accel.LaunchConfig{
			LWEDimension: baseParams.LWEDimension(),
			GLWERank:     baseParams.GLWERank(),
			PolyDegree:   baseParams.PolyDegree(),
			SampleCount:  1,
		}

		assert.ErrorIs(t, dev.Launch(accel.Kernel(100), nil, cfg), accel.ErrLaunch)
		assert.ErrorIs(t, dev.Launch(accel.KernelWoPBS, nil, accel.LaunchConfig{}), accel.ErrLaunch)

		cfg.Outputs = 1
		assert.ErrorIs(t, dev.Launch(accel.KernelWoPBS, nil, cfg), accel.ErrLaunch)

		cfg.BaseLog = 1
		cfg.Level = 1
		assert.ErrorIs(t, dev.Launch(accel.KernelCircuitBootstrap, nil, cfg), tfhe.ErrGadgetMismatch)
		assert.NoError(t, dev.Synchronize())
	})

	t.Run("Synchronize", func(t *testing.T) {
		dev := accel.NewHostDevice("host", wopbs.NewEvaluator(testParams, wopbs.EvaluationKey[uint64]{}), 0)
		brParams := baseParams.BlindRotateParameters()
		cfg := accel.LaunchConfig{
			LWEDimension: baseParams.LWEDimension(),
			GLWERank:     baseParams.GLWERank(),
			PolyDegree:   baseParams.PolyDegree(),
			BaseLog:      brParams.BaseLog(),
			Level:        brParams.Level(),
			SampleCount:  1,
		}

		in, err := dev.Allocate(accel.BufferTorus, baseParams.LWEDimension()+1)
		require.NoError(t, err)
		lut, err := dev.Allocate(accel.BufferTorus, baseParams.PolyDegree())
		require.NoError(t, err)
		out, err := dev.Allocate(accel.BufferTorus, (baseParams.GLWERank()+1)*baseParams.PolyDegree())
		require.NoError(t, err)

		require.NoError(t, dev.Launch(accel.KernelBlindRotateLowLatency, []accel.Buffer{in, lut, out}, cfg))
		assert.ErrorIs(t, dev.Synchronize(), accel.ErrSync)
		assert.ErrorIs(t, dev.Synchronize(), tfhe.ErrLWEDimensionMismatch)
		assert.ErrorIs(t, dev.Launch(accel.KernelBlindRotateLowLatency, []accel.Buffer{in, lut, out}, cfg), accel.ErrLaunch)
	})
}

func TestDispatcher(t *testing.T) {
	ctx := context.Background()

	t.Run("WoPBS", func(t *testing.T) {
		d := newDispatcher(t, accel.Config{Units: 2, SamplesPerLaunch: 2})
		f := func(x int) int { return (3*x + 1) % 16 }

		xs := []int{0, 5, 9, 13, 15}
		cts := make([]tfhe.LWECiphertext[uint64], len(xs))
		for i, x := range xs {
			cts[i] = enc.EncryptLWE(x)
		}

		ctOut, err := d.WoPBS(ctx, cts, eval.GenLookUpTable(f))
		require.NoError(t, err)
		require.Len(t, ctOut, len(xs))
		for i, x := range xs {
			assert.Equal(t, f(x), enc.DecryptLWE(ctOut[i]), "x = %v", x)
		}
	})

	t.Run("WoPBSMany", func(t *testing.T) {
		d := newDispatcher(t, accel.Config{Units: 3})
		lut := eval.GenLookUpTableMany(
			func(x int) int { return x },
			func(x int) int { return 15 - x },
		)

		ctOut, err := d.WoPBSMany(ctx, []tfhe.LWECiphertext[uint64]{enc.EncryptLWE(4)}, lut)
		require.NoError(t, err)
		assert.Equal(t, 4, enc.DecryptLWE(ctOut[0][0]))
		assert.Equal(t, 11, enc.DecryptLWE(ctOut[0][1]))
	})

	t.Run("BlindRotate", func(t *testing.T) {
		d := newDispatcher(t, accel.Config{Units: 2})
		lut := eval.BaseEvaluator.GenLookUpTable(func(x int) int { return 2 * x })

		cts := make([]tfhe.LWECiphertext[uint64], 3)
		for i := range cts {
			cts[i] = eval.BaseEvaluator.KeySwitchForBootstrap(enc.EncryptLWE(i))
		}

		ctLowLatency, err := d.BlindRotate(ctx, accel.KernelBlindRotateLowLatency, cts, lut)
		require.NoError(t, err)
		ctAmortized, err := d.BlindRotate(ctx, accel.KernelBlindRotateAmortized, cts, lut)
		require.NoError(t, err)

		for i := range cts {
			assert.True(t, ctLowLatency[i].Equals(ctAmortized[i]))
			assert.Equal(t, 2*i, enc.BaseEncryptor.DecryptGLWE(ctLowLatency[i])[0])
		}

		_, err = d.BlindRotate(ctx, accel.KernelWoPBS, cts, lut)
		assert.ErrorIs(t, err, tfhe.ErrInvalidParameters)
	})

	t.Run("Pipeline", func(t *testing.T) {
		d := newDispatcher(t, accel.Config{Units: 2})
		x := 11
		r := testParams.MessageBits()

		ctBits, err := d.ExtractBits(ctx, []tfhe.LWECiphertext[uint64]{enc.EncryptLWE(x)}, testParams.DeltaLog(), r)
		require.NoError(t, err)
		require.Len(t, ctBits[0], r)

		ctGGSW, err := d.CircuitBootstrap(ctx, ctBits[0])
		require.NoError(t, err)
		for i := range ctGGSW {
			assert.Equal(t, (x>>i)&1, enc.BaseEncryptor.DecryptGGSW(ctGGSW[i]))
		}

		ctSelectors := make([]tfhe.GGSWCiphertext[uint64], r)
		for i := range ctSelectors {
			ctSelectors[i] = ctGGSW[r-1-i]
		}
		lut := eval.GenLookUpTableMany(
			func(x int) int { return x },
			func(x int) int { return 15 - x },
			func(x int) int { return x / 2 },
		)

		ctOut, err := d.VerticalPacking(ctx, ctSelectors, lut)
		require.NoError(t, err)
		assert.Equal(t, x, enc.DecryptLWE(ctOut[0]))
		assert.Equal(t, 15-x, enc.DecryptLWE(ctOut[1]))
		assert.Equal(t, x/2, enc.DecryptLWE(ctOut[2]))
	})

	t.Run("Abort", func(t *testing.T) {
		devices := []accel.Device[uint64]{
			accel.NewHostDevice("host:0", eval, 0),
			&failingDevice{Device: accel.NewHostDevice("host:1", eval, 0), n: 2},
		}
		d, err := accel.NewDispatcher(testParams, devices, accel.Config{})
		require.NoError(t, err)

		cts := []tfhe.LWECiphertext[uint64]{enc.EncryptLWE(1), enc.EncryptLWE(2)}
		ctOut, err := d.WoPBS(ctx, cts, eval.GenLookUpTable(func(x int) int { return x }))
		assert.Nil(t, ctOut)
		assert.ErrorIs(t, err, accel.ErrAllocation)

		var accelErr *accel.Error
		require.ErrorAs(t, err, &accelErr)
		assert.Equal(t, "host:1", accelErr.Device)
	})

	t.Run("Canceled", func(t *testing.T) {
		d := newDispatcher(t, accel.Config{Units: 2})
		ctx, cancel := context.WithCancel(ctx)
		cancel()

		_, err := d.WoPBS(ctx, []tfhe.LWECiphertext[uint64]{enc.EncryptLWE(1)}, eval.GenLookUpTable(func(x int) int { return x }))
		assert.ErrorIs(t, err, context.Canceled)
		assert.ErrorIs(t, err, accel.ErrCanceled)

		var accelErr *accel.Error
		require.ErrorAs(t, err, &accelErr)
		assert.Equal(t, "dispatcher", accelErr.Device)
	})

	t.Run("CanceledDuringLaunch", func(t *testing.T) {
		ctx, cancel := context.WithCancel(ctx)
		defer cancel()

		devices := []accel.Device[uint64]{&cancelingDevice{Device: accel.NewHostDevice("host:0", eval, 0), cancel: cancel}}
		d, err := accel.NewDispatcher(testParams, devices, accel.Config{SamplesPerLaunch: 1})
		require.NoError(t, err)

		cts := []tfhe.LWECiphertext[uint64]{enc.EncryptLWE(1), enc.EncryptLWE(2)}
		_, err = d.WoPBS(ctx, cts, eval.GenLookUpTable(func(x int) int { return x }))
		assert.ErrorIs(t, err, context.Canceled)
		assert.ErrorIs(t, err, accel.ErrCanceled)

		var accelErr *accel.Error
		require.ErrorAs(t, err, &accelErr)
		assert.Equal(t, "host:0", accelErr.Device)
	})

	t.Run("Errors", func(t *testing.T) {
		_, err := accel.NewDispatcher[uint64](testParams, nil, accel.Config{})
		assert.ErrorIs(t, err, accel.ErrNoDevice)
		_, err = accel.NewHostDispatcher(eval, accel.Config{})
		assert.ErrorIs(t, err, accel.ErrNoDevice)

		d := newDispatcher(t, accel.Config{Units: 1})
		_, err = d.WoPBS(ctx, []tfhe.LWECiphertext[uint64]{enc.EncryptLWE(1)}, make([]uint64, 8))
		assert.ErrorIs(t, err, tfhe.ErrLUTSizeMismatch)

		ctSmall := eval.BaseEvaluator.KeySwitchForBootstrap(enc.EncryptLWE(1))
		_, err = d.WoPBS(ctx, []tfhe.LWECiphertext[uint64]{ctSmall}, make([]uint64, 16))
		assert.ErrorIs(t, err, tfhe.ErrLWEDimensionMismatch)
	})

	t.Run("Logger", func(t *testing.T) {
		var buf bytes.Buffer
		d := newDispatcher(t, accel.Config{Units: 1, Logger: log.New(&buf, "", 0)})

		_, err := d.ExtractBits(ctx, []tfhe.LWECiphertext[uint64]{enc.EncryptLWE(3)}, testParams.DeltaLog(), 2)
		require.NoError(t, err)
		assert.Contains(t, buf.String(), "ExtractBits completed 1 samples on 1 units")
	})
}

func TestLoadHostDispatcher(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryStore(0)
	defer store.Close()

	h, err := storage.PutEntity(ctx, store, eval.EvaluationKey)
	require.NoError(t, err)

	d, err := accel.LoadHostDispatcher(ctx, testParams, store, h, accel.Config{Units: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, d.Units())

	ctOut, err := d.WoPBS(ctx, []tfhe.LWECiphertext[uint64]{enc.EncryptLWE(7)}, eval.GenLookUpTable(func(x int) int { return x + 1 }))
	require.NoError(t, err)
	assert.Equal(t, 8, enc.DecryptLWE(ctOut[0]))

	_, err = accel.LoadHostDispatcher(ctx, testParams, store, storage.ComputeHandle(nil), accel.Config{Units: 1})
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}
