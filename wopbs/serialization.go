package wopbs

import (
	"bytes"
	"fmt"
	"io"

	"github.com/google/go-cmp/cmp"
	"github.com/snucp/tfhe-wopbs/tfhe"
)

// maxRows bounds the number of rows read from an untrusted stream.
const maxRows = 1 << 12

// ByteSize returns the size of the key in bytes.
func (cbsk CircuitBootstrapKey[T]) ByteSize() int {
	size := tfhe.HeaderSize(1)
	for _, pfksk := range cbsk.Value {
		size += pfksk.ByteSize()
	}
	return size
}

// MarshalBinary implements the [encoding.BinaryMarshaler] interface.
// Every row is written as a nested private functional keyswitching key.
func (cbsk CircuitBootstrapKey[T]) MarshalBinary() ([]byte, error) {
	b := make([]byte, 0, cbsk.ByteSize())
	b = tfhe.AppendHeader[T](b, tfhe.KindCircuitBootstrapKey, len(cbsk.Value))
	for _, pfksk := range cbsk.Value {
		row, err := pfksk.MarshalBinary()
		if err != nil {
			return nil, err
		}
		b = append(b, row...)
	}
	return b, nil
}

// WriteTo implements the [io.WriterTo] interface.
func (cbsk CircuitBootstrapKey[T]) WriteTo(w io.Writer) (int64, error) {
	data, err := cbsk.MarshalBinary()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(data)
	return int64(n), err
}

// ReadFrom implements the [io.ReaderFrom] interface.
func (cbsk *CircuitBootstrapKey[T]) ReadFrom(r io.Reader) (int64, error) {
	shape, n, err := tfhe.ReadHeader[T](r, tfhe.KindCircuitBootstrapKey, 1)
	if err != nil {
		return n, err
	}
	rows := shape[0]
	if rows < 2 || rows > maxRows {
		return n, fmt.Errorf("%w: %v rows", tfhe.ErrMalformedPayload, rows)
	}

	value := make([]tfhe.PrivateFunctionalKeySwitchKey[T], rows)
	for i := range value {
		m, err := value[i].ReadFrom(r)
		n += m
		if err != nil {
			return n, fmt.Errorf("row %v: %w", i, err)
		}
	}
	cbsk.Value = value
	return n, nil
}

// UnmarshalBinary implements the [encoding.BinaryUnmarshaler] interface.
func (cbsk *CircuitBootstrapKey[T]) UnmarshalBinary(data []byte) error {
	return unmarshalFrom(data, cbsk)
}

// Equals returns whether the two keys are equal.
func (cbsk CircuitBootstrapKey[T]) Equals(cbskOther CircuitBootstrapKey[T]) bool {
	return cmp.Equal(cbsk, cbskOther, cmp.AllowUnexported(tfhe.GadgetParameters[T]{}))
}

// ByteSize returns the size of the key in bytes.
func (evk EvaluationKey[T]) ByteSize() int {
	return tfhe.HeaderSize(0) + evk.BaseEvaluationKey.ByteSize() + evk.CircuitBootstrapKey.ByteSize()
}

// MarshalBinary implements the [encoding.BinaryMarshaler] interface.
// The base evaluation key and the circuit bootstrapping key are written as nested entities.
func (evk EvaluationKey[T]) MarshalBinary() ([]byte, error) {
	b := make([]byte, 0, evk.ByteSize())
	b = tfhe.AppendHeader[T](b, tfhe.KindWoPBSEvaluationKey)

	base, err := evk.BaseEvaluationKey.MarshalBinary()
	if err != nil {
		return nil, err
	}
	cbsk, err := evk.CircuitBootstrapKey.MarshalBinary()
	if err != nil {
		return nil, err
	}
	b = append(b, base...)
	return append(b, cbsk...), nil
}

// WriteTo implements the [io.WriterTo] interface.
func (evk EvaluationKey[T]) WriteTo(w io.Writer) (int64, error) {
	data, err := evk.MarshalBinary()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(data)
	return int64(n), err
}

// ReadFrom implements the [io.ReaderFrom] interface.
func (evk *EvaluationKey[T]) ReadFrom(r io.Reader) (int64, error) {
	_, n, err := tfhe.ReadHeader[T](r, tfhe.KindWoPBSEvaluationKey, 0)
	if err != nil {
		return n, err
	}

	var base tfhe.EvaluationKey[T]
	m, err := base.ReadFrom(r)
	n += m
	if err != nil {
		return n, fmt.Errorf("base evaluation key: %w", err)
	}

	var cbsk CircuitBootstrapKey[T]
	m, err = cbsk.ReadFrom(r)
	n += m
	if err != nil {
		return n, fmt.Errorf("circuit bootstrap key: %w", err)
	}

	evk.BaseEvaluationKey = base
	evk.CircuitBootstrapKey = cbsk
	return n, nil
}

// UnmarshalBinary implements the [encoding.BinaryUnmarshaler] interface.
func (evk *EvaluationKey[T]) UnmarshalBinary(data []byte) error {
	return unmarshalFrom(data, evk)
}

// Equals returns whether the two keys are equal.
func (evk EvaluationKey[T]) Equals(evkOther EvaluationKey[T]) bool {
	return evk.BaseEvaluationKey.Equals(evkOther.BaseEvaluationKey) && evk.CircuitBootstrapKey.Equals(evkOther.CircuitBootstrapKey)
}

// unmarshalFrom reads an entity from data, rejecting trailing bytes.
func unmarshalFrom(data []byte, r io.ReaderFrom) error {
	n, err := r.ReadFrom(bytes.NewReader(data))
	if err != nil {
		return err
	}
	if int(n) != len(data) {
		return fmt.Errorf("%w: %v trailing bytes", tfhe.ErrMalformedPayload, len(data)-int(n))
	}
	return nil
}
