package tfhe

import (
	"bytes"
	"encoding"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/google/go-cmp/cmp"
	"github.com/snucp/tfhe-wopbs/math/num"
	"github.com/snucp/tfhe-wopbs/math/poly"
)

// SerializationVersion is the format version written by this package.
// Every entity starts with [version][kind][bit size of T], followed by
// the shape as big endian uint32 values and the payload.
const SerializationVersion uint8 = 0

// Shapes read from an untrusted stream are rejected beyond these bounds,
// before anything is allocated.
const (
	maxLWEDimension = 1 << 20
	maxGLWERank     = 16
	maxPolyDegree   = 1 << 17
	maxPayloadSize  = 1 << 36
)

// payloadChunkSize is the largest buffer grown ahead of the data read from a stream.
const payloadChunkSize = 1 << 20

// Kind identifies the type of a serialized entity.
type Kind uint8

const (
	KindLWECiphertext Kind = iota + 1
	KindGLWECiphertext
	KindGGSWCiphertext
	KindFourierGGSWCiphertext
	KindLookUpTable
	KindLWEKeySwitchKey
	KindPrivateFunctionalKeySwitchKey
	KindFourierBootstrapKey
	KindEvaluationKey
	KindCircuitBootstrapKey
	KindWoPBSEvaluationKey
)

// String implements the fmt.Stringer interface.
func (k Kind) String() string {
	switch k {
	case KindLWECiphertext:
		return "LWECiphertext"
	case KindGLWECiphertext:
		return "GLWECiphertext"
	case KindGGSWCiphertext:
		return "GGSWCiphertext"
	case KindFourierGGSWCiphertext:
		return "FourierGGSWCiphertext"
	case KindLookUpTable:
		return "LookUpTable"
	case KindLWEKeySwitchKey:
		return "LWEKeySwitchKey"
	case KindPrivateFunctionalKeySwitchKey:
		return "PrivateFunctionalKeySwitchKey"
	case KindFourierBootstrapKey:
		return "FourierBootstrapKey"
	case KindEvaluationKey:
		return "EvaluationKey"
	case KindCircuitBootstrapKey:
		return "CircuitBootstrapKey"
	case KindWoPBSEvaluationKey:
		return "WoPBSEvaluationKey"
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// HeaderSize returns the size of an entity header with shapeLen shape values.
func HeaderSize(shapeLen int) int {
	return headerSize(shapeLen)
}

// AppendHeader appends the header of an entity of given kind and shape to b.
// Packages building entities out of this package's entities use it
// to keep the same versioned format.
func AppendHeader[T TorusInt](b []byte, kind Kind, shape ...int) []byte {
	return appendHeader[T](b, kind, shape...)
}

// ReadHeader reads the header written by [AppendHeader] and returns its shape.
// It returns an error wrapping ErrUnsupportedVersion or ErrMalformedPayload.
func ReadHeader[T TorusInt](r io.Reader, kind Kind, shapeLen int) ([]int, int64, error) {
	return readHeader[T](r, kind, shapeLen)
}

func headerSize(shapeLen int) int {
	return 3 + 4*shapeLen
}

func sizeOfT[T TorusInt]() int {
	return num.SizeT[T]() / 8
}

func appendHeader[T TorusInt](b []byte, kind Kind, shape ...int) []byte {
	b = append(b, SerializationVersion, byte(kind), byte(num.SizeT[T]()))
	for _, s := range shape {
		b = binary.BigEndian.AppendUint32(b, uint32(s))
	}
	return b
}

// readHeader reads the header of an entity of given kind with shapeLen shape values.
func readHeader[T TorusInt](r io.Reader, kind Kind, shapeLen int) ([]int, int64, error) {
	var prefix [3]byte
	n, err := io.ReadFull(r, prefix[:])
	if err != nil {
		return nil, int64(n), fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}

	switch {
	case prefix[0] != SerializationVersion:
		return nil, int64(n), fmt.Errorf("%w: %v", ErrUnsupportedVersion, prefix[0])
	case Kind(prefix[1]) != kind:
		return nil, int64(n), fmt.Errorf("%w: expected %v, got %v", ErrMalformedPayload, kind, Kind(prefix[1]))
	case int(prefix[2]) != num.SizeT[T]():
		return nil, int64(n), fmt.Errorf("%w: expected %v-bit torus, got %v-bit", ErrMalformedPayload, num.SizeT[T](), prefix[2])
	}

	buf := make([]byte, 4*shapeLen)
	m, err := io.ReadFull(r, buf)
	if err != nil {
		return nil, int64(n + m), fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}

	shape := make([]int, shapeLen)
	for i := range shape {
		shape[i] = int(binary.BigEndian.Uint32(buf[4*i:]))
	}
	return shape, int64(n + m), nil
}

// payloadSize returns the product of dims and unit,
// or an error if it exceeds maxPayloadSize.
func payloadSize(unit int, dims ...int) (int, error) {
	size := unit
	for _, d := range dims {
		if d != 0 && size > maxPayloadSize/d {
			return 0, fmt.Errorf("%w: payload too large", ErrMalformedPayload)
		}
		size *= d
	}
	return size, nil
}

// readPayload reads exactly size bytes from r.
// The buffer grows as data arrives, so a forged size costs at most one chunk.
func readPayload(r io.Reader, size int) ([]byte, int64, error) {
	var buf bytes.Buffer
	buf.Grow(min(size, payloadChunkSize))
	n, err := io.CopyN(&buf, r, int64(size))
	if err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, n, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}
	return buf.Bytes(), n, nil
}

func checkPolyShape(rank, polyDegree int) error {
	if rank <= 0 || rank > maxGLWERank || polyDegree < poly.MinDegree || polyDegree > maxPolyDegree || !num.IsPowerOfTwo(polyDegree) {
		return fmt.Errorf("%w: rank %v, degree %v", ErrMalformedPayload, rank, polyDegree)
	}
	return nil
}

func checkLWEShape(dims ...int) error {
	for _, d := range dims {
		if d <= 0 || d > maxLWEDimension {
			return fmt.Errorf("%w: lwe dimension %v", ErrMalformedPayload, d)
		}
	}
	return nil
}

func gadgetFromShape[T TorusInt](baseLog, level int) (GadgetParameters[T], error) {
	if baseLog <= 0 || baseLog >= num.SizeT[T]() {
		return GadgetParameters[T]{}, fmt.Errorf("%w: base log %v", ErrMalformedPayload, baseLog)
	}
	g, err := GadgetParametersLiteral[T]{Base: T(1) << baseLog, Level: level}.CompileChecked()
	if err != nil {
		return GadgetParameters[T]{}, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}
	return g, nil
}

func appendTorus[T TorusInt](b []byte, v []T) []byte {
	if num.SizeT[T]() == 32 {
		for _, x := range v {
			b = binary.BigEndian.AppendUint32(b, uint32(x))
		}
		return b
	}
	for _, x := range v {
		b = binary.BigEndian.AppendUint64(b, uint64(x))
	}
	return b
}

// decodeTorus fills v from data and returns the rest of data.
func decodeTorus[T TorusInt](data []byte, v []T) []byte {
	if num.SizeT[T]() == 32 {
		for i := range v {
			v[i] = T(binary.BigEndian.Uint32(data[4*i:]))
		}
		return data[4*len(v):]
	}
	for i := range v {
		v[i] = T(binary.BigEndian.Uint64(data[8*i:]))
	}
	return data[8*len(v):]
}

func appendFourier(b []byte, v []complex128) []byte {
	for _, c := range v {
		b = binary.BigEndian.AppendUint64(b, math.Float64bits(real(c)))
		b = binary.BigEndian.AppendUint64(b, math.Float64bits(imag(c)))
	}
	return b
}

func decodeFourier(data []byte, v []complex128) []byte {
	for i := range v {
		re := math.Float64frombits(binary.BigEndian.Uint64(data[16*i:]))
		im := math.Float64frombits(binary.BigEndian.Uint64(data[16*i+8:]))
		v[i] = complex(re, im)
	}
	return data[16*len(v):]
}

func writeMarshaled(w io.Writer, m encoding.BinaryMarshaler) (int64, error) {
	data, err := m.MarshalBinary()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(data)
	return int64(n), err
}

func unmarshalFrom(data []byte, r io.ReaderFrom) error {
	n, err := r.ReadFrom(bytes.NewReader(data))
	if err != nil {
		return err
	}
	if int(n) != len(data) {
		return fmt.Errorf("%w: %v trailing bytes", ErrMalformedPayload, len(data)-int(n))
	}
	return nil
}

func equal[E any](x, y E) bool {
	var g GadgetParameters[uint32]
	var h GadgetParameters[uint64]
	return cmp.Equal(x, y, cmp.AllowUnexported(g, h))
}

// ByteSize returns the size of the ciphertext in bytes.
func (ct LWECiphertext[T]) ByteSize() int {
	return headerSize(1) + len(ct.Value)*sizeOfT[T]()
}

// MarshalBinary implements the [encoding.BinaryMarshaler] interface.
func (ct LWECiphertext[T]) MarshalBinary() ([]byte, error) {
	b := make([]byte, 0, ct.ByteSize())
	b = appendHeader[T](b, KindLWECiphertext, ct.Dimension())
	return appendTorus(b, ct.Value), nil
}

// WriteTo implements the [io.WriterTo] interface.
func (ct LWECiphertext[T]) WriteTo(w io.Writer) (int64, error) {
	return writeMarshaled(w, ct)
}

// ReadFrom implements the [io.ReaderFrom] interface.
func (ct *LWECiphertext[T]) ReadFrom(r io.Reader) (int64, error) {
	shape, n, err := readHeader[T](r, KindLWECiphertext, 1)
	if err != nil {
		return n, err
	}
	if err := checkLWEShape(shape[0]); err != nil {
		return n, err
	}
	size, err := payloadSize(sizeOfT[T](), shape[0]+1)
	if err != nil {
		return n, err
	}
	payload, m, err := readPayload(r, size)
	if err != nil {
		return n + m, err
	}

	*ct = NewLWECiphertextCustom[T](shape[0])
	decodeTorus(payload, ct.Value)
	return n + m, nil
}

// UnmarshalBinary implements the [encoding.BinaryUnmarshaler] interface.
func (ct *LWECiphertext[T]) UnmarshalBinary(data []byte) error {
	return unmarshalFrom(data, ct)
}

// Equals returns whether the two ciphertexts are equal.
func (ct LWECiphertext[T]) Equals(ctOther LWECiphertext[T]) bool {
	return equal(ct, ctOther)
}

// ByteSize returns the size of the ciphertext in bytes.
func (ct GLWECiphertext[T]) ByteSize() int {
	return headerSize(2) + len(ct.Value)*ct.Degree()*sizeOfT[T]()
}

func appendGLWE[T TorusInt](b []byte, ct GLWECiphertext[T]) []byte {
	for _, p := range ct.Value {
		b = appendTorus(b, p.Coeffs)
	}
	return b
}

func decodeGLWE[T TorusInt](data []byte, ct GLWECiphertext[T]) []byte {
	for _, p := range ct.Value {
		data = decodeTorus(data, p.Coeffs)
	}
	return data
}

// MarshalBinary implements the [encoding.BinaryMarshaler] interface.
func (ct GLWECiphertext[T]) MarshalBinary() ([]byte, error) {
	b := make([]byte, 0, ct.ByteSize())
	b = appendHeader[T](b, KindGLWECiphertext, ct.Rank(), ct.Degree())
	return appendGLWE(b, ct), nil
}

// WriteTo implements the [io.WriterTo] interface.
func (ct GLWECiphertext[T]) WriteTo(w io.Writer) (int64, error) {
	return writeMarshaled(w, ct)
}

// ReadFrom implements the [io.ReaderFrom] interface.
func (ct *GLWECiphertext[T]) ReadFrom(r io.Reader) (int64, error) {
	shape, n, err := readHeader[T](r, KindGLWECiphertext, 2)
	if err != nil {
		return n, err
	}
	rank, N := shape[0], shape[1]
	if err := checkPolyShape(rank, N); err != nil {
		return n, err
	}
	size, err := payloadSize(sizeOfT[T](), rank+1, N)
	if err != nil {
		return n, err
	}
	payload, m, err := readPayload(r, size)
	if err != nil {
		return n + m, err
	}

	*ct = NewGLWECiphertextCustom[T](rank, N)
	decodeGLWE(payload, *ct)
	return n + m, nil
}

// UnmarshalBinary implements the [encoding.BinaryUnmarshaler] interface.
func (ct *GLWECiphertext[T]) UnmarshalBinary(data []byte) error {
	return unmarshalFrom(data, ct)
}

// Equals returns whether the two ciphertexts are equal.
func (ct GLWECiphertext[T]) Equals(ctOther GLWECiphertext[T]) bool {
	return equal(ct, ctOther)
}

// ByteSize returns the size of the ciphertext in bytes.
func (ct GGSWCiphertext[T]) ByteSize() int {
	k1 := len(ct.Value)
	N := ct.Value[0].Value[0].Degree()
	return headerSize(4) + k1*ct.GadgetParameters.level*k1*N*sizeOfT[T]()
}

func appendGLev[T TorusInt](b []byte, ct GLevCiphertext[T]) []byte {
	for _, glwe := range ct.Value {
		b = appendGLWE(b, glwe)
	}
	return b
}

func decodeGLev[T TorusInt](data []byte, ct GLevCiphertext[T]) []byte {
	for _, glwe := range ct.Value {
		data = decodeGLWE(data, glwe)
	}
	return data
}

// MarshalBinary implements the [encoding.BinaryMarshaler] interface.
func (ct GGSWCiphertext[T]) MarshalBinary() ([]byte, error) {
	b := make([]byte, 0, ct.ByteSize())
	g := ct.GadgetParameters
	b = appendHeader[T](b, KindGGSWCiphertext, len(ct.Value)-1, ct.Value[0].Value[0].Degree(), g.baseLog, g.level)
	for _, glev := range ct.Value {
		b = appendGLev(b, glev)
	}
	return b, nil
}

// WriteTo implements the [io.WriterTo] interface.
func (ct GGSWCiphertext[T]) WriteTo(w io.Writer) (int64, error) {
	return writeMarshaled(w, ct)
}

// ReadFrom implements the [io.ReaderFrom] interface.
func (ct *GGSWCiphertext[T]) ReadFrom(r io.Reader) (int64, error) {
	shape, n, err := readHeader[T](r, KindGGSWCiphertext, 4)
	if err != nil {
		return n, err
	}
	rank, N := shape[0], shape[1]
	if err := checkPolyShape(rank, N); err != nil {
		return n, err
	}
	g, err := gadgetFromShape[T](shape[2], shape[3])
	if err != nil {
		return n, err
	}
	size, err := payloadSize(sizeOfT[T](), rank+1, g.level, rank+1, N)
	if err != nil {
		return n, err
	}
	payload, m, err := readPayload(r, size)
	if err != nil {
		return n + m, err
	}

	*ct = NewGGSWCiphertextCustom[T](rank, N, g)
	for _, glev := range ct.Value {
		payload = decodeGLev(payload, glev)
	}
	return n + m, nil
}

// UnmarshalBinary implements the [encoding.BinaryUnmarshaler] interface.
func (ct *GGSWCiphertext[T]) UnmarshalBinary(data []byte) error {
	return unmarshalFrom(data, ct)
}

// Equals returns whether the two ciphertexts are equal.
func (ct GGSWCiphertext[T]) Equals(ctOther GGSWCiphertext[T]) bool {
	return equal(ct, ctOther)
}

// ByteSize returns the size of the ciphertext in bytes.
func (ct FourierGGSWCiphertext[T]) ByteSize() int {
	return headerSize(4) + ct.payloadSize()
}

func (ct FourierGGSWCiphertext[T]) payloadSize() int {
	k1 := ct.Rank() + 1
	return k1 * ct.GadgetParameters.level * k1 * (ct.Degree() / 2) * 16
}

func (ct FourierGGSWCiphertext[T]) appendPayload(b []byte) []byte {
	for _, glev := range ct.Value {
		for _, glwe := range glev.Value {
			for _, p := range glwe.Value {
				b = appendFourier(b, p.Coeffs)
			}
		}
	}
	return b
}

func (ct FourierGGSWCiphertext[T]) decodePayload(data []byte) []byte {
	for _, glev := range ct.Value {
		for _, glwe := range glev.Value {
			for _, p := range glwe.Value {
				data = decodeFourier(data, p.Coeffs)
			}
		}
	}
	return data
}

// MarshalBinary implements the [encoding.BinaryMarshaler] interface.
func (ct FourierGGSWCiphertext[T]) MarshalBinary() ([]byte, error) {
	b := make([]byte, 0, ct.ByteSize())
	g := ct.GadgetParameters
	b = appendHeader[T](b, KindFourierGGSWCiphertext, ct.Rank(), ct.Degree(), g.baseLog, g.level)
	return ct.appendPayload(b), nil
}

// WriteTo implements the [io.WriterTo] interface.
func (ct FourierGGSWCiphertext[T]) WriteTo(w io.Writer) (int64, error) {
	return writeMarshaled(w, ct)
}

// ReadFrom implements the [io.ReaderFrom] interface.
func (ct *FourierGGSWCiphertext[T]) ReadFrom(r io.Reader) (int64, error) {
	shape, n, err := readHeader[T](r, KindFourierGGSWCiphertext, 4)
	if err != nil {
		return n, err
	}
	rank, N := shape[0], shape[1]
	if err := checkPolyShape(rank, N); err != nil {
		return n, err
	}
	g, err := gadgetFromShape[T](shape[2], shape[3])
	if err != nil {
		return n, err
	}
	size, err := payloadSize(16, rank+1, g.level, rank+1, N/2)
	if err != nil {
		return n, err
	}
	payload, m, err := readPayload(r, size)
	if err != nil {
		return n + m, err
	}

	*ct = NewFourierGGSWCiphertextCustom[T](rank, N, g)
	ct.decodePayload(payload)
	return n + m, nil
}

// UnmarshalBinary implements the [encoding.BinaryUnmarshaler] interface.
func (ct *FourierGGSWCiphertext[T]) UnmarshalBinary(data []byte) error {
	return unmarshalFrom(data, ct)
}

// Equals returns whether the two ciphertexts are equal.
func (ct FourierGGSWCiphertext[T]) Equals(ctOther FourierGGSWCiphertext[T]) bool {
	return equal(ct, ctOther)
}

// ByteSize returns the size of the LUT in bytes.
func (lut LookUpTable[T]) ByteSize() int {
	return headerSize(1) + lut.Value.Degree()*sizeOfT[T]()
}

// MarshalBinary implements the [encoding.BinaryMarshaler] interface.
func (lut LookUpTable[T]) MarshalBinary() ([]byte, error) {
	b := make([]byte, 0, lut.ByteSize())
	b = appendHeader[T](b, KindLookUpTable, lut.Value.Degree())
	return appendTorus(b, lut.Value.Coeffs), nil
}

// WriteTo implements the [io.WriterTo] interface.
func (lut LookUpTable[T]) WriteTo(w io.Writer) (int64, error) {
	return writeMarshaled(w, lut)
}

// ReadFrom implements the [io.ReaderFrom] interface.
func (lut *LookUpTable[T]) ReadFrom(r io.Reader) (int64, error) {
	shape, n, err := readHeader[T](r, KindLookUpTable, 1)
	if err != nil {
		return n, err
	}
	if err := checkPolyShape(1, shape[0]); err != nil {
		return n, err
	}
	payload, m, err := readPayload(r, shape[0]*sizeOfT[T]())
	if err != nil {
		return n + m, err
	}

	lut.Value = poly.NewPoly[T](shape[0])
	decodeTorus(payload, lut.Value.Coeffs)
	return n + m, nil
}

// UnmarshalBinary implements the [encoding.BinaryUnmarshaler] interface.
func (lut *LookUpTable[T]) UnmarshalBinary(data []byte) error {
	return unmarshalFrom(data, lut)
}

// ByteSize returns the size of the key in bytes.
func (ksk LWEKeySwitchKey[T]) ByteSize() int {
	return headerSize(4) + ksk.InputDimension()*ksk.GadgetParameters.level*(ksk.OutputDimension()+1)*sizeOfT[T]()
}

// MarshalBinary implements the [encoding.BinaryMarshaler] interface.
func (ksk LWEKeySwitchKey[T]) MarshalBinary() ([]byte, error) {
	b := make([]byte, 0, ksk.ByteSize())
	g := ksk.GadgetParameters
	b = appendHeader[T](b, KindLWEKeySwitchKey, ksk.InputDimension(), ksk.OutputDimension(), g.baseLog, g.level)
	for _, lev := range ksk.Value {
		for _, ct := range lev.Value {
			b = appendTorus(b, ct.Value)
		}
	}
	return b, nil
}

// WriteTo implements the [io.WriterTo] interface.
func (ksk LWEKeySwitchKey[T]) WriteTo(w io.Writer) (int64, error) {
	return writeMarshaled(w, ksk)
}

// ReadFrom implements the [io.ReaderFrom] interface.
func (ksk *LWEKeySwitchKey[T]) ReadFrom(r io.Reader) (int64, error) {
	shape, n, err := readHeader[T](r, KindLWEKeySwitchKey, 4)
	if err != nil {
		return n, err
	}
	in, out := shape[0], shape[1]
	if err := checkLWEShape(in, out); err != nil {
		return n, err
	}
	g, err := gadgetFromShape[T](shape[2], shape[3])
	if err != nil {
		return n, err
	}
	size, err := payloadSize(sizeOfT[T](), in, g.level, out+1)
	if err != nil {
		return n, err
	}
	payload, m, err := readPayload(r, size)
	if err != nil {
		return n + m, err
	}

	*ksk = NewLWEKeySwitchKey[T](in, out, g)
	for _, lev := range ksk.Value {
		for _, ct := range lev.Value {
			payload = decodeTorus(payload, ct.Value)
		}
	}
	return n + m, nil
}

// UnmarshalBinary implements the [encoding.BinaryUnmarshaler] interface.
func (ksk *LWEKeySwitchKey[T]) UnmarshalBinary(data []byte) error {
	return unmarshalFrom(data, ksk)
}

// Equals returns whether the two keys are equal.
func (ksk LWEKeySwitchKey[T]) Equals(kskOther LWEKeySwitchKey[T]) bool {
	return equal(ksk, kskOther)
}

// ByteSize returns the size of the key in bytes.
func (pfksk PrivateFunctionalKeySwitchKey[T]) ByteSize() int {
	glwe := pfksk.Value[0].Value[0]
	return headerSize(5) + len(pfksk.Value)*pfksk.GadgetParameters.level*len(glwe.Value)*glwe.Degree()*sizeOfT[T]()
}

// MarshalBinary implements the [encoding.BinaryMarshaler] interface.
func (pfksk PrivateFunctionalKeySwitchKey[T]) MarshalBinary() ([]byte, error) {
	b := make([]byte, 0, pfksk.ByteSize())
	g := pfksk.GadgetParameters
	glwe := pfksk.Value[0].Value[0]
	b = appendHeader[T](b, KindPrivateFunctionalKeySwitchKey, pfksk.InputDimension(), glwe.Rank(), glwe.Degree(), g.baseLog, g.level)
	for _, glev := range pfksk.Value {
		b = appendGLev(b, glev)
	}
	return b, nil
}

// WriteTo implements the [io.WriterTo] interface.
func (pfksk PrivateFunctionalKeySwitchKey[T]) WriteTo(w io.Writer) (int64, error) {
	return writeMarshaled(w, pfksk)
}

// ReadFrom implements the [io.ReaderFrom] interface.
func (pfksk *PrivateFunctionalKeySwitchKey[T]) ReadFrom(r io.Reader) (int64, error) {
	shape, n, err := readHeader[T](r, KindPrivateFunctionalKeySwitchKey, 5)
	if err != nil {
		return n, err
	}
	in, rank, N := shape[0], shape[1], shape[2]
	if err := checkLWEShape(in); err != nil {
		return n, err
	}
	if err := checkPolyShape(rank, N); err != nil {
		return n, err
	}
	g, err := gadgetFromShape[T](shape[3], shape[4])
	if err != nil {
		return n, err
	}
	size, err := payloadSize(sizeOfT[T](), in+1, g.level, rank+1, N)
	if err != nil {
		return n, err
	}
	payload, m, err := readPayload(r, size)
	if err != nil {
		return n + m, err
	}

	value := make([]GLevCiphertext[T], in+1)
	for i := range value {
		value[i] = NewGLevCiphertextCustom(rank, N, g)
		payload = decodeGLev(payload, value[i])
	}
	*pfksk = PrivateFunctionalKeySwitchKey[T]{GadgetParameters: g, Value: value}
	return n + m, nil
}

// UnmarshalBinary implements the [encoding.BinaryUnmarshaler] interface.
func (pfksk *PrivateFunctionalKeySwitchKey[T]) UnmarshalBinary(data []byte) error {
	return unmarshalFrom(data, pfksk)
}

// Equals returns whether the two keys are equal.
func (pfksk PrivateFunctionalKeySwitchKey[T]) Equals(pfkskOther PrivateFunctionalKeySwitchKey[T]) bool {
	return equal(pfksk, pfkskOther)
}

// ByteSize returns the size of the key in bytes.
func (bsk FourierBootstrapKey[T]) ByteSize() int {
	return headerSize(5) + len(bsk.Value)*bsk.Value[0].payloadSize()
}

// MarshalBinary implements the [encoding.BinaryMarshaler] interface.
func (bsk FourierBootstrapKey[T]) MarshalBinary() ([]byte, error) {
	b := make([]byte, 0, bsk.ByteSize())
	ggsw := bsk.Value[0]
	g := ggsw.GadgetParameters
	b = appendHeader[T](b, KindFourierBootstrapKey, len(bsk.Value), ggsw.Rank(), ggsw.Degree(), g.baseLog, g.level)
	for _, ct := range bsk.Value {
		b = ct.appendPayload(b)
	}
	return b, nil
}

// WriteTo implements the [io.WriterTo] interface.
func (bsk FourierBootstrapKey[T]) WriteTo(w io.Writer) (int64, error) {
	return writeMarshaled(w, bsk)
}

// ReadFrom implements the [io.ReaderFrom] interface.
func (bsk *FourierBootstrapKey[T]) ReadFrom(r io.Reader) (int64, error) {
	shape, n, err := readHeader[T](r, KindFourierBootstrapKey, 5)
	if err != nil {
		return n, err
	}
	count, rank, N := shape[0], shape[1], shape[2]
	if err := checkLWEShape(count); err != nil {
		return n, err
	}
	if err := checkPolyShape(rank, N); err != nil {
		return n, err
	}
	g, err := gadgetFromShape[T](shape[3], shape[4])
	if err != nil {
		return n, err
	}
	size, err := payloadSize(16, count, rank+1, g.level, rank+1, N/2)
	if err != nil {
		return n, err
	}
	payload, m, err := readPayload(r, size)
	if err != nil {
		return n + m, err
	}

	value := make([]FourierGGSWCiphertext[T], count)
	for i := range value {
		value[i] = NewFourierGGSWCiphertextCustom[T](rank, N, g)
		payload = value[i].decodePayload(payload)
	}
	bsk.Value = value
	return n + m, nil
}

// UnmarshalBinary implements the [encoding.BinaryUnmarshaler] interface.
func (bsk *FourierBootstrapKey[T]) UnmarshalBinary(data []byte) error {
	return unmarshalFrom(data, bsk)
}

// Equals returns whether the two keys are equal.
func (bsk FourierBootstrapKey[T]) Equals(bskOther FourierBootstrapKey[T]) bool {
	return equal(bsk, bskOther)
}

// ByteSize returns the size of the key in bytes.
func (evk EvaluationKey[T]) ByteSize() int {
	return headerSize(0) + evk.BlindRotateKey.ByteSize() + evk.KeySwitchKey.ByteSize()
}

// MarshalBinary implements the [encoding.BinaryMarshaler] interface.
// The blind rotation key and the keyswitching key are written as nested entities.
func (evk EvaluationKey[T]) MarshalBinary() ([]byte, error) {
	b := make([]byte, 0, evk.ByteSize())
	b = appendHeader[T](b, KindEvaluationKey)

	bsk, err := evk.BlindRotateKey.MarshalBinary()
	if err != nil {
		return nil, err
	}
	ksk, err := evk.KeySwitchKey.MarshalBinary()
	if err != nil {
		return nil, err
	}
	b = append(b, bsk...)
	return append(b, ksk...), nil
}

// WriteTo implements the [io.WriterTo] interface.
func (evk EvaluationKey[T]) WriteTo(w io.Writer) (int64, error) {
	return writeMarshaled(w, evk)
}

// ReadFrom implements the [io.ReaderFrom] interface.
func (evk *EvaluationKey[T]) ReadFrom(r io.Reader) (int64, error) {
	_, n, err := readHeader[T](r, KindEvaluationKey, 0)
	if err != nil {
		return n, err
	}

	var bsk FourierBootstrapKey[T]
	m, err := bsk.ReadFrom(r)
	n += m
	if err != nil {
		return n, fmt.Errorf("blind rotate key: %w", err)
	}

	var ksk LWEKeySwitchKey[T]
	m, err = ksk.ReadFrom(r)
	n += m
	if err != nil {
		return n, fmt.Errorf("keyswitch key: %w", err)
	}

	evk.BlindRotateKey = bsk
	evk.KeySwitchKey = ksk
	return n, nil
}

// UnmarshalBinary implements the [encoding.BinaryUnmarshaler] interface.
func (evk *EvaluationKey[T]) UnmarshalBinary(data []byte) error {
	return unmarshalFrom(data, evk)
}

// Equals returns whether the two keys are equal.
func (evk EvaluationKey[T]) Equals(evkOther EvaluationKey[T]) bool {
	return equal(evk, evkOther)
}
