package accel

import (
	"github.com/snucp/tfhe-wopbs/math/poly"
	"github.com/snucp/tfhe-wopbs/tfhe"
)

// Entities are laid out contiguously in buffers, sample after sample.
// Polynomials of a GLWE ciphertext are stored body first,
// and GGSW ciphertexts are stored row by row, then level by level.
// Fourier polynomials take PolyDegree / 2 elements.

// shape holds the dimensions a layout depends on.
type shape struct {
	lweDimension int
	glweRank     int
	polyDegree   int
}

func (s shape) lweSize(dim int) int {
	return dim + 1
}

func (s shape) glweSize() int {
	return (s.glweRank + 1) * s.polyDegree
}

func (s shape) ggswSize(level int) int {
	return (s.glweRank + 1) * level * s.glweSize()
}

func (s shape) fourierGGSWSize(level int) int {
	return s.ggswSize(level) / 2
}

// lweAt returns the i-th LWE ciphertext of dimension dim in buf.
func lweAt[T tfhe.TorusInt](buf []T, dim, i int) tfhe.LWECiphertext[T] {
	size := dim + 1
	return tfhe.LWECiphertext[T]{Value: buf[i*size : (i+1)*size : (i+1)*size]}
}

// glweAt returns the i-th GLWE ciphertext in buf.
func glweAt[T tfhe.TorusInt](s shape, buf []T, i int) tfhe.GLWECiphertext[T] {
	N := s.polyDegree
	buf = buf[i*s.glweSize() : (i+1)*s.glweSize()]

	ct := tfhe.GLWECiphertext[T]{Value: make([]poly.Poly[T], s.glweRank+1)}
	for j := range ct.Value {
		ct.Value[j] = poly.Poly[T]{Coeffs: buf[j*N : (j+1)*N : (j+1)*N]}
	}
	return ct
}

// ggswAt returns the i-th GGSW ciphertext in buf.
func ggswAt[T tfhe.TorusInt](s shape, gadgetParams tfhe.GadgetParameters[T], buf []T, i int) tfhe.GGSWCiphertext[T] {
	level := gadgetParams.Level()
	buf = buf[i*s.ggswSize(level) : (i+1)*s.ggswSize(level)]

	ct := tfhe.GGSWCiphertext[T]{GadgetParameters: gadgetParams, Value: make([]tfhe.GLevCiphertext[T], s.glweRank+1)}
	for j := range ct.Value {
		ct.Value[j] = tfhe.GLevCiphertext[T]{GadgetParameters: gadgetParams, Value: make([]tfhe.GLWECiphertext[T], level)}
		for l := range ct.Value[j].Value {
			ct.Value[j].Value[l] = glweAt(s, buf, j*level+l)
		}
	}
	return ct
}

// fourierGGSWAt returns the i-th Fourier GGSW ciphertext in buf.
func fourierGGSWAt[T tfhe.TorusInt](s shape, gadgetParams tfhe.GadgetParameters[T], buf []complex128, i int) tfhe.FourierGGSWCiphertext[T] {
	level := gadgetParams.Level()
	N := s.polyDegree / 2
	size := s.fourierGGSWSize(level)
	buf = buf[i*size : (i+1)*size]

	ct := tfhe.FourierGGSWCiphertext[T]{GadgetParameters: gadgetParams, Value: make([]tfhe.FourierGLevCiphertext[T], s.glweRank+1)}
	for j := range ct.Value {
		ct.Value[j] = tfhe.FourierGLevCiphertext[T]{GadgetParameters: gadgetParams, Value: make([]tfhe.FourierGLWECiphertext[T], level)}
		for l := range ct.Value[j].Value {
			glwe := tfhe.FourierGLWECiphertext[T]{Value: make([]poly.FourierPoly, s.glweRank+1)}
			for k := range glwe.Value {
				start := ((j*level+l)*(s.glweRank+1) + k) * N
				glwe.Value[k] = poly.FourierPoly{Coeffs: buf[start : start+N : start+N]}
			}
			ct.Value[j].Value[l] = glwe
		}
	}
	return ct
}

// appendLWE appends ct to buf.
func appendLWE[T tfhe.TorusInt](buf []T, ct tfhe.LWECiphertext[T]) []T {
	return append(buf, ct.Value...)
}

// appendGGSW appends ct to buf.
func appendGGSW[T tfhe.TorusInt](buf []T, ct tfhe.GGSWCiphertext[T]) []T {
	for _, glev := range ct.Value {
		for _, glwe := range glev.Value {
			for _, p := range glwe.Value {
				buf = append(buf, p.Coeffs...)
			}
		}
	}
	return buf
}
