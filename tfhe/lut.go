package tfhe

import (
	"github.com/snucp/tfhe-wopbs/math/num"
	"github.com/snucp/tfhe-wopbs/math/vec"
)

// GenLookUpTable generates a lookup table based on function f.
// Input and output of f is cut by MessageModulus.
func (e *Evaluator[T]) GenLookUpTable(f func(int) int) LookUpTable[T] {
	lutOut := NewLookUpTable(e.Parameters)
	e.GenLookUpTableAssign(f, lutOut)
	return lutOut
}

// GenLookUpTableAssign generates a lookup table based on function f and writes it to lutOut.
// Input and output of f is cut by MessageModulus.
func (e *Evaluator[T]) GenLookUpTableAssign(f func(int) int, lutOut LookUpTable[T]) {
	e.GenLookUpTableCustomAssign(f, e.Parameters.messageModulus, e.Parameters.scale, lutOut)
}

// GenLookUpTableCustomAssign generates a lookup table based on function f
// using custom messageModulus and scale, and writes it to lutOut.
func (e *Evaluator[T]) GenLookUpTableCustomAssign(f func(int) int, messageModulus, scale T, lutOut LookUpTable[T]) {
	e.GenLookUpTableFullCustomAssign(func(x int) T { return EncodeLWECustom(f(x), messageModulus, scale).Value }, messageModulus, lutOut)
}

// GenLookUpTableFull generates a lookup table based on function f.
// Output of f is encoded as-is.
func (e *Evaluator[T]) GenLookUpTableFull(f func(int) T) LookUpTable[T] {
	lutOut := NewLookUpTable(e.Parameters)
	e.GenLookUpTableFullAssign(f, lutOut)
	return lutOut
}

// GenLookUpTableFullAssign generates a lookup table based on function f and writes it to lutOut.
// Output of f is encoded as-is.
func (e *Evaluator[T]) GenLookUpTableFullAssign(f func(int) T, lutOut LookUpTable[T]) {
	e.GenLookUpTableFullCustomAssign(f, e.Parameters.messageModulus, lutOut)
}

// GenLookUpTableFullCustomAssign generates a lookup table based on function f
// over messageModulus boxes and writes it to lutOut. Output of f is encoded as-is.
//
// The box of message x is centered at x * N / messageModulus,
// and the last half box is negated to account for X^N = -1.
func (e *Evaluator[T]) GenLookUpTableFullCustomAssign(f func(int) T, messageModulus T, lutOut LookUpTable[T]) {
	N := e.Parameters.polyDegree
	lutRaw := lutOut.Value.Coeffs
	for x := 0; x < int(messageModulus); x++ {
		start := num.DivRound(x*N, int(messageModulus))
		end := num.DivRound((x+1)*N, int(messageModulus))
		y := f(x)
		for xx := start; xx < end; xx++ {
			lutRaw[xx] = y
		}
	}

	offset := num.DivRound(N, 2*int(messageModulus))
	vec.RotateInPlace(lutRaw, -offset)
	for i := N - offset; i < N; i++ {
		lutRaw[i] = -lutRaw[i]
	}
}

// GenLookUpTableConstantAssign writes a lookup table whose every coefficient is c to lutOut.
// Blind rotating it outputs c if the phase lies in [0, Q/2), and -c otherwise.
func (e *Evaluator[T]) GenLookUpTableConstantAssign(c T, lutOut LookUpTable[T]) {
	vec.Fill(lutOut.Value.Coeffs, c)
}
