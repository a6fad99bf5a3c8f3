package wopbs_test

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/snucp/tfhe-wopbs/tfhe"
	"github.com/snucp/tfhe-wopbs/wopbs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSerialization(t *testing.T) {
	t.Run("CircuitBootstrapKey", func(t *testing.T) {
		cbsk := eval.EvaluationKey.CircuitBootstrapKey

		var buf bytes.Buffer
		n, err := cbsk.WriteTo(&buf)
		require.NoError(t, err)
		assert.Equal(t, int64(cbsk.ByteSize()), n)

		var cbskOut wopbs.CircuitBootstrapKey[uint64]
		m, err := cbskOut.ReadFrom(&buf)
		require.NoError(t, err)
		assert.Equal(t, n, m)
		assert.True(t, cbsk.Equals(cbskOut))
	})

	t.Run("EvaluationKey", func(t *testing.T) {
		evk := eval.EvaluationKey
		data, err := evk.MarshalBinary()
		require.NoError(t, err)
		assert.Len(t, data, evk.ByteSize())

		var evkOut wopbs.EvaluationKey[uint64]
		require.NoError(t, evkOut.UnmarshalBinary(data))
		assert.True(t, evk.Equals(evkOut))

		evalOut := wopbs.NewEvaluator(testParams, evkOut)
		assert.Equal(t, 10, enc.DecryptLWE(evalOut.WoPBSFunc(enc.EncryptLWE(5), func(x int) int { return 2 * x })))
	})

	t.Run("UnsupportedVersion", func(t *testing.T) {
		data, err := eval.EvaluationKey.CircuitBootstrapKey.MarshalBinary()
		require.NoError(t, err)
		data[0] = tfhe.SerializationVersion + 1

		var cbskOut wopbs.CircuitBootstrapKey[uint64]
		assert.ErrorIs(t, cbskOut.UnmarshalBinary(data), tfhe.ErrUnsupportedVersion)
	})

	t.Run("Malformed", func(t *testing.T) {
		data, err := eval.EvaluationKey.CircuitBootstrapKey.MarshalBinary()
		require.NoError(t, err)

		var cbskOut wopbs.CircuitBootstrapKey[uint64]
		assert.ErrorIs(t, cbskOut.UnmarshalBinary(data[:len(data)-1]), tfhe.ErrMalformedPayload)
		assert.ErrorIs(t, cbskOut.UnmarshalBinary(append(data, 0)), tfhe.ErrMalformedPayload)

		var evkOut wopbs.EvaluationKey[uint64]
		assert.ErrorIs(t, evkOut.UnmarshalBinary(data), tfhe.ErrMalformedPayload)

		tooMany := tfhe.AppendHeader[uint64](nil, tfhe.KindCircuitBootstrapKey, 1<<20)
		assert.ErrorIs(t, cbskOut.UnmarshalBinary(tooMany), tfhe.ErrMalformedPayload)

		tooFew := bytes.Clone(data)
		binary.BigEndian.PutUint32(tooFew[tfhe.HeaderSize(0):], 1)
		assert.ErrorIs(t, cbskOut.UnmarshalBinary(tooFew), tfhe.ErrMalformedPayload)
	})
}
