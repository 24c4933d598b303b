package rendezvous

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveOptions_Defaults(t *testing.T) {
	cfg, err := resolveOptions(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultCounterModulus, cfg.modulus)
	assert.Nil(t, cfg.logger)
}

func TestResolveOptions_NilOptionSkipped(t *testing.T) {
	cfg, err := resolveOptions([]Option{nil, WithCounterModulus(16), nil})
	require.NoError(t, err)
	assert.Equal(t, uint32(16), cfg.modulus)
}

func TestWithCounterModulus_Validation(t *testing.T) {
	for _, modulus := range []uint32{0, 1, 2, 3, 6, 100} {
		_, err := New[int](WithCounterModulus(modulus))
		assert.Error(t, err, "modulus %d", modulus)
	}
	for _, modulus := range []uint32{4, 8, 256, 1 << 20} {
		r, err := New[int](WithCounterModulus(modulus))
		require.NoError(t, err, "modulus %d", modulus)
		r.Close()
	}
}

func TestResolvePlaceOptions_Defaults(t *testing.T) {
	cfg, err := resolvePlaceOptions(nil)
	require.NoError(t, err)
	assert.NotNil(t, cfg.busyWait)
	assert.NotNil(t, cfg.cas)
}

func TestWithBusyWaitHandler_Nil(t *testing.T) {
	r, err := New[int]()
	require.NoError(t, err)
	_, err = r.Join(WithBusyWaitHandler(nil))
	assert.Error(t, err)
	r.Close()
}

func TestWithCAS_Nil(t *testing.T) {
	r, err := New[int]()
	require.NoError(t, err)
	_, err = r.Join(WithCAS(nil))
	assert.Error(t, err)
	r.Close()
}

func TestDefaultBusyWaitHandler_ResetsAfterSpinLimit(t *testing.T) {
	loopCount := 0
	for i := 0; i < defaultSpinLimit; i++ {
		DefaultBusyWaitHandler(&loopCount)
	}
	assert.Equal(t, defaultSpinLimit, loopCount)
	DefaultBusyWaitHandler(&loopCount)
	assert.Equal(t, 0, loopCount, "counter resets when the handler yields")
}

func TestDefaultCAS(t *testing.T) {
	var target unsafe.Pointer
	a, b := new(int), new(int)
	assert.True(t, DefaultCAS(&target, nil, unsafe.Pointer(a)))
	assert.False(t, DefaultCAS(&target, nil, unsafe.Pointer(b)))
	assert.True(t, DefaultCAS(&target, unsafe.Pointer(a), unsafe.Pointer(b)))
	assert.Equal(t, unsafe.Pointer(b), target)
}

func TestRemoveAction_String(t *testing.T) {
	assert.Equal(t, "Go", removeGo.String())
	assert.Equal(t, "Wait", removeWait.String())
	assert.Equal(t, "Sync", removeSync.String())
	assert.Equal(t, "Unknown", removeAction(99).String())
}
