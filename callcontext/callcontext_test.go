package callcontext

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ethflow/tracewalk/bytesx"
)

func TestNewCanonicalizesAddressesTo20Bytes(t *testing.T) {
	cc := New(nil, nil, nil, 1, bytesx.MustParse("0x01"), bytesx.MustParse("0xbeef"), bytesx.MustParse("0xbeef"), -1, false)

	assert.Equal(t, 20, cc.MsgSender.Len())
	assert.Equal(t, 20, cc.CodeAddress.Len())
	assert.Equal(t, 20, cc.StorageAddress.Len())
	assert.Equal(t, HaltNone, cc.HaltType)
}

func TestRootWalksUpToOutermostContext(t *testing.T) {
	root := New(nil, nil, nil, 1, bytesx.MustParse("0x01"), bytesx.MustParse("0x02"), bytesx.MustParse("0x02"), -1, false)
	child := New(root, nil, nil, 2, bytesx.MustParse("0x01"), bytesx.MustParse("0x03"), bytesx.MustParse("0x03"), 0, false)
	grandchild := New(child, nil, nil, 3, bytesx.MustParse("0x01"), bytesx.MustParse("0x04"), bytesx.MustParse("0x04"), 1, false)

	assert.Same(t, root, root.Root())
	assert.Same(t, root, child.Root())
	assert.Same(t, root, grandchild.Root())
}

func TestHaltTypeString(t *testing.T) {
	assert.Equal(t, "none", HaltNone.String())
	assert.Equal(t, "normal", HaltNormal.String())
	assert.Equal(t, "exceptional", HaltExceptional.String())
}
