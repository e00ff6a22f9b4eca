package renderer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSharedAttachmentDestroyedWithLastUser(t *testing.T) {
	destroyed := 0
	s := &sharedAttachment{destroy: func() { destroyed++ }}

	s.acquire() // builder
	for i := 0; i < 3; i++ {
		s.acquire()
	}
	s.release()
	assert.Equal(t, 0, destroyed)

	s.release()
	s.release()
	assert.Equal(t, 0, destroyed)
	s.release()
	assert.Equal(t, 1, destroyed)

	s.release()
	assert.Equal(t, 1, destroyed, "extra releases are ignored")
}

func TestSharedAttachmentWithoutUsers(t *testing.T) {
	destroyed := 0
	s := &sharedAttachment{destroy: func() { destroyed++ }}
	s.acquire()
	s.release()
	assert.Equal(t, 1, destroyed)
}
