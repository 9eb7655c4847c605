package gateway

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/photonp05/VartaLab/internal/models"
)

func TestPushDropsWhenQueueFull(t *testing.T) {
	req := require.New(t)
	c := &Conn{
		id:   "test",
		user: &models.User{ID: 1},
		send: make(chan outFrame, 2),
		done: make(chan struct{}),
		log:  zerolog.Nop(),
	}

	req.True(c.Push("e", 1))
	req.True(c.Push("e", 2))

	// Queue is full, nobody is draining: drop, don't block
	req.False(c.Push("e", 3))
}

func TestPushDropsAfterClose(t *testing.T) {
	req := require.New(t)
	c := &Conn{
		id:   "test",
		user: &models.User{ID: 1},
		send: make(chan outFrame, 2),
		done: make(chan struct{}),
		log:  zerolog.Nop(),
	}

	close(c.done)
	req.False(c.Push("e", 1))
}
