package producer

import (
	"time"

	"github.com/rhuss/strom/pkg/api"
)

// Placeholder media streams: zero-filled blocks of a fixed size.
const (
	audioBlockSize  = 1024
	audioBlockCount = 100
	audioDelay      = 10 * time.Millisecond

	videoFrameSize  = 10240
	videoFrameCount = 300
)

func newAudio(_ *api.AudioRequest, opts Options) Producer {
	return zeroBlocks(audioBlockSize, audioBlockCount, opts.Pacer, audioDelay)
}

// newVideo paces frames at 1/fps. The frame rate affects timing only.
func newVideo(r *api.VideoRequest, opts Options) Producer {
	return zeroBlocks(videoFrameSize, videoFrameCount, opts.Pacer, time.Second/time.Duration(*r.FPS))
}

func zeroBlocks(size, count int, pacer Pacer, delay time.Duration) *sequence {
	return &sequence{
		pacer: pacer,
		delay: delay,
		n:     count,
		chunk: func(int) (Chunk, error) {
			return Chunk{Data: make([]byte, size), Binary: true}, nil
		},
	}
}
