package mp4writer

import (
	"bytes"
	"fmt"
	"time"

	"github.com/Eyevinn/mp4ff/mp4"
)

// buildMP4 muxes the encoded frames into ftyp + moov + moof/mdat.
func (e *Encoder) buildMP4() ([]byte, error) {
	if len(e.frames) == 0 {
		return nil, fmt.Errorf("no frames to encode")
	}

	const timescale = 90000
	trackID := uint32(1)

	init := mp4.CreateEmptyInit()
	init.AddEmptyTrack(timescale, "video", "und")
	trak := init.Moov.Trak

	entry := mp4.CreateVisualSampleEntryBox("jpeg", uint16(e.width), uint16(e.height), nil)
	trak.Mdia.Minf.Stbl.Stsd.AddChild(entry)
	trak.Tkhd.Width = mp4.Fixed32(e.width << 16)
	trak.Tkhd.Height = mp4.Fixed32(e.height << 16)

	frag, err := mp4.CreateFragment(1, trackID)
	if err != nil {
		return nil, fmt.Errorf("create fragment: %w", err)
	}

	frameDur := uint32(float64(timescale) / e.fps)
	if frameDur == 0 {
		frameDur = 1
	}
	base := e.frames[0].pts
	for i, f := range e.frames {
		dur := frameDur
		if i < len(e.frames)-1 {
			if d := ticks(e.frames[i+1].pts-f.pts, timescale); d > 0 {
				dur = uint32(d)
			}
		}
		frag.AddFullSample(mp4.FullSample{
			Sample: mp4.Sample{
				Flags: mp4.SyncSampleFlags,
				Size:  uint32(len(f.data)),
				Dur:   dur,
			},
			DecodeTime: ticks(f.pts-base, timescale),
			Data:       f.data,
		})
	}

	var buf bytes.Buffer
	ftyp := mp4.NewFtyp("isom", 0x200, []string{"isom", "iso2", "mp41"})
	if err := ftyp.Encode(&buf); err != nil {
		return nil, fmt.Errorf("encode ftyp: %w", err)
	}
	if err := init.Moov.Encode(&buf); err != nil {
		return nil, fmt.Errorf("encode moov: %w", err)
	}
	if err := frag.Encode(&buf); err != nil {
		return nil, fmt.Errorf("encode fragment: %w", err)
	}
	return buf.Bytes(), nil
}

// ticks converts d into units of 1/timescale seconds.
func ticks(d time.Duration, timescale uint64) uint64 {
	return uint64(d) * timescale / uint64(time.Second)
}
