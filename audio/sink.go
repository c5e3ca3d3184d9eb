package audio

import (
	"github.com/gordonklaus/portaudio"
)

// Source renders audio into a non-interleaved stereo buffer.
type Source interface {
	Process([][]float32)
}

func NewSink() (*Sink, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, err
	}
	var s Sink
	stream, err := portaudio.OpenDefaultStream(0, 2, sampleRate, bufferSize, s.Process)
	if err != nil {
		return nil, err
	}
	s.stream = stream
	return &s, nil
}

type Sink struct {
	sources []Source
	stream  *portaudio.Stream
}

func (s *Sink) Start() error {
	return s.stream.Start()
}

// Pause stops the stream without tearing it down, so the engine can be
// rendered offline without the callback pulling concurrently.
func (s *Sink) Pause() error {
	return s.stream.Stop()
}

func (s *Sink) Resume() error {
	return s.stream.Start()
}

func (s *Sink) Stop() error {
	s.stream.Close()
	portaudio.Terminate()
	return nil
}

func (s *Sink) AddSources(sources ...Source) {
	s.sources = append(s.sources, sources...)
}

func (s *Sink) Process(samples [][]float32) {
	for i := range samples {
		for j := range samples[i] {
			samples[i][j] = 0.
		}
	}
	for _, source := range s.sources {
		source.Process(samples)
	}
}
