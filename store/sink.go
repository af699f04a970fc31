// Copyright 2025 The MetaGeo Authors
// SPDX-License-Identifier: Apache-2.0

package store

import "github.com/metageo/metageo/polish"

const defaultSinkBatch = 1000

// Sink buffers samples and saves them in batches. It implements polish.Sink;
// call Flush after the run.
type Sink struct {
	repo  SampleRepository
	batch int
	buf   []polish.Sample
	saved int
}

// NewSink returns a sink saving every batch samples. batch <= 0 uses a default.
func NewSink(repo SampleRepository, batch int) *Sink {
	if batch <= 0 {
		batch = defaultSinkBatch
	}

	return &Sink{repo: repo, batch: batch, buf: make([]polish.Sample, 0, batch)}
}

func (s *Sink) Add(sample polish.Sample) error {
	s.buf = append(s.buf, sample)
	if len(s.buf) < s.batch {
		return nil
	}

	return s.Flush()
}

// Flush saves the buffered samples.
func (s *Sink) Flush() error {
	if len(s.buf) == 0 {
		return nil
	}

	if err := s.repo.SaveSamples(s.buf); err != nil {
		return err
	}

	s.saved += len(s.buf)
	s.buf = s.buf[:0]

	return nil
}

// Saved returns the number of samples written so far.
func (s *Sink) Saved() int {
	return s.saved
}
