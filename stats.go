package yeelight

import "go.uber.org/atomic"

// Stats counts the outcomes of the exchanges performed by a Transport.
type Stats struct {
	Sent    int64 `json:"sent"`
	Replied int64 `json:"replied"`
	Silent  int64 `json:"silent"`
	Failed  int64 `json:"failed"`
}

type stats struct {
	sent    atomic.Int64
	replied atomic.Int64
	silent  atomic.Int64
	failed  atomic.Int64
}

func (s *stats) record(replied bool, err error) {
	s.sent.Inc()
	switch {
	case err != nil:
		s.failed.Inc()
	case replied:
		s.replied.Inc()
	default:
		s.silent.Inc()
	}
}

func (s *stats) snapshot() Stats {
	return Stats{
		Sent:    s.sent.Load(),
		Replied: s.replied.Load(),
		Silent:  s.silent.Load(),
		Failed:  s.failed.Load(),
	}
}
