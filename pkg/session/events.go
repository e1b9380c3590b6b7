package session

import (
	"github.com/goliatone/go-campcert/pkg/formstate"
	"github.com/goliatone/go-campcert/pkg/ingest"
)

type event interface{ isEvent() }

type mergeReply struct {
	state formstate.State
	err   error
}

type fieldsEvent struct {
	update formstate.Update
	reply  chan<- mergeReply
}

type fileEvent struct {
	file  ingest.File
	reply chan<- ingest.Candidate
}

type encodedEvent struct {
	result ingest.Result
}

type syncEvent struct {
	done chan struct{}
}

func (fieldsEvent) isEvent()  {}
func (fileEvent) isEvent()    {}
func (encodedEvent) isEvent() {}
func (syncEvent) isEvent()    {}
