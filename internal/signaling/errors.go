package signaling

import "errors"

var (
	ErrSessionFull     = errors.New("session already has two participants")
	ErrNotRegistered   = errors.New("participant is not registered for this session")
	ErrTransportClosed = errors.New("transport is closed")
	ErrBufferFull      = errors.New("message buffer is full")
)
