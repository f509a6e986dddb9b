package ws

import "time"

type ConnInfo struct {
	ConnID      string
	PlatformID  int64
	IP          string
	RequestID   string
	TraceID     string
	ConnectedAt time.Time
}
