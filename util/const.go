package util

import (
	"time"
)

const DefaultTimeout = time.Duration(5) * time.Second

// SynthTTL is the TTL of every synthesized answer record.
const SynthTTL uint32 = 60

// DefaultUDPSize is the EDNS0 buffer size advertised when none is configured.
const DefaultUDPSize uint16 = 1232

var Version = "dev"
