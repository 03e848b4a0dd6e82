package netlink

import "time"

// timeNow is indirected so tests can substitute a fixed clock if needed.
var timeNow = time.Now
