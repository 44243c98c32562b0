package chunk

import "errors"

var errTerminalWriter = errors.New("chunk: writer is terminal after a prior transport failure")
