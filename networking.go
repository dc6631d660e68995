package symtrack

// Portnumbers holds the TCP port numbers used by symtrack.
type Portnumbers struct {
	Symbols int // PUB socket for recovered symbols
	Status  int // PUB socket for status messages (reserved)
}

// Ports globally holds the TCP port numbers used by symtrack.
var Ports = Portnumbers{5590, 5591}

// SetPortnumbers rebases all port numbers from the given base.
func SetPortnumbers(base int) {
	Ports.Symbols = base
	Ports.Status = base + 1
}
