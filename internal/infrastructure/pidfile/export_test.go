package pidfile

// NewWithProbe creates a PIDFile for pid whose liveness check is alive
func NewWithProbe(path string, pid int, alive func(int) bool) *PIDFile {
	return &PIDFile{path: path, pid: pid, isAlive: alive}
}
