package cache

import "time"

// Entry describes a compiled binary held in the cache
type Entry struct {
	// Name is the entry name derived from the script base name
	Name string `json:"name" yaml:"name"`

	// SourceFile is the absolute path of the script last compiled into this entry
	SourceFile string `json:"source_file" yaml:"source_file"`

	// BinaryPath is the absolute path of the compiled binary
	BinaryPath string `json:"binary_path" yaml:"binary_path"`

	// Compiler is the compiler executable that produced the binary
	Compiler string `json:"compiler" yaml:"compiler"`

	// Size of the binary in bytes
	Size int64 `json:"size" yaml:"size"`

	// Duration is how long compilation took
	Duration time.Duration `json:"duration" yaml:"duration"`

	// Timestamp when this entry was installed
	Timestamp time.Time `json:"timestamp" yaml:"timestamp"`
}
