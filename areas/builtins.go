package areas

// NOTE: If build bloat becomes a concern for unused areas (the S3 SDK mostly)
// look into build tags i.e. +build !nos3

type BuiltInAreaType = string

const (
	LocalAreaType  BuiltInAreaType = "local"
	MemoryAreaType BuiltInAreaType = "memory"
	HTTPAreaType   BuiltInAreaType = "http"
	S3AreaType     BuiltInAreaType = "s3"
)

// RegisterBuiltins registers all built-in areas by default
// or only the specific ones if keys are provided
func RegisterBuiltins(types ...BuiltInAreaType) {
	if len(types) == 0 {
		types = append(types, LocalAreaType, MemoryAreaType, HTTPAreaType, S3AreaType)
	}

	for _, key := range types {
		switch key {
		case LocalAreaType, MemoryAreaType:
			RegisterBilly()
		case HTTPAreaType:
			RegisterHTTP()
		case S3AreaType:
			RegisterS3()
		}
	}
}
